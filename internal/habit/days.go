package habit

import (
	"sort"

	"ember/internal/streak"
)

// normalizeDays validates a client-supplied completion set and returns it
// deduplicated and sorted, so stored sets stay canonical.
func normalizeDays(raw []string) ([]string, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if _, err := streak.ParseDay(s); err != nil {
			return nil, err
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}
