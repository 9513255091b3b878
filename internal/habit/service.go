package habit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ember/internal/streak"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("habit not found")
var ErrForbidden = errors.New("not the habit owner")
var ErrInvalidDay = errors.New("invalid completion day")

// CreditNotifier receives streak events that may affect groups. Wired to
// the group propagator in main; nil disables group propagation.
type CreditNotifier interface {
	// MemberCredited fires only after a successful same-day credit.
	MemberCredited(ctx context.Context, userID uint64, today streak.DayID) error
	// HabitRemoved fires after a habit is deleted; reverted reports whether
	// the deletion undid today's personal credit.
	HabitRemoved(ctx context.Context, habitID, userID uint64, reverted bool, today streak.DayID) error
}

type Service struct {
	DB     *gorm.DB
	Cal    streak.Calendar
	Groups CreditNotifier
}

// Result is what each trigger reports back to the request layer.
type Result struct {
	StreakCount int
	Changed     bool
}

type CreateInput struct {
	Name            string
	MicroIdentity   string
	Type            string
	Goal            string
	ActiveDays      []string
	ReminderEnabled bool
	ReminderTime    *string
	Visibility      string
	Duration        int
}

type UpdateInput struct {
	Name        *string
	Completions []string // nil leaves completions untouched
}

// Create adds a new, necessarily-incomplete habit. A credit already earned
// today no longer covers all habits, so it is reverted.
func (s *Service) Create(ctx context.Context, userID uint64, in CreateInput) (Habit, Result, error) {
	h := Habit{
		UserID:          userID,
		Name:            in.Name,
		MicroIdentity:   in.MicroIdentity,
		Type:            in.Type,
		Goal:            in.Goal,
		ActiveDays:      in.ActiveDays,
		ReminderEnabled: in.ReminderEnabled,
		ReminderTime:    in.ReminderTime,
		Visibility:      in.Visibility,
		Duration:        in.Duration,
		Completions:     []string{},
	}
	if h.Visibility == "" {
		h.Visibility = "private"
	}
	if h.ActiveDays == nil {
		h.ActiveDays = []string{}
	}

	today := s.Cal.Today()
	var res Result
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&h).Error; err != nil {
			return fmt.Errorf("create habit: %w", err)
		}
		led, err := lockLedger(tx, userID)
		if err != nil {
			return err
		}
		v, out := streak.ApplyHabitCreated(ledgerValue(led), today)
		res = Result{StreakCount: out.Count, Changed: out.Changed}
		if out.Changed {
			if err := saveLedger(tx, &led, v); err != nil {
				return err
			}
		}
		if h.ReminderEnabled && h.ReminderTime != nil {
			return s.scheduleReminder(tx, &h)
		}
		return nil
	})
	if err != nil {
		return Habit{}, Result{}, err
	}
	return h, res, nil
}

// Update replaces habit fields. When the completion set is replaced, today
// is re-evaluated over the user's full habit set and the ledger credited
// or reverted accordingly.
func (s *Service) Update(ctx context.Context, userID, habitID uint64, in UpdateInput) (Habit, Result, error) {
	today := s.Cal.Today()

	var h Habit
	var res Result
	credited := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", habitID).First(&h).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load habit: %w", err)
		}
		if h.UserID != userID {
			return ErrForbidden
		}
		if in.Name != nil && *in.Name != "" {
			h.Name = *in.Name
		}

		if in.Completions == nil {
			// Metadata-only update; the ledger is untouched.
			if err := tx.Save(&h).Error; err != nil {
				return fmt.Errorf("save habit: %w", err)
			}
			count, err := currentCount(tx, userID)
			if err != nil {
				return err
			}
			res = Result{StreakCount: count}
			if h.ReminderEnabled && h.ReminderTime != nil {
				return s.scheduleReminder(tx, &h)
			}
			return nil
		}

		days, err := normalizeDays(in.Completions)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDay, err)
		}

		// Evaluate "would all habits be complete if this lands" against the
		// stored set, overriding the habit being updated.
		var all []Habit
		if err := tx.Where("user_id = ?", userID).Find(&all).Error; err != nil {
			return fmt.Errorf("load habits: %w", err)
		}
		complete := streak.AllComplete(toCompletions(all), today, &streak.Override{
			HabitID: h.ID,
			Days:    toDayIDs(days),
		})

		h.Completions = days
		if err := tx.Save(&h).Error; err != nil {
			return fmt.Errorf("save habit: %w", err)
		}

		led, err := lockLedger(tx, userID)
		if err != nil {
			return err
		}
		v, out := streak.ApplyCompletionChange(ledgerValue(led), complete, today)
		res = Result{StreakCount: out.Count, Changed: out.Changed}
		credited = out.Credited
		if out.Changed {
			if err := saveLedger(tx, &led, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Habit{}, Result{}, err
	}

	if credited && s.Groups != nil {
		// The personal credit is already committed; group propagation is
		// additive and re-evaluated on the next credit, so a failure here
		// only leaves the group stale.
		if err := s.Groups.MemberCredited(ctx, userID, today); err != nil {
			log.Printf("group propagation failed for user %d: %v", userID, err)
		}
	}
	return h, res, nil
}

// Delete removes a habit and re-evaluates today over the remaining set,
// reverting a now-invalid credit or granting a recovery credit when the
// deleted habit was the only incomplete one and continuity holds.
func (s *Service) Delete(ctx context.Context, userID, habitID uint64) (Result, error) {
	today := s.Cal.Today()

	var res Result
	credited := false
	reverted := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var h Habit
		if err := tx.Where("id = ?", habitID).First(&h).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load habit: %w", err)
		}
		if h.UserID != userID {
			return ErrForbidden
		}

		var remaining []Habit
		if err := tx.Where("user_id = ? AND id <> ?", userID, habitID).Find(&remaining).Error; err != nil {
			return fmt.Errorf("load remaining habits: %w", err)
		}
		if err := tx.Delete(&Habit{}, habitID).Error; err != nil {
			return fmt.Errorf("delete habit: %w", err)
		}
		if err := cancelReminders(tx, userID, habitID); err != nil {
			return err
		}

		led, err := lockLedger(tx, userID)
		if err != nil {
			return err
		}
		complete := streak.AllComplete(toCompletions(remaining), today, nil)
		v, out := streak.ApplyHabitDeleted(ledgerValue(led), len(remaining) == 0, complete, today)
		res = Result{StreakCount: out.Count, Changed: out.Changed}
		credited = out.Credited
		reverted = out.Changed && !out.Credited
		if out.Changed {
			if err := saveLedger(tx, &led, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if s.Groups != nil {
		if err := s.Groups.HabitRemoved(ctx, habitID, userID, reverted, today); err != nil {
			log.Printf("group unlink failed for habit %d: %v", habitID, err)
		}
		if credited {
			if err := s.Groups.MemberCredited(ctx, userID, today); err != nil {
				log.Printf("group propagation failed for user %d: %v", userID, err)
			}
		}
	}
	return res, nil
}

// List returns the user's habits newest-first, plus the current streak
// count. Reading is when a stale chain (last credit before yesterday) gets
// its surfaced count expired to zero; history is never rewritten.
func (s *Service) List(ctx context.Context, userID uint64) ([]Habit, int, error) {
	today := s.Cal.Today()

	count := 0
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var led StreakLedger
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&led).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
		v, changed := streak.Expire(ledgerValue(led), today)
		if changed {
			if err := saveLedger(tx, &led, v); err != nil {
				return err
			}
		}
		count = v.Count
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	var habits []Habit
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&habits).Error; err != nil {
		return nil, 0, fmt.Errorf("load habits: %w", err)
	}
	return habits, count, nil
}

// CurrentStreak reads the ledger without mutating it, expiring a stale
// chain in the returned view only.
func (s *Service) CurrentStreak(ctx context.Context, userID uint64) (streak.Ledger, error) {
	var led StreakLedger
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&led).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return streak.Ledger{}, nil
	}
	if err != nil {
		return streak.Ledger{}, fmt.Errorf("load ledger: %w", err)
	}
	v, _ := streak.Expire(ledgerValue(led), s.Cal.Today())
	return v, nil
}

// lockLedger fetches the user's ledger row FOR UPDATE, creating it first
// if this is the user's first trigger. Every ledger read-modify-write goes
// through this so triggers serialize per user.
func lockLedger(tx *gorm.DB, userID uint64) (StreakLedger, error) {
	var led StreakLedger
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&led).Error
	if err == nil {
		return led, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return led, fmt.Errorf("lock ledger: %w", err)
	}

	// Lazy creation; ON CONFLICT DO NOTHING covers a concurrent first
	// trigger racing us to the insert.
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&StreakLedger{UserID: userID, History: []string{}}).Error; err != nil {
		return led, fmt.Errorf("create ledger: %w", err)
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&led).Error; err != nil {
		return led, fmt.Errorf("lock ledger: %w", err)
	}
	return led, nil
}

func saveLedger(tx *gorm.DB, led *StreakLedger, v streak.Ledger) error {
	led.StreakCount = v.Count
	if v.Last == "" {
		led.LastCompletedDay = nil
	} else {
		day := string(v.Last)
		led.LastCompletedDay = &day
	}
	history := make([]string, len(v.History))
	for i, d := range v.History {
		history[i] = string(d)
	}
	led.History = history
	led.UpdatedAt = time.Now()
	if err := tx.Save(led).Error; err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

func ledgerValue(led StreakLedger) streak.Ledger {
	v := streak.Ledger{
		Count:   led.StreakCount,
		History: toDayIDs(led.History),
	}
	if led.LastCompletedDay != nil {
		v.Last = streak.DayID(*led.LastCompletedDay)
	}
	return v
}

func currentCount(tx *gorm.DB, userID uint64) (int, error) {
	var led StreakLedger
	err := tx.Where("user_id = ?", userID).First(&led).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load ledger: %w", err)
	}
	return led.StreakCount, nil
}

func toCompletions(habits []Habit) []streak.HabitCompletions {
	out := make([]streak.HabitCompletions, 0, len(habits))
	for _, h := range habits {
		out = append(out, streak.HabitCompletions{
			HabitID: h.ID,
			Days:    toDayIDs(h.Completions),
		})
	}
	return out
}

func toDayIDs(days []string) []streak.DayID {
	out := make([]streak.DayID, len(days))
	for i, d := range days {
		out[i] = streak.DayID(d)
	}
	return out
}
