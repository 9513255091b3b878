package handler

import (
	"encoding/json"
	"net/http"

	"ember/internal/auth"
	"ember/internal/habit"
)

type MeHandler struct {
	Habits *habit.Service
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	led, err := h.Habits.CurrentStreak(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	var last *string
	if led.Last != "" {
		s := string(led.Last)
		last = &s
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user_id":            uid,
		"streak":             led.Count,
		"last_completed_day": last,
	})
}
