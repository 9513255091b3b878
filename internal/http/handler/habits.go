package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ember/internal/auth"
	"ember/internal/habit"

	"github.com/go-chi/chi/v5"
)

type HabitHandler struct {
	Svc *habit.Service
}

type habitDTO struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	MicroIdentity   string    `json:"micro_identity"`
	Type            string    `json:"type"`
	Goal            string    `json:"goal"`
	ActiveDays      []string  `json:"active_days"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	ReminderTime    *string   `json:"reminder_time"`
	Visibility      string    `json:"visibility"`
	Duration        int       `json:"duration"`
	Completions     []string  `json:"completions"`
	CreatedAt       time.Time `json:"created_at"`
}

func toHabitDTO(h habit.Habit) habitDTO {
	return habitDTO{
		ID:              h.ID,
		Name:            h.Name,
		MicroIdentity:   h.MicroIdentity,
		Type:            h.Type,
		Goal:            h.Goal,
		ActiveDays:      h.ActiveDays,
		ReminderEnabled: h.ReminderEnabled,
		ReminderTime:    h.ReminderTime,
		Visibility:      h.Visibility,
		Duration:        h.Duration,
		Completions:     h.Completions,
		CreatedAt:       h.CreatedAt,
	}
}

type createHabitReq struct {
	Name            string   `json:"name"`
	MicroIdentity   string   `json:"micro_identity"`
	Type            string   `json:"type"`
	Goal            string   `json:"goal"`
	Days            []string `json:"days"` // active weekdays
	ReminderEnabled bool     `json:"reminder_enabled"`
	ReminderTime    *string  `json:"reminder_time"` // HH:MM
	Visibility      string   `json:"visibility"`
	Duration        int      `json:"duration"`
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createHabitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if req.ReminderTime != nil {
		if _, err := time.Parse("15:04", *req.ReminderTime); err != nil {
			http.Error(w, "invalid reminder_time (HH:MM)", http.StatusBadRequest)
			return
		}
	}

	created, res, err := h.Svc.Create(r.Context(), uid, habit.CreateInput{
		Name:            req.Name,
		MicroIdentity:   req.MicroIdentity,
		Type:            req.Type,
		Goal:            req.Goal,
		ActiveDays:      req.Days,
		ReminderEnabled: req.ReminderEnabled,
		ReminderTime:    req.ReminderTime,
		Visibility:      req.Visibility,
		Duration:        req.Duration,
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"habit":          toHabitDTO(created),
		"streak":         res.StreakCount,
		"streak_updated": res.Changed,
	})
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	habits, count, err := h.Svc.List(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]habitDTO, 0, len(habits))
	for _, hb := range habits {
		out = append(out, toHabitDTO(hb))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"habits": out,
		"streak": count,
	})
}

type updateHabitReq struct {
	Name        *string  `json:"name"`
	Completions []string `json:"completions"`
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateHabitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	updated, res, err := h.Svc.Update(r.Context(), uid, id, habit.UpdateInput{
		Name:        req.Name,
		Completions: req.Completions,
	})
	if err != nil {
		writeHabitError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"habit":          toHabitDTO(updated),
		"streak":         res.StreakCount,
		"streak_updated": res.Changed,
	})
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	res, err := h.Svc.Delete(r.Context(), uid, id)
	if err != nil {
		writeHabitError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message":        "habit removed",
		"streak":         res.StreakCount,
		"streak_updated": res.Changed,
	})
}

func writeHabitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, habit.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, habit.ErrForbidden):
		http.Error(w, "not authorized", http.StatusUnauthorized)
	case errors.Is(err, habit.ErrInvalidDay):
		http.Error(w, "invalid completion day (YYYY-MM-DD)", http.StatusBadRequest)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
