package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ember/internal/auth"
	"ember/internal/group"
	"ember/internal/habit"

	"github.com/go-chi/chi/v5"
)

type GroupHandler struct {
	Svc *group.Service
}

type groupDTO struct {
	ID                    uint64    `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	Avatar                string    `json:"avatar"`
	TrackingType          string    `json:"tracking_type"`
	Duration              int       `json:"duration"`
	InviteCode            string    `json:"invite_code"`
	IsActive              bool      `json:"is_active"`
	GroupStreak           int       `json:"group_streak"`
	LastGroupCompletedDay *string   `json:"last_group_completed_day"`
	CreatedAt             time.Time `json:"created_at"`
}

func toGroupDTO(g group.Group) groupDTO {
	return groupDTO{
		ID:                    g.ID,
		Name:                  g.Name,
		Description:           g.Description,
		Avatar:                g.Avatar,
		TrackingType:          g.TrackingType,
		Duration:              g.Duration,
		InviteCode:            g.InviteCode,
		IsActive:              g.IsActive,
		GroupStreak:           g.GroupStreak,
		LastGroupCompletedDay: g.LastGroupCompletedDay,
		CreatedAt:             g.CreatedAt,
	}
}

type createGroupReq struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Avatar       string `json:"avatar"`
	TrackingType string `json:"tracking_type"`
	Duration     int    `json:"duration"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createGroupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if req.TrackingType != "" && req.TrackingType != "shared" && req.TrackingType != "individual" {
		http.Error(w, "invalid tracking_type", http.StatusBadRequest)
		return
	}

	g, err := h.Svc.Create(r.Context(), uid, group.CreateInput{
		Name:         req.Name,
		Description:  req.Description,
		Avatar:       req.Avatar,
		TrackingType: req.TrackingType,
		Duration:     req.Duration,
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toGroupDTO(g))
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	groups, err := h.Svc.ListMine(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	type summaryDTO struct {
		groupDTO
		MemberCount int64 `json:"member_count"`
	}
	out := make([]summaryDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, summaryDTO{groupDTO: toGroupDTO(g.Group), MemberCount: g.MemberCount})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"groups": out})
}

type joinGroupReq struct {
	InviteCode string `json:"invite_code"`
}

func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req joinGroupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.InviteCode = strings.TrimSpace(req.InviteCode)
	if req.InviteCode == "" {
		http.Error(w, "invite_code required", http.StatusBadRequest)
		return
	}

	g, err := h.Svc.Join(r.Context(), uid, req.InviteCode)
	if err != nil {
		writeGroupError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toGroupDTO(g))
}

func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Svc.Leave(r.Context(), uid, id); err != nil {
		writeGroupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type linkHabitReq struct {
	HabitID uint64 `json:"habit_id"`
}

func (h *GroupHandler) LinkHabit(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req linkHabitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HabitID == 0 {
		http.Error(w, "habit_id required", http.StatusBadRequest)
		return
	}

	if err := h.Svc.LinkHabit(r.Context(), uid, id, req.HabitID); err != nil {
		writeGroupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	g, members, links, err := h.Svc.Get(r.Context(), uid, id)
	if err != nil {
		writeGroupError(w, err)
		return
	}

	type memberDTO struct {
		ID          uint64 `json:"id"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
	}
	memberOut := make([]memberDTO, 0, len(members))
	for _, m := range members {
		memberOut = append(memberOut, memberDTO{ID: m.ID, Username: m.Username, DisplayName: m.DisplayName})
	}
	type linkDTO struct {
		HabitID uint64 `json:"habit_id"`
		UserID  uint64 `json:"user_id"`
	}
	linkOut := make([]linkDTO, 0, len(links))
	for _, l := range links {
		linkOut = append(linkOut, linkDTO{HabitID: l.HabitID, UserID: l.UserID})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"group":   toGroupDTO(g),
		"members": memberOut,
		"habits":  linkOut,
	})
}

func writeGroupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, group.ErrNotFound), errors.Is(err, habit.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, group.ErrNotMember):
		http.Error(w, "not a member", http.StatusForbidden)
	case errors.Is(err, group.ErrInactive):
		http.Error(w, "group is not active", http.StatusGone)
	case errors.Is(err, habit.ErrForbidden):
		http.Error(w, "not authorized", http.StatusUnauthorized)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
