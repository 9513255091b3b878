package group

import (
	"context"
	"errors"
	"fmt"

	"ember/internal/auth"
	"ember/internal/habit"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("group not found")
var ErrNotMember = errors.New("not a group member")
var ErrInactive = errors.New("group is not active")

// Service covers group membership and habit links. Streak propagation
// lives in Propagator.
type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	Name         string
	Description  string
	Avatar       string
	TrackingType string
	Duration     int
}

// Summary is a group plus the bits list views need.
type Summary struct {
	Group
	MemberCount int64
}

func (s *Service) Create(ctx context.Context, creatorID uint64, in CreateInput) (Group, error) {
	g := Group{
		CreatorID:    creatorID,
		Name:         in.Name,
		Description:  in.Description,
		Avatar:       in.Avatar,
		TrackingType: in.TrackingType,
		Duration:     in.Duration,
		InviteCode:   uuid.NewString(),
		IsActive:     true,
	}
	if g.TrackingType == "" {
		g.TrackingType = "shared"
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&g).Error; err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		m := GroupMember{GroupID: g.ID, UserID: creatorID}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("add creator: %w", err)
		}
		return nil
	})
	if err != nil {
		return Group{}, err
	}
	return g, nil
}

// Join adds the user by invite code. Joining is idempotent; a new member
// simply blocks the group's next credit until they earn their own.
func (s *Service) Join(ctx context.Context, userID uint64, inviteCode string) (Group, error) {
	var g Group
	err := s.DB.WithContext(ctx).Where("invite_code = ?", inviteCode).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Group{}, ErrNotFound
	}
	if err != nil {
		return Group{}, fmt.Errorf("load group: %w", err)
	}
	if !g.IsActive {
		return Group{}, ErrInactive
	}

	m := GroupMember{GroupID: g.ID, UserID: userID}
	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m).Error; err != nil {
		return Group{}, fmt.Errorf("join group: %w", err)
	}
	return g, nil
}

// Leave removes the user's membership and their habit links. A group left
// empty is deactivated.
func (s *Service) Leave(ctx context.Context, userID, groupID uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&GroupMember{})
		if res.Error != nil {
			return fmt.Errorf("leave group: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotMember
		}
		if err := tx.Where("group_id = ? AND user_id = ?", groupID, userID).
			Delete(&GroupHabit{}).Error; err != nil {
			return fmt.Errorf("unlink habits: %w", err)
		}

		var remaining int64
		if err := tx.Model(&GroupMember{}).
			Where("group_id = ?", groupID).Count(&remaining).Error; err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		if remaining == 0 {
			if err := tx.Model(&Group{}).Where("id = ?", groupID).
				Update("is_active", false).Error; err != nil {
				return fmt.Errorf("deactivate group: %w", err)
			}
		}
		return nil
	})
}

// LinkHabit associates one of the member's own habits with the group.
func (s *Service) LinkHabit(ctx context.Context, userID, groupID, habitID uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&GroupMember{}).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			Count(&n).Error; err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if n == 0 {
			return ErrNotMember
		}

		var h habit.Habit
		err := tx.Where("id = ?", habitID).First(&h).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return habit.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load habit: %w", err)
		}
		if h.UserID != userID {
			return habit.ErrForbidden
		}

		link := GroupHabit{GroupID: groupID, HabitID: habitID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&link).Error; err != nil {
			return fmt.Errorf("link habit: %w", err)
		}
		return nil
	})
}

// ListMine returns the user's groups with member counts, newest first.
func (s *Service) ListMine(ctx context.Context, userID uint64) ([]Summary, error) {
	var groups []Group
	err := s.DB.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Order("groups.created_at desc").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	out := make([]Summary, 0, len(groups))
	for _, g := range groups {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&GroupMember{}).
			Where("group_id = ?", g.ID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count members: %w", err)
		}
		out = append(out, Summary{Group: g, MemberCount: n})
	}
	return out, nil
}

// Get returns a group the user belongs to, with resolved members and
// habit links.
func (s *Service) Get(ctx context.Context, userID, groupID uint64) (Group, []auth.User, []GroupHabit, error) {
	var g Group
	err := s.DB.WithContext(ctx).Where("id = ?", groupID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Group{}, nil, nil, ErrNotFound
	}
	if err != nil {
		return Group{}, nil, nil, fmt.Errorf("load group: %w", err)
	}

	var memberIDs []uint64
	if err := s.DB.WithContext(ctx).Model(&GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &memberIDs).Error; err != nil {
		return Group{}, nil, nil, fmt.Errorf("load members: %w", err)
	}
	isMember := false
	for _, id := range memberIDs {
		if id == userID {
			isMember = true
			break
		}
	}
	if !isMember {
		return Group{}, nil, nil, ErrNotMember
	}

	var members []auth.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", memberIDs).Find(&members).Error; err != nil {
		return Group{}, nil, nil, fmt.Errorf("load member users: %w", err)
	}

	var links []GroupHabit
	if err := s.DB.WithContext(ctx).Where("group_id = ?", groupID).Find(&links).Error; err != nil {
		return Group{}, nil, nil, fmt.Errorf("load habit links: %w", err)
	}
	return g, members, links, nil
}
