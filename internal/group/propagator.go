package group

import (
	"context"
	"errors"
	"fmt"

	"ember/internal/habit"
	"ember/internal/streak"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Propagator derives group streaks from members' individual ledgers. It
// runs after the member's own credit has committed, in per-group
// transactions; member reads may be slightly stale, which is safe because
// the check re-runs on every subsequent credit.
type Propagator struct {
	DB *gorm.DB
}

// MemberCredited checks every active group the user belongs to and
// advances each group whose members are all credited for today.
func (p *Propagator) MemberCredited(ctx context.Context, userID uint64, today streak.DayID) error {
	var groups []Group
	err := p.DB.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ? AND groups.is_active", userID).
		Find(&groups).Error
	if err != nil {
		return fmt.Errorf("load member groups: %w", err)
	}

	for _, g := range groups {
		if err := p.advance(ctx, g.ID, today); err != nil {
			return err
		}
	}
	return nil
}

func (p *Propagator) advance(ctx context.Context, groupID uint64, today streak.DayID) error {
	return p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g Group
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", groupID).First(&g).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock group: %w", err)
		}
		if !g.IsActive {
			return nil
		}

		var memberIDs []uint64
		if err := tx.Model(&GroupMember{}).
			Where("group_id = ?", groupID).
			Pluck("user_id", &memberIDs).Error; err != nil {
			return fmt.Errorf("load members: %w", err)
		}

		var ledgers []habit.StreakLedger
		if err := tx.Where("user_id IN ?", memberIDs).Find(&ledgers).Error; err != nil {
			return fmt.Errorf("load member ledgers: %w", err)
		}
		lastByUser := make(map[uint64]streak.DayID, len(ledgers))
		for _, led := range ledgers {
			if led.LastCompletedDay != nil {
				lastByUser[led.UserID] = streak.DayID(*led.LastCompletedDay)
			}
		}
		// A member with no ledger yet has never been credited.
		lasts := make([]streak.DayID, len(memberIDs))
		for i, id := range memberIDs {
			lasts[i] = lastByUser[id]
		}

		if !streak.GroupAllComplete(lasts, today) {
			return nil
		}
		n, day, changed := streak.AdvanceGroup(g.GroupStreak, lastDay(&g), today)
		if !changed {
			return nil
		}
		g.GroupStreak = n
		d := string(day)
		g.LastGroupCompletedDay = &d
		if err := tx.Save(&g).Error; err != nil {
			return fmt.Errorf("save group: %w", err)
		}
		return nil
	})
}

// HabitRemoved drops the deleted habit's group links. When the deletion
// also reverted the owner's same-day credit, each linked group's own
// same-day credit is reverted with it; a member merely uncompleting a
// habit never reaches here, so group streaks are otherwise additive-only.
func (p *Propagator) HabitRemoved(ctx context.Context, habitID, userID uint64, reverted bool, today streak.DayID) error {
	var links []GroupHabit
	if err := p.DB.WithContext(ctx).Where("habit_id = ?", habitID).Find(&links).Error; err != nil {
		return fmt.Errorf("load habit links: %w", err)
	}
	if len(links) == 0 {
		return nil
	}
	if err := p.DB.WithContext(ctx).Where("habit_id = ?", habitID).Delete(&GroupHabit{}).Error; err != nil {
		return fmt.Errorf("unlink habit: %w", err)
	}
	if !reverted {
		return nil
	}

	for _, link := range links {
		err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var g Group
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", link.GroupID).First(&g).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("lock group: %w", err)
			}
			n, day, changed := streak.RevertGroup(g.GroupStreak, lastDay(&g), today)
			if !changed {
				return nil
			}
			g.GroupStreak = n
			if day == "" {
				g.LastGroupCompletedDay = nil
			} else {
				d := string(day)
				g.LastGroupCompletedDay = &d
			}
			if err := tx.Save(&g).Error; err != nil {
				return fmt.Errorf("save group: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func lastDay(g *Group) streak.DayID {
	if g.LastGroupCompletedDay == nil {
		return ""
	}
	return streak.DayID(*g.LastGroupCompletedDay)
}
