package habit

import (
	"encoding/json"
	"fmt"
	"time"

	"ember/internal/jobs"

	"gorm.io/gorm"
)

// scheduleReminder replaces any pending reminder for the habit with one at
// the next HH:MM occurrence in the streak timezone.
func (s *Service) scheduleReminder(tx *gorm.DB, h *Habit) error {
	if err := cancelReminders(tx, h.UserID, h.ID); err != nil {
		return err
	}

	runAt, err := jobs.NextReminderRun(time.Now(), *h.ReminderTime, s.Cal.Location())
	if err != nil {
		return fmt.Errorf("reminder time: %w", err)
	}

	payload, _ := json.Marshal(map[string]any{"habit_id": h.ID})
	j := jobs.Job{
		UserID:  h.UserID,
		Type:    jobs.TypeReminderDispatch,
		Payload: payload,
		RunAt:   runAt,
		Status:  "PENDING",
	}
	if err := tx.Create(&j).Error; err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	return nil
}

// cancelReminders drops pending reminder jobs for a habit so it never
// double-dispatches after a reschedule or delete.
func cancelReminders(tx *gorm.DB, userID, habitID uint64) error {
	err := tx.Exec(`
		delete from jobs
		where user_id = ?
		  and type = ?
		  and status = 'PENDING'
		  and (payload->>'habit_id')::bigint = ?
	`, userID, jobs.TypeReminderDispatch, habitID).Error
	if err != nil {
		return fmt.Errorf("cancel reminders: %w", err)
	}
	return nil
}
