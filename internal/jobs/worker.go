package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"gorm.io/gorm"
)

type Worker struct {
	ID   string
	Repo *Repo
	DB   *gorm.DB

	// Loc is the streak timezone; reminders recur daily at the same wall
	// clock time in it.
	Loc *time.Location
}

// habitRow reads the columns the dispatcher needs without importing the
// habit package (which enqueues into this one).
type habitRow struct {
	ID              uint64  `gorm:"column:id"`
	UserID          uint64  `gorm:"column:user_id"`
	Name            string  `gorm:"column:name"`
	ReminderEnabled bool    `gorm:"column:reminder_enabled"`
	ReminderTime    *string `gorm:"column:reminder_time"`
}

func (habitRow) TableName() string { return "habits" }

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				log.Printf("worker claim error: %v\n", err)
				continue
			}
			if job == nil {
				continue
			}
			w.handle(job)
		}
	}
}

func (w *Worker) handle(job *Job) {
	switch job.Type {
	case TypeReminderDispatch:
		w.handleReminder(job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleReminder(job *Job) {
	type payload struct {
		HabitID uint64 `json:"habit_id"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	var h habitRow
	if err := w.DB.
		Where("id = ? AND user_id = ?", p.HabitID, job.UserID).
		First(&h).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			// habit deleted since scheduling
			_ = w.Repo.MarkDone(job.ID)
			return
		}
		w.retry(job, "db read error")
		return
	}

	if !h.ReminderEnabled || h.ReminderTime == nil {
		_ = w.Repo.MarkDone(job.ID)
		return
	}

	log.Printf("[REMINDER] user=%d habit=%d name=%q\n", job.UserID, h.ID, h.Name)
	_ = w.Repo.MarkDone(job.ID)

	// recur tomorrow at the same wall clock time
	next, err := NextReminderRun(time.Now(), *h.ReminderTime, w.Loc)
	if err != nil {
		log.Printf("reminder reschedule failed for habit %d: %v", h.ID, err)
		return
	}
	if err := w.Repo.EnqueueReminder(job.UserID, h.ID, next); err != nil {
		log.Printf("reminder reschedule failed for habit %d: %v", h.ID, err)
	}
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}

// NextReminderRun resolves an HH:MM wall-clock time to the next instant it
// occurs in loc: later today if still ahead, otherwise tomorrow.
func NextReminderRun(now time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	at, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reminder time %q: %w", hhmm, err)
	}
	local := now.In(loc)
	run := time.Date(local.Year(), local.Month(), local.Day(), at.Hour(), at.Minute(), 0, 0, loc)
	if !run.After(now) {
		run = run.AddDate(0, 0, 1)
	}
	return run, nil
}
