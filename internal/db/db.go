package db

import (
	"fmt"

	"ember/internal/auth"
	"ember/internal/group"
	"ember/internal/habit"
	"ember/internal/jobs"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&habit.Habit{},
		&habit.StreakLedger{},
		&group.Group{},
		&group.GroupMember{},
		&group.GroupHabit{},
		&jobs.Job{},
		&auth.User{},
	); err != nil {
		return err
	}

	// Completion / history day sets (GIN for text[])
	if err := gdb.Exec(`create index if not exists idx_habits_completions on habits using gin (completions);`).Error; err != nil {
		return err
	}
	if err := gdb.Exec(`create index if not exists idx_ledgers_history on streak_ledgers using gin (history);`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_habits_user_created on habits(user_id, created_at desc);`,
		`create index if not exists idx_group_members_user on group_members(user_id);`,
		`create index if not exists idx_group_habits_habit on group_habits(habit_id);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
