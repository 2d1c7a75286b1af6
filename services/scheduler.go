package services

import (
	"fmt"
	"log"
	"time"

	"lms/models"
	courseModels "lms/models/course"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeScheduler starts the daily deadline reminder and notification cleanup jobs.
// It fails when cron rejects a job spec.
func InitializeScheduler(db *gorm.DB) (*cron.Cron, error) {
	log.Println("[SCHEDULER] Initializing scheduler...")

	c := cron.New()
	if err := registerJobs(c, db); err != nil {
		return nil, err
	}

	c.Start()
	log.Println("[SCHEDULER] Scheduler started - reminders at 08:00, cleanup at 03:00")
	return c, nil
}

type scheduledJob struct {
	name string
	spec string
	run  func()
}

func registerJobs(c *cron.Cron, db *gorm.DB) error {
	jobs := []scheduledJob{
		{name: "deadline reminders", spec: "0 8 * * *", run: func() {
			sent, err := SendDeadlineReminders(db, time.Now())
			if err != nil {
				log.Printf("[SCHEDULER] Deadline reminders failed: %v", err)
				return
			}
			log.Printf("[SCHEDULER] Sent %d deadline reminders", sent)
		}},
		{name: "notification cleanup", spec: "0 3 * * *", run: func() {
			purged, err := PurgeReadNotifications(db, time.Now())
			if err != nil {
				log.Printf("[SCHEDULER] Notification cleanup failed: %v", err)
				return
			}
			log.Printf("[SCHEDULER] Purged %d read notifications", purged)
		}},
	}

	for _, job := range jobs {
		if _, err := c.AddFunc(job.spec, job.run); err != nil {
			log.Printf("[SCHEDULER] Failed to register %s (%s): %v", job.name, job.spec, err)
			return fmt.Errorf("scheduler: register %s: %w", job.name, err)
		}
	}
	return nil
}

// SendDeadlineReminders notifies students who can open a project due by the end of the day
// after tomorrow and have not submitted yet. It returns the number of reminders written.
func SendDeadlineReminders(db *gorm.DB, at time.Time) (int, error) {
	windowEnd := now.With(at).EndOfDay().AddDate(0, 0, 2)

	var projects []courseModels.Project
	if err := db.Where("is_deleted = ? AND due_date IS NOT NULL AND due_date >= ? AND due_date <= ?", false, at, windowEnd).
		Find(&projects).Error; err != nil {
		return 0, err
	}

	sent := 0
	for _, project := range projects {
		var module courseModels.Module
		if err := db.Where("id = ? AND is_deleted = ?", project.ModuleID, false).First(&module).Error; err != nil {
			continue
		}

		students, err := StudentsWithAccess(db, module)
		if err != nil {
			return sent, err
		}

		var submitted []uint
		if err := db.Model(&courseModels.ProjectSubmission{}).
			Where("project_id = ? AND is_deleted = ?", project.ID, false).
			Pluck("user_id", &submitted).Error; err != nil {
			return sent, err
		}
		done := make(map[uint]bool, len(submitted))
		for _, id := range submitted {
			done[id] = true
		}

		var pending []uint
		for _, id := range students {
			if !done[id] {
				pending = append(pending, id)
			}
		}
		if len(pending) == 0 {
			continue
		}

		if err := Notify(db, pending, models.NotificationDeadline,
			"Deadline approaching",
			fmt.Sprintf("%q is due on %s", project.Title, project.DueDate.Format("2006-01-02 15:04")),
			fmt.Sprintf("/projects/%d", project.ID),
		); err != nil {
			return sent, err
		}
		sent += len(pending)
	}
	return sent, nil
}

// PurgeReadNotifications hard-deletes read notifications created more than 30 days before at.
func PurgeReadNotifications(db *gorm.DB, at time.Time) (int64, error) {
	cutoff := now.With(at).BeginningOfDay().AddDate(0, 0, -30)
	res := db.Unscoped().Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
