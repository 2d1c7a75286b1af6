package services_test

import (
	"testing"
	"time"

	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDeadlineReminders(t *testing.T) {
	db := testutil.Setup(t)
	course := testutil.CreateCourse(t, db, 1)
	done := testutil.CreateUser(t, db, models.RoleStudent, "done")
	late := testutil.CreateUser(t, db, models.RoleStudent, "late")
	testutil.CreateGroup(t, db, nil, []models.User{done, late}, course.Modules)

	at := time.Now()
	soon := at.Add(24 * time.Hour)
	later := at.Add(10 * 24 * time.Hour)

	dueSoon := courseModels.Project{ModuleID: course.Modules[0].ID, Title: "Due soon", DueDate: &soon}
	dueLater := courseModels.Project{ModuleID: course.Modules[0].ID, Title: "Due later", DueDate: &later}
	require.NoError(t, db.Create(&dueSoon).Error)
	require.NoError(t, db.Create(&dueLater).Error)
	testutil.Submit(t, db, dueSoon, done)

	sent, err := services.SendDeadlineReminders(db, at)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	reminders := notificationsFor(t, db, late.ID, models.NotificationDeadline)
	require.Len(t, reminders, 1)
	assert.Contains(t, reminders[0].Message, "Due soon")
	assert.Empty(t, notificationsFor(t, db, done.ID, models.NotificationDeadline))
}

func TestPurgeReadNotifications(t *testing.T) {
	db := testutil.Setup(t)
	at := time.Now()
	old := at.AddDate(0, 0, -45)

	rows := []models.Notification{
		{UserID: 1, Title: "old read", IsRead: true},
		{UserID: 1, Title: "old unread"},
		{UserID: 1, Title: "recent read", IsRead: true},
	}
	require.NoError(t, db.Create(&rows).Error)
	require.NoError(t, db.Model(&models.Notification{}).Where("id IN ?", []uint{rows[0].ID, rows[1].ID}).
		Update("created_at", old).Error)

	purged, err := services.PurgeReadNotifications(db, at)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	var titles []string
	require.NoError(t, db.Unscoped().Model(&models.Notification{}).Order("id asc").Pluck("title", &titles).Error)
	assert.Equal(t, []string{"old unread", "recent read"}, titles)
}

func TestInitializeSchedulerRegistersDailyJobs(t *testing.T) {
	db := testutil.Setup(t)

	scheduler, err := services.InitializeScheduler(db)
	require.NoError(t, err)
	defer scheduler.Stop()

	assert.Len(t, scheduler.Entries(), 2)
}
