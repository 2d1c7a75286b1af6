package services_test

import (
	"sync"
	"testing"

	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type approvalFixture struct {
	db      *gorm.DB
	course  testutil.Course
	teacher models.User
	admin   models.User
	student models.User
}

func newApprovalFixture(t *testing.T) approvalFixture {
	db := testutil.Setup(t)
	f := approvalFixture{
		db:      db,
		course:  testutil.CreateCourse(t, db, 3),
		teacher: testutil.CreateUser(t, db, models.RoleTeacher, "teacher"),
		admin:   testutil.CreateUser(t, db, models.RoleAdmin, "admin"),
		student: testutil.CreateUser(t, db, models.RoleStudent, "student"),
	}
	testutil.CreateGroup(t, db, &f.teacher, []models.User{f.student}, f.course.Modules)
	return f
}

func notificationsFor(t *testing.T, db *gorm.DB, userID uint, kind string) []models.Notification {
	var rows []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", userID, kind).Find(&rows).Error)
	return rows
}

func TestRequestApprovalNotifiesReviewers(t *testing.T) {
	f := newApprovalFixture(t)

	approval, err := services.RequestApproval(f.db, f.student, f.course.Modules[1])
	require.NoError(t, err)
	assert.Equal(t, courseModels.ApprovalPending, approval.Status)
	assert.Equal(t, f.student.ID, approval.UserID)

	assert.Len(t, notificationsFor(t, f.db, f.teacher.ID, models.NotificationApprovalRequest), 1)
	assert.Len(t, notificationsFor(t, f.db, f.admin.ID, models.NotificationApprovalRequest), 1)
}

func TestRequestApprovalErrors(t *testing.T) {
	f := newApprovalFixture(t)
	outsider := testutil.CreateUser(t, f.db, models.RoleStudent, "outsider")

	_, err := services.RequestApproval(f.db, outsider, f.course.Modules[1])
	assert.ErrorIs(t, err, services.ErrNotAssigned)

	_, err = services.RequestApproval(f.db, f.student, f.course.Modules[0])
	assert.ErrorIs(t, err, services.ErrAlreadyUnlocked)

	_, err = services.RequestApproval(f.db, f.student, f.course.Modules[1])
	require.NoError(t, err)
	_, err = services.RequestApproval(f.db, f.student, f.course.Modules[1])
	assert.ErrorIs(t, err, services.ErrAlreadyPending)
}

func TestRejectedRequestCanBeReopened(t *testing.T) {
	f := newApprovalFixture(t)

	approval, err := services.RequestApproval(f.db, f.student, f.course.Modules[1])
	require.NoError(t, err)

	rejected, err := services.RespondApproval(f.db, approval.ID, f.teacher, courseModels.ApprovalRejected, "finish module 1 first")
	require.NoError(t, err)
	assert.Equal(t, courseModels.ApprovalRejected, rejected.Status)
	assert.Equal(t, "finish module 1 first", rejected.Reason)

	reopened, err := services.RequestApproval(f.db, f.student, f.course.Modules[1])
	require.NoError(t, err)
	assert.Equal(t, approval.ID, reopened.ID)
	assert.Equal(t, courseModels.ApprovalPending, reopened.Status)
	assert.Empty(t, reopened.Reason)
	assert.Nil(t, reopened.RespondedBy)

	approved, err := services.RespondApproval(f.db, approval.ID, f.admin, courseModels.ApprovalApproved, "")
	require.NoError(t, err)
	assert.Equal(t, courseModels.ApprovalApproved, approved.Status)

	_, err = services.RequestApproval(f.db, f.student, f.course.Modules[1])
	assert.ErrorIs(t, err, services.ErrAlreadyApproved)

	ok, err := services.HasModuleAccess(f.db, f.student, f.course.Modules[1])
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Len(t, notificationsFor(t, f.db, f.student.ID, models.NotificationApprovalResponse), 2)
}

func TestRespondApprovalRules(t *testing.T) {
	f := newApprovalFixture(t)
	stranger := testutil.CreateUser(t, f.db, models.RoleTeacher, "stranger")

	approval, err := services.RequestApproval(f.db, f.student, f.course.Modules[1])
	require.NoError(t, err)

	_, err = services.RespondApproval(f.db, approval.ID, f.teacher, courseModels.ApprovalPending, "")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	_, err = services.RespondApproval(f.db, approval.ID, stranger, courseModels.ApprovalApproved, "")
	assert.ErrorIs(t, err, services.ErrNoAccess)

	_, err = services.RespondApproval(f.db, approval.ID, f.teacher, courseModels.ApprovalApproved, "")
	require.NoError(t, err)

	_, err = services.RespondApproval(f.db, approval.ID, f.teacher, courseModels.ApprovalRejected, "")
	assert.ErrorIs(t, err, services.ErrNotPending)

	_, err = services.RespondApproval(f.db, 9999, f.teacher, courseModels.ApprovalApproved, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestConcurrentResponsesHaveOneWinner(t *testing.T) {
	f := newApprovalFixture(t)

	approval, err := services.RequestApproval(f.db, f.student, f.course.Modules[1])
	require.NoError(t, err)

	const responders = 5
	var wg sync.WaitGroup
	errs := make([]error, responders)
	for i := 0; i < responders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := courseModels.ApprovalApproved
			if i%2 == 1 {
				status = courseModels.ApprovalRejected
			}
			_, errs[i] = services.RespondApproval(f.db, approval.ID, f.admin, status, "")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, services.ErrNotPending)
	}
	assert.Equal(t, 1, wins)
}

func TestAutoApprove(t *testing.T) {
	f := newApprovalFixture(t)
	module := f.course.Modules[2]

	approval, changed, err := services.AutoApprove(f.db, f.student.ID, module, f.teacher.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, approval.AutoApproved)
	assert.Equal(t, courseModels.ApprovalApproved, approval.Status)

	again, changed, err := services.AutoApprove(f.db, f.student.ID, module, f.admin.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, approval.ID, again.ID)
	require.NotNil(t, again.RespondedBy)
	assert.Equal(t, f.teacher.ID, *again.RespondedBy)
}

func TestAutoApprovePromotesPendingRequest(t *testing.T) {
	f := newApprovalFixture(t)

	pending, err := services.RequestApproval(f.db, f.student, f.course.Modules[1])
	require.NoError(t, err)

	approval, changed, err := services.AutoApprove(f.db, f.student.ID, f.course.Modules[1], f.teacher.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, pending.ID, approval.ID)
	assert.Equal(t, courseModels.ApprovalApproved, approval.Status)
	assert.True(t, approval.AutoApproved)
}

func TestAutoApproveOverridesRejection(t *testing.T) {
	f := newApprovalFixture(t)
	module := f.course.Modules[1]

	request, err := services.RequestApproval(f.db, f.student, module)
	require.NoError(t, err)
	_, err = services.RespondApproval(f.db, request.ID, f.teacher, courseModels.ApprovalRejected, "Finish the first project")
	require.NoError(t, err)

	approval, changed, err := services.AutoApprove(f.db, f.student.ID, module, f.teacher.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, request.ID, approval.ID)
	assert.Equal(t, courseModels.ApprovalApproved, approval.Status)
	assert.Empty(t, approval.Reason)
}

func TestAutoApproveWinsAgainstConcurrentRejection(t *testing.T) {
	for i := 0; i < 10; i++ {
		f := newApprovalFixture(t)
		module := f.course.Modules[1]

		request, err := services.RequestApproval(f.db, f.student, module)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var autoErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, autoErr = services.AutoApprove(f.db, f.student.ID, module, f.teacher.ID)
		}()
		go func() {
			defer wg.Done()
			_, _ = services.RespondApproval(f.db, request.ID, f.admin, courseModels.ApprovalRejected, "")
		}()
		wg.Wait()
		require.NoError(t, autoErr)

		var stored courseModels.ModuleApproval
		require.NoError(t, f.db.First(&stored, request.ID).Error)
		assert.Equal(t, courseModels.ApprovalApproved, stored.Status)
	}
}
