package services_test

import (
	"testing"

	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleAccessForStudent(t *testing.T) {
	db := testutil.Setup(t)
	course := testutil.CreateCourse(t, db, 3)
	student := testutil.CreateUser(t, db, models.RoleStudent, "student")
	testutil.CreateGroup(t, db, nil, []models.User{student}, course.Modules[:2])

	ok, status, err := services.ModuleAccess(db, student, course.Modules[0])
	require.NoError(t, err)
	assert.True(t, ok, "first assigned module is open")
	assert.Empty(t, status)

	ok, _, err = services.ModuleAccess(db, student, course.Modules[1])
	require.NoError(t, err)
	assert.False(t, ok, "second module needs an approval")

	ok, _, err = services.ModuleAccess(db, student, course.Modules[2])
	require.NoError(t, err)
	assert.False(t, ok, "unassigned module stays closed")

	require.NoError(t, db.Create(&courseModels.ModuleApproval{
		ModuleID: course.Modules[1].ID,
		UserID:   student.ID,
		Status:   courseModels.ApprovalApproved,
	}).Error)

	ok, status, err = services.ModuleAccess(db, student, course.Modules[1])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, courseModels.ApprovalApproved, status)
}

func TestApprovalWithoutAssignmentGrantsNothing(t *testing.T) {
	db := testutil.Setup(t)
	course := testutil.CreateCourse(t, db, 2)
	student := testutil.CreateUser(t, db, models.RoleStudent, "student")

	require.NoError(t, db.Create(&courseModels.ModuleApproval{
		ModuleID: course.Modules[1].ID,
		UserID:   student.ID,
		Status:   courseModels.ApprovalApproved,
	}).Error)

	ok, err := services.HasModuleAccess(db, student, course.Modules[1])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletedGroupRevokesAssignment(t *testing.T) {
	db := testutil.Setup(t)
	course := testutil.CreateCourse(t, db, 1)
	student := testutil.CreateUser(t, db, models.RoleStudent, "student")
	group := testutil.CreateGroup(t, db, nil, []models.User{student}, course.Modules)

	require.NoError(t, db.Model(&group).Update("is_deleted", true).Error)

	ok, err := services.HasModuleAccess(db, student, course.Modules[0])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStaffAlwaysHaveAccess(t *testing.T) {
	db := testutil.Setup(t)
	course := testutil.CreateCourse(t, db, 2)
	teacher := testutil.CreateUser(t, db, models.RoleTeacher, "teacher")
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin")

	for _, user := range []models.User{teacher, admin} {
		ok, err := services.HasModuleAccess(db, user, course.Modules[1])
		require.NoError(t, err)
		assert.True(t, ok, user.Role)
	}
}

func TestNextModuleFollowsOrderIndex(t *testing.T) {
	db := testutil.Setup(t)
	course := testutil.CreateCourse(t, db, 3)

	// Move the first module to the end.
	require.NoError(t, db.Model(&course.Modules[0]).Update("order_index", 10).Error)
	course.Modules[0].OrderIndex = 10

	next, err := services.NextModule(db, course.Modules[1])
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, course.Modules[2].ID, next.ID)

	next, err = services.NextModule(db, course.Modules[2])
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, course.Modules[0].ID, next.ID)

	next, err = services.NextModule(db, course.Modules[0])
	require.NoError(t, err)
	assert.Nil(t, next)

	first, err := services.IsFirstModule(db, course.Modules[1])
	require.NoError(t, err)
	assert.True(t, first)
}

func TestStudentsWithAccess(t *testing.T) {
	db := testutil.Setup(t)
	course := testutil.CreateCourse(t, db, 2)
	alice := testutil.CreateUser(t, db, models.RoleStudent, "alice")
	bob := testutil.CreateUser(t, db, models.RoleStudent, "bob")
	testutil.CreateGroup(t, db, nil, []models.User{alice, bob}, course.Modules)

	ids, err := services.StudentsWithAccess(db, course.Modules[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{alice.ID, bob.ID}, ids)

	require.NoError(t, db.Create(&courseModels.ModuleApproval{
		ModuleID: course.Modules[1].ID,
		UserID:   bob.ID,
		Status:   courseModels.ApprovalApproved,
	}).Error)

	ids, err = services.StudentsWithAccess(db, course.Modules[1])
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)
}

func TestCanReview(t *testing.T) {
	db := testutil.Setup(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacher, "teacher")
	other := testutil.CreateUser(t, db, models.RoleTeacher, "other")
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin")
	student := testutil.CreateUser(t, db, models.RoleStudent, "student")
	peer := testutil.CreateUser(t, db, models.RoleStudent, "peer")
	testutil.CreateGroup(t, db, &teacher, []models.User{student}, nil)

	cases := []struct {
		reviewer models.User
		want     bool
	}{
		{teacher, true},
		{other, false},
		{admin, true},
		{peer, false},
	}
	for _, tc := range cases {
		ok, err := services.CanReview(db, tc.reviewer, student.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, tc.reviewer.Name)
	}
}

func TestAccessibleModuleIDs(t *testing.T) {
	db := testutil.Setup(t)
	course := testutil.CreateCourse(t, db, 3)
	teacher := testutil.CreateUser(t, db, models.RoleTeacher, "teacher")
	student := testutil.CreateUser(t, db, models.RoleStudent, "student")
	outsider := testutil.CreateUser(t, db, models.RoleStudent, "outsider")
	testutil.CreateGroup(t, db, nil, []models.User{student}, course.Modules)

	ids, err := services.AccessibleModuleIDs(db, student.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{course.Modules[0].ID}, ids)

	_, _, err = services.AutoApprove(db, student.ID, course.Modules[1], teacher.ID)
	require.NoError(t, err)
	ids, err = services.AccessibleModuleIDs(db, student.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{course.Modules[0].ID, course.Modules[1].ID}, ids)

	require.NoError(t, db.Model(&course.Modules[1]).Update("is_deleted", true).Error)
	ids, err = services.AccessibleModuleIDs(db, student.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{course.Modules[0].ID}, ids)

	ids, err = services.AccessibleModuleIDs(db, outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
