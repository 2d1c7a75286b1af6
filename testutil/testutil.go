// Package testutil wires an in-memory database and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const Password = "password123"

// Config returns a configuration suitable for tests.
func Config(t *testing.T) *config.Config {
	return &config.Config{
		Port:        "0",
		AppName:     "LMS Test",
		DBDriver:    "sqlite",
		JWTKey:      "test-secret",
		JWTTTLHours: 1,
		SaltRound:   bcrypt.MinCost,
		CookieName:  "token",
		CorsOrigins: "http://localhost:5173",
		UploadDir:   t.TempDir(),
		MaxUploadMB: 1,
		EmailSender: "noreply@test.local",
	}
}

// Setup installs a fresh config, console mailer and in-memory database and returns the database.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig = Config(t)
	utils.Mail = &utils.ConsoleMailer{}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps sqlite writers from locking each other out.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	database.Database = database.DbInstance{Db: db}
	return db
}

// CreateUser inserts an active user with the given role and Password.
func CreateUser(t *testing.T, db *gorm.DB, role, name string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s-%s@test.local", name, uuid.NewString()[:8]),
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// Course is a published formation with ordered modules.
type Course struct {
	Category  courseModels.Category
	Formation courseModels.Formation
	Modules   []courseModels.Module
}

// CreateCourse inserts a published formation with n modules ordered 1..n.
func CreateCourse(t *testing.T, db *gorm.DB, n int) Course {
	t.Helper()
	course := Course{Category: courseModels.Category{Name: "Category " + uuid.NewString()[:8]}}
	require.NoError(t, db.Create(&course.Category).Error)

	course.Formation = courseModels.Formation{CategoryID: course.Category.ID, Title: "Go Backend", IsPublished: true}
	require.NoError(t, db.Create(&course.Formation).Error)

	for i := 1; i <= n; i++ {
		module := courseModels.Module{FormationID: course.Formation.ID, Title: fmt.Sprintf("Module %d", i), OrderIndex: i}
		require.NoError(t, db.Create(&module).Error)
		course.Modules = append(course.Modules, module)
	}
	return course
}

// CreateGroup inserts a group taught by teacher with the given students and module assignments.
func CreateGroup(t *testing.T, db *gorm.DB, teacher *models.User, students []models.User, modules []courseModels.Module) models.Group {
	t.Helper()
	group := models.Group{Name: "Group " + uuid.NewString()[:8]}
	if teacher != nil {
		group.TeacherID = &teacher.ID
	}
	require.NoError(t, db.Create(&group).Error)

	for _, student := range students {
		require.NoError(t, db.Create(&models.GroupMember{GroupID: group.ID, UserID: student.ID}).Error)
	}
	for _, module := range modules {
		require.NoError(t, db.Create(&models.GroupModule{GroupID: group.ID, ModuleID: module.ID}).Error)
	}
	return group
}

// CreateProject inserts a project on the module scored out of 20 with a passing score of 10.
func CreateProject(t *testing.T, db *gorm.DB, module courseModels.Module) courseModels.Project {
	t.Helper()
	project := courseModels.Project{ModuleID: module.ID, Title: "Project " + module.Title, MaxScore: 20, PassingScore: 10}
	require.NoError(t, db.Create(&project).Error)
	return project
}

// Submit inserts a pending submission for the student.
func Submit(t *testing.T, db *gorm.DB, project courseModels.Project, student models.User) courseModels.ProjectSubmission {
	t.Helper()
	submission := courseModels.ProjectSubmission{
		ProjectID: project.ID,
		UserID:    student.ID,
		FileURL:   "/uploads/work.pdf",
		Status:    courseModels.SubmissionSubmitted,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}
