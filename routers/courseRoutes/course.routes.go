package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	"lms/validators"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the catalog, content, grading and approval routes
func SetupCourseRoutes(app *fiber.App) {
	authenticated := []fiber.Handler{middleware.JWTMiddleware, middleware.Authorize()}
	staff := []fiber.Handler{middleware.JWTMiddleware, middleware.Authorize(models.RoleTeacher, models.RoleAdmin)}
	student := []fiber.Handler{middleware.JWTMiddleware, middleware.Authorize(models.RoleStudent)}
	admin := []fiber.Handler{middleware.JWTMiddleware, middleware.Authorize(models.RoleAdmin)}

	with := func(guards []fiber.Handler, handlers ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, guards...), handlers...)
	}

	// Public catalog
	app.Get("/categories", controllers.GetCategories)
	app.Post("/categories", with(admin, courseValidator.Category(), controllers.CreateCategory)...)
	app.Put("/categories/:id", with(admin, validators.ID("Category"), courseValidator.Category(), controllers.UpdateCategory)...)
	app.Delete("/categories/:id", with(admin, validators.ID("Category"), controllers.DeleteCategory)...)
	app.Get("/formations", courseValidator.FormationList(), controllers.GetFormations)
	app.Get("/formations/:id", validators.ID("Formation"), controllers.GetFormationDetails)

	// Modules
	app.Get("/formations/:id/modules", with(authenticated, validators.ID("Formation"), controllers.ListFormationModules)...)
	app.Post("/formations/:id/modules", with(staff, validators.ID("Formation"), courseValidator.CreateModule(), controllers.CreateModule)...)
	app.Get("/modules/:id", with(authenticated, validators.ID("Module"), controllers.GetModule)...)
	app.Put("/modules/:id", with(staff, validators.ID("Module"), courseValidator.UpdateModule(), controllers.UpdateModule)...)
	app.Delete("/modules/:id", with(staff, validators.ID("Module"), controllers.DeleteModule)...)

	// Lessons
	app.Get("/modules/:id/lessons", with(authenticated, validators.ID("Module"), controllers.GetModuleLessons)...)
	app.Post("/modules/:id/lessons", with(staff, validators.ID("Module"), courseValidator.CreateLesson(), controllers.CreateLesson)...)
	app.Get("/lessons/:id", with(authenticated, validators.ID("Lesson"), controllers.GetLesson)...)
	app.Put("/lessons/:id", with(staff, validators.ID("Lesson"), courseValidator.UpdateLesson(), controllers.UpdateLesson)...)
	app.Delete("/lessons/:id", with(staff, validators.ID("Lesson"), controllers.DeleteLesson)...)

	// Quizzes
	app.Post("/modules/:id/quizzes", with(staff, validators.ID("Module"), courseValidator.Quiz(), controllers.CreateQuiz)...)
	app.Get("/quizzes/:id", with(authenticated, validators.ID("Quiz"), controllers.GetQuiz)...)
	app.Put("/quizzes/:id", with(staff, validators.ID("Quiz"), courseValidator.Quiz(), controllers.UpdateQuiz)...)
	app.Delete("/quizzes/:id", with(staff, validators.ID("Quiz"), controllers.DeleteQuiz)...)
	app.Post("/quizzes/:id/attempts", with(student, validators.ID("Quiz"), courseValidator.QuizAttempt(), controllers.SubmitQuizAttempt)...)
	app.Get("/quizzes/:id/attempts", with(authenticated, validators.ID("Quiz"), controllers.ListQuizAttempts)...)

	// Projects and submissions
	app.Get("/modules/:id/projects", with(authenticated, validators.ID("Module"), controllers.GetModuleProjects)...)
	app.Post("/modules/:id/projects", with(staff, validators.ID("Module"), courseValidator.CreateProject(), controllers.CreateProject)...)
	app.Get("/projects/:id", with(authenticated, validators.ID("Project"), controllers.GetProject)...)
	app.Put("/projects/:id", with(staff, validators.ID("Project"), courseValidator.UpdateProject(), controllers.UpdateProject)...)
	app.Delete("/projects/:id", with(staff, validators.ID("Project"), controllers.DeleteProject)...)
	app.Post("/projects/:id/submissions", with(student, validators.ID("Project"), controllers.SubmitProject)...)
	app.Get("/projects/:id/submissions", with(authenticated, validators.ID("Project"), controllers.ListSubmissions)...)
	app.Post("/submissions/:id/grade", with(staff, validators.ID("Submission"), courseValidator.GradeSubmission(), controllers.GradeSubmission)...)

	// Grades
	app.Get("/grades/me", with(authenticated, controllers.GetMyGrades)...)
	app.Get("/grades", with(staff, courseValidator.GradeList(), controllers.ListGrades)...)
	app.Post("/grades", with(staff, courseValidator.CreateGrade(), controllers.CreateGrade)...)
	app.Put("/grades/:id", with(staff, validators.ID("Grade"), courseValidator.UpdateGrade(), controllers.UpdateGrade)...)
	app.Delete("/grades/:id", with(admin, validators.ID("Grade"), controllers.DeleteGrade)...)

	// Approvals
	app.Post("/approvals", with(student, courseValidator.RequestApproval(), controllers.RequestModuleApproval)...)
	app.Get("/approvals", with(authenticated, courseValidator.ApprovalList(), controllers.ListApprovals)...)
	app.Patch("/approvals/:id", with(staff, validators.ID("Approval"), courseValidator.RespondApproval(), controllers.RespondModuleApproval)...)
}
