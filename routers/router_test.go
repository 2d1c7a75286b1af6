package routers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"lms/config"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/routers"
	"lms/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) object(t *testing.T) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(e.Data, &out))
	return out
}

func (e envelope) list(t *testing.T) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(e.Data, &out))
	return out
}

func (e envelope) id(t *testing.T) uint {
	t.Helper()
	return uint(e.object(t)["ID"].(float64))
}

type testServer struct {
	t   *testing.T
	db  *gorm.DB
	app *fiber.App
}

func newServer(t *testing.T) testServer {
	db := testutil.Setup(t)
	return testServer{t: t, db: db, app: routers.NewApp(config.AppConfig, false)}
}

func (s testServer) token(user models.User) string {
	token, err := middleware.GenerateJWT(user.ID, user.Role, user.Email)
	require.NoError(s.t, err)
	return token
}

func (s testServer) send(req *http.Request, token string) (*http.Response, envelope) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	var env envelope
	require.NoError(s.t, json.Unmarshal(raw, &env), string(raw))
	return resp, env
}

func (s testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, env := s.send(req, token)
	return resp.StatusCode, env
}

func TestSignupLoginAndSession(t *testing.T) {
	s := newServer(t)

	status, env := s.do(http.MethodPost, "/auth/signup", "", fiber.Map{
		"name": "Ada", "email": "Ada@Example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	user := env.object(t)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, models.RoleStudent, user["role"])
	assert.NotContains(t, user, "password")

	status, _ = s.do(http.MethodPost, "/auth/signup", "", fiber.Map{
		"name": "Ada", "email": "ada@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	payload, _ := json.Marshal(fiber.Map{"email": "ada@example.com", "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, env := s.send(req, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.NotEmpty(t, env.object(t)["token"])

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: cookie.Value})
	resp, env = s.send(req, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ada@example.com", env.object(t)["email"])
}

func TestSignupValidation(t *testing.T) {
	s := newServer(t)

	status, env := s.do(http.MethodPost, "/auth/signup", "", fiber.Map{"name": "A", "email": "nope", "password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	fields := env.object(t)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "name")
}

func TestLoginLocksAfterThreeFailures(t *testing.T) {
	s := newServer(t)
	user := testutil.CreateUser(t, s.db, models.RoleStudent, "locked")

	for i := 0; i < 3; i++ {
		status, _ := s.do(http.MethodPost, "/auth/login", "", fiber.Map{"email": user.Email, "password": "wrong-password"})
		assert.Equal(t, http.StatusUnauthorized, status)
	}

	status, env := s.do(http.MethodPost, "/auth/login", "", fiber.Map{"email": user.Email, "password": testutil.Password})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, env.Message, "blocked")
}

func TestRoleGuards(t *testing.T) {
	s := newServer(t)
	student := testutil.CreateUser(t, s.db, models.RoleStudent, "student")

	status, _ := s.do(http.MethodGet, "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(http.MethodGet, "/admin/users", s.token(student), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(http.MethodPost, "/groups", s.token(student), fiber.Map{"name": "Hackers"})
	assert.Equal(t, http.StatusForbidden, status)
}

// classroom builds a catalog, a group and its people through the API.
type classroom struct {
	admin, teacher, student models.User
	formationID             uint
	moduleIDs               []uint
	groupID                 uint
}

func newClassroom(t *testing.T, s testServer) classroom {
	c := classroom{
		admin:   testutil.CreateUser(t, s.db, models.RoleAdmin, "admin"),
		teacher: testutil.CreateUser(t, s.db, models.RoleTeacher, "teacher"),
		student: testutil.CreateUser(t, s.db, models.RoleStudent, "student"),
	}
	admin := s.token(c.admin)

	status, env := s.do(http.MethodPost, "/categories", admin, fiber.Map{"name": "Backend"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	categoryID := env.id(t)

	status, env = s.do(http.MethodPost, "/admin/formations", admin, fiber.Map{"category_id": categoryID, "title": "Go in production"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	c.formationID = env.id(t)

	status, _ = s.do(http.MethodPost, fmt.Sprintf("/admin/formations/%d/publish", c.formationID), admin, fiber.Map{"is_published": true})
	require.Equal(t, http.StatusOK, status)

	for _, title := range []string{"Basics", "Concurrency", "Deployment"} {
		status, env = s.do(http.MethodPost, fmt.Sprintf("/formations/%d/modules", c.formationID), s.token(c.teacher), fiber.Map{"title": title})
		require.Equal(t, http.StatusCreated, status, env.Message)
		c.moduleIDs = append(c.moduleIDs, env.id(t))
	}

	status, env = s.do(http.MethodPost, "/groups", admin, fiber.Map{"name": "Cohort 1", "teacher_id": c.teacher.ID})
	require.Equal(t, http.StatusCreated, status, env.Message)
	c.groupID = env.id(t)

	status, env = s.do(http.MethodPost, fmt.Sprintf("/groups/%d/members", c.groupID), admin, fiber.Map{"user_ids": []uint{c.student.ID}})
	require.Equal(t, http.StatusOK, status, env.Message)

	for _, moduleID := range c.moduleIDs {
		status, env = s.do(http.MethodPost, fmt.Sprintf("/groups/%d/modules", c.groupID), admin, fiber.Map{"module_id": moduleID})
		require.Equal(t, http.StatusCreated, status, env.Message)
	}
	return c
}

func TestCatalogOrdering(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)

	status, env := s.do(http.MethodGet, fmt.Sprintf("/formations/%d", c.formationID), "", nil)
	require.Equal(t, http.StatusOK, status)
	modules := env.object(t)["modules"].([]interface{})
	require.Len(t, modules, 3)
	for i, m := range modules {
		assert.EqualValues(t, i+1, m.(map[string]interface{})["order_index"])
	}

	status, _ = s.do(http.MethodPost, "/groups", s.token(c.admin), fiber.Map{"name": "cohort 1"})
	assert.Equal(t, http.StatusConflict, status)

	status, env = s.do(http.MethodPost, "/groups", s.token(c.admin), fiber.Map{"name": "Cohort 2", "teacher_id": c.student.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.object(t), "teacher_id")
}

func TestApprovalWorkflow(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)
	student, teacher := s.token(c.student), s.token(c.teacher)

	status, env := s.do(http.MethodGet, fmt.Sprintf("/formations/%d/modules", c.formationID), student, nil)
	require.Equal(t, http.StatusOK, status)
	items := env.list(t)
	require.Len(t, items, 3)
	assert.Equal(t, true, items[0]["unlocked"])
	assert.Equal(t, false, items[1]["unlocked"])

	status, _ = s.do(http.MethodGet, fmt.Sprintf("/modules/%d", c.moduleIDs[1]), student, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(http.MethodGet, "/notifications/unread/count", student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, env.object(t)["count"], "one per assigned module")

	status, _ = s.do(http.MethodPost, "/approvals", student, fiber.Map{"module_id": c.moduleIDs[0]})
	assert.Equal(t, http.StatusConflict, status)

	status, env = s.do(http.MethodPost, "/approvals", student, fiber.Map{"module_id": c.moduleIDs[1]})
	require.Equal(t, http.StatusCreated, status, env.Message)
	approvalID := env.id(t)
	assert.Equal(t, "PENDING", env.object(t)["status"])

	status, _ = s.do(http.MethodPost, "/approvals", student, fiber.Map{"module_id": c.moduleIDs[1]})
	assert.Equal(t, http.StatusConflict, status)

	status, env = s.do(http.MethodGet, "/approvals?status=PENDING", teacher, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env.list(t), 1)

	status, _ = s.do(http.MethodPatch, fmt.Sprintf("/approvals/%d", approvalID), student, fiber.Map{"status": "APPROVED"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(http.MethodPatch, fmt.Sprintf("/approvals/%d", approvalID), teacher, fiber.Map{"status": "MAYBE"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env = s.do(http.MethodPatch, fmt.Sprintf("/approvals/%d", approvalID), teacher, fiber.Map{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, _ = s.do(http.MethodPatch, fmt.Sprintf("/approvals/%d", approvalID), teacher, fiber.Map{"status": "REJECTED"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(http.MethodGet, fmt.Sprintf("/modules/%d", c.moduleIDs[1]), student, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestSubmissionGradingUnlocksNextModule(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)
	student, teacher := s.token(c.student), s.token(c.teacher)

	status, env := s.do(http.MethodPost, fmt.Sprintf("/modules/%d/projects", c.moduleIDs[0]), teacher, fiber.Map{
		"title": "Build a CLI", "max_score": 20, "passing_score": 12,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	projectID := env.id(t)

	status, env = s.do(http.MethodPost, fmt.Sprintf("/projects/%d/submissions", projectID), student, fiber.Map{})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.object(t), "file")

	status, env = s.do(http.MethodPost, fmt.Sprintf("/projects/%d/submissions", projectID), student, fiber.Map{"file_url": "/uploads/v1.zip"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	submissionID := env.id(t)

	status, env = s.do(http.MethodPost, fmt.Sprintf("/projects/%d/submissions", projectID), student, fiber.Map{"file_url": "/uploads/v2.zip"})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, submissionID, env.id(t))

	status, _ = s.do(http.MethodPost, fmt.Sprintf("/submissions/%d/grade", submissionID), teacher, fiber.Map{"score": 25})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env = s.do(http.MethodPost, fmt.Sprintf("/submissions/%d/grade", submissionID), teacher, fiber.Map{"score": 14, "comment": "solid"})
	require.Equal(t, http.StatusOK, status, env.Message)
	unlocked := env.object(t)["unlocked_module"].(map[string]interface{})
	assert.EqualValues(t, c.moduleIDs[1], unlocked["ID"])

	status, _ = s.do(http.MethodPost, fmt.Sprintf("/projects/%d/submissions", projectID), student, fiber.Map{"file_url": "/uploads/v3.zip"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(http.MethodGet, fmt.Sprintf("/modules/%d", c.moduleIDs[1]), student, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(http.MethodGet, "/grades/me", student, nil)
	require.Equal(t, http.StatusOK, status)
	grades := env.list(t)
	require.Len(t, grades, 1)
	assert.EqualValues(t, 14, grades[0]["score"])
}

func TestQuizAttempts(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)
	student, teacher := s.token(c.student), s.token(c.teacher)
	path := fmt.Sprintf("/modules/%d/quizzes", c.moduleIDs[0])

	status, env := s.do(http.MethodPost, path, teacher, fiber.Map{
		"title":     "Warm up",
		"questions": []fiber.Map{{"prompt": "2+2", "options": []string{"4", "5"}, "answer": 3}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.object(t), "questions[0].answer")

	status, env = s.do(http.MethodPost, path, teacher, fiber.Map{
		"title":         "Warm up",
		"passing_score": 50,
		"max_attempts":  1,
		"questions": []fiber.Map{
			{"prompt": "2+2", "options": []string{"4", "5"}, "answer": 0},
			{"prompt": "Go keyword", "options": []string{"def", "func"}, "answer": 1},
		},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	quizID := env.id(t)

	status, env = s.do(http.MethodGet, fmt.Sprintf("/quizzes/%d", quizID), student, nil)
	require.Equal(t, http.StatusOK, status)
	for _, q := range env.object(t)["questions"].([]interface{}) {
		assert.EqualValues(t, -1, q.(map[string]interface{})["answer"])
	}

	attempts := fmt.Sprintf("/quizzes/%d/attempts", quizID)
	status, _ = s.do(http.MethodPost, attempts, student, fiber.Map{"answers": []int{0}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env = s.do(http.MethodPost, attempts, student, fiber.Map{"answers": []int{0, 0}})
	require.Equal(t, http.StatusCreated, status, env.Message)
	attempt := env.object(t)["attempt"].(map[string]interface{})
	assert.EqualValues(t, 50, attempt["score"])
	assert.Equal(t, true, attempt["passed"])

	status, _ = s.do(http.MethodPost, attempts, student, fiber.Map{"answers": []int{0, 1}})
	assert.Equal(t, http.StatusConflict, status)

	status, env = s.do(http.MethodGet, attempts, teacher, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env.list(t), 1)
}

func TestDiscussionReplyNotifiesAuthor(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)
	student, teacher := s.token(c.student), s.token(c.teacher)

	status, _ := s.do(http.MethodPost, "/discussions", student, fiber.Map{
		"title": "Stuck", "content": "Help", "module_id": c.moduleIDs[0], "group_id": c.groupID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = s.do(http.MethodPost, "/discussions", student, fiber.Map{
		"title": "Locked", "content": "Cannot open", "module_id": c.moduleIDs[2],
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, env := s.do(http.MethodPost, "/discussions", student, fiber.Map{
		"title": "Channels", "content": "When do they block?", "module_id": c.moduleIDs[0],
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	discussionID := env.id(t)

	status, env = s.do(http.MethodPost, fmt.Sprintf("/discussions/%d/replies", discussionID), teacher, fiber.Map{"content": "Unbuffered ones always do."})
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = s.do(http.MethodGet, fmt.Sprintf("/discussions/%d", discussionID), student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env.object(t)["replies"].([]interface{}), 1)

	var count int64
	s.db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", c.student.ID, models.NotificationDiscussionReply).Count(&count)
	assert.EqualValues(t, 1, count)

	status, _ = s.do(http.MethodDelete, fmt.Sprintf("/discussions/%d", discussionID), teacher, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(http.MethodDelete, fmt.Sprintf("/discussions/%d", discussionID), student, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestNotificationsAreScopedToTheirOwner(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)
	student := s.token(c.student)

	status, env := s.do(http.MethodGet, "/notifications?unread=true", student, nil)
	require.Equal(t, http.StatusOK, status)
	list := env.object(t)["notifications"].([]interface{})
	require.NotEmpty(t, list)
	notificationID := uint(list[0].(map[string]interface{})["ID"].(float64))

	status, _ = s.do(http.MethodDelete, fmt.Sprintf("/notifications/%d", notificationID), s.token(c.teacher), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(http.MethodPatch, fmt.Sprintf("/notifications/%d/read", notificationID), student, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(http.MethodPatch, "/notifications/read-all", student, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(http.MethodGet, "/notifications/unread/count", student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, env.object(t)["count"])

	status, env = s.do(http.MethodPost, "/notifications/broadcast", s.token(c.admin), fiber.Map{
		"title": "Maintenance", "message": "Tonight", "role": "STUDENT",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.EqualValues(t, 1, env.object(t)["recipients"])
}

func TestProspectsAndDashboard(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)

	status, _ := s.do(http.MethodPost, "/prospects", "", fiber.Map{"name": "Grace", "email": "grace@example.com", "formation_id": 9999})
	assert.Equal(t, http.StatusNotFound, status)

	status, env := s.do(http.MethodPost, "/prospects", "", fiber.Map{"name": "Grace", "email": "grace@example.com", "formation_id": c.formationID})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, models.ProspectNew, env.object(t)["status"])

	status, env = s.do(http.MethodGet, "/admin/dashboard/stats", s.token(c.admin), nil)
	require.Equal(t, http.StatusOK, status)
	stats := env.object(t)
	assert.EqualValues(t, 3, stats["modules"])
	assert.EqualValues(t, 1, stats["groups"])
	assert.EqualValues(t, 1, stats["prospects_this_week"])
	assert.EqualValues(t, 1, stats["users_by_role"].(map[string]interface{})["STUDENT"])
}

func TestUpload(t *testing.T) {
	s := newServer(t)
	user := testutil.CreateUser(t, s.db, models.RoleStudent, "uploader")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, env := s.send(req, s.token(user))
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	assert.Regexp(t, `^/uploads/[0-9a-f-]+\.txt$`, env.object(t)["url"])
}

func TestDiscussionListOnlyShowsOpenableThreads(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)
	admin, teacher, student := s.token(c.admin), s.token(c.teacher), s.token(c.student)

	other := testutil.CreateUser(t, s.db, models.RoleTeacher, "other")
	status, env := s.do(http.MethodPost, "/groups", admin, fiber.Map{"name": "Cohort 2", "teacher_id": other.ID})
	require.Equal(t, http.StatusCreated, status, env.Message)
	otherGroupID := env.id(t)

	post := func(token string, body fiber.Map) uint {
		status, env := s.do(http.MethodPost, "/discussions", token, body)
		require.Equal(t, http.StatusCreated, status, env.Message)
		return env.id(t)
	}
	openModule := post(teacher, fiber.Map{"title": "Basics Q&A", "content": "Ask here", "module_id": c.moduleIDs[0]})
	lockedModule := post(teacher, fiber.Map{"title": "Deployment Q&A", "content": "Ask here", "module_id": c.moduleIDs[2]})
	ownGroup := post(teacher, fiber.Map{"title": "Cohort 1 news", "content": "Welcome", "group_id": c.groupID})
	otherGroup := post(s.token(other), fiber.Map{"title": "Cohort 2 news", "content": "Welcome", "group_id": otherGroupID})

	listed := func(token string) []uint {
		status, env := s.do(http.MethodGet, "/discussions", token, nil)
		require.Equal(t, http.StatusOK, status, env.Message)
		var ids []uint
		for _, item := range env.object(t)["discussions"].([]interface{}) {
			id := uint(item.(map[string]interface{})["ID"].(float64))
			status, _ := s.do(http.MethodGet, fmt.Sprintf("/discussions/%d", id), token, nil)
			assert.Equal(t, http.StatusOK, status, "listed thread %d must open", id)
			ids = append(ids, id)
		}
		return ids
	}

	assert.ElementsMatch(t, []uint{openModule, ownGroup}, listed(student))
	assert.ElementsMatch(t, []uint{openModule, lockedModule, ownGroup}, listed(teacher))
	assert.ElementsMatch(t, []uint{openModule, lockedModule, ownGroup, otherGroup}, listed(admin))

	status, _ = s.do(http.MethodGet, fmt.Sprintf("/discussions/%d", lockedModule), student, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(http.MethodGet, fmt.Sprintf("/discussions/%d", otherGroup), teacher, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAdminCannotDemoteOrDeleteThemselves(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)
	admin := s.token(c.admin)

	status, _ := s.do(http.MethodPut, fmt.Sprintf("/admin/users/%d", c.admin.ID), admin, fiber.Map{"role": models.RoleTeacher})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do(http.MethodPut, fmt.Sprintf("/admin/users/%d", c.admin.ID), admin, fiber.Map{"is_active": false})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do(http.MethodDelete, fmt.Sprintf("/admin/users/%d", c.admin.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := s.do(http.MethodDelete, fmt.Sprintf("/admin/users/%d", c.student.ID), admin, nil)
	require.Equal(t, http.StatusOK, status, env.Message)

	var memberships int64
	require.NoError(t, s.db.Model(&models.GroupMember{}).Where("user_id = ?", c.student.ID).Count(&memberships).Error)
	assert.Zero(t, memberships)

	status, _ = s.do(http.MethodGet, "/auth/me", s.token(c.student), nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCategoryConflicts(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)
	admin := s.token(c.admin)

	status, _ := s.do(http.MethodPost, "/categories", admin, fiber.Map{"name": "backend"})
	assert.Equal(t, http.StatusConflict, status)

	status, env := s.do(http.MethodPost, "/categories", admin, fiber.Map{"name": "Frontend"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	frontendID := env.id(t)

	status, _ = s.do(http.MethodPut, fmt.Sprintf("/categories/%d", frontendID), admin, fiber.Map{"name": "Backend"})
	assert.Equal(t, http.StatusConflict, status)

	var formation courseModels.Formation
	require.NoError(t, s.db.First(&formation, c.formationID).Error)
	status, _ = s.do(http.MethodDelete, fmt.Sprintf("/categories/%d", formation.CategoryID), admin, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(http.MethodDelete, fmt.Sprintf("/categories/%d", frontendID), admin, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestChangePasswordAndLogout(t *testing.T) {
	s := newServer(t)
	user := testutil.CreateUser(t, s.db, models.RoleStudent, "changer")
	token := s.token(user)

	status, _ := s.do(http.MethodPut, "/auth/change/password", token, fiber.Map{"old_password": "not-my-password", "new_password": "brand-new-pass"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := s.do(http.MethodPut, "/auth/change/password", token, fiber.Map{"old_password": testutil.Password, "new_password": "brand-new-pass"})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, _ = s.do(http.MethodPost, "/auth/login", "", fiber.Map{"email": user.Email, "password": testutil.Password})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, env = s.do(http.MethodPost, "/auth/login", "", fiber.Map{"email": user.Email, "password": "brand-new-pass"})
	assert.Equal(t, http.StatusOK, status, env.Message)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	resp, _ := s.send(req, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "token" && cookie.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestLessonLifecycle(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)
	teacher, student := s.token(c.teacher), s.token(c.student)

	status, env := s.do(http.MethodPost, fmt.Sprintf("/modules/%d/lessons", c.moduleIDs[0]), teacher, fiber.Map{
		"title": "Hello, world", "content": "package main", "video_url": "https://videos.example.com/1",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	lessonID := env.id(t)
	assert.EqualValues(t, 1, env.object(t)["order_index"])

	var count int64
	s.db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", c.student.ID, models.NotificationNewContent).Count(&count)
	assert.EqualValues(t, 1, count)

	status, env = s.do(http.MethodGet, fmt.Sprintf("/modules/%d/lessons", c.moduleIDs[0]), student, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Len(t, env.list(t), 1)

	status, _ = s.do(http.MethodPost, fmt.Sprintf("/modules/%d/lessons", c.moduleIDs[0]), student, fiber.Map{"title": "Sneaky"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(http.MethodPut, fmt.Sprintf("/lessons/%d", lessonID), teacher, fiber.Map{"title": "Hello, gophers"})
	require.Equal(t, http.StatusOK, status, env.Message)
	status, env = s.do(http.MethodGet, fmt.Sprintf("/lessons/%d", lessonID), student, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "Hello, gophers", env.object(t)["title"])

	status, _ = s.do(http.MethodDelete, fmt.Sprintf("/lessons/%d", lessonID), teacher, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(http.MethodGet, fmt.Sprintf("/lessons/%d", lessonID), student, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMyModulesAndFormationDelete(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)
	student := s.token(c.student)

	status, env := s.do(http.MethodGet, "/user/modules", student, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	modules := env.list(t)
	require.Len(t, modules, 3)
	assert.Equal(t, "Basics", modules[0]["title"])
	assert.Equal(t, true, modules[0]["unlocked"])
	assert.Equal(t, false, modules[1]["unlocked"])
	assert.Equal(t, false, modules[2]["unlocked"])

	status, env = s.do(http.MethodDelete, fmt.Sprintf("/admin/formations/%d", c.formationID), s.token(c.admin), nil)
	require.Equal(t, http.StatusOK, status, env.Message)

	var live int64
	require.NoError(t, s.db.Model(&courseModels.Module{}).Where("formation_id = ? AND is_deleted = ?", c.formationID, false).Count(&live).Error)
	assert.Zero(t, live)

	status, env = s.do(http.MethodGet, "/user/modules", student, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Empty(t, env.list(t))
}

func TestAddGroupMembersRejectsNonStudents(t *testing.T) {
	s := newServer(t)
	c := newClassroom(t, s)

	status, env := s.do(http.MethodPost, fmt.Sprintf("/groups/%d/members", c.groupID), s.token(c.admin), fiber.Map{"user_ids": []uint{c.teacher.ID}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.object(t), "user_ids")
}

func TestNameChecksReportStoreErrors(t *testing.T) {
	s := newServer(t)
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "admin")
	token := s.token(admin)

	failing := map[string]bool{}
	require.NoError(t, s.db.Callback().Query().Before("gorm:query").Register("test:fail_table", func(tx *gorm.DB) {
		if failing[tx.Statement.Table] {
			tx.AddError(errors.New("store unavailable"))
		}
	}))

	failing["categories"] = true
	status, _ := s.do(http.MethodPost, "/categories", token, fiber.Map{"name": "Backend"})
	assert.Equal(t, http.StatusInternalServerError, status)

	failing["categories"] = false
	failing["groups"] = true
	status, _ = s.do(http.MethodPost, "/groups", token, fiber.Map{"name": "Cohort 1"})
	assert.Equal(t, http.StatusInternalServerError, status)

	var count int64
	failing["groups"] = false
	require.NoError(t, s.db.Model(&courseModels.Category{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, s.db.Model(&models.Group{}).Count(&count).Error)
	assert.Zero(t, count)
}
