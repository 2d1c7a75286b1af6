package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lms/middleware"
	"lms/models"
	"lms/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers = append(handlers, func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{
			"user_id": c.Locals("userId"),
			"role":    user.Role,
		})
	})
	app.Get("/", handlers...)
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestJWTFromBearerHeader(t *testing.T) {
	testutil.Setup(t)
	token, err := middleware.GenerateJWT(42, models.RoleStudent, "a@b.c")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newApp(middleware.JWTMiddleware).Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.EqualValues(t, 42, body["data"].(map[string]interface{})["user_id"])
}

func TestJWTCookieWinsOverHeader(t *testing.T) {
	testutil.Setup(t)
	cookieToken, err := middleware.GenerateJWT(7, models.RoleStudent, "cookie@b.c")
	require.NoError(t, err)
	headerToken, err := middleware.GenerateJWT(8, models.RoleStudent, "header@b.c")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: cookieToken})
	req.Header.Set("Authorization", "Bearer "+headerToken)
	resp, err := newApp(middleware.JWTMiddleware).Test(req)
	require.NoError(t, err)

	body := decode(t, resp)
	assert.EqualValues(t, 7, body["data"].(map[string]interface{})["user_id"])
}

func TestJWTRejectsMissingAndForgedTokens(t *testing.T) {
	testutil.Setup(t)
	app := newApp(middleware.JWTMiddleware)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, decode(t, resp)["status"])
}

func TestAuthorize(t *testing.T) {
	db := testutil.Setup(t)
	student := testutil.CreateUser(t, db, models.RoleStudent, "student")
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin")
	disabled := testutil.CreateUser(t, db, models.RoleAdmin, "disabled")
	require.NoError(t, db.Model(&disabled).Update("is_active", false).Error)
	deleted := testutil.CreateUser(t, db, models.RoleAdmin, "deleted")
	require.NoError(t, db.Model(&deleted).Update("is_deleted", true).Error)

	app := newApp(middleware.JWTMiddleware, middleware.Authorize(models.RoleAdmin))

	cases := []struct {
		user models.User
		want int
	}{
		{admin, http.StatusOK},
		{student, http.StatusForbidden},
		{disabled, http.StatusForbidden},
		{deleted, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		token, err := middleware.GenerateJWT(tc.user.ID, tc.user.Role, tc.user.Email)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, tc.user.Name)
	}
}
