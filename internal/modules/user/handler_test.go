package user

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delordemm1/agency-portfolio-api/internal/contextx"
	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
)

// testGate mirrors the production authorization middleware closely enough for handler tests.
func testGate(svc Service, req Requirement) huma.Middlewares {
	return huma.Middlewares{func(ctx huma.Context, next func(huma.Context)) {
		bearer := strings.TrimPrefix(ctx.Header("Authorization"), "Bearer ")
		d := svc.Authorize(ctx.Context(), bearer, req)
		switch d.Kind {
		case Denied:
			httpx.WriteProblem(ctx, d.Reason)
			return
		case Authenticated:
			ctx = huma.WithValue(ctx, contextx.UserKey, d.User)
		}
		next(ctx)
	}}
}

func newTestAPI(t *testing.T) (humatest.TestAPI, *fixture) {
	t.Helper()
	f := newFixture(t, nil)
	_, api := humatest.New(t)
	NewHandler(f.svc, discardLogger()).RegisterRoutes(api, httpx.Guards{
		Optional: testGate(f.svc, RequireOptional),
		User:     testGate(f.svc, RequireUser),
		Admin:    testGate(f.svc, RequireAdmin),
	})
	return api, f
}

func bearerHeader(t *testing.T, f *fixture, u *User) string {
	t.Helper()
	tok, err := f.tokens.Issue(u.ID)
	require.NoError(t, err)
	return "Authorization: Bearer " + tok
}

func TestSignupLoginVerifyOverHTTP(t *testing.T) {
	api, f := newTestAPI(t)

	resp := api.Post("/signup", map[string]any{
		"email":        "ada@example.com",
		"first_name":   "Ada",
		"last_name":    "Lovelace",
		"phone_number": "+15550001",
		"password":     "pw1",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"status":"pending"`)
	assert.NotContains(t, resp.Body.String(), "password")

	resp = api.Post("/login", map[string]any{"email": "ada@example.com", "password": "pw1"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "ErrNotVerified")

	resp = api.Get("/api/verify-email?token=" + f.outbox.verificationToken(t))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"token_type":"bearer"`)

	resp = api.Post("/login", map[string]any{"email": "ada@example.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"access_token"`)
	assert.Contains(t, resp.Body.String(), `"first_name":"Ada"`)
	assert.Contains(t, resp.Body.String(), `"is_admin":false`)
}

func TestSignupValidationAndDuplicates(t *testing.T) {
	api, _ := newTestAPI(t)
	body := map[string]any{
		"email":        "not-an-email",
		"first_name":   "Ada",
		"last_name":    "Lovelace",
		"phone_number": "+15550001",
		"password":     "pw1",
	}
	resp := api.Post("/signup", body)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "ErrValidation")

	body["email"] = "ada@example.com"
	require.Equal(t, http.StatusCreated, api.Post("/signup", body).Code)

	body["phone_number"] = "+15550002"
	resp = api.Post("/signup", body)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "ErrDuplicateEmail")
}

func TestSignupRejectsPasswordsBcryptCannotHash(t *testing.T) {
	api, _ := newTestAPI(t)
	for name, pw := range map[string]string{
		"over 72 characters":          strings.Repeat("p", 73),
		"72 characters over 72 bytes": strings.Repeat("é", 72),
	} {
		t.Run(name, func(t *testing.T) {
			resp := api.Post("/signup", map[string]any{
				"email":        "ada@example.com",
				"first_name":   "Ada",
				"last_name":    "Lovelace",
				"phone_number": "+15550001",
				"password":     pw,
			})
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			assert.Contains(t, resp.Body.String(), "ErrValidation")
		})
	}
}

func TestForgotResetOverHTTP(t *testing.T) {
	api, f := newTestAPI(t)
	f.seed(t, "ada@example.com", "old", StatusActive, false)

	resp := api.Post("/forgot-password", map[string]any{"email": "ada@example.com"})
	require.Equal(t, http.StatusOK, resp.Code)
	code := f.outbox.resetCode(t)

	resp = api.Post("/reset-password", map[string]any{"email": "ada@example.com", "otp": "12ab", "new_password": "new"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "ErrValidation")

	resp = api.Post("/reset-password", map[string]any{"email": "ada@example.com", "otp": code, "new_password": "new"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Post("/reset-password", map[string]any{"email": "ada@example.com", "otp": code, "new_password": "again"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "ErrInvalidOrExpiredOtp")

	resp = api.Post("/forgot-password", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestProfileRequiresAuthentication(t *testing.T) {
	api, f := newTestAPI(t)
	u := f.seed(t, "ada@example.com", "pw", StatusActive, false)

	resp := api.Put("/api/profile", map[string]any{"first_name": "Augusta"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Put("/api/profile", bearerHeader(t, f, u), map[string]any{"first_name": "Augusta"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"first_name":"Augusta"`)
}

func TestAdminRoutes(t *testing.T) {
	api, f := newTestAPI(t)
	admin := f.seed(t, "admin@example.com", "pw", StatusActive, true)
	member := f.seed(t, "member@example.com", "pw", StatusActive, false)

	resp := api.Get("/api/admin", bearerHeader(t, f, member))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.Get("/api/admin?skip=0&limit=5000", bearerHeader(t, f, admin))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total_users":2`)

	resp = api.Put("/api/admin/block-unblock/"+itoa(member.ID), bearerHeader(t, f, admin))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"status":"blocked"`)

	resp = api.Put("/api/admin/block-unblock/"+itoa(admin.ID), bearerHeader(t, f, admin))
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = api.Post("/api/admin/broadcast-email", bearerHeader(t, f, admin), map[string]any{
		"subject":     "News",
		"message":     "Hello",
		"send_option": "everyone",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Post("/api/admin/broadcast-email", bearerHeader(t, f, admin), map[string]any{
		"subject":     "News",
		"message":     "Hello",
		"send_option": "all",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"recipients":2`)

	resp = api.Delete("/api/admin/"+itoa(member.ID), bearerHeader(t, f, admin))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = api.Get("/api/admin/"+itoa(member.ID), bearerHeader(t, f, admin))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestAuthOperationsDocumentTheirLimits(t *testing.T) {
	api, _ := newTestAPI(t)
	paths := api.OpenAPI().Paths

	assert.Contains(t, paths["/api/verify-email"].Get.Description, "24 hours")
	assert.Contains(t, paths["/reset-password"].Post.Description, "Five wrong codes")
}
