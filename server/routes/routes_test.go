package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgaccount-backend/server/handlers"
	"orgaccount-backend/server/middleware"
	"orgaccount-backend/services/account"
	"orgaccount-backend/services/activation"
	"orgaccount-backend/services/organization"
	"orgaccount-backend/services/token"
	"orgaccount-backend/shared/database/models"
	"orgaccount-backend/shared/database/repository"
	utils "orgaccount-backend/shared/utils/auth"
)

const defaultOrgName = "No Organization"

type capturingDispatcher struct {
	sent []string
}

func (d *capturingDispatcher) Send(to, subject, body string, isHTML bool) error {
	d.sent = append(d.sent, body)
	return nil
}

type testEnv struct {
	router     *gin.Engine
	store      *repository.MemoryStore
	dispatcher *capturingDispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	require.NoError(t, store.Organizations().Create(context.Background(), &models.Organization{Name: defaultOrgName}))

	dispatcher := &capturingDispatcher{}
	activationService := activation.NewService(store.Accounts(), dispatcher, "test-secret", 72*time.Hour, "http://localhost:8000")
	accountService := account.NewService(store.Accounts(), store.Organizations(), activationService, defaultOrgName)
	tokenService := token.NewService(store.Tokens(), store.Accounts())
	orgService := organization.NewService(store.Organizations(), store.Accounts())

	router := gin.New()
	Register(router, Deps{
		Auth:          handlers.NewAuthHandler(accountService, tokenService, activationService),
		Users:         handlers.NewUserHandler(accountService, nil, []string{".jpg", ".jpeg", ".png"}),
		Organizations: handlers.NewOrganizationHandler(orgService),
		Tokens:        tokenService,
		LoginLimit:    middleware.RateLimitConfig{MaxRequests: 1000, TimeWindow: time.Minute},
		RegisterLimit: middleware.RateLimitConfig{MaxRequests: 1000, TimeWindow: time.Minute},
	})

	return &testEnv{router: router, store: store, dispatcher: dispatcher}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registration(email string) gin.H {
	return gin.H{
		"email":            email,
		"password":         "s3cure-enough-pw",
		"confirm_password": "s3cure-enough-pw",
		"first_name":       "Jane",
		"last_name":        "Doe",
		"gender":           "F",
	}
}

// register creates an account through the API and returns its id.
func (e *testEnv) register(t *testing.T, email string) uuid.UUID {
	t.Helper()
	w := e.request(t, http.MethodPost, "/users/create_user", "", registration(email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, err := uuid.Parse(decode(t, w)["id"].(string))
	require.NoError(t, err)
	return id
}

// activate follows the emailed link for the most recent registration.
func (e *testEnv) activate(t *testing.T, id uuid.UUID) {
	t.Helper()
	require.NotEmpty(t, e.dispatcher.sent)

	body := e.dispatcher.sent[len(e.dispatcher.sent)-1]
	marker := "/activate/" + id.String() + "/"
	start := strings.Index(body, marker)
	require.NotEqual(t, -1, start)
	ticket := body[start+len(marker):]
	if end := strings.IndexAny(ticket, "\"< \n"); end != -1 {
		ticket = ticket[:end]
	}

	w := e.request(t, http.MethodGet, marker+ticket, "", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
}

// login returns the account's bearer token.
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	w := e.request(t, http.MethodPost, "/users/login", "", gin.H{"email": email, "password": "s3cure-enough-pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

// activeUser registers, activates and logs in a standard account.
func (e *testEnv) activeUser(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	id := e.register(t, email)
	e.activate(t, id)
	return id, e.login(t, email)
}

// admin seeds an active admin account directly and logs it in.
func (e *testEnv) admin(t *testing.T, email string) string {
	t.Helper()
	digest, err := utils.HashPassword("s3cure-enough-pw")
	require.NoError(t, err)
	require.NoError(t, e.store.Accounts().Create(context.Background(), &models.User{
		Email:    email,
		Password: digest,
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
	}))
	return e.login(t, email)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/users/create_user", "", registration("jane@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	assert.Equal(t, "jane@example.com", body["email"])
	assert.Equal(t, "PENDING", body["status"])
	assert.Equal(t, false, body["active"])
	// The digest must never be serialized
	assert.NotContains(t, body, "password")
	assert.Len(t, env.dispatcher.sent, 1)
}

func TestRegisterValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing fields", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/users/create_user", "", gin.H{"email": "jane@example.com"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Contains(t, body, "password")
		assert.Contains(t, body, "first_name")
	})

	t.Run("weak password", func(t *testing.T) {
		payload := registration("weak@example.com")
		payload["password"] = "1234"
		payload["confirm_password"] = "1234"
		w := env.request(t, http.MethodPost, "/users/create_user", "", payload)
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		violations := body["password"].([]interface{})
		assert.Len(t, violations, 2)
	})

	t.Run("duplicate email", func(t *testing.T) {
		env.register(t, "dup@example.com")
		w := env.request(t, http.MethodPost, "/users/create_user", "", registration("dup@example.com"))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w), "email")
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		payload := registration("mismatch@example.com")
		payload["confirm_password"] = "other-password"
		w := env.request(t, http.MethodPost, "/users/create_user", "", payload)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w), "password")
	})
}

func TestLoginFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane@example.com")

	unknown := env.request(t, http.MethodPost, "/users/login", "", gin.H{"email": "nobody@example.com", "password": "s3cure-enough-pw"})
	wrong := env.request(t, http.MethodPost, "/users/login", "", gin.H{"email": "jane@example.com", "password": "wrong"})

	require.Equal(t, http.StatusBadRequest, unknown.Code)
	require.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestPendingAccountCanLogInButNotAct(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "pending@example.com")

	tokenKey := env.login(t, "pending@example.com")

	w := env.request(t, http.MethodGet, "/users/me", tokenKey, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "not activated")
}

func TestActivationFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "jane@example.com")

	// Activation link arrives by email; following it activates the account
	env.activate(t, id)

	tokenKey := env.login(t, "jane@example.com")
	w := env.request(t, http.MethodGet, "/users/me", tokenKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ACTIVE", body["status"])
	assert.Equal(t, true, body["active"])
}

func TestActivationLinkIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "jane@example.com")

	body := env.dispatcher.sent[0]
	marker := "/activate/" + id.String() + "/"
	start := strings.Index(body, marker)
	require.NotEqual(t, -1, start)
	ticket := body[start+len(marker):]
	if end := strings.IndexAny(ticket, "\"< \n"); end != -1 {
		ticket = ticket[:end]
	}

	first := env.request(t, http.MethodGet, marker+ticket, "", nil)
	require.Equal(t, http.StatusAccepted, first.Code)

	second := env.request(t, http.MethodGet, marker+ticket, "", nil)
	assert.Equal(t, http.StatusBadRequest, second.Code)
}

func TestActivationUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/activate/"+uuid.NewString()+"/some-ticket", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResendActivation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane@example.com")
	require.Len(t, env.dispatcher.sent, 1)

	w := env.request(t, http.MethodPost, "/users/resend_activation", "", gin.H{"email": "jane@example.com"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Len(t, env.dispatcher.sent, 2)

	// Unknown address gets the same response and no email
	w = env.request(t, http.MethodPost, "/users/resend_activation", "", gin.H{"email": "nobody@example.com"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Len(t, env.dispatcher.sent, 2)
}

func TestUnauthenticatedRequestsAreForbidden(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users/me"},
		{http.MethodPut, "/users/change_password"},
		{http.MethodGet, "/users"},
		{http.MethodPost, "/orgs/create_org"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := env.request(t, p.method, p.path, "", nil)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}

	w := env.request(t, http.MethodGet, "/users/me", "bogus-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token.")
}

func TestProfileSelfService(t *testing.T) {
	env := newTestEnv(t)
	_, tokenKey := env.activeUser(t, "jane@example.com")

	t.Run("patch updates only given fields", func(t *testing.T) {
		w := env.request(t, http.MethodPatch, "/users/me", tokenKey, gin.H{"first_name": "Janet"})
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Janet", body["first_name"])
		assert.Equal(t, "Doe", body["last_name"])
	})

	t.Run("put replaces the profile", func(t *testing.T) {
		w := env.request(t, http.MethodPut, "/users/me", tokenKey, gin.H{
			"email":      "jane@example.com",
			"first_name": "Jane",
			"last_name":  "Smith",
			"gender":     "F",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Smith", decode(t, w)["last_name"])
	})

	t.Run("password in body is rejected", func(t *testing.T) {
		w := env.request(t, http.MethodPatch, "/users/me", tokenKey, gin.H{"password": "sneaky-new-pw"})
		require.Equal(t, http.StatusBadRequest, w.Code)

		// The old password still works
		login := env.request(t, http.MethodPost, "/users/login", "", gin.H{"email": "jane@example.com", "password": "s3cure-enough-pw"})
		assert.Equal(t, http.StatusOK, login.Code)
	})
}

func TestChangePasswordEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, tokenKey := env.activeUser(t, "jane@example.com")

	t.Run("wrong old password", func(t *testing.T) {
		w := env.request(t, http.MethodPut, "/users/change_password", tokenKey, gin.H{
			"old_password":     "not-it",
			"new_password":     "brand-new-passw0rd",
			"confirm_password": "brand-new-passw0rd",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w), "old_password")
	})

	t.Run("weak new password", func(t *testing.T) {
		w := env.request(t, http.MethodPut, "/users/change_password", tokenKey, gin.H{
			"old_password":     "s3cure-enough-pw",
			"new_password":     "1234",
			"confirm_password": "1234",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w), "password")
	})

	t.Run("success", func(t *testing.T) {
		w := env.request(t, http.MethodPut, "/users/change_password", tokenKey, gin.H{
			"old_password":     "s3cure-enough-pw",
			"new_password":     "brand-new-passw0rd",
			"confirm_password": "brand-new-passw0rd",
		})
		require.Equal(t, http.StatusOK, w.Code)

		login := env.request(t, http.MethodPost, "/users/login", "", gin.H{"email": "jane@example.com", "password": "brand-new-passw0rd"})
		assert.Equal(t, http.StatusOK, login.Code)
	})
}

func TestSelfDeletionKillsToken(t *testing.T) {
	env := newTestEnv(t)
	_, tokenKey := env.activeUser(t, "jane@example.com")

	w := env.request(t, http.MethodDelete, "/users/me", tokenKey, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// The token resolves to nothing once the account is soft-deleted
	after := env.request(t, http.MethodGet, "/users/me", tokenKey, nil)
	assert.Equal(t, http.StatusForbidden, after.Code)

	// And the credentials no longer log in
	login := env.request(t, http.MethodPost, "/users/login", "", gin.H{"email": "jane@example.com", "password": "s3cure-enough-pw"})
	assert.Equal(t, http.StatusBadRequest, login.Code)
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	targetID, _ := env.activeUser(t, "target@example.com")
	_, standardToken := env.activeUser(t, "standard@example.com")

	// The refusal is identical whether or not the target exists
	real := env.request(t, http.MethodGet, "/users/"+targetID.String(), standardToken, nil)
	missing := env.request(t, http.MethodGet, "/users/"+uuid.NewString(), standardToken, nil)

	assert.Equal(t, http.StatusForbidden, real.Code)
	assert.Equal(t, http.StatusForbidden, missing.Code)
	assert.Equal(t, real.Body.String(), missing.Body.String())

	listing := env.request(t, http.MethodGet, "/users", standardToken, nil)
	assert.Equal(t, http.StatusForbidden, listing.Code)
}

func TestAdminUserDirectory(t *testing.T) {
	env := newTestEnv(t)
	targetID, _ := env.activeUser(t, "target@example.com")
	adminToken := env.admin(t, "admin@example.com")

	t.Run("get", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/users/"+targetID.String(), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "target@example.com", decode(t, w)["email"])
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/users/"+uuid.NewString(), adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/users?page=1&limit=10", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		users := body["users"].([]interface{})
		assert.Len(t, users, 2)
	})

	t.Run("patch", func(t *testing.T) {
		w := env.request(t, http.MethodPatch, "/users/"+targetID.String(), adminToken, gin.H{"first_name": "Renamed"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Renamed", decode(t, w)["first_name"])
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		first := env.request(t, http.MethodDelete, "/users/"+targetID.String(), adminToken, nil)
		require.Equal(t, http.StatusNoContent, first.Code)

		second := env.request(t, http.MethodDelete, "/users/"+targetID.String(), adminToken, nil)
		assert.Equal(t, http.StatusNoContent, second.Code)
	})
}

func TestOrganizationEndpoints(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.admin(t, "admin@example.com")

	created := env.request(t, http.MethodPost, "/orgs/create_org", adminToken, gin.H{
		"name":     "Acme Corp",
		"location": "Berlin",
		"phone":    "+49 30 1234567",
	})
	require.Equal(t, http.StatusCreated, created.Code)
	orgID := decode(t, created)["id"].(string)

	memberIDs := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		id, _ := env.activeUser(t, fmt.Sprintf("member%d@example.com", i))
		memberIDs = append(memberIDs, id.String())
	}

	added := env.request(t, http.MethodPost, "/orgs/"+orgID+"/add_users", adminToken, gin.H{"pks": memberIDs})
	require.Equal(t, http.StatusOK, added.Code, added.Body.String())

	// Re-adding the same accounts is a no-op union
	again := env.request(t, http.MethodPost, "/orgs/"+orgID+"/add_users", adminToken, gin.H{"pks": memberIDs[:3]})
	require.Equal(t, http.StatusOK, again.Code)

	t.Run("list first page is capped at five", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/orgs/"+orgID+"/list_users?page=1", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Len(t, body["users"].([]interface{}), 5)
		pagination := body["pagination"].(map[string]interface{})
		assert.EqualValues(t, 7, pagination["total"])
	})

	t.Run("second page holds the rest", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/orgs/"+orgID+"/list_users?page=2", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["users"].([]interface{}), 2)
	})

	t.Run("unknown account aborts the whole update", func(t *testing.T) {
		fresh := env.request(t, http.MethodPost, "/orgs/create_org", adminToken, gin.H{"name": "Empty Org"})
		require.Equal(t, http.StatusCreated, fresh.Code)
		freshID := decode(t, fresh)["id"].(string)

		w := env.request(t, http.MethodPost, "/orgs/"+freshID+"/add_users", adminToken, gin.H{
			"pks": []string{memberIDs[0], uuid.NewString()},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		listing := env.request(t, http.MethodGet, "/orgs/"+freshID+"/list_users", adminToken, nil)
		require.Equal(t, http.StatusOK, listing.Code)
		assert.Empty(t, decode(t, listing)["users"])
	})

	t.Run("unknown organization is 404", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/orgs/"+uuid.NewString()+"/list_users", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
