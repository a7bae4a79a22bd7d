package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/hashing"
	"github.com/dmitrijs2005/authkeeper/internal/server/users"
)

// fakeRepo is an in-memory Repository for exercising the full HTTP stack.
type fakeRepo struct {
	byEmail map[string]*users.User
	listErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]*users.User{}}
}

func (f *fakeRepo) Create(ctx context.Context, u *users.User) (*users.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = "id-" + u.Email
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]users.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var list []users.User
	for _, u := range f.byEmail {
		list = append(list, *u)
	}
	return list, nil
}

func (f *fakeRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func newTestServer(t *testing.T, repo users.Repository) (*Server, *auth.Issuer) {
	t.Helper()

	cfg := &config.Config{
		SecretKey:                  "test-secret",
		JWTIssuer:                  "authkeeper",
		JWTAudience:                "authkeeper-clients",
		LoginTokenValidityDuration: 30 * time.Minute,
		RenewTokenValidityDuration: time.Hour,
	}

	issuer := auth.NewIssuer([]byte(cfg.SecretKey), cfg.JWTIssuer, cfg.JWTAudience)
	svc := users.NewService(repo, issuer, cfg)
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))

	return NewServer(":0", logger, svc, issuer), issuer
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func seedUser(t *testing.T, repo *fakeRepo, email, password string) {
	t.Helper()
	hash, salt, err := hashing.Hash(password)
	require.NoError(t, err)
	repo.byEmail[email] = &users.User{
		ID:           "id-" + email,
		Username:     "alice",
		Email:        email,
		Phone:        "555",
		PasswordHash: base64.StdEncoding.EncodeToString(hash),
		Salt:         base64.StdEncoding.EncodeToString(salt),
	}
}

func TestRegister_Created(t *testing.T) {
	repo := newFakeRepo()
	s, _ := newTestServer(t, repo)

	w := doJSON(t, s, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice", "email": "alice@x.com", "contact_phone": "555", "password": "secret123",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "alice@x.com", body["email"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "salt")

	stored := repo.byEmail["alice@x.com"]
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEmpty(t, stored.Salt)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NotEqual(t, "secret123", stored.Salt)
}

func TestRegister_MissingFields(t *testing.T) {
	s, _ := newTestServer(t, newFakeRepo())

	w := doJSON(t, s, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice", "email": " ", "contact_phone": "555", "password": "pw",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing required fields")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "alice@x.com", "pw")
	s, _ := newTestServer(t, repo)

	w := doJSON(t, s, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice", "email": "alice@x.com", "contact_phone": "555", "password": "pw",
	})

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "alice@x.com", "secret123")
	s, issuer := newTestServer(t, repo)

	w := doJSON(t, s, http.MethodPost, "/api/login", "", gin.H{
		"email": "alice@x.com", "password": "secret123",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body["token"])
	assert.Len(t, strings.Split(body["token"], "."), 3)

	claims, err := issuer.Verify(body["token"])
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", claims.Subject)
}

func TestLogin_UnknownEmail(t *testing.T) {
	s, _ := newTestServer(t, newFakeRepo())

	w := doJSON(t, s, http.MethodPost, "/api/login", "", gin.H{
		"email": "nobody@x.com", "password": "pw",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "incorrect credentials")
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "alice@x.com", "secret123")
	s, _ := newTestServer(t, repo)

	w := doJSON(t, s, http.MethodPost, "/api/login", "", gin.H{
		"email": "alice@x.com", "password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "incorrect credentials")
}

func TestReloadToken_Success(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "alice@x.com", "pw")
	s, issuer := newTestServer(t, repo)

	token, _, err := issuer.Issue("alice@x.com", 30*time.Minute)
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPost, "/api/reload_token", token, gin.H{
		"email": "alice@x.com",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Token      string `json:"Token"`
		Expiration int64  `json:"Expiration"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	wantExp := time.Now().Add(time.Hour).Unix()
	assert.InDelta(t, wantExp, body.Expiration, 5)
}

func TestReloadToken_MissingEmail(t *testing.T) {
	s, issuer := newTestServer(t, newFakeRepo())

	token, _, err := issuer.Issue("alice@x.com", 30*time.Minute)
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPost, "/api/reload_token", token, gin.H{"email": " "})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "valid email address")
}

func TestListUsers_RequiresAuth(t *testing.T) {
	s, _ := newTestServer(t, newFakeRepo())

	w := doJSON(t, s, http.MethodGet, "/api/users", "", nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestListUsers_Success(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "alice@x.com", "pw")
	s, issuer := newTestServer(t, repo)

	token, _, err := issuer.Issue("alice@x.com", 30*time.Minute)
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodGet, "/api/users", token, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "alice@x.com", list[0]["email"])
	assert.NotContains(t, list[0], "password")
}

func TestListUsers_StoreError(t *testing.T) {
	repo := newFakeRepo()
	repo.listErr = common.ErrorInternal
	s, issuer := newTestServer(t, repo)

	token, _, err := issuer.Issue("alice@x.com", 30*time.Minute)
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodGet, "/api/users", token, nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	s, _ := newTestServer(t, newFakeRepo())

	tests := []struct {
		name  string
		token string
	}{
		{name: "malformed", token: "not.a.jwt"},
		{name: "wrong secret", token: mustIssue(t, auth.NewIssuer([]byte("other"), "authkeeper", "authkeeper-clients"))},
		{name: "wrong issuer", token: mustIssue(t, auth.NewIssuer([]byte("test-secret"), "someone-else", "authkeeper-clients"))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodGet, "/api/users", tc.token, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func mustIssue(t *testing.T, issuer *auth.Issuer) string {
	t.Helper()
	token, _, err := issuer.Issue("alice@x.com", time.Minute)
	require.NoError(t, err)
	return token
}
