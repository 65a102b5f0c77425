package http

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filedrive/internal/domain"
	"filedrive/internal/repository"
	"filedrive/internal/service"
	"filedrive/internal/webhook"
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByToken map[string]string
	writes       int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByToken: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByToken[user.TokenIdentifier]; ok {
		return domain.ErrUserExists
	}
	m.writes++
	m.usersByID[user.ID] = user
	m.usersByToken[user.TokenIdentifier] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByTokenIdentifier(ctx context.Context, tokenIdentifier string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByToken[tokenIdentifier]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id, name, image string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	m.writes++
	user.Name = name
	user.Image = image
	m.usersByID[id] = user
	return nil
}

// ModifyOrgIDs retiene el lock durante lectura y escritura, igual que FOR UPDATE.
func (m *mockUserRepo) ModifyOrgIDs(_ context.Context, tokenIdentifier string, fn repository.OrgIDsMutation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.usersByToken[tokenIdentifier]
	if !ok {
		return domain.ErrUserNotFound
	}
	user := m.usersByID[id]
	user.OrgIDs = append(make([]domain.OrgMembership, 0, len(user.OrgIDs)), user.OrgIDs...)
	orgs, changed, err := fn(user)
	if err != nil || !changed {
		return err
	}
	m.writes++
	user.OrgIDs = orgs
	m.usersByID[id] = user
	return nil
}

const testSessionSecret = "session-secret"

type testApp struct {
	t        *testing.T
	router   *gin.Engine
	repo     *mockUserRepo
	users    *service.UserService
	verifier *webhook.Verifier
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := webhook.NewVerifier("whsec_"+base64.StdEncoding.EncodeToString([]byte("webhook-secret")))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	sessions, err := service.NewSessionService("clerk", service.SessionOptions{Secret: testSessionSecret})
	if err != nil {
		t.Fatalf("new session service: %v", err)
	}

	logger := zap.NewNop()
	repo := newMockUserRepo()
	users := service.NewUserService(logger, repo)
	webhooks := service.NewWebhookService(logger, verifier, users, service.NewMemoryDeliveryLog(), "clerk")

	router := NewRouter(
		logger,
		NewWebhookHandler(logger, webhooks),
		NewUserHandler(logger, users),
		NewHealthHandler(nil),
		sessions,
	)
	return &testApp{t: t, router: router, repo: repo, users: users, verifier: verifier}
}

func (a *testApp) postWebhook(id, payload string, mutate func(h http.Header)) *httptest.ResponseRecorder {
	body := []byte(payload)
	signed, err := a.verifier.Sign(id, time.Now(), body)
	if err != nil {
		a.t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/clerk", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhook.HeaderID, signed.ID)
	req.Header.Set(webhook.HeaderTimestamp, signed.Timestamp)
	req.Header.Set(webhook.HeaderSignature, signed.Signature)
	if mutate != nil {
		mutate(req.Header)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}
