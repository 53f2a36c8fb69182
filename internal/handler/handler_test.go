package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"planillas/internal/clock"
	"planillas/internal/database"
	"planillas/internal/middleware"
	"planillas/internal/planilla"
	"planillas/internal/repository"
	"planillas/internal/service"
	"planillas/internal/token"
)

const testPassword = "secreto1"

type stubWorkflow struct {
	registerErr error
	company     string
	lookupErr   error
	submitErr   error
}

func (s *stubWorkflow) RegisterInvoice(context.Context, planilla.RegisterTicket) (string, error) {
	return "", s.registerErr
}

func (s *stubWorkflow) LookupCompany(context.Context, string) (string, error) {
	return s.company, s.lookupErr
}

func (s *stubWorkflow) NotifyInvoiceRemoved(context.Context, string, planilla.Invoice, time.Time) error {
	return nil
}

func (s *stubWorkflow) SubmitBatch(context.Context, planilla.Submission) error {
	return s.submitErr
}

type envelope struct {
	Status  string            `json:"status"`
	Code    string            `json:"code"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

type testServer struct {
	router   *gin.Engine
	tokens   *token.Manager
	users    service.UserService
	workflow *stubWorkflow
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	repo := repository.NewUserRepository(db)
	tokens := token.NewManager("handler-test-secret", time.Hour)
	auth := middleware.NewAuthenticator(tokens, false)
	wf := &stubWorkflow{}

	userSvc := service.NewUserService(repo, repository.NewTransactionManager(db))
	authSvc := service.NewAuthService(repo, tokens, nil, nil, nil)
	planillaSvc := service.NewPlanillaService(service.PlanillaServiceParams{
		Workflow: wf,
		Clock:    clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
	})

	r := gin.New()
	root := r.Group("")
	NewAuthHandler(authSvc, planillaSvc, auth, nil).RegisterRoutes(root)
	NewPlanillaHandler(planillaSvc, auth, nil).RegisterRoutes(root)
	NewUserHandler(userSvc, auth, nil).RegisterRoutes(root)

	return &testServer{router: r, tokens: tokens, users: userSvc, workflow: wf}
}

// seed creates a directory user and returns a bearer token for it.
func (s *testServer) seed(t *testing.T, email, role string) string {
	t.Helper()
	active := true
	u, err := s.users.CreateUser(context.Background(), service.CreateUserRequest{
		Email: email, Password: testPassword, Name: "Usuario " + role, Role: role, Active: &active,
	})
	require.NoError(t, err)
	tok, err := s.tokens.Issue(u.ID.String(), u.Email, u.Name, u.Role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}
