package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"planillas/internal/database"
	"planillas/internal/model"
	"planillas/internal/repository"
	"planillas/internal/token"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()
	return repository.NewUserRepository(newTestDB(t))
}

type recordingAuditor struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (a *recordingAuditor) AuditLogin(_ context.Context, user *model.User, _ time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users = append(a.users, user.Email)
	return a.err
}

type countingObserver struct {
	results []string
}

func (o *countingObserver) ObserveLogin(result string) {
	o.results = append(o.results, result)
}

func seedUser(t *testing.T, repo repository.UserRepository, email, role string, active bool) {
	t.Helper()
	_, err := NewUserService(repo, nil).CreateUser(context.Background(), CreateUserRequest{
		Email: email, Password: "secreto1", Name: "Ana Gómez", Role: role, Active: &active,
	})
	require.NoError(t, err)
}

func TestLoginIssuesTokenWithDomainRole(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "ana@example.com", "viewer", true)
	tokens := token.NewManager("secret", 30*24*time.Hour)
	auditor := &recordingAuditor{}
	observer := &countingObserver{}
	svc := NewAuthService(repo, tokens, auditor, observer, nil).(*authService)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "ANA@example.com", Password: "secreto1"})
	require.NoError(t, err)
	require.NoError(t, svc.Wait(context.Background()))

	claims, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.String(), claims.UserID())
	assert.Equal(t, model.RoleViewer, claims.Role)
	assert.Equal(t, "Ana Gómez", claims.Name)
	assert.Equal(t, model.RoleViewer, res.User.Role)

	assert.Equal(t, []string{"ana@example.com"}, auditor.users)
	assert.Equal(t, []string{loginOK}, observer.results)
}

func TestLoginRejectsWrongPasswordAndUnknownEmail(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "ana@example.com", "editor", true)
	svc := NewAuthService(repo, token.NewManager("secret", time.Hour), nil, nil, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "otro@example.com", Password: "secreto1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "ana@example.com", "editor", false)
	observer := &countingObserver{}
	svc := NewAuthService(repo, token.NewManager("secret", time.Hour), nil, observer, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "secreto1"})

	assert.ErrorIs(t, err, ErrInactiveUser)
	assert.Equal(t, []string{loginInactive}, observer.results)
}

func TestLoginAuditFailureDoesNotBlock(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "ana@example.com", "admin", true)
	auditor := &recordingAuditor{err: errors.New("webhook down")}
	svc := NewAuthService(repo, token.NewManager("secret", time.Hour), auditor, nil, nil).(*authService)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "secreto1"})
	require.NoError(t, err)
	require.NoError(t, svc.Wait(context.Background()))

	assert.NotEmpty(t, res.Token)
	assert.Len(t, auditor.users, 1)
}

func TestMe(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "ana@example.com", "admin", true)
	svc := NewAuthService(repo, token.NewManager("secret", time.Hour), nil, nil, nil)
	res, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "secreto1"})
	require.NoError(t, err)

	me, err := svc.Me(context.Background(), res.User.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", me.Email)

	_, err = svc.Me(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
