package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"planillas/internal/model"
	"planillas/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user is inactive, contact the administrator")
)

// Login results as counted by metrics.
const (
	loginOK       = "ok"
	loginInvalid  = "invalid_credentials"
	loginInactive = "inactive"
)

const auditTimeout = 10 * time.Second

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID, email, name, role string) (string, error)
	TTL() time.Duration
}

// LoginAuditor records successful logins. Failures never block a login.
type LoginAuditor interface {
	AuditLogin(ctx context.Context, user *model.User, at time.Time) error
}

type LoginObserver interface {
	ObserveLogin(result string)
}

// AuthService authenticates directory users.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Me(ctx context.Context, userID string) (*UserResponse, error)
	// Wait blocks until pending login audits finish or ctx is done.
	Wait(ctx context.Context) error
}

type authService struct {
	repo     repository.UserRepository
	tokens   TokenIssuer
	auditor  LoginAuditor
	observer LoginObserver
	log      *zap.Logger
	now      func() time.Time

	background sync.WaitGroup
}

// NewAuthService returns a new instance of AuthService. auditor and observer may be nil.
func NewAuthService(repo repository.UserRepository, tokens TokenIssuer, auditor LoginAuditor, observer LoginObserver, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		repo:     repo,
		tokens:   tokens,
		auditor:  auditor,
		observer: observer,
		log:      log.Named("auth"),
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		s.observe(loginInvalid)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.observe(loginInvalid)
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		s.observe(loginInactive)
		return nil, ErrInactiveUser
	}

	role := user.DomainRole()
	if role == "" {
		s.log.Error("directory user has an unknown role", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))
		s.observe(loginInvalid)
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	signed, err := s.tokens.Issue(user.ID.String(), user.Email, user.Name, role)
	if err != nil {
		return nil, err
	}

	s.observe(loginOK)
	s.audit(ctx, user, now)

	return &LoginResponse{
		Token:     signed,
		ExpiresAt: now.Add(s.tokens.TTL()),
		User:      *mapToResponse(user),
	}, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *authService) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveLogin(result)
	}
}

func (s *authService) audit(ctx context.Context, user *model.User, at time.Time) {
	if s.auditor == nil {
		return
	}
	auditCtx := context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		callCtx, cancel := context.WithTimeout(auditCtx, auditTimeout)
		defer cancel()
		if err := s.auditor.AuditLogin(callCtx, user, at); err != nil {
			s.log.Warn("login audit failed", zap.String("email", user.Email), zap.Error(err))
		}
	}()
}

func (s *authService) Wait(ctx context.Context) error {
	return waitBackground(ctx, &s.background)
}
