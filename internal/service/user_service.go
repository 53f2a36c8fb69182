package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"planillas/internal/model"
	"planillas/internal/repository"
	"planillas/pkg/pagination"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
	ErrEmailTaken   = errors.New("email already exists")
	ErrInvalidRole  = errors.New("invalid role: must be admin, editor or viewer")
	ErrInvalidEmail = errors.New("invalid email format")
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// DTOs for Request validation
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Active   *bool  `json:"active"`
}

type UpdateUserRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

// UserResponse exposes a directory user without the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// UserService manages the user directory.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page pagination.Params) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
}

type userService struct {
	repo repository.UserRepository
	tx   repository.TransactionManager
}

// NewUserService returns a new instance of UserService. With a nil tx, writes run without a
// transaction and the email uniqueness check can race.
func NewUserService(repo repository.UserRepository, tx repository.TransactionManager) UserService {
	return &userService{repo: repo, tx: tx}
}

func (s *userService) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTx(ctx, fn)
}

func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.DomainRole(),
		Active:    user.Active,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	role := model.DirectoryRole(req.Role)
	if role == "" {
		return nil, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	user := &model.User{
		Email:    email,
		Password: hashed,
		Name:     strings.TrimSpace(req.Name),
		Role:     role,
		Active:   active,
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return err
		}
		return s.repo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page pagination.Params) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page.Offset, page.Limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	role := ""
	if req.Role != "" {
		if role = model.DirectoryRole(req.Role); role == "" {
			return nil, ErrInvalidRole
		}
	}
	hashed := ""
	if req.Password != "" {
		var err error
		if hashed, err = hashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	var user *model.User
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		if role != "" {
			user.Role = role
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			user.Name = name
		}
		if req.Active != nil {
			user.Active = *req.Active
		}
		if hashed != "" {
			user.Password = hashed
		}
		return s.repo.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
