package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"space-reservation-backend/internal/model"
)

// UserRepository stores accounts.
type UserRepository interface {
	UserFinder
	// FindByEmail returns nil, nil when no account uses email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
}

type UserService struct {
	users UserRepository
	now   func() time.Time
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users, now: time.Now}
}

// Register creates an account. Emails are unique and compared in lower case.
func (s *UserService) Register(ctx context.Context, name, email string, role model.Role) (*model.User, error) {
	var violations []string
	name = strings.TrimSpace(name)
	if name == "" {
		violations = append(violations, "name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		violations = append(violations, "a valid email address is required")
	} else {
		existing, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if existing != nil {
			violations = append(violations, "email is already registered")
		}
	}
	if role == "" {
		role = model.RoleUser
	}
	if _, err := model.ParseRole(string(role)); err != nil {
		violations = append(violations, err.Error())
	}
	if len(violations) > 0 {
		return nil, newValidationError(violations...)
	}

	user := &model.User{Name: name, Email: email, Role: role, CreatedAt: s.now().UTC()}
	if err := s.users.Save(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, newValidationError("email is already registered")
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
