package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockroom/internal/logger"
	"stockroom/internal/models"
	"stockroom/internal/repository"
	"stockroom/internal/utils"
	"stockroom/internal/utils/helpers"

	"go.uber.org/zap"
)

const minPasswordLen = 6

// ErrValidation marks bad input; handlers map it to 400.
type ErrValidation struct {
	Missing []string
	Reason  string
}

func (e *ErrValidation) Error() string {
	if len(e.Missing) > 0 {
		return "missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return e.Reason
}

var ErrBadCredentials = errors.New("incorrect email or password")

type AuthService struct {
	repo UserRepo
}

func NewAuthService(repo UserRepo) *AuthService {
	return &AuthService{repo: repo}
}

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUserFields(ctx context.Context, id int64, input *models.UpdateUserRequest) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
}

func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*models.User, error) {
	logger.Log.Info("registering user (service)", zap.String("email", helpers.MaskEmail(email)))

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", name}, {"email", email}, {"password", password},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &ErrValidation{Missing: missing}
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if !helpers.IsValidName(name) {
		return nil, &ErrValidation{Reason: "name may contain only letters and spaces"}
	}
	if !helpers.IsValidEmail(email) {
		return nil, &ErrValidation{Reason: "invalid email"}
	}
	if len(password) < minPasswordLen {
		return nil, &ErrValidation{Reason: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}

	if taken, err := s.repo.IsEmailTaken(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, &ErrValidation{Reason: "email already registered"}
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("password hashing failed", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Photo:        models.DefaultPhoto,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, &ErrValidation{Reason: "email already registered"}
		}
		logger.Log.Error("create user failed (service)", zap.Error(err))
		return nil, err
	}

	logger.Log.Info("user registered (service)", zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*models.User, error) {
	logger.Log.Info("login attempt (service)", zap.String("email", helpers.MaskEmail(email)))

	var missing []string
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(password) == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, &ErrValidation{Missing: missing}
	}

	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		logger.Log.Warn("user not found on login (service)", zap.String("email", helpers.MaskEmail(email)))
		return nil, ErrBadCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Log.Warn("wrong password on login (service)", zap.Int64("user_id", user.ID))
		return nil, ErrBadCredentials
	}

	logger.Log.Info("login succeeded (service)", zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *AuthService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// UpdateProfile applies a partial update; nil fields keep the stored value.
func (s *AuthService) UpdateProfile(ctx context.Context, id int64, input *models.UpdateUserRequest) (*models.User, error) {
	logger.Log.Info("updating profile (service)", zap.Int64("user_id", id))

	if input.Name != nil && !helpers.IsValidName(*input.Name) {
		return nil, &ErrValidation{Reason: "name may contain only letters and spaces"}
	}
	if input.Bio != nil && len(*input.Bio) > 250 {
		return nil, &ErrValidation{Reason: "bio may be at most 250 characters"}
	}

	if err := s.repo.UpdateUserFields(ctx, id, input); err != nil {
		logger.Log.Error("profile update failed (service)", zap.Error(err), zap.Int64("user_id", id))
		return nil, err
	}
	return s.repo.GetUserByID(ctx, id)
}

// ChangePassword verifies the old password before hashing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	logger.Log.Info("changing password (service)", zap.Int64("user_id", user.ID))

	var missing []string
	if oldPassword == "" {
		missing = append(missing, "oldPassword")
	}
	if newPassword == "" {
		missing = append(missing, "newPassword")
	}
	if len(missing) > 0 {
		return &ErrValidation{Missing: missing}
	}
	if len(newPassword) < minPasswordLen {
		return &ErrValidation{Reason: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}

	if !utils.CheckPasswordHash(oldPassword, user.PasswordHash) {
		logger.Log.Warn("old password mismatch (service)", zap.Int64("user_id", user.ID))
		return &ErrValidation{Reason: "incorrect password"}
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Log.Error("password hashing failed", zap.Error(err))
		return err
	}
	return s.repo.UpdateUserPassword(ctx, user.ID, hashed)
}
