package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/plant-attendance-api/internal/models"
	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// UserService manages application accounts. Accounts are never hard
// deleted, only deactivated, so old attendance stays attributable.
type UserService struct {
	router    dataRouter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(router dataRouter, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{router: router, validator: validate, logger: logger}
}

// CreateUserRequest carries a new account.
type CreateUserRequest struct {
	Name            string `json:"name" validate:"required"`
	Username        string `json:"username" validate:"required,min=3"`
	Password        string `json:"password" validate:"required,min=6"`
	Role            string `json:"role" validate:"required"`
	AssignedSection string `json:"assigned_section"`
	AssignedShift   string `json:"assigned_shift"`
}

// Create adds one account with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be Admin, Supervisor or HR")
	}

	rows, err := s.router.Read(ctx, store.TableUsers)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	for _, row := range rows {
		if strings.EqualFold(models.UserFromRow(row).Username, username) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := models.User{
		ID:              nextID(rows),
		Name:            strings.TrimSpace(req.Name),
		Username:        username,
		PasswordHash:    string(hash),
		Role:            role,
		Active:          true,
		AssignedSection: strings.TrimSpace(req.AssignedSection),
		AssignedShift:   strings.TrimSpace(req.AssignedShift),
	}
	rows = append(rows, user.Row())
	if err := s.router.ReplaceAll(ctx, store.TableUsers, rows); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return &user, nil
}

// List returns all accounts sorted by username.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.router.Read(ctx, store.TableUsers)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, models.UserFromRow(row))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// SetActive toggles an account. The last active admin cannot be
// deactivated.
func (s *UserService) SetActive(ctx context.Context, id int, active bool) (*models.User, error) {
	rows, err := s.router.Read(ctx, store.TableUsers)
	if err != nil {
		return nil, err
	}

	var target *models.User
	activeAdmins := 0
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		u := models.UserFromRow(row)
		if u.Active && u.Role == models.RoleAdmin {
			activeAdmins++
		}
		users = append(users, u)
		if u.ID == id {
			target = &users[len(users)-1]
		}
	}
	if target == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	if !active && target.Active && target.Role == models.RoleAdmin && activeAdmins <= 1 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot deactivate the last active admin")
	}

	target.Active = active
	out := make([]store.Row, 0, len(users))
	for _, u := range users {
		out = append(out, u.Row())
	}
	if err := s.router.ReplaceAll(ctx, store.TableUsers, out); err != nil {
		return nil, err
	}

	s.logger.Info("user active flag changed", zap.String("username", target.Username), zap.Bool("active", active))
	return target, nil
}

// ChangePasswordRequest updates one account's password.
type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// ChangePassword rehashes and stores a new password for one account.
func (s *UserService) ChangePassword(ctx context.Context, id int, req ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	rows, err := s.router.Read(ctx, store.TableUsers)
	if err != nil {
		return err
	}
	found := false
	out := make([]store.Row, 0, len(rows))
	for _, row := range rows {
		u := models.UserFromRow(row)
		if u.ID == id {
			u.PasswordHash = string(hash)
			found = true
		}
		out = append(out, u.Row())
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return s.router.ReplaceAll(ctx, store.TableUsers, out)
}
