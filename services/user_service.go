package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/models"
	"github.com/Ramprakash852/AI-storyteller/utils"
)

// UserService handles registration and authentication.
type UserService struct {
	users      UserStore
	bcryptCost int
}

func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// Register creates a new account. Emails are unique and compared
// case-insensitively.
func (u *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.ParentEmail))

	if _, err := u.users.FindUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password, u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ParentEmail:   email,
		ParentName:    req.ParentName,
		ChildName:     req.ChildName,
		ChildAge:      req.ChildAge,
		ChildStandard: req.ChildStandard,
		PasswordHash:  hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := u.users.InsertUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	logger.Info("User registered", "user_id", id.Hex())
	return user, nil
}

// Authenticate verifies credentials and returns the user.
func (u *UserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.ParentEmail))

	user, err := u.users.FindUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}
	return user, nil
}

// GetUser loads a user by ID.
func (u *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return u.users.FindUserByID(ctx, id)
}
