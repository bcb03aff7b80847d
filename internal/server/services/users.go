package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/cryptox"
	"github.com/dmitrijs2005/onboarding/internal/logging"
	"github.com/dmitrijs2005/onboarding/internal/server/auth"
	"github.com/dmitrijs2005/onboarding/internal/server/config"
	"github.com/dmitrijs2005/onboarding/internal/server/models"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/repomanager"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token string
	User  models.UserSummary
}

type UserService struct {
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
	logger        logging.Logger
	now           func() time.Time

	// used to spend the same hashing time when the email is unknown
	dummyHash, dummySalt string
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	dummy, err := common.MakeRandHexString(16)
	if err != nil {
		dummy = "not-a-real-password"
	}
	hash, salt := cryptox.HashPassword(dummy)
	return &UserService{
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.AccessTokenValidityDuration,
		logger:        logger,
		now:           time.Now,
		dummyHash:     hash,
		dummySalt:     salt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignup(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return common.NewValidationError("name", "is required")
	}
	if !emailPattern.MatchString(email) {
		return common.NewValidationError("email", "is not a valid email address")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return common.NewValidationError("password", "must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Signup creates an account and returns a token for it.
func (s *UserService) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := validateSignup(name, email, password); err != nil {
		return nil, err
	}

	hash, salt := cryptox.HashPassword(password)
	user := &models.User{
		ID:           models.NewUserID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    s.now().UTC(),
	}

	user, err := s.repomanager.Users().Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", user.ID)
	return s.issue(user)
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.NewValidationError("", "email and password are required")
	}

	user, err := s.repomanager.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(password, s.dummyHash, s.dummySalt)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash, user.Salt)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Me returns the user behind an authenticated request. A user deleted after
// the token was issued is treated as unauthorized.
func (s *UserService) Me(ctx context.Context, userID string) (*models.UserSummary, error) {
	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	summary := user.Summary()
	return &summary, nil
}

// Authenticate verifies a bearer token and returns its user id.
func (s *UserService) Authenticate(token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthorized
	}
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}
	return &AuthResult{Token: token, User: user.Summary()}, nil
}
