package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/example/booking-server/internal/persistence"
)

const (
	usernameMinLength    = 4
	usernameMaxLength    = 40
	displayNameMaxLength = 40
	passwordMinLength    = 8
	fallbackNameLength   = 8
)

// AccountService orchestrates signup, login, and account lookup.
type AccountService struct {
	users          persistence.UserRepository
	tokens         *TokenIssuer
	hashPassword   func(password string) (string, error)
	verifyPassword func(hashedPassword, password string) error
	logger         *slog.Logger
}

// NewAccountService wires dependencies for the account service.
func NewAccountService(users persistence.UserRepository, tokens *TokenIssuer, logger *slog.Logger) *AccountService {
	return &AccountService{
		users:          users,
		tokens:         tokens,
		hashPassword:   func(password string) (string, error) { return CreatePasswordHash(password, DefaultArgon2idParams) },
		verifyPassword: VerifyPassword,
		logger:         defaultLogger(logger),
	}
}

func (s *AccountService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation, attrs...)
}

// Signup validates input and persists a new account.
//
// Username uniqueness uses an optimistic count pre-check for a precise
// error, with the storage constraint remaining authoritative; email
// uniqueness relies on the constraint alone, matching the original signup
// flow.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("AccountService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	normalized := normalizeSignupInput(input)

	logger := s.loggerWith(ctx, "Signup", "username", normalized.Username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "signup failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "account created")
	}()

	if vErr := validateSignupInput(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	if normalized.DisplayName == "" {
		normalized.DisplayName, err = randomDisplayName(fallbackNameLength)
		if err != nil {
			return
		}
	}

	count, err := s.users.CountUsersByUsername(ctx, normalized.Username)
	if err != nil {
		return
	}
	if count > 0 {
		err = ErrDuplicateUsername
		return
	}

	hash, err := s.hashPassword(normalized.Password)
	if err != nil {
		return
	}

	persisted, err := s.users.CreateUser(ctx, persistence.User{
		Username:     normalized.Username,
		Email:        normalized.Email,
		DisplayName:  normalized.DisplayName,
		IsHost:       normalized.IsHost,
		PasswordHash: hash,
	})
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	user = toUser(persisted)
	return
}

// Login verifies credentials and issues an access token.
func (s *AccountService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AccountService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}
	if s.tokens == nil {
		err = fmt.Errorf("token issuer not configured")
		return
	}

	username := strings.TrimSpace(params.Username)

	logger := s.loggerWith(ctx, "Login", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	if username == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	stored, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(stored.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	user := toUser(stored)
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return
	}

	result = LoginResult{User: user, AccessToken: token, ExpiresAt: expiresAt}
	return
}

// VerifyToken validates an access token and resolves its principal against
// the user store.
func (s *AccountService) VerifyToken(ctx context.Context, token string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AccountService is nil")
	}
	if s.tokens == nil {
		return Principal{}, fmt.Errorf("token issuer not configured")
	}
	if s.users == nil {
		return Principal{}, fmt.Errorf("user repository not configured")
	}

	claims, err := s.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		return Principal{}, err
	}

	stored, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Principal{}, ErrInvalidToken
		}
		return Principal{}, err
	}

	return Principal{UserID: stored.ID, IsHost: stored.IsHost}, nil
}

// UserByUsername returns the account with the given username.
func (s *AccountService) UserByUsername(ctx context.Context, username string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("AccountService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	stored, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return toUser(stored), nil
}

func normalizeSignupInput(input SignupInput) SignupInput {
	return SignupInput{
		Username:    strings.TrimSpace(input.Username),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Password:    input.Password,
		IsHost:      input.IsHost,
	}
}

func validateSignupInput(input SignupInput) *ValidationError {
	vErr := &ValidationError{}

	if length := len(input.Username); length < usernameMinLength || length > usernameMaxLength {
		vErr.add("username", fmt.Sprintf("username must be between %d and %d characters", usernameMinLength, usernameMaxLength))
	}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if len(input.DisplayName) > displayNameMaxLength {
		vErr.add("display_name", fmt.Sprintf("display name must be at most %d characters", displayNameMaxLength))
	}

	if len(input.Password) < passwordMinLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", passwordMinLength))
	}

	return vErr
}

const displayNameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomDisplayName generates the fallback display name assigned when a
// signup omits one.
func randomDisplayName(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate display name: %w", err)
	}
	for i, b := range buf {
		buf[i] = displayNameAlphabet[int(b)%len(displayNameAlphabet)]
	}
	return string(buf), nil
}

func mapUserRepoError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrDuplicateUsername):
		return ErrDuplicateUsername
	case errors.Is(err, persistence.ErrDuplicateEmail):
		return ErrDuplicateEmail
	default:
		return err
	}
}

func toUser(model persistence.User) User {
	return User{
		ID:          model.ID,
		Username:    model.Username,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		IsHost:      model.IsHost,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
