package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/booking-server/internal/persistence"
)

type stubUserRepository struct {
	createUserFunc           func(ctx context.Context, user persistence.User) (persistence.User, error)
	getUserFunc              func(ctx context.Context, id int64) (persistence.User, error)
	getUserByUsernameFunc    func(ctx context.Context, username string) (persistence.User, error)
	countUsersByUsernameFunc func(ctx context.Context, username string) (int, error)
	updateUserFunc           func(ctx context.Context, user persistence.User) (persistence.User, error)
	deleteUserFunc           func(ctx context.Context, id int64) error
}

func (s *stubUserRepository) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if s.createUserFunc != nil {
		return s.createUserFunc(ctx, user)
	}
	return persistence.User{}, errors.New("CreateUser not stubbed")
}

func (s *stubUserRepository) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	if s.getUserFunc != nil {
		return s.getUserFunc(ctx, id)
	}
	return persistence.User{}, errors.New("GetUser not stubbed")
}

func (s *stubUserRepository) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	if s.getUserByUsernameFunc != nil {
		return s.getUserByUsernameFunc(ctx, username)
	}
	return persistence.User{}, errors.New("GetUserByUsername not stubbed")
}

func (s *stubUserRepository) CountUsersByUsername(ctx context.Context, username string) (int, error) {
	if s.countUsersByUsernameFunc != nil {
		return s.countUsersByUsernameFunc(ctx, username)
	}
	return 0, nil
}

func (s *stubUserRepository) UpdateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if s.updateUserFunc != nil {
		return s.updateUserFunc(ctx, user)
	}
	return persistence.User{}, errors.New("UpdateUser not stubbed")
}

func (s *stubUserRepository) DeleteUser(ctx context.Context, id int64) error {
	if s.deleteUserFunc != nil {
		return s.deleteUserFunc(ctx, id)
	}
	return errors.New("DeleteUser not stubbed")
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestAccountService(users persistence.UserRepository) *AccountService {
	svc := NewAccountService(users, NewTokenIssuer("test-secret", time.Hour, nil), nil)
	svc.hashPassword = func(password string) (string, error) { return "hashed:" + password, nil }
	svc.verifyPassword = func(hashedPassword, password string) error {
		if hashedPassword == "hashed:"+password {
			return nil
		}
		return ErrInvalidCredentials
	}
	return svc
}

func validSignup() SignupInput {
	return SignupInput{
		Username:    "alice",
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Password:    "long-enough-password",
		IsHost:      true,
	}
}

func TestAccountServiceSignup(t *testing.T) {
	t.Parallel()

	t.Run("creates account and returns stored record", func(t *testing.T) {
		t.Parallel()

		var created persistence.User
		repo := &stubUserRepository{
			createUserFunc: func(_ context.Context, user persistence.User) (persistence.User, error) {
				created = user
				user.ID = 7
				return user, nil
			},
		}
		svc := newTestAccountService(repo)

		user, err := svc.Signup(context.Background(), validSignup())
		if err != nil {
			t.Fatalf("Signup returned error: %v", err)
		}
		if user.ID != 7 {
			t.Errorf("expected assigned ID 7, got %d", user.ID)
		}
		if user.Username != "alice" {
			t.Errorf("unexpected username %q", user.Username)
		}
		if !user.IsHost {
			t.Error("expected IsHost to be preserved")
		}
		if created.PasswordHash != "hashed:long-enough-password" {
			t.Errorf("password was not hashed before persisting: %q", created.PasswordHash)
		}
	})

	t.Run("normalizes username and email", func(t *testing.T) {
		t.Parallel()

		repo := &stubUserRepository{
			createUserFunc: func(_ context.Context, user persistence.User) (persistence.User, error) {
				user.ID = 1
				return user, nil
			},
		}
		svc := newTestAccountService(repo)

		input := validSignup()
		input.Username = "  alice  "
		input.Email = "  Alice@Example.COM  "

		user, err := svc.Signup(context.Background(), input)
		if err != nil {
			t.Fatalf("Signup returned error: %v", err)
		}
		if user.Username != "alice" {
			t.Errorf("username not trimmed: %q", user.Username)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("email not lowercased: %q", user.Email)
		}
	})

	t.Run("generates display name when omitted", func(t *testing.T) {
		t.Parallel()

		repo := &stubUserRepository{
			createUserFunc: func(_ context.Context, user persistence.User) (persistence.User, error) {
				user.ID = 1
				return user, nil
			},
		}
		svc := newTestAccountService(repo)

		input := validSignup()
		input.DisplayName = ""

		user, err := svc.Signup(context.Background(), input)
		if err != nil {
			t.Fatalf("Signup returned error: %v", err)
		}
		if len(user.DisplayName) != fallbackNameLength {
			t.Errorf("expected generated display name of %d characters, got %q", fallbackNameLength, user.DisplayName)
		}
	})

	t.Run("rejects invalid input with field errors", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name  string
			setup func(*SignupInput)
			field string
		}{
			{"short username", func(in *SignupInput) { in.Username = "abc" }, "username"},
			{"long username", func(in *SignupInput) { in.Username = string(make([]byte, usernameMaxLength+1)) }, "username"},
			{"missing email", func(in *SignupInput) { in.Email = "" }, "email"},
			{"malformed email", func(in *SignupInput) { in.Email = "not-an-email" }, "email"},
			{"short password", func(in *SignupInput) { in.Password = "short" }, "password"},
		}

		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				svc := newTestAccountService(&stubUserRepository{})
				input := validSignup()
				tc.setup(&input)

				_, err := svc.Signup(context.Background(), input)
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if _, ok := vErr.FieldErrors[tc.field]; !ok {
					t.Errorf("expected error on field %q, got %v", tc.field, vErr.FieldErrors)
				}
			})
		}
	})

	t.Run("reports duplicate username from pre-check", func(t *testing.T) {
		t.Parallel()

		repo := &stubUserRepository{
			countUsersByUsernameFunc: func(_ context.Context, _ string) (int, error) { return 1, nil },
		}
		svc := newTestAccountService(repo)

		_, err := svc.Signup(context.Background(), validSignup())
		if !errors.Is(err, ErrDuplicateUsername) {
			t.Fatalf("expected ErrDuplicateUsername, got %v", err)
		}
	})

	t.Run("maps constraint violations from the store", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name      string
			storeErr  error
			wantErr   error
		}{
			{"username constraint", persistence.ErrDuplicateUsername, ErrDuplicateUsername},
			{"email constraint", persistence.ErrDuplicateEmail, ErrDuplicateEmail},
		}

		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				repo := &stubUserRepository{
					createUserFunc: func(_ context.Context, _ persistence.User) (persistence.User, error) {
						return persistence.User{}, tc.storeErr
					},
				}
				svc := newTestAccountService(repo)

				_, err := svc.Signup(context.Background(), validSignup())
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
			})
		}
	})
}

func TestAccountServiceLogin(t *testing.T) {
	t.Parallel()

	storedUser := persistence.User{
		ID:           3,
		Username:     "alice",
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		IsHost:       true,
		PasswordHash: "hashed:long-enough-password",
	}

	t.Run("issues token for valid credentials", func(t *testing.T) {
		t.Parallel()

		repo := &stubUserRepository{
			getUserByUsernameFunc: func(_ context.Context, username string) (persistence.User, error) {
				if username != "alice" {
					return persistence.User{}, persistence.ErrNotFound
				}
				return storedUser, nil
			},
		}
		svc := newTestAccountService(repo)

		result, err := svc.Login(context.Background(), LoginParams{Username: "alice", Password: "long-enough-password"})
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if result.AccessToken == "" {
			t.Error("expected a non-empty access token")
		}
		if result.User.ID != storedUser.ID {
			t.Errorf("expected user ID %d, got %d", storedUser.ID, result.User.ID)
		}
		if result.ExpiresAt.IsZero() {
			t.Error("expected a token expiry")
		}
	})

	t.Run("rejects unknown username as invalid credentials", func(t *testing.T) {
		t.Parallel()

		repo := &stubUserRepository{
			getUserByUsernameFunc: func(_ context.Context, _ string) (persistence.User, error) {
				return persistence.User{}, persistence.ErrNotFound
			},
		}
		svc := newTestAccountService(repo)

		_, err := svc.Login(context.Background(), LoginParams{Username: "nobody", Password: "long-enough-password"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		t.Parallel()

		repo := &stubUserRepository{
			getUserByUsernameFunc: func(_ context.Context, _ string) (persistence.User, error) {
				return storedUser, nil
			},
		}
		svc := newTestAccountService(repo)

		_, err := svc.Login(context.Background(), LoginParams{Username: "alice", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects blank credentials", func(t *testing.T) {
		t.Parallel()

		svc := newTestAccountService(&stubUserRepository{})

		_, err := svc.Login(context.Background(), LoginParams{})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAccountServiceVerifyToken(t *testing.T) {
	t.Parallel()

	storedUser := persistence.User{ID: 3, Username: "alice", IsHost: true, PasswordHash: "hashed:long-enough-password"}

	issueToken := func(t *testing.T, svc *AccountService) string {
		t.Helper()
		token, _, err := svc.tokens.Issue(toUser(storedUser))
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}
		return token
	}

	t.Run("resolves principal for valid token", func(t *testing.T) {
		t.Parallel()

		repo := &stubUserRepository{
			getUserFunc: func(_ context.Context, id int64) (persistence.User, error) {
				if id != storedUser.ID {
					return persistence.User{}, persistence.ErrNotFound
				}
				return storedUser, nil
			},
		}
		svc := newTestAccountService(repo)

		principal, err := svc.VerifyToken(context.Background(), issueToken(t, svc))
		if err != nil {
			t.Fatalf("VerifyToken returned error: %v", err)
		}
		if principal.UserID != storedUser.ID {
			t.Errorf("expected user ID %d, got %d", storedUser.ID, principal.UserID)
		}
		if !principal.IsHost {
			t.Error("expected host principal")
		}
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		t.Parallel()

		svc := newTestAccountService(&stubUserRepository{})

		_, err := svc.VerifyToken(context.Background(), "not-a-token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects token for deleted account", func(t *testing.T) {
		t.Parallel()

		repo := &stubUserRepository{
			getUserFunc: func(_ context.Context, _ int64) (persistence.User, error) {
				return persistence.User{}, persistence.ErrNotFound
			},
		}
		svc := newTestAccountService(repo)

		_, err := svc.VerifyToken(context.Background(), issueToken(t, svc))
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()

		past := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
		issuer := NewTokenIssuer("test-secret", time.Hour, fixedClock(past))
		token, _, err := issuer.Issue(toUser(storedUser))
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		svc := newTestAccountService(&stubUserRepository{})

		_, err = svc.VerifyToken(context.Background(), token)
		if !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestAccountServiceUserByUsername(t *testing.T) {
	t.Parallel()

	t.Run("returns the account", func(t *testing.T) {
		t.Parallel()

		repo := &stubUserRepository{
			getUserByUsernameFunc: func(_ context.Context, username string) (persistence.User, error) {
				if username != "alice" {
					return persistence.User{}, persistence.ErrNotFound
				}
				return persistence.User{ID: 3, Username: "alice"}, nil
			},
		}
		svc := newTestAccountService(repo)

		user, err := svc.UserByUsername(context.Background(), "alice")
		if err != nil {
			t.Fatalf("UserByUsername returned error: %v", err)
		}
		if user.ID != 3 {
			t.Errorf("expected user ID 3, got %d", user.ID)
		}
	})

	t.Run("maps missing account to not found", func(t *testing.T) {
		t.Parallel()

		repo := &stubUserRepository{
			getUserByUsernameFunc: func(_ context.Context, _ string) (persistence.User, error) {
				return persistence.User{}, persistence.ErrNotFound
			},
		}
		svc := newTestAccountService(repo)

		_, err := svc.UserByUsername(context.Background(), "ghost")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
