package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/repo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// TokenIssuer signs and verifies bearer tokens carrying a user id.
type TokenIssuer interface {
	Sign(userID uuid.UUID) (string, time.Time, error)
	Parse(raw string) (uuid.UUID, error)
}

type AuthService interface {
	Register(ctx context.Context, in CredentialsInput) (*AuthOutput, error)
	Login(ctx context.Context, in CredentialsInput) (*AuthOutput, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users  repo.UserRepo
	tokens TokenIssuer
	log    *zap.Logger
}

func NewAuthService(users repo.UserRepo, tokens TokenIssuer, log *zap.Logger) AuthService {
	return &authService{users: users, tokens: tokens, log: log}
}

type CredentialsInput struct {
	Email    string
	Password string
}

type AuthOutput struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *authService) Register(ctx context.Context, in CredentialsInput) (*AuthOutput, error) {
	email := normalizeEmail(in.Email)

	var fe fieldErrors
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		fe.add("Please provide a valid email")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		fe.add("Password must be at least 6 characters")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, conflictf("User already exists")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictf("User already exists")
		}
		return nil, err
	}

	s.log.Sugar().Infow("user registered", "user_id", u.ID)
	return s.issue(u)
}

func (s *authService) Login(ctx context.Context, in CredentialsInput) (*AuthOutput, error) {
	bad := &Error{Kind: ErrUnauthorized, Msg: "Invalid credentials"}

	u, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bad
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, bad
	}
	return s.issue(u)
}

func (s *authService) issue(u *model.User) (*AuthOutput, error) {
	token, exp, err := s.tokens.Sign(u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Token: token, ExpiresAt: exp, User: u}, nil
}

// Authenticate resolves a bearer token to its user. Unknown users are unauthorized.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, &Error{Kind: ErrUnauthorized, Msg: "Not authorized, token failed"}
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: ErrUnauthorized, Msg: "Not authorized, user not found"}
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
