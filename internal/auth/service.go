package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZINSTEM/SoloGym/internal/progression"
	"github.com/ZINSTEM/SoloGym/internal/user/entity"
	userrepo "github.com/ZINSTEM/SoloGym/internal/user/repo"
	"github.com/ZINSTEM/SoloGym/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Config carries token signing settings.
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// ConfigFromEnv reads auth config from environment variables.
func ConfigFromEnv() Config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret"
	}
	ttl := 30 * 24 * time.Hour
	if v := os.Getenv("JWT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}
	return Config{Secret: secret, Issuer: "sologym", TokenTTL: ttl}
}

// TokenIssuer signs and parses HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenIssuer(cfg Config) *TokenIssuer {
	return &TokenIssuer{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: cfg.TokenTTL}
}

// Issue creates a signed token whose subject is the user id.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": t.issuer,
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse validates the token and returns the user id from its subject.
func (t *TokenIssuer) Parse(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", ErrBadToken
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrBadToken
	}
	return sub, nil
}

var (
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrBadToken       = errors.New("invalid token")
	ErrInvalidInput   = errors.New("email and password required")
)

// startingXPToNextLevel is the stored threshold for a fresh level-1 hunter.
// This is XPForLevel(1), not XPForLevel(2): the recurrence only kicks in after
// the first level-up, so the level-2 climb costs 100 XP, then 225, 337, ...
var startingXPToNextLevel = progression.XPForLevel(1)

// Service handles registration and password authentication.
type Service struct {
	users  *userrepo.UserRepo
	hasher PasswordHasher
	tokens *TokenIssuer
}

func NewService(users *userrepo.UserRepo, hasher PasswordHasher, tokens *TokenIssuer) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an account with the gamified starting state and returns it
// with a signed token.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidInput
	}
	if displayName == "" {
		displayName = "Hunter"
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	u := &entity.User{
		ID:            utilities.NewKSUID(),
		Email:         email,
		PasswordHash:  hash,
		DisplayName:   displayName,
		Level:         1,
		XPToNextLevel: startingXPToNextLevel,
		Badges:        []string{},
		Version:       1,
	}
	if err := s.users.Create(ctx, u); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login authenticates by email and returns the user with a fresh token.
// Lookup and verify failures collapse into one error to avoid user enumeration.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidInput
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrBadCredentials
		}
		return nil, "", err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, "", ErrBadCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
