package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer = "courtside"

	// Cookie names are part of the public contract with the web client.
	UserCookieName  = "badminton_user_token"
	AdminCookieName = "badminton_admin_token"
)

// Role is carried as the JWT subject. Admin tokens also pass user checks so
// admins do not need two cookies to browse the roster.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	ErrWrongPassword = errors.New("wrong password")
	ErrInvalidToken  = errors.New("invalid token")
)

type Config struct {
	UserPassword  string
	AdminPassword string
	SigningSecret string
	UserTokenTTL  time.Duration
	AdminTokenTTL time.Duration
}

// Token is a signed credential plus its expiry, for cookie Max-Age.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

type Service struct {
	cfg Config
	now func() time.Time
}

func NewService(cfg Config) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

func (s *Service) LoginUser(password string) (Token, error) {
	if !constantTimeEqual(password, s.cfg.UserPassword) && !constantTimeEqual(password, s.cfg.AdminPassword) {
		return Token{}, ErrWrongPassword
	}
	return s.issue(RoleUser, s.cfg.UserTokenTTL)
}

func (s *Service) LoginAdmin(password string) (Token, error) {
	if !constantTimeEqual(password, s.cfg.AdminPassword) {
		return Token{}, ErrWrongPassword
	}
	return s.issue(RoleAdmin, s.cfg.AdminTokenTTL)
}

// VerifyUser accepts both user and admin tokens.
func (s *Service) VerifyUser(token string) error {
	role, err := s.parse(token)
	if err != nil {
		return err
	}
	if role != RoleUser && role != RoleAdmin {
		return ErrInvalidToken
	}
	return nil
}

func (s *Service) VerifyAdmin(token string) error {
	role, err := s.parse(token)
	if err != nil {
		return err
	}
	if role != RoleAdmin {
		return ErrInvalidToken
	}
	return nil
}

func (s *Service) issue(role Role, ttl time.Duration) (Token, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   string(role),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SigningSecret))
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: expiresAt}, nil
}

func (s *Service) parse(token string) (Role, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.SigningSecret), nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", ErrInvalidToken
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return Role(sub), nil
}

func constantTimeEqual(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
