package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Hitesh-Saha/FeastAI/internal/models"
	"github.com/Hitesh-Saha/FeastAI/internal/schema"
)

// SessionTTL is how long a login stays valid.
const SessionTTL = 7 * 24 * time.Hour

const avatarURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// Session identifies the caller. The core only reads UserID.
type Session struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sessionClaims struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	jwt.RegisteredClaims
}

// SignupRequest is the signup form.
type SignupRequest struct {
	Name     string `json:"name" validate:"notblank,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8,max=72"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, jwtSecret string, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		log:       log.WithField("component", "auth"),
		now:       time.Now,
	}
}

// Signup creates an account and returns a signed session token.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*Session, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := schema.Struct(req); err != nil {
		return nil, "", validationError("Field Validation Error", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, "", newError(KindInternal, msgSomethingWrong, fmt.Errorf("failed to check email: %w", err))
	}
	if count > 0 {
		return nil, "", &Error{
			Kind:    KindConflict,
			Message: "Email already exists",
			Fields:  map[string][]string{"email": {"Email already exists"}},
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", newError(KindInternal, msgSomethingWrong, fmt.Errorf("failed to hash password: %w", err))
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Avatar:       avatarURL + uuid.NewString(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", newError(KindConflict, "Email already exists", err)
		}
		return nil, "", newError(KindInternal, msgSomethingWrong, fmt.Errorf("failed to create user: %w", err))
	}

	s.log.WithField("user_id", user.ID).Info("user signed up")
	return s.issue(&user)
}

// Login checks credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := schema.Struct(req); err != nil {
		return nil, "", validationError("Field Validation Error", err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fieldError("User does not exist", "email", "User does not exist")
		}
		return nil, "", newError(KindInternal, msgSomethingWrong, fmt.Errorf("failed to load user: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", fieldError("Invalid credentials", "password", "Invalid credentials")
	}

	return s.issue(&user)
}

func (s *AuthService) issue(user *models.User) (*Session, string, error) {
	now := s.now()
	session := &Session{
		UserID:    user.ID,
		Name:      user.Name,
		Avatar:    user.Avatar,
		ExpiresAt: now.Add(SessionTTL).UTC().Truncate(time.Second),
	}

	claims := sessionClaims{
		Name:   session.Name,
		Avatar: session.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", newError(KindInternal, msgSomethingWrong, fmt.Errorf("failed to sign session: %w", err))
	}
	return session, token, nil
}

// ParseSession verifies a session token and returns its payload.
func (s *AuthService) ParseSession(token string) (*Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, errors.New("invalid session token")
	}

	return &Session{
		UserID:    claims.Subject,
		Name:      claims.Name,
		Avatar:    claims.Avatar,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
