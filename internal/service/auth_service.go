package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

// newTeacherHourlyRate is the starting rate of a self-registered teacher.
const newTeacherHourlyRate = 40

type authUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type authSessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type authTeacherRepository interface {
	FindProfileByEmail(ctx context.Context, email string) (*models.TeacherProfile, error)
	CreateProfile(ctx context.Context, profile *models.TeacherProfile) error
}

type walletOpener interface {
	Create(ctx context.Context, teacherID string, at time.Time) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService registers accounts and manages token-backed sessions.
type AuthService struct {
	users     authUserRepository
	sessions  authSessionRepository
	teachers  authTeacherRepository
	wallets   walletOpener
	catalog   catalogInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions authSessionRepository, teachers authTeacherRepository, wallets walletOpener, catalog catalogInvalidator, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		teachers:  teachers,
		wallets:   wallets,
		catalog:   catalog,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// Register creates a local account and signs it in. Teacher accounts are
// linked to the catalog record with the same email, or get a new unverified
// record with an empty wallet.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !notFound(err) {
		return nil, storageError(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if req.Role == models.RoleTeacher {
		teacherID, avatar, err := s.linkTeacher(ctx, req, now)
		if err != nil {
			return nil, err
		}
		user.TeacherID = &teacherID
		if avatar != "" {
			user.Avatar = &avatar
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, storageError(err, "failed to create account")
	}
	s.logger.Info("account registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.issue(ctx, user)
}

// Login authenticates a user and opens a session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, storageError(err, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	return s.issue(ctx, user)
}

// Logout revokes the session behind the presented token.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims) error {
	if claims == nil || claims.ID == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	if err := s.sessions.Revoke(ctx, claims.ID, s.now().UTC()); err != nil {
		if notFound(err) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
		}
		return storageError(err, "failed to revoke session")
	}
	s.logger.Info("session closed", zap.String("user_id", claims.UserID), zap.String("session_id", claims.ID))
	return nil
}

// Me returns the account behind a principal.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, storageError(err, "failed to load user")
	}
	info := userInfo(user)
	return &info, nil
}

// ValidateToken parses an access token and checks its session is still open.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	session, err := s.sessions.FindByID(ctx, claims.ID)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
		}
		return nil, storageError(err, "failed to load session")
	}
	if !session.Active(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or revoked")
	}
	return claims, nil
}

// CleanupSessions deletes sessions that expired.
func (s *AuthService) CleanupSessions(ctx context.Context) (int64, error) {
	removed, err := s.sessions.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, storageError(err, "failed to delete expired sessions")
	}
	return removed, nil
}

func (s *AuthService) linkTeacher(ctx context.Context, req models.RegisterRequest, now time.Time) (string, string, error) {
	profile, err := s.teachers.FindProfileByEmail(ctx, req.Email)
	if err == nil {
		return profile.ID, profile.Avatar, nil
	}
	if !notFound(err) {
		return "", "", storageError(err, "failed to look up teacher record")
	}

	profile = &models.TeacherProfile{
		Teacher: models.Teacher{
			ID:         uuid.NewString(),
			Name:       req.Name,
			HourlyRate: newTeacherHourlyRate,
		},
		Email:     req.Email,
		UpdatedAt: now,
	}
	if err := s.teachers.CreateProfile(ctx, profile); err != nil {
		return "", "", storageError(err, "failed to create teacher record")
	}
	if err := s.wallets.Create(ctx, profile.ID, now); err != nil {
		return "", "", storageError(err, "failed to open wallet")
	}
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	return profile.ID, "", nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	issuedAt := s.now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: issuedAt,
		ExpiresAt: issuedAt.Add(s.config.AccessTokenExpiry),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, storageError(err, "failed to open session")
	}

	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	if user.TeacherID != nil {
		claims.TeacherID = *user.TeacherID
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        userInfo(user),
	}, nil
}

func userInfo(user *models.User) models.UserInfo {
	return models.UserInfo{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Avatar:    user.Avatar,
		Role:      user.Role,
		TeacherID: user.TeacherID,
	}
}
