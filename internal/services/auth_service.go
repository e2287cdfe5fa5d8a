package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wardrobe/internal/models"
	"wardrobe/internal/repositories"
	"wardrobe/pkg/logger"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig configures token issuing.
type AuthConfig struct {
	Secret    string
	Algorithm string // HS256, HS384 or HS512
	TokenTTL  time.Duration
}

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Name      string
	Surname   string
	Birthdate time.Time
	Email     string
	Password  string
}

// AdminAccount describes the administrator created at startup.
type AdminAccount struct {
	Name      string
	Surname   string
	Birthdate time.Time
	Email     string
	Password  string
}

// AuthService handles registration, login and token resolution.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	method    *jwt.SigningMethodHMAC
	tokenTTL  time.Duration
	hashCost  int
}

// NewAuthService creates a new AuthService. Only HMAC algorithms are
// accepted.
func NewAuthService(userRepo repositories.UserRepository, cfg AuthConfig) (*AuthService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(strings.ToUpper(alg)).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", cfg.Algorithm)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.Secret),
		method:    method,
		tokenTTL:  ttl,
		hashCost:  bcrypt.DefaultCost,
	}, nil
}

// SetHashCost changes the bcrypt cost used for new passwords.
func (s *AuthService) SetHashCost(cost int) {
	s.hashCost = cost
}

// RegisterUser creates a regular, active user.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	_, err := s.userRepo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, newError(ErrEmailTaken, "Email already registered")
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, storeError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:           in.Name,
		Surname:        in.Surname,
		Birthdate:      in.Birthdate,
		Email:          in.Email,
		HashedPassword: string(hashed),
		IsActive:       true,
		IsUser:         true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrEmailTaken, "Email already registered")
		}
		return nil, storeError(err)
	}

	logger.Log(ctx).Info(ctx, "user registered", zap.String("email", user.Email))
	return user, nil
}

// Authenticate checks an email and password pair.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrInvalidCredentials, "Incorrect email or password")
		}
		return nil, storeError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, newError(ErrInvalidCredentials, "Incorrect email or password")
	}
	return user, nil
}

// LoginUser authenticates a user and returns a signed access token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.IssueToken(user)
}

// IssueToken signs an access token whose subject is the user's email.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := jwt.TimeFunc()
	token := jwt.NewWithClaims(s.method, jwt.MapClaims{
		"sub": user.Email,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, ok := claims["exp"]; !ok {
		return nil, errors.New("invalid token: missing exp")
	}
	return claims, nil
}

// ResolveToken returns the user a token was issued to. Every failure
// collapses to the same unauthorized error.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (*models.User, error) {
	unauthorized := newError(ErrUnauthorized, "Could not validate credentials")

	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		logger.Log(ctx).Debug(ctx, "token rejected", zap.Error(err))
		return nil, unauthorized
	}
	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return nil, unauthorized
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, unauthorized
		}
		return nil, storeError(err)
	}
	return user, nil
}

// EnsureAdmin creates the administrator account unless one already exists.
// Losing a creation race to another instance is not an error.
func (s *AuthService) EnsureAdmin(ctx context.Context, admin AdminAccount) error {
	log := logger.Log(ctx)
	if admin.Email == "" || admin.Password == "" {
		log.Warn(ctx, "admin account not configured, skipping bootstrap")
		return nil
	}

	existing, err := s.userRepo.GetAdmin(ctx)
	if err == nil {
		log.Debug(ctx, "admin already exists", zap.String("email", existing.Email))
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	user := &models.User{
		Name:           admin.Name,
		Surname:        admin.Surname,
		Birthdate:      admin.Birthdate,
		Email:          admin.Email,
		HashedPassword: string(hashed),
		IsActive:       true,
		IsAdmin:        true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			log.Warn(ctx, "admin email already taken", zap.String("email", admin.Email))
			return nil
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info(ctx, "admin created", zap.String("email", user.Email))
	return nil
}
