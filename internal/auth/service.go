package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Mailer delivers the generated credentials on password reset.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo       RepositoryAPI
	tokenGen   TokenGeneratorAPI
	mailer     Mailer
	bcryptCost int
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, mailer Mailer, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		tokenGen:   tokenGen,
		mailer:     mailer,
		bcryptCost: bcryptCost,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(secret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:          []byte(secret),
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	}
}

// Authenticate validates credentials and returns tokens. Inactive users are
// rejected even when the password is correct.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	user, storedHash, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(storedHash, dto.Password); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(user)
}

// RefreshTokens validates a refresh token and issues a fresh pair. The user is
// re-loaded so role changes and deactivation take effect on rotation.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGen.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}

	user, err := s.repo.GetByID(userID)
	if err != nil {
		return AuthTokens{}, ErrUserNotFound
	}
	if !user.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(user)
}

func (s *Service) issueTokens(user *User) (AuthTokens, error) {
	userID := strconv.FormatInt(user.ID, 10)

	accessToken, err := s.tokenGen.GenerateAccessToken(userID, user.Email, user.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGen.GenerateRefreshToken(userID, user.Email, user.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateToken(tokenString, TokenTypeAccess)
}

// GetUser loads the caller for the auth middleware.
func (s *Service) GetUser(userID int64) (*User, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *Service) ChangePassword(userID int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	_, storedHash, err := s.repo.GetByEmail(user.Email)
	if err != nil {
		return ErrUserNotFound
	}

	if err := VerifyPassword(storedHash, dto.CurrentPassword); err != nil {
		return ErrWrongPassword
	}

	newHash, err := HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(userID, newHash)
}

// ResetPassword generates a new password for the user, stores its hash and
// mails the credentials. Admin only; enforced at the route level.
func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	user, _, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return ErrUserNotFound
	}

	password, err := GeneratePassword(12)
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(user.ID, hash); err != nil {
		return err
	}

	if s.mailer != nil {
		body := fmt.Sprintf("Hello %s,\n\nYour password has been reset.\n\nEmail: %s\nPassword: %s\n\nPlease change it after signing in.", user.Name, user.Email, password)
		if err := s.mailer.Send(ctx, []string{user.Email}, "Your password has been reset", body); err != nil {
			return fmt.Errorf("password updated but mail delivery failed: %w", err)
		}
	}

	return nil
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%"

// GeneratePassword returns a random password from a fixed charset.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}
	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordCharset[n.Int64()]
	}
	return string(buf), nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID, email string, role Role) (string, error) {
	return j.generate(userID, email, role, TokenTypeAccess, j.AccessTokenTTL)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(userID, email string, role Role) (string, error) {
	return j.generate(userID, email, role, TokenTypeRefresh, j.RefreshTokenTTL)
}

func (j *JWTTokenGenerator) generate(userID, email string, role Role, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID:    userID,
		Email:     email,
		Role:      string(role),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ValidateToken validates a JWT token and returns claims when the token type matches.
func (j *JWTTokenGenerator) ValidateToken(tokenString string, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
