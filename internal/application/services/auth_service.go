package services

import (
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/user"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/security"
)

// AdminStore looks up back-office accounts.
type AdminStore interface {
	FindByEmail(email string) (*user.AdminUser, error)
}

// LoginResult carries the issued token and the authenticated account.
type LoginResult struct {
	Token string          `json:"token"`
	Admin *user.AdminUser `json:"admin"`
}

// AuthService authenticates back-office users and issues admin JWTs.
type AuthService struct {
	admins    AdminStore
	jwtSecret string
	logger    *logging.ChanneledLogger
}

// NewAuthService creates a new auth service
func NewAuthService(admins AdminStore, jwtSecret string, logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{
		admins:    admins,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Login verifies credentials and returns a signed admin token. Lookup
// failures and bad passwords both report ErrUnauthorized so the response
// never reveals which accounts exist.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	admin, err := s.admins.FindByEmail(email)
	if err != nil {
		s.logger.Auth().Error("Admin lookup failed", "error", err.Error())
		return nil, err
	}
	if admin == nil {
		s.logger.Auth().Debug("Login attempt for unknown admin")
		return nil, ErrUnauthorized
	}

	if !security.CheckPassword(admin.PasswordHash, password) {
		s.logger.Auth().Debug("Login attempt with wrong password", "adminId", admin.ID)
		return nil, ErrUnauthorized
	}

	token, err := security.GenerateAdminToken(admin, s.jwtSecret)
	if err != nil {
		s.logger.Auth().Error("Admin token generation failed", "error", err.Error())
		return nil, err
	}

	s.logger.Auth().Info("Admin logged in", "adminId", admin.ID)
	return &LoginResult{Token: token, Admin: admin}, nil
}

// Validate checks an admin token and returns the admin email claim.
func (s *AuthService) Validate(tokenString string) (string, error) {
	claims, err := security.ValidateJWT(tokenString, s.jwtSecret)
	if err != nil {
		return "", ErrUnauthorized
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return "", ErrUnauthorized
	}
	return email, nil
}
