package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/app/services"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthFlow handles sign-in, token rotation and session resolution
type AuthFlow interface {
	Captcha(ctx context.Context) (*dto.CaptchaResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Me(ctx context.Context, userID uint) (*dto.UserDTO, error)
	VerifyRecaptcha(ctx context.Context, req *dto.RecaptchaVerifyRequest, metadata *ClientMetadata) (*dto.RecaptchaVerifyResponse, error)
	// Session validates an access token and returns the current state of its user
	Session(ctx context.Context, accessToken string) (*models.User, *models.AccessScope, error)
}

// AuthFlowImpl implements the auth business flow
type AuthFlowImpl struct {
	userRepo       repository.UserRepository
	tokenService   services.TokenService
	captchaService services.CaptchaService
	recaptcha      services.RecaptchaService
	captchaEnabled bool
}

// NewAuthFlow creates a new auth flow instance. A nil captcha service disables the login captcha.
func NewAuthFlow(
	userRepo repository.UserRepository,
	tokenService services.TokenService,
	captchaService services.CaptchaService,
	recaptcha services.RecaptchaService,
	captchaEnabled bool,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:       userRepo,
		tokenService:   tokenService,
		captchaService: captchaService,
		recaptcha:      recaptcha,
		captchaEnabled: captchaEnabled && captchaService != nil,
	}
}

func (f *AuthFlowImpl) Captcha(ctx context.Context) (*dto.CaptchaResponse, error) {
	if f.captchaService == nil {
		return nil, fmt.Errorf("captcha: %w", services.ErrProviderNotConfigured)
	}
	ch, err := f.captchaService.GenerateRotate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate captcha: %w", err)
	}
	return &dto.CaptchaResponse{
		CaptchaID:   ch.ID,
		MasterImage: ch.MasterImageBase64,
		ThumbImage:  ch.ThumbImageBase64,
	}, nil
}

// Login authenticates a user by email and password
func (f *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	log := logger.FromContext(ctx)

	if f.captchaEnabled {
		if req.CaptchaID == "" || req.CaptchaAngle == nil {
			return nil, ErrInvalidCaptcha
		}
		if !f.captchaService.VerifyRotate(ctx, req.CaptchaID, *req.CaptchaAngle) {
			return nil, ErrInvalidCaptcha
		}
	}

	user, err := f.userRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		log.Info("login rejected", zap.String("reason", "unknown email"), zap.String("ip", ipOf(metadata)))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Info("login rejected", zap.String("reason", "wrong password"), zap.Uint("user_id", user.ID), zap.String("ip", ipOf(metadata)))
		return nil, ErrInvalidCredentials
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, ErrAccountInactive
	}
	if _, err := ResolveScope(user); err != nil {
		return nil, err
	}

	resp, err := f.issue(user)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	if err := f.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Warn("failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
		resp.User = ToUserDTO(*user)
	}

	log.Info("user logged in", zap.Uint("user_id", user.ID), zap.String("role", user.Role), zap.String("ip", ipOf(metadata)))
	return resp, nil
}

// Refresh rotates a refresh token. The old refresh token is revoked and the
// role in the new tokens is the user's current role.
func (f *AuthFlowImpl) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error) {
	claims, err := f.tokenService.ValidateToken(ctx, req.RefreshToken)
	if err != nil || claims.TokenType != services.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	user, _, err := sessionScope(ctx, f.userRepo, claims.UserID)
	if err != nil {
		return nil, err
	}

	resp, err := f.issue(user)
	if err != nil {
		return nil, err
	}
	if err := f.tokenService.RevokeToken(ctx, req.RefreshToken); err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout revokes the access token and, when given, the refresh token
func (f *AuthFlowImpl) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := f.tokenService.RevokeToken(ctx, accessToken); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if refreshToken != "" {
		if err := f.tokenService.RevokeToken(ctx, refreshToken); err != nil {
			logger.FromContext(ctx).Warn("failed to revoke refresh token", zap.Error(err))
		}
	}
	return nil
}

func (f *AuthFlowImpl) Me(ctx context.Context, userID uint) (*dto.UserDTO, error) {
	user, _, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	out := ToUserDTO(*user)
	return &out, nil
}

// VerifyRecaptcha relays the token to Google and mirrors its verdict
func (f *AuthFlowImpl) VerifyRecaptcha(ctx context.Context, req *dto.RecaptchaVerifyRequest, metadata *ClientMetadata) (*dto.RecaptchaVerifyResponse, error) {
	if strings.TrimSpace(req.Token) == "" {
		return nil, ErrRecaptchaTokenRequired
	}
	if f.recaptcha == nil {
		return nil, fmt.Errorf("recaptcha: %w", services.ErrProviderNotConfigured)
	}
	result, err := f.recaptcha.Verify(ctx, req.Token, ipOf(metadata))
	if err != nil {
		logger.FromContext(ctx).Error("recaptcha verification failed", zap.Error(err))
		return nil, err
	}
	if result.Success {
		return &dto.RecaptchaVerifyResponse{Success: true}, nil
	}
	return &dto.RecaptchaVerifyResponse{Success: false, Errors: result.ErrorCodes}, nil
}

func (f *AuthFlowImpl) Session(ctx context.Context, accessToken string) (*models.User, *models.AccessScope, error) {
	claims, err := f.tokenService.ValidateToken(ctx, accessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if claims.TokenType != services.TokenTypeAccess {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnauthorized, services.ErrTokenInvalid)
	}
	return sessionScope(ctx, f.userRepo, claims.UserID)
}

func (f *AuthFlowImpl) issue(user *models.User) (*dto.LoginResponse, error) {
	access, refresh, err := f.tokenService.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(f.tokenService.AccessTokenTTL().Seconds()),
		User:         ToUserDTO(*user),
	}, nil
}

// IsTokenError reports whether err came from token validation
func IsTokenError(err error) bool {
	return errors.Is(err, services.ErrTokenExpired) ||
		errors.Is(err, services.ErrTokenInvalid) ||
		errors.Is(err, services.ErrTokenRevoked)
}

func ipOf(metadata *ClientMetadata) string {
	if metadata == nil {
		return ""
	}
	return metadata.IPAddress
}
