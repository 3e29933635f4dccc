package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lead-system/pkg/constants"
	"lead-system/pkg/contextkeys"
	apperrors "lead-system/pkg/errors"
	"lead-system/pkg/service"
	"lead-system/pkg/utils"
)

// CapabilityResolver yields the capability set of a role; implemented by the
// capability service on top of the redis cache.
type CapabilityResolver interface {
	GetRoleCapabilities(ctx context.Context, role constants.Role) (map[string]bool, error)
}

type AuthMiddleware struct {
	jwtService   service.JWTService
	capabilities CapabilityResolver
	logger       *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, capabilities CapabilityResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:   jwtSvc,
		capabilities: capabilities,
		logger:       logger,
	}
}

func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: empty Authorization header")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: malformed Authorization header")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: token validation failed", zap.Error(err))
			return utils.ErrorResponse(c, err)
		}

		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: refresh token used for access")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess)
		}

		caps, err := m.capabilities.GetRoleCapabilities(c.Request().Context(), claims.Role)
		if err != nil {
			m.logger.Error("AuthMiddleware: failed to resolve capabilities", zap.Error(err))
			return utils.ErrorResponse(c, err)
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.UserRoleKey, claims.Role)
		ctx = context.WithValue(ctx, contextkeys.UserCapabilitiesKey, caps)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
