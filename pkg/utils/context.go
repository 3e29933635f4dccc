package utils

import (
	"context"

	"lead-system/pkg/constants"
	"lead-system/pkg/contextkeys"
	apperrors "lead-system/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	id, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || id == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return id, nil
}

func GetUserRoleFromCtx(ctx context.Context) (constants.Role, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(constants.Role)
	if !ok || role == "" {
		return "", apperrors.ErrUserIDNotFoundInContext
	}
	return role, nil
}

func GetCapabilitiesFromCtx(ctx context.Context) map[string]bool {
	caps, ok := ctx.Value(contextkeys.UserCapabilitiesKey).(map[string]bool)
	if !ok {
		return map[string]bool{}
	}
	return caps
}
