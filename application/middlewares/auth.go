package middlewares

import (
	"strings"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/interfaces"
	"facegate.io/infrastructure/auth"
	"github.com/golang-jwt/jwt/v4"
)

func UserAuthenticationMiddleware(ctx *interfaces.ApplicationContext[any]) (*interfaces.ApplicationContext[any], bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == nil || !strings.HasPrefix(*authHeader, "Bearer ") {
		apperrors.AuthenticationError(ctx.Ctx, "provide an auth token")
		return nil, false
	}
	token, err := auth.DecodeAuthToken(strings.TrimPrefix(*authHeader, "Bearer "))
	if err != nil {
		apperrors.AuthenticationError(ctx.Ctx, "invalid auth token used")
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		apperrors.AuthenticationError(ctx.Ctx, "invalid auth token used")
		return nil, false
	}
	userID, ok := claims["userID"].(string)
	if !ok || userID == "" {
		apperrors.AuthenticationError(ctx.Ctx, "invalid auth token used")
		return nil, false
	}
	if ctx.Keys == nil {
		ctx.Keys = map[string]any{}
	}
	ctx.Keys["userID"] = userID
	if name, ok := claims["name"].(string); ok {
		ctx.Keys["name"] = name
	}
	if level, ok := claims["accessLevel"].(float64); ok {
		ctx.Keys["accessLevel"] = int(level)
	}
	return ctx, true
}
