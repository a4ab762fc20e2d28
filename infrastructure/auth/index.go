package auth

import (
	"errors"
	"os"

	"facegate.io/infrastructure/logger"
	"github.com/golang-jwt/jwt/v4"
)

func GenerateAuthToken(claimsData ClaimsData) (*string, error) {
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":         os.Getenv("JWT_ISSUER"),
		"userID":      claimsData.UserID,
		"name":        claimsData.Name,
		"accessLevel": claimsData.AccessLevel,
		"exp":         claimsData.ExpiresAt,
		"iat":         claimsData.IssuedAt,
		"deviceID":    claimsData.DeviceID,
		"userAgent":   claimsData.UserAgent,
	}).SignedString([]byte(os.Getenv("JWT_SIGNING_KEY")))
	if err != nil {
		return nil, err
	}
	return &tokenString, nil
}

func DecodeAuthToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SIGNING_KEY")), nil
	})
	if err != nil {
		if err == jwt.ErrSignatureInvalid {
			err = errors.New("invalid token signature used")
			return nil, err
		}
		logger.Error("error decoding jwt", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	if !token.Valid {
		err := errors.New("invalid token used")
		logger.Error(err.Error())
		return nil, err
	}
	return token, nil
}
