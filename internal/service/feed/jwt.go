package feed

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	SessionId string `json:"session_id"`
}

func (s *service) generateJWT(sessionId string) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionId,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.secret))
}

func (s *service) ParseSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token")
	}

	sessionId, ok := claims["session_id"].(string)
	if !ok {
		return nil, errors.New("invalid token")
	}

	return &Claims{SessionId: sessionId}, nil
}
