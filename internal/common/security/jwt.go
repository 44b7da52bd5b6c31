package security

import (
	"encoding/json"
	"errors"
	"time"

	"deals_api/internal/domain/model"
	"deals_api/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const Algorithm = "HS256"

var TokenAuth *jwtauth.JWTAuth

// Claims is the verified claim set carried by a bearer token.
type Claims struct {
	Username  string     `json:"username"`
	UserID    uint       `json:"id"`
	Role      model.Role `json:"role"`
	TokenID   string     `json:"-"`
	ExpiresAt time.Time  `json:"-"`
}

func InitJWT() {
	TokenAuth = jwtauth.New(Algorithm, config.AppConfig.JWTKey, nil)
}

// GenerateToken signs {sub, id, role, jti, iat, exp} for user.
func GenerateToken(user *model.User) (string, Claims, error) {
	now := time.Now()
	expiresAt := now.Add(config.AppConfig.JWTExp)
	tokenID := uuid.NewString()

	claims := jwt.MapClaims{
		"sub":  user.Username,
		"id":   user.ID,
		"role": string(user.Role),
		"jti":  tokenID,
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, expiresAt)

	_, tokenString, err := TokenAuth.Encode(claims)
	if err != nil {
		return "", Claims{}, err
	}
	return tokenString, Claims{
		Username:  user.Username,
		UserID:    user.ID,
		Role:      user.Role,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

// ClaimsFromMap extracts the claim set from a verified token's claims.
func ClaimsFromMap(claims jwt.MapClaims) (Claims, error) {
	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return Claims{}, errors.New("sub claim is missing or not a string")
	}
	userID, err := uintClaim(claims["id"])
	if err != nil {
		return Claims{}, err
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Claims{}, errors.New("role claim is missing or not a string")
	}
	tokenID, ok := claims["jti"].(string)
	if !ok || tokenID == "" {
		return Claims{}, errors.New("jti claim is missing or not a string")
	}

	c := Claims{Username: username, UserID: userID, Role: model.Role(role), TokenID: tokenID}
	switch exp := claims["exp"].(type) {
	case time.Time:
		c.ExpiresAt = exp
	case float64:
		c.ExpiresAt = time.Unix(int64(exp), 0)
	case int64:
		c.ExpiresAt = time.Unix(exp, 0)
	}
	return c, nil
}

func uintClaim(v interface{}) (uint, error) {
	switch n := v.(type) {
	case float64:
		if n >= 0 && n == float64(uint(n)) {
			return uint(n), nil
		}
	case int:
		if n >= 0 {
			return uint(n), nil
		}
	case int64:
		if n >= 0 {
			return uint(n), nil
		}
	case uint:
		return n, nil
	case json.Number:
		if i, err := n.Int64(); err == nil && i >= 0 {
			return uint(i), nil
		}
	}
	return 0, errors.New("id claim is missing or not a non-negative integer")
}
