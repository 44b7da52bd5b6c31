package security

import (
	"context"
	"testing"
	"time"

	"deals_api/internal/domain/model"
	"deals_api/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

func setupJWT(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: 30 * time.Minute}
	InitJWT()
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	setupJWT(t)
	user := &model.User{ID: 42, Username: "alice@example.com", Role: model.RoleAdmin}

	tokenString, issued, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if issued.TokenID == "" || time.Until(issued.ExpiresAt) > 30*time.Minute {
		t.Fatalf("unexpected issued claims %+v", issued)
	}

	token, err := jwtauth.VerifyToken(TokenAuth, tokenString)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	raw, err := token.AsMap(context.Background())
	if err != nil {
		t.Fatalf("AsMap: %v", err)
	}
	got, err := ClaimsFromMap(raw)
	if err != nil {
		t.Fatalf("ClaimsFromMap: %v", err)
	}
	if got.Username != user.Username || got.UserID != user.ID || got.Role != model.RoleAdmin || got.TokenID != issued.TokenID {
		t.Fatalf("claims = %+v, want user %+v", got, user)
	}
	if got.ExpiresAt.IsZero() {
		t.Fatal("expiry not extracted")
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	setupJWT(t)

	expired := jwt.MapClaims{"sub": "bob@example.com", "id": 1, "role": "user", "jti": "x"}
	jwtauth.SetExpiry(expired, time.Now().Add(-time.Hour))
	_, expiredString, err := TokenAuth.Encode(expired)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := jwtauth.VerifyToken(TokenAuth, expiredString); err == nil {
		t.Fatal("expired token verified")
	}

	other := jwtauth.New(Algorithm, []byte("another-secret"), nil)
	_, foreign, _ := other.Encode(jwt.MapClaims{"sub": "bob@example.com", "id": 1, "role": "user", "jti": "y"})
	if _, err := jwtauth.VerifyToken(TokenAuth, foreign); err == nil {
		t.Fatal("token signed with another key verified")
	}
}

func TestClaimsFromMapMissingClaims(t *testing.T) {
	cases := []jwt.MapClaims{
		{"id": float64(1), "role": "user", "jti": "a"},
		{"sub": "a@b.co", "role": "user", "jti": "a"},
		{"sub": "a@b.co", "id": float64(-3), "role": "user", "jti": "a"},
		{"sub": "a@b.co", "id": float64(1), "jti": "a"},
		{"sub": "a@b.co", "id": float64(1), "role": "user"},
	}
	for i, c := range cases {
		if _, err := ClaimsFromMap(c); err == nil {
			t.Errorf("case %d: expected error for %v", i, c)
		}
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPasswordHash("correct horse", hash) {
		t.Fatal("matching password rejected")
	}
	if CheckPasswordHash("wrong horse", hash) {
		t.Fatal("wrong password accepted")
	}
}
