package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	userID, businessID := uuid.New(), uuid.New()
	token, err := GenerateJWT("secret", userID, businessID, "editor", "ed@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT("secret", token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != userID || claims.BusinessID != businessID || claims.Role != "editor" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseJWTRejects(t *testing.T) {
	valid, _ := GenerateJWT("secret", uuid.New(), uuid.New(), "owner", "", time.Hour)
	noBusiness, _ := GenerateJWT("secret", uuid.New(), uuid.Nil, "owner", "", time.Hour)
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		BusinessID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("secret"))
	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		BusinessID:       uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	}).SignedString([]byte("secret"))

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", valid},
		{"no business", "secret", noBusiness},
		{"expired", "secret", expired},
		{"foreign issuer", "secret", foreign},
		{"garbage", "secret", "not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseJWT(tt.secret, tt.token); err == nil {
				t.Error("expected error")
			}
		})
	}
}
