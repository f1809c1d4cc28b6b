package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateOpsToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateOpsToken("ops@foodiepro", ScopeReload)
	if err != nil {
		t.Fatalf("GenerateOpsToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != "ops@foodiepro" {
		t.Errorf("expected subject ops@foodiepro, got %s", claims.Subject)
	}
	if !claims.HasScope(ScopeReload) {
		t.Errorf("expected scope %s, got %s", ScopeReload, claims.Scope)
	}
}

func TestGenerateOpsToken_EmptySubject(t *testing.T) {
	svc := NewJWTService("test-secret")

	if _, err := svc.GenerateOpsToken("", ScopeReload); !errors.Is(err, ErrEmptySubject) {
		t.Errorf("expected ErrEmptySubject, got %v", err)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := NewJWTService("secret-a")
	other := NewJWTService("secret-b")

	token, err := svc.GenerateOpsToken("ops@foodiepro", ScopeReload)
	if err != nil {
		t.Fatalf("GenerateOpsToken() error = %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret")

	if _, err := svc.ValidateToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	secret := "test-secret"
	svc := &JWTService{currentSecret: []byte(secret), leeway: 0}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops@foodiepro",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
		Scope: ScopeReload,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateToken_RejectsUnexpectedAlg(t *testing.T) {
	svc := NewJWTService("test-secret")

	// alg=none tokens must never validate.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ops@foodiepro"},
		Scope:            ScopeReload,
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := svc.ValidateToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateToken_Rotation(t *testing.T) {
	oldSvc := NewJWTService("old-secret")
	token, err := oldSvc.GenerateOpsToken("ops@foodiepro", ScopeReload)
	if err != nil {
		t.Fatalf("GenerateOpsToken() error = %v", err)
	}

	// After rotation, tokens signed with the previous secret still validate.
	rotated := NewJWTServiceWithRotation("new-secret", "old-secret")
	claims, err := rotated.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() with previous secret error = %v", err)
	}
	if claims.Subject != "ops@foodiepro" {
		t.Errorf("expected subject ops@foodiepro, got %s", claims.Subject)
	}

	// Without the previous secret configured the token is rejected.
	noRotation := NewJWTService("new-secret")
	if _, err := noRotation.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHasScope(t *testing.T) {
	c := &Claims{Scope: ScopeReload}
	if !c.HasScope(ScopeReload) {
		t.Error("expected HasScope to match")
	}
	if c.HasScope("ops:other") {
		t.Error("expected HasScope to reject different scope")
	}
}
