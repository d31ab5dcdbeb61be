package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"financetracker/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash equals plaintext")
	}
	if err := CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)
	token, exp, err := iss.Issue(core.User{ID: 42, Username: "alice"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}

	claims, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	id, _ := claims.UserID()
	if id != 42 || claims.Username != "alice" || claims.ID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParse_Rejects(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)
	good, _, _ := iss.Issue(core.User{ID: 1, Username: "a"})

	expired := NewIssuer(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.Issue(core.User{ID: 1, Username: "a"})

	other, _, _ := NewIssuer("ffffffffffffffffffffffffffffffff", time.Hour).Issue(core.User{ID: 1})

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"tampered", good + "x"},
		{"expired", old},
		{"wrong secret", other},
		{"alg none", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := iss.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("got %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	if _, ok := PrincipalFrom(context.Background()); ok {
		t.Fatal("empty context has a principal")
	}
	ctx := WithPrincipal(context.Background(), Principal{UserID: 7, Username: "bob"})
	p, ok := PrincipalFrom(ctx)
	if !ok || p.UserID != 7 || p.Username != "bob" {
		t.Fatalf("got %+v, %v", p, ok)
	}
}
