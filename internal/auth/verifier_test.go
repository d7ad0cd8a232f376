package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestDevModeToken(t *testing.T) {
	v := &Verifier{Mode: "dev"}
	p, err := v.Verify("alice:admin")
	if err != nil {
		t.Fatal(err)
	}
	if p.Subject != "alice" || p.Role != "admin" {
		t.Fatalf("got %+v", p)
	}
	if _, err := v.Verify("no-role"); err == nil {
		t.Fatal("expected error for malformed dev token")
	}
}

func signHS256(t *testing.T, secret []byte, claims map[string]any) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		return base64.RawURLEncoding.EncodeToString(b)
	}
	signingInput := enc(map[string]any{"alg": "HS256", "typ": "JWT"}) + "." + enc(claims)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func TestHMACVerify(t *testing.T) {
	secret := []byte("shh")
	v := &Verifier{Mode: "hmac", HMACSecret: secret, SubjectClaim: "sub", RoleClaim: "role"}

	tok := signHS256(t, secret, map[string]any{"sub": "bob", "role": "Admin"})
	p, err := v.Verify(tok)
	if err != nil {
		t.Fatal(err)
	}
	if p.Subject != "bob" || p.Role != "admin" {
		t.Fatalf("got %+v", p)
	}

	// default role when the claim is absent
	p, err = v.Verify(signHS256(t, secret, map[string]any{"sub": "bob"}))
	if err != nil {
		t.Fatal(err)
	}
	if p.Role != "user" {
		t.Fatalf("role = %s, want user", p.Role)
	}

	if _, err := v.Verify(signHS256(t, []byte("wrong"), map[string]any{"sub": "bob"})); err == nil {
		t.Fatal("expected bad signature error")
	}
	if _, err := v.Verify(signHS256(t, secret, map[string]any{"role": "admin"})); err == nil {
		t.Fatal("expected missing subject error")
	}
	if _, err := v.Verify("not-a-jwt"); err == nil {
		t.Fatal("expected invalid JWT error")
	}
}
