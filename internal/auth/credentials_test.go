package auth

import (
	"strings"
	"testing"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "lowercases", raw: "Ann.Lee", want: "ann.lee"},
		{name: "trims", raw: "  bob_k  ", want: "bob_k"},
		{name: "space inside", raw: "bad name", wantErr: true},
		{name: "trailing dot", raw: "ann.", wantErr: true},
		{name: "too short", raw: "a", wantErr: true},
		{name: "too long", raw: strings.Repeat("a", 33), wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeUsername(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeUsername(%q)=%q want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !VerifyPassword(hash, "correct-horse") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "wrong-horse") {
		t.Fatal("expected wrong password to fail")
	}
	if VerifyPassword("", "anything") {
		t.Fatal("empty hash must not verify")
	}
	if _, err := HashPassword("short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
	if _, err := HashPassword(strings.Repeat("x", 73)); err == nil {
		t.Fatal("expected long password to be rejected")
	}
}

func TestSessionTokens(t *testing.T) {
	a, err := NewSessionToken()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	b, _ := NewSessionToken()
	if a == b {
		t.Fatal("expected distinct tokens")
	}
	if HashToken(a) == HashToken(b) {
		t.Fatal("expected distinct hashes")
	}
	if HashToken(a) != HashToken(" "+a+" ") {
		t.Fatal("expected hash to ignore surrounding space")
	}
	if len(HashToken(a)) != 64 {
		t.Fatalf("expected hex sha256, got %d chars", len(HashToken(a)))
	}
}
