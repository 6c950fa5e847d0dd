package store

import (
	"testing"
)

func TestGenerateID(t *testing.T) {
	t.Run("valid prefix", func(t *testing.T) {
		id, err := GenerateID("tk", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ValidID(id) {
			t.Fatalf("expected canonical id, got %s", id)
		}
		if id[:3] != "tk-" {
			t.Fatalf("expected prefix tk-, got %s", id[:3])
		}
	})

	t.Run("invalid prefix", func(t *testing.T) {
		for _, prefix := range []string{"", "t", "TK", "t1", "abc"} {
			if _, err := GenerateID(prefix, nil); err == nil {
				t.Fatalf("expected error for prefix %q", prefix)
			}
		}
	})

	t.Run("retries on collision", func(t *testing.T) {
		calls := 0
		exists := func(id string) bool {
			calls++
			return calls < 3
		}
		id, err := GenerateID("tk", exists)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id == "" {
			t.Fatal("expected non-empty id")
		}
		if calls != 3 {
			t.Fatalf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		exists := func(id string) bool { return true }
		if _, err := GenerateID("tk", exists); err == nil {
			t.Fatal("expected error after max attempts")
		}
	})
}

func TestValidID(t *testing.T) {
	valid := []string{"tk-ab12", "us-0000"}
	invalid := []string{"", "tk-ab1", "TK-ab12", "tk_ab12", "tk-ab12x"}
	for _, id := range valid {
		if !ValidID(id) {
			t.Fatalf("expected %q to be valid", id)
		}
	}
	for _, id := range invalid {
		if ValidID(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}
