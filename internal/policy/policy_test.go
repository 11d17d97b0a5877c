package policy

import (
	"testing"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
)

func TestCheckCommandAllowedEmptyAllowlist(t *testing.T) {
	if err := CheckCommandAllowed(nil, "execute"); err != nil {
		t.Fatalf("empty allowlist blocks nothing: %v", err)
	}
}

func TestCheckCommandAllowedMatch(t *testing.T) {
	allow := []string{"quote", "network status"}
	if err := CheckCommandAllowed(allow, "quote"); err != nil {
		t.Fatalf("expected quote to be allowed: %v", err)
	}
	if err := CheckCommandAllowed(allow, "Network  Status"); err != nil {
		t.Fatalf("matching is case and whitespace insensitive: %v", err)
	}
}

func TestCheckCommandAllowedBlocked(t *testing.T) {
	err := CheckCommandAllowed([]string{"quote"}, "execute")
	typed, ok := clierr.As(err)
	if !ok || typed.Code != clierr.CodeBlocked {
		t.Fatalf("expected blocked error, got %v", err)
	}
}
