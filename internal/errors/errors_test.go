package errors

import (
	"fmt"
	"testing"
)

func TestRetryable(t *testing.T) {
	cases := []struct {
		code Code
		want bool
	}{
		{CodeValidation, false},
		{CodeUsage, false},
		{CodeSigner, false},
		{CodePool, false},
		{CodeNetwork, true},
		{CodeApproval, true},
		{CodeSwap, true},
		{CodeUnavailable, true},
		{CodeTimeout, true},
	}
	for _, tc := range cases {
		if got := Retryable(New(tc.code, "x")); got != tc.want {
			t.Fatalf("Retryable(code %d) = %v, want %v", tc.code, got, tc.want)
		}
	}
	if Retryable(fmt.Errorf("plain")) {
		t.Fatal("untyped errors are not retryable")
	}
	if Retryable(nil) {
		t.Fatal("nil is not retryable")
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != int(CodeSuccess) {
		t.Fatalf("ExitCode(nil) = %d, want %d", got, CodeSuccess)
	}
	if got := ExitCode(New(CodeBlocked, "x")); got != int(CodeBlocked) {
		t.Fatalf("ExitCode(blocked) = %d, want %d", got, CodeBlocked)
	}
	if got := ExitCode(fmt.Errorf("plain")); got != int(CodeInternal) {
		t.Fatalf("ExitCode(plain) = %d, want %d", got, CodeInternal)
	}
}
