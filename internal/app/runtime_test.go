package app

import (
	"testing"

	_ "github.com/granary/granary/internal/testing/guard"
)

func TestRefreshTestModeTracksEnv(t *testing.T) {
	t.Setenv("GRANARY_TEST_MODE", "0")
	RefreshTestMode()
	if InTestMode() {
		t.Fatal("expected test mode off")
	}

	t.Setenv("GRANARY_TEST_MODE", "1")
	RefreshTestMode()
	if !InTestMode() {
		t.Fatal("expected test mode on")
	}
}
