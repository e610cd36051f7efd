package config

import (
	"testing"
	"time"
)

func TestTeamColorFallback(t *testing.T) {
	if got := TeamColor("Ferrari", FallbackColorReference); got != "#8B0000" {
		t.Errorf("Expected Ferrari color, got %s", got)
	}
	if got := TeamColor("Minardi", FallbackColorCompared); got != FallbackColorCompared {
		t.Errorf("Expected fallback %s, got %s", FallbackColorCompared, got)
	}
}

func TestValidSessionType(t *testing.T) {
	for _, st := range []string{"FP1", "Q", "R", "Sprint Shootout"} {
		if !ValidSessionType(st) {
			t.Errorf("Expected %q to be valid", st)
		}
	}
	if ValidSessionType("FP4") {
		t.Error("Expected FP4 to be invalid")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PROVIDER_URL", "http://provider:9000")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("CACHE_DIR", "/tmp/cache")
	t.Setenv("MOCK_PROVIDER_PORT", "not-a-port")

	s := FromEnv()
	if s.ProviderURL != "http://provider:9000" {
		t.Errorf("Expected provider URL from env, got %s", s.ProviderURL)
	}
	if s.ProviderTimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", s.ProviderTimeout)
	}
	if s.CacheDir != "/tmp/cache" {
		t.Errorf("Expected cache dir from env, got %s", s.CacheDir)
	}
	if s.MockProviderPort != 0 {
		t.Errorf("Expected invalid port to be ignored, got %d", s.MockProviderPort)
	}
	if s.WebserverAddress != DefaultWebserverAddr {
		t.Errorf("Expected default address, got %s", s.WebserverAddress)
	}
}
