package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/YeahNotSewerSide/Swap/internal/registry"
)

// isolate points every discovery path at temp directories so host state
// never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, key := range []string{
		"SWAP_OUTPUT", "SWAP_TIMEOUT", "SWAP_CHAIN_ID", "SWAP_RPC_URL",
		"SWAP_CONTRACT", "SWAP_CONFIRM_TIMEOUT", "SWAP_POLL_INTERVAL",
		"SWAP_KEY_SOURCE", "SWAP_NO_CACHE", "SWAP_CACHE_PATH",
		"SWAP_CACHE_LOCK_PATH", "SWAP_NO_JOURNAL", "SWAP_JOURNAL_PATH",
		"SWAP_JOURNAL_LOCK_PATH", "SWAP_VERBOSE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	settings, err := Load(GlobalFlags{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OutputMode != "json" {
		t.Fatalf("unexpected output mode: %s", settings.OutputMode)
	}
	if settings.ChainID != registry.AploChainID {
		t.Fatalf("unexpected default chain id: %d", settings.ChainID)
	}
	if settings.Timeout != 10*time.Second {
		t.Fatalf("unexpected default timeout: %s", settings.Timeout)
	}
	if settings.PollInterval != 2*time.Second || settings.ConfirmTimeout != 2*time.Minute {
		t.Fatalf("unexpected confirm defaults: poll=%s timeout=%s", settings.PollInterval, settings.ConfirmTimeout)
	}
	if !settings.CacheEnabled || !settings.JournalEnabled {
		t.Fatal("cache and journal default to enabled")
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := `
output: plain
timeout: 30s
chain_id: 1
rpc_url: http://localhost:8545
contract: "0x00000000000000000000000000000000000000cc"
confirm:
  poll_interval: 500ms
  timeout: 1m
gas:
  multiplier: 1.5
  max_fee_gwei: "40"
journal:
  enabled: false
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	settings, err := Load(GlobalFlags{ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OutputMode != "plain" || settings.Timeout != 30*time.Second {
		t.Fatalf("file config not applied: %+v", settings)
	}
	if settings.ChainID != 1 || settings.RPCURL != "http://localhost:8545" {
		t.Fatalf("chain settings not applied: %+v", settings)
	}
	if settings.PollInterval != 500*time.Millisecond || settings.ConfirmTimeout != time.Minute {
		t.Fatalf("confirm settings not applied: %+v", settings)
	}
	if settings.GasMultiplier != 1.5 || settings.MaxFeeGwei != "40" {
		t.Fatalf("gas settings not applied: %+v", settings)
	}
	if settings.JournalEnabled {
		t.Fatal("journal should be disabled by file config")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("chain_id: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SWAP_CHAIN_ID", "5")

	settings, err := Load(GlobalFlags{ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.ChainID != 5 {
		t.Fatalf("env should override file, got chain id %d", settings.ChainID)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("SWAP_CHAIN_ID", "5")
	t.Setenv("SWAP_CONTRACT", "0x00000000000000000000000000000000000000aa")

	settings, err := Load(GlobalFlags{
		ChainID:  7,
		Contract: "0x00000000000000000000000000000000000000bb",
		Timeout:  "3s",
		NoCache:  true,
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.ChainID != 7 {
		t.Fatalf("flag should override env, got chain id %d", settings.ChainID)
	}
	if settings.ContractAddress != "0x00000000000000000000000000000000000000bb" {
		t.Fatalf("flag contract not applied: %s", settings.ContractAddress)
	}
	if settings.Timeout != 3*time.Second {
		t.Fatalf("flag timeout not applied: %s", settings.Timeout)
	}
	if settings.CacheEnabled {
		t.Fatal("--no-cache should disable the cache")
	}
}

func TestLoadRejectsConflictingOutputFlags(t *testing.T) {
	isolate(t)
	if _, err := Load(GlobalFlags{JSON: true, Plain: true}); err == nil {
		t.Fatal("expected --json/--plain conflict to fail")
	}
}

func TestLoadRejectsInvalidOutputMode(t *testing.T) {
	isolate(t)
	t.Setenv("SWAP_OUTPUT", "yaml")
	if _, err := Load(GlobalFlags{}); err == nil {
		t.Fatal("expected invalid output mode to fail")
	}
}

func TestLoadRejectsMalformedContract(t *testing.T) {
	isolate(t)
	t.Setenv("SWAP_CONTRACT", "not-an-address")
	if _, err := Load(GlobalFlags{}); err == nil {
		t.Fatal("expected malformed contract address to fail")
	}
}

func TestLoadSelectFields(t *testing.T) {
	isolate(t)
	settings, err := Load(GlobalFlags{Select: " pool_id , token0 ,"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(settings.SelectFields) != 2 || settings.SelectFields[0] != "pool_id" || settings.SelectFields[1] != "token0" {
		t.Fatalf("unexpected select fields: %v", settings.SelectFields)
	}
}
