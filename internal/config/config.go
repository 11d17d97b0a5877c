package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/YeahNotSewerSide/Swap/internal/id"
	"github.com/YeahNotSewerSide/Swap/internal/registry"
)

type GlobalFlags struct {
	ConfigPath     string
	JSON           bool
	Plain          bool
	Select         string
	ResultsOnly    bool
	EnableCommands string
	Timeout        string
	RPCURL         string
	ChainID        int64
	Contract       string
	NoCache        bool
	NoJournal      bool
	Verbose        bool
}

type Settings struct {
	OutputMode         string
	SelectFields       []string
	ResultsOnly        bool
	EnableCommands     []string
	Timeout            time.Duration
	PollInterval       time.Duration
	ConfirmTimeout     time.Duration
	ChainID            int64
	RPCURL             string
	ContractAddress    string
	GasMultiplier      float64
	MaxFeeGwei         string
	MaxPriorityFeeGwei string
	KeySource          string
	CacheEnabled       bool
	CachePath          string
	CacheLockPath      string
	JournalEnabled     bool
	JournalPath        string
	JournalLockPath    string
	Verbose            bool
}

type fileConfig struct {
	Output   string `yaml:"output"`
	Timeout  string `yaml:"timeout"`
	ChainID  *int64 `yaml:"chain_id"`
	RPCURL   string `yaml:"rpc_url"`
	Contract string `yaml:"contract"`
	Confirm  struct {
		PollInterval string `yaml:"poll_interval"`
		Timeout      string `yaml:"timeout"`
	} `yaml:"confirm"`
	Gas struct {
		Multiplier         *float64 `yaml:"multiplier"`
		MaxFeeGwei         string   `yaml:"max_fee_gwei"`
		MaxPriorityFeeGwei string   `yaml:"max_priority_fee_gwei"`
	} `yaml:"gas"`
	Signer struct {
		KeySource string `yaml:"key_source"`
	} `yaml:"signer"`
	Cache struct {
		Enabled  *bool  `yaml:"enabled"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"cache"`
	Journal struct {
		Enabled  *bool  `yaml:"enabled"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"journal"`
}

func Load(flags GlobalFlags) (Settings, error) {
	// Local .env is a convenience for development setups; absence is fine.
	_ = godotenv.Load()

	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = 2 * time.Second
	}
	if settings.ConfirmTimeout <= 0 {
		settings.ConfirmTimeout = 2 * time.Minute
	}
	if settings.GasMultiplier <= 1 {
		settings.GasMultiplier = 1.2
	}
	if settings.ChainID == 0 {
		settings.ChainID = registry.AploChainID
	}
	// The contract address is optional at load time, but when it is set a
	// malformed value should fail here instead of after dialing.
	if settings.ContractAddress != "" && !id.ValidAddress(settings.ContractAddress) {
		return Settings{}, fmt.Errorf("invalid contract address %q", settings.ContractAddress)
	}

	return settings, nil
}

func defaultSettings() (Settings, error) {
	cachePath, cacheLock, err := defaultCachePaths()
	if err != nil {
		return Settings{}, err
	}
	cacheDir := filepath.Dir(cachePath)
	return Settings{
		OutputMode:      "json",
		Timeout:         10 * time.Second,
		PollInterval:    2 * time.Second,
		ConfirmTimeout:  2 * time.Minute,
		ChainID:         registry.AploChainID,
		GasMultiplier:   1.2,
		KeySource:       "auto",
		CacheEnabled:    true,
		CachePath:       cachePath,
		CacheLockPath:   cacheLock,
		JournalEnabled:  true,
		JournalPath:     filepath.Join(cacheDir, "attempts.db"),
		JournalLockPath: filepath.Join(cacheDir, "attempts.lock"),
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "swap", "config.yaml"), nil
}

func defaultCachePaths() (string, string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "swap")
	return filepath.Join(dir, "tokens.db"), filepath.Join(dir, "tokens.lock"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.ChainID != nil {
		settings.ChainID = *cfg.ChainID
	}
	if cfg.RPCURL != "" {
		settings.RPCURL = cfg.RPCURL
	}
	if cfg.Contract != "" {
		settings.ContractAddress = cfg.Contract
	}
	if cfg.Confirm.PollInterval != "" {
		d, err := time.ParseDuration(cfg.Confirm.PollInterval)
		if err != nil {
			return fmt.Errorf("config confirm.poll_interval: %w", err)
		}
		settings.PollInterval = d
	}
	if cfg.Confirm.Timeout != "" {
		d, err := time.ParseDuration(cfg.Confirm.Timeout)
		if err != nil {
			return fmt.Errorf("config confirm.timeout: %w", err)
		}
		settings.ConfirmTimeout = d
	}
	if cfg.Gas.Multiplier != nil {
		settings.GasMultiplier = *cfg.Gas.Multiplier
	}
	if cfg.Gas.MaxFeeGwei != "" {
		settings.MaxFeeGwei = cfg.Gas.MaxFeeGwei
	}
	if cfg.Gas.MaxPriorityFeeGwei != "" {
		settings.MaxPriorityFeeGwei = cfg.Gas.MaxPriorityFeeGwei
	}
	if cfg.Signer.KeySource != "" {
		settings.KeySource = strings.ToLower(cfg.Signer.KeySource)
	}
	if cfg.Cache.Enabled != nil {
		settings.CacheEnabled = *cfg.Cache.Enabled
	}
	if cfg.Cache.Path != "" {
		settings.CachePath = cfg.Cache.Path
	}
	if cfg.Cache.LockPath != "" {
		settings.CacheLockPath = cfg.Cache.LockPath
	}
	if cfg.Journal.Enabled != nil {
		settings.JournalEnabled = *cfg.Journal.Enabled
	}
	if cfg.Journal.Path != "" {
		settings.JournalPath = cfg.Journal.Path
	}
	if cfg.Journal.LockPath != "" {
		settings.JournalLockPath = cfg.Journal.LockPath
	}

	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("SWAP_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("SWAP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("SWAP_CHAIN_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			settings.ChainID = n
		}
	}
	if v := os.Getenv("SWAP_RPC_URL"); v != "" {
		settings.RPCURL = v
	}
	if v := os.Getenv("SWAP_CONTRACT"); v != "" {
		settings.ContractAddress = v
	}
	if v := os.Getenv("SWAP_CONFIRM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.ConfirmTimeout = d
		}
	}
	if v := os.Getenv("SWAP_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.PollInterval = d
		}
	}
	if v := os.Getenv("SWAP_KEY_SOURCE"); v != "" {
		settings.KeySource = strings.ToLower(v)
	}
	if v := os.Getenv("SWAP_NO_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.CacheEnabled = !b
		}
	}
	if v := os.Getenv("SWAP_CACHE_PATH"); v != "" {
		settings.CachePath = v
	}
	if v := os.Getenv("SWAP_CACHE_LOCK_PATH"); v != "" {
		settings.CacheLockPath = v
	}
	if v := os.Getenv("SWAP_NO_JOURNAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.JournalEnabled = !b
		}
	}
	if v := os.Getenv("SWAP_JOURNAL_PATH"); v != "" {
		settings.JournalPath = v
	}
	if v := os.Getenv("SWAP_JOURNAL_LOCK_PATH"); v != "" {
		settings.JournalLockPath = v
	}
	if v := os.Getenv("SWAP_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.Verbose = b
		}
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return fmt.Errorf("cannot use --json and --plain together")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	if strings.TrimSpace(flags.Select) != "" {
		parts := strings.Split(flags.Select, ",")
		fields := make([]string, 0, len(parts))
		for _, part := range parts {
			f := strings.TrimSpace(part)
			if f != "" {
				fields = append(fields, f)
			}
		}
		settings.SelectFields = fields
	}
	settings.ResultsOnly = flags.ResultsOnly

	if strings.TrimSpace(flags.EnableCommands) != "" {
		parts := strings.Split(flags.EnableCommands, ",")
		allowed := make([]string, 0, len(parts))
		for _, part := range parts {
			v := strings.TrimSpace(part)
			if v != "" {
				allowed = append(allowed, v)
			}
		}
		settings.EnableCommands = allowed
	}

	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.ChainID != 0 {
		settings.ChainID = flags.ChainID
	}
	if strings.TrimSpace(flags.RPCURL) != "" {
		settings.RPCURL = strings.TrimSpace(flags.RPCURL)
	}
	if strings.TrimSpace(flags.Contract) != "" {
		settings.ContractAddress = strings.TrimSpace(flags.Contract)
	}
	if flags.NoCache {
		settings.CacheEnabled = false
	}
	if flags.NoJournal {
		settings.JournalEnabled = false
	}
	if flags.Verbose {
		settings.Verbose = true
	}

	if settings.OutputMode != "json" && settings.OutputMode != "plain" {
		return fmt.Errorf("output must be json or plain")
	}

	return nil
}
