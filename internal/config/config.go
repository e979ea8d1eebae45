package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/registry"
)

// GlobalFlags carries the persistent CLI flags that can override file and
// environment configuration.
type GlobalFlags struct {
	ConfigPath string
	RPCURL     string
	JSON       bool
	Plain      bool
	Timeout    string
	ReadOnly   bool
}

// Settings is the explicit configuration struct threaded through session and
// orchestrator construction; nothing reads environment state ad hoc past here.
type Settings struct {
	RPCURL  string
	ChainID int64

	KeySource string

	OutputMode      string
	Timeout         time.Duration
	ConfirmInterval time.Duration

	ReadOnly         bool
	EnableOperations []string

	JournalEnabled bool
	JournalPath    string
	JournalLock    string

	CacheEnabled bool
	CachePath    string
	CacheLock    string
	CacheTTL     time.Duration

	// MinClaimReward is the whole-unit reward threshold below which a gauge is
	// excluded from batch claiming. Historical policy value is 1.0.
	MinClaimReward string

	LogLevel  string
	LogFormat string
}

type fileConfig struct {
	Chain struct {
		RPCURL  string `yaml:"rpc_url"`
		ChainID *int64 `yaml:"chain_id"`
	} `yaml:"chain"`
	Signer struct {
		KeySource string `yaml:"key_source"`
	} `yaml:"signer"`
	Output  string `yaml:"output"`
	Timeout string `yaml:"timeout"`
	Policy  struct {
		ReadOnly         *bool    `yaml:"read_only"`
		EnableOperations []string `yaml:"enable_operations"`
	} `yaml:"policy"`
	Journal struct {
		Enabled *bool  `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`
	Cache struct {
		Enabled *bool  `yaml:"enabled"`
		Path    string `yaml:"path"`
		TTL     string `yaml:"ttl"`
	} `yaml:"cache"`
	Rewards struct {
		MinClaim string `yaml:"min_claim"`
	} `yaml:"rewards"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

func Load(flags GlobalFlags) (Settings, error) {
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

	rpcURL, err := registry.ResolveRPCURL(settings.RPCURL, settings.ChainID)
	if err != nil {
		return Settings{}, clierr.Wrap(clierr.CodeConfig, "resolve rpc endpoint", err)
	}
	settings.RPCURL = rpcURL

	if err := settings.validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func defaultSettings() (Settings, error) {
	dataDir, err := defaultDataDir()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		ChainID:         8453,
		KeySource:       "auto",
		OutputMode:      "json",
		Timeout:         2 * time.Minute,
		ConfirmInterval: 2 * time.Second,
		JournalEnabled:  true,
		JournalPath:     filepath.Join(dataDir, "journal.db"),
		JournalLock:     filepath.Join(dataDir, "journal.lock"),
		CacheEnabled:    true,
		CachePath:       filepath.Join(dataDir, "cache.db"),
		CacheLock:       filepath.Join(dataDir, "cache.lock"),
		CacheTTL:        24 * time.Hour,
		MinClaimReward:  "1.0",
		LogLevel:        "info",
		LogFormat:       "console",
	}, nil
}

func defaultDataDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "aeromgr"), nil
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
	return filepath.Join(base, "aeromgr", "config.yaml"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return clierr.Wrap(clierr.CodeConfig, "read config", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(buf))), &cfg); err != nil {
		return clierr.Wrap(clierr.CodeConfig, "parse config yaml", err)
	}

	if cfg.Chain.RPCURL != "" {
		settings.RPCURL = cfg.Chain.RPCURL
	}
	if cfg.Chain.ChainID != nil {
		settings.ChainID = *cfg.Chain.ChainID
	}
	if cfg.Signer.KeySource != "" {
		settings.KeySource = strings.ToLower(cfg.Signer.KeySource)
	}
	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return clierr.Wrap(clierr.CodeConfig, "config timeout", err)
		}
		settings.Timeout = d
	}
	if cfg.Policy.ReadOnly != nil {
		settings.ReadOnly = *cfg.Policy.ReadOnly
	}
	if len(cfg.Policy.EnableOperations) > 0 {
		settings.EnableOperations = cfg.Policy.EnableOperations
	}
	if cfg.Journal.Enabled != nil {
		settings.JournalEnabled = *cfg.Journal.Enabled
	}
	if cfg.Journal.Path != "" {
		settings.JournalPath = cfg.Journal.Path
		settings.JournalLock = cfg.Journal.Path + ".lock"
	}
	if cfg.Cache.Enabled != nil {
		settings.CacheEnabled = *cfg.Cache.Enabled
	}
	if cfg.Cache.Path != "" {
		settings.CachePath = cfg.Cache.Path
		settings.CacheLock = cfg.Cache.Path + ".lock"
	}
	if cfg.Cache.TTL != "" {
		d, err := time.ParseDuration(cfg.Cache.TTL)
		if err != nil {
			return clierr.Wrap(clierr.CodeConfig, "config cache.ttl", err)
		}
		settings.CacheTTL = d
	}
	if cfg.Rewards.MinClaim != "" {
		settings.MinClaimReward = cfg.Rewards.MinClaim
	}
	if cfg.Logging.Level != "" {
		settings.LogLevel = strings.ToLower(cfg.Logging.Level)
	}
	if cfg.Logging.Format != "" {
		settings.LogFormat = strings.ToLower(cfg.Logging.Format)
	}
	return nil
}

func applyEnv(settings *Settings) {
	if v := strings.TrimSpace(os.Getenv("AEROMGR_RPC_URL")); v != "" {
		settings.RPCURL = v
	}
	if v := strings.TrimSpace(os.Getenv("AEROMGR_CHAIN_ID")); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			settings.ChainID = id
		}
	}
	if v := strings.TrimSpace(os.Getenv("AEROMGR_KEY_SOURCE")); v != "" {
		settings.KeySource = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("AEROMGR_READ_ONLY")); v != "" {
		settings.ReadOnly = v == "1" || strings.EqualFold(v, "true")
	}
	if v := strings.TrimSpace(os.Getenv("AEROMGR_MIN_CLAIM")); v != "" {
		settings.MinClaimReward = v
	}
	if v := strings.TrimSpace(os.Getenv("AEROMGR_LOG_LEVEL")); v != "" {
		settings.LogLevel = strings.ToLower(v)
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return clierr.New(clierr.CodeUsage, "use either --json or --plain, not both")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	if strings.TrimSpace(flags.RPCURL) != "" {
		settings.RPCURL = strings.TrimSpace(flags.RPCURL)
	}
	if strings.TrimSpace(flags.Timeout) != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return clierr.Wrap(clierr.CodeUsage, "parse --timeout", err)
		}
		settings.Timeout = d
	}
	if flags.ReadOnly {
		settings.ReadOnly = true
	}
	return nil
}

func (s Settings) validate() error {
	if strings.TrimSpace(s.RPCURL) == "" {
		return clierr.New(clierr.CodeConfig, "chain rpc endpoint is required (chain.rpc_url or AEROMGR_RPC_URL)")
	}
	if s.ChainID <= 0 {
		return clierr.New(clierr.CodeConfig, "chain id must be positive")
	}
	if s.OutputMode != "json" && s.OutputMode != "plain" {
		return clierr.New(clierr.CodeConfig, fmt.Sprintf("unsupported output mode %q", s.OutputMode))
	}
	if s.Timeout <= 0 {
		return clierr.New(clierr.CodeConfig, "timeout must be positive")
	}
	if _, err := strconv.ParseFloat(s.MinClaimReward, 64); err != nil {
		return clierr.New(clierr.CodeConfig, fmt.Sprintf("rewards.min_claim %q is not a decimal", s.MinClaimReward))
	}
	return nil
}
