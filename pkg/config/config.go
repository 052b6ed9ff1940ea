/*
Package config manages TOML config for foodserve services.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mealbyte/foodserve/internal/utils"
	"github.com/mealbyte/foodserve/pkg/cache"
	"github.com/mealbyte/foodserve/pkg/client"
	"github.com/mealbyte/foodserve/pkg/match"
	"github.com/mealbyte/foodserve/pkg/remote"
	"github.com/mealbyte/foodserve/pkg/suggest"
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Match  MatchConfig  `toml:"match"`
	Rank   RankConfig   `toml:"rank"`
	Cache  CacheConfig  `toml:"cache"`
	Remote RemoteConfig `toml:"remote"`
	Client ClientConfig `toml:"client"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxQueryLen      int `toml:"max_query_len"`
	RequestTimeoutMs int `toml:"request_timeout_ms"`
}

// MatchConfig tunes the similarity scorer.
type MatchConfig struct {
	NoMatchScore     float64 `toml:"no_match_score"`
	RejectScore      float64 `toml:"reject_score"`
	PrefixBonus      float64 `toml:"prefix_bonus"`
	SubstringBonus   float64 `toml:"substring_bonus"`
	TokenMatchCutoff float64 `toml:"token_match_cutoff"`
}

// RankConfig tunes the suggestion merger.
type RankConfig struct {
	LocalBias   float64 `toml:"local_bias"`
	CatalogBias float64 `toml:"catalog_bias"`
	RemoteBias  float64 `toml:"remote_bias"`
	MaxResults  int     `toml:"max_results"`
	ScoreCut    float64 `toml:"score_cut"`
}

// CacheConfig holds TTL cache options for both server-side caches.
type CacheConfig struct {
	SearchTTLSeconds  int `toml:"search_ttl_seconds"`
	SearchCapacity    int `toml:"search_capacity"`
	BarcodeTTLSeconds int `toml:"barcode_ttl_seconds"`
	BarcodeCapacity   int `toml:"barcode_capacity"`
	WaitBudgetMs      int `toml:"wait_budget_ms"`
}

// RemoteConfig holds nutrition database client options.
type RemoteConfig struct {
	BaseURL      string  `toml:"base_url"`
	Tag          string  `toml:"tag"`
	TimeoutMs    int     `toml:"timeout_ms"`
	PageSize     int     `toml:"page_size"`
	RelevanceMax float64 `toml:"relevance_max"`
}

// ClientConfig holds interactive typeahead options.
type ClientConfig struct {
	DebounceMs    int `toml:"debounce_ms"`
	MinQueryLen   int `toml:"min_query_len"`
	CacheTTLSecs  int `toml:"cache_ttl_seconds"`
	CacheCapacity int `toml:"cache_capacity"`
	WaitBudgetMs  int `toml:"wait_budget_ms"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "foodserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "foodserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/foodserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	m := match.DefaultParams()
	r := suggest.DefaultRankParams()
	rc := remote.DefaultConfig()
	cc := client.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			MaxQueryLen:      120,
			RequestTimeoutMs: 10000,
		},
		Match: MatchConfig{
			NoMatchScore:     m.NoMatchScore,
			RejectScore:      m.RejectScore,
			PrefixBonus:      m.PrefixBonus,
			SubstringBonus:   m.SubstringBonus,
			TokenMatchCutoff: m.TokenMatchCutoff,
		},
		Rank: RankConfig{
			LocalBias:   r.LocalBias,
			CatalogBias: r.CatalogBias,
			RemoteBias:  r.RemoteBias,
			MaxResults:  r.MaxResults,
			ScoreCut:    r.ScoreCut,
		},
		Cache: CacheConfig{
			SearchTTLSeconds:  300,
			SearchCapacity:    50,
			BarcodeTTLSeconds: 21600,
			BarcodeCapacity:   250,
			WaitBudgetMs:      2500,
		},
		Remote: RemoteConfig{
			BaseURL:      rc.BaseURL,
			Tag:          rc.Tag,
			TimeoutMs:    int(rc.Timeout / time.Millisecond),
			PageSize:     rc.PageSize,
			RelevanceMax: rc.RelevanceMax,
		},
		Client: ClientConfig{
			DebounceMs:    int(cc.Debounce / time.Millisecond),
			MinQueryLen:   cc.MinQueryLen,
			CacheTTLSecs:  int(cc.CacheTTL / time.Second),
			CacheCapacity: cc.CacheCapacity,
			WaitBudgetMs:  int(cc.WaitBudget / time.Millisecond),
		},
	}
}

// MatchParams converts the [match] section into scorer params; values
// absent from the file already hold their defaults.
func (c *Config) MatchParams() match.Params {
	p := match.DefaultParams()
	p.NoMatchScore = c.Match.NoMatchScore
	p.RejectScore = c.Match.RejectScore
	p.PrefixBonus = c.Match.PrefixBonus
	p.SubstringBonus = c.Match.SubstringBonus
	p.TokenMatchCutoff = c.Match.TokenMatchCutoff
	return p
}

// RankParams converts the [rank] section.
func (c *Config) RankParams() suggest.RankParams {
	p := suggest.DefaultRankParams()
	p.LocalBias = c.Rank.LocalBias
	p.CatalogBias = c.Rank.CatalogBias
	p.RemoteBias = c.Rank.RemoteBias
	p.MaxResults = c.Rank.MaxResults
	p.ScoreCut = c.Rank.ScoreCut
	return p
}

// RemoteClientConfig converts the [remote] section.
func (c *Config) RemoteClientConfig() remote.Config {
	return remote.Config{
		BaseURL:      c.Remote.BaseURL,
		Tag:          c.Remote.Tag,
		Timeout:      time.Duration(c.Remote.TimeoutMs) * time.Millisecond,
		PageSize:     c.Remote.PageSize,
		RelevanceMax: c.Remote.RelevanceMax,
	}
}

// SearchCacheConfig converts the [cache] section for the search cache.
func (c *Config) SearchCacheConfig() cache.Config {
	return cache.Config{
		TTL:        time.Duration(c.Cache.SearchTTLSeconds) * time.Second,
		WaitBudget: time.Duration(c.Cache.WaitBudgetMs) * time.Millisecond,
		Capacity:   c.Cache.SearchCapacity,
	}
}

// BarcodeCacheConfig converts the [cache] section for the barcode cache.
func (c *Config) BarcodeCacheConfig() cache.Config {
	return cache.Config{
		TTL:        time.Duration(c.Cache.BarcodeTTLSeconds) * time.Second,
		WaitBudget: time.Duration(c.Cache.WaitBudgetMs) * time.Millisecond,
		Capacity:   c.Cache.BarcodeCapacity,
	}
}

// ControllerConfig converts the [client] section.
func (c *Config) ControllerConfig() client.Config {
	return client.Config{
		Debounce:      time.Duration(c.Client.DebounceMs) * time.Millisecond,
		MinQueryLen:   c.Client.MinQueryLen,
		CacheTTL:      time.Duration(c.Client.CacheTTLSecs) * time.Second,
		CacheCapacity: c.Client.CacheCapacity,
		WaitBudget:    time.Duration(c.Client.WaitBudgetMs) * time.Millisecond,
	}
}

// RequestTimeout returns the per-request budget for the IPC server.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutMs) * time.Millisecond
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse salvages whatever valid sections a broken TOML file
// still holds, keeping defaults for the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if matchSection, ok := utils.ExtractSection(tempConfig, "match"); ok {
		extractMatchConfig(matchSection, &config.Match)
	}
	if rankSection, ok := utils.ExtractSection(tempConfig, "rank"); ok {
		extractRankConfig(rankSection, &config.Rank)
	}
	if cacheSection, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		extractCacheConfig(cacheSection, &config.Cache)
	}
	if remoteSection, ok := utils.ExtractSection(tempConfig, "remote"); ok {
		extractRemoteConfig(remoteSection, &config.Remote)
	}
	if clientSection, ok := utils.ExtractSection(tempConfig, "client"); ok {
		extractClientConfig(clientSection, &config.Client)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_query_len"); ok {
		server.MaxQueryLen = val
	}
	if val, ok := utils.ExtractInt64(data, "request_timeout_ms"); ok {
		server.RequestTimeoutMs = val
	}
}

func extractMatchConfig(data map[string]any, m *MatchConfig) {
	if val, ok := utils.ExtractFloat(data, "no_match_score"); ok {
		m.NoMatchScore = val
	}
	if val, ok := utils.ExtractFloat(data, "reject_score"); ok {
		m.RejectScore = val
	}
	if val, ok := utils.ExtractFloat(data, "prefix_bonus"); ok {
		m.PrefixBonus = val
	}
	if val, ok := utils.ExtractFloat(data, "substring_bonus"); ok {
		m.SubstringBonus = val
	}
	if val, ok := utils.ExtractFloat(data, "token_match_cutoff"); ok {
		m.TokenMatchCutoff = val
	}
}

func extractRankConfig(data map[string]any, r *RankConfig) {
	if val, ok := utils.ExtractFloat(data, "local_bias"); ok {
		r.LocalBias = val
	}
	if val, ok := utils.ExtractFloat(data, "catalog_bias"); ok {
		r.CatalogBias = val
	}
	if val, ok := utils.ExtractFloat(data, "remote_bias"); ok {
		r.RemoteBias = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		r.MaxResults = val
	}
	if val, ok := utils.ExtractFloat(data, "score_cut"); ok {
		r.ScoreCut = val
	}
}

func extractCacheConfig(data map[string]any, c *CacheConfig) {
	if val, ok := utils.ExtractInt64(data, "search_ttl_seconds"); ok {
		c.SearchTTLSeconds = val
	}
	if val, ok := utils.ExtractInt64(data, "search_capacity"); ok {
		c.SearchCapacity = val
	}
	if val, ok := utils.ExtractInt64(data, "barcode_ttl_seconds"); ok {
		c.BarcodeTTLSeconds = val
	}
	if val, ok := utils.ExtractInt64(data, "barcode_capacity"); ok {
		c.BarcodeCapacity = val
	}
	if val, ok := utils.ExtractInt64(data, "wait_budget_ms"); ok {
		c.WaitBudgetMs = val
	}
}

func extractRemoteConfig(data map[string]any, r *RemoteConfig) {
	if val, ok := utils.ExtractString(data, "base_url"); ok {
		r.BaseURL = val
	}
	if val, ok := utils.ExtractString(data, "tag"); ok {
		r.Tag = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		r.TimeoutMs = val
	}
	if val, ok := utils.ExtractInt64(data, "page_size"); ok {
		r.PageSize = val
	}
	if val, ok := utils.ExtractFloat(data, "relevance_max"); ok {
		r.RelevanceMax = val
	}
}

func extractClientConfig(data map[string]any, c *ClientConfig) {
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		c.DebounceMs = val
	}
	if val, ok := utils.ExtractInt64(data, "min_query_len"); ok {
		c.MinQueryLen = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_ttl_seconds"); ok {
		c.CacheTTLSecs = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_capacity"); ok {
		c.CacheCapacity = val
	}
	if val, ok := utils.ExtractInt64(data, "wait_budget_ms"); ok {
		c.WaitBudgetMs = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
