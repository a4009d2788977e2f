package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv         = "TRACKER_CONFIG"
	anthropicAPIKeyEnv    = "ANTHROPIC_API_KEY"
	congressAPIKeyEnv     = "CONGRESS_API_KEY"
	courtListenerTokenEnv = "COURTLISTENER_TOKEN"
	newsAPIKeyEnv         = "NEWS_API_KEY"
	lookbackDaysEnv       = "LOOKBACK_DAYS"
	dryRunEnv             = "DRY_RUN"
	sourceFilterEnv       = "SOURCE_FILTER"
	databaseDSNEnv        = "DATABASE_DSN"
	telegramTokenEnv      = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv     = "TELEGRAM_CHAT_ID"
)

// Config holds every setting the pipeline needs, constructed once at
// process start and passed into component constructors.
type Config struct {
	Keys    KeysConfig       `yaml:"keys"`
	Paths   PathsConfig      `yaml:"paths"`
	Run     RunConfig        `yaml:"run"`
	Models  ModelConfig      `yaml:"models"`
	Filter  FilterConfig     `yaml:"filter"`
	Sources SourcesConfig    `yaml:"sources"`
	Limits  map[string]Quota `yaml:"rate_limits"`
	Archive ArchiveConfig    `yaml:"archive"`
	Notify  NotifyConfig     `yaml:"notify"`
	Logging LoggingConfig    `yaml:"logging"`
}

// KeysConfig carries external API credentials. All but Anthropic are
// optional; absence degrades the corresponding connector.
type KeysConfig struct {
	Anthropic     string `yaml:"anthropic"`
	Congress      string `yaml:"congress"`
	CourtListener string `yaml:"courtlistener"`
	NewsAPI       string `yaml:"newsapi"`
}

// PathsConfig locates the persisted document, run state, and published page.
type PathsConfig struct {
	Data  string `yaml:"data"`
	State string `yaml:"state"`
	Index string `yaml:"index"`
}

// RunConfig controls one pipeline run.
type RunConfig struct {
	LookbackDays     int    `yaml:"lookbackDays"` // 0 = derive from state
	DryRun           bool   `yaml:"dryRun"`
	SourceFilter     string `yaml:"sourceFilter"` // "all" or one source name
	MaxEntriesPerRun int    `yaml:"maxEntriesPerRun"`
}

// ModelConfig names the model for each AI tier.
type ModelConfig struct {
	BaseURL    string `yaml:"baseUrl"`
	Screening  string `yaml:"screening"`
	Generation string `yaml:"generation"`
	Validation string `yaml:"validation"`
}

// FilterConfig drives the keyword pre-filter.
type FilterConfig struct {
	Keywords []string `yaml:"keywords"`
	MaxItems int      `yaml:"maxItems"`
}

// SourcesConfig carries per-connector search queries.
type SourcesConfig struct {
	CourtQueries []string `yaml:"courtQueries"`
	NewsQueries  []string `yaml:"newsQueries"`
}

// Quota is a per-source call allowance over a sliding window. Exactly one
// of the fields should be set.
type Quota struct {
	PerMinute int `yaml:"per_minute"`
	PerHour   int `yaml:"per_hour"`
	PerDay    int `yaml:"per_day"`
}

// Window returns the quota's call count and window duration.
func (q Quota) Window() (int, time.Duration) {
	switch {
	case q.PerMinute > 0:
		return q.PerMinute, time.Minute
	case q.PerHour > 0:
		return q.PerHour, time.Hour
	case q.PerDay > 0:
		return q.PerDay, 24 * time.Hour
	}
	return 0, 0
}

// ArchiveConfig enables the optional Postgres entry archive.
type ArchiveConfig struct {
	DSN string `yaml:"dsn"`
}

// NotifyConfig enables the optional Telegram run summary.
type NotifyConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig controls log level and the per-run log file directory.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides on top of built-in defaults.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(anthropicAPIKeyEnv); v != "" {
		c.Keys.Anthropic = v
	}
	if v := os.Getenv(congressAPIKeyEnv); v != "" {
		c.Keys.Congress = v
	}
	if v := os.Getenv(courtListenerTokenEnv); v != "" {
		c.Keys.CourtListener = v
	}
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Keys.NewsAPI = v
	}
	if v := os.Getenv(lookbackDaysEnv); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			c.Run.LookbackDays = days
		} else {
			log.Printf("config: invalid %s=%q, ignoring", lookbackDaysEnv, v)
		}
	}
	if v := os.Getenv(dryRunEnv); v != "" {
		c.Run.DryRun = strings.EqualFold(v, "true")
	}
	if v := os.Getenv(sourceFilterEnv); v != "" {
		c.Run.SourceFilter = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Archive.DSN = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notify.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notify.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Keys.Anthropic != "" {
		base.Keys.Anthropic = override.Keys.Anthropic
	}
	if override.Keys.Congress != "" {
		base.Keys.Congress = override.Keys.Congress
	}
	if override.Keys.CourtListener != "" {
		base.Keys.CourtListener = override.Keys.CourtListener
	}
	if override.Keys.NewsAPI != "" {
		base.Keys.NewsAPI = override.Keys.NewsAPI
	}

	if override.Paths.Data != "" {
		base.Paths.Data = override.Paths.Data
	}
	if override.Paths.State != "" {
		base.Paths.State = override.Paths.State
	}
	if override.Paths.Index != "" {
		base.Paths.Index = override.Paths.Index
	}

	if override.Run.LookbackDays != 0 {
		base.Run.LookbackDays = override.Run.LookbackDays
	}
	if override.Run.SourceFilter != "" {
		base.Run.SourceFilter = override.Run.SourceFilter
	}
	if override.Run.MaxEntriesPerRun != 0 {
		base.Run.MaxEntriesPerRun = override.Run.MaxEntriesPerRun
	}

	if override.Models.BaseURL != "" {
		base.Models.BaseURL = override.Models.BaseURL
	}
	if override.Models.Screening != "" {
		base.Models.Screening = override.Models.Screening
	}
	if override.Models.Generation != "" {
		base.Models.Generation = override.Models.Generation
	}
	if override.Models.Validation != "" {
		base.Models.Validation = override.Models.Validation
	}

	if len(override.Filter.Keywords) > 0 {
		base.Filter.Keywords = override.Filter.Keywords
	}
	if override.Filter.MaxItems != 0 {
		base.Filter.MaxItems = override.Filter.MaxItems
	}

	if len(override.Sources.CourtQueries) > 0 {
		base.Sources.CourtQueries = override.Sources.CourtQueries
	}
	if len(override.Sources.NewsQueries) > 0 {
		base.Sources.NewsQueries = override.Sources.NewsQueries
	}

	for name, quota := range override.Limits {
		base.Limits[name] = quota
	}

	if override.Archive.DSN != "" {
		base.Archive.DSN = override.Archive.DSN
	}
	if override.Notify.BotToken != "" {
		base.Notify.BotToken = override.Notify.BotToken
	}
	if override.Notify.ChatID != "" {
		base.Notify.ChatID = override.Notify.ChatID
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Dir != "" {
		base.Logging.Dir = override.Logging.Dir
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			Data:  "data/data.json",
			State: "data/state.json",
			Index: "index.html",
		},
		Run: RunConfig{
			SourceFilter:     "all",
			MaxEntriesPerRun: 25,
		},
		Models: ModelConfig{
			BaseURL:    "https://api.anthropic.com/v1",
			Screening:  "claude-haiku-4-5-20251001",
			Generation: "claude-sonnet-4-6",
			Validation: "claude-haiku-4-5-20251001",
		},
		Filter: FilterConfig{
			Keywords: defaultKeywords,
			MaxItems: 150,
		},
		Sources: SourcesConfig{
			CourtQueries: defaultCourtQueries,
			NewsQueries:  defaultNewsQueries,
		},
		Limits: map[string]Quota{
			"federal_register": {PerHour: 500},
			"congress_gov":     {PerHour: 5000},
			"courtlistener":    {PerHour: 5000},
			"news_api":         {PerDay: 100},
			"anthropic":        {PerMinute: 50},
		},
		Logging: LoggingConfig{Level: "info", Dir: "logs"},
	}
}
