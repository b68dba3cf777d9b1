package config

import "mediamail/internal/model"

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel    string `mapstructure:"log_level"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// RedisConfig holds redis connection settings for the search index.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// IndexConfig controls record storage and the content-handle scheme.
type IndexConfig struct {
	// Key prefix for stored records, e.g. "media" -> media:record:<handle>
	Prefix string `mapstructure:"prefix"`
	// Width of generated content handles, in base-36 digits.
	HandleWidth int `mapstructure:"handle_width"`
	// Bracket pair delimiting handles in rendered reports and replies.
	OpenBracket  string `mapstructure:"open_bracket"`
	CloseBracket string `mapstructure:"close_bracket"`
	// Tokens that look like handles but must never be treated as one.
	ReservedTokens []string `mapstructure:"reserved_tokens"`
	// SCAN page size used by lazy retrieval.
	ScanCount int64 `mapstructure:"scan_count"`
	// How long ingested records stay queryable, e.g. "168h".
	RecordTTL string `mapstructure:"record_ttl"`
}

// QueryConfig defines one named topic query. Query is opaque to the
// aggregation core and interpreted only by the index.
type QueryConfig struct {
	Title    string         `mapstructure:"title"`
	Query    map[string]any `mapstructure:"query"`
	HitLimit int            `mapstructure:"hit_limit"`
}

// ScoringConfig carries the raw scoring section. Values are kept loosely
// typed here so a malformed weight degrades to a skipped rule instead of a
// failed load; scoring.Compile normalizes them once at startup.
type ScoringConfig struct {
	PointsPerWord       any            `mapstructure:"points_per_word"`
	LocalityMultiplier  any            `mapstructure:"locality_multiplier"`
	HashtagWeight       any            `mapstructure:"hashtag_weight"`
	ReferenceWeight     any            `mapstructure:"reference_weight"`
	ReferenceToMeWeight any            `mapstructure:"reference_to_me_weight"`
	InterestedWords     map[string]any `mapstructure:"interested_words"`
	DisinterestedWords  map[string]any `mapstructure:"disinterested_words"`
}

// UserIdentificationConfig names the user on the monitored platform.
type UserIdentificationConfig struct {
	SocialMediaHandles []string `mapstructure:"social_media_handles"`
}

// EmailConfig covers both outbound report delivery and the reply mailbox.
type EmailConfig struct {
	Title         string `mapstructure:"title"`
	SenderAddress string `mapstructure:"sender_address"`
	UserAddress   string `mapstructure:"user_address"`
	SMTPHost      string `mapstructure:"smtp_host"`
	SMTPPort      int    `mapstructure:"smtp_port"`
	SMTPUsername  string `mapstructure:"smtp_username"`
	SMTPPassword  string `mapstructure:"smtp_password"`
	POP3Host      string `mapstructure:"pop3_host"`
	POP3Port      int    `mapstructure:"pop3_port"`
	POP3Username  string `mapstructure:"pop3_username"`
	POP3Password  string `mapstructure:"pop3_password"`
	POP3TLS       bool   `mapstructure:"pop3_tls"`
}

// FilterConfig holds ingestion-time word filters.
type FilterConfig struct {
	BlacklistWords []string `mapstructure:"blacklist_words"`
	WhitelistWords []string `mapstructure:"whitelist_words"`
	CommonWords    []string `mapstructure:"common_words"`
}

// FirehoseConfig controls the platform collector.
type FirehoseConfig struct {
	Tracks []string `mapstructure:"tracks"`
	// Place or location substrings that mark a message as local.
	LocalTerms    []string     `mapstructure:"local_terms"`
	Filters       FilterConfig `mapstructure:"filters"`
	FetchInterval string       `mapstructure:"fetch_interval"` // duration string, e.g. "5m"
	RatePerSec    float64      `mapstructure:"rate_per_sec"`   // index write rate
	Burst         int          `mapstructure:"burst"`
}

// PlatformConfig points at the social platform HTTP API.
type PlatformConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// OpenAIConfig enables the optional LLM sentiment classifier.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// ReportConfig controls the digest reporter.
type ReportConfig struct {
	Frequency     string `mapstructure:"frequency"`      // daily or weekly
	CheckInterval string `mapstructure:"check_interval"` // how often to evaluate
}

// Config is the top-level configuration structure.
type Config struct {
	App                AppConfig                `mapstructure:"app"`
	Redis              RedisConfig              `mapstructure:"redis"`
	Index              IndexConfig              `mapstructure:"index"`
	Queries            []QueryConfig            `mapstructure:"queries"`
	Scoring            ScoringConfig            `mapstructure:"scoring"`
	UserIdentification UserIdentificationConfig `mapstructure:"user_identification"`
	Email              EmailConfig              `mapstructure:"email"`
	Firehose           FirehoseConfig           `mapstructure:"firehose"`
	Platform           PlatformConfig           `mapstructure:"platform"`
	OpenAI             OpenAIConfig             `mapstructure:"openai"`
	Report             ReportConfig             `mapstructure:"report"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Index.Prefix == "" {
		c.Index.Prefix = "media"
	}
	if c.Index.HandleWidth == 0 {
		c.Index.HandleWidth = 5
	}
	if c.Index.OpenBracket == "" {
		c.Index.OpenBracket = "["
	}
	if c.Index.CloseBracket == "" {
		c.Index.CloseBracket = "]"
	}
	if len(c.Index.ReservedTokens) == 0 {
		c.Index.ReservedTokens = []string{"class"}
	}
	if c.Index.ScanCount == 0 {
		c.Index.ScanCount = 200
	}
	if c.Index.RecordTTL == "" {
		c.Index.RecordTTL = "168h"
	}
	for i := range c.Queries {
		if c.Queries[i].HitLimit <= 0 {
			c.Queries[i].HitLimit = 10
		}
	}
	if c.Email.Title == "" {
		c.Email.Title = "MediaMail Email"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.POP3Port == 0 {
		c.Email.POP3Port = 995
		c.Email.POP3TLS = true
	}
	if c.Firehose.FetchInterval == "" {
		c.Firehose.FetchInterval = "5m"
	}
	if c.Firehose.RatePerSec == 0 {
		c.Firehose.RatePerSec = 50
	}
	if c.Firehose.Burst == 0 {
		c.Firehose.Burst = 100
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Report.Frequency == "" {
		c.Report.Frequency = "daily"
	}
	if c.Report.CheckInterval == "" {
		c.Report.CheckInterval = "30m"
	}
}

// Topics converts the queries section into topic values for the engine.
// Invalid entries are not filtered here; the engine skips them itself so a
// bad topic shows up in cycle logs rather than vanishing at load.
func (c Config) Topics() []model.Topic {
	out := make([]model.Topic, 0, len(c.Queries))
	for _, q := range c.Queries {
		out = append(out, model.Topic{
			Title:    q.Title,
			Criteria: q.Query,
			HitLimit: q.HitLimit,
		})
	}
	return out
}
