package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. It is loaded once at startup
// and passed to components as an immutable record; nothing reads the process
// environment past this point.
type Config struct {
	App        App        `mapstructure:"app"`
	Listing    Listing    `mapstructure:"listing"`
	AI         AI         `mapstructure:"ai"`
	Newsletter Newsletter `mapstructure:"newsletter"`
	Graph      Graph      `mapstructure:"graph"`
	Schedule   Schedule   `mapstructure:"schedule"`
}

// App holds general application configuration
type App struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Listing holds front-page source configuration
type Listing struct {
	Source    string `mapstructure:"source"`     // "frontpage" (HTML scrape) or "rss"
	BaseURL   string `mapstructure:"base_url"`   // Front page to scrape
	FeedURL   string `mapstructure:"feed_url"`   // RSS feed when source is "rss"
	UserAgent string `mapstructure:"user_agent"` // Sent on every page fetch
	Timeout   string `mapstructure:"timeout"`    // Per-request timeout
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Newsletter holds selection and rendering configuration
type Newsletter struct {
	KeywordsRaw       string   `mapstructure:"keywords"` // Comma-separated keyword list
	Keywords          []string `mapstructure:"-"`
	ArticleCap        int      `mapstructure:"article_cap"`         // Hard cap on candidates processed per run
	ItemDelay         string   `mapstructure:"item_delay"`          // Polite pacing between candidates
	TemplatePath      string   `mapstructure:"template_path"`       // The HTML newsletter template resource
	OutputDir         string   `mapstructure:"output_dir"`          // Where preview writes rendered issues
	PromptContextPath string   `mapstructure:"prompt_context_path"` // Optional selection-prompt context file
}

// Graph holds Microsoft Graph delivery configuration
type Graph struct {
	ClientID      string   `mapstructure:"client_id"`
	TenantID      string   `mapstructure:"tenant_id"`
	ClientSecret  string   `mapstructure:"client_secret"`
	SenderEmail   string   `mapstructure:"sender_email"`
	RecipientsRaw string   `mapstructure:"recipients"` // Comma-separated address list
	Recipients    []string `mapstructure:"-"`
}

// Schedule holds the in-process cron configuration
type Schedule struct {
	Cron string `mapstructure:"cron"`
}

var globalConfig *Config

// Load loads the configuration from .env, an optional config file, the
// environment, and defaults, in that order of precedence. It validates
// everything needed before any network activity and fails with a descriptive
// message otherwise. Delivery credentials are validated separately by
// ValidateDelivery so a preview run does not need them.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".hnletter")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.log_format", "json")

	viper.SetDefault("listing.source", "frontpage")
	viper.SetDefault("listing.base_url", "https://news.ycombinator.com/")
	viper.SetDefault("listing.feed_url", "https://hnrss.org/frontpage")
	viper.SetDefault("listing.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	viper.SetDefault("listing.timeout", "10s")

	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash-preview-05-20")
	viper.SetDefault("ai.gemini.timeout", "60s")

	viper.SetDefault("newsletter.article_cap", 10)
	viper.SetDefault("newsletter.item_delay", "500ms")
	viper.SetDefault("newsletter.template_path", "templates/newsletter.html")
	viper.SetDefault("newsletter.output_dir", "newsletters")

	viper.SetDefault("schedule.cron", "0 7 * * *")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("graph.client_id", []string{"GRAPH_CLIENT_ID", "CLIENT_ID"})
	bindEnvKeys("graph.tenant_id", []string{"GRAPH_TENANT_ID", "TENANT_ID"})
	bindEnvKeys("graph.client_secret", []string{"GRAPH_CLIENT_SECRET", "CLIENT_SECRET"})
	bindEnvKeys("graph.sender_email", []string{"SENDER_EMAIL"})
	bindEnvKeys("graph.recipients", []string{"RECIPIENT_EMAILS", "RECIPIENT_EMAIL"})

	bindEnvKeys("newsletter.keywords", []string{"NEWSLETTER_KEYWORDS", "KEYWORDS"})
	bindEnvKeys("newsletter.article_cap", []string{"ARTICLE_CAP"})

	bindEnvKeys("listing.base_url", []string{"LISTING_BASE_URL"})
	bindEnvKeys("listing.source", []string{"LISTING_SOURCE"})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig splits comma lists and checks duration fields parse.
func postProcessConfig(config *Config) error {
	config.Newsletter.Keywords = splitList(config.Newsletter.KeywordsRaw)
	config.Graph.Recipients = splitList(config.Graph.RecipientsRaw)

	durations := map[string]string{
		"listing.timeout":       config.Listing.Timeout,
		"ai.gemini.timeout":     config.AI.Gemini.Timeout,
		"newsletter.item_delay": config.Newsletter.ItemDelay,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q", key, value)
		}
	}
	return nil
}

// validateConfig checks everything a run needs before the first network call.
func validateConfig(config *Config) error {
	if len(config.Newsletter.Keywords) == 0 {
		return fmt.Errorf("no keywords configured: set NEWSLETTER_KEYWORDS (comma-separated) or newsletter.keywords")
	}
	if config.AI.Gemini.APIKey == "" {
		return fmt.Errorf("gemini API key is required: set GEMINI_API_KEY or ai.gemini.api_key")
	}
	if config.Newsletter.ArticleCap <= 0 {
		return fmt.Errorf("newsletter.article_cap must be positive, got %d", config.Newsletter.ArticleCap)
	}
	switch config.Listing.Source {
	case "frontpage":
		if config.Listing.BaseURL == "" {
			return fmt.Errorf("listing.base_url is required for the frontpage source")
		}
	case "rss":
		if config.Listing.FeedURL == "" {
			return fmt.Errorf("listing.feed_url is required for the rss source")
		}
	default:
		return fmt.Errorf("unknown listing.source %q (want frontpage or rss)", config.Listing.Source)
	}
	return nil
}

// ValidateDelivery checks the Microsoft Graph credentials and recipient list.
// Called before a run that intends to send, never by preview.
func (c *Config) ValidateDelivery() error {
	var missing []string
	if c.Graph.ClientID == "" {
		missing = append(missing, "GRAPH_CLIENT_ID")
	}
	if c.Graph.TenantID == "" {
		missing = append(missing, "GRAPH_TENANT_ID")
	}
	if c.Graph.ClientSecret == "" {
		missing = append(missing, "GRAPH_CLIENT_SECRET")
	}
	if c.Graph.SenderEmail == "" {
		missing = append(missing, "SENDER_EMAIL")
	}
	if len(c.Graph.Recipients) == 0 {
		missing = append(missing, "RECIPIENT_EMAILS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required delivery settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// FetchTimeout returns the per-request timeout for page fetches.
func (c *Config) FetchTimeout() time.Duration {
	return parseDurationOr(c.Listing.Timeout, 10*time.Second)
}

// ModelTimeout returns the timeout for a single model completion.
func (c *Config) ModelTimeout() time.Duration {
	return parseDurationOr(c.AI.Gemini.Timeout, 60*time.Second)
}

// ItemDelay returns the polite pacing delay between candidate iterations.
func (c *Config) ItemDelay() time.Duration {
	return parseDurationOr(c.Newsletter.ItemDelay, 500*time.Millisecond)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Reset clears the cached configuration. Used by tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}
