package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Asia/Kathmandu"

	configPathEnv        = "GOVERNANCE_WEEKLY_CONFIG"
	logLevelEnv          = "LOG_LEVEL"
	databaseDriverEnv    = "DATABASE_DRIVER"
	databaseDSNEnv       = "DATABASE_DSN"
	userAgentEnv         = "USER_AGENT"
	rateLimitEnv         = "RATE_LIMIT_SEC"
	maxPerSiteEnv        = "MAX_ARTICLES_PER_SITE"
	skipRobotsEnv        = "SKIP_ROBOTS_CHECK"
	useBrowserEnv        = "USE_BROWSER"
	translationEnv       = "TRANSLATION_BACKEND"
	geminiAPIKeyEnv      = "GEMINI_API_KEY"
	chatGPTAPIKeyEnv     = "CHATGPT_API_KEY"
	chatGPTModelEnv      = "CHATGPT_MODEL"
	keywordsFileEnv      = "KEYWORDS_FILE"
	thresholdEnv         = "RELEVANCE_THRESHOLD"
	maxInReportEnv       = "MAX_ARTICLES_IN_REPORT"
	minImpactEnv         = "MIN_IMPACT_SCORE"
	outputDirEnv         = "OUTPUT_DIR"
	summarizerModeEnv    = "SUMMARIZER_MODE"
	summarizerURLEnv     = "SUMMARIZER_URL"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	defaultUserAgent     = "GovernanceWeeklyBot/1.0 (+https://accountabilitylab.org/)"
	defaultKathmanduPost = "https://kathmandupost.com"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging        LoggingConfig        `yaml:"logging"`
	Database       DatabaseConfig       `yaml:"database"`
	Scheduler      SchedulerConfig      `yaml:"scheduler"`
	Scraper        ScraperConfig        `yaml:"scraper"`
	Translation    TranslationConfig    `yaml:"translation"`
	Summarizer     SummarizerConfig     `yaml:"summarizer"`
	Classification ClassificationConfig `yaml:"classification"`
	Report         ReportConfig         `yaml:"report"`
	Notifications  NotificationConfig   `yaml:"notifications"`
	ChatGPT        ChatGPTConfig        `yaml:"chatgpt"`
	Sites          []SiteConfig         `yaml:"sites"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the article store. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines when collection and reporting run.
type SchedulerConfig struct {
	CollectCron string         `yaml:"collectCron"`
	ReportCron  string         `yaml:"reportCron"`
	Timezone    string         `yaml:"timezone"`
	location    *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ScraperConfig tunes politeness and fetching.
type ScraperConfig struct {
	UserAgent          string  `yaml:"userAgent"`
	RateLimitSec       float64 `yaml:"rateLimitSec"`
	MaxArticlesPerSite int     `yaml:"maxArticlesPerSite"`
	TimeoutSec         int     `yaml:"timeoutSec"`
	Retries            int     `yaml:"retries"`
	Workers            int     `yaml:"workers"`
	RespectRobots      *bool   `yaml:"respectRobots"`
	UseBrowser         bool    `yaml:"useBrowser"`
	BrowserURL         string  `yaml:"browserUrl"`
}

// Timeout returns the per-request timeout.
func (s ScraperConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// RateLimit returns the minimum delay between requests to one host.
func (s ScraperConfig) RateLimit() time.Duration {
	return time.Duration(s.RateLimitSec * float64(time.Second))
}

// ObeyRobots reports whether robots.txt must be honoured.
func (s ScraperConfig) ObeyRobots() bool {
	return s.RespectRobots == nil || *s.RespectRobots
}

// TranslationConfig selects translation backends in fallback order.
type TranslationConfig struct {
	Backend      string   `yaml:"backend"`
	Fallbacks    []string `yaml:"fallbacks"`
	TargetLang   string   `yaml:"targetLang"`
	GeminiAPIKey string   `yaml:"geminiApiKey"`
	GeminiModel  string   `yaml:"geminiModel"`
	GoogleURL    string   `yaml:"googleUrl"`
}

// SummarizerConfig selects heuristic or remote summaries.
type SummarizerConfig struct {
	Mode     string `yaml:"mode"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// ClassificationConfig points at the keyword table and optional weight overrides.
type ClassificationConfig struct {
	KeywordsFile string `yaml:"keywordsFile"`
	Tier1Weight  int    `yaml:"tier1Weight"`
	Tier2Weight  int    `yaml:"tier2Weight"`
	Tier3Weight  int    `yaml:"tier3Weight"`
	Threshold    int    `yaml:"threshold"`
}

// ReportConfig controls selection and rendering of the weekly PDF.
type ReportConfig struct {
	MaxArticles    int     `yaml:"maxArticles"`
	MinImpactScore float64 `yaml:"minImpactScore"`
	WindowDays     int     `yaml:"windowDays"`
	OutputDir      string  `yaml:"outputDir"`
	Title          string  `yaml:"title"`
	Subtitle       string  `yaml:"subtitle"`
	Blurb          string  `yaml:"blurb"`
}

// Window returns how far back the report looks for articles.
func (r ReportConfig) Window() time.Duration {
	return time.Duration(r.WindowDays) * 24 * time.Hour
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// ChatGPTConfig defines how to contact an OpenAI-compatible chat API.
type ChatGPTConfig struct {
	BaseURL      string `yaml:"baseUrl"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// SiteConfig describes a single news site with its scanner strategy.
type SiteConfig struct {
	Name            string            `yaml:"name"`
	Scanner         string            `yaml:"scanner"`
	BaseURL         string            `yaml:"baseUrl"`
	Domain          string            `yaml:"domain"`
	Language        string            `yaml:"language"`
	FeedURL         string            `yaml:"feedUrl"`
	IncludePatterns []string          `yaml:"includePatterns"`
	ExcludePatterns []string          `yaml:"excludePatterns"`
	RequireYear     bool              `yaml:"requireYear"`
	Options         map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit path; an empty path uses defaults only.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
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
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Logging.Level, logLevelEnv)
	setString(&c.Database.Driver, databaseDriverEnv)
	setString(&c.Database.DSN, databaseDSNEnv)
	setString(&c.Scraper.UserAgent, userAgentEnv)
	setFloat(&c.Scraper.RateLimitSec, rateLimitEnv)
	setInt(&c.Scraper.MaxArticlesPerSite, maxPerSiteEnv)
	if v, ok := lookupBool(skipRobotsEnv); ok {
		respect := !v
		c.Scraper.RespectRobots = &respect
	}
	if v, ok := lookupBool(useBrowserEnv); ok {
		c.Scraper.UseBrowser = v
	}
	setString(&c.Translation.Backend, translationEnv)
	setString(&c.Translation.GeminiAPIKey, geminiAPIKeyEnv)
	setString(&c.ChatGPT.APIKey, chatGPTAPIKeyEnv)
	setString(&c.ChatGPT.Model, chatGPTModelEnv)
	setString(&c.Summarizer.Mode, summarizerModeEnv)
	setString(&c.Summarizer.Endpoint, summarizerURLEnv)
	setString(&c.Classification.KeywordsFile, keywordsFileEnv)
	setInt(&c.Classification.Threshold, thresholdEnv)
	setInt(&c.Report.MaxArticles, maxInReportEnv)
	setFloat(&c.Report.MinImpactScore, minImpactEnv)
	setString(&c.Report.OutputDir, outputDirEnv)
	setString(&c.Notifications.Telegram.BotToken, telegramTokenEnv)
	setString(&c.Notifications.Telegram.ChatID, telegramChatIDEnv)
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Scheduler.CollectCron != "" {
		base.Scheduler.CollectCron = override.Scheduler.CollectCron
	}
	if override.Scheduler.ReportCron != "" {
		base.Scheduler.ReportCron = override.Scheduler.ReportCron
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Scraper.UserAgent != "" {
		base.Scraper.UserAgent = override.Scraper.UserAgent
	}
	if override.Scraper.RateLimitSec > 0 {
		base.Scraper.RateLimitSec = override.Scraper.RateLimitSec
	}
	if override.Scraper.MaxArticlesPerSite > 0 {
		base.Scraper.MaxArticlesPerSite = override.Scraper.MaxArticlesPerSite
	}
	if override.Scraper.TimeoutSec > 0 {
		base.Scraper.TimeoutSec = override.Scraper.TimeoutSec
	}
	if override.Scraper.Retries > 0 {
		base.Scraper.Retries = override.Scraper.Retries
	}
	if override.Scraper.Workers > 0 {
		base.Scraper.Workers = override.Scraper.Workers
	}
	if override.Scraper.RespectRobots != nil {
		base.Scraper.RespectRobots = override.Scraper.RespectRobots
	}
	if override.Scraper.UseBrowser {
		base.Scraper.UseBrowser = true
	}
	if override.Scraper.BrowserURL != "" {
		base.Scraper.BrowserURL = override.Scraper.BrowserURL
	}

	if override.Translation.Backend != "" {
		base.Translation.Backend = override.Translation.Backend
	}
	if len(override.Translation.Fallbacks) > 0 {
		base.Translation.Fallbacks = override.Translation.Fallbacks
	}
	if override.Translation.TargetLang != "" {
		base.Translation.TargetLang = override.Translation.TargetLang
	}
	if override.Translation.GeminiAPIKey != "" {
		base.Translation.GeminiAPIKey = override.Translation.GeminiAPIKey
	}
	if override.Translation.GeminiModel != "" {
		base.Translation.GeminiModel = override.Translation.GeminiModel
	}
	if override.Translation.GoogleURL != "" {
		base.Translation.GoogleURL = override.Translation.GoogleURL
	}

	if override.Summarizer.Mode != "" {
		base.Summarizer.Mode = override.Summarizer.Mode
	}
	if override.Summarizer.Endpoint != "" {
		base.Summarizer.Endpoint = override.Summarizer.Endpoint
	}
	if override.Summarizer.APIKey != "" {
		base.Summarizer.APIKey = override.Summarizer.APIKey
	}

	if override.Classification.KeywordsFile != "" {
		base.Classification.KeywordsFile = override.Classification.KeywordsFile
	}
	if override.Classification.Tier1Weight > 0 {
		base.Classification.Tier1Weight = override.Classification.Tier1Weight
	}
	if override.Classification.Tier2Weight > 0 {
		base.Classification.Tier2Weight = override.Classification.Tier2Weight
	}
	if override.Classification.Tier3Weight > 0 {
		base.Classification.Tier3Weight = override.Classification.Tier3Weight
	}
	if override.Classification.Threshold > 0 {
		base.Classification.Threshold = override.Classification.Threshold
	}

	if override.Report.MaxArticles > 0 {
		base.Report.MaxArticles = override.Report.MaxArticles
	}
	if override.Report.MinImpactScore > 0 {
		base.Report.MinImpactScore = override.Report.MinImpactScore
	}
	if override.Report.WindowDays > 0 {
		base.Report.WindowDays = override.Report.WindowDays
	}
	if override.Report.OutputDir != "" {
		base.Report.OutputDir = override.Report.OutputDir
	}
	if override.Report.Title != "" {
		base.Report.Title = override.Report.Title
	}
	if override.Report.Subtitle != "" {
		base.Report.Subtitle = override.Report.Subtitle
	}
	if override.Report.Blurb != "" {
		base.Report.Blurb = override.Report.Blurb
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.ChatGPT.BaseURL != "" {
		base.ChatGPT.BaseURL = override.ChatGPT.BaseURL
	}
	if override.ChatGPT.Model != "" {
		base.ChatGPT.Model = override.ChatGPT.Model
	}
	if override.ChatGPT.APIKey != "" {
		base.ChatGPT.APIKey = override.ChatGPT.APIKey
	}
	if override.ChatGPT.SystemPrompt != "" {
		base.ChatGPT.SystemPrompt = override.ChatGPT.SystemPrompt
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, ignoring", key, v)
		return
	}
	*dst = n
}

func setFloat(dst *float64, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: %s=%q is not a number, ignoring", key, v)
		return
	}
	*dst = f
}

func lookupBool(key string) (bool, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: %s=%q is not a boolean, ignoring", key, v)
		return false, false
	}
	return b, true
}

func defaultConfig() Config {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "data/gov_weekly.db"},
		Scheduler: SchedulerConfig{
			CollectCron: "0 8 * * 1-3",
			ReportCron:  "0 16 * * 5",
			Timezone:    defaultTimezone,
			location:    loc,
		},
		Scraper: ScraperConfig{
			UserAgent:          defaultUserAgent,
			RateLimitSec:       1.0,
			MaxArticlesPerSite: 100,
			TimeoutSec:         15,
			Retries:            3,
			Workers:            4,
		},
		Translation: TranslationConfig{
			Backend:     "googlefree",
			Fallbacks:   []string{"gemini", "chatgpt"},
			TargetLang:  "en",
			GeminiModel: "gemini-2.5-flash",
			GoogleURL:   "https://translate.googleapis.com/translate_a/single",
		},
		Summarizer: SummarizerConfig{Mode: "heuristic"},
		Classification: ClassificationConfig{
			Tier1Weight: 5,
			Tier2Weight: 3,
			Tier3Weight: 1,
			Threshold:   5,
		},
		Report: ReportConfig{
			MaxArticles:    40,
			MinImpactScore: 10.0,
			WindowDays:     7,
			OutputDir:      "output",
			Title:          "Nepal Election Weekly",
			Subtitle:       "March 5, 2026 Election Coverage",
			Blurb:          "Election and Governance news from Nepal - Focused coverage for March 2026 Election.",
		},
		ChatGPT: ChatGPTConfig{
			BaseURL:      "https://api.openai.com/v1",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You translate Nepali news text to English. Reply with the translation only.",
		},
		Sites: defaultSites(),
	}
}

func defaultSites() []SiteConfig {
	return []SiteConfig{
		{
			Name: "ekantipur", Scanner: "homepage", BaseURL: "https://ekantipur.com", Domain: "ekantipur.com", Language: "ne",
			IncludePatterns: []string{"/news/", "/business/", "/national/", "/pradesh/"},
		},
		{
			Name: "kathmandupost", Scanner: "homepage", BaseURL: defaultKathmanduPost, Domain: "kathmandupost.com", Language: "en",
			IncludePatterns: []string{"/national/", "/politics/", "/investigation/"},
		},
		{
			Name: "myrepublica", Scanner: "homepage", BaseURL: "https://myrepublica.nagariknetwork.com",
			Domain: "myrepublica.nagariknetwork.com", Language: "en", RequireYear: true,
			IncludePatterns: []string{"/news/story/", "/news/corruption/", "/news/politics/"},
			ExcludePatterns: []string{"/opinion/", "/blog/", "/column/", "/interview/", "/editorial/", "/perspective/", "/commentary/"},
		},
		{
			Name: "nayapatrika", Scanner: "homepage", BaseURL: "https://nayapatrikadaily.com", Domain: "nayapatrikadaily.com", Language: "ne",
			IncludePatterns: []string{"/news-details/"},
		},
		{
			Name: "onlinekhabar", Scanner: "homepage", BaseURL: "https://www.onlinekhabar.com", Domain: "onlinekhabar.com", Language: "ne",
			RequireYear: true,
		},
		{
			Name: "ratopati", Scanner: "homepage", BaseURL: "https://www.ratopati.com", Domain: "ratopati.com", Language: "ne",
			IncludePatterns: []string{"/story/"},
		},
	}
}
