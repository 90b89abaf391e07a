package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Languages maps supported output language codes to display names.
var Languages = map[string]string{
	"en": "English",
	"bn": "Bengali",
	"ar": "Arabic",
}

// Providers lists the supported LLM providers.
var Providers = []string{"openrouter", "anthropic", "gemini"}

type Config struct {
	// LLM provider
	Provider          string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	AnthropicAPIKey   string
	GeminiAPIKey      string
	Model             string
	MaxTokens         int
	Temperature       float64

	// Output
	OutputLanguage string
	OutputDir      string
	LogDir         string

	// Summarization
	MaxChunkSize        int
	RegionInputCap      int
	DocumentInputCap    int
	SuggestionsInputCap int
	RequestInterval     time.Duration

	// Segmentation
	LookaheadLines  int
	MaxRegionLength int
	MinRegionLength int
	FallbackWindow  int

	// Translation
	TranslateSummaries bool
	TranslateChunkSize int

	// Extraction
	OCREnabled           bool
	TesseractCmd         string
	MinTextChars         int
	PDFFallbackPdftotext bool

	// Cost estimate, USD per token
	InputTokenPrice  float64
	OutputTokenPrice float64

	// Serve mode
	Port           string
	DocsummAPIKey  string
	WorkerCount    int
	MaxQueueSize   int
	MaxUploadBytes int64
	JobTTL         time.Duration
	UploadDir      string
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Provider:          envOr("LLM_PROVIDER", "openrouter"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: envOr("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		Model:             os.Getenv("MODEL_NAME"),
		MaxTokens:         envInt("MAX_TOKENS", 4000),
		Temperature:       envFloat("TEMPERATURE", 0.7),

		OutputLanguage: envOr("OUTPUT_LANGUAGE", "en"),
		OutputDir:      envOr("OUTPUT_DIR", "outputs"),
		LogDir:         envOr("LOG_DIR", "logs"),

		MaxChunkSize:        envInt("MAX_CHUNK_SIZE", 12000),
		RegionInputCap:      envInt("REGION_INPUT_CAP", 15000),
		DocumentInputCap:    envInt("DOCUMENT_INPUT_CAP", 20000),
		SuggestionsInputCap: envInt("SUGGESTIONS_INPUT_CAP", 8000),
		RequestInterval:     envDuration("REQUEST_INTERVAL", 800*time.Millisecond),

		LookaheadLines:  envInt("SEGMENT_LOOKAHEAD_LINES", 120),
		MaxRegionLength: envInt("MAX_REGION_LENGTH", 25000),
		MinRegionLength: envInt("MIN_REGION_LENGTH", 100),
		FallbackWindow:  envInt("FALLBACK_WINDOW", 20000),

		TranslateSummaries: envBool("TRANSLATE_SUMMARIES", false),
		TranslateChunkSize: envInt("TRANSLATE_CHUNK_SIZE", 4500),

		OCREnabled:           envBool("OCR_ENABLED", true),
		TesseractCmd:         envOr("TESSERACT_CMD", "tesseract"),
		MinTextChars:         envInt("MIN_TEXT_CHARS", 100),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		InputTokenPrice:  envFloat("INPUT_TOKEN_PRICE", 0.0000005),
		OutputTokenPrice: envFloat("OUTPUT_TOKEN_PRICE", 0.0000015),

		Port:           envOr("PORT", "8090"),
		DocsummAPIKey:  os.Getenv("DOCSUMM_API_KEY"),
		WorkerCount:    envInt("WORKER_COUNT", 2),
		MaxQueueSize:   envInt("MAX_QUEUE_SIZE", 100),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		JobTTL:         envDuration("JOB_TTL", 1*time.Hour),
		UploadDir:      envOr("UPLOAD_DIR", os.TempDir()),
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 12000
	}
	if cfg.RegionInputCap <= 0 {
		cfg.RegionInputCap = 15000
	}
	if cfg.DocumentInputCap <= 0 {
		cfg.DocumentInputCap = 20000
	}
	if cfg.SuggestionsInputCap <= 0 {
		cfg.SuggestionsInputCap = 8000
	}
	if cfg.RequestInterval < 0 {
		cfg.RequestInterval = 800 * time.Millisecond
	}
	if cfg.LookaheadLines <= 0 {
		cfg.LookaheadLines = 120
	}
	if cfg.MaxRegionLength <= 0 {
		cfg.MaxRegionLength = 25000
	}
	if cfg.MinRegionLength < 0 {
		cfg.MinRegionLength = 100
	}
	if cfg.FallbackWindow <= 0 {
		cfg.FallbackWindow = 20000
	}
	if cfg.TranslateChunkSize <= 0 {
		cfg.TranslateChunkSize = 4500
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 100
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// DefaultModel returns the model used for a provider when MODEL_NAME is unset.
func DefaultModel(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-sonnet-4-5-20250929"
	case "gemini":
		return "gemini-2.5-flash"
	default:
		return "deepseek/deepseek-chat"
	}
}

// APIKey returns the credential for the selected provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case "anthropic":
		return c.AnthropicAPIKey
	case "gemini":
		return c.GeminiAPIKey
	default:
		return c.OpenRouterAPIKey
	}
}

// Validate checks the settings needed to run a summarization.
func (c Config) Validate() error {
	if !slices.Contains(Providers, c.Provider) {
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.Provider)
	}
	if c.APIKey() == "" {
		return fmt.Errorf("%s is required", c.apiKeyVar())
	}
	if err := ValidateLanguage(c.OutputLanguage); err != nil {
		return err
	}
	return nil
}

// ValidateServer checks Validate plus the serve-mode settings.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DocsummAPIKey == "" {
		return fmt.Errorf("DOCSUMM_API_KEY is required")
	}
	return nil
}

// ValidateLanguage rejects language codes outside Languages.
func ValidateLanguage(lang string) error {
	if _, ok := Languages[lang]; !ok {
		return fmt.Errorf("unsupported language %q (supported: en, bn, ar)", lang)
	}
	return nil
}

func (c Config) apiKeyVar() string {
	switch c.Provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "OPENROUTER_API_KEY"
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
