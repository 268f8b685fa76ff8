package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host      string
	Port      string
	SecretKey string

	// Database settings
	DatabasePath string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings
	CacheSize int
	CacheTTL  time.Duration

	// Court settings
	CourtBaseURL string
	CourtName    string

	// Scraper settings
	ScraperTimeout     time.Duration
	ElementWaitTimeout time.Duration
	RenderWait         time.Duration
	HeadlessMode       bool
	UserAgent          string
	BrowserPath        string

	// Document relay settings
	DownloadTimeout time.Duration
	DownloadDir     string
	AllowedDocHosts []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Host:         getEnv("HOST", "0.0.0.0"),
		Port:         getEnv("PORT", "5000"),
		SecretKey:    getEnv("SECRET_KEY", "dev-secret-key"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/court_data.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		CourtBaseURL: getEnv("COURT_BASE_URL", "https://delhihighcourt.nic.in"),
		CourtName:    getEnv("COURT_NAME", "Delhi High Court"),
		UserAgent:    getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		BrowserPath:  getEnv("ROD_BROWSER_PATH", ""),
		DownloadDir:  getEnv("DOWNLOAD_DIR", os.TempDir()),
	}

	// Parse integer values
	var err error
	cfg.CacheSize, err = strconv.Atoi(getEnv("CACHE_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = time.Duration(cacheTTL) * time.Minute

	scraperTimeout, err := strconv.Atoi(getEnv("SCRAPER_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPER_TIMEOUT: %w", err)
	}
	cfg.ScraperTimeout = time.Duration(scraperTimeout) * time.Second

	elementWait, err := strconv.Atoi(getEnv("ELEMENT_WAIT_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid ELEMENT_WAIT_TIMEOUT: %w", err)
	}
	cfg.ElementWaitTimeout = time.Duration(elementWait) * time.Second

	renderWait, err := strconv.Atoi(getEnv("RENDER_WAIT", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid RENDER_WAIT: %w", err)
	}
	cfg.RenderWait = time.Duration(renderWait) * time.Second

	cfg.HeadlessMode = getEnv("HEADLESS_MODE", "true") == "true"

	downloadTimeout, err := strconv.Atoi(getEnv("DOWNLOAD_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_TIMEOUT: %w", err)
	}
	cfg.DownloadTimeout = time.Duration(downloadTimeout) * time.Second

	cfg.AllowedDocHosts, err = parseAllowedHosts(getEnv("ALLOWED_DOC_HOSTS", ""), cfg.CourtBaseURL)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseAllowedHosts splits the configured host list; when unset, the court
// site's own host is the only permitted relay source.
func parseAllowedHosts(raw, courtBaseURL string) ([]string, error) {
	if raw == "" {
		base, err := url.Parse(courtBaseURL)
		if err != nil || base.Hostname() == "" {
			return nil, fmt.Errorf("invalid COURT_BASE_URL %q", courtBaseURL)
		}
		return []string{strings.ToLower(base.Hostname())}, nil
	}

	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("ALLOWED_DOC_HOSTS is set but contains no hosts")
	}
	return hosts, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
