package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything imagegate reads from the environment.
type Config struct {
	Port string

	// APIKeys is the privileged-tier allow-list, comma-separated in the
	// API_KEYS variable. Entries are trimmed; empty entries are dropped.
	APIKeys []string

	StandardDaily     int
	StandardMonthly   int
	PrivilegedMonthly int

	// SweepInterval is how often the background sweeper rolls expired
	// windows for idle identities.
	SweepInterval time.Duration

	UpstreamURL     string
	UpstreamTimeout time.Duration

	// UsageDBPath is the SQLite request audit log. Set USAGE_DB_PATH to an
	// empty string to disable it.
	UsageDBPath string

	// AdminSecret guards /admin endpoints; empty disables them.
	AdminSecret string

	// PromptStyleSuffix, when set, is appended to every prompt before it is
	// forwarded upstream.
	PromptStyleSuffix string
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	standardDaily, err := intEnv("MAX_FREE_DAILY", 3)
	if err != nil {
		return nil, err
	}
	standardMonthly, err := intEnv("MAX_FREE_MONTHLY", 30)
	if err != nil {
		return nil, err
	}
	privilegedMonthly, err := intEnv("MAX_PAID_MONTHLY", 200)
	if err != nil {
		return nil, err
	}

	sweepInterval, err := durationEnv("RESET_INTERVAL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := durationEnv("UPSTREAM_TIMEOUT", 300*time.Second)
	if err != nil {
		return nil, err
	}

	upstreamURL := os.Getenv("UPSTREAM_URL")
	if upstreamURL == "" {
		upstreamURL = "https://image.pollinations.ai"
	}

	usageDBPath := "imagegate.db"
	if v, ok := os.LookupEnv("USAGE_DB_PATH"); ok {
		usageDBPath = v
	}

	return &Config{
		Port:              port,
		APIKeys:           splitKeys(os.Getenv("API_KEYS")),
		StandardDaily:     standardDaily,
		StandardMonthly:   standardMonthly,
		PrivilegedMonthly: privilegedMonthly,
		SweepInterval:     sweepInterval,
		UpstreamURL:       upstreamURL,
		UpstreamTimeout:   upstreamTimeout,
		UsageDBPath:       usageDBPath,
		AdminSecret:       os.Getenv("ADMIN_SECRET"),
		PromptStyleSuffix: os.Getenv("PROMPT_STYLE_SUFFIX"),
	}, nil
}

func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return v, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, v)
	}
	return v, nil
}
