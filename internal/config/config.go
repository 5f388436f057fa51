package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	LogLevel string

	AuthBaseURL        string
	UploadBaseURL      string
	ResidentialBaseURL string
	PortalLoginURL     string

	ClientCode    string
	UploadProfile int
	SystemName    string

	OutputDir string

	ResolveInterval    time.Duration
	ElectricalInterval time.Duration
	HTTPTimeout        time.Duration

	DownloadSettleDelay  time.Duration
	DownloadBackoffUnit  time.Duration
	DownloadMaxAttempts  int
	ElectricalFetchDelay time.Duration

	PostLoginSettle time.Duration
	StageSettle     time.Duration

	BrowserHeadless     bool
	BrowserFieldTimeout time.Duration
	BrowserClickTimeout time.Duration

	MetricsPort string

	PostgresDSN string

	NATSURL     string
	NATSSubject string
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		AuthBaseURL:        mustEnv("PORTAL_AUTH_BASE_URL", "https://servicos.yelumseguros.com.br/capi-gtw"),
		UploadBaseURL:      mustEnv("PORTAL_UPLOAD_BASE_URL", "https://www.yelumseguros.com.br/UploadDocumentos"),
		ResidentialBaseURL: mustEnv("PORTAL_RESIDENTIAL_BASE_URL", "https://servicos.yelumseguros.com.br/capi-sinistro-residencial"),
		PortalLoginURL:     mustEnv("PORTAL_LOGIN_URL", "https://servicos.yelumseguros.com.br/fianca/#/login"),

		ClientCode:    mustEnv("PORTAL_CLIENT_CODE", "96011528"),
		UploadProfile: mustEnvInt("PORTAL_UPLOAD_PROFILE", 2),
		SystemName:    mustEnv("PORTAL_SYSTEM_NAME", "RessarcimentoFiancaui"),

		OutputDir: mustEnv("OUTPUT_DIR", "./data/claims"),

		ResolveInterval:    mustEnvDuration("RESOLVE_INTERVAL", 2*time.Second),
		ElectricalInterval: mustEnvDuration("ELECTRICAL_INTERVAL", 3*time.Second),
		HTTPTimeout:        mustEnvDuration("HTTP_TIMEOUT", 120*time.Second),

		DownloadSettleDelay:  mustEnvDuration("DOWNLOAD_SETTLE_DELAY", 10*time.Second),
		DownloadBackoffUnit:  mustEnvDuration("DOWNLOAD_BACKOFF_UNIT", 60*time.Second),
		DownloadMaxAttempts:  mustEnvInt("DOWNLOAD_MAX_ATTEMPTS", 3),
		ElectricalFetchDelay: mustEnvDuration("ELECTRICAL_FETCH_DELAY", 3*time.Second),

		PostLoginSettle: mustEnvDuration("POST_LOGIN_SETTLE", 3*time.Second),
		StageSettle:     mustEnvDuration("STAGE_SETTLE", 2*time.Second),

		BrowserHeadless:     mustEnvBool("BROWSER_HEADLESS", true),
		BrowserFieldTimeout: mustEnvDuration("BROWSER_FIELD_TIMEOUT", 10*time.Second),
		BrowserClickTimeout: mustEnvDuration("BROWSER_CLICK_TIMEOUT", 20*time.Second),

		MetricsPort: mustEnv("METRICS_PORT", "9090"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "claimfetch.progress"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
