package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string

	DBDriver          string
	DBPath            string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	SessionSigningKey  string
	StoragePrefix      string
	DeviceCookieName   string
	CookieSecure       bool
	TrustProxy         bool
	CORSAllowedOrigins []string

	FixturesPath string

	ScanDelay         time.Duration
	ClaimDelay        time.Duration
	RecycleDelay      time.Duration
	TokensPerBottle   int
	ScanRewardProfile string
	WorkflowMode      string

	GeoTimeout     time.Duration
	GeoMaxAge      time.Duration
	NearbyRadiusKm float64

	AlertSender string
	SMTPHost    string
	SMTPPort    int
	AlertFrom   string
	AlertTo     []string

	HTTPReadTimeoutSec       int
	HTTPReadHeaderTimeoutSec int
	HTTPWriteTimeoutSec      int
	HTTPIdleTimeoutSec       int
}

func Load() (Config, error) {
	cfg := Config{
		ListenAddr:               env("LISTEN_ADDR", ":8080"),
		DBDriver:                 strings.ToLower(env("APP_DB_DRIVER", "sqlite")),
		DBPath:                   env("APP_DB_PATH", "./data/ping.db"),
		DBDSN:                    env("APP_DB_DSN", ""),
		DBMaxOpenConns:           envInt("APP_DB_MAX_OPEN_CONNS", 4),
		DBMaxIdleConns:           envInt("APP_DB_MAX_IDLE_CONNS", 2),
		DBConnMaxLifetime:        time.Duration(envInt("APP_DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		SessionSigningKey:        env("SESSION_SIGNING_KEY", "CHANGE_ME_PING_SIGNING_KEY"),
		StoragePrefix:            env("STORAGE_PREFIX", "ping"),
		DeviceCookieName:         env("DEVICE_COOKIE_NAME", "ping_device"),
		CookieSecure:             envBool("COOKIE_SECURE", false),
		TrustProxy:               envBool("TRUST_PROXY", false),
		CORSAllowedOrigins:       envCSV("CORS_ALLOWED_ORIGINS"),
		FixturesPath:             env("FIXTURES_PATH", ""),
		ScanDelay:                time.Duration(envInt("SCAN_DELAY_MS", 2000)) * time.Millisecond,
		ClaimDelay:               time.Duration(envInt("CLAIM_DELAY_MS", 1000)) * time.Millisecond,
		RecycleDelay:             time.Duration(envInt("RECYCLE_DELAY_MS", 2000)) * time.Millisecond,
		TokensPerBottle:          envInt("TOKENS_PER_BOTTLE", 2),
		ScanRewardProfile:        strings.ToLower(env("SCAN_REWARD_PROFILE", "authentication")),
		WorkflowMode:             strings.ToLower(env("WORKFLOW_MODE", "strict")),
		GeoTimeout:               time.Duration(envInt("GEO_TIMEOUT_SEC", 10)) * time.Second,
		GeoMaxAge:                time.Duration(envInt("GEO_MAX_AGE_SEC", 300)) * time.Second,
		NearbyRadiusKm:           envFloat("NEARBY_RADIUS_KM", 2),
		AlertSender:              strings.ToLower(env("ALERT_SENDER", "log")),
		SMTPHost:                 env("SMTP_HOST", "127.0.0.1"),
		SMTPPort:                 envInt("SMTP_PORT", 25),
		AlertFrom:                env("ALERT_FROM", "alerts@ping.example"),
		AlertTo:                  envCSV("ALERT_TO"),
		HTTPReadTimeoutSec:       envInt("HTTP_READ_TIMEOUT_SEC", 10),
		HTTPReadHeaderTimeoutSec: envInt("HTTP_READ_HEADER_TIMEOUT_SEC", 5),
		HTTPWriteTimeoutSec:      envInt("HTTP_WRITE_TIMEOUT_SEC", 30),
		HTTPIdleTimeoutSec:       envInt("HTTP_IDLE_TIMEOUT_SEC", 60),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("APP_DB_PATH is required for sqlite")
		}
	case "postgres", "mysql":
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("APP_DB_DSN is required for %s", c.DBDriver)
		}
	default:
		return fmt.Errorf("APP_DB_DRIVER must be one of: sqlite, postgres, mysql")
	}
	if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns < 0 {
		return fmt.Errorf("invalid DB pool config")
	}
	if strings.TrimSpace(c.SessionSigningKey) == "" ||
		c.SessionSigningKey == "CHANGE_ME_PING_SIGNING_KEY" ||
		len(c.SessionSigningKey) < 24 {
		return fmt.Errorf("SESSION_SIGNING_KEY must be set to a strong non-default value (>=24 chars)")
	}
	if strings.TrimSpace(c.StoragePrefix) == "" {
		return fmt.Errorf("STORAGE_PREFIX must not be empty")
	}
	if c.ScanDelay < 0 || c.ClaimDelay < 0 || c.RecycleDelay < 0 {
		return fmt.Errorf("action delays must not be negative")
	}
	if c.TokensPerBottle <= 0 {
		return fmt.Errorf("TOKENS_PER_BOTTLE must be positive")
	}
	switch c.ScanRewardProfile {
	case "authentication", "consumer":
	default:
		return fmt.Errorf("SCAN_REWARD_PROFILE must be one of: authentication, consumer")
	}
	switch c.WorkflowMode {
	case "strict", "permissive":
	default:
		return fmt.Errorf("WORKFLOW_MODE must be one of: strict, permissive")
	}
	if c.GeoTimeout <= 0 || c.GeoMaxAge < 0 || c.NearbyRadiusKm <= 0 {
		return fmt.Errorf("invalid geolocation config")
	}
	switch c.AlertSender {
	case "log":
	case "smtp":
		if len(c.AlertTo) == 0 {
			return fmt.Errorf("ALERT_TO is required when ALERT_SENDER=smtp")
		}
		if c.SMTPPort <= 0 {
			return fmt.Errorf("invalid SMTP port")
		}
	default:
		return fmt.Errorf("ALERT_SENDER must be one of: log, smtp")
	}
	if !c.CookieSecure && !isLocalListen(c.ListenAddr) {
		return fmt.Errorf("COOKIE_SECURE=false is allowed only for local listen addresses")
	}
	return nil
}

// ResolveCookieSecure reports whether cookies for r should carry Secure.
func (c Config) ResolveCookieSecure(r *http.Request) bool {
	if c.CookieSecure {
		return true
	}
	if r.TLS != nil {
		return true
	}
	return c.TrustProxy && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func env(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func envFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return d
	}
	return f
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func envCSV(k string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isLocalListen(addr string) bool {
	a := strings.ToLower(strings.TrimSpace(addr))
	return strings.Contains(a, "127.0.0.1") || strings.Contains(a, "localhost") || strings.Contains(a, "[::1]") || strings.HasPrefix(a, ":")
}
