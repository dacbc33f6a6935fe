package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPublicViewURL    = "https://projeto-gabinete.vercel.app/frontend/html/demanda-publica.html"
	defaultSenhaPadraoReset = "Gabinete@2024"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port             int
	DBDSN            string
	RedisURL         string
	JWTAccessTTL     time.Duration
	JWTSecret        string
	AllowOrigins     []string
	RateLimitPublic  RateLimitConfig
	RateLimitAuth    RateLimitConfig
	PublicViewURL    string
	SenhaPadraoReset string
	StatusCacheTTL   time.Duration
	SlackWebhookURL  string
	AutoMigrate      bool
	WebAuthnRPID     string
	WebAuthnRPOrigin string
	WebAuthnRPName   string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 8*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	cfg.AllowOrigins = splitList(getEnv("ALLOW_ORIGINS", ""))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 5, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	cfg.PublicViewURL = strings.TrimSpace(getEnv("PUBLIC_VIEW_URL", ""))
	if cfg.PublicViewURL == "" {
		if frontend := strings.TrimRight(strings.TrimSpace(getEnv("FRONTEND_URL", "")), "/"); frontend != "" {
			cfg.PublicViewURL = frontend + "/frontend/html/demanda-publica.html"
		} else {
			cfg.PublicViewURL = defaultPublicViewURL
		}
	}

	cfg.SenhaPadraoReset = getEnv("SENHA_PADRAO_RESET", defaultSenhaPadraoReset)
	if strings.TrimSpace(cfg.SenhaPadraoReset) == "" {
		cfg.SenhaPadraoReset = defaultSenhaPadraoReset
	}

	cacheTTL, err := parseDurationEnv("STATUS_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.StatusCacheTTL = cacheTTL

	cfg.SlackWebhookURL = strings.TrimSpace(getEnv("SLACK_WEBHOOK_URL", ""))

	autoMigrate, err := parseBoolEnv("AUTO_MIGRATE", true)
	if err != nil {
		return nil, err
	}
	cfg.AutoMigrate = autoMigrate

	cfg.WebAuthnRPID = strings.TrimSpace(getEnv("WEBAUTHN_RP_ID", "localhost"))
	if cfg.WebAuthnRPID == "" {
		cfg.WebAuthnRPID = "localhost"
	}
	cfg.WebAuthnRPOrigin = strings.TrimSpace(getEnv("WEBAUTHN_RP_ORIGIN", "http://localhost:5173"))
	if cfg.WebAuthnRPOrigin == "" {
		cfg.WebAuthnRPOrigin = "http://localhost:5173"
	}
	cfg.WebAuthnRPName = strings.TrimSpace(getEnv("WEBAUTHN_RP_NAME", "Gabinete"))
	if cfg.WebAuthnRPName == "" {
		cfg.WebAuthnRPName = "Gabinete"
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, errors.New(key + " inválido")
	}
	return b, nil
}
