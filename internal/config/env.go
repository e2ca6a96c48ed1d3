package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"voyage/internal/utils"
)

// Service names, one process each.
const (
	ServiceUser   = "user"
	ServiceTrip   = "trip"
	ServiceTravel = "travel"
	ServiceSleep  = "sleep"
	ServiceEat    = "eat"
	ServiceDrink  = "drink"
	ServiceEnjoy  = "enjoy"
)

// DefaultAddrs holds the listen address each service uses when APP_ADDR is empty.
var DefaultAddrs = map[string]string{
	ServiceUser:   ":3000",
	ServiceTravel: ":3001",
	ServiceSleep:  ":3002",
	ServiceEnjoy:  ":3003",
	ServiceEat:    ":3004",
	ServiceDrink:  ":3005",
	ServiceTrip:   ":3009",
}

// Services lists every known service in port order.
func Services() []string {
	return []string{ServiceUser, ServiceTravel, ServiceSleep, ServiceEnjoy, ServiceEat, ServiceDrink, ServiceTrip}
}

// IsService reports whether name is a known service.
func IsService(name string) bool {
	_, ok := DefaultAddrs[name]
	return ok
}

type Env struct {
	Service string

	AppAddr  string `mapstructure:"APP_ADDR"`
	GinMode  string `mapstructure:"GIN_MODE"`
	AppEnv   string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DBDSN string `mapstructure:"DB_DSN"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	ShareTTL          time.Duration `mapstructure:"SHARE_TTL"`
	UpstreamTimeout   time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`
	VerifyConcurrency int           `mapstructure:"VERIFY_CONCURRENCY"`

	ServiceURLUser   string `mapstructure:"SERVICE_URL_USER"`
	ServiceURLTrip   string `mapstructure:"SERVICE_URL_TRIP"`
	ServiceURLTravel string `mapstructure:"SERVICE_URL_TRAVEL"`
	ServiceURLSleep  string `mapstructure:"SERVICE_URL_SLEEP"`
	ServiceURLEat    string `mapstructure:"SERVICE_URL_EAT"`
	ServiceURLDrink  string `mapstructure:"SERVICE_URL_DRINK"`
	ServiceURLEnjoy  string `mapstructure:"SERVICE_URL_ENJOY"`

	TravelProviders string `mapstructure:"TRAVEL_PROVIDERS"`

	AmadeusKey    string `mapstructure:"AMADEUS_KEY"`
	AmadeusSecret string `mapstructure:"AMADEUS_SECRET"`
	AmadeusURL    string `mapstructure:"AMADEUS_URL"`
}

var envKeys = []string{
	"APP_ADDR", "GIN_MODE", "APP_ENV", "LOG_LEVEL", "DB_DSN",
	"JWT_SECRET", "JWT_TTL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"CORS_ALLOWED_ORIGINS", "SHARE_TTL", "UPSTREAM_TIMEOUT", "VERIFY_CONCURRENCY",
	"SERVICE_URL_USER", "SERVICE_URL_TRIP", "SERVICE_URL_TRAVEL", "SERVICE_URL_SLEEP",
	"SERVICE_URL_EAT", "SERVICE_URL_DRINK", "SERVICE_URL_ENJOY",
	"TRAVEL_PROVIDERS", "AMADEUS_KEY", "AMADEUS_SECRET", "AMADEUS_URL",
}

// LoadEnv reads configuration for one service from the environment (and an
// optional .env file in the working directory).
func LoadEnv(service string) Env {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DSN", "root:@tcp(127.0.0.1:3306)/voyage_"+service+"?parseTime=true&loc=UTC&charset=utf8mb4&clientFoundRows=true&timeout=5s&readTimeout=30s&writeTimeout=30s")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SHARE_TTL", "24h")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("VERIFY_CONCURRENCY", 4)
	v.SetDefault("SERVICE_URL_USER", "http://localhost:3000")
	v.SetDefault("SERVICE_URL_TRAVEL", "http://localhost:3001")
	v.SetDefault("SERVICE_URL_SLEEP", "http://localhost:3002")
	v.SetDefault("SERVICE_URL_ENJOY", "http://localhost:3003")
	v.SetDefault("SERVICE_URL_EAT", "http://localhost:3004")
	v.SetDefault("SERVICE_URL_DRINK", "http://localhost:3005")
	v.SetDefault("SERVICE_URL_TRIP", "http://localhost:3009")
	v.SetDefault("AMADEUS_URL", "https://test.api.amadeus.com")

	var env Env
	_ = v.Unmarshal(&env)

	env.Service = service
	env.AppAddr = strings.TrimSpace(env.AppAddr)
	if env.AppAddr == "" {
		env.AppAddr = DefaultAddrs[service]
	}
	if env.AppAddr == "" {
		env.AppAddr = ":8080"
	}
	env.GinMode = strings.TrimSpace(env.GinMode)
	if env.VerifyConcurrency <= 0 {
		env.VerifyConcurrency = 4
	}
	return env
}

// IsProduction reports whether APP_ENV asks for production logging.
func (e Env) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(e.AppEnv)) {
	case "prod", "production":
		return true
	}
	return false
}

// ServiceURL returns the base URL configured for another service.
func (e Env) ServiceURL(service string) string {
	switch service {
	case ServiceUser:
		return e.ServiceURLUser
	case ServiceTrip:
		return e.ServiceURLTrip
	case ServiceTravel:
		return e.ServiceURLTravel
	case ServiceSleep:
		return e.ServiceURLSleep
	case ServiceEat:
		return e.ServiceURLEat
	case ServiceDrink:
		return e.ServiceURLDrink
	case ServiceEnjoy:
		return e.ServiceURLEnjoy
	}
	return ""
}

// ProviderURLs parses TRAVEL_PROVIDERS ("AIRFRANCE=http://af:8080,SNCF=http://sncf").
// Names are upper-cased; malformed entries are skipped.
func (e Env) ProviderURLs() map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(e.TravelProviders, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, url, ok := strings.Cut(part, "=")
		name = strings.ToUpper(strings.TrimSpace(name))
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			continue
		}
		out[name] = url
	}
	return out
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS. Empty means the local dev defaults.
func (e Env) AllowedOrigins() []string {
	if strings.TrimSpace(e.CORSAllowedOrigins) == "" {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}
	}
	return utils.SplitList(e.CORSAllowedOrigins)
}
