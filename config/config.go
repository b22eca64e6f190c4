package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server    ServerConfig
	Warehouse WarehouseConfig
	Redis     RedisConfig
	MQTT      MQTTConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port int
}

// WarehouseConfig holds the Snowflake session parameters. AccountFormats is
// the ordered list of account identifier spellings the connection provider
// walks through; Snowflake accepts several spellings of the same identifier
// depending on cloud region, so the first one that authenticates wins.
type WarehouseConfig struct {
	User           string
	Password       string
	Account        string
	AccountFormats []string
	Warehouse      string
	Database       string
	Schema         string
	Role           string
	LoginTimeout   time.Duration
}

// DSN builds a gosnowflake connection string for one account candidate.
func (w WarehouseConfig) DSN(account string) string {
	params := url.Values{}
	params.Set("warehouse", w.Warehouse)
	params.Set("role", w.Role)
	params.Set("loginTimeout", strconv.Itoa(int(w.LoginTimeout/time.Second)))
	return fmt.Sprintf("%s:%s@%s/%s/%s?%s",
		url.QueryEscape(w.User), url.QueryEscape(w.Password),
		account, w.Database, w.Schema, params.Encode(),
	)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured at all; the live feed
// and listing cache degrade to no-ops without one.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type MQTTConfig struct {
	URL   string
	Topic string
}

type CORSConfig struct {
	AllowedOrigins string
}

// LoadEnv overlays variables from local .env files onto the process
// environment before Load reads them.
func LoadEnv(logger *logrus.Logger) {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			logger.WithError(err).Warnf("failed to load %s", file)
			continue
		}
		logger.Debugf("loaded env file %s", file)
	}
}

func Load() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 5050)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	loginTimeout, err := getIntEnv("WAREHOUSE_LOGIN_TIMEOUT", 15)
	if err != nil {
		return nil, fmt.Errorf("invalid WAREHOUSE_LOGIN_TIMEOUT: %w", err)
	}

	user := getEnv("WAREHOUSE_USER", "")
	password := getEnv("WAREHOUSE_PASSWORD", "")
	account := getEnv("WAREHOUSE_ACCOUNT", "")
	if user == "" || password == "" || account == "" {
		return nil, fmt.Errorf("WAREHOUSE_USER, WAREHOUSE_PASSWORD and WAREHOUSE_ACCOUNT must be set")
	}

	formats := accountCandidates(account)
	if raw := getEnv("WAREHOUSE_ACCOUNT_FORMATS", ""); raw != "" {
		formats = splitTrimmed(raw)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Warehouse: WarehouseConfig{
			User:           user,
			Password:       password,
			Account:        account,
			AccountFormats: formats,
			Warehouse:      getEnv("WAREHOUSE_NAME", "CROSSWALK_WH"),
			Database:       getEnv("WAREHOUSE_DATABASE", "SMART_CITY"),
			Schema:         getEnv("WAREHOUSE_SCHEMA", "TRAFFIC_LOGS"),
			Role:           getEnv("WAREHOUSE_ROLE", "ACCOUNTADMIN"),
			LoginTimeout:   time.Duration(loginTimeout) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		MQTT: MQTTConfig{
			URL:   getEnv("MQTT_URL", ""),
			Topic: getEnv("MQTT_TOPIC", "crosswalk/events"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	return cfg, nil
}

// accountCandidates derives the spellings Snowflake may expect for one
// account identifier: as given, lowercased, dot-separated, and the bare
// region part after the last separator.
func accountCandidates(account string) []string {
	candidates := []string{}
	seen := map[string]bool{}
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			candidates = append(candidates, s)
		}
	}

	add(account)
	add(strings.ToLower(account))
	dotted := strings.ReplaceAll(account, "-", ".")
	add(dotted)
	add(strings.ToLower(dotted))
	if i := strings.LastIndexAny(account, "-."); i >= 0 {
		region := account[i+1:]
		add(region)
		add(strings.ToLower(region))
	}

	return candidates
}

func splitTrimmed(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
