// Package config loads application configuration from environment
// variables. main loads .env first, so local runs can keep them in a file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageMySQL  = "mysql"
)

// Config holds all runtime configuration values.
type Config struct {
	Env           string // dev, test or prod
	Port          string
	StorageDriver string
	LogLevel      string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int

	AMQPURL        string // empty disables the broker
	EventsQueue    string
	EventsConsumer bool   // run the event log consumer in process
	EventsLogPath  string
	EventsBuffer   int

	ShutdownTimeout time.Duration
}

// Load reads the configuration. Required variables are enforced by must and
// a missing value stops the process.
func Load() Config {
	c := Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            must("APP_PORT"),
		StorageDriver:   strings.ToLower(envStr("STORAGE_DRIVER", StorageMemory)),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:      envInt("BCRYPT_COST", 10),
		AMQPURL:         amqpURL(),
		EventsQueue:     envStr("EVENTS_QUEUE", "cinema.events"),
		EventsConsumer:  envBool("EVENTS_CONSUMER", false),
		EventsLogPath:   envStr("EVENTS_LOG_PATH", "logs/events.log"),
		EventsBuffer:    envInt("EVENTS_BUFFER", 256),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	switch c.StorageDriver {
	case StorageMemory:
	case StorageMySQL:
		c.DBUser = must("DB_USER")
		c.DBPass = os.Getenv("DB_PASS")
		c.DBHost = must("DB_HOST")
		c.DBPort = must("DB_PORT")
		c.DBName = must("DB_NAME")
	default:
		log.Fatalf("invalid STORAGE_DRIVER %q (memory or mysql)", c.StorageDriver)
	}
	return c
}

// AccessTTL is the access token lifetime.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMin) * time.Minute
}

func (c Config) IsProd() bool { return c.Env == "prod" }

// RABBITMQ_URL wins over AMQP_URL.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
