package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Backend names accepted by LOCK_BACKEND and STORE_BACKEND.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendMySQL  = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Durations use time.ParseDuration syntax.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	LockBackend  string // "redis" or "memory"
	StoreBackend string // "mysql" or "memory"

	DBUser    string // database username (mysql only)
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	DBMigrate bool   // create tables and seed the demo show on startup

	LockTTL           time.Duration // expiry of a seat lock
	ConfirmDelay      time.Duration // simulated payment latency
	NaiveDelay        time.Duration // read-to-write gap of the naive path
	LockSweepInterval time.Duration // memory lock store sweep period
	Debug             bool          // log every reservation state transition

	Events EventsConfig
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Database variables
// are only required for the mysql store backend.
func Load() Config {
	cfg := Config{
		Env:               must("APP_ENV"),
		Port:              strconv.Itoa(mustInt("APP_PORT")),
		LockBackend:       envStr("LOCK_BACKEND", BackendRedis),
		StoreBackend:      envStr("STORE_BACKEND", BackendMySQL),
		DBMigrate:         envBool("DB_MIGRATE", true),
		LockTTL:           envDur("LOCK_TTL", 600*time.Second),
		ConfirmDelay:      envDur("CONFIRM_DELAY", 500*time.Millisecond),
		NaiveDelay:        envDur("NAIVE_DELAY", 200*time.Millisecond),
		LockSweepInterval: envDur("LOCK_SWEEP_INTERVAL", 30*time.Second),
		Debug:             envBool("RESERVATION_DEBUG", false),
		Events:            LoadEventsConfig(),
	}
	switch cfg.LockBackend {
	case BackendRedis, BackendMemory:
	default:
		log.Fatalf("invalid LOCK_BACKEND: %q", cfg.LockBackend)
	}
	switch cfg.StoreBackend {
	case BackendMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case BackendMemory:
	default:
		log.Fatalf("invalid STORE_BACKEND: %q", cfg.StoreBackend)
	}
	if cfg.LockTTL <= 0 {
		log.Fatalf("LOCK_TTL must be positive, got %s", cfg.LockTTL)
	}
	return cfg
}

// DBFromEnv reads only the database variables.  It is used by tools that
// talk to MySQL without starting the server.
func DBFromEnv() (user, pass, host, port, name string) {
	return must("DB_USER"), os.Getenv("DB_PASS"), must("DB_HOST"), must("DB_PORT"), must("DB_NAME")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
