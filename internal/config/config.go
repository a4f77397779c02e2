package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. The signing secrets are
// split so the session key and the receipt key can rotate
// independently.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	TokenSecret   string // secret used to sign session tokens
	ReceiptSecret string // secret used to sign order receipts
	TokenTTLMin   int    // session token time-to-live in minutes
	BcryptCost    int    // bcrypt cost for password hashing
	AdminName     string // bootstrap admin display name
	AdminEmail    string // bootstrap admin email
	AdminPassword string // bootstrap admin password
	ListPageSize  int    // default page size for listing endpoints
}

// Load reads configuration from the environment, after loading a
// local .env file when one exists. Required variables are enforced
// by must() and missing values cause the program to exit.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:           getenv("APP_ENV", "dev"),
		Port:          getenv("APP_PORT", "3000"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		TokenSecret:   must("TOKEN_SECRET"),
		ReceiptSecret: getenv("RECEIPT_SECRET", os.Getenv("TOKEN_SECRET")),
		TokenTTLMin:   envInt("TOKEN_TTL_MIN", 60),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		AdminName:     getenv("ADMIN_NAME", "pizza admin"),
		AdminEmail:    getenv("ADMIN_EMAIL", "a@jwt.com"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin"),
		ListPageSize:  envInt("LIST_PAGE_SIZE", 10),
	}
}

// must retrieves the value of a required environment variable. If
// the variable is unset or empty, the application logs a fatal
// error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
