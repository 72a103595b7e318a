package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBDSN      string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool

	UploadDir   string
	CORSOrigins []string

	AMQPURL      string
	AMQPExchange string

	OverdueCron string
	AutoMigrate bool
}

// LoadEnv reads .env (when present) and then the process environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded, using process environment: %v", err)
	}

	env := Env{
		AppAddr:      getenv("APP_ADDR", ":8080"),
		GinMode:      getenv("GIN_MODE", ""),
		DBDSN:        getenv("DB_DSN", ""),
		DBUser:       getenv("DB_USER", "root"),
		DBPassword:   getenv("DB_PASSWORD", ""),
		DBHost:       getenv("DB_HOST", "127.0.0.1"),
		DBPort:       getenv("DB_PORT", "3306"),
		DBName:       getenv("DB_NAME", "locacar"),
		JWTSecret:    getenv("JWT_SECRET", ""),
		SessionTTL:   getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure: getBool("COOKIE_SECURE", false),
		UploadDir:    getenv("UPLOAD_DIR", "uploads/license_images"),
		CORSOrigins:  splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:8000,http://127.0.0.1:8000")),
		AMQPURL:      getenv("AMQP_URL", ""),
		AMQPExchange: getenv("AMQP_EXCHANGE", "locacar.rentals"),
		OverdueCron:  getenv("OVERDUE_CRON", ""),
		AutoMigrate:  getBool("AUTO_MIGRATE", false),
	}

	if env.JWTSecret == "" {
		log.Println("warning: JWT_SECRET is empty, using an insecure development secret")
		env.JWTSecret = "locacar-dev-secret-change-me"
	}
	return env
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("warning: invalid %s=%q, using %v", key, v, def)
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("warning: invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
