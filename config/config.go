package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

var (
	MAIN_ROUTES string
	APP_PORT    string
	APP_ENV     string
	JWTSecret   string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBLogLevel string
	DBMigrate  bool
	DBSeed     bool

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// ActivityMailTo receives a copy of every activity entry when set.
	ActivityMailTo []string

	SnowflakeNode int64

	allowedOrigins map[string]bool
)

// LoadConfig reads .env and initialises the configuration variables.
// It reports whether a .env file was found.
func LoadConfig() bool {
	found := godotenv.Load() == nil

	// Server
	MAIN_ROUTES = getEnv("MAIN_ROUTES", "/api/v1")
	APP_PORT = getEnv("APP_PORT", "9000")
	APP_ENV = getEnv("APP_ENV", "development")

	// JWT, issued by the identity service
	JWTSecret = getEnv("JWT_SECRET", "enquiry_app_key_secret")

	// Database
	DBDriver = getEnv("DB_DRIVER", "postgres")
	DBHost = getEnv("DB_HOST", "localhost")
	DBPort = getEnv("DB_PORT", "5432")
	DBUser = getEnv("DB_USER", "postgres")
	DBPassword = getEnv("DB_PASSWORD", "password")
	DBName = getEnv("DB_NAME", "enquiry_app")
	DBLogLevel = getEnv("DB_LOG_LEVEL", "warn")
	DBMigrate = getEnvAsBool("DB_MIGRATE", true)
	DBSeed = getEnvAsBool("DB_SEED", true)

	// Mail
	SMTPHost = getEnv("SMTP_HOST", "")
	SMTPPort = getEnvAsInt("SMTP_PORT", 587)
	SMTPUser = getEnv("SMTP_USER", "")
	SMTPPassword = getEnv("SMTP_PASSWORD", "")
	SMTPFrom = getEnv("SMTP_FROM", "no-reply@localhost")
	ActivityMailTo = splitList(getEnv("ACTIVITY_MAIL_TO", ""))

	SnowflakeNode = int64(getEnvAsInt("SNOWFLAKE_NODE", 1))

	loadAllowedOrigins()
	return found
}

func IsProduction() bool {
	return APP_ENV == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadAllowedOrigins() {
	allowedOrigins = make(map[string]bool)
	origins := splitList(getEnv("ALLOWED_ORIGINS", ""))
	if len(origins) == 0 {
		allowedOrigins["http://127.0.0.1:3000"] = true
		return
	}
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}
}

func SetupCORS(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if allowedOrigins[origin] {
			c.Set("Access-Control-Allow-Origin", origin)
			c.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			c.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
			c.Set("Access-Control-Allow-Credentials", "true")
		}

		// Handle preflight request
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	})
}
