package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string
	BaseURL    string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Secret used to derive activation ticket signing keys
	SecretKey          string
	ActivationTTLHours string

	// Super Admin
	SuperAdminEmail    string
	SuperAdminPassword string

	// Default organization every new account is attached to
	DefaultOrganizationName string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// Email Configuration
	EmailFrom     string
	EmailFromName string
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string

	// Login Rate Limiting
	LoginRateLimitMaxAttempts   string
	LoginRateLimitWindowSeconds string

	// Register Rate Limiting
	RegisterRateLimitMaxAttempts string
	RegisterRateLimitWindowHours string

	// MinIO Configuration
	MinIOServerURL    string
	MinIORootUser     string
	MinIORootPassword string
	MinIOUseSSL       bool
	MinIOBucketName   string

	// Avatar upload
	AvatarAllowedTypes string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg = &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "8000"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:8000"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "orgaccount"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Secrets
		SecretKey:          getEnv("SECRET_KEY", "your-secret-key-change-this"),
		ActivationTTLHours: getEnv("ACTIVATION_TTL_HOURS", "72"),

		// Super Admin
		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", "admin@orgaccount.local"),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", "admin_1234"),

		// Default organization
		DefaultOrganizationName: getEnv("DEFAULT_ORGANIZATION_NAME", "No Organization"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// Email Configuration
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@orgaccount.local"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "OrgAccount"),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.example.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),

		// Login Rate Limiting
		LoginRateLimitMaxAttempts:   getEnv("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", "5"),
		LoginRateLimitWindowSeconds: getEnv("LOGIN_RATE_LIMIT_WINDOW_SECONDS", "300"),

		// Register Rate Limiting
		RegisterRateLimitMaxAttempts: getEnv("REGISTER_RATE_LIMIT_MAX_ATTEMPTS", "10"),
		RegisterRateLimitWindowHours: getEnv("REGISTER_RATE_LIMIT_WINDOW_HOURS", "24"),

		// MinIO Configuration
		MinIOServerURL:    getEnv("MINIO_SERVER_URL", "http://localhost:9000"),
		MinIORootUser:     getEnv("MINIO_ROOT_USER", "minioadmin"),
		MinIORootPassword: getEnv("MINIO_ROOT_PASSWORD", "minioadmin"),
		MinIOUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		MinIOBucketName:   getEnv("MINIO_BUCKET_NAME", "orgaccount-uploads"),

		// Avatar upload
		AvatarAllowedTypes: getEnv("AVATAR_ALLOWED_TYPES", ".jpg,.jpeg,.png"),
	}

	log.Println("✅ Configuration loaded successfully")
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// GetActivationTTLHours returns the activation link lifetime as integer hours
func (c *Config) GetActivationTTLHours() int {
	if value, err := strconv.Atoi(c.ActivationTTLHours); err == nil && value > 0 {
		return value
	}
	return 72
}

// GetLoginRateLimitMaxAttempts returns the login rate limit as integer
func (c *Config) GetLoginRateLimitMaxAttempts() int {
	if value, err := strconv.Atoi(c.LoginRateLimitMaxAttempts); err == nil {
		return value
	}
	return 5
}

// GetLoginRateLimitWindowSeconds returns the login rate limit window as integer
func (c *Config) GetLoginRateLimitWindowSeconds() int {
	if value, err := strconv.Atoi(c.LoginRateLimitWindowSeconds); err == nil {
		return value
	}
	return 300
}

// GetRegisterRateLimitMaxAttempts returns the registration rate limit as integer
func (c *Config) GetRegisterRateLimitMaxAttempts() int {
	if value, err := strconv.Atoi(c.RegisterRateLimitMaxAttempts); err == nil {
		return value
	}
	return 10
}

// GetRegisterRateLimitWindowHours returns the registration rate limit window as integer
func (c *Config) GetRegisterRateLimitWindowHours() int {
	if value, err := strconv.Atoi(c.RegisterRateLimitWindowHours); err == nil {
		return value
	}
	return 24
}

// AvatarAllowedTypesList returns the allowed avatar file extensions
func (c *Config) AvatarAllowedTypesList() []string {
	parts := strings.Split(c.AvatarAllowedTypes, ",")
	types := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			types = append(types, trimmed)
		}
	}
	return types
}

// GetRedisDB returns the redis database index as integer
func (c *Config) GetRedisDB() int {
	if value, err := strconv.Atoi(c.RedisDB); err == nil {
		return value
	}
	return 0
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
