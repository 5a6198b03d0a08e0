package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Разрешённые Origin для CORS и WebSocket-апгрейда.
	// Пустой список означает «разрешены все».
	AllowedOrigins []string

	// Пустой адрес отключает кеш лидерборда.
	RedisAddr     string
	RedisPassword string

	// Пустой URL отключает оракула: все ответы оцениваются нулём.
	OracleURL     string
	OracleAPIKey  string
	OracleTimeout time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	// Политика авто-подтверждения регистрации. Оставлена настраиваемой:
	// модерация заявок может вернуться.
	RegistrationAutoConfirm bool
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	oracleTimeout := 5 * time.Second
	if v := os.Getenv("ORACLE_TIMEOUT"); v != "" {
		oracleTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ORACLE_TIMEOUT environment variable: %w", err)
		}
	}

	var allowedOrigins []string
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	autoConfirm := true
	if v := os.Getenv("REGISTRATION_AUTO_CONFIRM"); v != "" {
		autoConfirm, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REGISTRATION_AUTO_CONFIRM environment variable: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:             dbURL,
		JWTSecretKey:            jwtKey,
		ServerPort:              port,
		AllowedOrigins:          allowedOrigins,
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		OracleURL:               os.Getenv("ORACLE_URL"),
		OracleAPIKey:            os.Getenv("ORACLE_API_KEY"),
		OracleTimeout:           oracleTimeout,
		R2AccountID:             os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:           os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:       os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:            os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:         os.Getenv("R2_PUBLIC_BASE_URL"),
		RegistrationAutoConfirm: autoConfirm,
	}

	return cfg, nil
}
