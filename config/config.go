package config

import (
	"os"
	"strconv"
)

type Config struct {
	MongoURI            string
	MongoDatabase       string
	RedisAddr           string
	HTTPPort            string
	JWTSecret           string
	HostUsername        string
	HostPassword        string
	DefaultTimeLimitSec int
}

func Load() *Config {
	return &Config{
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnv("MONGO_DB", "quizlive"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:            getEnv("PORT", "8080"),
		JWTSecret:           getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		HostUsername:        getEnv("HOST_USERNAME", "admin"),
		HostPassword:        getEnv("HOST_PASSWORD", "password123"),
		DefaultTimeLimitSec: getEnvInt("DEFAULT_TIME_LIMIT_SEC", 20),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
