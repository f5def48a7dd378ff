package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
)

type Config struct {
	ENV         string
	PORT        string
	LOG_LEVEL   string
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	ACCESS_TOKEN_SECRET  string
	REFRESH_TOKEN_SECRET string

	ACCESS_TOKEN_EXPIRES_IN  time.Duration
	REFRESH_TOKEN_EXPIRES_IN time.Duration
	SESSION_EXPIRES_IN       time.Duration
	OTP_EXPIRES_IN           time.Duration

	KAFKA_ADDRESS string
	REDIS_URL     string
	ES_URL        string
	ES_USER       string
	ES_PASSWORD   string
}

func (c *Config) IsProduction() bool {
	return c.ENV == "production"
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		ENV:         getEnv("ENV", "development"),
		PORT:        getEnv("PORT", "8080"),
		LOG_LEVEL:   getEnv("LOG_LEVEL", "info"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		ACCESS_TOKEN_SECRET:  os.Getenv("ACCESS_TOKEN_SECRET"),
		REFRESH_TOKEN_SECRET: os.Getenv("REFRESH_TOKEN_SECRET"),

		ACCESS_TOKEN_EXPIRES_IN:  getDuration("ACCESS_TOKEN_EXPIRES_IN", 24*time.Hour),
		REFRESH_TOKEN_EXPIRES_IN: getDuration("REFRESH_TOKEN_EXPIRES_IN", 7*24*time.Hour),
		SESSION_EXPIRES_IN:       getDuration("SESSION_EXPIRES_IN", 24*time.Hour),
		OTP_EXPIRES_IN:           getDuration("OTP_EXPIRES_IN", 5*time.Minute),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		REDIS_URL:     os.Getenv("REDIS_URL"),
		ES_URL:        os.Getenv("ES_URL"),
		ES_USER:       os.Getenv("ES_USER"),
		ES_PASSWORD:   os.Getenv("ES_PASSWORD"),
	}

	return config, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Notice: invalid duration for %s: %v. Using default %s", key, err, def)
		return def
	}
	return d
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Patient{},
		&models.Specialty{},
		&models.Doctor{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
