package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	SupabaseURL   string
	SupabaseKey   string
	TelegramToken string
	CronSecret    string
}

func LoadConfig() (*Config, error) {
	// .env есть только при локальном запуске; в serverless-окружении
	// переменные приходят из окружения платформы
	_ = godotenv.Load()

	return &Config{
		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		SupabaseKey:   os.Getenv("SUPABASE_KEY"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		CronSecret:    os.Getenv("CRON_SECRET"),
	}, nil
}
