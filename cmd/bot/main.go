package main

import (
	"log"

	"github.com/quantumhabit/habit_bot/internal/bot"
	"github.com/quantumhabit/habit_bot/internal/config"
	"github.com/quantumhabit/habit_bot/internal/repository"
	"github.com/quantumhabit/habit_bot/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		log.Fatal(err)
	}

	service := service.NewHabitFlow(repo)

	bot, err := bot.NewBot(cfg.TelegramToken, service)
	if err != nil {
		log.Fatal(err)
	}

	if err := bot.Start(); err != nil {
		log.Fatal(err)
	}
}
