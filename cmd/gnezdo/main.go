package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/gnezdo/gnezdo/internal/app"
)

func main() {
	// Best effort: a missing .env just means config comes from real envs.
	_ = godotenv.Load()

	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ gnezdo failed to start: %v", err)
	}
}
