package main

import (
	"github.com/joho/godotenv"

	"github.com/Jilaskel/Quiz-Back/internal/cli"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cli.Execute()
}
