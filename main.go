package main

import (
	"os"

	"github.com/joho/godotenv"

	"wyboard/internal/cli"
)

func main() {
	// .env is optional; values already in the environment win
	_ = godotenv.Load()

	os.Exit(cli.Execute())
}
