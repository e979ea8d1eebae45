package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/basefolio/aeromgr/internal/app"
)

func main() {
	// Local .env files carry the signer key in development; absence is fine.
	_ = godotenv.Load()

	runner := app.NewRunner()
	os.Exit(runner.Run(os.Args[1:]))
}
