package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/saurabhmj11/excel-mock-interviewer/cmd"
)

func main() {
	// Best-effort: API keys may live in a local .env file.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
