package main

import (
	"github.com/joho/godotenv"

	"resumechat/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
