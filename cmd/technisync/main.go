package main

import (
	"os"

	"github.com/lite-lake/technisync/internal/infrastructure/logger"
	"github.com/lite-lake/technisync/internal/interfaces/cli"
)

func main() {
	logger.Init(&logger.Config{
		Level:     logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		Format:    os.Getenv("LOG_FORMAT"),
		AddSource: os.Getenv("TECHNISYNC_DEBUG") != "",
	})

	cli.Execute()
}
