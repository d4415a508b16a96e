package main

import (
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-swarmops/internal/interfaces/cli"
)

func main() {
	logger.Init(logger.ConfigFromEnv("SWARMOPS"))

	cli.Execute()
}
