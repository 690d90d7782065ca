package main

import (
	"github.com/buildlane/ifcbridge/internal/server"
	"github.com/buildlane/ifcbridge/internal/util"
	"github.com/buildlane/ifcbridge/pkg/logger"
	"github.com/buildlane/ifcbridge/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
