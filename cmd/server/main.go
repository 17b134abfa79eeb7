package main

import (
	"github.com/prolong-bio/prolong/internal/server"
	"github.com/prolong-bio/prolong/internal/util"
	"github.com/prolong-bio/prolong/pkg/logger"
	"github.com/prolong-bio/prolong/pkg/logger/console"

	_ "github.com/lib/pq"
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
