package main

import (
	"os"

	"driveease/config"
	"driveease/helper"
	"driveease/shared/logger"

	"github.com/rs/zerolog/log"
)

const usage = "usage: migrate up|down|step-up|drop|version"

func main() {
	logger.InitLogger()

	if len(os.Args) != 2 {
		log.Fatal().Msg(usage)
	}

	cfg := config.Get()

	logger.SetLogLevel(cfg)

	if err := helper.Run(cfg, helper.Action(os.Args[1])); err != nil {
		log.Fatal().Err(err).Msg(usage)
	}
}
