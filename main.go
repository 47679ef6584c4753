package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"boot-upgrade-bench/cmd"
)

func main() {
	// Pretty console logger by default; the run command switches to JSON on request
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cmd.Execute()
}
