package main

import (
	"os"
	"runtime/debug"

	"github.com/kashguard/go-near-auth/cmd"
	"github.com/rs/zerolog/log"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Crashed")
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
