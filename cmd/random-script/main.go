// ABOUTME: Daemon example script: answers random-number hooks from one process
// ABOUTME: Stays alive between hooks until the host closes its input

package main

import (
	"context"
	"math/rand/v2"

	"github.com/mauromedda/hookwire/internal/log"
	"github.com/mauromedda/hookwire/internal/shellapi"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/script"
)

const name = "randomize"

func main() {
	served := 0
	rt := script.New(name, shellapi.Version, hook.Daemon)
	script.Handle(rt, shellapi.RandomNumber, func(context.Context, struct{}) (uint64, error) {
		served++
		log.Debug("%s: request %d", name, served)
		return rand.Uint64N(100), nil
	})
	script.Handle(rt, shellapi.Ping, func(context.Context, struct{}) (shellapi.Pong, error) {
		return shellapi.Pong{Name: name, Version: shellapi.Version}, nil
	})
	script.Main(rt)
}
