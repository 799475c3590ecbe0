// ABOUTME: Hook contract shared by the example shell host and its scripts
// ABOUTME: Each hook pairs an input type with the output type scripts must return

// Package shellapi defines the hooks of the interactive example shell.
package shellapi

import "github.com/mauromedda/hookwire/pkg/hook"

// Version is the contract version the example scripts report.
const Version = "1.0.0"

// Requirement is what the shell host demands of its scripts.
const Requirement = "^1.0.0"

var (
	// Eval asks a script to evaluate one input line.
	Eval = hook.Define[string, string]("eval")
	// RandomNumber asks for a number in [0, 100).
	RandomNumber = hook.Define[struct{}, uint64]("random-number")
	// Shutdown lets scripts clean up before the host exits.
	Shutdown = hook.Define[struct{}, struct{}]("shutdown")
	// Ping checks that a script is alive and reports who it is.
	Ping = hook.Define[struct{}, Pong]("ping")
)

// Pong answers Ping.
type Pong struct {
	Name    string `json:"name" cbor:"1,keyasint"`
	Version string `json:"version" cbor:"2,keyasint"`
}
