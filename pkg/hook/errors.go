// ABOUTME: Error taxonomy shared by the codec, handles, registry and dispatcher
// ABOUTME: Sentinels are always wrapped with context; match them with errors.Is

package hook

import "errors"

var (
	// ErrVersionMismatch means the script's reported version failed the host
	// requirement. Non-fatal: the script is registered Inactive.
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrProcess covers spawn failures, non-zero exits and broken channels.
	// A daemon that returned it stays unusable until re-registered.
	ErrProcess = errors.New("process error")

	// ErrLoad means a dynamic library could not be opened or lacks a required
	// entry point. The script never becomes usable.
	ErrLoad = errors.New("load error")

	// ErrCodec means bytes could not be encoded or decoded.
	ErrCodec = errors.New("codec error")

	// ErrNotListening means a trigger targeted a script that never declared
	// interest in the hook kind. No bytes were sent.
	ErrNotListening = errors.New("script is not listening for hook")

	// ErrNotFound means no script with the requested name is registered.
	ErrNotFound = errors.New("script not found")

	// ErrScript means the script answered with an error record, for example
	// because its handler failed. The script itself is still healthy.
	ErrScript = errors.New("script reported error")

	// ErrDisabled means dynamic-library scripts were not enabled by the host.
	ErrDisabled = errors.New("dynamic libraries disabled")
)
