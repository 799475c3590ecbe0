// ABOUTME: Script type and metadata reported by scripts during the handshake
// ABOUTME: ScriptType is fixed at discovery; Metadata is immutable after registration

//go:generate easyjson -all script.go

package hook

import (
	"fmt"
	"slices"
	"strings"
)

// ScriptType is the execution model of a script.
type ScriptType uint8

const (
	// Unknown is the zero value; scripts that do not report a type use it.
	Unknown ScriptType = iota
	// OneShot scripts are spawned once per delivered hook.
	OneShot
	// Daemon scripts run as one long-lived process serving hooks sequentially.
	Daemon
	// DynamicLibrary scripts are loaded into the host process.
	DynamicLibrary
)

var scriptTypeNames = map[ScriptType]string{
	Unknown:        "unknown",
	OneShot:        "oneshot",
	Daemon:         "daemon",
	DynamicLibrary: "dylib",
}

// String returns the manifest spelling of the type.
func (t ScriptType) String() string {
	if name, ok := scriptTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ScriptType(%d)", uint8(t))
}

// ParseScriptType parses a manifest spelling ("oneshot", "daemon", "dylib").
func ParseScriptType(s string) (ScriptType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oneshot", "one-shot", "one_shot":
		return OneShot, nil
	case "daemon":
		return Daemon, nil
	case "dylib", "dynamic", "dynamic-library", "dynamiclibrary":
		return DynamicLibrary, nil
	}
	return Unknown, fmt.Errorf("unknown script type %q (want oneshot, daemon or dylib)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t ScriptType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ScriptType) UnmarshalText(b []byte) error {
	if len(b) == 0 || string(b) == "unknown" {
		*t = Unknown
		return nil
	}
	parsed, err := ParseScriptType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Metadata is what a script reports about itself during the handshake.
// Version is the raw reported string so malformed versions stay diagnosable.
type Metadata struct {
	Name       string     `json:"name" cbor:"1,keyasint"`
	Version    string     `json:"version" cbor:"2,keyasint"`
	ListensFor []Kind     `json:"listens_for" cbor:"3,keyasint"`
	Type       ScriptType `json:"type,omitempty" cbor:"4,keyasint,omitempty"`
}

// Listens reports whether the script declared interest in kind.
func (m Metadata) Listens(kind Kind) bool {
	return slices.Contains(m.ListensFor, kind)
}

// Clone returns a deep copy, so callers cannot mutate a registered listening set.
func (m Metadata) Clone() Metadata {
	m.ListensFor = slices.Clone(m.ListensFor)
	return m
}
