// ABOUTME: Shared scaffolding for dispatcher tests: the test binary acts as a script
// ABOUTME: Environment variables choose the script's name, version, type and behavior

package host

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/script"
)

const (
	envMode    = "HOOKWIRE_TEST_SCRIPT"
	envName    = "HOOKWIRE_TEST_NAME"
	envVersion = "HOOKWIRE_TEST_VERSION"
	envType    = "HOOKWIRE_TEST_TYPE"
	envKinds   = "HOOKWIRE_TEST_KINDS"
	envFail    = "HOOKWIRE_TEST_FAIL"
)

var (
	greetHook = hook.Define[string, string]("greet")
	crashHook = hook.Define[int, int]("crash")
	sleepHook = hook.Define[int, int]("sleep")
	pingHook  = hook.Define[struct{}, string]("ping")
)

func TestMain(m *testing.M) {
	if os.Getenv(envMode) == "script" {
		runScript()
		return
	}
	os.Exit(m.Run())
}

func runScript() {
	typ, err := hook.ParseScriptType(os.Getenv(envType))
	if err != nil {
		os.Exit(98)
	}
	name := os.Getenv(envName)
	rt := script.New(name, os.Getenv(envVersion), typ)

	kinds := map[string]bool{}
	for _, k := range strings.Split(os.Getenv(envKinds), ",") {
		if k != "" {
			kinds[k] = true
		}
	}
	want := func(k hook.Kind) bool { return len(kinds) == 0 || kinds[string(k)] }

	if want(greetHook.Kind()) {
		script.Handle(rt, greetHook, func(_ context.Context, in string) (string, error) {
			if os.Getenv(envFail) != "" {
				return "", errors.New("greeting refused")
			}
			return name + ":" + in, nil
		})
	}
	if want(crashHook.Kind()) {
		script.Handle(rt, crashHook, func(_ context.Context, code int) (int, error) {
			os.Exit(code)
			return 0, nil
		})
	}
	if want(sleepHook.Kind()) {
		script.Handle(rt, sleepHook, func(_ context.Context, ms int) (int, error) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return ms, nil
		})
	}
	if want(pingHook.Kind()) {
		script.Handle(rt, pingHook, func(context.Context, struct{}) (string, error) {
			return "pong", nil
		})
	}
	script.Main(rt)
}

type scriptSpec struct {
	name    string
	version string
	typ     hook.ScriptType
	// reports overrides the type the script claims for itself.
	reports hook.ScriptType
	kinds   string
	fail    bool
}

func candidate(t *testing.T, s scriptSpec) Candidate {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	reports := s.reports
	if reports == hook.Unknown {
		reports = s.typ
	}
	version := s.version
	if version == "" {
		version = "1.2.0"
	}
	env := []string{
		envMode + "=script",
		envName + "=" + s.name,
		envVersion + "=" + version,
		envType + "=" + reports.String(),
		envKinds + "=" + s.kinds,
	}
	if s.fail {
		env = append(env, envFail+"=1")
	}
	return Candidate{Path: exe, Type: s.typ, Env: env}
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) ofType(t EventType) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func shutdown(t *testing.T, d *Dispatcher) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		d.Shutdown(ctx)
	})
}

// registrationErrors flattens a joined registration error.
func registrationErrors(err error) []*RegistrationError {
	var out []*RegistrationError
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		var re *RegistrationError
		if errors.As(err, &re) {
			out = append(out, re)
		}
		return out
	}
	for _, e := range joined.Unwrap() {
		var re *RegistrationError
		if errors.As(e, &re) {
			out = append(out, re)
		}
	}
	return out
}
