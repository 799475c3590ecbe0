// ABOUTME: Script libraries are unavailable on this platform
// ABOUTME: Every open attempt fails so the candidate is reported as a load error

//go:build !(darwin || linux)

package handle

import (
	"fmt"
	"runtime"
)

func openLibrary(string) (library, error) {
	return nil, fmt.Errorf("dynamic libraries are not supported on %s", runtime.GOOS)
}
