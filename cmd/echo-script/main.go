// ABOUTME: Dynamic-library example script exporting the hookwire C entry points
// ABOUTME: Build with: go build -buildmode=c-shared -o libecho.so ./cmd/echo-script

package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"fmt"
	"os"
	"unsafe"

	"github.com/mauromedda/hookwire/internal/shellapi"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/script"
)

const name = "echo"

var rt = newRuntime()

func newRuntime() *script.Runtime {
	r := script.New(name, shellapi.Version, hook.DynamicLibrary)
	script.Handle(r, shellapi.Eval, func(_ context.Context, line string) (string, error) {
		return line, nil
	})
	script.Handle(r, shellapi.Shutdown, func(context.Context, struct{}) (struct{}, error) {
		fmt.Fprintln(os.Stderr, "bye from echo-script")
		return struct{}{}, nil
	})
	return r
}

// export copies rec into C memory the host releases with hookwire_free.
func export(rec []byte, outLen *C.size_t) *C.uint8_t {
	if len(rec) == 0 {
		return nil
	}
	p := C.malloc(C.size_t(len(rec)))
	if p == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(p), len(rec)), rec)
	*outLen = C.size_t(len(rec))
	return (*C.uint8_t)(p)
}

//export hookwire_metadata
func hookwire_metadata(outLen *C.size_t) *C.uint8_t {
	rec, err := rt.MetadataRecord()
	if err != nil {
		return nil
	}
	return export(rec, outLen)
}

//export hookwire_invoke
func hookwire_invoke(req *C.uint8_t, reqLen C.size_t, outLen *C.size_t) *C.uint8_t {
	in := C.GoBytes(unsafe.Pointer(req), C.int(reqLen))
	rec, err := rt.InvokeRecord(context.Background(), in)
	if err != nil {
		return nil
	}
	return export(rec, outLen)
}

//export hookwire_free
func hookwire_free(ptr *C.uint8_t, _ C.size_t) {
	C.free(unsafe.Pointer(ptr))
}

func main() {}
