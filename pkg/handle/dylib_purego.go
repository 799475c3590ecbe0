// ABOUTME: purego binding of the script library ABI
// ABOUTME: The only place in the module that touches unsafe memory

//go:build darwin || linux

package handle

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

type puregoLibrary struct {
	handle uintptr

	metadataFn func(outLen *uintptr) unsafe.Pointer
	invokeFn   func(req *byte, reqLen uintptr, outLen *uintptr) unsafe.Pointer
	freeFn     func(ptr unsafe.Pointer, n uintptr)
}

func openLibrary(path string) (library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen: %w", err)
	}
	lib := &puregoLibrary{handle: h}
	for _, sym := range []struct {
		name string
		fn   any
	}{
		{SymbolMetadata, &lib.metadataFn},
		{SymbolInvoke, &lib.invokeFn},
		{SymbolFree, &lib.freeFn},
	} {
		addr, err := purego.Dlsym(h, sym.name)
		if err == nil && addr == 0 {
			err = errors.New("null address")
		}
		if err != nil {
			purego.Dlclose(h)
			return nil, fmt.Errorf("missing entry point %s: %w", sym.name, err)
		}
		purego.RegisterFunc(sym.fn, addr)
	}
	return lib, nil
}

// take copies n bytes at ptr into Go memory and hands the buffer back to
// the library.
func (l *puregoLibrary) take(ptr unsafe.Pointer, n uintptr) ([]byte, error) {
	if ptr == nil {
		return nil, errNullRecord
	}
	out := bytes.Clone(unsafe.Slice((*byte)(ptr), n))
	l.freeFn(ptr, n)
	return out, nil
}

func (l *puregoLibrary) metadata() ([]byte, error) {
	var n uintptr
	ptr := l.metadataFn(&n)
	return l.take(ptr, n)
}

func (l *puregoLibrary) invoke(req []byte) ([]byte, error) {
	var n uintptr
	ptr := l.invokeFn(unsafe.SliceData(req), uintptr(len(req)), &n)
	runtime.KeepAlive(req)
	return l.take(ptr, n)
}

func (l *puregoLibrary) close() error {
	return purego.Dlclose(l.handle)
}
