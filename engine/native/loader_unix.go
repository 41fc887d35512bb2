// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build linux || darwin

package native

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/ebitengine/purego"
)

func openLibrary(baseDir string) (uintptr, error) {
	libPath := filepath.Join(baseDir, LibraryName())
	absPath, err := filepath.Abs(libPath)
	if err != nil {
		absPath = libPath
	}
	handle, err := purego.Dlopen(absPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s from %s: %w", LibraryName(), absPath, err)
	}
	return handle, nil
}

func symbolAddr(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

// LibraryName is the file name of the bridge library on this platform.
func LibraryName() string {
	if runtime.GOOS == "darwin" {
		return "libgraphene_bridge.dylib"
	}
	return "libgraphene_bridge.so"
}
