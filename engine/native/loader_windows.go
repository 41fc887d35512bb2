// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build windows

package native

import (
	"fmt"
	"path/filepath"
	"syscall"
)

func openLibrary(baseDir string) (uintptr, error) {
	dllPath := filepath.Join(baseDir, LibraryName())
	absPath, err := filepath.Abs(dllPath)
	if err != nil {
		absPath = dllPath
	}
	lib, err := syscall.LoadLibrary(absPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s from %s: %w", LibraryName(), absPath, err)
	}
	return uintptr(lib), nil
}

func symbolAddr(handle uintptr, name string) (uintptr, error) {
	sym, err := syscall.GetProcAddress(syscall.Handle(handle), name)
	if err != nil {
		return 0, err
	}
	if sym == 0 {
		return 0, fmt.Errorf("symbol %q not found in DLL", name)
	}
	return sym, nil
}

// LibraryName is the file name of the bridge library on this platform.
func LibraryName() string {
	return "graphene_bridge.dll"
}
