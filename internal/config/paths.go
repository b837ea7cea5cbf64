package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveRuntimePath resolves a runtime directory. Relative paths are anchored
// at the executable's directory so the service behaves the same regardless of
// the working directory it was started from.
func ResolveRuntimePath(raw string, fallbackSubdir string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallbackSubdir)
		if target == "" {
			return executableDir()
		}
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(executableDir(), target))
}

func executableDir() string {
	if exe, err := os.Executable(); err == nil && strings.TrimSpace(exe) != "" {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil && strings.TrimSpace(resolved) != "" {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil && strings.TrimSpace(wd) != "" {
		return wd
	}
	return "."
}
