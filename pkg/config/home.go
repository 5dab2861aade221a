package config

import (
	"os"
	"path/filepath"
	"sync"
)

const envHome = "TRANSLATOR_RUNNER_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the directory that anchors the default app, reports and
// logs locations. It is $TRANSLATOR_RUNNER_HOME when set, the parent of the
// binary when it runs from <home>/bin, and the working directory otherwise.
// The result is computed once per process.
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome(homeEnv{
			getenv:     os.Getenv,
			executable: os.Executable,
			getwd:      os.Getwd,
		})
	})
	return homeDir
}

// GetReportsDir returns <home>/reports.
func GetReportsDir() string {
	return filepath.Join(GetHome(), "reports")
}

// GetLogsDir returns <home>/logs.
func GetLogsDir() string {
	return filepath.Join(GetHome(), "logs")
}

// ResetHome drops the cached home directory. Tests only.
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}

// homeEnv is the process state resolveHome reads.
type homeEnv struct {
	getenv     func(string) string
	executable func() (string, error)
	getwd      func() (string, error)
}

func resolveHome(p homeEnv) string {
	if dir := p.getenv(envHome); dir != "" {
		return dir
	}

	if exe, err := p.executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		if bin := filepath.Dir(exe); filepath.Base(bin) == "bin" {
			return filepath.Dir(bin)
		}
	}

	if cwd, err := p.getwd(); err == nil {
		return cwd
	}
	return "."
}
