package server

import (
	"os"
	"sync"

	logging "gopkg.in/op/go-logging.v1"
)

var logSetupOnce sync.Once

var logFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`,
)

// setupLogging wires the process-wide logging backend once. Every
// package-level logger obtained afterwards via newLogger shares this
// backend and format.
func setupLogging() {
	logSetupOnce.Do(func() {
		backend := logging.NewLogBackend(os.Stderr, "", 0)
		formatted := logging.NewBackendFormatter(backend, logFormat)
		leveled := logging.AddModuleLevel(formatted)
		leveled.SetLevel(logging.INFO, "")
		logging.SetBackend(leveled)
	})
}

func newLogger(module string) *logging.Logger {
	setupLogging()
	return logging.MustGetLogger(module)
}
