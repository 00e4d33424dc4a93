//go:build windows

package main

import (
	"os"
)

// terminationSignals trigger a graceful shutdown of the server.
// Windows only delivers os.Interrupt (Ctrl+C).
var terminationSignals = []os.Signal{os.Interrupt}
