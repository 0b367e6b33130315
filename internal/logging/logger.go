// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cardline/cli/internal/xdg"
)

var (
	mu      sync.Mutex
	enabled bool
	logPath string
)

// Init enables the debug log when level is "debug". Lines go to cli.log in
// the XDG state dir, masked, so a debug trace can be shared without leaking
// credentials. Any other level leaves logging off; the CLI's normal output
// goes to the terminal, not here.
func Init(level string) {
	mu.Lock()
	defer mu.Unlock()

	if level != "debug" {
		enabled = false
		return
	}
	dir, err := xdg.StateDir()
	if err != nil {
		enabled = false
		return
	}
	logPath = filepath.Join(dir, "cli.log")
	enabled = true
}

// Debugf appends a masked, timestamped line to the debug log. A no-op unless
// Init enabled debug level; write failures are swallowed.
func Debugf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer f.Close()

	line := Mask(fmt.Sprintf(format, args...))
	fmt.Fprintf(f, "%s %s\n", time.Now().Format(time.RFC3339), line)
}
