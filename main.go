package main

import (
	"log"
	"os"
	"strings"

	"gprepo/cmd"
	"gprepo/pkg/logging"
	"gprepo/pkg/version"

	"golang.org/x/term"
)

func main() {
	if err := logging.Setup(false, "gprepo", version.Version); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// cobra has already printed the error.
	err := cmd.Execute()

	// Syncing stderr fails with "invalid argument" on pipes and some consoles.
	if term.IsTerminal(int(os.Stderr.Fd())) || isRegularFile(os.Stderr) {
		if syncErr := logging.Logger.Sync(); syncErr != nil {
			if !strings.Contains(strings.ToLower(syncErr.Error()), "invalid argument") {
				log.Printf("Logger sync failed: %v", syncErr)
			}
		}
	}

	if err != nil {
		os.Exit(1)
	}
}

// isRegularFile reports whether f is a regular file.
func isRegularFile(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
