package app

import (
	"fmt"
	"io"
)

// Version is the application version, overridable at build time with
// -ldflags "-X github.com/taskbench/taskbench/internal/app.Version=...".
var Version = "dev"

// HasVersionFlag reports whether the argument list requests the version.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-version", "--version":
			return true
		}
	}
	return false
}

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "taskbench %s\n", Version)
}
