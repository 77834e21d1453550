// Package logx wraps charmbracelet/log so every render component logs with
// a consistent prefix and structured key/value fields, in place of the
// teacher's bare log.Println/log.Printf status lines.
package logx

import (
	"os"

	"github.com/charmbracelet/log"
)

var base = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

// For returns a logger tagged with the given component name, e.g.
// logx.For("pool") or logx.For("lan.master").
func For(component string) *log.Logger {
	return base.With("component", component)
}

// SetLevel adjusts the global verbosity; called once from cmd/fractalrender
// based on the parsed CLI flags.
func SetLevel(l log.Level) {
	base.SetLevel(l)
}
