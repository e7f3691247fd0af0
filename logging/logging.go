// Package logging builds the structured logger shared by the server and its tools.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/inconshreveable/log15/v3"
)

// New installs a logfmt handler writing to w at the given level on the root
// logger and returns it. Child loggers created with log15.New anywhere in the
// process follow the same handler.
func New(level string, w io.Writer) (log15.Logger, error) {
	lvl, err := log15.LvlFromString(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	root := log15.Root()
	root.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(w, log15.LogfmtFormat())))
	return root, nil
}

// Discard returns a logger that drops everything.
func Discard() log15.Logger {
	l := log15.New()
	l.SetHandler(log15.DiscardHandler())
	return l
}
