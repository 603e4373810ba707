package cli

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/securapass/internal/client/client"
	"github.com/dmitrijs2005/securapass/internal/client/config"
)

// newFlagSet returns a quiet flag set for a REPL command. Parse errors are
// returned to the caller instead of being printed.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func usageError(usage string) error {
	return fmt.Errorf("%w: usage: %s", client.ErrInvalidInput, usage)
}

// modeFlags adds -sync and -async to fs. The returned func resolves the mode
// after parsing, falling back to def.
func modeFlags(fs *flag.FlagSet, def string) func() (string, error) {
	syncMode := fs.Bool("sync", false, "wait for the result")
	asyncMode := fs.Bool("async", false, "run as a background job")
	return func() (string, error) {
		switch {
		case *syncMode && *asyncMode:
			return "", fmt.Errorf("%w: -sync and -async are exclusive", client.ErrInvalidInput)
		case *syncMode:
			return config.ModeSync, nil
		case *asyncMode:
			return config.ModeAsync, nil
		}
		return def, nil
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", client.ErrInvalidInput, s)
	}
	return id, nil
}
