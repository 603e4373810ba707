package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/securapass/internal/flagx"
)

var knownFlags = []string{"-k", "-m", "-t", "-i", "-n", "-d", "-r", "-l", "-mode"}

// parseFlags populates Config fields from command-line flags:
//
//	-k string   cracker/hash service base URL
//	-m string   password manager base URL
//	-t string   bearer token
//	-i int      poll interval (seconds)
//	-n int      poll attempt limit, 0 for none
//	-d string   local cache path
//	-r string   reports directory
//	-l string   log level
//	-mode       default job mode, async or sync
//
// Other arguments are ignored, see flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.CrackerBaseURL, "k", cfg.CrackerBaseURL, "cracker service base URL")
	fs.StringVar(&cfg.ManagerBaseURL, "m", cfg.ManagerBaseURL, "password manager base URL")
	fs.StringVar(&cfg.AuthToken, "t", cfg.AuthToken, "bearer token")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "poll interval (in seconds)")
	fs.IntVar(&cfg.PollMaxAttempts, "n", cfg.PollMaxAttempts, "poll attempt limit")
	fs.StringVar(&cfg.CacheDSN, "d", cfg.CacheDSN, "local cache path")
	fs.StringVar(&cfg.ReportsDir, "r", cfg.ReportsDir, "reports directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "default job mode")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.PollInterval = time.Duration(*pollInterval) * time.Second
		}
	})
	return nil
}
