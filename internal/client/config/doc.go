// Package config loads runtime configuration for the SecuraPass CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config, or SECURAPASS_CONFIG.
//  3. SECURAPASS_TOKEN for the bearer token.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-k string   cracker/hash service base URL
//	-m string   password manager base URL
//	-t string   bearer token
//	-i int      job poll interval (seconds)
//	-n int      job poll attempt limit
//	-d string   local cache path
//	-r string   reports directory
//	-l string   log level (debug, info, warn, error)
//	-mode       default job mode (async, sync)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "1s" or integer
// nanoseconds:
//
//	{
//	  "cracker_base_url": "http://127.0.0.1:5000",
//	  "manager_base_url": "http://127.0.0.1:8000",
//	  "poll_interval": "1s",
//	  "poll_deadline": "10m",
//	  "mode": "async",
//	  "s3": {"endpoint": "http://127.0.0.1:9000", "bucket": "reports"}
//	}
package config
