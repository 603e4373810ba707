package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/securapass/internal/flagx"
	"github.com/dmitrijs2005/securapass/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration so
// they may be written as "1s" or as integer nanoseconds. Absent fields keep
// their current value.
type JsonConfig struct {
	CrackerBaseURL  *string         `json:"cracker_base_url"`
	ManagerBaseURL  *string         `json:"manager_base_url"`
	AuthToken       *string         `json:"auth_token"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	RetryAttempts   *int            `json:"retry_attempts"`
	RetryDelay      *timex.Duration `json:"retry_delay"`
	PollInterval    *timex.Duration `json:"poll_interval"`
	PollMaxAttempts *int            `json:"poll_max_attempts"`
	PollDeadline    *timex.Duration `json:"poll_deadline"`
	Mode            *string         `json:"mode"`
	CacheDSN        *string         `json:"cache_dsn"`
	ReportsDir      *string         `json:"reports_dir"`
	LogLevel        *string         `json:"log_level"`
	S3              *JsonS3         `json:"s3"`
}

type JsonS3 struct {
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// parseJson overlays cfg with the file named by -c/-config or
// SECURAPASS_CONFIG. Nothing happens when no file is named.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	setString(&cfg.CrackerBaseURL, jc.CrackerBaseURL)
	setString(&cfg.ManagerBaseURL, jc.ManagerBaseURL)
	setString(&cfg.AuthToken, jc.AuthToken)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setInt(&cfg.RetryAttempts, jc.RetryAttempts)
	setDuration(&cfg.RetryDelay, jc.RetryDelay)
	setDuration(&cfg.PollInterval, jc.PollInterval)
	setInt(&cfg.PollMaxAttempts, jc.PollMaxAttempts)
	setDuration(&cfg.PollDeadline, jc.PollDeadline)
	setString(&cfg.Mode, jc.Mode)
	setString(&cfg.CacheDSN, jc.CacheDSN)
	setString(&cfg.ReportsDir, jc.ReportsDir)
	setString(&cfg.LogLevel, jc.LogLevel)

	if s := jc.S3; s != nil {
		region := cfg.S3.Region
		if s.Region != "" {
			region = s.Region
		}
		cfg.S3 = S3{
			Endpoint:  s.Endpoint,
			Region:    region,
			Bucket:    s.Bucket,
			AccessKey: s.AccessKey,
			SecretKey: s.SecretKey,
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
