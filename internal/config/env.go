// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings are the environment-level knobs that apply to every command.
type Settings struct {
	APIURL         string        `env:"SMCTL_API_URL"`
	Token          string        `env:"SMCTL_TOKEN"`
	WorkflowStatus string        `env:"SMCTL_WORKFLOW_STATUS"`
	CacheMaxAge    time.Duration `env:"SMCTL_CACHE_MAX_AGE" envDefault:"24h"`
	Retries        int           `env:"SMCTL_RETRIES" envDefault:"2"`
	Timeout        time.Duration `env:"SMCTL_TIMEOUT" envDefault:"2m"`
	AWS            AWSSettings   `envPrefix:"SMCTL_S3_"`
}

// AWSSettings configure s3:// upload sources. Empty values defer to the AWS
// shell environment.
type AWSSettings struct {
	Profile   string `env:"PROFILE"`
	Region    string `env:"REGION"`
	Endpoint  string `env:"ENDPOINT"`
	PathStyle bool   `env:"PATH_STYLE"`
}

// ParseEnv loads Settings from the environment.
func ParseEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.Retries < 0 {
		return Settings{}, fmt.Errorf("parse env: SMCTL_RETRIES must not be negative")
	}
	return s, nil
}
