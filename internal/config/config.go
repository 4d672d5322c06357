// Package config loads and validates the environment configuration shared by
// the notification lambdas. Each lambda requires a subset of the surface and
// asks for it explicitly at construction; nothing reads the process
// environment after that point.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	apperrors "cicd-notifier/internal/errors"
	"cicd-notifier/internal/timewindow"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the full environment surface. Optional members are validated for
// shape here; presence requirements are per-lambda and enforced by the
// Require* accessors.
type Config struct {
	// Region the enrichment and history queries run against, e.g. "ap-northeast-1".
	Region string `envconfig:"REGION"`

	// Account is the AWS account id used to construct console URLs.
	Account string `envconfig:"ACCOUNT" validate:"omitempty,len=12,numeric"`

	// UTCOffset is the fixed offset of the reporting time zone in hours,
	// e.g. 9 for Asia/Tokyo, -8 for America/Los_Angeles.
	UTCOffset *int `envconfig:"UTC_OFFSET" validate:"omitempty,min=-12,max=14"`

	// BaseLocalTime anchors the rolling day window, 24-hour "HH:MM".
	BaseLocalTime string `envconfig:"BASE_LOCAL_TIME" validate:"omitempty,datetime=15:04"`

	// NoticeTargets optionally carries the routing table as JSON when it is
	// not delivered inside the event or via Parameter Store.
	NoticeTargets string `envconfig:"NOTICE_TARGETS"`

	// DisableSSM switches configuration lookups from Parameter Store to
	// plain environment variables, for local runs.
	DisableSSM bool `envconfig:"DISABLE_SSM"`

	// Env names the deployment environment, used as the Parameter Store path
	// prefix.
	Env string `envconfig:"ENV" default:"dev"`
}

// Load reads the environment once and validates field shapes. Fails fast on
// malformed values; never substitutes defaults for required settings.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}
	return &cfg, nil
}

// RequireRegion returns the region or a configuration error when unset.
func (c *Config) RequireRegion() (string, error) {
	if c.Region == "" {
		return "", apperrors.ErrRegionRequired
	}
	return c.Region, nil
}

// RequireAccount returns the account id or a configuration error when unset.
func (c *Config) RequireAccount() (string, error) {
	if c.Account == "" {
		return "", apperrors.ErrAccountRequired
	}
	return c.Account, nil
}

// RequireUTCOffset returns the validated UTC offset.
func (c *Config) RequireUTCOffset() (int, error) {
	if c.UTCOffset == nil {
		return 0, apperrors.ErrInvalidUTCOffset
	}
	if err := timewindow.ValidateUTCOffset(*c.UTCOffset); err != nil {
		return 0, err
	}
	return *c.UTCOffset, nil
}

// RequireWindow returns the UTC offset and parsed base local time needed for
// day-window arithmetic.
func (c *Config) RequireWindow() (int, timewindow.LocalTime, error) {
	offset, err := c.RequireUTCOffset()
	if err != nil {
		return 0, timewindow.LocalTime{}, err
	}
	if c.BaseLocalTime == "" {
		return 0, timewindow.LocalTime{}, fmt.Errorf("%w: BASE_LOCAL_TIME is not set", apperrors.ErrInvalidLocalTime)
	}
	base, err := timewindow.ParseLocalTime(c.BaseLocalTime)
	if err != nil {
		return 0, timewindow.LocalTime{}, err
	}
	return offset, base, nil
}
