// Package config holds the explicit runtime configuration for the booking
// service. Every tunable the business rules depend on (rates, retention
// window, job cadences) is a named field here rather than a literal in the
// code that uses it.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8088"`

	// Storage
	DataDir string `envconfig:"DATA_DIR" default:"/data"`

	// Pricing
	// ExtraGuestRate is the per-night surcharge applied for each guest above
	// a place's maximum occupancy.
	ExtraGuestRate float64 `envconfig:"EXTRA_GUEST_RATE" default:"1.5"`
	// CommissionRate is the platform's cut of a booking's total price.
	CommissionRate float64 `envconfig:"COMMISSION_RATE" default:"0.18"`

	// Lifecycle
	// RetentionDays is how long completed bookings are kept after their last
	// update before the cleanup sweep removes them.
	RetentionDays int `envconfig:"RETENTION_DAYS" default:"30"`

	// Job cadences
	AutoCompleteEvery time.Duration `envconfig:"AUTO_COMPLETE_EVERY" default:"24h"`
	CleanupEvery      time.Duration `envconfig:"CLEANUP_EVERY" default:"24h"`
	NotifyRetryEvery  time.Duration `envconfig:"NOTIFY_RETRY_EVERY" default:"10m"`
	TopRatedEvery     time.Duration `envconfig:"TOP_RATED_EVERY" default:"5m"`
	TopRatedLimit     int           `envconfig:"TOP_RATED_LIMIT" default:"10"`

	// Notification delivery attempts before a row is left failed for good.
	NotifyMaxAttempts int `envconfig:"NOTIFY_MAX_ATTEMPTS" default:"3"`

	// Optional AMQP fan-out for notifications. Empty URL disables it and
	// notifications are only recorded and broadcast locally.
	AMQPURL      string `envconfig:"AMQP_URL" default:""`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"homestay.events"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
