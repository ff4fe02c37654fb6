package config

import "time"

// Defaults for operator settings.
const (
	DefaultImage                          = "citusdata/citus:12.1"
	DefaultImagePullPolicy                = "IfNotPresent"
	DefaultPassword                       = "yourpassword"
	DefaultPort                     int32 = 5432
	DefaultResyncInterval                 = 10 * time.Second
	DefaultErrorRequeueAfter              = 5 * time.Second
	DefaultMaxConcurrentReconciles        = 4
	DefaultRegistrationBackoffLimit int32 = 10
)

// Config holds the operator settings.
type Config struct {
	// Image is the Citus container image for master, workers and the registration Job.
	Image string `yaml:"image"`

	// ImagePullPolicy is applied to every container.
	ImagePullPolicy string `yaml:"imagePullPolicy"`

	// Password is the placeholder PostgreSQL superuser password.
	Password string `yaml:"password"`

	// Port is the PostgreSQL port exposed by every node.
	Port int32 `yaml:"port"`

	// ResyncInterval is how often a converged cluster is re-checked.
	ResyncInterval time.Duration `yaml:"resyncInterval"`

	// ErrorRequeueAfter is the fixed delay before a failed reconcile is retried.
	ErrorRequeueAfter time.Duration `yaml:"errorRequeueAfter"`

	// MaxConcurrentReconciles bounds how many clusters reconcile at once.
	MaxConcurrentReconciles int `yaml:"maxConcurrentReconciles"`

	// RegistrationBackoffLimit is the retry budget of the worker registration Job.
	RegistrationBackoffLimit int32 `yaml:"registrationBackoffLimit"`
}

// Default returns a Config with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Image == "" {
		c.Image = DefaultImage
	}
	if c.ImagePullPolicy == "" {
		c.ImagePullPolicy = DefaultImagePullPolicy
	}
	if c.Password == "" {
		c.Password = DefaultPassword
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ResyncInterval == 0 {
		c.ResyncInterval = DefaultResyncInterval
	}
	if c.ErrorRequeueAfter == 0 {
		c.ErrorRequeueAfter = DefaultErrorRequeueAfter
	}
	if c.MaxConcurrentReconciles == 0 {
		c.MaxConcurrentReconciles = DefaultMaxConcurrentReconciles
	}
	if c.RegistrationBackoffLimit == 0 {
		c.RegistrationBackoffLimit = DefaultRegistrationBackoffLimit
	}
}
