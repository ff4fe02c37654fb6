package config

import "fmt"

// Validate checks the configuration for values the operator cannot run with.
func (c *Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("image is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	if c.ResyncInterval < 0 {
		return fmt.Errorf("resyncInterval must not be negative, got %s", c.ResyncInterval)
	}
	if c.ErrorRequeueAfter < 0 {
		return fmt.Errorf("errorRequeueAfter must not be negative, got %s", c.ErrorRequeueAfter)
	}
	if c.MaxConcurrentReconciles < 1 {
		return fmt.Errorf("maxConcurrentReconciles must be at least 1, got %d", c.MaxConcurrentReconciles)
	}
	if c.RegistrationBackoffLimit < 0 {
		return fmt.Errorf("registrationBackoffLimit must not be negative, got %d", c.RegistrationBackoffLimit)
	}
	switch c.ImagePullPolicy {
	case "Always", "IfNotPresent", "Never":
	default:
		return fmt.Errorf("unsupported imagePullPolicy %q", c.ImagePullPolicy)
	}
	return nil
}
