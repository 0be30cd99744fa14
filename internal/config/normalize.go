// internal/config/normalize.go
package config

import "path/filepath"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Channel.Path = filepath.Clean(cfg.Channel.Path)

	// Status name lives in 8 registers: max 16 ASCII characters.
	if len(cfg.Status.Name) > 16 {
		cfg.Status.Name = cfg.Status.Name[:16]
	}
}
