package app

import "github.com/durga1023/ContactUsRepository/pkg/logger"

// ConfigureLogging initialises the global zap logger from configuration.
func ConfigureLogging(level string) error {
	return logger.Init(level)
}
