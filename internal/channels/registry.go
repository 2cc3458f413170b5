package channels

import (
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/config"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
)

// NewRegistryFromConfig builds a sender registry with the channels enabled
// in configuration
func NewRegistryFromConfig(cfg config.ChannelsConfig, log *logger.Logger) *Registry {
	registry := NewRegistry()

	if cfg.Email.Enabled {
		registry.Register(models.ChannelEmail, NewEmailSender(cfg.Email, log))
	}
	if cfg.Line.Enabled {
		registry.Register(models.ChannelLine, NewLineSender(cfg.Line, log))
	}
	if cfg.SMS.Enabled {
		registry.Register(models.ChannelSMS, NewSMSSender(cfg.SMS, log))
	}

	return registry
}
