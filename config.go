package bridge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/registrykit/bridge/service/dispatcher"
	"github.com/registrykit/bridge/service/gate"
	"github.com/registrykit/bridge/service/messaging"
	"github.com/registrykit/bridge/service/review"
	"github.com/registrykit/bridge/service/ticketing"
)

// Config is a serialisable representation of the bridge configuration. It
// can be populated from YAML or JSON; the zero value of every nested field
// inherits its package default.
type Config struct {
	Dispatcher dispatcher.Config `json:"dispatcher" yaml:"dispatcher"`
	Review     review.Config     `json:"review" yaml:"review"`
	Lists      gate.Lists        `json:"inclusionLists" yaml:"inclusionLists"`
	Ticketing  TicketingSettings `json:"ticketing" yaml:"ticketing"`
	Queue      QueueConfig       `json:"queue" yaml:"queue"`
}

// TicketingSettings extends the client settings with the bookkeeping
// parameters of the review board.
type TicketingSettings struct {
	ticketing.Config `yaml:",inline"`

	// Project keys the JQL used to locate a service's review ticket.
	Project string `json:"project" yaml:"project"`

	// TransitionID is the board transition that moves a ticket into the
	// in-review column.
	TransitionID string `json:"transitionId" yaml:"transitionId"`
}

// QueueConfig selects the action/telemetry queue implementation.
type QueueConfig struct {
	Vendor messaging.Vendor `json:"vendor" yaml:"vendor"`
	// BasePath roots the spool directories of the fs vendor.
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty"`
}

// DefaultConfig returns a Config populated with the standard settings.
func DefaultConfig() *Config {
	return &Config{
		Dispatcher: dispatcher.Config{
			MaxAllowedPaymentAmount: 1000000,
		},
		Review: review.Config{
			SensitivePaths: []string{
				"data.name",
				"data.description",
				"data.organization.name",
				"data.organization.fiscal_code",
				"data.metadata.scope",
				"data.metadata.privacy_url",
				"data.metadata.tos_url",
				"data.require_secure_channel",
				"data.max_allowed_payment_amount",
			},
		},
		Ticketing: TicketingSettings{Config: ticketing.DefaultConfig()},
		Queue:     QueueConfig{Vendor: messaging.VendorMemory},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Dispatcher.MaxAllowedPaymentAmount <= 0 {
		return fmt.Errorf("dispatcher.maxAllowedPaymentAmount must be > 0")
	}
	if len(c.Review.SensitivePaths) == 0 {
		return fmt.Errorf("review.sensitivePaths must not be empty")
	}
	switch c.Queue.Vendor {
	case messaging.VendorMemory:
	case messaging.VendorFS:
		if c.Queue.BasePath == "" {
			return fmt.Errorf("queue.basePath is required for the fs vendor")
		}
	default:
		return fmt.Errorf("unsupported queue vendor: %s", c.Queue.Vendor)
	}
	return nil
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
