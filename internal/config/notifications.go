package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

//go:embed notifications.default.yaml
var defaultNotificationsYAML []byte

const defaultSendTimeout = 10 * time.Second

// RuleConfig is one notification rule as written in the rules file.
// A rule name may appear once per channel.
type RuleConfig struct {
	Name    string `yaml:"name"`
	Status  string `yaml:"status"`
	Channel string `yaml:"channel"`
	// From optionally restricts the rule to transitions leaving one of these statuses.
	From    []string `yaml:"from,omitempty"`
	Subject string   `yaml:"subject,omitempty"`
	Body    string   `yaml:"body"`
}

// NotificationConfig is the start-up configuration of the order workflow and
// the notification engine. It is read once and never mutated afterwards.
type NotificationConfig struct {
	Statuses        []string                 `yaml:"statuses"`
	Transitions     map[string][]string      `yaml:"transitions"`
	SendTimeout     time.Duration            `yaml:"send_timeout"`
	ChannelTimeouts map[string]time.Duration `yaml:"channel_timeouts"`
	Rules           []RuleConfig             `yaml:"rules"`
}

// DefaultNotificationConfig returns the built-in workflow and rules.
func DefaultNotificationConfig() (*NotificationConfig, error) {
	return ParseNotificationConfig(defaultNotificationsYAML)
}

// LoadNotificationConfig reads the rules file at path. An empty path yields
// the built-in defaults; a path that does not exist is an error.
func LoadNotificationConfig(path string) (*NotificationConfig, error) {
	if path == "" {
		return DefaultNotificationConfig()
	}
	//nolint:gosec // path comes from admin-controlled configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %q: %w", path, err)
	}
	cfg, err := ParseNotificationConfig(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %q: %w", path, err)
	}
	return cfg, nil
}

// ParseNotificationConfig decodes YAML and applies defaults.
func ParseNotificationConfig(data []byte) (*NotificationConfig, error) {
	var cfg NotificationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing notification config: %w", err)
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if len(cfg.Statuses) == 0 {
		for _, s := range order.DefaultStatuses() {
			cfg.Statuses = append(cfg.Statuses, string(s))
		}
		if cfg.Transitions == nil {
			cfg.Transitions = make(map[string][]string)
			for from, tos := range order.DefaultEdges() {
				for _, to := range tos {
					cfg.Transitions[string(from)] = append(cfg.Transitions[string(from)], string(to))
				}
			}
		}
	}
	return &cfg, nil
}

// Workflow builds the order workflow described by the config.
func (c *NotificationConfig) Workflow() (*order.Workflow, error) {
	statuses := make([]order.Status, 0, len(c.Statuses))
	for _, s := range c.Statuses {
		statuses = append(statuses, order.ParseStatus(s))
	}
	edges := make(map[order.Status][]order.Status, len(c.Transitions))
	for from, tos := range c.Transitions {
		key := order.ParseStatus(from)
		for _, to := range tos {
			edges[key] = append(edges[key], order.ParseStatus(to))
		}
	}
	return order.NewWorkflow(statuses, edges)
}

// TimeoutFor returns the send timeout for a channel, falling back to SendTimeout.
func (c *NotificationConfig) TimeoutFor(channel string) time.Duration {
	if d, ok := c.ChannelTimeouts[channel]; ok && d > 0 {
		return d
	}
	if c.SendTimeout > 0 {
		return c.SendTimeout
	}
	return defaultSendTimeout
}
