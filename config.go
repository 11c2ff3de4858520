package procman

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/viant/afs"
	"github.com/viant/procman/model/process"
	"github.com/viant/procman/runtime/table"
	"github.com/viant/procman/service/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the process manager
// configuration. It can be populated from YAML, TOML or JSON; zero-valued
// fields inherit their package defaults.
type Config struct {
	Domains  []*DomainConfig `json:"domains" yaml:"domains" toml:"domains"`
	Factory  FactoryConfig   `json:"factory" yaml:"factory" toml:"factory"`
	Events   EventsConfig    `json:"events" yaml:"events" toml:"events"`
	Snapshot SnapshotConfig  `json:"snapshot" yaml:"snapshot" toml:"snapshot"`
	Tracing  TracingConfig   `json:"tracing" yaml:"tracing" toml:"tracing"`
}

// DomainConfig describes one scheduling domain (typically one CPU).
type DomainConfig struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	// MaxProcs is the process limit, fixed for the lifetime of the domain.
	MaxProcs int `json:"maxProcs" yaml:"maxProcs" toml:"max-procs"`
	// Scheduler names the selection policy: round-robin or priority.
	Scheduler string `json:"scheduler" yaml:"scheduler" toml:"scheduler"`
	// IdleEntry, when set, makes Boot create and register an idle process.
	IdleEntry string `json:"idleEntry,omitempty" yaml:"idleEntry,omitempty" toml:"idle-entry"`
}

// FactoryConfig configures the sequential process factory.
type FactoryConfig struct {
	FirstID uint32 `json:"firstID" yaml:"firstID" toml:"first-id"`
}

// EventsConfig configures lifecycle event publishing.
type EventsConfig struct {
	Enabled     bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	QueueBuffer int  `json:"queueBuffer" yaml:"queueBuffer" toml:"queue-buffer"`
}

// SnapshotConfig configures table snapshot persistence.
type SnapshotConfig struct {
	// URL is an afs location (file path, file://, mem://); empty disables persistence.
	URL string `json:"url,omitempty" yaml:"url,omitempty" toml:"url"`
}

// TracingConfig configures the OpenTelemetry stdout exporter.
type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" toml:"service-name"`
	OutputFile  string `json:"outputFile,omitempty" yaml:"outputFile,omitempty" toml:"output-file"`
}

// DefaultDomain is the name of the domain created by DefaultConfig.
const DefaultDomain = "cpu0"

// DefaultConfig returns a single domain configuration with the system-wide
// process limit and round-robin selection.
func DefaultConfig() *Config {
	return &Config{
		Domains: []*DomainConfig{{
			Name:      DefaultDomain,
			MaxProcs:  table.DefaultCapacity,
			Scheduler: scheduler.PolicyRoundRobin,
		}},
		Factory: FactoryConfig{FirstID: 1},
		Events:  EventsConfig{QueueBuffer: 256},
		Tracing: TracingConfig{ServiceName: "procman"},
	}
}

// Init fills zero-valued fields with defaults.
func (c *Config) Init() {
	if len(c.Domains) == 0 {
		c.Domains = DefaultConfig().Domains
	}
	for _, domain := range c.Domains {
		if domain == nil {
			continue
		}
		if domain.MaxProcs == 0 {
			domain.MaxProcs = table.DefaultCapacity
		}
		if domain.Scheduler == "" {
			domain.Scheduler = scheduler.PolicyRoundRobin
		}
	}
	if c.Factory.FirstID == 0 {
		c.Factory.FirstID = 1
	}
	if c.Events.QueueBuffer == 0 {
		c.Events.QueueBuffer = 256
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "procman"
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if len(c.Domains) == 0 {
		errs = append(errs, fmt.Errorf("at least one domain is required"))
	}
	names := map[string]bool{}
	for i, domain := range c.Domains {
		if domain == nil {
			errs = append(errs, fmt.Errorf("domains[%d] is empty", i))
			continue
		}
		if domain.Name == "" {
			errs = append(errs, fmt.Errorf("domains[%d].name is required", i))
		} else if strings.ContainsAny(domain.Name, `/\`) {
			errs = append(errs, fmt.Errorf("domain %q: name must not contain path separators", domain.Name))
		} else if names[domain.Name] {
			errs = append(errs, fmt.Errorf("domain %q is defined more than once", domain.Name))
		}
		names[domain.Name] = true
		if domain.MaxProcs <= 0 {
			errs = append(errs, fmt.Errorf("domain %q: maxProcs must be > 0", domain.Name))
		}
		if !scheduler.Valid(domain.Scheduler) {
			errs = append(errs, fmt.Errorf("domain %q: unknown scheduler %q", domain.Name, domain.Scheduler))
		}
		if domain.IdleEntry != "" {
			if _, err := process.ParseAddress(domain.IdleEntry); err != nil {
				errs = append(errs, fmt.Errorf("domain %q: idleEntry: %w", domain.Name, err))
			}
		}
	}
	if c.Events.QueueBuffer < 0 {
		errs = append(errs, fmt.Errorf("events.queueBuffer must be >= 0"))
	}
	return errors.Join(errs...)
}

// Domain returns the named domain configuration.
func (c *Config) Domain(name string) *DomainConfig {
	for _, domain := range c.Domains {
		if domain != nil && domain.Name == name {
			return domain
		}
	}
	return nil
}

// LoadConfig reads a YAML, TOML or JSON document from an afs location,
// applies defaults and validates it. The format follows the file extension;
// unknown extensions are treated as YAML.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	ret, err := DecodeConfig(data, path.Ext(URL))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	return ret, nil
}

// DecodeConfig decodes data in the format named by ext (.yaml, .yml, .toml, .json).
func DecodeConfig(data []byte, ext string) (*Config, error) {
	ret := &Config{}
	var err error
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		err = toml.Unmarshal(data, ret)
	case "json":
		err = json.Unmarshal(data, ret)
	default:
		err = yaml.Unmarshal(data, ret)
	}
	if err != nil {
		return nil, err
	}
	ret.Init()
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// YAML encodes the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
