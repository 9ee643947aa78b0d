package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxIntHops is the deepest telemetry chain the header model understands.
const MaxIntHops = 3

// DefaultIPProtocol is the IP protocol carrying telemetry transport frames.
const DefaultIPProtocol = 0xFD

// EngineConfig selects and tunes the analytics engine.
type EngineConfig struct {
	Type                 string `yaml:"type"`      // oinc | simple | logger | int-logger
	Source               string `yaml:"source"`    // live | pcap | nats
	Interface            string `yaml:"interface"` // capture interface for the live source
	PcapFile             string `yaml:"pcap_file"` // capture file for the pcap source
	IPProtocol           uint8  `yaml:"ip_protocol"`
	IntHops              int    `yaml:"int_hops"`
	PacketCountThreshold uint64 `yaml:"packet_count_threshold"`
	SampleInterval       string `yaml:"sample_interval"`
	RenotifyInterval     string `yaml:"renotify_interval"`
}

// SDNConfig points at the SDN controller's HTTP interface.
type SDNConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// ProbeConfig holds the NATS connection details shared by the probe
// publisher and the stream consumer.
type ProbeConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig holds connection details for the attack-event store.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// AttackLogConfig enables durable recording of emitted attack notifications.
type AttackLogConfig struct {
	Enabled    bool             `yaml:"enabled"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// APIConfig configures the is-api query server.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	SDN       SDNConfig       `yaml:"sdn"`
	Probe     ProbeConfig     `yaml:"probe"`
	AttackLog AttackLogConfig `yaml:"attack_log"`
	API       APIConfig       `yaml:"api"`
}

// LoadConfig reads the configuration from a YAML file, applies defaults and
// validates it. Invalid configuration is fatal at startup, never a per-packet
// soft failure.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	e := &c.Engine
	if e.Type == "" {
		e.Type = "simple"
	}
	if e.Source == "" {
		e.Source = "live"
	}
	if e.IPProtocol == 0 {
		e.IPProtocol = DefaultIPProtocol
	}
	if e.PacketCountThreshold == 0 {
		e.PacketCountThreshold = 100
	}
	if e.SampleInterval == "" {
		e.SampleInterval = "60s"
	}
	if e.RenotifyInterval == "" {
		e.RenotifyInterval = "1s"
	}
	if c.SDN.Timeout == "" {
		c.SDN.Timeout = "3s"
	}
	if c.Probe.Subject == "" {
		c.Probe.Subject = "intsentry.records"
	}
}

// Validate checks the settings the engines cannot recover from at runtime.
func (c *Config) Validate() error {
	e := &c.Engine
	if e.IntHops < 0 || e.IntHops > MaxIntHops {
		return fmt.Errorf("int_hops must be between 0 and %d, got %d", MaxIntHops, e.IntHops)
	}
	switch e.Source {
	case "live", "pcap", "nats":
	default:
		return fmt.Errorf("unknown engine source: %q", e.Source)
	}
	if _, err := e.SampleIntervalDuration(); err != nil {
		return err
	}
	if _, err := e.RenotifyIntervalDuration(); err != nil {
		return err
	}
	if _, err := c.SDN.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// SampleIntervalDuration parses the counting window.
func (e *EngineConfig) SampleIntervalDuration() (time.Duration, error) {
	d, err := time.ParseDuration(e.SampleInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid sample_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("sample_interval must be positive, got %s", d)
	}
	return d, nil
}

// RenotifyIntervalDuration parses the notification debounce interval.
func (e *EngineConfig) RenotifyIntervalDuration() (time.Duration, error) {
	d, err := time.ParseDuration(e.RenotifyInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid renotify_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("renotify_interval must be positive, got %s", d)
	}
	return d, nil
}

// TimeoutDuration parses the bounded timeout for controller calls.
func (s *SDNConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid sdn timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("sdn timeout must be positive, got %s", d)
	}
	return d, nil
}
