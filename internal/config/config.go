package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/armctl/internal/pid"
)

const (
	DefaultRate     = 100.0
	DefaultDuration = 10.0
	DefaultKp       = 0.5
	DefaultKi       = 0.05
	DefaultKd       = 0.0
	DefaultIMax     = 1.0
	DefaultIMin     = -1.0
	DefaultInertia  = 1.0
	DefaultDamping  = 1.0
)

var (
	ErrNoJoints      = errors.New("config: no joints configured")
	ErrDuplicateName = errors.New("config: duplicate joint name")
)

type JointConfig struct {
	Name  string    `yaml:"name"`
	Gains pid.Gains `yaml:"gains"`
}

type SimConfig struct {
	Inertia float64 `yaml:"inertia"`
	Damping float64 `yaml:"damping"`
}

type Config struct {
	Rate     float64       `yaml:"rate"`
	Duration float64       `yaml:"duration"`
	Joints   []JointConfig `yaml:"joints"`
	Sim      SimConfig     `yaml:"sim"`
}

func defaultGains() pid.Gains {
	return pid.Gains{
		Kp:   DefaultKp,
		Ki:   DefaultKi,
		Kd:   DefaultKd,
		IMax: DefaultIMax,
		IMin: DefaultIMin,
	}
}

func DefaultConfig() *Config {
	cfg := &Config{
		Rate:     DefaultRate,
		Duration: DefaultDuration,
		Sim: SimConfig{
			Inertia: DefaultInertia,
			Damping: DefaultDamping,
		},
	}
	names := []string{"arm_joint_1", "arm_joint_2", "arm_joint_3", "arm_joint_4", "arm_joint_5"}
	for _, n := range names {
		cfg.Joints = append(cfg.Joints, JointConfig{Name: n, Gains: defaultGains()})
	}
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Joints = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if len(cfg.Joints) == 0 {
		cfg.Joints = DefaultConfig().Joints
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Rate <= 0 {
		return errors.Errorf("config: rate must be positive, got %g", c.Rate)
	}
	if len(c.Joints) == 0 {
		return ErrNoJoints
	}
	seen := make(map[string]bool, len(c.Joints))
	for _, jc := range c.Joints {
		if jc.Name == "" {
			return errors.New("config: joint with empty name")
		}
		if seen[jc.Name] {
			return errors.Wrap(ErrDuplicateName, jc.Name)
		}
		seen[jc.Name] = true
		if err := jc.Gains.Validate(); err != nil {
			return errors.Wrapf(err, "joint %s", jc.Name)
		}
	}
	return nil
}

// JointNames returns the configured names in registry order.
func (c *Config) JointNames() []string {
	names := make([]string, len(c.Joints))
	for i, jc := range c.Joints {
		names[i] = jc.Name
	}
	return names
}
