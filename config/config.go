package config

import (
	"fmt"
	"os"
	"xai/explain"
	"xai/policy"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the numeric knobs of an explanation session.
type Config struct {
	// Policy names the explained policy: "random" or "minimax".
	Policy string `yaml:"policy"`

	// Gamma discounts future returns in SVERL, within [0, 1].
	Gamma float64 `yaml:"gamma"`

	// DepthLimit caps the minimax search in plies. Nil searches to the end.
	DepthLimit *int `yaml:"depth_limit"`

	// Tolerance is the minimax tie threshold.
	Tolerance float64 `yaml:"tolerance"`

	// Mode is the SVERL attribution mode: "local" or "global".
	Mode string `yaml:"mode"`

	// Seed drives action sampling in self-play.
	Seed uint64 `yaml:"seed"`

	// ExplainMoves attaches a SVERL explanation to every self-play move.
	ExplainMoves bool `yaml:"explain_moves"`

	OutputDir string `yaml:"output_dir"`
	LogLevel  string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Policy:       policy.MinimaxName,
		Gamma:        explain.DefaultGamma,
		Tolerance:    policy.DefaultTolerance,
		Mode:         explain.Local.String(),
		Seed:         1,
		ExplainMoves: true,
		OutputDir:    "experiments",
		LogLevel:     zerolog.InfoLevel.String(),
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma %v outside of [0, 1]", c.Gamma)
	}
	if c.DepthLimit != nil && *c.DepthLimit < 0 {
		return fmt.Errorf("negative depth limit %d", *c.DepthLimit)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("negative tolerance %v", c.Tolerance)
	}
	if _, err := explain.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if _, err := c.NewPolicy(); err != nil {
		return err
	}
	return nil
}

// NewPolicy builds a fresh policy, with its own cache, from the config.
func (c Config) NewPolicy() (policy.Policy, error) {
	options := []policy.Option{policy.WithTolerance(c.Tolerance)}
	if c.DepthLimit != nil {
		options = append(options, policy.WithDepthLimit(*c.DepthLimit))
	}
	return policy.New(c.Policy, options...)
}

func (c Config) SVERLMode() explain.Mode {
	mode, _ := explain.ParseMode(c.Mode)
	return mode
}

func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
