package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const DefaultCEJSTPath = "data/communities-2022-03-30-0033GMT.csv"

// Config holds every input of one report run.
type Config struct {
	CEJSTPath string       `toml:"cejst"`
	Output    string       `toml:"output"`
	Workbook  string       `toml:"workbook"`
	Summary   string       `toml:"summary"`
	Bins      []float64    `toml:"bins"`
	Census    CensusConfig `toml:"census"`
	Theme     ThemeConfig  `toml:"theme"`
}

func DefaultConfig() Config {
	return Config{
		CEJSTPath: DefaultCEJSTPath,
		Output:    DefaultChartPath,
		Bins:      DefaultBinEdges(),
		Census: CensusConfig{
			BaseURL: DefaultCensusURL,
			Year:    DefaultCensusYear,
			Workers: 1,
		},
		Theme: DefaultThemeConfig(),
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path returns the
// defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("read config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.CEJSTPath == "" {
		errs = append(errs, errors.New("cejst path is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if c.Census.Key == "" {
		errs = append(errs, errors.New("census api key is required"))
	}
	if c.Census.Year <= 0 {
		errs = append(errs, fmt.Errorf("invalid census year %d", c.Census.Year))
	}
	if c.Census.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Census.Workers))
	}
	if c.Census.Timeout < 0 {
		errs = append(errs, fmt.Errorf("negative timeout %s", c.Census.Timeout))
	}
	if _, err := NewBins(c.Bins); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Theme.Theme(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
