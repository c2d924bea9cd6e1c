package universe

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/screener/internal/contracts"
)

// FileConfig is the YAML universe file: an explicit ticker list, or filters over indices
type FileConfig struct {
	Tickers []string     `yaml:"tickers"`
	Filters *FileFilters `yaml:"filters"`
}

// FileFilters derive a universe from index constituents
type FileFilters struct {
	Indices      []string `yaml:"indices"` // sp500, nasdaq100
	Sectors      []string `yaml:"sectors"`
	MinMarketCap float64  `yaml:"min_market_cap"`
	MaxStocks    int      `yaml:"max_stocks"`
}

// LoadFile reads and validates a universe file
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, contracts.NewConfigError("universe_file", "read %s: %v", path, err)
	}
	return ParseFile(data)
}

// ParseFile decodes a universe file. Unknown keys are rejected.
func ParseFile(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, contracts.NewConfigError("universe_file", "parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the file names either tickers or usable filters
func (c *FileConfig) Validate() error {
	if len(c.Tickers) > 0 {
		return nil
	}
	if c.Filters == nil {
		return contracts.NewConfigError("universe_file", "must contain either 'tickers' or 'filters'")
	}
	if len(c.Filters.Indices) == 0 {
		return contracts.NewConfigError("universe_file.filters.indices", "at least one index is required")
	}
	for _, idx := range c.Filters.Indices {
		if _, ok := indexSources[idx]; !ok {
			return contracts.NewConfigError("universe_file.filters.indices", "unknown index %q (sp500, nasdaq100)", idx)
		}
	}
	if c.Filters.MaxStocks < 0 {
		return contracts.NewConfigError("universe_file.filters.max_stocks", "must not be negative")
	}
	return nil
}

// indexSources maps file index names to the source serving them
var indexSources = map[string]contracts.SourceKind{
	"sp500":     contracts.SourcePrimary,
	"nasdaq100": contracts.SourceNasdaq100,
}

func (c *FileConfig) String() string {
	if len(c.Tickers) > 0 {
		return fmt.Sprintf("tickers(%d)", len(c.Tickers))
	}
	return fmt.Sprintf("filters(indices=%v sectors=%v)", c.Filters.Indices, c.Filters.Sectors)
}
