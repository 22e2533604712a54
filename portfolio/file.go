package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a portfolio snapshot from a YAML or JSON file.
func LoadFile(path string) (Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Portfolio{}, fmt.Errorf("read portfolio file: %w", err)
	}

	var p Portfolio
	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, &p); err != nil {
		if jerr := json.Unmarshal(data, &p); jerr != nil {
			return Portfolio{}, fmt.Errorf("parse portfolio (tried YAML and JSON): %w", jerr)
		}
	}
	if err := p.Validate(); err != nil {
		return Portfolio{}, err
	}
	return p, nil
}

// SaveFile writes p as YAML for .yaml/.yml paths and indented JSON otherwise.
func SaveFile(path string, p Portfolio) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(p)
	} else {
		data, err = json.MarshalIndent(p, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write portfolio file: %w", err)
	}
	return nil
}

// Sample is the single EURUSD snapshot used by `fxrisk portfolio init`.
func Sample() Portfolio {
	return Portfolio{
		Balance:         mustDec("10000"),
		MarginAvailable: mustDec("8000"),
		MarginUsed:      mustDec("2000"),
		Positions: []Position{
			{Symbol: "EURUSD", LotSize: mustDec("1.0"), Price: mustDec("1.0850"), Margin: mustDec("1085")},
		},
	}
}
