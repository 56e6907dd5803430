package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// headerFile is the layout of the --headers file:
//
//	[headers]
//	name = "Full Name"
//	age = "Age"
type headerFile struct {
	Headers map[string]string `toml:"headers"`
}

// displayNames loads the --headers file once. No file means no display names.
func (c *commandContext) displayNames() (map[string]string, error) {
	if c.headersFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.headersFile)
	if err != nil {
		return nil, fmt.Errorf("read headers file: %w", err)
	}

	var hf headerFile
	if err := toml.Unmarshal(data, &hf); err != nil {
		return nil, fmt.Errorf("parse headers file %s: %w", c.headersFile, err)
	}
	return hf.Headers, nil
}
