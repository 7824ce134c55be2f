package main

import (
	"os"
)

// DefaultsCmd prints the effective config, which is the built-in pedal
// unless --config is given. The output is a valid --config file.
type DefaultsCmd struct{}

func (DefaultsCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	return cfg.Encode(os.Stdout)
}
