package main

import (
	"os"
	"strings"

	"github.com/Garik-/alsmidi/pkg/midi"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

const (
	maxGoroutines = 10
)

type config struct {
	Program      uint8  `yaml:"program"`
	Controller   uint8  `yaml:"controller"`
	GridTicks    int64  `yaml:"grid_ticks"`
	FirstChannel int    `yaml:"first_channel"`
	Curve        string `yaml:"curve"`
	Workers      int    `yaml:"workers"`
	OutDir       string `yaml:"out_dir"`
	Notes        bool   `yaml:"notes"`
	Automation   bool   `yaml:"automation"`
	Check        bool   `yaml:"check"`
	Dump         bool   `yaml:"dump"`
	Presets      bool   `yaml:"presets"`
}

func defaultConfig() config {
	return config{
		Controller: midi.DefaultController,
		GridTicks:  midi.DefaultGridTicks,
		Curve:      "linear",
		Workers:    maxGoroutines,
		Notes:      true,
		Automation: true,
	}
}

// loadConfig reads a YAML file over the defaults. Keys missing from the file keep their default.
func loadConfig(name string) (config, error) {
	cfg := defaultConfig()
	if name == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", name)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", name)
	}
	return cfg, nil
}

func (c config) curve() (midi.Curve, error) {
	switch strings.ToLower(c.Curve) {
	case "", "linear":
		return midi.Linear, nil
	case "log", "logarithmic":
		return midi.Logarithmic, nil
	}
	return 0, errors.Errorf("unknown curve %q", c.Curve)
}

func (c config) validate() error {
	if c.Workers <= 0 {
		return errors.Errorf("workers must be > 0, got %d", c.Workers)
	}
	if !c.Notes && !c.Automation {
		return errors.New("nothing to write, both notes and automation are disabled")
	}
	if _, err := c.curve(); err != nil {
		return err
	}
	return errors.Wrap(c.options("").Validate(), "encoder options")
}

func (c config) options(name string) midi.Options {
	curve, _ := c.curve()
	return midi.Options{
		Logger:       convertLog,
		Name:         name,
		Program:      c.Program,
		Controller:   c.Controller,
		GridTicks:    c.GridTicks,
		Curve:        curve,
		FirstChannel: c.FirstChannel,
	}
}
