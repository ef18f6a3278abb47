// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import (
	"bytes"
	"io"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the engine's own TOML sidecar (depengine.toml), read the same
// way the teacher reads its registry and glide sidecars
// (registry_config.go, cmd/dep/glide_config.go): an intermediate raw
// struct with toml tags, round-tripped through github.com/pelletier/go-toml.
type Config struct {
	// Chainsaw mirrors TransactionSet.Chainsaw.
	Chainsaw bool
	// CachePath is the BoltDB file backing the dependency cache, or empty
	// to run without a persistent cache.
	CachePath string
	// NoSuggests mirrors TransactionSet.NoSuggests.
	NoSuggests bool
	// RescanBudget mirrors TransactionSet.RescanBudget; 0 selects the
	// orderer's built-in default of 10.
	RescanBudget int
	// Whiteout is the literal whitespace-separated "P>Q" whiteout string,
	// used in place of a real macro expander by tests and the CLI
	// (§4.6, §9).
	Whiteout string
}

type rawConfig struct {
	Chainsaw     bool   `toml:"chainsaw"`
	CachePath    string `toml:"cache_path"`
	NoSuggests   bool   `toml:"no_suggests"`
	RescanBudget int    `toml:"rescan_budget"`
	Whiteout     string `toml:"whiteout"`
}

func (c Config) toRaw() rawConfig {
	return rawConfig{
		Chainsaw:     c.Chainsaw,
		CachePath:    c.CachePath,
		NoSuggests:   c.NoSuggests,
		RescanBudget: c.RescanBudget,
		Whiteout:     c.Whiteout,
	}
}

func (r rawConfig) toConfig() Config {
	return Config{
		Chainsaw:     r.Chainsaw,
		CachePath:    r.CachePath,
		NoSuggests:   r.NoSuggests,
		RescanBudget: r.RescanBudget,
		Whiteout:     r.Whiteout,
	}
}

// ReadConfig parses a depengine.toml document from r.
func ReadConfig(r io.Reader) (Config, error) {
	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(r); err != nil {
		return Config{}, errors.Wrap(err, "unable to read config stream")
	}

	var raw rawConfig
	if err := toml.Unmarshal(buf.Bytes(), &raw); err != nil {
		return Config{}, errors.Wrap(err, "unable to parse depengine.toml")
	}
	return raw.toConfig(), nil
}

// LoadConfig reads and parses the depengine.toml file at path.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to open %s", path)
	}
	defer f.Close()
	return ReadConfig(f)
}

// MarshalTOML serializes c into its on-disk TOML form.
func (c Config) MarshalTOML() ([]byte, error) {
	out, err := toml.Marshal(c.toRaw())
	return out, errors.Wrap(err, "unable to marshal depengine.toml")
}

// WriteConfig writes c as TOML to path, creating or truncating the file.
func WriteConfig(path string, c Config) error {
	out, err := c.MarshalTOML()
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, out, 0o644), "unable to write %s", path)
}

// Apply installs c's settings onto ts, opening a BoltDB-backed dependency
// cache at c.CachePath if set.
func (c Config) Apply(ts *TransactionSet) error {
	ts.Chainsaw = c.Chainsaw
	ts.NoSuggests = c.NoSuggests
	if c.RescanBudget > 0 {
		ts.RescanBudget = c.RescanBudget
	}

	if c.CachePath != "" {
		cache, err := OpenBoltDependencyCache(c.CachePath)
		if err != nil {
			return err
		}
		ts.SetCache(cache)
	}

	if c.Whiteout != "" {
		ts.SetMacroExpander(staticExpander(c.Whiteout))
	}

	return nil
}

// staticExpander is a MacroExpander that always answers with the same
// literal string, for callers (tests, the CLI) that configure the
// whiteout list directly instead of through a real macro layer.
type staticExpander string

func (s staticExpander) Expand(macro string) string { return string(s) }
