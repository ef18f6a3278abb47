// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depengine.toml")

	want := Config{
		Chainsaw:     true,
		CachePath:    filepath.Join(t.TempDir(), "cache.bolt"),
		NoSuggests:   true,
		RescanBudget: 5,
		Whiteout:     "foo>bar",
	}

	if err := WriteConfig(path, want); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != want {
		t.Errorf("LoadConfig round-trip = %+v, want %+v", got, want)
	}
}

func TestReadConfigFromReader(t *testing.T) {
	doc := `
chainsaw = false
cache_path = "/var/cache/depengine.bolt"
no_suggests = true
rescan_budget = 3
whiteout = "a>b c>d"
`
	cfg, err := ReadConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Chainsaw {
		t.Error("Chainsaw should be false")
	}
	if cfg.CachePath != "/var/cache/depengine.bolt" {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}
	if !cfg.NoSuggests {
		t.Error("NoSuggests should be true")
	}
	if cfg.RescanBudget != 3 {
		t.Errorf("RescanBudget = %d, want 3", cfg.RescanBudget)
	}
	if cfg.Whiteout != "a>b c>d" {
		t.Errorf("Whiteout = %q", cfg.Whiteout)
	}
}

func TestConfigApplyPropagatesFields(t *testing.T) {
	resetWhiteout()
	ts := NewTransactionSet(nil)

	cfg := Config{Chainsaw: true, NoSuggests: true, RescanBudget: 7}
	if err := cfg.Apply(ts); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !ts.Chainsaw {
		t.Error("Chainsaw should be propagated")
	}
	if !ts.NoSuggests {
		t.Error("NoSuggests should be propagated")
	}
	if ts.RescanBudget != 7 {
		t.Errorf("RescanBudget = %d, want 7", ts.RescanBudget)
	}
	if ts.cacheEnabled {
		t.Error("cacheEnabled should stay false when CachePath is empty")
	}
}

func TestConfigApplyZeroRescanBudgetDoesNotClobber(t *testing.T) {
	ts := NewTransactionSet(nil)
	ts.RescanBudget = 10

	cfg := Config{} // RescanBudget zero value
	if err := cfg.Apply(ts); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if ts.RescanBudget != 10 {
		t.Errorf("RescanBudget = %d, want the untouched 10 (zero RescanBudget in Config must not clobber it)", ts.RescanBudget)
	}
}

func TestConfigApplyOpensCache(t *testing.T) {
	ts := NewTransactionSet(nil)
	cachePath := filepath.Join(t.TempDir(), "cache.bolt")

	cfg := Config{CachePath: cachePath}
	if err := cfg.Apply(ts); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !ts.cacheEnabled {
		t.Error("cacheEnabled should be true once CachePath is set")
	}
	ts.cache.Close()
}

func TestConfigApplyInstallsWhiteoutExpander(t *testing.T) {
	ts := NewTransactionSet(nil)

	cfg := Config{Whiteout: "foo>bar"}
	if err := cfg.Apply(ts); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if ts.macro == nil {
		t.Fatal("macro expander should be installed")
	}
	if got := ts.macro.Expand("%{?_dependency_whiteout}"); got != "foo>bar" {
		t.Errorf("Expand(...) = %q, want foo>bar", got)
	}
}
