// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import (
	"path/filepath"
	"testing"
)

func TestMemoryDependencyCacheRoundTrip(t *testing.T) {
	c := NewMemoryDependencyCache()

	if _, ok := c.Get("R foo"); ok {
		t.Fatal("Get on an empty cache should miss")
	}

	if err := c.Put("R foo", 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	result, ok := c.Get("R foo")
	if !ok {
		t.Fatal("Get should hit after Put")
	}
	if result != 1 {
		t.Errorf("result = %d, want 1", result)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestBoltDependencyCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depcache.bolt")

	c, err := OpenBoltDependencyCache(path)
	if err != nil {
		t.Fatalf("OpenBoltDependencyCache: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("R bar"); ok {
		t.Fatal("Get on a freshly opened cache should miss")
	}

	if err := c.Put("R bar", 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put("R baz = 1.0", 1); err != nil {
		t.Fatalf("Put: %v", err)
	}

	result, ok := c.Get("R bar")
	if !ok || result != 0 {
		t.Errorf("Get(R bar) = (%d, %v), want (0, true)", result, ok)
	}
	result, ok = c.Get("R baz = 1.0")
	if !ok || result != 1 {
		t.Errorf("Get(R baz = 1.0) = (%d, %v), want (1, true)", result, ok)
	}
}

func TestBoltDependencyCachePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depcache.bolt")

	c1, err := OpenBoltDependencyCache(path)
	if err != nil {
		t.Fatalf("OpenBoltDependencyCache: %v", err)
	}
	if err := c1.Put("R foo", 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	c2, err := OpenBoltDependencyCache(path)
	if err != nil {
		t.Fatalf("re-OpenBoltDependencyCache: %v", err)
	}
	defer c2.Close()

	result, ok := c2.Get("R foo")
	if !ok || result != 1 {
		t.Errorf("Get(R foo) after reopen = (%d, %v), want (1, true)", result, ok)
	}
}

func TestBoltDependencyCacheCreatesMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "depcache.bolt")

	c, err := OpenBoltDependencyCache(path)
	if err != nil {
		t.Fatalf("OpenBoltDependencyCache should create its parent directory: %v", err)
	}
	c.Close()
}
