// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package importers reads a legacy YAML package manifest and stages its
// entries into a depengine.TransactionSet, in the spirit of the teacher's
// cmd/dep/glide_importer.go (load YAML, validate, convert to the native
// model).
package importers

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rpmtrans/depengine"
	"github.com/rpmtrans/depengine/internal/memdb"
	"gopkg.in/yaml.v2"
)

// manifestYAML is the on-disk shape of a legacy package list: one entry
// per package, with the same terse dependency grammar memdb.ParseDep
// understands.
type manifestYAML struct {
	Packages []packageYAML `yaml:"packages"`
}

type packageYAML struct {
	Name      string   `yaml:"name"`
	Version   string   `yaml:"version"`
	Requires  []string `yaml:"requires"`
	Provides  []string `yaml:"provides"`
	Conflicts []string `yaml:"conflicts"`
	Obsoletes []string `yaml:"obsoletes"`
	Files     []string `yaml:"files"`
	Upgrade   bool     `yaml:"upgrade"`
}

// Legacy imports a legacy YAML manifest at path, calling
// depengine.AddPackage for every entry. The external key passed to
// AddPackage is the package's name.
type Legacy struct {
	Verbose bool
	Logf    func(format string, args ...interface{})
}

// NewLegacy returns a Legacy importer; logf may be nil to discard verbose
// output.
func NewLegacy(verbose bool, logf func(format string, args ...interface{})) *Legacy {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Legacy{Verbose: verbose, Logf: logf}
}

// HasManifest reports whether path exists and is a regular file, the same
// existence probe the teacher's importers use before attempting a load.
func (l *Legacy) HasManifest(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// Import reads the manifest at path and stages every package into ts via
// depengine.AddPackage.
func (l *Legacy) Import(ts *depengine.TransactionSet, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", path)
	}

	var manifest manifestYAML
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return errors.Wrapf(err, "unable to parse %s", path)
	}

	if l.Verbose {
		l.Logf("imported %d package(s) from %s", len(manifest.Packages), path)
	}

	for _, pkg := range manifest.Packages {
		if pkg.Name == "" {
			return errors.New("invalid legacy manifest: a package entry is missing a name")
		}

		h := memdb.NewPackage(pkg.Name, pkg.Version).
			WithRequires(pkg.Requires...).
			WithProvides(pkg.Provides...).
			WithConflicts(pkg.Conflicts...).
			WithObsoletes(pkg.Obsoletes...).
			WithFiles(pkg.Files...)

		if l.Verbose {
			l.Logf("  adding %s-%s", pkg.Name, pkg.Version)
		}

		if err := depengine.AddPackage(ts, h, pkg.Name, pkg.Upgrade, nil); err != nil {
			return errors.Wrapf(err, "importing %s", pkg.Name)
		}
	}

	return nil
}
