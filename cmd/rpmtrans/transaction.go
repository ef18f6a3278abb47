// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/rpmtrans/depengine"
	"github.com/rpmtrans/depengine/internal/fsdb"
)

// transactionFile is the on-disk shape of a proposed transaction: which
// named (and optionally versioned) entries from the candidate pool to add.
type transactionFile struct {
	Add []transactionEntry `toml:"add"`
}

type transactionEntry struct {
	Name    string `toml:"name"`
	EVR     string `toml:"evr"`
	Upgrade bool   `toml:"upgrade"`
}

func loadTransactionFile(path string) (transactionFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return transactionFile{}, errors.Wrapf(err, "reading transaction file %s", path)
	}
	var tf transactionFile
	if err := toml.Unmarshal(raw, &tf); err != nil {
		return transactionFile{}, errors.Wrapf(err, "parsing transaction file %s", path)
	}
	return tf, nil
}

// stageTransaction resolves every entry in tf against poolDir (a
// candidate-package pool separate from ts's installed database, modeling
// the repository a transaction draws new headers from), and calls
// depengine.AddPackage for each.
func stageTransaction(ts *depengine.TransactionSet, poolDir string, tf transactionFile) error {
	pool := fsdb.New(poolDir)
	if err := pool.Open(); err != nil {
		return errors.Wrap(err, "opening candidate pool")
	}
	defer pool.Close()

	for _, entry := range tf.Add {
		h, err := lookupInPool(pool, entry.Name, entry.EVR)
		if err != nil {
			return err
		}
		if err := depengine.AddPackage(ts, h, entry.Name, entry.Upgrade, nil); err != nil {
			return errors.Wrapf(err, "adding %s", entry.Name)
		}
	}
	return nil
}

func lookupInPool(pool *fsdb.DB, name, evr string) (depengine.Header, error) {
	it, err := pool.Init(depengine.QueryName, name)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	for {
		h, _, ok := it.Next()
		if !ok {
			return nil, errors.Errorf("%s: not found in candidate pool", name)
		}
		if evr == "" || h.EVR().String() == evr {
			return h, nil
		}
	}
}
