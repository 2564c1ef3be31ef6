package store

import (
	"fmt"
	"path/filepath"

	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	dsbadger "github.com/ipfs/go-ds-badger4"
	"github.com/mitchellh/go-homedir"
)

// OpenBadger opens or creates a Badger datastore under the given directory.
// The caller is responsible for closing it.
func OpenBadger(path string) (datastore.Batching, error) {
	path, err := homedir.Expand(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("header/store: expanding %s: %w", path, err)
	}

	opts := dsbadger.DefaultOptions // this should be copied
	ds, err := dsbadger.NewDatastore(path, &opts)
	if err != nil {
		return nil, fmt.Errorf("header/store: can't open Badger Datastore: %w", err)
	}
	return ds, nil
}

// NewInMemory creates a thread-safe in-memory datastore.
func NewInMemory() datastore.Batching {
	return dssync.MutexWrap(datastore.NewMapDatastore())
}
