// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package checkpoint

import (
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var ErrCheckpointNotFound = errors.New("checkpoint not found")

var keyPrefix = []byte("checkpoint:")

// Store persists checkpoints keyed by block height.
type Store struct {
	db *leveldb.DB
}

func NewStore(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open checkpoint store at %s", path)
	}
	return &Store{db: db}, nil
}

// NewMemStore returns a store kept in memory.
func NewMemStore() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not open in memory checkpoint store")
	}
	return &Store{db: db}, nil
}

func key(height uint64) []byte {
	k := make([]byte, len(keyPrefix)+8)
	copy(k, keyPrefix)
	binary.BigEndian.PutUint64(k[len(keyPrefix):], height)
	return k
}

func (s *Store) Put(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return errors.Wrapf(s.db.Put(key(snap.Height), data, nil), "could not save checkpoint %d", snap.Height)
}

func (s *Store) Get(height uint64) (*Snapshot, error) {
	data, err := s.db.Get(key(height), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, errors.Wrapf(ErrCheckpointNotFound, "height %d", height)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read checkpoint %d", height)
	}
	return decode(data)
}

// Latest returns the checkpoint with the highest height.
func (s *Store) Latest() (*Snapshot, error) {
	it := s.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	defer it.Release()
	if !it.Last() {
		return nil, ErrCheckpointNotFound
	}
	return decode(it.Value())
}

// Heights lists the persisted checkpoints in ascending order.
func (s *Store) Heights() ([]uint64, error) {
	it := s.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	defer it.Release()
	out := []uint64{}
	for it.Next() {
		out = append(out, binary.BigEndian.Uint64(it.Key()[len(keyPrefix):]))
	}
	return out, it.Error()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func decode(data []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, errors.Wrap(err, "invalid checkpoint")
	}
	return snap, nil
}
