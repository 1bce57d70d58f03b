package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/veiledger/go-veiledger-tiertree/tct"
)

const (
	snapshotName  = "tree.snapshot"
	sealExt       = ".checkpoint"
	sealNameFmt   = "%016x" + sealExt
	storeFileMode = 0o644
)

// LocalStore persists snapshots and sealed checkpoints under a local
// directory. Snapshots overwrite in place (there is exactly one, the
// latest); seals accumulate, named by their packed position, so the
// full checkpoint history remains enumerable.
type LocalStore struct {
	log   logger.Logger
	dir   string
	codec Codec
}

func NewLocalStore(log logger.Logger, dir string, codec Codec) (LocalStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return LocalStore{}, err
	}
	if !info.IsDir() {
		return LocalStore{}, fmt.Errorf("%w: %s", ErrPathIsNotDir, dir)
	}
	return LocalStore{log: log, dir: dir, codec: codec}, nil
}

// WriteSnapshot replaces the stored snapshot with the exported state.
func (s LocalStore) WriteSnapshot(x *tct.Export) error {
	data, err := s.codec.MarshalCBOR(x)
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, snapshotName)
	if err := s.writeFile(path, data); err != nil {
		return err
	}
	s.log.Debugf("wrote snapshot: %s, %d bytes, %d epochs", path, len(data), len(x.Epochs))
	return nil
}

// ReadSnapshot loads the stored snapshot, or ErrNoSnapshot when none
// has been written.
func (s LocalStore) ReadSnapshot() (*tct.Export, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, snapshotName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	x := &tct.Export{}
	if err := s.codec.UnmarshalCBOR(data, x); err != nil {
		return nil, err
	}
	return x, nil
}

// WriteSeal stores the sealed bytes for a checkpoint under its packed
// position.
func (s LocalStore) WriteSeal(position uint64, sealed []byte) error {
	path := filepath.Join(s.dir, fmt.Sprintf(sealNameFmt, position))
	if err := s.writeFile(path, sealed); err != nil {
		return err
	}
	s.log.Debugf("wrote seal: %s, %d bytes", path, len(sealed))
	return nil
}

// ReadSeal loads the sealed bytes for the checkpoint at the packed
// position.
func (s LocalStore) ReadSeal(position uint64) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, fmt.Sprintf(sealNameFmt, position)))
}

// Seals enumerates the packed positions of every stored seal, in
// ascending order. Files that do not match the naming scheme are
// ignored.
func (s LocalStore) Seals() ([]uint64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var positions []uint64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, sealExt) {
			continue
		}
		position, err := strconv.ParseUint(strings.TrimSuffix(name, sealExt), 16, 64)
		if err != nil {
			continue
		}
		positions = append(positions, position)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	return positions, nil
}

func (s LocalStore) writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, storeFileMode)
	if err != nil {
		return err
	}
	n, err := f.Write(data)
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("%w: %s", ErrWriteIncomplete, path)
	}
	return nil
}
