package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"drivesim/engine/internal/networking"
)

// Entry is one recorded tick from the diff stream.
type Entry struct {
	Tick  uint64
	Frame networking.SnapshotFrame
}

// ReadManifest loads and validates the manifest for a session directory.
func ReadManifest(dir string) (Manifest, error) {
	payload, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(payload, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if manifest.Version != 1 {
		return Manifest{}, fmt.Errorf("unsupported replay version %d", manifest.Version)
	}
	return manifest, nil
}

// ReadDiffs streams every recorded diff entry from a session directory.
func ReadDiffs(dir string) ([]Entry, error) {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(dir, manifest.DiffsPath))
	if err != nil {
		return nil, fmt.Errorf("open diff stream: %w", err)
	}
	defer file.Close()

	//1.- Decode line-delimited JSON documents straight off the snappy reader.
	decoder := json.NewDecoder(snappy.NewReader(file))
	var entries []Entry
	for {
		var record diffRecord
		if err := decoder.Decode(&record); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decode diff stream: %w", err)
		}
		entries = append(entries, Entry{Tick: record.Tick, Frame: record.Frame})
	}
	return entries, nil
}
