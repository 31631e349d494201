// Package replay persists simulation output to disk: a snappy-framed stream
// of per-tick diffs for scrubbing, and periodic zstd keyframes for seeking.
package replay

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"drivesim/engine/internal/networking"
)

var sessionNameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Manifest describes the recording bundle layout so tooling can locate the
// artefacts without guessing file names.
type Manifest struct {
	Version          int    `json:"version"`
	CreatedAt        string `json:"created_at"`
	KeyframeInterval int    `json:"keyframe_interval_ticks"`
	DiffsPath        string `json:"diffs_path"`
	KeyframesPath    string `json:"keyframes_path"`
}

// diffRecord is one line of the diff stream.
type diffRecord struct {
	Tick  uint64                   `json:"tick"`
	Frame networking.SnapshotFrame `json:"frame"`
}

// Recorder streams tick output into a session directory. All writes happen on
// the caller's goroutine; callers are expected to feed it from outside the
// tick path.
type Recorder struct {
	mu            sync.Mutex
	dir           string
	keyframeEvery int

	diffFile    *os.File
	diffStream  *snappy.Writer
	diffEncoder *json.Encoder

	keyFile   *os.File
	keyStream *zstd.Encoder

	closed bool
}

// NewRecorder creates the session directory, opens the compressed sinks, and
// writes the manifest. keyframeEvery is in ticks; zero disables keyframes.
func NewRecorder(root, session string, keyframeEvery int, clock func() time.Time) (*Recorder, Manifest, error) {
	if root == "" {
		return nil, Manifest{}, fmt.Errorf("replay root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}
	cleaned := sessionNameCleaner.ReplaceAllString(session, "")
	if cleaned == "" {
		cleaned = "session"
	}
	created := clock().UTC()
	dir := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, Manifest{}, err
	}

	diffsPath := filepath.Join(dir, "diffs.jsonl.sz")
	keyframesPath := filepath.Join(dir, "keyframes.bin.zst")

	diffFile, err := os.Create(diffsPath)
	if err != nil {
		return nil, Manifest{}, err
	}
	diffStream := snappy.NewBufferedWriter(diffFile)

	keyFile, err := os.Create(keyframesPath)
	if err != nil {
		diffFile.Close()
		return nil, Manifest{}, err
	}
	keyStream, err := zstd.NewWriter(keyFile)
	if err != nil {
		diffFile.Close()
		keyFile.Close()
		return nil, Manifest{}, err
	}

	manifest := Manifest{
		Version:          1,
		CreatedAt:        created.Format(time.RFC3339),
		KeyframeInterval: keyframeEvery,
		DiffsPath:        filepath.Base(diffsPath),
		KeyframesPath:    filepath.Base(keyframesPath),
	}
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, "manifest.json"), payload, 0o644)
	}
	if err != nil {
		diffStream.Close()
		diffFile.Close()
		keyStream.Close()
		keyFile.Close()
		return nil, Manifest{}, err
	}

	return &Recorder{
		dir:           dir,
		keyframeEvery: keyframeEvery,
		diffFile:      diffFile,
		diffStream:    diffStream,
		diffEncoder:   json.NewEncoder(diffStream),
		keyFile:       keyFile,
		keyStream:     keyStream,
	}, manifest, nil
}

// Dir returns the session directory path.
func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// RecordDiff appends one tick's diff frame to the snappy stream.
func (r *Recorder) RecordDiff(tick uint64, frame networking.SnapshotFrame) error {
	if r == nil {
		return fmt.Errorf("replay: nil recorder")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("replay: recorder closed")
	}
	//1.- One JSON document per line keeps the stream scrubbable with standard tools.
	return r.diffEncoder.Encode(diffRecord{Tick: tick, Frame: frame})
}

// RecordKeyframe appends a full-state frame to the zstd stream when the tick
// lands on the keyframe cadence.
func (r *Recorder) RecordKeyframe(tick uint64, frame networking.SnapshotFrame) error {
	if r == nil {
		return fmt.Errorf("replay: nil recorder")
	}
	if r.keyframeEvery <= 0 || tick%uint64(r.keyframeEvery) != 0 {
		return nil
	}
	payload, err := json.Marshal(diffRecord{Tick: tick, Frame: frame})
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("replay: recorder closed")
	}
	//1.- Length-prefix each keyframe so a reader can skip without parsing.
	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], uint64(len(payload)))
	if _, err := r.keyStream.Write(prefix[:]); err != nil {
		return err
	}
	_, err = r.keyStream.Write(payload)
	return err
}

// Close flushes and closes both streams. Safe to call once.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	var firstErr error
	for _, step := range []func() error{
		r.diffStream.Close,
		r.diffFile.Close,
		r.keyStream.Close,
		r.keyFile.Close,
	} {
		if err := step(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
