package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const replayVersion = 1

// Replay is a recorded match as a sequence of state snapshots with a
// cursor for stepping through them.
type Replay struct {
	MatchID string
	States  []*GameState

	mu     sync.RWMutex
	cursor int
}

// NewReplay creates an empty replay.
func NewReplay(matchID string) *Replay {
	return &Replay{
		MatchID: matchID,
		States:  make([]*GameState, 0),
	}
}

// RecordState appends a copy of the state.
func (r *Replay) RecordState(gs *GameState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.States = append(r.States, gs.Clone())
}

// Seek moves the cursor to index, clamped to the recording, and returns the
// state there. It returns nil for an empty replay.
func (r *Replay) Seek(index int) *GameState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.States) == 0 {
		r.cursor = 0
		return nil
	}
	r.cursor = max(0, min(index, len(r.States)-1))
	return r.States[r.cursor]
}

// Step moves the cursor by delta states and returns the new state. Stepping
// past either end returns nil and leaves the cursor where it was.
func (r *Replay) Step(delta int) *GameState {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.cursor + delta
	if next < 0 || next >= len(r.States) {
		return nil
	}
	r.cursor = next
	return r.States[next]
}

// Position returns the cursor index.
func (r *Replay) Position() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cursor
}

// Size returns the number of recorded states.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.States)
}

// GetStateAt returns the state at index, or nil.
func (r *Replay) GetStateAt(index int) *GameState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.States) {
		return r.States[index]
	}
	return nil
}

// Last returns the final recorded state.
func (r *Replay) Last() *GameState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

func replayPath(directory, matchID string) string {
	return filepath.Join(directory, fmt.Sprintf("%s.replay", matchID))
}

// replayHeader precedes the states in a replay file.
type replayHeader struct {
	MatchID    string
	SavedAt    time.Time
	Version    int
	StateCount int
}

// SaveToFile writes the replay as gzipped gob: a header followed by every
// state and its checksum.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(replayPath(directory, r.MatchID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	encoder := gob.NewEncoder(zw)

	header := replayHeader{
		MatchID:    r.MatchID,
		SavedAt:    time.Now(),
		Version:    replayVersion,
		StateCount: len(r.States),
	}
	if err := encoder.Encode(&header); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	for i, state := range r.States {
		if err := encoder.Encode(state); err != nil {
			return fmt.Errorf("failed to encode state %d: %w", i, err)
		}
		if err := encoder.Encode(state.Checksum()); err != nil {
			return fmt.Errorf("failed to encode checksum %d: %w", i, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	return file.Sync()
}

// LoadReplayFromFile reads a replay written by SaveToFile and verifies every
// state checksum.
func LoadReplayFromFile(directory, matchID string) (*Replay, error) {
	file, err := os.Open(replayPath(directory, matchID))
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer zr.Close()

	decoder := gob.NewDecoder(zr)

	var header replayHeader
	if err := decoder.Decode(&header); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	if header.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", header.Version)
	}

	replay := NewReplay(header.MatchID)
	for i := 0; i < header.StateCount; i++ {
		var state GameState
		if err := decoder.Decode(&state); err != nil {
			return nil, fmt.Errorf("failed to decode state %d: %w", i, err)
		}
		var checksum string
		if err := decoder.Decode(&checksum); err != nil {
			return nil, fmt.Errorf("failed to decode checksum %d: %w", i, err)
		}
		if got := state.Checksum(); got != checksum {
			return nil, fmt.Errorf("state %d: checksum mismatch: %s != %s", i, got, checksum)
		}
		replay.States = append(replay.States, &state)
	}

	return replay, nil
}

// ReplayRecorder keeps in-memory replays for running matches and writes
// them to saveDir when a match ends.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	saveDir string
}

// NewReplayRecorder creates a recorder that saves into saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		saveDir: saveDir,
	}
}

// StartRecording begins recording a match.
func (rr *ReplayRecorder) StartRecording(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[matchID] = NewReplay(matchID)

	if rr.logger != nil {
		rr.logger.Info("started replay recording",
			zap.String("match_id", matchID),
		)
	}
}

// RecordState records a snapshot for a match that is being recorded.
func (rr *ReplayRecorder) RecordState(gs *GameState) {
	rr.mu.RLock()
	replay := rr.replays[gs.MatchID]
	rr.mu.RUnlock()

	if replay == nil {
		return
	}
	replay.RecordState(gs)

	if rr.logger != nil {
		rr.logger.Debug("recorded replay state",
			zap.String("match_id", gs.MatchID),
			zap.Int("state_count", replay.Size()),
		)
	}
}

// SaveReplay writes a match's replay to disk and stops recording it.
func (rr *ReplayRecorder) SaveReplay(matchID string) error {
	rr.mu.Lock()
	replay, exists := rr.replays[matchID]
	if !exists {
		rr.mu.Unlock()
		return fmt.Errorf("no replay found for match %s", matchID)
	}
	delete(rr.replays, matchID)
	rr.mu.Unlock()

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}

	if rr.logger != nil {
		rr.logger.Info("saved replay to disk",
			zap.String("match_id", matchID),
			zap.Int("state_count", replay.Size()),
			zap.String("directory", rr.saveDir),
		)
	}
	return nil
}

// ClearReplay stops recording a match and drops what was recorded.
func (rr *ReplayRecorder) ClearReplay(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, matchID)
}
