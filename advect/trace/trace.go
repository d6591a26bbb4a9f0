package trace

import "sync"

// Level controls the verbosity of call tracing.
type Level string

const (
	// LevelNone disables tracing.
	LevelNone Level = "none"
	// LevelWrites records diagnostic writes only.
	LevelWrites Level = "writes"
	// LevelCalls records steps, transfers and writes.
	LevelCalls Level = "calls"
)

// validLevels maps accepted trace level strings.
var validLevels = map[Level]bool{
	LevelNone:   true,
	LevelWrites: true,
	LevelCalls:  true,
	"":          true, // empty defaults to none
}

// IsValidLevel returns true if the given level string is a recognized trace level.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// Trace collects call records. It is safe for concurrent use, since a
// driver may step distinct vectors from several goroutines.
type Trace struct {
	level Level

	mu        sync.Mutex
	steps     []StepRecord
	transfers []TransferRecord
	writes    []WriteRecord
}

// New creates a Trace ready for recording.
func New(level Level) *Trace {
	return &Trace{level: level}
}

func (tr *Trace) Level() Level { return tr.level }

func (tr *Trace) calls() bool { return tr != nil && tr.level == LevelCalls }

// RecordStep appends a step record when calls are traced.
func (tr *Trace) RecordStep(r StepRecord) {
	if !tr.calls() {
		return
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.steps = append(tr.steps, r)
}

// RecordTransfer appends a transfer record when calls are traced.
func (tr *Trace) RecordTransfer(r TransferRecord) {
	if !tr.calls() {
		return
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.transfers = append(tr.transfers, r)
}

// RecordWrite appends a write record unless tracing is off.
func (tr *Trace) RecordWrite(r WriteRecord) {
	if tr == nil || tr.level == LevelNone || tr.level == "" {
		return
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.writes = append(tr.writes, r)
}

// Steps returns a copy of the recorded steps.
func (tr *Trace) Steps() []StepRecord {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]StepRecord(nil), tr.steps...)
}

// Transfers returns a copy of the recorded transfers.
func (tr *Trace) Transfers() []TransferRecord {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]TransferRecord(nil), tr.transfers...)
}

// Writes returns a copy of the recorded writes.
func (tr *Trace) Writes() []WriteRecord {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]WriteRecord(nil), tr.writes...)
}
