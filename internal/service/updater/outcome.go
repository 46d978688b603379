package updater

import (
	"context"

	"github.com/rosshadden/emcee/internal/logger"
)

// Kind classifies what happened to one archive.
type Kind int

const (
	// KindUpdated means a newer archive was installed and the old one removed.
	KindUpdated Kind = iota + 1
	// KindPending means an update exists but the run is a dry run.
	KindPending
	// KindCurrent means the archive already is the selected catalog file.
	KindCurrent
	// KindSkipped means the archive could not be resolved and was left alone.
	KindSkipped
	// KindFailed means a catalog, download or filesystem operation failed.
	KindFailed
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindUpdated:
		return "updated"
	case KindPending:
		return "pending"
	case KindCurrent:
		return "current"
	case KindSkipped:
		return "skipped"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Action is what the run does after an outcome.
type Action int

const (
	// ActionContinue moves on to the next archive.
	ActionContinue Action = iota
	// ActionAbort stops the run and reports the outcome's error.
	ActionAbort
)

// policy maps every outcome kind to the action the run takes.
//
//nolint:gochecknoglobals // Read-only lookup table.
var policy = map[Kind]Action{
	KindUpdated: ActionContinue,
	KindPending: ActionContinue,
	KindCurrent: ActionContinue,
	KindSkipped: ActionContinue,
	KindFailed:  ActionAbort,
}

// Action returns the policy for k. Unknown kinds abort.
func (k Kind) Action() Action {
	action, ok := policy[k]
	if !ok {
		return ActionAbort
	}

	return action
}

// Outcome is the result of processing one archive.
type Outcome struct {
	// Archive is the local file that was processed.
	Archive string
	// Kind classifies the result.
	Kind Kind
	// Target is the catalog file name selected for the archive, if any.
	Target string
	// Err is the skip reason or the failure.
	Err error
}

func skipped(archive string, reason error) Outcome {
	return Outcome{
		Archive: archive,
		Kind:    KindSkipped,
		Err:     reason,
	}
}

func failed(archive, target string, err error) Outcome {
	return Outcome{
		Archive: archive,
		Kind:    KindFailed,
		Target:  target,
		Err:     err,
	}
}

// Summary counts outcomes over one run.
type Summary struct {
	// Counts holds the number of archives per kind.
	Counts map[Kind]int
	// Outcomes lists every processed archive in run order.
	Outcomes []Outcome
	// Aborted is the archive that stopped the run, if any.
	Aborted string
}

func newSummary(capacity int) *Summary {
	return &Summary{
		Counts:   make(map[Kind]int, defaultMapCapacity),
		Outcomes: make([]Outcome, 0, capacity),
	}
}

func (s *Summary) add(outcome Outcome) {
	s.Counts[outcome.Kind]++
	s.Outcomes = append(s.Outcomes, outcome)
}

func (s *Summary) log(ctx context.Context) {
	logger.InfoKV(ctx, "Run finished",
		"updated", s.Counts[KindUpdated],
		"pending", s.Counts[KindPending],
		"current", s.Counts[KindCurrent],
		"skipped", s.Counts[KindSkipped],
		"failed", s.Counts[KindFailed],
	)
}

// report logs one outcome at the level its kind deserves.
func report(ctx context.Context, outcome Outcome) {
	switch outcome.Kind {
	case KindUpdated:
		logger.InfoKV(ctx, "Archive updated", "file", outcome.Target)
	case KindPending:
		logger.InfoKV(ctx, "Update available", "file", outcome.Target)
	case KindCurrent:
		logger.Info(ctx, "Archive is already up to date")
	case KindSkipped:
		logger.WarnKV(ctx, "Archive skipped", "reason", outcome.Err.Error())
	case KindFailed:
		logger.ErrorKV(ctx, "Archive failed", "error", outcome.Err.Error())
	}
}
