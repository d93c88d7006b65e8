// ABOUTME: Source-switching policy decides which endpoint tier to try next
// ABOUTME: Only the feed format has an alternate tier; the JSON fallback is the last resort

package feed

// Stage is a state of the source-switching machine
type Stage int

const (
	// StagePrimary is the feed on the primary origin
	StagePrimary Stage = iota

	// StageAlternate is the same feed on the alternate origin
	StageAlternate

	// StageFallback is the JSON listing
	StageFallback

	// StageExhausted is terminal: no source produced posts
	StageExhausted

	// StageDone is terminal: a source produced at least one post
	StageDone
)

// String returns the stage name used in logs
func (s Stage) String() string {
	switch s {
	case StagePrimary:
		return "primary"
	case StageAlternate:
		return "alternate"
	case StageFallback:
		return "fallback"
	case StageExhausted:
		return "exhausted"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible
func (s Stage) Terminal() bool {
	return s == StageExhausted || s == StageDone
}

// Outcome is the result of running one stage
type Outcome int

const (
	// OutcomeRecords means a 200 response parsed into at least one post
	OutcomeRecords Outcome = iota

	// OutcomeEmpty means a 200 response parsed into zero posts
	OutcomeEmpty

	// OutcomeBlocked means the endpoint answered 403
	OutcomeBlocked

	// OutcomeFailed is any other failure after retries
	OutcomeFailed
)

// Next returns the stage to run after outcome
func (s Stage) Next(outcome Outcome) Stage {
	if s.Terminal() {
		return s
	}
	if outcome == OutcomeRecords {
		return StageDone
	}

	switch s {
	case StagePrimary:
		switch outcome {
		case OutcomeBlocked:
			return StageAlternate
		case OutcomeEmpty:
			return StageFallback
		default:
			return StageExhausted
		}
	case StageAlternate:
		return StageFallback
	default:
		return StageExhausted
	}
}
