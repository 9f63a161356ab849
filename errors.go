package holograph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/holograph/index"
	"github.com/hupe1980/holograph/model"
	"github.com/hupe1980/holograph/persistence"
	"github.com/hupe1980/holograph/resonance"
)

var (
	// ErrInvalidSymbol is returned for empty or malformed symbol text.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrInvalidTriple is returned by Insert when a field is empty.
	ErrInvalidTriple = errors.New("invalid triple")

	// ErrInvalidTruthValue is returned for truth components outside [0, 1].
	ErrInvalidTruthValue = errors.New("invalid truth value")

	// ErrInvalidQualia is returned for qualia axes outside [0, 1].
	ErrInvalidQualia = errors.New("invalid qualia")

	// ErrInvalidThreshold is returned for thresholds outside [0, 1] or NaN.
	ErrInvalidThreshold = errors.New("threshold must be in [0, 1]")

	// ErrCorruptState is matched by every error caused by truncated,
	// malformed, or inconsistent snapshot input.
	ErrCorruptState = errors.New("corrupt state")

	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("store is closed")
)

// InvalidSymbolError reports a symbol the codebook cannot accept.
//
// It matches ErrInvalidSymbol with errors.Is.
type InvalidSymbolError struct {
	Symbol string
	cause  error
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol %q", e.Symbol)
}

func (e *InvalidSymbolError) Unwrap() error { return e.cause }

func (e *InvalidSymbolError) Is(target error) bool { return target == ErrInvalidSymbol }

// InvalidTripleError reports an empty subject, predicate, or object.
//
// It matches ErrInvalidTriple with errors.Is.
type InvalidTripleError struct {
	Field string
}

func (e *InvalidTripleError) Error() string {
	return fmt.Sprintf("invalid triple: empty %s", e.Field)
}

func (e *InvalidTripleError) Is(target error) bool { return target == ErrInvalidTriple }

// InvalidTruthValueError reports a truth value outside [0, 1].
//
// It matches ErrInvalidTruthValue with errors.Is.
type InvalidTruthValueError struct {
	Frequency  float64
	Confidence float64
}

func (e *InvalidTruthValueError) Error() string {
	return fmt.Sprintf("invalid truth value: frequency %g, confidence %g", e.Frequency, e.Confidence)
}

func (e *InvalidTruthValueError) Is(target error) bool { return target == ErrInvalidTruthValue }

// InvalidQualiaError reports a qualia axis outside [0, 1].
//
// It matches ErrInvalidQualia with errors.Is.
type InvalidQualiaError struct {
	Qualia model.Qualia
}

func (e *InvalidQualiaError) Error() string {
	q := e.Qualia
	return fmt.Sprintf("invalid qualia: arousal %g, valence %g, tension %g, depth %g", q.Arousal, q.Valence, q.Tension, q.Depth)
}

func (e *InvalidQualiaError) Is(target error) bool { return target == ErrInvalidQualia }

// PersistError wraps failures of Save and Load and their file and blob
// variants. Op is "save" or "load".
//
// The original underlying error can be accessed via errors.Unwrap.
type PersistError struct {
	Op    string
	cause error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.cause)
}

func (e *PersistError) Unwrap() error { return e.cause }

// CorruptStateError reports snapshot input that failed validation. The live
// store is never modified when it is returned.
//
// It matches ErrCorruptState with errors.Is.
type CorruptStateError struct {
	Reason string
	cause  error
}

func (e *CorruptStateError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("corrupt state: %s: %v", e.Reason, e.cause)
	}
	return "corrupt state: " + e.Reason
}

func (e *CorruptStateError) Unwrap() error { return e.cause }

func (e *CorruptStateError) Is(target error) bool { return target == ErrCorruptState }

func corrupt(reason string, cause error) error {
	return &CorruptStateError{Reason: reason, cause: cause}
}

func corruptf(format string, args ...any) error {
	return &CorruptStateError{Reason: fmt.Sprintf(format, args...)}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, resonance.ErrInvalidThreshold) {
		return fmt.Errorf("%w: %w", ErrInvalidThreshold, err)
	}
	if errors.Is(err, persistence.ErrCorrupt) {
		return corrupt("decode", err)
	}
	if errors.Is(err, index.ErrCorrupt) {
		return corrupt("index", err)
	}
	return err
}
