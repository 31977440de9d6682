package sfont

import "errors"

// ParseErrorKind classifies why a SoundFont file was rejected. These are
// fatal to the file being parsed; the parser never returns a partially
// populated Bank alongside one of these.
type ParseErrorKind int

const (
	// InvalidContainer means the outer RIFF/sfbk framing itself is malformed.
	InvalidContainer ParseErrorKind = iota
	// TruncatedChunk means a chunk's declared size runs past the data available.
	TruncatedChunk
	// UnsupportedVersion means the ifil chunk's major version isn't 2.
	UnsupportedVersion
	// InconsistentIndex means a bag/generator/modulator range was not
	// monotonically increasing or fell outside its owning table.
	InconsistentIndex
	// DanglingReference means a zone points at an instrument or sample index
	// that doesn't exist.
	DanglingReference
	// InvalidSampleRange means a sample header violates the Sample invariant
	// (start <= loopStart < loopEnd <= end <= len(pool)).
	InvalidSampleRange
	// EmptyBank means the file parsed cleanly but declares zero presets.
	EmptyBank
)

func (k ParseErrorKind) String() string {
	switch k {
	case InvalidContainer:
		return "InvalidContainer"
	case TruncatedChunk:
		return "TruncatedChunk"
	case UnsupportedVersion:
		return "UnsupportedVersion"
	case InconsistentIndex:
		return "InconsistentIndex"
	case DanglingReference:
		return "DanglingReference"
	case InvalidSampleRange:
		return "InvalidSampleRange"
	case EmptyBank:
		return "EmptyBank"
	default:
		return "Unknown"
	}
}

// ParseError is a fatal bank-parse failure. Kind identifies the taxonomy
// bucket from spec.md §7; Detail carries a human-readable explanation.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	return e.Kind.String() + ": " + e.Detail
}

func errf(kind ParseErrorKind, detail string) error {
	return &ParseError{Kind: kind, Detail: detail}
}

// Is allows errors.Is(err, &ParseError{Kind: EmptyBank}) style checks
// against a Kind.
func (e *ParseError) Is(target error) bool {
	var pe *ParseError
	if errors.As(target, &pe) {
		return pe.Kind == e.Kind
	}
	return false
}
