package cookie

import (
	"errors"
	"strconv"
)

// Reason identifies why a header could not be parsed.
type Reason int

const (
	// ReasonNullInput means there was no header (or no request URL) to parse.
	ReasonNullInput Reason = iota + 1
	// ReasonInvalidMaxAge means Max-Age was present but not an integer.
	ReasonInvalidMaxAge
	// ReasonInvalidExpires means Expires was present but not a known date format.
	ReasonInvalidExpires
)

func (r Reason) String() string {
	switch r {
	case ReasonNullInput:
		return "NullInput"
	case ReasonInvalidMaxAge:
		return "InvalidMaxAge"
	case ReasonInvalidExpires:
		return "InvalidExpires"
	default:
		return "Reason(" + strconv.Itoa(int(r)) + ")"
	}
}

var (
	// ErrMalformed matches every error returned by the parser.
	ErrMalformed = errors.New("cookie: malformed cookie")

	ErrNullInput      = &MalformedError{Reason: ReasonNullInput}
	ErrInvalidMaxAge  = &MalformedError{Reason: ReasonInvalidMaxAge}
	ErrInvalidExpires = &MalformedError{Reason: ReasonInvalidExpires}
)

// MalformedError is the single error type returned when a header is rejected.
type MalformedError struct {
	Reason    Reason
	Attribute string // offending attribute key, empty for ReasonNullInput
	Value     string // offending attribute value
	Err       error  // underlying cause, if any
}

func (e *MalformedError) Error() string {
	msg := "cookie: malformed cookie (" + e.Reason.String() + ")"
	if e.Attribute != "" {
		msg += ": " + e.Attribute + "=" + strconv.Quote(e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformed and any *MalformedError with the same Reason.
func (e *MalformedError) Is(target error) bool {
	if target == ErrMalformed {
		return true
	}
	t, ok := target.(*MalformedError)
	return ok && t.Reason == e.Reason
}

// ReasonOf extracts the Reason from an error returned by the parser.
func ReasonOf(err error) (Reason, bool) {
	var merr *MalformedError
	if errors.As(err, &merr) {
		return merr.Reason, true
	}
	return 0, false
}
