package spf

import "errors"

// Evaluation errors. Errors returned by Check wrap one of these; lookup
// errors also wrap the underlying DNS error. Use KindOf to classify.
var (
	ErrConfigInit       = errors.New("spf: configuration failed")
	ErrInvalidQuery     = errors.New("spf: invalid query")
	ErrNotAPolicyRecord = errors.New("spf: not an SPF record")
	ErrNoPolicy         = errors.New("spf: no SPF record published")
	ErrParse            = errors.New("spf: record parse failed")
	ErrTxtLookup        = errors.New("spf: TXT lookup failed")
	ErrMxLookup         = errors.New("spf: MX lookup failed")
	ErrLoopDetected     = errors.New("spf: lookup limit exceeded")
	ErrTimeout          = errors.New("spf: evaluation timed out")
)

// ErrorKind classifies an evaluation error.
type ErrorKind string

const (
	ErrorNone             ErrorKind = ""
	ErrorConfigInit       ErrorKind = "config_init_failed"
	ErrorInvalidQuery     ErrorKind = "invalid_query"
	ErrorNotAPolicyRecord ErrorKind = "not_a_policy_record"
	ErrorParse            ErrorKind = "parse_failed"
	ErrorTxtLookup        ErrorKind = "txt_lookup_failed"
	ErrorMxLookup         ErrorKind = "mx_lookup_failed"
	ErrorLoopDetected     ErrorKind = "loop_detected"
	ErrorTimeout          ErrorKind = "timeout"
	ErrorUnknown          ErrorKind = "unknown"
)

// Checked in order: a parse error wraps ErrNotAPolicyRecord, so ErrParse
// has to come first.
var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrTimeout, ErrorTimeout},
	{ErrLoopDetected, ErrorLoopDetected},
	{ErrConfigInit, ErrorConfigInit},
	{ErrInvalidQuery, ErrorInvalidQuery},
	{ErrParse, ErrorParse},
	{ErrNoPolicy, ErrorNotAPolicyRecord},
	{ErrNotAPolicyRecord, ErrorNotAPolicyRecord},
	{ErrTxtLookup, ErrorTxtLookup},
	{ErrMxLookup, ErrorMxLookup},
}

// KindOf returns the kind of err, ErrorNone for nil and ErrorUnknown for
// errors not produced by this package.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorNone
	}
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return ErrorUnknown
}
