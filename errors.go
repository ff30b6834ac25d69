package heracles

import "fmt"

// Code is the public error taxonomy (spec.md §4.7/§6), distinct from
// the internal pathexpr.Code taxonomy: this one covers the whole
// engine, not just path-expression evaluation.
type Code int

const (
	NOERROR Code = iota
	ENOMEM
	EINTERNAL
	EPATHX
	ENOMATCH
	EMMATCH
	ESYNTAX
	ENOLENS
	EMXFM
	ENOSPAN
	EMVDESC
	ECMDRUN
	EBADARG
	ELABEL
)

var codeNames = map[Code]string{
	NOERROR:   "NOERROR",
	ENOMEM:    "ENOMEM",
	EINTERNAL: "EINTERNAL",
	EPATHX:    "EPATHX",
	ENOMATCH:  "ENOMATCH",
	EMMATCH:   "EMMATCH",
	ESYNTAX:   "ESYNTAX",
	ENOLENS:   "ENOLENS",
	EMXFM:     "EMXFM",
	ENOSPAN:   "ENOSPAN",
	EMVDESC:   "EMVDESC",
	ECMDRUN:   "ECMDRUN",
	EBADARG:   "EBADARG",
	ELABEL:    "ELABEL",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "EUNKNOWN"
}

// Error is the public error type every façade method returns on
// failure, carrying the canonical message plus whatever extra detail
// the failing operation recorded (spec.md §4.7).
type Error struct {
	Code         Code
	Minor        string
	Details      string
	MinorDetails string
	Info         string
}

func (e *Error) Error() string {
	msg := canonicalMessage[e.Code]
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", msg, e.Details)
	}
	return msg
}

var canonicalMessage = map[Code]string{
	NOERROR:   "no error",
	ENOMEM:    "out of memory",
	EINTERNAL: "internal error",
	EPATHX:    "invalid path expression",
	ENOMATCH:  "no matching node",
	EMMATCH:   "multiple matching nodes",
	ESYNTAX:   "syntax error in lens",
	ENOLENS:   "no matching lens found",
	EMXFM:     "multiple transforms",
	ENOSPAN:   "span is not available",
	EMVDESC:   "cannot move node into its descendant",
	ECMDRUN:   "error running command",
	EBADARG:   "invalid argument",
	ELABEL:    "invalid label",
}

func newError(code Code, details string) *Error {
	return &Error{Code: code, Details: details}
}
