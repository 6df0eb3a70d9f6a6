package grammar

// Named regex atoms for the handful of JSON Schema primitive types and
// "format" keywords this package knows how to constrain precisely.
// Each is a complete, self-delimiting regex fragment suitable for
// splicing into a larger pattern via concatenation or alternation.
const (
	Null    = `null`
	Boolean = `(true|false)`

	// Integer matches a JSON integer literal: an optional '-', then
	// either a lone "0" or a non-zero leading digit followed by any
	// number of digits (no leading zeros, per RFC 8259).
	Integer = `-?(0|[1-9][0-9]*)`

	// Number matches a JSON number literal: Integer plus an optional
	// fractional part and an optional exponent.
	Number = `-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?`

	// stringInnerChar matches a single character permitted inside a
	// JSON string's quotes: anything but '"', '\' or a control
	// character (U+0000-U+001F), or a recognized escape sequence. The
	// control range is spliced in as literal characters because
	// automaton.Compile has no \x escape. StringInner is its unbounded
	// repetition; it is kept unexported so MinLength/MaxLength-bounded
	// strings can apply their own repetition bound to the same atom.
	stringInnerChar = `([^"\\` + "\x00-\x1F" + `]|\\["\\/bfnrt]|\\u[0-9a-fA-F]{4})`

	// StringInner matches the characters permitted inside a JSON
	// string's quotes: anything but '"', '\' or a control character,
	// or a recognized escape sequence.
	StringInner = stringInnerChar + `*`

	// String matches a complete quoted JSON string literal.
	String = `"` + StringInner + `"`

	// Whitespace matches the run of JSON insignificant whitespace
	// permitted between tokens, per RFC 8259.
	Whitespace = `[ \t\n\r]*`

	UUID     = `"[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}"`
	Date     = `"[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])"`
	Time     = `"([01][0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9](\.[0-9]+)?(Z|[+-][01][0-9]:[0-5][0-9])?"`
	DateTime = `"[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])T([01][0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9](\.[0-9]+)?(Z|[+-][01][0-9]:[0-5][0-9])?"`
	Email    = `"[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+"`
	URI      = `"[a-zA-Z][a-zA-Z0-9+.-]*:[^\s"]*"`
)

// formatAtoms maps a JSON Schema "format" keyword to the named atom
// that constrains it, for the formats this package understands.
var formatAtoms = map[string]string{
	"uuid":      UUID,
	"date":      Date,
	"time":      Time,
	"date-time": DateTime,
	"email":     Email,
	"uri":       URI,
}
