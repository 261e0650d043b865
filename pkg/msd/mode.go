package msd

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// Mode selects what to do with a parsed expression.
type Mode int

const (
	ModeInterp Mode = iota
	ModePrint
	ModePrettyPrint
)

var modeNames = map[Mode]string{
	ModeInterp:      "Interp",
	ModePrint:       "Print",
	ModePrettyPrint: "PrettyPrint",
}

// Modes lists every mode in declaration order.
func Modes() []Mode {
	return []Mode{ModeInterp, ModePrint, ModePrettyPrint}
}

// String returns the kebab-case name used on the command line, e.g.
// "pretty-print".
func (m Mode) String() string {
	name, ok := modeNames[m]
	if !ok {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return strcase.ToKebab(name)
}

// ParseMode accepts a mode name in any common casing: "pretty-print",
// "prettyPrint" and "pretty_print" are all ModePrettyPrint.
func ParseMode(s string) (Mode, error) {
	want := strcase.ToKebab(s)
	for _, m := range Modes() {
		if m.String() == want {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
