package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "note"
	}
}

// nagLines holds the Hinglish supplementary message shown under each error code.
var nagLines = map[string]string{
	"unknown_char":           "Arre bhai, yeh character kya hai? Keyboard pe stunt mat karo.",
	"unterminated_string":    "Quote khola hai toh band bhi karo, warna compiler ro dega.",
	"expected_start":         "Program start hi bhool gaya? `shuru` daal na bhai.",
	"expected_end":           "Scene close karna tha. `bass` ke bina compiler nahi rukega.",
	"missing_semicolon":      "Semicolon kidhar gaya bhai? Line ka scene toot gaya.",
	"missing_lparen":         "Bracket kholna tha bhai. `(` missing hai.",
	"missing_rparen":         "Bracket bandh karo bhai. `)` missing hai.",
	"missing_lbrace":         "Block start ke liye `{` chahiye, hawa mein code mat udao.",
	"missing_rbrace":         "Block bandh karo `{...}` ka balance bigad gaya.",
	"invalid_statement":      "Yeh statement ka scene samajh nahi aaya. Syntax theek karo.",
	"invalid_expression":     "Expression ulta-pulta hai. Thoda seedha likh, bhai.",
	"unexpected_token":       "Token ka scene off hai. Jo expected tha woh nahi mila.",
	"undeclared_variable":    "Variable hawa mein bana diya kya? Pehle declare karo.",
	"redeclared_variable":    "Same variable do baar? Itna bhi overconfidence theek nahi.",
	"type_mismatch":          "Type mismatch ho gaya. Maths aur mood alag chal rahe hain.",
	"invalid_condition":      "Condition ka logic weak hai. Bool/int mein baat kar bhai.",
	"return_type":            "Return ka scene mismatch hai. Function type check kar.",
	"undeclared_function":    "Function ka naam suna nahi bhai. Pehle define kar.",
	"arity_mismatch":         "Arguments ka count ulta hai. Function ko jitna chahiye utna bhej.",
	"invalid_params":         "Function params ka syntax scene off hai.",
	"invalid_function":       "Function declaration ka format toot gaya.",
	"break_outside_loop":     "`tod` loop/switch ke bahar kaise chal raha hai bhai?",
	"continue_outside_loop":  "`jari` bhi loop ke bahar nahi chalega.",
	"unknown_type":           "Type ka naam compiler ko nahi mila.",
	"invalid_lvalue":         "Assignment ke left side pe valid target do.",
	"duplicate_default":      "Switch mein ek hi `default` hota hai, extra mat daalo bhai.",
	"invalid_case_label":     "Case label constant int/bool/text hona chahiye, random mat likho.",
	"duplicate_case":         "Same case value repeat kiya hai. Switch ka map clean rakho.",
	"missing_rbracket":         "Array size ke baad `]` bhool gaya kya bhai?",
	"array_init_not_supported": "Array ko seedha initializer ke saath declare nahi kar sakte abhi.",
	"missing_import":           "Import file missing hai bhai. Path check karo.",
	"import_cycle":           "Import chain gol-gol ghoom rahi hai. Circular dependency hatao.",
	"internal_error":         "Compiler khud confuse ho gaya. Yeh bug report karo.",
}

func nagLine(code string) string {
	if line, ok := nagLines[code]; ok {
		return line
	}
	return "Compiler confuse ho gaya bhai. Thoda code saaf likh."
}

// Diagnostic is a single error, warning, or note attached to a source span.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Span     Span
	seq      int // insertion order, for stable sort
}

// Nag returns the diagnostic's humorous supplementary line.
func (d Diagnostic) Nag() string {
	return nagLine(d.Code)
}

// Pretty renders the diagnostic as the textual format from spec section 6:
// <path>:<line>:<col>: <severity>: <message>, followed by the nag-line.
func (d Diagnostic) Pretty() string {
	return fmt.Sprintf("%s: %s: %s\n  %s", d.Span, d.Severity, d.Message, d.Nag())
}

// Sink is an ordered collection of diagnostics shared across pipeline stages.
// Stages append to it and continue where safe; nothing here ever panics for
// an expected error.
type Sink struct {
	diags []Diagnostic
	next  int
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Errorf(span Span, code, format string, args ...interface{}) {
	s.add(SeverityError, code, span, format, args...)
}

func (s *Sink) Warnf(span Span, code, format string, args ...interface{}) {
	s.add(SeverityWarning, code, span, format, args...)
}

func (s *Sink) Notef(span Span, code, format string, args ...interface{}) {
	s.add(SeverityNote, code, span, format, args...)
}

func (s *Sink) add(sev Severity, code string, span Span, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
		seq:      s.next,
	})
	s.next++
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Diagnostics returns all recorded diagnostics, stably ordered by file, then
// source offset, then insertion order (spec section 6).
func (s *Sink) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Span.File != out[j].Span.File {
			return out[i].Span.File < out[j].Span.File
		}
		if out[i].Span.Offset != out[j].Span.Offset {
			return out[i].Span.Offset < out[j].Span.Offset
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Render writes every diagnostic's pretty-printed form joined by blank lines.
func (s *Sink) Render() string {
	var b strings.Builder
	for i, d := range s.Diagnostics() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(d.Pretty())
		b.WriteString("\n")
	}
	return b.String()
}
