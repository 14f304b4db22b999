package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// LintIssue is one finding from Lint: either folded in from the semantic
// analyzer (SeverityWarning) or raised directly by the linter's own style
// checks (SeverityWarning for legacy spellings, SeverityNote for everything
// cosmetic), grounded on original lint.py's LintIssue dataclass.
type LintIssue struct {
	Severity Severity
	Code     string
	Message  string
	Span     Span
}

// canonicalSpelling maps a keyword token type to the spelling `patakha lint`
// prefers, derived from lexer.go's keywords table: every TokenType with more
// than one source spelling has exactly one Hinglish entry and exactly one
// English/legacy alias, and the Hinglish one is canonical.
var canonicalSpelling = map[TokenType]string{
	TokKwShuru:  "shuru",
	TokKwBass:   "bass",
	TokKwAgar:   "agar",
	TokKwWarna:  "warna",
	TokKwTabtak: "tabtak",
	TokKwJabtak: "jabtak",
	TokKwKar:    "kar",
	TokKwNikal:  "nikal",
	TokKwTod:    "tod",
	TokKwJari:   "jari",
	TokKwKaksha: "kaksha",
	TokKwLaao:   "laao",
	TokKwBata:   "bata",
	TokKwFloat:  "decimal",
	TokKwVoid:   "khali",
}

// Lint runs every style/correctness check `patakha lint` reports: legacy
// keyword spellings, trailing whitespace, a missing final newline, the
// semantic analyzer's own warnings, and a diff against FormatProgram's
// canonical rendering. Grounded on original lint.py's lint_source.
func Lint(path, src string) []LintIssue {
	var issues []LintIssue

	sink := NewSink()
	toks := Lex(path, src, sink)
	for _, t := range toks {
		if canon, ok := canonicalSpelling[t.Type]; ok && t.Lexeme != canon {
			issues = append(issues, LintIssue{
				Severity: SeverityWarning,
				Code:     "legacy_keyword",
				Message:  fmt.Sprintf("use `%s` instead of legacy `%s`", canon, t.Lexeme),
				Span:     t.Span,
			})
		}
	}

	lines := strings.Split(src, "\n")
	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t\r")
		if trimmed != line && (i < len(lines)-1 || line != "") {
			issues = append(issues, LintIssue{
				Severity: SeverityNote,
				Code:     "trailing_whitespace",
				Message:  "trailing whitespace",
				Span:     Span{File: path, Line: i + 1, Column: len(trimmed) + 1},
			})
		}
	}
	if len(src) > 0 && !strings.HasSuffix(src, "\n") {
		issues = append(issues, LintIssue{
			Severity: SeverityNote,
			Code:     "final_newline",
			Message:  "file does not end with a newline",
			Span:     Span{File: path, Line: len(lines)},
		})
	}

	prog := ParseProgram(path, toks, sink)
	if !sink.HasErrors() {
		analyzer := NewAnalyzer(sink)
		analyzer.Analyze(prog)
		for _, d := range sink.Diagnostics() {
			if d.Severity == SeverityWarning {
				issues = append(issues, LintIssue{
					Severity: SeverityWarning,
					Code:     d.Code,
					Message:  d.Message,
					Span:     d.Span,
				})
			}
		}
		if !sink.HasErrors() {
			if canonical := FormatProgram(prog); canonical != src {
				issues = append(issues, LintIssue{
					Severity: SeverityNote,
					Code:     "format",
					Message:  "formatting differs from canonical `patakha fmt` style",
					Span:     Span{File: path, Line: 1, Column: 1},
				})
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Span.Line != b.Span.Line {
			return a.Span.Line < b.Span.Line
		}
		if a.Span.Column != b.Span.Column {
			return a.Span.Column < b.Span.Column
		}
		if a.Severity != b.Severity {
			return a.Severity == SeverityWarning
		}
		return a.Code < b.Code
	})
	return issues
}

// FormatLintIssues renders a lint run the way `patakha lint` prints it:
// one summary line when clean, otherwise one `path:line:col [sev:code] msg`
// line per issue, grounded on original lint.py's format_lint_issues.
func FormatLintIssues(path string, issues []LintIssue) string {
	if len(issues) == 0 {
		return fmt.Sprintf("%s: no lint issues found.\n", path)
	}
	var b strings.Builder
	for _, is := range issues {
		fmt.Fprintf(&b, "%s:%d:%d [%s:%s] %s\n", path, is.Span.Line, is.Span.Column, is.Severity, is.Code, is.Message)
	}
	return b.String()
}

// LintHasWarnings reports whether any issue is warning-severity (used by
// `--strict` to decide whether to escalate the exit code).
func LintHasWarnings(issues []LintIssue) bool {
	for _, is := range issues {
		if is.Severity == SeverityWarning {
			return true
		}
	}
	return false
}
