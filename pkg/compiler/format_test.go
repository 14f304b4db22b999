package compiler

import (
	"strings"
	"testing"
)

func formatSrc(t *testing.T, src string) string {
	t.Helper()
	prog, sink := parseSrc(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", sink.Render())
	}
	return FormatProgram(prog)
}

func TestFormatProgramRoundTripsMinimalProgram(t *testing.T) {
	out := formatSrc(t, "shuru\nbass")
	if strings.TrimSpace(out) != "shuru\nbass" {
		t.Errorf("got %q", out)
	}
}

func TestFormatProgramIsIdempotent(t *testing.T) {
	src := `shuru
bhai x = 2 + 3
agar (x > 0) {
bol(x)
} warna {
bol(0)
}
bass`
	once := formatSrc(t, src)
	twice := formatSrc(t, once)
	if once != twice {
		t.Errorf("formatting is not idempotent:\nonce:\n%s\ntwice:\n%s", once, twice)
	}
}

func TestFormatProgramParenthesizesBinaryExpressions(t *testing.T) {
	out := formatSrc(t, "shuru\nbhai x = 1 + 2 * 3\nbass")
	if !strings.Contains(out, "(1 + (2 * 3))") {
		t.Errorf("expected fully parenthesized binary expression, got %q", out)
	}
}

func TestFormatProgramRendersArrayDeclAndIndex(t *testing.T) {
	out := formatSrc(t, "shuru\nbhai nums[4]\nnums[0] = 7\nbass")
	if !strings.Contains(out, "bhai nums[4];") {
		t.Errorf("expected array decl with size suffix, got %q", out)
	}
	if !strings.Contains(out, "nums[0] = 7;") {
		t.Errorf("expected index assignment, got %q", out)
	}
}

func TestFormatProgramRendersFunctionWithoutKaamKeyword(t *testing.T) {
	out := formatSrc(t, "bhai add(bhai a, bhai b) {\nnikal a + b\n}\nshuru\nbass")
	if !strings.Contains(out, "bhai add(bhai a, bhai b) {") {
		t.Errorf("expected function header without a leading `kaam` keyword, got %q", out)
	}
}

func TestFormatProgramRendersBoolLiteralsInEnglish(t *testing.T) {
	out := formatSrc(t, "shuru\nbhai ok = true\nbass")
	if !strings.Contains(out, "= true;") {
		t.Errorf("expected `true`, not a Hinglish spelling, got %q", out)
	}
}

func TestFormatProgramEscapesStringLiterals(t *testing.T) {
	out := formatSrc(t, `shuru
bol("line1\nline2\t\"quoted\"")
bass`)
	if !strings.Contains(out, `"line1\nline2\t\"quoted\""`) {
		t.Errorf("expected re-escaped string literal, got %q", out)
	}
}

func TestFormatProgramRendersAggregateFields(t *testing.T) {
	out := formatSrc(t, "struct Row {\nbhai cells\n}\nshuru\nbass")
	if !strings.Contains(out, "struct Row {") || !strings.Contains(out, "bhai cells;") {
		t.Errorf("expected struct field line, got %q", out)
	}
}
