package compiler

import (
	"strings"
	"testing"
)

func TestBuildDemoSLRHasNoConflicts(t *testing.T) {
	artifacts := buildDemoSLR()
	if len(artifacts.conflicts) != 0 {
		t.Errorf("expected the textbook expression grammar to be conflict-free, got %+v", artifacts.conflicts)
	}
}

func TestBuildDemoSLRAcceptsStart(t *testing.T) {
	artifacts := buildDemoSLR()
	if _, ok := artifacts.action[stateSym{0, "id"}]; !ok {
		t.Errorf("expected a shift action on id from state 0, got %+v", artifacts.action)
	}
}

func TestSlrParseTraceAcceptsDemoExpression(t *testing.T) {
	artifacts := buildDemoSLR()
	trace := slrParseTrace(slrDemoTrace, artifacts)
	if len(trace) == 0 || trace[len(trace)-1] != "accept" {
		t.Errorf("expected the demo trace id + id * id to end in accept, got %+v", trace)
	}
}

func TestSlrParseTraceRejectsMalformedInput(t *testing.T) {
	artifacts := buildDemoSLR()
	trace := slrParseTrace([]string{"+", "id"}, artifacts)
	if len(trace) == 0 || trace[len(trace)-1] != "error" {
		t.Errorf("expected a leading + to be rejected, got %+v", trace)
	}
}

func TestFormatSLRArtifactsIncludesAllSections(t *testing.T) {
	artifacts := buildDemoSLR()
	trace := slrParseTrace(slrDemoTrace, artifacts)
	out := formatSLRArtifacts(artifacts, trace)
	for _, want := range []string{
		"SLR Demo Grammar Productions",
		"FOLLOW sets",
		"LR(0) States",
		"ACTION table",
		"GOTO table",
		"Conflicts",
		"Parse trace",
		"accept",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}
