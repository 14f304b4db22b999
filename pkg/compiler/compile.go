package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend selects which code generator Compile runs.
type Backend int

const (
	BackendC Backend = iota
	BackendStack
)

// Options is the configuration record threaded through every pipeline
// stage (spec 5: "a configuration record threaded through stages carries
// flags"). It replaces the scattered CLI-global state the original `cli.py`
// used with one value the driver and each stage read from explicitly.
type Options struct {
	Backend       Backend
	NoOptimize    bool
	EmitWarnings  bool
	EmitTokens    bool
	EmitRawIR     bool
	EmitIR        bool
	EmitStack     bool
	DumpAST       bool
	DumpASTDot    bool
	DumpSymbols   bool
	DumpCFG       bool
	DumpCFGDot    bool
	DumpLL1       bool
	DumpSLR       bool
}

// Artifact is one named output the CLI may write next to the source file
// (spec section 6's "generated artifacts" list). Ext includes the dot.
type Artifact struct {
	Ext     string
	Content string
}

// Result is everything Compile produced: the diagnostic sink (possibly
// containing only warnings), the final program, and whatever artifacts the
// requested Options asked to have emitted.
type Result struct {
	Sink      *Sink
	Program   *Program
	Module    *Module
	Artifacts []Artifact
}

// Compile runs the full pipeline — lex, parse, resolve imports, analyze,
// build IR, optimize, generate code — for the file at path, honoring opts.
// It never panics: an unreadable entry file is returned as an error, every
// other failure surfaces as a diagnostic in the returned Sink, and the caller
// (cmd/patakha) maps HasErrors/IO failure to the exit code taxonomy from
// spec section 6.
func Compile(path string, opts Options) (*Result, error) {
	sink := NewSink()
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	res := &Result{Sink: sink}

	resolver := newImportResolver(sink)
	prog, err := resolver.resolve(path, string(src))
	if err != nil {
		return nil, err
	}
	res.Program = prog

	if opts.EmitTokens {
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".tokens.txt", Content: resolver.tokenDump[path]})
	}
	if opts.DumpLL1 {
		artifacts := buildLL1Artifacts()
		trace := predictiveParseTrace(ll1TokenKinds(resolver.entryTokens), artifacts)
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".ll1.txt", Content: formatLL1Artifacts(artifacts, trace)})
	}
	if opts.DumpSLR {
		artifacts := buildDemoSLR()
		trace := slrParseTrace(slrDemoTrace, artifacts)
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".slr.txt", Content: formatSLRArtifacts(artifacts, trace)})
	}
	if sink.HasErrors() {
		return res, nil
	}

	analyzer := NewAnalyzer(sink)
	analyzer.Analyze(prog)
	if opts.DumpAST {
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".ast.txt", Content: dumpAST(prog)})
	}
	if opts.DumpASTDot {
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".ast.dot", Content: dumpASTDot(prog)})
	}
	if opts.DumpSymbols {
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".symbols.txt", Content: dumpSymbols(analyzer)})
	}
	if sink.HasErrors() {
		return res, nil
	}

	mod := BuildModule(prog)
	res.Module = mod
	if opts.EmitRawIR {
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".raw.ir", Content: dumpModule(mod)})
	}

	cfgs := map[string]*CFG{}
	for _, fn := range mod.Functions {
		cfgs[fn.Name] = BuildCFG(fn)
	}
	mainCFG := BuildCFG(mod.Main)
	for _, cfg := range cfgs {
		Optimize(cfg, opts.NoOptimize)
	}
	Optimize(mainCFG, opts.NoOptimize)

	if opts.EmitIR {
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".ir", Content: dumpCFGs(mod, cfgs, mainCFG)})
	}
	if opts.DumpCFG {
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".cfg.txt", Content: dumpCFGText(mod, cfgs, mainCFG)})
	}
	if opts.DumpCFGDot {
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".cfg.dot", Content: dumpCFGDot(mod, cfgs, mainCFG)})
	}

	if opts.EmitWarnings {
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".warnings.txt", Content: dumpWarnings(sink)})
	}
	if sink.HasErrors() {
		return res, nil
	}

	switch opts.Backend {
	case BackendStack:
		out := GenerateStack(mod, cfgs, mainCFG)
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".stk", Content: out.Source})
	default:
		out := GenerateC(mod, cfgs, mainCFG)
		res.Artifacts = append(res.Artifacts, Artifact{Ext: ".c", Content: out.Source})
		if opts.EmitStack {
			stk := GenerateStack(mod, cfgs, mainCFG)
			res.Artifacts = append(res.Artifacts, Artifact{Ext: ".stk", Content: stk.Source})
		}
	}

	return res, nil
}

// importResolver loads a compilation unit's file and everything it
// transitively imports, merging every imported file's top-level
// declarations into one Program (spec 4.4: "imports contribute their
// top-level declarations into the same IR namespace"). An imported file's
// own shuru...bass body is parsed but discarded — only the entry file's
// main body survives (spec section 9's resolution of the original's
// opposite rule, see DESIGN.md).
type importResolver struct {
	sink      *Sink
	visited   map[string]bool
	inStack   map[string]bool
	stack       []string
	tokenDump   map[string]string
	entryTokens []Token
}

func newImportResolver(sink *Sink) *importResolver {
	return &importResolver{
		sink:      sink,
		visited:   map[string]bool{},
		inStack:   map[string]bool{},
		tokenDump: map[string]string{},
	}
}

// resolve parses the entry file and every file it (transitively) imports,
// merging their declarations, and reports exactly one diagnostic naming
// every file in an import cycle if one is found.
func (r *importResolver) resolve(path string, src string) (*Program, error) {
	root := &Program{}
	if err := r.load(path, src, root, true); err != nil {
		return nil, err
	}
	return root, nil
}

func (r *importResolver) load(path, src string, root *Program, isEntry bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if r.inStack[abs] {
		var cycle []string
		started := false
		for _, p := range r.stack {
			if p == abs {
				started = true
			}
			if started {
				cycle = append(cycle, p)
			}
		}
		cycle = append(cycle, abs)
		r.sink.Errorf(Span{File: abs}, "import_cycle", "import cycle detected: %s", strings.Join(cycle, " -> "))
		return nil
	}
	if r.visited[abs] {
		return nil
	}
	r.visited[abs] = true
	r.inStack[abs] = true
	r.stack = append(r.stack, abs)
	defer func() {
		r.inStack[abs] = false
		r.stack = r.stack[:len(r.stack)-1]
	}()

	toks := Lex(abs, src, r.sink)
	r.tokenDump[path] = dumpTokens(toks)
	prog := ParseProgram(abs, toks, r.sink)

	root.Aggregates = append(root.Aggregates, prog.Aggregates...)
	root.Functions = append(root.Functions, prog.Functions...)
	if isEntry {
		root.MainBody = prog.MainBody
		root.HasMain = prog.HasMain
		r.entryTokens = toks
	}

	for _, imp := range prog.Imports {
		impPath := imp.Path
		if !filepath.IsAbs(impPath) {
			impPath = filepath.Join(filepath.Dir(abs), impPath)
		}
		impSrc, err := os.ReadFile(impPath)
		if err != nil {
			r.sink.Errorf(imp.Span, "missing_import", "cannot read imported file %q: %v", imp.Path, err)
			continue
		}
		if err := r.load(impPath, string(impSrc), root, false); err != nil {
			return err
		}
	}
	return nil
}

func dumpTokens(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		fmt.Fprintln(&b, t.String())
	}
	return b.String()
}

func dumpWarnings(sink *Sink) string {
	var b strings.Builder
	for _, d := range sink.Diagnostics() {
		if d.Severity == SeverityWarning {
			fmt.Fprintln(&b, d.Pretty())
		}
	}
	return b.String()
}
