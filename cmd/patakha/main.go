// Command patakha is the Patakha compiler's CLI: compile .bhai sources to C
// or stack assembly, with optional dumps of every intermediate stage, plus
// fmt/lint/repl subcommands grounded on the original `cli.py`'s main_fmt/
// main_lint/main_repl contracts.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"patakha/pkg/compiler"
	"patakha/pkg/interp"
)

// Exit codes, spec section 6: 0 success, 1 diagnostics reported with
// errors, 2 usage error, 3 I/O failure.
const (
	exitOK          = 0
	exitDiagnostics = 1
	exitUsage       = 2
	exitIOFailure   = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches on args[0] against the known subcommand set, defaulting to
// compile when it's absent or not recognized — matching the original CLI's
// exact rule (DESIGN.md).
func run(args []string) int {
	cmd := "compile"
	rest := args
	if len(args) > 0 {
		switch args[0] {
		case "compile", "fmt", "lint", "repl":
			cmd = args[0]
			rest = args[1:]
		}
	}

	switch cmd {
	case "compile":
		return runCompile(rest)
	case "fmt":
		return runFmt(rest)
	case "lint":
		return runLint(rest)
	case "repl":
		return runRepl(rest)
	}
	return exitUsage
}

func runCompile(args []string) int {
	fs := flag.NewFlagSet("patakha compile", flag.ContinueOnError)
	output := fs.String("o", "", "output path (default: .c or .stk next to the source)")
	backendFlag := fs.String("backend", "c", "backend: c or stack")
	noOpt := fs.Bool("no-opt", false, "disable IR optimization")
	emitWarnings := fs.Bool("emit-warnings", false, "write <source>.warnings.txt")
	emitTokens := fs.Bool("emit-tokens", false, "write <source>.tokens.txt")
	emitIR := fs.Bool("emit-ir", false, "write optimized IR to <source>.ir")
	emitRawIR := fs.Bool("emit-raw-ir", false, "write pre-optimization IR to <source>.raw.ir")
	emitStack := fs.Bool("emit-stack", false, "also write stack backend code to <source>.stk")
	dumpAST := fs.Bool("dump-ast", false, "write AST tree to <source>.ast.txt")
	dumpASTDot := fs.Bool("dump-ast-dot", false, "write AST dot graph to <source>.ast.dot")
	dumpSymbols := fs.Bool("dump-symbols", false, "write symbol table to <source>.symbols.txt")
	dumpCFG := fs.Bool("dump-cfg", false, "write CFG dump to <source>.cfg.txt")
	dumpCFGDot := fs.Bool("dump-cfg-dot", false, "write CFG dot graph to <source>.cfg.dot")
	useGCC := fs.Bool("gcc", false, "invoke gcc on the generated C to produce an executable")
	exePath := fs.String("exe", "", "executable path for --gcc (default: source stem)")
	dumpLL1 := fs.Bool("dump-ll1", false, "write an LL(1) FIRST/FOLLOW/table/trace dump to <source>.ll1.txt")
	dumpSLR := fs.Bool("dump-slr", false, "write an SLR(1) automaton/table/trace dump to <source>.slr.txt")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: patakha [compile] <source.bhai> [flags]")
		fmt.Fprintln(fs.Output(), "import: an imported file's own shuru...bass body is ignored; only the entry file's main body runs")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: patakha [compile] <source.bhai> [flags]")
		return exitUsage
	}
	sourcePath := fs.Arg(0)

	backend := compiler.BackendC
	switch *backendFlag {
	case "c":
		backend = compiler.BackendC
	case "stack":
		backend = compiler.BackendStack
	default:
		fmt.Fprintf(os.Stderr, "unknown --backend %q (want c or stack)\n", *backendFlag)
		return exitUsage
	}

	opts := compiler.Options{
		Backend:      backend,
		NoOptimize:   *noOpt,
		EmitWarnings: *emitWarnings,
		EmitTokens:   *emitTokens,
		EmitIR:       *emitIR,
		EmitRawIR:    *emitRawIR,
		EmitStack:    *emitStack,
		DumpAST:      *dumpAST,
		DumpASTDot:   *dumpASTDot,
		DumpSymbols:  *dumpSymbols,
		DumpCFG:      *dumpCFG,
		DumpCFGDot:   *dumpCFGDot,
		DumpLL1:      *dumpLL1,
		DumpSLR:      *dumpSLR,
	}

	result, err := compiler.Compile(sourcePath, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read source file %q: %v\n", sourcePath, err)
		return exitIOFailure
	}

	for _, d := range result.Sink.Diagnostics() {
		if d.Severity != compiler.SeverityWarning {
			fmt.Fprintln(os.Stderr, d.Pretty())
		}
	}
	if result.Sink.HasErrors() {
		return exitDiagnostics
	}
	for _, d := range result.Sink.Diagnostics() {
		if d.Severity == compiler.SeverityWarning {
			fmt.Println(d.Pretty())
		}
	}

	stem := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	var cPath string
	for _, art := range result.Artifacts {
		var path string
		if art.Ext == primaryExt(backend) && *output != "" {
			path = *output
		} else {
			path = stem + art.Ext
		}
		if err := os.WriteFile(path, []byte(art.Content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "could not write %s: %v\n", path, err)
			return exitIOFailure
		}
		fmt.Printf("[ok] wrote %s\n", path)
		if art.Ext == ".c" {
			cPath = path
		}
	}

	if *useGCC {
		if backend != compiler.BackendC {
			fmt.Fprintln(os.Stderr, "--gcc works only with --backend c")
			return exitUsage
		}
		exe := *exePath
		if exe == "" {
			exe = stem
		}
		cmd := exec.Command("gcc", cPath, "-o", exe)
		out, err := cmd.CombinedOutput()
		if err != nil {
			fmt.Fprintln(os.Stderr, "gcc compilation failed:")
			fmt.Fprintln(os.Stderr, string(out))
			return exitIOFailure
		}
		fmt.Printf("[ok] executable generated: %s\n", exe)
	}

	return exitOK
}

func primaryExt(backend compiler.Backend) string {
	if backend == compiler.BackendStack {
		return ".stk"
	}
	return ".c"
}

// runFmt re-tokenizes and re-parses the source, pretty-prints it back via
// compiler.FormatProgram, and either writes it in place, prints it, or
// (with --check) reports whether it would change, matching original
// cli.py's main_fmt.
func runFmt(args []string) int {
	fs := flag.NewFlagSet("patakha fmt", flag.ContinueOnError)
	write := fs.Bool("w", false, "write the formatted result back to the source file")
	fs.BoolVar(write, "write", false, "alias for -w")
	check := fs.Bool("check", false, "exit 1 if the source is not already canonically formatted")
	stdout := fs.Bool("stdout", false, "print the formatted result to stdout instead of writing it")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: patakha fmt <source.bhai> [-w|--check|--stdout]")
		return exitUsage
	}
	path := fs.Arg(0)

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read %s: %v\n", path, err)
		return exitIOFailure
	}

	sink := compiler.NewSink()
	toks := compiler.Lex(path, string(src), sink)
	prog := compiler.ParseProgram(path, toks, sink)
	if sink.HasErrors() {
		fmt.Fprintln(os.Stderr, sink.Render())
		return exitDiagnostics
	}

	formatted := compiler.FormatProgram(prog)
	changed := formatted != string(src)

	if *check {
		if changed {
			fmt.Printf("[fmt] needs formatting: %s\n", path)
			return exitDiagnostics
		}
		fmt.Printf("[fmt] already formatted: %s\n", path)
		return exitOK
	}
	if *stdout {
		fmt.Print(formatted)
		return exitOK
	}
	if !changed {
		fmt.Printf("[fmt] no changes: %s\n", path)
		return exitOK
	}
	if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "could not write %s: %v\n", path, err)
		return exitIOFailure
	}
	fmt.Printf("[fmt] formatted: %s\n", path)
	return exitOK
}

// runLint runs compiler.Lint and prints its report; --strict turns any
// warning-severity issue into a nonzero exit, matching original cli.py's
// main_lint.
func runLint(args []string) int {
	fs := flag.NewFlagSet("patakha lint", flag.ContinueOnError)
	strict := fs.Bool("strict", false, "exit nonzero if any warning-severity issue is found")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: patakha lint <source.bhai> [--strict]")
		return exitUsage
	}
	path := fs.Arg(0)

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read %s: %v\n", path, err)
		return exitIOFailure
	}

	issues := compiler.Lint(path, string(src))
	fmt.Print(compiler.FormatLintIssues(path, issues))
	if *strict && compiler.LintHasWarnings(issues) {
		return exitDiagnostics
	}
	return exitOK
}

// runRepl is a line-oriented read-eval-print loop over the reference
// interpreter: bare statements are wrapped in an implicit shuru...bass
// before being parsed, matching original cli.py's main_repl. An optional
// positional argument preloads a source file's main body into the buffer.
func runRepl(args []string) int {
	fs := flag.NewFlagSet("patakha repl", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	var buffer []string
	if fs.NArg() == 1 {
		src, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read %s: %v\n", fs.Arg(0), err)
			return exitIOFailure
		}
		buffer = append(buffer, string(src))
	}

	fmt.Println("Patakha REPL. :help for meta-commands, :quit to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	prompt := "patakha> "
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println()
			return exitOK
		}
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case ":quit":
			return exitOK
		case ":help":
			fmt.Println(replHelp)
			continue
		case ":show":
			fmt.Println(strings.Join(buffer, "\n"))
			continue
		case ":clear":
			buffer = nil
			fmt.Println("[repl] buffer cleared")
			continue
		case ":run":
			replRun(buffer)
			continue
		}
		buffer = append(buffer, line)
	}
}

const replHelp = `:run    evaluate the buffer so far
:show   print the buffer so far
:clear  discard the buffer
:quit   exit the REPL
:help   show this message`

// replRun wraps buffer in an implicit shuru...bass if it isn't one already,
// compiles and runs it through the reference interpreter, and reports
// diagnostics or a runtime error without exiting the REPL.
func replRun(buffer []string) {
	src := strings.Join(buffer, "\n")
	trimmed := strings.TrimSpace(src)
	if !strings.HasPrefix(trimmed, "shuru") {
		src = "shuru\n" + src + "\nbass\n"
	}

	sink := compiler.NewSink()
	toks := compiler.Lex("<repl>", src, sink)
	prog := compiler.ParseProgram("<repl>", toks, sink)
	if sink.HasErrors() {
		fmt.Print(sink.Render())
		return
	}
	analyzer := compiler.NewAnalyzer(sink)
	analyzer.Analyze(prog)
	if sink.HasErrors() {
		fmt.Print(sink.Render())
		return
	}

	stdin := bufio.NewReader(os.Stdin)
	it := interp.New(prog, func() string {
		line, _ := stdin.ReadString('\n')
		return strings.TrimRight(line, "\r\n")
	}, func(s string) {
		fmt.Println(s)
	})
	if _, err := it.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "[repl] runtime error: %v\n", err)
	}
}
