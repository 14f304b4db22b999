package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// epsSymbol marks an empty production in the LL(1) grammar tables below.
const epsSymbol = "EPS"

// ll1Grammar is a fixed, deliberately reduced grammar covering one
// illustrative subset of Patakha (declarations, if/tabtak, bol/nikal,
// calls, expressions) — not the full grammar parser.go implements. Ported
// from original ll1.py's patakha_ll1_grammar, with terminal names adapted
// to this dialect's actual keyword spellings (SHURU/BASS/TABTAK replace
// START_BHAI/BAS_KAR/JABTAK, and the original's KAAM function-keyword
// terminal is dropped since this dialect declares functions with no
// leading keyword).
var ll1Grammar = map[string][][]string{
	"Program":   {{"FuncDecls", "SHURU", "StmtList", "BASS", "EOF"}},
	"FuncDecls": {{"TYPE", "IDENT", "LPAREN", "ParamsOpt", "RPAREN", "Block", "FuncDecls"}, {epsSymbol}},
	"ParamsOpt": {{"TYPE", "IDENT", "ParamTail"}, {epsSymbol}},
	"ParamTail": {{"COMMA", "TYPE", "IDENT", "ParamTail"}, {epsSymbol}},
	"Block":     {{"LBRACE", "StmtList", "RBRACE"}},
	"StmtList":  {{"Stmt", "StmtList"}, {epsSymbol}},
	"Stmt": {
		{"TYPE", "IDENT", "DeclTail", "SEMICOLON"},
		{"IDENT", "IdentStmtTail"},
		{"AGAR", "LPAREN", "Expr", "RPAREN", "Block", "ElsePart"},
		{"TABTAK", "LPAREN", "Expr", "RPAREN", "Block"},
		{"BOL", "LPAREN", "Expr", "RPAREN", "SEMICOLON"},
		{"NIKAL", "Expr", "SEMICOLON"},
		{"Block"},
	},
	"DeclTail": {{"ASSIGN", "Expr"}, {epsSymbol}},
	"IdentStmtTail": {
		{"ASSIGN", "Expr", "SEMICOLON"},
		{"LPAREN", "ArgListOpt", "RPAREN", "SEMICOLON"},
	},
	"ElsePart":    {{"WARNA", "Block"}, {epsSymbol}},
	"ArgListOpt":  {{"Expr", "ArgTail"}, {epsSymbol}},
	"ArgTail":     {{"COMMA", "Expr", "ArgTail"}, {epsSymbol}},
	"Expr":        {{"OrExpr"}},
	"OrExpr":      {{"AndExpr", "OrTail"}},
	"OrTail":      {{"OROR", "AndExpr", "OrTail"}, {epsSymbol}},
	"AndExpr":     {{"EqExpr", "AndTail"}},
	"AndTail":     {{"ANDAND", "EqExpr", "AndTail"}, {epsSymbol}},
	"EqExpr":      {{"RelExpr", "EqTail"}},
	"EqTail":      {{"EQ", "RelExpr", "EqTail"}, {"NEQ", "RelExpr", "EqTail"}, {epsSymbol}},
	"RelExpr":     {{"AddExpr", "RelTail"}},
	"RelTail":     {{"LT", "AddExpr", "RelTail"}, {"LTE", "AddExpr", "RelTail"}, {"GT", "AddExpr", "RelTail"}, {"GTE", "AddExpr", "RelTail"}, {epsSymbol}},
	"AddExpr":     {{"MulExpr", "AddTail"}},
	"AddTail":     {{"PLUS", "MulExpr", "AddTail"}, {"MINUS", "MulExpr", "AddTail"}, {epsSymbol}},
	"MulExpr":     {{"UnaryExpr", "MulTail"}},
	"MulTail":     {{"STAR", "UnaryExpr", "MulTail"}, {"SLASH", "UnaryExpr", "MulTail"}, {epsSymbol}},
	"UnaryExpr":   {{"NOT", "UnaryExpr"}, {"MINUS", "UnaryExpr"}, {"Primary"}},
	"Primary":     {{"NUMBER"}, {"STRING"}, {"TRUE"}, {"FALSE"}, {"IDENT", "PrimaryTail"}, {"LPAREN", "Expr", "RPAREN"}},
	"PrimaryTail": {{"LPAREN", "ArgListOpt", "RPAREN"}, {epsSymbol}},
}

const ll1StartSymbol = "Program"

type conflict struct {
	lhs, term  string
	old, newer []string
}

// ll1Artifacts is everything build_ll1_artifacts computed in the original:
// FIRST/FOLLOW sets, the parse table, and any conflicts found building it.
type ll1Artifacts struct {
	nonterminals map[string]bool
	first        map[string]map[string]bool
	follow       map[string]map[string]bool
	table        map[[2]string][]string
	conflicts    []conflict
}

func buildLL1Artifacts() *ll1Artifacts {
	nonterminals := map[string]bool{}
	for nt := range ll1Grammar {
		nonterminals[nt] = true
	}
	first := computeFirstSets(nonterminals)
	follow := computeFollowSets(nonterminals, first)
	table, conflicts := buildLL1Table(nonterminals, first, follow)
	return &ll1Artifacts{nonterminals: nonterminals, first: first, follow: follow, table: table, conflicts: conflicts}
}

func firstOfSequence(seq []string, first map[string]map[string]bool, nonterminals map[string]bool) map[string]bool {
	out := map[string]bool{}
	if len(seq) == 0 {
		out[epsSymbol] = true
		return out
	}
	allNullable := true
	for _, sym := range seq {
		if sym == epsSymbol {
			out[epsSymbol] = true
			continue
		}
		if !nonterminals[sym] {
			out[sym] = true
			allNullable = false
			break
		}
		for s := range first[sym] {
			if s != epsSymbol {
				out[s] = true
			}
		}
		if !first[sym][epsSymbol] {
			allNullable = false
			break
		}
	}
	if allNullable {
		out[epsSymbol] = true
	}
	return out
}

func computeFirstSets(nonterminals map[string]bool) map[string]map[string]bool {
	first := map[string]map[string]bool{}
	for nt := range nonterminals {
		first[nt] = map[string]bool{}
	}
	changed := true
	for changed {
		changed = false
		for nt, prods := range ll1Grammar {
			for _, prod := range prods {
				for s := range firstOfSequence(prod, first, nonterminals) {
					if !first[nt][s] {
						first[nt][s] = true
						changed = true
					}
				}
			}
		}
	}
	return first
}

func computeFollowSets(nonterminals map[string]bool, first map[string]map[string]bool) map[string]map[string]bool {
	follow := map[string]map[string]bool{}
	for nt := range nonterminals {
		follow[nt] = map[string]bool{}
	}
	follow[ll1StartSymbol]["EOF"] = true

	changed := true
	for changed {
		changed = false
		for lhs, prods := range ll1Grammar {
			for _, prod := range prods {
				for i, sym := range prod {
					if !nonterminals[sym] {
						continue
					}
					suffix := prod[i+1:]
					if len(suffix) == 0 {
						suffix = []string{epsSymbol}
					}
					suffixFirst := firstOfSequence(suffix, first, nonterminals)
					for s := range suffixFirst {
						if s == epsSymbol {
							continue
						}
						if !follow[sym][s] {
							follow[sym][s] = true
							changed = true
						}
					}
					if suffixFirst[epsSymbol] || len(prod[i+1:]) == 0 {
						for s := range follow[lhs] {
							if !follow[sym][s] {
								follow[sym][s] = true
								changed = true
							}
						}
					}
				}
			}
		}
	}
	return follow
}

func buildLL1Table(nonterminals map[string]bool, first, follow map[string]map[string]bool) (map[[2]string][]string, []conflict) {
	table := map[[2]string][]string{}
	var conflicts []conflict
	for lhs, prods := range ll1Grammar {
		for _, prod := range prods {
			firstSet := firstOfSequence(prod, first, nonterminals)
			targets := map[string]bool{}
			for s := range firstSet {
				if s != epsSymbol {
					targets[s] = true
				}
			}
			if firstSet[epsSymbol] {
				for s := range follow[lhs] {
					targets[s] = true
				}
			}
			for term := range targets {
				key := [2]string{lhs, term}
				if existing, ok := table[key]; ok && !equalStrings(existing, prod) {
					conflicts = append(conflicts, conflict{lhs: lhs, term: term, old: existing, newer: prod})
				} else {
					table[key] = prod
				}
			}
		}
	}
	return table, conflicts
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// tokenTerminalName maps an actual lexed token onto one of ll1Grammar's
// fixed terminal names. Constructs outside this grammar's reduced subset
// (arrays, switch, for/do-while, structs, imports, ...) fall back to the
// token's own symbol text, which the table has no entry for — the trace
// reports a "no rule" error there, exactly as feeding any real program
// through a deliberately partial demo grammar should.
func tokenTerminalName(t Token) string {
	switch t.Type {
	case TokKwShuru:
		return "SHURU"
	case TokKwBass:
		return "BASS"
	case TokKwInt, TokKwFloat, TokKwBool, TokKwText, TokKwVoid:
		return "TYPE"
	case TokIdent:
		return "IDENT"
	case TokLParen:
		return "LPAREN"
	case TokRParen:
		return "RPAREN"
	case TokComma:
		return "COMMA"
	case TokLBrace:
		return "LBRACE"
	case TokRBrace:
		return "RBRACE"
	case TokSemicolon:
		return "SEMICOLON"
	case TokAssign:
		return "ASSIGN"
	case TokKwAgar:
		return "AGAR"
	case TokKwWarna:
		return "WARNA"
	case TokKwTabtak:
		return "TABTAK"
	case TokKwBol:
		return "BOL"
	case TokKwNikal:
		return "NIKAL"
	case TokOrOr:
		return "OROR"
	case TokAndAnd:
		return "ANDAND"
	case TokEq:
		return "EQ"
	case TokNe:
		return "NEQ"
	case TokLt:
		return "LT"
	case TokLe:
		return "LTE"
	case TokGt:
		return "GT"
	case TokGe:
		return "GTE"
	case TokPlus:
		return "PLUS"
	case TokMinus:
		return "MINUS"
	case TokStar:
		return "STAR"
	case TokSlash:
		return "SLASH"
	case TokNot:
		return "NOT"
	case TokInt, TokFloat:
		return "NUMBER"
	case TokString:
		return "STRING"
	case TokBool:
		if t.Lexeme == "true" {
			return "TRUE"
		}
		return "FALSE"
	case TokEOF:
		return "EOF"
	default:
		return strings.ToUpper(t.Type.String())
	}
}

// ll1TokenKinds strips the newline tokens Lex preserves (this grammar has
// no NEWLINE terminal) and maps every remaining token to its terminal name.
func ll1TokenKinds(toks []Token) []string {
	var kinds []string
	for _, t := range toks {
		if t.Type == TokNewline {
			continue
		}
		kinds = append(kinds, tokenTerminalName(t))
	}
	return kinds
}

// predictiveParseTrace runs the textbook table-driven LL(1) algorithm over
// kinds against artifacts' parse table, recording one trace line per step.
// Ported from original ll1.py's predictive_parse_trace.
func predictiveParseTrace(kinds []string, artifacts *ll1Artifacts) []string {
	stack := []string{"EOF", ll1StartSymbol}
	input := append([]string{}, kinds...)
	if len(input) == 0 || input[len(input)-1] != "EOF" {
		input = append(input, "EOF")
	}
	index := 0
	var trace []string

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		lookahead := "EOF"
		if index < len(input) {
			lookahead = input[index]
		}

		if top == epsSymbol {
			trace = append(trace, "epsilon")
			continue
		}
		if !artifacts.nonterminals[top] {
			if top == lookahead {
				trace = append(trace, fmt.Sprintf("match %s", lookahead))
				index++
				if top == "EOF" {
					break
				}
			} else {
				trace = append(trace, fmt.Sprintf("error terminal expected=%s got=%s", top, lookahead))
				break
			}
			continue
		}

		prod, ok := artifacts.table[[2]string{top, lookahead}]
		if !ok {
			trace = append(trace, fmt.Sprintf("error no-rule (%s, %s)", top, lookahead))
			break
		}
		trace = append(trace, fmt.Sprintf("%s -> %s", top, strings.Join(prod, " ")))
		for i := len(prod) - 1; i >= 0; i-- {
			if prod[i] != epsSymbol {
				stack = append(stack, prod[i])
			}
		}
	}
	return trace
}

// formatLL1Artifacts renders FIRST/FOLLOW/table/conflicts and an optional
// parse trace, matching original ll1.py's format_ll1_artifacts layout.
func formatLL1Artifacts(artifacts *ll1Artifacts, trace []string) string {
	var b strings.Builder
	nts := sortedKeys(artifacts.nonterminals)

	fmt.Fprintln(&b, "FIRST sets")
	for _, nt := range nts {
		fmt.Fprintf(&b, "  FIRST(%s) = { %s }\n", nt, strings.Join(sortedKeys(artifacts.first[nt]), ", "))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "FOLLOW sets")
	for _, nt := range nts {
		fmt.Fprintf(&b, "  FOLLOW(%s) = { %s }\n", nt, strings.Join(sortedKeys(artifacts.follow[nt]), ", "))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "LL(1) table entries")
	var keys [][2]string
	for k := range artifacts.table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, k := range keys {
		fmt.Fprintf(&b, "  M[%s, %s] = %s\n", k[0], k[1], strings.Join(artifacts.table[k], " "))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Conflicts")
	if len(artifacts.conflicts) == 0 {
		fmt.Fprintln(&b, "  <none>")
	} else {
		for _, c := range artifacts.conflicts {
			fmt.Fprintf(&b, "  (%s, %s): %s  <->  %s\n", c.lhs, c.term, strings.Join(c.old, " "), strings.Join(c.newer, " "))
		}
	}
	if trace != nil {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Predictive parse trace")
		for _, step := range trace {
			fmt.Fprintf(&b, "  %s\n", step)
		}
	}
	return b.String()
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
