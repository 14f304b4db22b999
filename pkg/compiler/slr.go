package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// slrProduction and slrItem model a classic textbook LR(0) automaton build,
// ported near-verbatim from original slr_lab.py: it is deliberately generic
// (the demo grammar is arithmetic expressions, not Patakha's own grammar)
// and source-independent — `--dump-slr` always builds the same automaton
// and runs the same fixed demo trace, regardless of the file it's invoked
// on, matching the original's own `build_demo_slr`/`slr_parse_trace` call.
type slrProduction struct {
	lhs string
	rhs []string
}

type slrItem struct {
	prodIdx int
	dot     int
}

// stateSym keys the ACTION/GOTO/transition tables below.
type stateSym struct {
	state int
	sym   string
}

type slrArtifacts struct {
	productions []slrProduction
	states      []map[slrItem]bool
	action      map[stateSym]string
	goTo        map[stateSym]int
	follow      map[string]map[string]bool
	conflicts   []slrConflict
}

type slrConflict struct {
	state      int
	symbol     string
	old, newer string
}

var slrDemoProductions = []slrProduction{
	{"S'", []string{"E"}},
	{"E", []string{"E", "+", "T"}},
	{"E", []string{"T"}},
	{"T", []string{"T", "*", "F"}},
	{"T", []string{"F"}},
	{"F", []string{"(", "E", ")"}},
	{"F", []string{"id"}},
}

var slrDemoNonterminals = map[string]bool{"S'": true, "E": true, "T": true, "F": true}
var slrDemoTerminals = []string{"+", "*", "(", ")", "id"}

func slrClosure(items map[slrItem]bool, prods []slrProduction) map[slrItem]bool {
	out := map[slrItem]bool{}
	for it := range items {
		out[it] = true
	}
	changed := true
	for changed {
		changed = false
		for it := range out {
			prod := prods[it.prodIdx]
			if it.dot >= len(prod.rhs) {
				continue
			}
			sym := prod.rhs[it.dot]
			if !slrDemoNonterminals[sym] {
				continue
			}
			for idx, p := range prods {
				if p.lhs == sym {
					ni := slrItem{prodIdx: idx, dot: 0}
					if !out[ni] {
						out[ni] = true
						changed = true
					}
				}
			}
		}
	}
	return out
}

func slrGoto(items map[slrItem]bool, sym string, prods []slrProduction) map[slrItem]bool {
	moved := map[slrItem]bool{}
	for it := range items {
		prod := prods[it.prodIdx]
		if it.dot < len(prod.rhs) && prod.rhs[it.dot] == sym {
			moved[slrItem{prodIdx: it.prodIdx, dot: it.dot + 1}] = true
		}
	}
	return slrClosure(moved, prods)
}

func itemSetEqual(a, b map[slrItem]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for it := range a {
		if !b[it] {
			return false
		}
	}
	return true
}

// buildDemoSLR constructs the LR(0) automaton and SLR(1) action/goto tables
// for the fixed arithmetic-expression grammar above.
func buildDemoSLR() *slrArtifacts {
	prods := slrDemoProductions
	symbols := append(append([]string{}, slrDemoTerminals...), "S'", "E", "T", "F")

	start := slrClosure(map[slrItem]bool{{prodIdx: 0, dot: 0}: true}, prods)
	states := []map[slrItem]bool{start}
	queue := []int{0}
	transitions := map[stateSym]int{}

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		for _, sym := range symbols {
			target := slrGoto(states[idx], sym, prods)
			if len(target) == 0 {
				continue
			}
			targetIdx := -1
			for i, s := range states {
				if itemSetEqual(s, target) {
					targetIdx = i
					break
				}
			}
			if targetIdx == -1 {
				targetIdx = len(states)
				states = append(states, target)
				queue = append(queue, targetIdx)
			}
			transitions[stateSym{idx, sym}] = targetIdx
		}
	}

	follow := slrFollowSets(prods, "S'")
	action := map[stateSym]string{}
	gotoTable := map[stateSym]int{}
	var conflicts []slrConflict

	for stateIdx, state := range states {
		for it := range state {
			prod := prods[it.prodIdx]
			if it.dot < len(prod.rhs) {
				sym := prod.rhs[it.dot]
				target, ok := transitions[stateSym{stateIdx, sym}]
				if !ok {
					continue
				}
				if slrDemoNonterminals[sym] {
					gotoTable[stateSym{stateIdx, sym}] = target
				} else {
					slrSetAction(action, &conflicts, stateIdx, sym, fmt.Sprintf("s%d", target))
				}
				continue
			}
			if prod.lhs == "S'" {
				slrSetAction(action, &conflicts, stateIdx, "$", "acc")
				continue
			}
			for term := range follow[prod.lhs] {
				slrSetAction(action, &conflicts, stateIdx, term, fmt.Sprintf("r%d", it.prodIdx))
			}
		}
	}

	return &slrArtifacts{
		productions: prods,
		states:      states,
		action:      action,
		goTo:        gotoTable,
		follow:      follow,
		conflicts:   conflicts,
	}
}

func slrSetAction(action map[stateSym]string, conflicts *[]slrConflict, state int, symbol, value string) {
	key := stateSym{state, symbol}
	if existing, ok := action[key]; ok && existing != value {
		*conflicts = append(*conflicts, slrConflict{state: state, symbol: symbol, old: existing, newer: value})
		return
	}
	action[key] = value
}

func slrFollowSets(prods []slrProduction, start string) map[string]map[string]bool {
	nonterminals := map[string]bool{}
	for _, p := range prods {
		nonterminals[p.lhs] = true
	}
	first := map[string]map[string]bool{}
	for nt := range nonterminals {
		first[nt] = map[string]bool{}
	}
	changed := true
	for changed {
		changed = false
		for _, prod := range prods {
			if len(prod.rhs) == 0 {
				continue
			}
			head := prod.rhs[0]
			if nonterminals[head] {
				for s := range first[head] {
					if !first[prod.lhs][s] {
						first[prod.lhs][s] = true
						changed = true
					}
				}
			} else if !first[prod.lhs][head] {
				first[prod.lhs][head] = true
				changed = true
			}
		}
	}

	follow := map[string]map[string]bool{}
	for nt := range nonterminals {
		follow[nt] = map[string]bool{}
	}
	follow[start]["$"] = true

	changed = true
	for changed {
		changed = false
		for _, prod := range prods {
			for i, sym := range prod.rhs {
				if !nonterminals[sym] {
					continue
				}
				trailer := prod.rhs[i+1:]
				if len(trailer) == 0 {
					for s := range follow[prod.lhs] {
						if !follow[sym][s] {
							follow[sym][s] = true
							changed = true
						}
					}
					continue
				}
				next := trailer[0]
				if nonterminals[next] {
					for s := range first[next] {
						if !follow[sym][s] {
							follow[sym][s] = true
							changed = true
						}
					}
				} else if !follow[sym][next] {
					follow[sym][next] = true
					changed = true
				}
			}
		}
	}
	return follow
}

// slrDemoTrace is the fixed token stream original cli.py feeds
// build_demo_slr's output: `id + id * id`, parsed by the shift-reduce
// simulation below.
var slrDemoTrace = []string{"id", "+", "id", "*", "id"}

// slrParseTrace runs the shift-reduce simulation against artifacts' action/
// goto tables, recording one trace line per step. Ported from original
// slr_lab.py's slr_parse_trace.
func slrParseTrace(tokens []string, artifacts *slrArtifacts) []string {
	stream := append([]string{}, tokens...)
	if len(stream) == 0 || stream[len(stream)-1] != "$" {
		stream = append(stream, "$")
	}
	stack := []int{0}
	index := 0
	var trace []string

	for {
		state := stack[len(stack)-1]
		lookahead := stream[index]
		action, ok := artifacts.action[stateSym{state, lookahead}]
		if !ok {
			trace = append(trace, fmt.Sprintf("state=%d lookahead=%s action=<none>", state, lookahead))
			trace = append(trace, "error")
			break
		}
		trace = append(trace, fmt.Sprintf("state=%d lookahead=%s action=%s", state, lookahead, action))

		if action == "acc" {
			trace = append(trace, "accept")
			break
		}
		if strings.HasPrefix(action, "s") {
			var target int
			fmt.Sscanf(action[1:], "%d", &target)
			stack = append(stack, target)
			index++
			continue
		}
		if strings.HasPrefix(action, "r") {
			var prodIdx int
			fmt.Sscanf(action[1:], "%d", &prodIdx)
			prod := artifacts.productions[prodIdx]
			stack = stack[:len(stack)-len(prod.rhs)]
			top := stack[len(stack)-1]
			next, ok := artifacts.goTo[stateSym{top, prod.lhs}]
			if !ok {
				trace = append(trace, "error goto-missing")
				break
			}
			stack = append(stack, next)
			trace = append(trace, fmt.Sprintf("reduce %s -> %s", prod.lhs, strings.Join(prod.rhs, " ")))
			continue
		}
	}
	return trace
}

// formatSLRArtifacts renders the productions, FOLLOW sets, LR(0) states,
// ACTION/GOTO tables, conflicts, and an optional parse trace — matching
// original slr_lab.py's format_slr_artifacts layout.
func formatSLRArtifacts(artifacts *slrArtifacts, trace []string) string {
	var b strings.Builder
	fmt.Fprintln(&b, "SLR Demo Grammar Productions")
	for idx, prod := range artifacts.productions {
		fmt.Fprintf(&b, "  (%d) %s -> %s\n", idx, prod.lhs, strings.Join(prod.rhs, " "))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "FOLLOW sets")
	nts := make([]string, 0, len(artifacts.follow))
	for nt := range artifacts.follow {
		nts = append(nts, nt)
	}
	sort.Strings(nts)
	for _, nt := range nts {
		fmt.Fprintf(&b, "  FOLLOW(%s) = { %s }\n", nt, strings.Join(sortedKeys(artifacts.follow[nt]), ", "))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "LR(0) States")
	for i, state := range artifacts.states {
		fmt.Fprintf(&b, "  I%d\n", i)
		items := make([]slrItem, 0, len(state))
		for it := range state {
			items = append(items, it)
		}
		sort.Slice(items, func(a, bIdx int) bool {
			if items[a].prodIdx != items[bIdx].prodIdx {
				return items[a].prodIdx < items[bIdx].prodIdx
			}
			return items[a].dot < items[bIdx].dot
		})
		for _, it := range items {
			prod := artifacts.productions[it.prodIdx]
			rhs := append([]string{}, prod.rhs...)
			marked := append(append([]string{}, rhs[:it.dot]...), "•")
			marked = append(marked, rhs[it.dot:]...)
			fmt.Fprintf(&b, "    %s -> %s\n", prod.lhs, strings.Join(marked, " "))
		}
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "ACTION table")
	akeys := make([]stateSym, 0, len(artifacts.action))
	for k := range artifacts.action {
		akeys = append(akeys, k)
	}
	sort.Slice(akeys, func(i, j int) bool {
		if akeys[i].state != akeys[j].state {
			return akeys[i].state < akeys[j].state
		}
		return akeys[i].sym < akeys[j].sym
	})
	for _, k := range akeys {
		fmt.Fprintf(&b, "  ACTION[%d, %s] = %s\n", k.state, k.sym, artifacts.action[k])
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "GOTO table")
	gkeys := make([]stateSym, 0, len(artifacts.goTo))
	for k := range artifacts.goTo {
		gkeys = append(gkeys, k)
	}
	sort.Slice(gkeys, func(i, j int) bool {
		if gkeys[i].state != gkeys[j].state {
			return gkeys[i].state < gkeys[j].state
		}
		return gkeys[i].sym < gkeys[j].sym
	})
	for _, k := range gkeys {
		fmt.Fprintf(&b, "  GOTO[%d, %s] = %d\n", k.state, k.sym, artifacts.goTo[k])
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Conflicts")
	if len(artifacts.conflicts) == 0 {
		fmt.Fprintln(&b, "  <none>")
	} else {
		for _, c := range artifacts.conflicts {
			fmt.Fprintf(&b, "  (%d, %s) %s <-> %s\n", c.state, c.symbol, c.old, c.newer)
		}
	}
	if trace != nil {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Parse trace")
		for _, row := range trace {
			fmt.Fprintf(&b, "  %s\n", row)
		}
	}
	return b.String()
}
