package compiler

// BasicBlock is a maximal straight-line run of instructions, entered only at
// the first and exited only at the last (a terminator). Successors are
// referenced by integer block id, never by pointer, per spec 9's "avoid
// pointer cycles" guidance.
type BasicBlock struct {
	ID           int
	Label        string
	Instrs       []Instruction
	Succ         []int
	Pred         []int
}

// CFG is one function's control-flow graph: a set of basic blocks with a
// unique entry block (index 0).
type CFG struct {
	FuncName string
	Blocks   []*BasicBlock
	RetType  *Type
	Params   []Param
}

// BuildCFG partitions fn's flat instruction list into basic blocks using the
// leader algorithm (spec 4.5): leaders are branch targets and instructions
// immediately following a branch/return.
func BuildCFG(fn *Function) *CFG {
	labelIndex := map[string]int{}
	for i, ins := range fn.Instrs {
		if ins.Op == OpLabel {
			labelIndex[ins.Label] = i
		}
	}

	isLeader := make([]bool, len(fn.Instrs))
	if len(fn.Instrs) > 0 {
		isLeader[0] = true
	}
	for i, ins := range fn.Instrs {
		switch ins.Op {
		case OpJump, OpBranchZ, OpBranchNZ:
			if idx, ok := labelIndex[ins.Label]; ok {
				isLeader[idx] = true
			}
			if i+1 < len(fn.Instrs) {
				isLeader[i+1] = true
			}
		case OpReturn:
			if i+1 < len(fn.Instrs) {
				isLeader[i+1] = true
			}
		}
	}

	var starts []int
	for i, lead := range isLeader {
		if lead {
			starts = append(starts, i)
		}
	}

	cfg := &CFG{FuncName: fn.Name, RetType: fn.RetType, Params: fn.Params}
	startToBlock := map[int]int{}
	for bi, start := range starts {
		end := len(fn.Instrs)
		if bi+1 < len(starts) {
			end = starts[bi+1]
		}
		instrs := append([]Instruction(nil), fn.Instrs[start:end]...)
		label := ""
		if len(instrs) > 0 && instrs[0].Op == OpLabel {
			label = instrs[0].Label
		}
		blk := &BasicBlock{ID: bi, Label: label, Instrs: instrs}
		cfg.Blocks = append(cfg.Blocks, blk)
		startToBlock[start] = bi
	}

	labelToBlock := map[string]int{}
	for _, blk := range cfg.Blocks {
		if blk.Label != "" {
			labelToBlock[blk.Label] = blk.ID
		}
	}

	for bi, start := range starts {
		end := len(fn.Instrs)
		if bi+1 < len(starts) {
			end = starts[bi+1]
		}
		blk := cfg.Blocks[bi]
		if end == start {
			continue
		}
		last := fn.Instrs[end-1]
		switch last.Op {
		case OpJump:
			addEdge(blk, cfg.Blocks[labelToBlock[last.Label]])
		case OpBranchZ, OpBranchNZ:
			addEdge(blk, cfg.Blocks[labelToBlock[last.Label]])
			if bi+1 < len(cfg.Blocks) {
				addEdge(blk, cfg.Blocks[bi+1])
			}
		case OpReturn:
			// no successors
		default:
			if bi+1 < len(cfg.Blocks) {
				addEdge(blk, cfg.Blocks[bi+1])
			}
		}
	}

	return removeUnreachable(cfg)
}

func addEdge(from, to *BasicBlock) {
	from.Succ = append(from.Succ, to.ID)
	to.Pred = append(to.Pred, from.ID)
}

// removeUnreachable drops blocks not reachable from the entry and
// renumbers ids/labels so the result is dense (spec 4.5: "unreachable-block
// removal runs after constant propagation to clean folded branches" — this
// helper is reused both at CFG construction time and after folding).
func removeUnreachable(cfg *CFG) *CFG {
	if len(cfg.Blocks) == 0 {
		return cfg
	}
	reachable := make([]bool, len(cfg.Blocks))
	var stack []int
	stack = append(stack, 0)
	reachable[0] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range cfg.Blocks[id].Succ {
			if !reachable[s] {
				reachable[s] = true
				stack = append(stack, s)
			}
		}
	}

	remap := make([]int, len(cfg.Blocks))
	var kept []*BasicBlock
	for i, blk := range cfg.Blocks {
		if reachable[i] {
			remap[i] = len(kept)
			kept = append(kept, blk)
		} else {
			remap[i] = -1
		}
	}
	for newID, blk := range kept {
		blk.ID = newID
		newSucc := make([]int, 0, len(blk.Succ))
		for _, s := range blk.Succ {
			if remap[s] >= 0 {
				newSucc = append(newSucc, remap[s])
			}
		}
		blk.Succ = newSucc
		var newPred []int
		for _, pr := range blk.Pred {
			if remap[pr] >= 0 {
				newPred = append(newPred, remap[pr])
			}
		}
		blk.Pred = newPred
	}
	cfg.Blocks = kept
	return cfg
}

// Optimize runs the four passes in the order spec 4.5 fixes — constant
// propagation, dead-store elimination, local CSE, conservative LICM — and
// iterates to a fixpoint over the whole sequence.
func Optimize(cfg *CFG, noOpt bool) {
	if noOpt {
		return
	}
	for {
		c1 := constantPropagation(cfg)
		removeUnreachable(cfg)
		c2 := deadStoreElimination(cfg)
		c3 := localCSE(cfg)
		c4 := loopInvariantCodeMotion(cfg)
		if !c1 && !c2 && !c3 && !c4 {
			return
		}
	}
}

// --- Pass 1: constant propagation ---

type constEnv map[int]Value // temp -> constant value

func cloneEnv(e constEnv) constEnv {
	out := make(constEnv, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// mergeEnvs intersects two environments: a temp keeps its constant value
// only if both predecessors agree on it (spec 4.5's per-block fixpoint).
func mergeEnvs(a, b constEnv) constEnv {
	out := make(constEnv)
	for k, v := range a {
		if v2, ok := b[k]; ok && valuesEqualConst(v, v2) {
			out[k] = v
		}
	}
	return out
}

func valuesEqualConst(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TokFloat:
		return a.ConstFlt == b.ConstFlt
	case TokBool:
		return a.ConstBool == b.ConstBool
	case TokString:
		return a.ConstStr == b.ConstStr
	default:
		return a.ConstInt == b.ConstInt
	}
}

func constantPropagation(cfg *CFG) bool {
	changed := false
	ins := make([]constEnv, len(cfg.Blocks))
	outs := make([]constEnv, len(cfg.Blocks))
	for i := range cfg.Blocks {
		outs[i] = constEnv{}
	}

	for iter := 0; iter < len(cfg.Blocks)+1; iter++ {
		anyEnvChange := false
		for _, blk := range cfg.Blocks {
			var in constEnv
			if len(blk.Pred) == 0 {
				in = constEnv{}
			} else {
				in = cloneEnv(outs[blk.Pred[0]])
				for _, p := range blk.Pred[1:] {
					in = mergeEnvs(in, outs[p])
				}
			}
			ins[blk.ID] = in
			out := cloneEnv(in)
			for idx := range blk.Instrs {
				rewriteAndFold(&blk.Instrs[idx], out, &changed)
			}
			if !envEqual(out, outs[blk.ID]) {
				outs[blk.ID] = out
				anyEnvChange = true
			}
		}
		if !anyEnvChange {
			break
		}
	}

	// Second sweep: collapse branches whose condition folded to a constant.
	for _, blk := range cfg.Blocks {
		if len(blk.Instrs) == 0 {
			continue
		}
		last := &blk.Instrs[len(blk.Instrs)-1]
		if (last.Op == OpBranchZ || last.Op == OpBranchNZ) && last.Arg1.IsConst {
			takeBranch := (last.Op == OpBranchZ && isZeroConst(last.Arg1)) ||
				(last.Op == OpBranchNZ && !isZeroConst(last.Arg1))
			if takeBranch {
				*last = Instruction{Op: OpJump, Result: -1, Label: last.Label}
			} else {
				blk.Instrs = blk.Instrs[:len(blk.Instrs)-1]
			}
			changed = true
		}
	}

	return changed
}

func envEqual(a, b constEnv) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		v2, ok := b[k]
		if !ok || !valuesEqualConst(v, v2) {
			return false
		}
	}
	return true
}

func isZeroConst(v Value) bool {
	switch v.Kind {
	case TokFloat:
		return v.ConstFlt == 0
	case TokBool:
		return !v.ConstBool
	default:
		return v.ConstInt == 0
	}
}

func resolveOperand(v Value, env constEnv) Value {
	if v.IsTemp {
		if c, ok := env[v.Temp]; ok {
			return c
		}
	}
	return v
}

// rewriteAndFold replaces operand temps with reaching constants and folds
// pure arithmetic/comparison on all-constant operands (spec 4.5 pass 1).
func rewriteAndFold(ins *Instruction, env constEnv, changed *bool) {
	switch ins.Op {
	case OpConst:
		if ins.Result >= 0 {
			env[ins.Result] = ins.Arg1
		}
		return
	case OpCopy:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		if !ins.Arg1.IsTemp {
			env[ins.Result] = ins.Arg1
		} else {
			delete(env, ins.Result)
		}
		return
	case OpBin:
		before := ins.Arg1
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		ins.Arg2 = resolveOperand(ins.Arg2, env)
		if !reflectValueEqual(before, ins.Arg1) {
			*changed = true
		}
		if !ins.Arg1.IsTemp && !ins.Arg2.IsTemp {
			if folded, ok := evalBinop(ins.Op2, ins.Arg1, ins.Arg2); ok {
				env[ins.Result] = folded
				*ins = Instruction{Op: OpCopy, Result: ins.Result, Arg1: folded}
				*changed = true
				return
			}
		}
		delete(env, ins.Result)
		return
	case OpNot:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		if !ins.Arg1.IsTemp {
			v := BoolConst(!truthy(ins.Arg1))
			env[ins.Result] = v
			*ins = Instruction{Op: OpCopy, Result: ins.Result, Arg1: v}
			*changed = true
			return
		}
		delete(env, ins.Result)
		return
	case OpNeg:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		if !ins.Arg1.IsTemp {
			v := negConst(ins.Arg1)
			env[ins.Result] = v
			*ins = Instruction{Op: OpCopy, Result: ins.Result, Arg1: v}
			*changed = true
			return
		}
		delete(env, ins.Result)
		return
	case OpBranchZ, OpBranchNZ:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		return
	case OpPrint, OpReturn:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		return
	case OpStore:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		return
	case OpFieldStore:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		ins.Arg2 = resolveOperand(ins.Arg2, env)
		return
	case OpIndexStore:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		ins.Arg2 = resolveOperand(ins.Arg2, env)
		ins.Arg3 = resolveOperand(ins.Arg3, env)
		return
	case OpIndexLoad:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		ins.Arg2 = resolveOperand(ins.Arg2, env)
		if ins.Result >= 0 {
			delete(env, ins.Result)
		}
		return
	case OpLen:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		if ins.Result >= 0 {
			delete(env, ins.Result)
		}
		return
	case OpMax:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		ins.Arg2 = resolveOperand(ins.Arg2, env)
		if ins.Result >= 0 {
			delete(env, ins.Result)
		}
		return
	case OpArrayNew:
		return
	case OpCast:
		ins.Arg1 = resolveOperand(ins.Arg1, env)
		if !ins.Arg1.IsTemp {
			if folded, ok := evalCast(ins.Op2, ins.Arg1); ok {
				env[ins.Result] = folded
				*ins = Instruction{Op: OpCopy, Result: ins.Result, Arg1: folded}
				*changed = true
				return
			}
		}
		delete(env, ins.Result)
		return
	case OpCall:
		for i := range ins.CallArgs {
			ins.CallArgs[i] = resolveOperand(ins.CallArgs[i], env)
		}
		if ins.Result >= 0 {
			delete(env, ins.Result)
		}
		return
	case OpLoad, OpFieldLoad, OpInput:
		if ins.Result >= 0 {
			delete(env, ins.Result)
		}
		return
	}
}

func reflectValueEqual(a, b Value) bool {
	return a.IsTemp == b.IsTemp && a.Temp == b.Temp && a.IsConst == b.IsConst && valuesEqualConst(a, b)
}

func truthy(v Value) bool { return !isZeroConst(v) }

func negConst(v Value) Value {
	switch v.Kind {
	case TokFloat:
		return FloatConst(-v.ConstFlt)
	default:
		return IntConst(-v.ConstInt)
	}
}

func evalCast(target TokenType, v Value) (Value, bool) {
	switch target {
	case TokKwInt:
		switch v.Kind {
		case TokFloat:
			return IntConst(int64(v.ConstFlt)), true
		case TokBool:
			if v.ConstBool {
				return IntConst(1), true
			}
			return IntConst(0), true
		case TokInt:
			return v, true
		}
	case TokKwFloat:
		switch v.Kind {
		case TokInt:
			return FloatConst(float64(v.ConstInt)), true
		case TokFloat:
			return v, true
		}
	case TokKwBool:
		switch v.Kind {
		case TokInt:
			return BoolConst(v.ConstInt != 0), true
		case TokBool:
			return v, true
		}
	}
	return Value{}, false
}

// evalBinop folds a pure binary op over two constants. Mixed int/float
// reaching here should not occur (semantic analysis requires a cast first)
// but is handled defensively by widening to float.
func evalBinop(op TokenType, l, r Value) (Value, bool) {
	bothFloat := l.Kind == TokFloat || r.Kind == TokFloat
	if bothFloat && (l.Kind == TokFloat || l.Kind == TokInt) && (r.Kind == TokFloat || r.Kind == TokInt) {
		lf, rf := asFloat(l), asFloat(r)
		switch op {
		case TokPlus:
			return FloatConst(lf + rf), true
		case TokMinus:
			return FloatConst(lf - rf), true
		case TokStar:
			return FloatConst(lf * rf), true
		case TokSlash:
			if rf == 0 {
				return Value{}, false
			}
			return FloatConst(lf / rf), true
		case TokLt:
			return BoolConst(lf < rf), true
		case TokLe:
			return BoolConst(lf <= rf), true
		case TokGt:
			return BoolConst(lf > rf), true
		case TokGe:
			return BoolConst(lf >= rf), true
		case TokEq:
			return BoolConst(lf == rf), true
		case TokNe:
			return BoolConst(lf != rf), true
		}
		return Value{}, false
	}
	if l.Kind == TokInt && r.Kind == TokInt {
		li, ri := l.ConstInt, r.ConstInt
		switch op {
		case TokPlus:
			return IntConst(li + ri), true
		case TokMinus:
			return IntConst(li - ri), true
		case TokStar:
			return IntConst(li * ri), true
		case TokSlash:
			if ri == 0 {
				return Value{}, false
			}
			return IntConst(li / ri), true
		case TokPercent:
			if ri == 0 {
				return Value{}, false
			}
			return IntConst(li % ri), true
		case TokLt:
			return BoolConst(li < ri), true
		case TokLe:
			return BoolConst(li <= ri), true
		case TokGt:
			return BoolConst(li > ri), true
		case TokGe:
			return BoolConst(li >= ri), true
		case TokEq:
			return BoolConst(li == ri), true
		case TokNe:
			return BoolConst(li != ri), true
		}
	}
	if l.Kind == TokBool && r.Kind == TokBool {
		switch op {
		case TokEq:
			return BoolConst(l.ConstBool == r.ConstBool), true
		case TokNe:
			return BoolConst(l.ConstBool != r.ConstBool), true
		}
	}
	return Value{}, false
}

func asFloat(v Value) float64 {
	if v.Kind == TokFloat {
		return v.ConstFlt
	}
	return float64(v.ConstInt)
}

// --- Pass 2: dead-store elimination ---

// sideEffecting reports whether an instruction must be kept even if its
// result is unused (spec 4.5: "calls, stores, prints, input, returns,
// branches are side-effecting").
func sideEffecting(ins Instruction) bool {
	switch ins.Op {
	case OpStore, OpIndexStore, OpFieldStore, OpPrint, OpInput, OpCall,
		OpReturn, OpJump, OpBranchZ, OpBranchNZ, OpLabel, OpArrayNew:
		return true
	}
	return false
}

func usesOf(ins Instruction, set map[int]bool) {
	mark := func(v Value) {
		if v.IsTemp {
			set[v.Temp] = true
		}
	}
	mark(ins.Arg1)
	mark(ins.Arg2)
	mark(ins.Arg3)
	for _, a := range ins.CallArgs {
		mark(a)
	}
}

// deadStoreElimination removes instructions whose result temp is never used
// anywhere in the function and which have no side effect, using a
// conservative whole-function live-temp set (spec 4.5 pass 2: "any temp read
// by any successor transitively is live").
func deadStoreElimination(cfg *CFG) bool {
	live := map[int]bool{}
	for _, blk := range cfg.Blocks {
		for _, ins := range blk.Instrs {
			usesOf(ins, live)
		}
	}

	changed := false
	for _, blk := range cfg.Blocks {
		var kept []Instruction
		for _, ins := range blk.Instrs {
			if !sideEffecting(ins) && ins.Result >= 0 && !live[ins.Result] {
				changed = true
				continue
			}
			kept = append(kept, ins)
		}
		blk.Instrs = kept
	}
	return changed
}

// --- Pass 3: local CSE ---

type cseKey struct {
	op   Opcode
	op2  TokenType
	a, b string
}

// localCSE maintains, within each block, a map from (opcode, canonicalized
// operand list) to the defining temp, replacing later identical pure
// expressions with a copy from the earlier temp. Commutative operators
// canonicalize operand order so `a+b` and `b+a` hit the same entry. The map
// is reset at any call, store, load, input, array allocation, or block
// boundary (spec 4.5 pass 3).
func localCSE(cfg *CFG) bool {
	changed := false
	for _, blk := range cfg.Blocks {
		table := map[cseKey]int{}
		for idx := range blk.Instrs {
			ins := &blk.Instrs[idx]
			if ins.Op == OpCall || ins.Op == OpStore || ins.Op == OpIndexStore ||
				ins.Op == OpFieldStore || ins.Op == OpLoad || ins.Op == OpFieldLoad ||
				ins.Op == OpIndexLoad || ins.Op == OpInput || ins.Op == OpArrayNew {
				table = map[cseKey]int{}
				continue
			}
			if ins.Op != OpBin && ins.Op != OpNeg && ins.Op != OpNot && ins.Op != OpCast {
				continue
			}
			key, ok := cseKeyOf(*ins)
			if !ok {
				continue
			}
			if prior, ok := table[key]; ok {
				*ins = Instruction{Op: OpCopy, Result: ins.Result, Arg1: TempValue(prior)}
				changed = true
				continue
			}
			if ins.Result >= 0 {
				table[key] = ins.Result
			}
		}
	}
	return changed
}

func isCommutative(op TokenType) bool {
	switch op {
	case TokPlus, TokStar, TokEq, TokNe:
		return true
	}
	return false
}

func cseKeyOf(ins Instruction) (cseKey, bool) {
	a, b := ins.Arg1.String(), ""
	switch ins.Op {
	case OpBin:
		b = ins.Arg2.String()
		if isCommutative(ins.Op2) && a > b {
			a, b = b, a
		}
		return cseKey{op: ins.Op, op2: ins.Op2, a: a, b: b}, true
	case OpNeg, OpNot:
		return cseKey{op: ins.Op, a: a}, true
	case OpCast:
		return cseKey{op: ins.Op, op2: ins.Op2, a: a}, true
	}
	return cseKey{}, false
}

// --- Pass 4: conservative LICM ---

// loopInvariantCodeMotion hoists pure, loop-invariant instructions out of
// natural loops into a synthetic pre-header block. A natural loop is
// identified by a back edge: a successor id less than the source block's id
// (spec 4.5's safe approximation for an id-ordered CFG with no explicit
// dominator tree). Only instructions whose operands are all defined outside
// the loop (or loop-invariant constants) are hoisted, and only from the
// header block itself — the one guaranteed to execute on every iteration —
// matching spec 4.5's conservative safety condition.
func loopInvariantCodeMotion(cfg *CFG) bool {
	changed := false
	for _, blk := range cfg.Blocks {
		for _, succ := range blk.Succ {
			if succ <= blk.ID {
				if hoistLoop(cfg, succ, blk.ID) {
					changed = true
				}
			}
		}
	}
	return changed
}

// hoistLoop hoists invariant instructions from the header block (headerID)
// of the loop whose back edge runs header..backEdgeSrc, into a synthetic
// pre-header inserted just before the header.
func hoistLoop(cfg *CFG, headerID, backEdgeSrc int) bool {
	header := cfg.Blocks[headerID]
	if len(header.Pred) == 0 {
		return false
	}

	assigned := map[int]bool{}
	for id := headerID; id <= backEdgeSrc && id < len(cfg.Blocks); id++ {
		for _, ins := range cfg.Blocks[id].Instrs {
			if ins.Result >= 0 {
				assigned[ins.Result] = true
			}
		}
	}

	var hoisted []Instruction
	var kept []Instruction
	invariant := map[int]bool{}
	for _, ins := range header.Instrs {
		if canHoist(ins, assigned, invariant) {
			hoisted = append(hoisted, ins)
			if ins.Result >= 0 {
				invariant[ins.Result] = true
			}
		} else {
			kept = append(kept, ins)
		}
	}
	if len(hoisted) == 0 {
		return false
	}
	header.Instrs = kept

	preheader := &BasicBlock{ID: -1, Label: header.Label + "_preheader", Instrs: hoisted}
	insertPreheader(cfg, headerID, preheader)
	return true
}

func canHoist(ins Instruction, assignedInLoop map[int]bool, alreadyHoisted map[int]bool) bool {
	switch ins.Op {
	case OpBin, OpNeg, OpNot, OpCast, OpCopy:
	default:
		return false
	}
	check := func(v Value) bool {
		if !v.IsTemp {
			return true
		}
		if alreadyHoisted[v.Temp] {
			return true
		}
		return !assignedInLoop[v.Temp]
	}
	return check(ins.Arg1) && check(ins.Arg2)
}

// insertPreheader splices a new block immediately before headerID, rewiring
// the unique predecessor-outside-the-loop edge(s) to target it instead, and
// renumbers all block ids to stay dense.
func insertPreheader(cfg *CFG, headerID int, preheader *BasicBlock) {
	header := cfg.Blocks[headerID]
	preheader.Succ = []int{headerID}

	var outside []int
	for _, p := range header.Pred {
		if p < headerID {
			outside = append(outside, p)
		}
	}
	if len(outside) == 0 {
		// No safe entry edge to redirect; fall back to appending after
		// the preceding block unconditionally (still correct, just more
		// conservative about which predecessor it captures).
		outside = header.Pred
	}

	newBlocks := make([]*BasicBlock, 0, len(cfg.Blocks)+1)
	newBlocks = append(newBlocks, cfg.Blocks[:headerID]...)
	newBlocks = append(newBlocks, preheader)
	newBlocks = append(newBlocks, cfg.Blocks[headerID:]...)
	for i, blk := range newBlocks {
		blk.ID = i
	}
	preheader.ID = headerID
	cfg.Blocks = newBlocks

	for _, blk := range cfg.Blocks {
		for i, s := range blk.Succ {
			_ = i
			_ = s
		}
	}
	for _, oid := range outside {
		outBlk := findBlockByOldPred(cfg, oid, headerID+1)
		if outBlk == nil {
			continue
		}
		for i, s := range outBlk.Succ {
			if s == headerID+1 {
				outBlk.Succ[i] = headerID
			}
		}
	}
	newHeader := cfg.Blocks[headerID+1]
	newHeader.Pred = nil
	for _, blk := range cfg.Blocks {
		for _, s := range blk.Succ {
			if s == headerID+1 {
				newHeader.Pred = append(newHeader.Pred, blk.ID)
			}
		}
	}
	preheader.Pred = newHeader.Pred
	newHeader.Pred = []int{headerID}

	fixed := map[int]bool{}
	for _, p := range preheader.Pred {
		fixed[p] = true
	}
	for _, blk := range cfg.Blocks {
		if blk.ID == headerID {
			continue
		}
		for i, s := range blk.Succ {
			if s == headerID+1 && fixed[blk.ID] {
				blk.Succ[i] = headerID
			}
		}
	}
}

func findBlockByOldPred(cfg *CFG, id int, shiftedFrom int) *BasicBlock {
	if id >= shiftedFrom {
		id++
	}
	for _, blk := range cfg.Blocks {
		if blk.ID == id {
			return blk
		}
	}
	return nil
}
