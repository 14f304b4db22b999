package compiler

import "fmt"

// Opcode tags every IR instruction kind (spec 3: three-address IR).
type Opcode int

const (
	OpConst Opcode = iota // result = constant
	OpCopy                // result = arg1
	OpBin                 // result = arg1 <Op2> arg2 (arithmetic/comparison)
	OpNot                 // result = !arg1
	OpNeg                 // result = -arg1
	OpCast                // result = cast<Op2>(arg1)
	OpLoad                // result = var(Name)
	OpStore               // var(Name) = arg1
	OpIndexLoad           // result = arg1[arg2]
	OpIndexStore          // arg1[arg2] = arg3
	OpFieldLoad           // result = arg1.Name
	OpFieldStore          // arg1.Name = arg2
	OpLabel               // label definition, no value
	OpJump                // goto Label
	OpBranchZ             // if arg1 == 0 goto Label (ifz)
	OpBranchNZ            // if arg1 != 0 goto Label (ifnz)
	OpCall                // result = call Name(args...)
	OpReturn              // return arg1 (arg1 may be absent)
	OpPrint               // print arg1
	OpInput               // result = input()
	OpArrayNew            // var(Name) = new array[Type.ArraySize] of Type.Elem
	OpLen                 // result = len(arg1), dispatches on arg1's runtime tag
	OpMax                 // result = max(arg1, arg2), dispatches on runtime tag
)

func (o Opcode) String() string {
	names := [...]string{
		"const", "copy", "bin", "not", "neg", "cast", "load", "store",
		"idxload", "idxstore", "fldload", "fldstore", "label", "jump",
		"ifz", "ifnz", "call", "ret", "print", "input",
		"arrnew", "len", "max",
	}
	if int(o) < len(names) {
		return names[o]
	}
	return "?"
}

// Value is an IR operand: either a temp reference or an immediate constant.
type Value struct {
	IsTemp   bool
	Temp     int
	IsConst  bool
	ConstInt int64
	ConstFlt float64
	ConstBool bool
	ConstStr string
	Kind     TokenType // which Const* field is populated, or 0 for a plain temp
}

func TempValue(t int) Value { return Value{IsTemp: true, Temp: t} }
func IntConst(v int64) Value { return Value{IsConst: true, ConstInt: v, Kind: TokInt} }
func FloatConst(v float64) Value { return Value{IsConst: true, ConstFlt: v, Kind: TokFloat} }
func BoolConst(v bool) Value { return Value{IsConst: true, ConstBool: v, Kind: TokBool} }
func StrConst(v string) Value { return Value{IsConst: true, ConstStr: v, Kind: TokString} }

func (v Value) String() string {
	if v.IsTemp {
		return fmt.Sprintf("t%d", v.Temp)
	}
	switch v.Kind {
	case TokFloat:
		return fmt.Sprintf("%g", v.ConstFlt)
	case TokBool:
		return fmt.Sprintf("%t", v.ConstBool)
	case TokString:
		return fmt.Sprintf("%q", v.ConstStr)
	default:
		return fmt.Sprintf("%d", v.ConstInt)
	}
}

// Instruction is one three-address IR instruction. Result is -1 when the
// instruction produces no value (store/print/jump/label/branch/return).
type Instruction struct {
	Op       Opcode
	Result   int
	Arg1     Value
	Arg2     Value
	Arg3     Value
	Name     string    // variable/field/function name, where relevant
	Op2      TokenType // binary operator / cast target kind, where relevant
	Label    string    // jump/branch target, or the label's own name for OpLabel
	CallArgs []Value   // OpCall argument list
	Type     *Type     // result type, informational (used by codegen)
}

func (ins Instruction) String() string {
	switch ins.Op {
	case OpLabel:
		return ins.Label + ":"
	case OpJump:
		return "goto " + ins.Label
	case OpBranchZ:
		return fmt.Sprintf("ifz %s goto %s", ins.Arg1, ins.Label)
	case OpBranchNZ:
		return fmt.Sprintf("ifnz %s goto %s", ins.Arg1, ins.Label)
	case OpStore:
		return fmt.Sprintf("%s = %s", ins.Name, ins.Arg1)
	case OpArrayNew:
		return fmt.Sprintf("%s = new %s", ins.Name, ins.Type)
	case OpPrint:
		return fmt.Sprintf("print %s", ins.Arg1)
	case OpReturn:
		if ins.Arg1.IsTemp || ins.Arg1.IsConst {
			return fmt.Sprintf("ret %s", ins.Arg1)
		}
		return "ret"
	case OpCall:
		return fmt.Sprintf("t%d = call %s/%d", ins.Result, ins.Name, len(ins.CallArgs))
	case OpBin:
		return fmt.Sprintf("t%d = %s %s %s", ins.Result, ins.Arg1, ins.Op2, ins.Arg2)
	case OpMax:
		return fmt.Sprintf("t%d = max(%s, %s)", ins.Result, ins.Arg1, ins.Arg2)
	case OpLen:
		return fmt.Sprintf("t%d = len(%s)", ins.Result, ins.Arg1)
	default:
		return fmt.Sprintf("t%d = %s %s", ins.Result, ins.Op, ins.Arg1)
	}
}

// Function is one compiled function's flat IR (pre-CFG) or, after
// optimization, its basic-block structured form (see CFG below).
type Function struct {
	Name    string
	Params  []Param
	RetType *Type
	Instrs  []Instruction
	NumTemp int
}

// Module is every function's IR plus the main body as a synthetic function
// named "__main__", the unit the rest of the pipeline operates on.
type Module struct {
	Aggregates []*AggregateDecl
	Functions  []*Function
	Main       *Function
}

// loopCtx tracks the labels break/continue resolve to for the innermost
// enclosing loop (spec 4.4: "a loop stack tracks nesting"). A switch pushes
// a frame too (break exits it) but isSwitch marks it as no continue target
// of its own, so continue skips past it to the nearest enclosing loop.
type loopCtx struct {
	breakLabel    string
	continueLabel string
	isSwitch      bool
}

// builder lowers one function body to flat IR.
type builder struct {
	fn        *Function
	nextTemp  int
	nextLabel int
	loops     []loopCtx
}

func newBuilder(name string, params []Param, ret *Type) *builder {
	return &builder{fn: &Function{Name: name, Params: params, RetType: ret}}
}

func (b *builder) newTemp() int {
	t := b.nextTemp
	b.nextTemp++
	return t
}

func (b *builder) newLabel(prefix string) string {
	l := fmt.Sprintf("%s_%d", prefix, b.nextLabel)
	b.nextLabel++
	return l
}

func (b *builder) emit(ins Instruction) {
	b.fn.Instrs = append(b.fn.Instrs, ins)
}

// BuildModule lowers an analyzed program (with imported declarations already
// merged by the caller) to IR.
func BuildModule(prog *Program) *Module {
	mod := &Module{Aggregates: prog.Aggregates}
	for _, fn := range prog.Functions {
		if fn.Body == nil {
			continue
		}
		b := newBuilder(fn.Name, fn.Params, fn.RetType)
		b.lowerStmts(fn.Body.Stmts)
		b.fn.NumTemp = b.nextTemp
		mod.Functions = append(mod.Functions, b.fn)
	}
	mb := newBuilder("__main__", nil, PrimitiveType(PrimVoid))
	mb.lowerStmts(prog.MainBody)
	mb.fn.NumTemp = mb.nextTemp
	mod.Main = mb.fn
	return mod
}

func (b *builder) lowerStmts(stmts []Stmt) {
	for _, s := range stmts {
		b.lowerStmt(s)
	}
}

func (b *builder) lowerStmt(stmt Stmt) {
	switch st := stmt.(type) {
	case *VarDecl:
		if st.Type != nil && st.Type.IsArray {
			// No initializer is possible for arrays (sema rejects one), so
			// the declaration always allocates a fresh zero-filled array.
			b.emit(Instruction{Op: OpArrayNew, Result: -1, Name: st.Name, Type: st.Type})
			return
		}
		if st.Init == nil {
			return
		}
		v := b.lowerExpr(st.Init)
		b.emit(Instruction{Op: OpStore, Result: -1, Name: st.Name, Arg1: v, Type: st.Type})

	case *Assignment:
		v := b.lowerExpr(st.Value)
		b.lowerStore(st.Target, v)

	case *ExprStmt:
		b.lowerExpr(st.X)

	case *PrintStmt:
		v := b.lowerExpr(st.Value)
		b.emit(Instruction{Op: OpPrint, Result: -1, Arg1: v})

	case *ReturnStmt:
		var v Value
		if st.Value != nil {
			v = b.lowerExpr(st.Value)
		}
		b.emit(Instruction{Op: OpReturn, Result: -1, Arg1: v})

	case *BlockStmt:
		b.lowerStmts(st.Stmts)

	case *IfStmt:
		b.lowerIf(st)

	case *WhileStmt:
		b.lowerWhile(st)

	case *ForStmt:
		b.lowerFor(st)

	case *DoWhileStmt:
		b.lowerDoWhile(st)

	case *SwitchStmt:
		b.lowerSwitch(st)

	case *BreakStmt:
		if n := len(b.loops); n > 0 {
			b.emit(Instruction{Op: OpJump, Result: -1, Label: b.loops[n-1].breakLabel})
		}

	case *ContinueStmt:
		for i := len(b.loops) - 1; i >= 0; i-- {
			if !b.loops[i].isSwitch {
				b.emit(Instruction{Op: OpJump, Result: -1, Label: b.loops[i].continueLabel})
				break
			}
		}

	case *AggregateDecl, *ErrorStmt:
		// no IR

	}
}

func (b *builder) lowerStore(target Expr, v Value) {
	switch t := target.(type) {
	case *NameRef:
		b.emit(Instruction{Op: OpStore, Result: -1, Name: t.Name, Arg1: v, Type: t.Type})
	case *IndexExpr:
		base := b.lowerExpr(t.Base)
		idx := b.lowerExpr(t.Index)
		b.emit(Instruction{Op: OpIndexStore, Result: -1, Arg1: base, Arg2: idx, Arg3: v})
	case *FieldExpr:
		base := b.lowerExpr(t.Base)
		b.emit(Instruction{Op: OpFieldStore, Result: -1, Arg1: base, Arg2: v, Name: t.Field})
	}
}

func (b *builder) lowerIf(st *IfStmt) {
	elseLabel := b.newLabel("else")
	endLabel := b.newLabel("endif")
	cond := b.lowerExpr(st.Cond)
	b.emit(Instruction{Op: OpBranchZ, Result: -1, Arg1: cond, Label: elseLabel})
	b.lowerStmt(st.Then)
	b.emit(Instruction{Op: OpJump, Result: -1, Label: endLabel})
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: elseLabel})
	if st.Else != nil {
		b.lowerStmt(st.Else)
	}
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: endLabel})
}

// lowerWhile builds a header block (condition test), a body block, and
// treats the header itself as the latch (spec 4.4: condition re-evaluated
// each iteration, continue jumps back to the header).
func (b *builder) lowerWhile(st *WhileStmt) {
	header := b.newLabel("while_start")
	end := b.newLabel("while_end")
	b.loops = append(b.loops, loopCtx{breakLabel: end, continueLabel: header})
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: header})
	cond := b.lowerExpr(st.Cond)
	b.emit(Instruction{Op: OpBranchZ, Result: -1, Arg1: cond, Label: end})
	b.lowerStmt(st.Body)
	b.emit(Instruction{Op: OpJump, Result: -1, Label: header})
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: end})
	b.loops = b.loops[:len(b.loops)-1]
}

// lowerFor builds header/body/latch blocks: header tests the condition,
// body runs the loop statement, latch runs the post clause before jumping
// back to header. continue resolves to the latch, break to the exit.
func (b *builder) lowerFor(st *ForStmt) {
	if st.Init != nil {
		b.lowerStmt(st.Init)
	}
	header := b.newLabel("for_start")
	latch := b.newLabel("for_latch")
	end := b.newLabel("for_end")
	b.loops = append(b.loops, loopCtx{breakLabel: end, continueLabel: latch})
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: header})
	if st.Cond != nil {
		cond := b.lowerExpr(st.Cond)
		b.emit(Instruction{Op: OpBranchZ, Result: -1, Arg1: cond, Label: end})
	}
	b.lowerStmt(st.Body)
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: latch})
	if st.Post != nil {
		b.lowerStmt(st.Post)
	}
	b.emit(Instruction{Op: OpJump, Result: -1, Label: header})
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: end})
	b.loops = b.loops[:len(b.loops)-1]
}

func (b *builder) lowerDoWhile(st *DoWhileStmt) {
	start := b.newLabel("do_start")
	latch := b.newLabel("do_latch")
	end := b.newLabel("do_end")
	b.loops = append(b.loops, loopCtx{breakLabel: end, continueLabel: latch})
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: start})
	b.lowerStmt(st.Body)
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: latch})
	cond := b.lowerExpr(st.Cond)
	b.emit(Instruction{Op: OpBranchNZ, Result: -1, Arg1: cond, Label: start})
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: end})
	b.loops = b.loops[:len(b.loops)-1]
}

// lowerSwitch lowers to an ordered sequence of conditional branches (spec
// 4.4: "the IR itself preserves ordered branches for portability" — a dense
// jump table is left to codegen's discretion, not built here).
func (b *builder) lowerSwitch(st *SwitchStmt) {
	end := b.newLabel("switch_end")
	defaultLabel := end
	if st.HasDefault {
		defaultLabel = b.newLabel("switch_default")
	}
	caseLabels := make([]string, len(st.Cases))
	for i := range st.Cases {
		caseLabels[i] = b.newLabel("switch_case")
	}

	discrimTemp := b.newTemp()
	d := b.lowerExpr(st.Discrim)
	b.emit(Instruction{Op: OpCopy, Result: discrimTemp, Arg1: d})

	for i, c := range st.Cases {
		cv := b.lowerExpr(c.Value)
		eqTemp := b.newTemp()
		b.emit(Instruction{Op: OpBin, Result: eqTemp, Arg1: TempValue(discrimTemp), Arg2: cv, Op2: TokEq})
		b.emit(Instruction{Op: OpBranchNZ, Result: -1, Arg1: TempValue(eqTemp), Label: caseLabels[i]})
	}
	b.emit(Instruction{Op: OpJump, Result: -1, Label: defaultLabel})

	b.loops = append(b.loops, loopCtx{breakLabel: end, isSwitch: true})
	for i, c := range st.Cases {
		b.emit(Instruction{Op: OpLabel, Result: -1, Label: caseLabels[i]})
		b.lowerStmts(c.Body)
		// Each case terminates on its own; there is no implicit fall-through.
		b.emit(Instruction{Op: OpJump, Result: -1, Label: end})
	}
	if st.HasDefault {
		b.emit(Instruction{Op: OpLabel, Result: -1, Label: defaultLabel})
		b.lowerStmts(st.Default)
	}
	b.loops = b.loops[:len(b.loops)-1]
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: end})
}

// lowerExpr lowers e to a Value, emitting whatever instructions are needed.
// Logical and/or lower to explicit branches producing a bool temp — they are
// never evaluated as arithmetic (spec 4.4).
func (b *builder) lowerExpr(e Expr) Value {
	switch x := e.(type) {
	case *Literal:
		switch x.Kind {
		case TokInt:
			return IntConst(x.IntVal)
		case TokFloat:
			return FloatConst(x.FloatVal)
		case TokBool:
			return BoolConst(x.BoolVal)
		case TokString:
			return StrConst(x.StrVal)
		}
		return IntConst(0)

	case *NameRef:
		t := b.newTemp()
		b.emit(Instruction{Op: OpLoad, Result: t, Name: x.Name, Type: x.Type})
		return TempValue(t)

	case *BinaryExpr:
		lv := b.lowerExpr(x.Left)
		rv := b.lowerExpr(x.Right)
		t := b.newTemp()
		b.emit(Instruction{Op: OpBin, Result: t, Arg1: lv, Arg2: rv, Op2: x.Op, Type: x.Type})
		return TempValue(t)

	case *LogicalExpr:
		return b.lowerLogical(x)

	case *UnaryExpr:
		v := b.lowerExpr(x.Operand)
		t := b.newTemp()
		if x.Op == TokNot {
			b.emit(Instruction{Op: OpNot, Result: t, Arg1: v})
		} else {
			b.emit(Instruction{Op: OpNeg, Result: t, Arg1: v})
		}
		return TempValue(t)

	case *IncDecExpr:
		return b.lowerIncDec(x)

	case *CastExpr:
		v := b.lowerExpr(x.Inner)
		t := b.newTemp()
		var kind TokenType
		if x.Target.IsPrim {
			switch x.Target.Prim {
			case PrimInt:
				kind = TokKwInt
			case PrimFloat:
				kind = TokKwFloat
			case PrimBool:
				kind = TokKwBool
			}
		}
		b.emit(Instruction{Op: OpCast, Result: t, Arg1: v, Op2: kind, Type: x.Target})
		return TempValue(t)

	case *CallExpr:
		// len/max are lowered to dedicated opcodes rather than the generic
		// call path: the original compiles them as direct codegen
		// special-cases outside its function-call machinery (codegen_c.py,
		// codegen_stack.py), never as callable symbols with a FN segment.
		if x.Callee == "len" && len(x.Args) == 1 {
			v := b.lowerExpr(x.Args[0])
			t := b.newTemp()
			b.emit(Instruction{Op: OpLen, Result: t, Arg1: v, Type: x.RetType})
			return TempValue(t)
		}
		if x.Callee == "max" && len(x.Args) == 2 {
			lv := b.lowerExpr(x.Args[0])
			rv := b.lowerExpr(x.Args[1])
			t := b.newTemp()
			b.emit(Instruction{Op: OpMax, Result: t, Arg1: lv, Arg2: rv, Type: x.RetType})
			return TempValue(t)
		}
		args := make([]Value, len(x.Args))
		for i, a := range x.Args {
			args[i] = b.lowerExpr(a)
		}
		t := b.newTemp()
		b.emit(Instruction{Op: OpCall, Result: t, Name: x.Callee, CallArgs: args, Type: x.RetType})
		return TempValue(t)

	case *IndexExpr:
		base := b.lowerExpr(x.Base)
		idx := b.lowerExpr(x.Index)
		t := b.newTemp()
		b.emit(Instruction{Op: OpIndexLoad, Result: t, Arg1: base, Arg2: idx, Type: x.Type})
		return TempValue(t)

	case *FieldExpr:
		base := b.lowerExpr(x.Base)
		t := b.newTemp()
		b.emit(Instruction{Op: OpFieldLoad, Result: t, Arg1: base, Name: x.Field, Type: x.Type})
		return TempValue(t)

	case *InputExpr:
		t := b.newTemp()
		b.emit(Instruction{Op: OpInput, Result: t, Type: x.Type})
		return TempValue(t)

	case *ErrorExpr:
		return IntConst(0)
	}
	return IntConst(0)
}

// lowerLogical implements short-circuit evaluation via explicit branches: a
// short-circuiting && skips evaluating the right operand entirely when the
// left is false; || skips it when the left is true.
func (b *builder) lowerLogical(x *LogicalExpr) Value {
	result := b.newTemp()
	endLabel := b.newLabel("logic_end")
	lv := b.lowerExpr(x.Left)

	if x.Op == TokAndAnd {
		shortLabel := b.newLabel("logic_short")
		b.emit(Instruction{Op: OpBranchZ, Result: -1, Arg1: lv, Label: shortLabel})
		rv := b.lowerExpr(x.Right)
		b.emit(Instruction{Op: OpCopy, Result: result, Arg1: rv})
		b.emit(Instruction{Op: OpJump, Result: -1, Label: endLabel})
		b.emit(Instruction{Op: OpLabel, Result: -1, Label: shortLabel})
		b.emit(Instruction{Op: OpCopy, Result: result, Arg1: BoolConst(false)})
		b.emit(Instruction{Op: OpLabel, Result: -1, Label: endLabel})
		return TempValue(result)
	}

	// ||: if left is true, short-circuit to true; otherwise evaluate right.
	shortLabel := b.newLabel("logic_short")
	b.emit(Instruction{Op: OpBranchNZ, Result: -1, Arg1: lv, Label: shortLabel})
	rv := b.lowerExpr(x.Right)
	b.emit(Instruction{Op: OpCopy, Result: result, Arg1: rv})
	b.emit(Instruction{Op: OpJump, Result: -1, Label: endLabel})
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: shortLabel})
	b.emit(Instruction{Op: OpCopy, Result: result, Arg1: BoolConst(true)})
	b.emit(Instruction{Op: OpLabel, Result: -1, Label: endLabel})
	return TempValue(result)
}

func (b *builder) lowerIncDec(x *IncDecExpr) Value {
	old := b.lowerExpr(x.Target)
	one := IntConst(1)
	newT := b.newTemp()
	op := TokPlus
	if x.Op == TokMinusMinus {
		op = TokMinus
	}
	b.emit(Instruction{Op: OpBin, Result: newT, Arg1: old, Arg2: one, Op2: op})
	b.lowerStore(x.Target, TempValue(newT))
	if x.Post {
		return old
	}
	return TempValue(newT)
}
