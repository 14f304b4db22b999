package compiler

import (
	"fmt"
	"strings"
)

// SGenResult is the stack backend's output.
type SGenResult struct {
	Source string
}

// GenerateStack emits textual assembly for the stack virtual machine (spec
// 4.7). Each IR instruction lowers to a short, fixed sequence of stack ops;
// short-circuit &&/|| already arrived as explicit branches from the IR
// builder, so this backend never needs its own eager AND/OR opcodes.
func GenerateStack(mod *Module, cfgs map[string]*CFG, mainCFG *CFG) SGenResult {
	var out strings.Builder
	for _, fn := range mod.Functions {
		emitStackFunction(&out, fn.Name, cfgs[fn.Name], fn.Params)
	}
	out.WriteString("MAIN:\n")
	emitStackBlocks(&out, mainCFG)
	out.WriteString("\tHALT\n")
	return SGenResult{Source: out.String()}
}

func emitStackFunction(out *strings.Builder, name string, cfg *CFG, params []Param) {
	if cfg == nil {
		return
	}
	fmt.Fprintf(out, "FN %s\n", name)
	for i := len(params) - 1; i >= 0; i-- {
		fmt.Fprintf(out, "\tSTORE %s\n", params[i].Name)
	}
	emitStackBlocks(out, cfg)
	out.WriteString("END\n\n")
}

func emitStackBlocks(out *strings.Builder, cfg *CFG) {
	for _, blk := range cfg.Blocks {
		if blk.Label != "" {
			fmt.Fprintf(out, "%s:\n", blk.Label)
		}
		for _, ins := range blk.Instrs {
			emitStackInstr(out, ins)
		}
	}
}

// tempSlot names the storage slot a temp occupies. Temps share the same
// named LOAD/STORE opcodes as source-level variables (spec 4.7 lists no
// separate temp-register instruction) — the "$" prefix is not producible by
// the lexer's identifier grammar, so a temp slot can never collide with a
// Patakha-visible name.
func tempSlot(t int) string { return fmt.Sprintf("$t%d", t) }

func pushOperand(out *strings.Builder, v Value) {
	if v.IsTemp {
		fmt.Fprintf(out, "\tLOAD %s\n", tempSlot(v.Temp))
		return
	}
	switch v.Kind {
	case TokFloat:
		fmt.Fprintf(out, "\tPUSH %g\n", v.ConstFlt)
	case TokBool:
		if v.ConstBool {
			out.WriteString("\tPUSH true\n")
		} else {
			out.WriteString("\tPUSH false\n")
		}
	case TokString:
		fmt.Fprintf(out, "\tPUSH %q\n", v.ConstStr)
	default:
		fmt.Fprintf(out, "\tPUSH %d\n", v.ConstInt)
	}
}

func popInto(out *strings.Builder, result int) {
	if result >= 0 {
		fmt.Fprintf(out, "\tSTORE %s\n", tempSlot(result))
	} else {
		out.WriteString("\tPOP\n")
	}
}

var stackBinOp = map[TokenType]string{
	TokPlus: "ADD", TokMinus: "SUB", TokStar: "MUL", TokSlash: "DIV", TokPercent: "MOD",
	TokLt: "LT", TokLe: "LE", TokGt: "GT", TokGe: "GE", TokEq: "EQ", TokNe: "NE",
}

var stackCastOp = map[TokenType]string{
	TokKwInt: "?2I", TokKwFloat: "?2F", TokKwBool: "?2B",
}

func emitStackInstr(out *strings.Builder, ins Instruction) {
	switch ins.Op {
	case OpLabel, OpConst:
		return
	case OpCopy:
		pushOperand(out, ins.Arg1)
		popInto(out, ins.Result)
	case OpBin:
		pushOperand(out, ins.Arg1)
		pushOperand(out, ins.Arg2)
		fmt.Fprintf(out, "\t%s\n", stackBinOp[ins.Op2])
		popInto(out, ins.Result)
	case OpNot:
		pushOperand(out, ins.Arg1)
		out.WriteString("\tNOT\n")
		popInto(out, ins.Result)
	case OpNeg:
		pushOperand(out, ins.Arg1)
		out.WriteString("\tNEG\n")
		popInto(out, ins.Result)
	case OpCast:
		pushOperand(out, ins.Arg1)
		fmt.Fprintf(out, "\t%s\n", castOpName(ins.Op2))
		popInto(out, ins.Result)
	case OpLoad:
		fmt.Fprintf(out, "\tLOAD %s\n", ins.Name)
		popInto(out, ins.Result)
	case OpStore:
		pushOperand(out, ins.Arg1)
		fmt.Fprintf(out, "\tSTORE %s\n", ins.Name)
	case OpIndexLoad:
		pushOperand(out, ins.Arg1)
		pushOperand(out, ins.Arg2)
		out.WriteString("\tAIDX\n")
		popInto(out, ins.Result)
	case OpIndexStore:
		pushOperand(out, ins.Arg1)
		pushOperand(out, ins.Arg2)
		pushOperand(out, ins.Arg3)
		out.WriteString("\tASTORE\n")
	case OpArrayNew:
		size := 0
		if ins.Type != nil {
			size = ins.Type.ArraySize
		}
		fmt.Fprintf(out, "\tARRNEW %d\n", size)
		fmt.Fprintf(out, "\tSTORE %s\n", ins.Name)
	case OpLen:
		pushOperand(out, ins.Arg1)
		out.WriteString("\tLEN\n")
		popInto(out, ins.Result)
	case OpMax:
		pushOperand(out, ins.Arg1)
		pushOperand(out, ins.Arg2)
		out.WriteString("\tMAX\n")
		popInto(out, ins.Result)
	case OpFieldLoad:
		pushOperand(out, ins.Arg1)
		fmt.Fprintf(out, "\tFLOAD %s\n", ins.Name)
		popInto(out, ins.Result)
	case OpFieldStore:
		pushOperand(out, ins.Arg1)
		pushOperand(out, ins.Arg2)
		fmt.Fprintf(out, "\tFSTORE %s\n", ins.Name)
	case OpJump:
		fmt.Fprintf(out, "\tJMP %s\n", ins.Label)
	case OpBranchZ:
		pushOperand(out, ins.Arg1)
		fmt.Fprintf(out, "\tJZ %s\n", ins.Label)
	case OpBranchNZ:
		pushOperand(out, ins.Arg1)
		fmt.Fprintf(out, "\tJNZ %s\n", ins.Label)
	case OpCall:
		for _, a := range ins.CallArgs {
			pushOperand(out, a)
		}
		fmt.Fprintf(out, "\tCALL %s/%d\n", ins.Name, len(ins.CallArgs))
		popInto(out, ins.Result)
	case OpReturn:
		if ins.Arg1.IsTemp || ins.Arg1.IsConst {
			pushOperand(out, ins.Arg1)
		}
		out.WriteString("\tRET\n")
	case OpPrint:
		pushOperand(out, ins.Arg1)
		out.WriteString("\tPRINT\n")
	case OpInput:
		fmt.Fprintf(out, "\tREAD %s\n", readTypeName(ins.Type))
		popInto(out, ins.Result)
	}
}

func castOpName(target TokenType) string {
	switch target {
	case TokKwInt:
		return "F2I"
	case TokKwFloat:
		return "I2F"
	case TokKwBool:
		return "I2B"
	}
	return "I2F"
}

func readTypeName(t *Type) string {
	if t == nil || !t.IsPrim {
		return "int"
	}
	switch t.Prim {
	case PrimFloat:
		return "float"
	case PrimBool:
		return "bool"
	case PrimText:
		return "text"
	default:
		return "int"
	}
}
