// Package interp is a tree-walking reference interpreter over the typed
// AST, used to produce an observable execution trace (prints, input
// consumption, return value) independent of either compiled backend —
// the oracle the two backends' output is checked against.
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"patakha/pkg/compiler"
)

// Value is a dynamically tagged Patakha runtime value: int64, float64,
// bool, string, *Struct, or []Value.
type Value interface{}

// Struct is an aggregate instance: a named bag of fields, matching the
// original Python interpreter's dict-based composite representation but
// given its own type so Go's type switch can distinguish it from a plain
// map-shaped value.
type Struct struct {
	TypeName string
	Fields   map[string]Value
}

// Env is a lexical scope chain mirroring compiler.scope's parent-link
// pattern (pkg/compiler/sema.go), adapted here to hold live values instead
// of declared types.
type Env struct {
	parent *Env
	values map[string]Value
}

func newEnv(parent *Env) *Env {
	return &Env{parent: parent, values: map[string]Value{}}
}

func (e *Env) define(name string, v Value) {
	e.values[name] = v
}

func (e *Env) get(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *Env) assign(name string, v Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.values[name]; ok {
			s.values[name] = v
			return true
		}
	}
	return false
}

// ctrl is a non-local control transfer signal produced by statement
// execution, replacing the original Python interpreter's exception-based
// break/continue/return with explicit Go return values.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

// Interpreter runs one analyzed program. InputFn/OutputFn are injected so
// tests can script stdin and capture stdout without touching the terminal.
type Interpreter struct {
	Program  *compiler.Program
	InputFn  func() string
	OutputFn func(string)

	functions  map[string]*compiler.FunctionDecl
	aggregates map[string]*compiler.AggregateDecl
	globals    *Env
}

// New builds an interpreter for prog. aggregates come from prog.Aggregates
// (struct/kaksha field lists are required
// to synthesize zero values, mirroring _default_scalar's composite_fields
// lookup in the original).
func New(prog *compiler.Program, inputFn func() string, outputFn func(string)) *Interpreter {
	it := &Interpreter{
		Program:    prog,
		InputFn:    inputFn,
		OutputFn:   outputFn,
		functions:  map[string]*compiler.FunctionDecl{},
		aggregates: map[string]*compiler.AggregateDecl{},
		globals:    newEnv(nil),
	}
	for _, fn := range prog.Functions {
		it.functions[fn.Name] = fn
	}
	for _, a := range prog.Aggregates {
		it.aggregates[a.Name] = a
	}
	return it
}

// Run executes the program's shuru...bass body and returns its implicit
// result: the value of a return statement executed in the main body, or 0
// when none runs.
func (it *Interpreter) Run() (Value, error) {
	signal, val, err := it.execBlock(it.Program.MainBody, it.globals)
	if err != nil {
		return nil, err
	}
	if signal == ctrlReturn {
		return val, nil
	}
	return int64(0), nil
}

func (it *Interpreter) execBlock(stmts []compiler.Stmt, env *Env) (ctrl, Value, error) {
	for _, s := range stmts {
		signal, val, err := it.execStmt(s, env)
		if err != nil || signal != ctrlNone {
			return signal, val, err
		}
	}
	return ctrlNone, nil, nil
}

func (it *Interpreter) execStmt(stmt compiler.Stmt, env *Env) (ctrl, Value, error) {
	switch st := stmt.(type) {
	case *compiler.VarDecl:
		var v Value
		if st.Init != nil {
			val, err := it.eval(st.Init, env)
			if err != nil {
				return ctrlNone, nil, err
			}
			v = val
		} else {
			v = it.zeroValue(st.Type)
		}
		env.define(st.Name, v)
		return ctrlNone, nil, nil

	case *compiler.Assignment:
		v, err := it.eval(st.Value, env)
		if err != nil {
			return ctrlNone, nil, err
		}
		if err := it.assignTarget(st.Target, v, env); err != nil {
			return ctrlNone, nil, err
		}
		return ctrlNone, nil, nil

	case *compiler.ExprStmt:
		_, err := it.eval(st.X, env)
		return ctrlNone, nil, err

	case *compiler.PrintStmt:
		v, err := it.eval(st.Value, env)
		if err != nil {
			return ctrlNone, nil, err
		}
		it.OutputFn(formatValue(v))
		return ctrlNone, nil, nil

	case *compiler.ReturnStmt:
		var v Value = int64(0)
		if st.Value != nil {
			val, err := it.eval(st.Value, env)
			if err != nil {
				return ctrlNone, nil, err
			}
			v = val
		}
		return ctrlReturn, v, nil

	case *compiler.BlockStmt:
		return it.execBlock(st.Stmts, newEnv(env))

	case *compiler.IfStmt:
		cond, err := it.eval(st.Cond, env)
		if err != nil {
			return ctrlNone, nil, err
		}
		if truthy(cond) {
			return it.execStmt(st.Then, newEnv(env))
		} else if st.Else != nil {
			return it.execStmt(st.Else, newEnv(env))
		}
		return ctrlNone, nil, nil

	case *compiler.WhileStmt:
		for {
			cond, err := it.eval(st.Cond, env)
			if err != nil {
				return ctrlNone, nil, err
			}
			if !truthy(cond) {
				break
			}
			signal, val, err := it.execStmt(st.Body, newEnv(env))
			if err != nil {
				return ctrlNone, nil, err
			}
			if signal == ctrlBreak {
				break
			}
			if signal == ctrlReturn {
				return signal, val, nil
			}
		}
		return ctrlNone, nil, nil

	case *compiler.ForStmt:
		loopEnv := newEnv(env)
		if st.Init != nil {
			if _, _, err := it.execStmt(st.Init, loopEnv); err != nil {
				return ctrlNone, nil, err
			}
		}
		for {
			if st.Cond != nil {
				cond, err := it.eval(st.Cond, loopEnv)
				if err != nil {
					return ctrlNone, nil, err
				}
				if !truthy(cond) {
					break
				}
			}
			signal, val, err := it.execStmt(st.Body, newEnv(loopEnv))
			if err != nil {
				return ctrlNone, nil, err
			}
			if signal == ctrlBreak {
				break
			}
			if signal == ctrlReturn {
				return signal, val, nil
			}
			if st.Post != nil {
				if _, _, err := it.execStmt(st.Post, loopEnv); err != nil {
					return ctrlNone, nil, err
				}
			}
		}
		return ctrlNone, nil, nil

	case *compiler.DoWhileStmt:
		for {
			signal, val, err := it.execStmt(st.Body, newEnv(env))
			if err != nil {
				return ctrlNone, nil, err
			}
			if signal == ctrlBreak {
				break
			}
			if signal == ctrlReturn {
				return signal, val, nil
			}
			cond, err := it.eval(st.Cond, env)
			if err != nil {
				return ctrlNone, nil, err
			}
			if !truthy(cond) {
				break
			}
		}
		return ctrlNone, nil, nil

	case *compiler.SwitchStmt:
		discrim, err := it.eval(st.Discrim, env)
		if err != nil {
			return ctrlNone, nil, err
		}
		matched := false
		for _, c := range st.Cases {
			if !matched {
				cv, err := it.eval(c.Value, env)
				if err != nil {
					return ctrlNone, nil, err
				}
				if valuesEqual(cv, discrim) {
					matched = true
				}
			}
			if matched {
				signal, val, err := it.execBlock(c.Body, newEnv(env))
				if err != nil {
					return ctrlNone, nil, err
				}
				if signal == ctrlBreak {
					return ctrlNone, nil, nil
				}
				if signal == ctrlReturn || signal == ctrlContinue {
					return signal, val, nil
				}
				// Cases do not fall through: only the matching case runs.
				return ctrlNone, nil, nil
			}
		}
		if !matched && st.HasDefault {
			signal, val, err := it.execBlock(st.Default, newEnv(env))
			if err != nil {
				return ctrlNone, nil, err
			}
			if signal == ctrlReturn || signal == ctrlContinue {
				return signal, val, nil
			}
		}
		return ctrlNone, nil, nil

	case *compiler.BreakStmt:
		return ctrlBreak, nil, nil

	case *compiler.ContinueStmt:
		return ctrlContinue, nil, nil

	case *compiler.AggregateDecl, *compiler.ErrorStmt:
		return ctrlNone, nil, nil
	}
	return ctrlNone, nil, fmt.Errorf("interp: unhandled statement %T", stmt)
}

func (it *Interpreter) assignTarget(target compiler.Expr, v Value, env *Env) error {
	switch t := target.(type) {
	case *compiler.NameRef:
		if !env.assign(t.Name, v) {
			return fmt.Errorf("interp: undefined variable %q", t.Name)
		}
		return nil
	case *compiler.IndexExpr:
		base, err := it.eval(t.Base, env)
		if err != nil {
			return err
		}
		idxVal, err := it.eval(t.Index, env)
		if err != nil {
			return err
		}
		arr, ok := base.([]Value)
		if !ok {
			return fmt.Errorf("interp: index assignment on non-array value")
		}
		idx := int(asInt(idxVal))
		if idx < 0 || idx >= len(arr) {
			return fmt.Errorf("interp: array index %d out of range", idx)
		}
		arr[idx] = v
		return nil
	case *compiler.FieldExpr:
		base, err := it.eval(t.Base, env)
		if err != nil {
			return err
		}
		s, ok := base.(*Struct)
		if !ok {
			return fmt.Errorf("interp: field assignment on non-struct value")
		}
		s.Fields[t.Field] = v
		return nil
	}
	return fmt.Errorf("interp: invalid assignment target %T", target)
}

// eval lowers an expression to a runtime Value. Pre/post ++/-- apply the
// same resolution as the IR builder's lowerIncDec: post forms yield the
// pre-update value, pre forms yield the post-update value.
func (it *Interpreter) eval(e compiler.Expr, env *Env) (Value, error) {
	switch x := e.(type) {
	case *compiler.Literal:
		switch x.Kind {
		case compiler.TokInt:
			return x.IntVal, nil
		case compiler.TokFloat:
			return x.FloatVal, nil
		case compiler.TokBool:
			return x.BoolVal, nil
		case compiler.TokString:
			return x.StrVal, nil
		}
		return int64(0), nil

	case *compiler.NameRef:
		v, ok := env.get(x.Name)
		if !ok {
			return nil, fmt.Errorf("interp: undefined variable %q", x.Name)
		}
		return v, nil

	case *compiler.BinaryExpr:
		l, err := it.eval(x.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := it.eval(x.Right, env)
		if err != nil {
			return nil, err
		}
		return evalBinary(x.Op, l, r)

	case *compiler.LogicalExpr:
		l, err := it.eval(x.Left, env)
		if err != nil {
			return nil, err
		}
		if x.Op == compiler.TokAndAnd {
			if !truthy(l) {
				return false, nil
			}
			r, err := it.eval(x.Right, env)
			if err != nil {
				return nil, err
			}
			return truthy(r), nil
		}
		if truthy(l) {
			return true, nil
		}
		r, err := it.eval(x.Right, env)
		if err != nil {
			return nil, err
		}
		return truthy(r), nil

	case *compiler.UnaryExpr:
		v, err := it.eval(x.Operand, env)
		if err != nil {
			return nil, err
		}
		if x.Op == compiler.TokNot {
			return !truthy(v), nil
		}
		if f, ok := v.(float64); ok {
			return -f, nil
		}
		return -asInt(v), nil

	case *compiler.IncDecExpr:
		return it.evalIncDec(x, env)

	case *compiler.CastExpr:
		v, err := it.eval(x.Inner, env)
		if err != nil {
			return nil, err
		}
		return castValue(x.Target, v), nil

	case *compiler.CallExpr:
		return it.evalCall(x, env)

	case *compiler.IndexExpr:
		base, err := it.eval(x.Base, env)
		if err != nil {
			return nil, err
		}
		idxVal, err := it.eval(x.Index, env)
		if err != nil {
			return nil, err
		}
		arr, ok := base.([]Value)
		if !ok {
			return nil, fmt.Errorf("interp: indexing a non-array value")
		}
		idx := int(asInt(idxVal))
		if idx < 0 || idx >= len(arr) {
			return nil, fmt.Errorf("interp: array index %d out of range", idx)
		}
		return arr[idx], nil

	case *compiler.FieldExpr:
		base, err := it.eval(x.Base, env)
		if err != nil {
			return nil, err
		}
		s, ok := base.(*Struct)
		if !ok {
			return nil, fmt.Errorf("interp: field access on a non-struct value")
		}
		return s.Fields[x.Field], nil

	case *compiler.InputExpr:
		raw := strings.TrimSpace(it.InputFn())
		return parseInput(raw, x.Type), nil

	case *compiler.ErrorExpr:
		return int64(0), nil
	}
	return nil, fmt.Errorf("interp: unhandled expression %T", e)
}

func (it *Interpreter) evalIncDec(x *compiler.IncDecExpr, env *Env) (Value, error) {
	old, err := it.eval(x.Target, env)
	if err != nil {
		return nil, err
	}
	delta := int64(1)
	if x.Op == compiler.TokMinusMinus {
		delta = -1
	}
	var updated Value
	if f, ok := old.(float64); ok {
		updated = f + float64(delta)
	} else {
		updated = asInt(old) + delta
	}
	if err := it.assignTarget(x.Target, updated, env); err != nil {
		return nil, err
	}
	if x.Post {
		return old, nil
	}
	return updated, nil
}

func (it *Interpreter) evalCall(c *compiler.CallExpr, env *Env) (Value, error) {
	switch c.Callee {
	case "bata", "input":
		raw := strings.TrimSpace(it.InputFn())
		return parseInput(raw, c.RetType), nil
	case "max":
		a, err := it.eval(c.Args[0], env)
		if err != nil {
			return nil, err
		}
		b, err := it.eval(c.Args[1], env)
		if err != nil {
			return nil, err
		}
		if numLess(a, b) {
			return b, nil
		}
		return a, nil
	case "len":
		v, err := it.eval(c.Args[0], env)
		if err != nil {
			return nil, err
		}
		switch vv := v.(type) {
		case []Value:
			return int64(len(vv)), nil
		case string:
			return int64(len(vv)), nil
		}
		return int64(0), nil
	}

	fn, ok := it.functions[c.Callee]
	if !ok {
		return nil, fmt.Errorf("interp: undefined function %q", c.Callee)
	}
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := it.eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	callEnv := newEnv(it.globals)
	for i, p := range fn.Params {
		if i < len(args) {
			callEnv.define(p.Name, args[i])
		}
	}
	signal, val, err := it.execBlock(fn.Body.Stmts, callEnv)
	if err != nil {
		return nil, err
	}
	if signal == ctrlReturn {
		return val, nil
	}
	return int64(0), nil
}

func (it *Interpreter) zeroValue(t *compiler.Type) Value {
	if t == nil {
		return int64(0)
	}
	if t.IsArray {
		elems := make([]Value, t.ArraySize)
		for i := range elems {
			elems[i] = it.zeroValue(t.Elem)
		}
		return elems
	}
	if !t.IsPrim {
		a, ok := it.aggregates[t.Name]
		if !ok {
			return &Struct{TypeName: t.Name, Fields: map[string]Value{}}
		}
		fields := map[string]Value{}
		for _, f := range a.Fields {
			fields[f.Name] = it.zeroValue(f.Type)
		}
		return &Struct{TypeName: t.Name, Fields: fields}
	}
	switch t.Prim {
	case compiler.PrimInt:
		return int64(0)
	case compiler.PrimFloat:
		return float64(0)
	case compiler.PrimBool:
		return false
	case compiler.PrimText:
		return ""
	}
	return int64(0)
}

func truthy(v Value) bool {
	switch vv := v.(type) {
	case bool:
		return vv
	case int64:
		return vv != 0
	case float64:
		return vv != 0
	case string:
		return vv != ""
	}
	return v != nil
}

func asInt(v Value) int64 {
	switch vv := v.(type) {
	case int64:
		return vv
	case float64:
		return int64(vv)
	case bool:
		if vv {
			return 1
		}
		return 0
	}
	return 0
}

func asFloat(v Value) float64 {
	switch vv := v.(type) {
	case float64:
		return vv
	case int64:
		return float64(vv)
	}
	return 0
}

func isFloatValue(v Value) bool {
	_, ok := v.(float64)
	return ok
}

func numLess(a, b Value) bool {
	if isFloatValue(a) || isFloatValue(b) {
		return asFloat(a) < asFloat(b)
	}
	return asInt(a) < asInt(b)
}

func valuesEqual(a, b Value) bool {
	if isFloatValue(a) || isFloatValue(b) {
		return asFloat(a) == asFloat(b)
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return asInt(a) == asInt(b)
	}
}

func evalBinary(op compiler.TokenType, l, r Value) (Value, error) {
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			switch op {
			case compiler.TokEq:
				return ls == rs, nil
			case compiler.TokNe:
				return ls != rs, nil
			}
			return nil, fmt.Errorf("interp: operator %s not supported on text", op)
		}
	}
	if isFloatValue(l) || isFloatValue(r) {
		lf, rf := asFloat(l), asFloat(r)
		switch op {
		case compiler.TokPlus:
			return lf + rf, nil
		case compiler.TokMinus:
			return lf - rf, nil
		case compiler.TokStar:
			return lf * rf, nil
		case compiler.TokSlash:
			return lf / rf, nil
		case compiler.TokLt:
			return lf < rf, nil
		case compiler.TokLe:
			return lf <= rf, nil
		case compiler.TokGt:
			return lf > rf, nil
		case compiler.TokGe:
			return lf >= rf, nil
		case compiler.TokEq:
			return lf == rf, nil
		case compiler.TokNe:
			return lf != rf, nil
		}
		return nil, fmt.Errorf("interp: operator %s not supported on decimal", op)
	}
	li, ri := asInt(l), asInt(r)
	switch op {
	case compiler.TokPlus:
		return li + ri, nil
	case compiler.TokMinus:
		return li - ri, nil
	case compiler.TokStar:
		return li * ri, nil
	case compiler.TokSlash:
		if ri == 0 {
			return nil, fmt.Errorf("interp: division by zero")
		}
		return li / ri, nil
	case compiler.TokPercent:
		if ri == 0 {
			return nil, fmt.Errorf("interp: modulo by zero")
		}
		return li % ri, nil
	case compiler.TokLt:
		return li < ri, nil
	case compiler.TokLe:
		return li <= ri, nil
	case compiler.TokGt:
		return li > ri, nil
	case compiler.TokGe:
		return li >= ri, nil
	case compiler.TokEq:
		return li == ri, nil
	case compiler.TokNe:
		return li != ri, nil
	}
	return nil, fmt.Errorf("interp: unsupported binary operator %s", op)
}

func castValue(target *compiler.Type, v Value) Value {
	if target == nil || !target.IsPrim {
		return v
	}
	switch target.Prim {
	case compiler.PrimInt:
		return asInt(v)
	case compiler.PrimFloat:
		return asFloat(v)
	case compiler.PrimBool:
		return truthy(v)
	case compiler.PrimText:
		return formatValue(v)
	}
	return v
}

// parseInput mirrors the original _call's bata/input parsing: blank input
// becomes the zero value, otherwise it parses according to the requested
// static type rather than sniffing for a decimal point.
func parseInput(raw string, t *compiler.Type) Value {
	if raw == "" {
		if t != nil && t.IsPrim && t.Prim == compiler.PrimFloat {
			return float64(0)
		}
		if t != nil && t.IsPrim && t.Prim == compiler.PrimText {
			return ""
		}
		if t != nil && t.IsPrim && t.Prim == compiler.PrimBool {
			return false
		}
		return int64(0)
	}
	if t != nil && t.IsPrim {
		switch t.Prim {
		case compiler.PrimInt:
			if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return i
			}
			return int64(0)
		case compiler.PrimFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				return f
			}
			return float64(0)
		case compiler.PrimBool:
			return raw == "true" || raw == "1"
		case compiler.PrimText:
			return raw
		}
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return int64(0)
}

func formatValue(v Value) string {
	switch vv := v.(type) {
	case bool:
		if vv {
			return "1"
		}
		return "0"
	case int64:
		return strconv.FormatInt(vv, 10)
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case string:
		return vv
	case *Struct:
		return fmt.Sprintf("<%s>", vv.TypeName)
	case []Value:
		parts := make([]string, len(vv))
		for i, e := range vv {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("%v", v)
}
