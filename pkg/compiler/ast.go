package compiler

import "fmt"

// Expr is implemented by every expression AST node.
type Expr interface {
	exprNode()
	ExprSpan() Span
}

// Stmt is implemented by every statement AST node.
type Stmt interface {
	stmtNode()
	StmtSpan() Span
}

// ErrorExpr/ErrorStmt are placeholders left by parser recovery. Subsequent
// passes must short-circuit type checks on any subtree containing one
// (spec 4.2).
type ErrorExpr struct{ Span Span }

func (*ErrorExpr) exprNode()        {}
func (e *ErrorExpr) ExprSpan() Span { return e.Span }

type ErrorStmt struct{ Span Span }

func (*ErrorStmt) stmtNode()        {}
func (e *ErrorStmt) StmtSpan() Span { return e.Span }

// --- Expressions ---

// Literal is an int/float/bool/string constant.
type Literal struct {
	Span     Span
	Kind     TokenType // TokInt, TokFloat, TokBool, TokString
	IntVal   int64
	FloatVal float64
	BoolVal  bool
	StrVal   string
	Type     *Type // filled in by semantic analysis
}

func (*Literal) exprNode()        {}
func (l *Literal) ExprSpan() Span { return l.Span }

// NameRef references a declared variable/parameter/constant by name.
type NameRef struct {
	Span Span
	Name string
	Type *Type
}

func (*NameRef) exprNode()        {}
func (n *NameRef) ExprSpan() Span { return n.Span }

// BinaryExpr is arithmetic, relational, or equality — never a logical and/or
// (those get their own LogicalExpr node, see below, matching the distinction
// spec 4.2/4.4 requires for short-circuit evaluation).
type BinaryExpr struct {
	Span  Span
	Op    TokenType
	Left  Expr
	Right Expr
	Type  *Type
}

func (*BinaryExpr) exprNode()        {}
func (b *BinaryExpr) ExprSpan() Span { return b.Span }

// LogicalExpr is &&/||, short-circuit, distinct from BinaryExpr.
type LogicalExpr struct {
	Span  Span
	Op    TokenType // TokAndAnd or TokOrOr
	Left  Expr
	Right Expr
}

func (*LogicalExpr) exprNode()        {}
func (l *LogicalExpr) ExprSpan() Span { return l.Span }

// UnaryExpr is -x or !x.
type UnaryExpr struct {
	Span    Span
	Op      TokenType
	Operand Expr
	Type    *Type
}

func (*UnaryExpr) exprNode()        {}
func (u *UnaryExpr) ExprSpan() Span { return u.Span }

// CastExpr is an explicit primitive conversion: bhai(x), decimal(x), bool(x).
type CastExpr struct {
	Span   Span
	Target *Type
	Inner  Expr
}

func (*CastExpr) exprNode()        {}
func (c *CastExpr) ExprSpan() Span { return c.Span }

// CallExpr is a function or builtin call.
type CallExpr struct {
	Span    Span
	Callee  string
	Args    []Expr
	RetType *Type
}

func (*CallExpr) exprNode()        {}
func (c *CallExpr) ExprSpan() Span { return c.Span }

// IndexExpr is base[index].
type IndexExpr struct {
	Span  Span
	Base  Expr
	Index Expr
	Type  *Type
}

func (*IndexExpr) exprNode()        {}
func (i *IndexExpr) ExprSpan() Span { return i.Span }

// FieldExpr is base.field.
type FieldExpr struct {
	Span  Span
	Base  Expr
	Field string
	Type  *Type
}

func (*FieldExpr) exprNode()        {}
func (f *FieldExpr) ExprSpan() Span { return f.Span }

// InputExpr is bata(), reading one value of the target type from stdin.
type InputExpr struct {
	Span Span
	Type *Type
}

func (*InputExpr) exprNode()        {}
func (i *InputExpr) ExprSpan() Span { return i.Span }

// IncDecExpr is ++x / x++ / --x / x--. Per the Open Question resolution
// (spec section 9 / DESIGN.md): post forms yield the pre-update value, pre
// forms yield the post-update value. In statement position the parser
// desugars this directly into an Assignment instead (the yielded value is
// unused there), so IncDecExpr only ever reaches semantic analysis/IR when
// used inside a larger expression.
type IncDecExpr struct {
	Span   Span
	Op     TokenType // TokPlusPlus or TokMinusMinus
	Target Expr       // NameRef, IndexExpr, or FieldExpr
	Post   bool
	Type   *Type
}

func (*IncDecExpr) exprNode()        {}
func (i *IncDecExpr) ExprSpan() Span { return i.Span }

// --- Types ---

type PrimKind int

const (
	PrimInt PrimKind = iota
	PrimFloat
	PrimBool
	PrimText
	PrimVoid
)

// Type is a primitive, a named aggregate (struct/kaksha), or a fixed-size
// single-dimension array of either. Arrays have no initializer support (spec
// 4.3): "Array declaration with initializer is not supported yet."
type Type struct {
	Prim      PrimKind
	IsPrim    bool
	Name      string // aggregate name, when !IsPrim && !IsArray
	IsArray   bool
	Elem      *Type // element type, when IsArray
	ArraySize int   // declared length, when IsArray
}

func PrimitiveType(k PrimKind) *Type  { return &Type{Prim: k, IsPrim: true} }
func AggregateType(name string) *Type { return &Type{Name: name, IsPrim: false} }

// ArrayType builds a fixed-size array type over elem, grounded on the
// original's array<base,size> type-string encoding (semantic.py _array_of).
func ArrayType(elem *Type, size int) *Type {
	return &Type{IsArray: true, Elem: elem, ArraySize: size}
}

func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.IsArray || o.IsArray {
		return t.IsArray == o.IsArray && t.ArraySize == o.ArraySize && t.Elem.Equal(o.Elem)
	}
	if t.IsPrim != o.IsPrim {
		return false
	}
	if t.IsPrim {
		return t.Prim == o.Prim
	}
	return t.Name == o.Name
}

func (t *Type) String() string {
	if t == nil {
		return "<unknown>"
	}
	if t.IsArray {
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.ArraySize)
	}
	if t.IsPrim {
		switch t.Prim {
		case PrimInt:
			return "bhai"
		case PrimFloat:
			return "decimal"
		case PrimBool:
			return "bool"
		case PrimText:
			return "text"
		case PrimVoid:
			return "khali"
		}
	}
	return t.Name
}

// --- Declarations ---

type Field struct {
	Name string
	Type *Type
}

// AggregateDecl is struct or kaksha (class) — spec's open question resolves
// them to one node; Keyword is retained only for round-tripping diagnostics
// and --dump-ast text.
type AggregateDecl struct {
	Span    Span
	Keyword TokenType // TokKwStruct or TokKwKaksha
	Name    string
	Fields  []Field
}

func (*AggregateDecl) stmtNode()        {}
func (a *AggregateDecl) StmtSpan() Span { return a.Span }

type Param struct {
	Name string
	Type *Type
}

// FunctionDecl is a top-level function declaration.
type FunctionDecl struct {
	Span    Span
	Name    string
	Params  []Param
	RetType *Type
	Body    *BlockStmt
}

func (*FunctionDecl) stmtNode()        {}
func (f *FunctionDecl) StmtSpan() Span { return f.Span }

// ImportDecl is `laao "path"`.
type ImportDecl struct {
	Span Span
	Path string
}

func (*ImportDecl) stmtNode()        {}
func (i *ImportDecl) StmtSpan() Span { return i.Span }

// --- Statements ---

type VarDecl struct {
	Span Span
	Name string
	Type *Type
	Init Expr // nil if no initializer
}

func (*VarDecl) stmtNode()        {}
func (v *VarDecl) StmtSpan() Span { return v.Span }

// Assignment covers plain `x = e`. Compound assignment (+=, ++, --) is
// desugared by the parser into one of these with a synthesized BinaryExpr
// value (spec 4.2 assignment sugar).
type Assignment struct {
	Span   Span
	Target Expr // NameRef, IndexExpr, or FieldExpr
	Value  Expr
}

func (*Assignment) stmtNode()        {}
func (a *Assignment) StmtSpan() Span { return a.Span }

type ExprStmt struct {
	Span Span
	X    Expr
}

func (*ExprStmt) stmtNode()        {}
func (e *ExprStmt) StmtSpan() Span { return e.Span }

type PrintStmt struct {
	Span  Span
	Value Expr
}

func (*PrintStmt) stmtNode()        {}
func (p *PrintStmt) StmtSpan() Span { return p.Span }

type ReturnStmt struct {
	Span  Span
	Value Expr // nil for bare `nikal`
}

func (*ReturnStmt) stmtNode()        {}
func (r *ReturnStmt) StmtSpan() Span { return r.Span }

type BlockStmt struct {
	Span  Span
	Stmts []Stmt
}

func (*BlockStmt) stmtNode()        {}
func (b *BlockStmt) StmtSpan() Span { return b.Span }

type IfStmt struct {
	Span Span
	Cond Expr
	Then Stmt
	Else Stmt // nil if no warna
}

func (*IfStmt) stmtNode()        {}
func (i *IfStmt) StmtSpan() Span { return i.Span }

type WhileStmt struct {
	Span Span
	Cond Expr
	Body Stmt
}

func (*WhileStmt) stmtNode()        {}
func (w *WhileStmt) StmtSpan() Span { return w.Span }

// ForStmt is jabtak(init; cond; post) body.
type ForStmt struct {
	Span Span
	Init Stmt // may be nil
	Cond Expr // may be nil
	Post Stmt // may be nil
	Body Stmt
}

func (*ForStmt) stmtNode()        {}
func (f *ForStmt) StmtSpan() Span { return f.Span }

// DoWhileStmt is kar { ... } tabtak (cond).
type DoWhileStmt struct {
	Span Span
	Body Stmt
	Cond Expr
}

func (*DoWhileStmt) stmtNode()        {}
func (d *DoWhileStmt) StmtSpan() Span { return d.Span }

type CaseClause struct {
	Span  Span
	Value Expr // constant expression
	Body  []Stmt
}

type SwitchStmt struct {
	Span      Span
	Discrim   Expr
	Cases     []CaseClause
	HasDefault bool
	Default   []Stmt
}

func (*SwitchStmt) stmtNode()        {}
func (s *SwitchStmt) StmtSpan() Span { return s.Span }

type BreakStmt struct{ Span Span }

func (*BreakStmt) stmtNode()        {}
func (b *BreakStmt) StmtSpan() Span { return b.Span }

type ContinueStmt struct{ Span Span }

func (*ContinueStmt) stmtNode()        {}
func (c *ContinueStmt) StmtSpan() Span { return c.Span }

// Program is the root AST node for one compilation unit: top-level
// declarations followed by the shuru...bass main block.
type Program struct {
	Span        Span
	Imports     []*ImportDecl
	Aggregates  []*AggregateDecl
	Functions   []*FunctionDecl
	MainBody    []Stmt // the shuru...bass block's statements
	HasMain     bool   // false for a file that is import-only
}
