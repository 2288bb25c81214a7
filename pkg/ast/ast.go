// Package ast is the typed tree the back end walks: Obj (top-level
// functions and globals) and Node (statements and expressions). These
// are produced by pkg/parser and never mutated by pkg/codegen except
// for the frame-layout fields on Obj (Offset/Align/StackSize) and the
// CaseLabel of CASE nodes, which the switch lowering assigns.
package ast

import "loongcc/pkg/types"

// Token carries just enough source position for diagnostics and the
// .loc line directives; the lexer/parser own everything else about the
// source text.
type Token struct {
	Line int
	Text string // original lexeme, used in error messages
}

// Relocation instructs the linker to place an 8-byte pointer-sized
// reference to Label, plus Addend, at Offset bytes into a global's
// InitData.
type Relocation struct {
	Offset int
	Label  string
	Addend int64
}

// Obj is a top-level function or global variable.
type Obj struct {
	Name         string
	Type         *types.Type
	IsFunction   bool
	IsDefinition bool
	IsStatic     bool
	IsLocal      bool // true for locals/params; always false at top level

	// Functions only.
	Params    []*Obj
	Locals    []*Obj
	Body      *Node
	StackSize int // filled in by codegen's layout pass; multiple of 16

	// Locals only; filled in by codegen's layout pass.
	Offset int // zero or negative; slot top, see pkg/codegen/layout.go
	Align  int

	// Globals only.
	InitData []byte
	Rel      []Relocation // sorted by Offset, non-overlapping, 8 bytes each
}

// NodeKind tags the ~40-variant expression/statement union.
type NodeKind int

const (
	// Expressions
	NUM NodeKind = iota
	NEG
	VAR
	MEMBER
	DEREF
	ADDR
	ASSIGN
	STMT_EXPR
	COMMA
	CAST
	MEMZERO
	COND
	NOT
	BITNOT
	LOGAND
	LOGOR
	FUNCALL
	NULL_EXPR
	ADD
	SUB
	MUL
	DIV
	MOD
	BITAND
	BITOR
	BITXOR
	EQ
	NE
	LT
	LE
	SHL
	SHR

	// Statements
	IF
	FOR
	DO
	SWITCH
	CASE
	BLOCK
	GOTO
	LABEL
	RETURN
	EXPR_STMT
)

var kindNames = map[NodeKind]string{
	NUM: "NUM", NEG: "NEG", VAR: "VAR", MEMBER: "MEMBER", DEREF: "DEREF",
	ADDR: "ADDR", ASSIGN: "ASSIGN", STMT_EXPR: "STMT_EXPR", COMMA: "COMMA",
	CAST: "CAST", MEMZERO: "MEMZERO", COND: "COND", NOT: "NOT", BITNOT: "BITNOT",
	LOGAND: "LOGAND", LOGOR: "LOGOR", FUNCALL: "FUNCALL", NULL_EXPR: "NULL_EXPR",
	ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", MOD: "MOD",
	BITAND: "BITAND", BITOR: "BITOR", BITXOR: "BITXOR", EQ: "EQ", NE: "NE",
	LT: "LT", LE: "LE", SHL: "SHL", SHR: "SHR",
	IF: "IF", FOR: "FOR", DO: "DO", SWITCH: "SWITCH", CASE: "CASE",
	BLOCK: "BLOCK", GOTO: "GOTO", LABEL: "LABEL", RETURN: "RETURN",
	EXPR_STMT: "EXPR_STMT",
}

func (k NodeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Node is a single AST node. Which fields are meaningful depends on
// Kind; see pkg/codegen/expr.go and pkg/codegen/stmt.go for the
// dispatch that reads them.
type Node struct {
	Kind NodeKind
	Tok  Token
	Type *types.Type // result type; nil only for pure statement kinds

	Lhs, Rhs        *Node
	Cond, Then, Els *Node
	Init, Inc       *Node
	Body            []*Node // BLOCK, STMT_EXPR
	Args            []*Node // FUNCALL

	Val    int64  // NUM
	Var    *Obj   // VAR
	Member *types.Member // MEMBER
	Funcname string // FUNCALL
	FuncType *types.Type // FUNCALL: declared signature of the callee, for return narrowing

	CastFrom *types.Type // CAST: source type (Node.Lhs's type, cached for clarity)

	// SWITCH/CASE
	Cases       []*Node // SWITCH: the CASE children, in source order
	CaseVal     int64   // CASE: compile-time value compared against the switch target
	DefaultCase *Node   // SWITCH: the default clause's body wrapper, or nil
	CaseLabel   string  // CASE: unique label emitted immediately before this case's body

	// Label propagation: goto/break/continue targets and per-case labels.
	Label       string // GOTO: target name as written; LABEL: name as written
	UniqueLabel string // LABEL: label actually emitted; GOTO: resolved target
	BrkLabel    string // FOR/DO/SWITCH: where break jumps
	ContLabel   string // FOR/DO: where continue jumps
}
