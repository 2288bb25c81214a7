// Package lexer tokenizes the small C subset pkg/parser consumes: the
// syntax needed to exercise every node kind pkg/codegen implements.
package lexer

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota

	// Literals
	IDENT  // variable / function / member name
	NUM    // decimal or hex integer literal
	STRING // string literal "..."

	// Type keywords
	VOID
	BOOL
	CHAR
	SHORT
	INT
	LONG
	UNSIGNED
	STRUCT
	UNION

	// Storage / statement keywords
	STATIC
	IF
	ELSE
	FOR
	WHILE
	DO
	SWITCH
	CASE
	DEFAULT
	BREAK
	CONTINUE
	GOTO
	RETURN
	SIZEOF

	// Paired delimiters
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET

	// Punctuation
	DOT
	ARROW
	SEMICOLON
	COMMA
	COLON
	QUESTION
	ELLIPSIS

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	AMP
	PIPE
	CARET
	TILDE
	BANG
	SHL
	SHR
	ANDAND
	OROR

	ASSIGN
	EQ
	NE
	LT
	LE
	GT
	GE
)

var tokenNames = map[TokenType]string{
	EOF: "EOF", IDENT: "IDENT", NUM: "NUM", STRING: "STRING",
	VOID: "void", BOOL: "_Bool", CHAR: "char", SHORT: "short", INT: "int",
	LONG: "long", UNSIGNED: "unsigned", STRUCT: "struct", UNION: "union",
	STATIC: "static", IF: "if", ELSE: "else", FOR: "for", WHILE: "while",
	DO: "do", SWITCH: "switch", CASE: "case", DEFAULT: "default",
	BREAK: "break", CONTINUE: "continue", GOTO: "goto", RETURN: "return",
	SIZEOF: "sizeof",
	LBRACE: "{", RBRACE: "}", LPAREN: "(", RPAREN: ")",
	LBRACKET: "[", RBRACKET: "]",
	DOT: ".", ARROW: "->", SEMICOLON: ";", COMMA: ",", COLON: ":",
	QUESTION: "?", ELLIPSIS: "...",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	AMP: "&", PIPE: "|", CARET: "^", TILDE: "~", BANG: "!",
	SHL: "<<", SHR: ">>", ANDAND: "&&", OROR: "||",
	ASSIGN: "=", EQ: "==", NE: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// keywords maps source spellings to their keyword TokenType.
var keywords = map[string]TokenType{
	"void": VOID, "_Bool": BOOL, "char": CHAR, "short": SHORT, "int": INT,
	"long": LONG, "unsigned": UNSIGNED, "struct": STRUCT, "union": UNION,
	"static": STATIC, "if": IF, "else": ELSE, "for": FOR, "while": WHILE,
	"do": DO, "switch": SWITCH, "case": CASE, "default": DEFAULT,
	"break": BREAK, "continue": CONTINUE, "goto": GOTO, "return": RETURN,
	"sizeof": SIZEOF,
}

// Token is a single lexical unit produced by Lex.
type Token struct {
	Type       TokenType
	Lexeme     string // exact matched source text, or decoded string-literal bytes for STRING
	Val        int64  // NUM: the literal's value
	IsUnsigned bool   // NUM: true when suffixed with u/U
	Line       int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Type, t.Lexeme, t.Line)
}
