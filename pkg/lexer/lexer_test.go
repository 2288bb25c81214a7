package lexer

import "testing"

func lexOK(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q): %v", src, err)
	}
	return toks
}

func TestLexIdentifiersAndKeywords(t *testing.T) {
	toks := lexOK(t, "int x_1 return returning")
	want := []TokenType{INT, IDENT, RETURN, IDENT, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
	if toks[1].Lexeme != "x_1" {
		t.Errorf("token 1 lexeme = %q, want x_1", toks[1].Lexeme)
	}
	if toks[3].Lexeme != "returning" {
		t.Errorf("token 3 lexeme = %q, want returning (not a RETURN keyword prefix match)", toks[3].Lexeme)
	}
}

func TestLexNumbers(t *testing.T) {
	cases := []struct {
		src        string
		val        int64
		isUnsigned bool
	}{
		{"42", 42, false},
		{"0x2A", 42, false},
		{"10u", 10, true},
		{"10U", 10, true},
		{"5L", 5, false},
		{"5ul", 5, true},
		{"0", 0, false},
	}
	for _, c := range cases {
		toks := lexOK(t, c.src)
		if toks[0].Type != NUM {
			t.Fatalf("Lex(%q)[0].Type = %s, want NUM", c.src, toks[0].Type)
		}
		if toks[0].Val != c.val {
			t.Errorf("Lex(%q).Val = %d, want %d", c.src, toks[0].Val, c.val)
		}
		if toks[0].IsUnsigned != c.isUnsigned {
			t.Errorf("Lex(%q).IsUnsigned = %v, want %v", c.src, toks[0].IsUnsigned, c.isUnsigned)
		}
	}
}

func TestLexStringAndCharEscapes(t *testing.T) {
	toks := lexOK(t, `"hi\n" 'a' '\0'`)
	if toks[0].Type != STRING || toks[0].Lexeme != "hi\n" {
		t.Errorf("string literal = %q, want %q", toks[0].Lexeme, "hi\n")
	}
	if toks[1].Type != NUM || toks[1].Val != int64('a') {
		t.Errorf("char literal 'a' = %d, want %d", toks[1].Val, int64('a'))
	}
	if toks[2].Type != NUM || toks[2].Val != 0 {
		t.Errorf("char literal '\\0' = %d, want 0", toks[2].Val)
	}
}

func TestLexOperatorsDoNotOverlap(t *testing.T) {
	toks := lexOK(t, "<<= >>= && || == != <= >= -> ...")
	want := []TokenType{SHL, ASSIGN, SHR, ASSIGN, ANDAND, OROR, EQ, NE, LE, GE, ARROW, ELLIPSIS, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestLexSkipsComments(t *testing.T) {
	toks := lexOK(t, "1 /* block\ncomment */ + // line comment\n2")
	want := []TokenType{NUM, PLUS, NUM, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	// The block comment spans a newline, so "2" should be on line 3.
	if toks[2].Line != 3 {
		t.Errorf("second NUM line = %d, want 3", toks[2].Line)
	}
}

func TestLexUnterminatedStringIsError(t *testing.T) {
	if _, err := Lex(`"unterminated`); err == nil {
		t.Error("expected error for unterminated string literal")
	}
}

func TestLexIllegalCharacterIsError(t *testing.T) {
	if _, err := Lex("@"); err == nil {
		t.Error("expected error for illegal character")
	}
}
