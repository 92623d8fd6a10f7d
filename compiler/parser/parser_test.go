package parser

import (
	. "github.com/lollipopkit/luacore/compiler/ast"
	"github.com/lollipopkit/luacore/compiler/lexer"
	"testing"
)

func TestParseTableConstructor(t *testing.T) {
	l := lexer.NewLexer("{1, 2}", "")
	exp := ParseExp(l)
	tb, ok := exp.(*TableConstructorExp)
	if !ok || len(tb.ValExps) != 2 {
		t.Fatalf("expect table with 2 array values")
	}

	l = lexer.NewLexer("{a = 1}", "")
	exp = ParseExp(l)
	tb, ok = exp.(*TableConstructorExp)
	if !ok || len(tb.KeyExps) != 1 {
		t.Fatalf("expect table with 1 field")
	}
}
