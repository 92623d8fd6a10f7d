package parser

import (
	"encoding/json"
	"io/ioutil"

	. "github.com/lollipopkit/luacore/compiler/ast"
	. "github.com/lollipopkit/luacore/compiler/lexer"
	"github.com/lollipopkit/luacore/consts"
)

/* recursive descent parser */

func Parse(chunk, chunkName string) *Block {
	lexer := NewLexer(chunk, chunkName)
	block := ParseBlock(lexer)

	if consts.Debug {
		data, err := json.MarshalIndent(block, "", "  ")
		if err != nil {
			panic(err)
		}
		ioutil.WriteFile(chunkName+".ast.json", data, 0644)
	}

	lexer.NextTokenOfKind(TOKEN_EOF)
	return block
}
