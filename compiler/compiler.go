package compiler

import (
	"github.com/lollipopkit/luacore/binchunk"
	"github.com/lollipopkit/luacore/compiler/codegen"
	"github.com/lollipopkit/luacore/compiler/parser"
	"github.com/lollipopkit/luacore/compiler/scope"
)

func Compile(chunk, chunkName string) *binchunk.Prototype {
	ast := parser.Parse(chunk, chunkName)
	scope.Resolve(ast)
	proto := codegen.GenProto(ast)
	setSource(proto, chunkName)
	return proto
}

func setSource(proto *binchunk.Prototype, chunkName string) {
	proto.Source = chunkName
	for _, f := range proto.Protos {
		setSource(f, chunkName)
	}
}
