// Package scope implements the scope/goto analysis pass that runs between
// parsing and codegen. It walks the block tree built by the parser and
// produces an annotated ResolvedBlock tree recording, per block, the
// locals it declares (in declaration order) and the labels it defines,
// and validates that every goto targets a label that is visible from its
// scope without jumping into the scope of a local variable.
package scope

import (
	"fmt"

	. "github.com/lollipopkit/luacore/compiler/ast"
)

// ResolvedBlock annotates a *ast.Block with the locals it declares, in
// declaration order, and the labels defined directly inside it.
type ResolvedBlock struct {
	Block    *Block
	Parent   *ResolvedBlock
	Locals   []string
	Labels   map[string]int // label name -> index into Block.Stats
	Children []*ResolvedBlock
}

// gotoRef records a goto found while walking a block: the statement index
// it occupies (so forward/backward jumps within the same block can be told
// apart) and how many locals this block had declared before it (enclosing
// blocks' locals are not counted).
type gotoRef struct {
	name     string
	line     int
	stat     int
	localsAt int
}

// Resolve walks block and returns its annotated tree. It panics if a goto
// references an undefined label, a label is declared twice in the same
// block, or a goto jumps into the scope of a local variable.
func Resolve(block *Block) *ResolvedBlock {
	return resolveBlock(block, nil)
}

func resolveBlock(block *Block, parent *ResolvedBlock) *ResolvedBlock {
	rb := &ResolvedBlock{Block: block, Parent: parent, Labels: map[string]int{}}

	var gotos []gotoRef
	for i, stat := range block.Stats {
		switch s := stat.(type) {
		case *LocalVarDeclStat:
			rb.Locals = append(rb.Locals, s.NameList...)
		case *LocalFuncDefStat:
			rb.Locals = append(rb.Locals, s.Name)
		case *Label:
			if _, dup := rb.Labels[s.Name]; dup {
				panic(fmt.Sprintf("label '%s' already defined in this block (line %d)", s.Name, s.Line))
			}
			rb.Labels[s.Name] = i
		case *GotoStat:
			gotos = append(gotos, gotoRef{s.Name, s.Line, i, len(rb.Locals)})
		case *DoStat:
			rb.Children = append(rb.Children, resolveBlock(s.Block, rb))
		case *WhileStat:
			rb.Children = append(rb.Children, resolveBlock(s.Block, rb))
		case *RepeatStat:
			rb.Children = append(rb.Children, resolveBlock(s.Block, rb))
		case *IfStat:
			for _, b := range s.Blocks {
				rb.Children = append(rb.Children, resolveBlock(b, rb))
			}
		case *ForNumStat:
			rb.Children = append(rb.Children, resolveBlock(s.Block, rb))
		case *ForInStat:
			rb.Children = append(rb.Children, resolveBlock(s.Block, rb))
		}
	}

	for _, g := range gotos {
		checkGoto(rb, g)
	}

	return rb
}

// checkGoto walks rb's enclosing chain for g's target label. A label found
// in an outer block is always a legal jump (locals of the inner block are
// simply discarded). A label found in rb itself is legal unless it's a
// forward jump that skips over a local declaration the label doesn't
// already sit past — except when the label is the last statement(s) of
// the block, matching real Lua's carve-out for jumping to a block's end.
func checkGoto(rb *ResolvedBlock, g gotoRef) {
	for b := rb; b != nil; b = b.Parent {
		idx, ok := b.Labels[g.name]
		if !ok {
			continue
		}
		if b == rb && idx > g.stat && localsBetween(b.Block, g.stat, idx) > 0 && !labelIsBlockTail(b.Block, idx) {
			panic(fmt.Sprintf("goto '%s' on line %d jumps into the scope of a local variable", g.name, g.line))
		}
		return
	}
	panic(fmt.Sprintf("no visible label '%s' for goto on line %d", g.name, g.line))
}

// localsBetween counts locals declared strictly between statement indices
// from and to (exclusive on both ends).
func localsBetween(block *Block, from, to int) int {
	n := 0
	for i := from + 1; i < to; i++ {
		switch s := block.Stats[i].(type) {
		case *LocalVarDeclStat:
			n += len(s.NameList)
		case *LocalFuncDefStat:
			n++
		}
	}
	return n
}

// labelIsBlockTail reports whether every statement after idx is itself a
// label, i.e. the label sits at the effective end of the block.
func labelIsBlockTail(block *Block, idx int) bool {
	for i := idx + 1; i < len(block.Stats); i++ {
		if _, ok := block.Stats[i].(*Label); !ok {
			return false
		}
	}
	return true
}
