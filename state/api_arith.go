package state

import (
	"fmt"
	"math"

	. "github.com/lollipopkit/luacore/api"
	"github.com/lollipopkit/luacore/utils"
)

type operator struct {
	metamethod  string
	integerFunc func(int64, int64) int64
	floatFunc   func(float64, float64) float64
}

var (
	iadd  = func(a, b int64) int64 { return a + b }
	fadd  = func(a, b float64) float64 { return a + b }
	isub  = func(a, b int64) int64 { return a - b }
	fsub  = func(a, b float64) float64 { return a - b }
	imul  = func(a, b int64) int64 { return a * b }
	fmul  = func(a, b float64) float64 { return a * b }
	imod  = utils.IMod
	fmod  = utils.FMod
	pow   = math.Pow
	div   = func(a, b float64) float64 { return a / b }
	iidiv = utils.IFloorDiv
	fidiv = utils.FFloorDiv
	band  = func(a, b int64) int64 { return a & b }
	bor   = func(a, b int64) int64 { return a | b }
	bxor  = func(a, b int64) int64 { return a ^ b }
	shl   = utils.ShiftLeft
	shr   = utils.ShiftRight
	iunm  = func(a, _ int64) int64 { return -a }
	funm  = func(a, _ float64) float64 { return -a }
	bnot  = func(a, _ int64) int64 { return ^a }
)

var operators = []operator{
	{"__add", iadd, fadd},
	{"__sub", isub, fsub},
	{"__mul", imul, fmul},
	{"__mod", imod, fmod},
	{"__pow", nil, pow},
	{"__div", nil, div},
	{"__idiv", iidiv, fidiv},
	{"__band", band, nil},
	{"__bor", bor, nil},
	{"__bxor", bxor, nil},
	{"__shl", shl, nil},
	{"__shr", shr, nil},
	{"__unm", iunm, funm},
	{"__bnot", bnot, nil},
}

func opSymbol(opName string) string {
	switch opName {
	case "__add":
		return "+"
	case "__sub":
		return "-"
	case "__mul":
		return "*"
	case "__mod":
		return "%"
	case "__pow":
		return "^"
	case "__div":
		return "/"
	case "__idiv":
		return "//"
	case "__band":
		return "&"
	case "__bor":
		return "|"
	case "__bxor":
		return "~"
	case "__shl":
		return "<<"
	case "__shr":
		return ">>"
	case "__unm":
		return "-"
	case "__bnot":
		return "~"
	default:
		return opName
	}
}

// [-(2|1), +1, e]
// http://www.lua.org/manual/5.3/manual.html#lua_arith
func (self *lkState) Arith(op ArithOp) {
	var a, b any // operands
	b = self.stack.pop()
	if op != LUA_OPUNM && op != LUA_OPBNOT {
		a = self.stack.pop()
	} else {
		a = b
	}

	operator := operators[op]
	if result := _arith(a, b, operator); result != nil {
		self.stack.push(result)
		return
	}

	mm := operator.metamethod
	if result, ok := callMetamethod(a, b, mm, self); ok {
		self.stack.push(result)
		return
	}

	if a == nil && b == nil {
		self.PushNil()
		return
	}

	bad := a
	if _, ok := convertToFloat(a); ok {
		bad = b
	}
	panic(fmt.Sprintf("attempt to perform arithmetic (%s) on a %T value", opSymbol(mm), bad))
}

// [-n, +1, e]
// http://www.lua.org/manual/5.3/manual.html#lua_concat
// pops n values from the top of the stack and pushes the result of
// concatenating them; numbers coerce to strings, __concat is tried
// when a pair isn't string/number.
func (self *lkState) Concat(n int) {
	if n == 0 {
		self.stack.push("")
		return
	}
	for n > 1 {
		s2, s2ok := self.ToStringX(-1)
		s1, s1ok := self.ToStringX(-2)
		if s1ok && s2ok {
			self.stack.pop()
			self.stack.pop()
			self.stack.push(s1 + s2)
		} else {
			b := self.stack.pop()
			a := self.stack.pop()
			if result, ok := callMetamethod(a, b, "__concat", self); ok {
				self.stack.push(result)
			} else {
				bad := a
				if _, ok := a.(string); ok {
					bad = b
				} else if _, ok := convertToFloat(a); ok {
					bad = b
				}
				panic(fmt.Sprintf("attempt to concatenate a %T value", bad))
			}
		}
		n--
	}
}

func _arith(a, b any, op operator) any {
	if op.floatFunc == nil { // bitwise
		if x, ok := convertToInteger(a); ok {
			if y, ok := convertToInteger(b); ok {
				return op.integerFunc(x, y)
			}
		}
	} else { // arith
		if op.integerFunc != nil { // add,sub,mul,mod,idiv,unm
			if x, ok := a.(int64); ok {
				if y, ok := b.(int64); ok {
					return op.integerFunc(x, y)
				}
			}
		}
		if x, ok := convertToFloat(a); ok {
			if y, ok := convertToFloat(b); ok {
				return op.floatFunc(x, y)
			}
		}
	}
	return nil
}
