package state

import (
	"fmt"

	"github.com/lollipopkit/luacore/utils"
)

// [-0, +1, e]
// http://www.lua.org/manual/5.3/manual.html#lua_len
func (self *lkState) Len(idx int) {
	val := self.stack.get(idx)

	if s, ok := val.(string); ok {
		self.stack.push(int64(len(s)))
	} else if result, ok := callMetamethod(val, val, "__len", self); ok {
		self.stack.push(result)
	} else if t := toTable(val); t != nil {
		self.stack.push(int64(t.len()))
	} else {
		panic(fmt.Sprintf("attempt to get length of %#v (a %T value)", val, val))
	}
}

// [-1, +(2|0), e]
// http://www.lua.org/manual/5.3/manual.html#lua_next
func (self *lkState) Next(idx int) bool {
	val := self.stack.get(idx)
	if t := toTable(val); t != nil {
		key := self.stack.pop()
		if nextKey := t.nextKey(key); nextKey != nil {
			self.stack.push(nextKey)
			self.stack.push(t.get(nextKey))
			return true
		}
		return false
	}
	panic(fmt.Sprintf("table expected, got %T", val))
}

// [-0, +1, –]
// http://www.lua.org/manual/5.3/manual.html#lua_rawlen
func (self *lkState) RawLen(idx int) int64 {
	val := self.stack.get(idx)
	if s, ok := val.(string); ok {
		return int64(len(s))
	}
	if t := toTable(val); t != nil {
		return int64(t.len())
	}
	panic(fmt.Sprintf("table or string expected, got %T", val))
}

// [-0, +0, –]
// http://www.lua.org/manual/5.3/manual.html#lua_rawequal
func (self *lkState) RawEqual(idx1, idx2 int) bool {
	a := self.stack.get(idx1)
	b := self.stack.get(idx2)
	if at, ok := a.(*Table); ok {
		bt, ok := b.(*Table)
		return ok && at == bt
	}
	return self._eq(a, b)
}

// [-1, +0, v]
// http://www.lua.org/manual/5.3/manual.html#lua_error
func (self *lkState) Error() int {
	err := self.stack.pop()
	panic(err)
}

// [-0, +1, –]
// http://www.lua.org/manual/5.3/manual.html#lua_stringtonumber
func (self *lkState) StringToNumber(s string) bool {
	if n, ok := utils.ParseInteger(s); ok {
		self.PushInteger(n)
		return true
	}
	if n, ok := utils.ParseFloat(s); ok {
		self.PushNumber(n)
		return true
	}
	return false
}
