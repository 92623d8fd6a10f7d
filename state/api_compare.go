package state

// [-0, +0, e]
// http://www.lua.org/manual/5.3/manual.html#lua_compare
func (self *lkState) Compare(idx1, idx2 int, op CompareOp) bool {
	if !self.stack.isValid(idx1) || !self.stack.isValid(idx2) {
		return false
	}

	a := self.stack.get(idx1)
	b := self.stack.get(idx2)
	switch op {
	case LUA_OPEQ:
		return self._eq(a, b)
	case LUA_OPLT:
		return self._lt(a, b)
	case LUA_OPLE:
		return self._le(a, b)
	default:
		panic("invalid compare op!")
	}
}

func (self *lkState) _eq(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		default:
			return false
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return x == float64(y)
		case float64:
			return x == y
		default:
			return false
		}
	case *Table:
		y, ok := b.(*Table)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		if result, ok := callMetamethod(a, b, "__eq", self); ok {
			return convertToBoolean(result)
		}
		return false
	default:
		return a == b
	}
}

func (self *lkState) _lt(a, b any) bool {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as < bs
		}
	}
	if af, ok := convertNumberOnly(a); ok {
		if bf, ok := convertNumberOnly(b); ok {
			return af < bf
		}
	}
	if result, ok := callMetamethod(a, b, "__lt", self); ok {
		return convertToBoolean(result)
	}
	panic("attempt to compare two incompatible values")
}

func (self *lkState) _le(a, b any) bool {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as <= bs
		}
	}
	if af, ok := convertNumberOnly(a); ok {
		if bf, ok := convertNumberOnly(b); ok {
			return af <= bf
		}
	}
	if result, ok := callMetamethod(a, b, "__le", self); ok {
		return convertToBoolean(result)
	}
	if result, ok := callMetamethod(b, a, "__lt", self); ok {
		return !convertToBoolean(result)
	}
	panic("attempt to compare two incompatible values")
}

// convertNumberOnly is like convertToFloat but never coerces strings,
// matching real Lua's comparison rules (relational ops don't do the
// string<->number coercion that arithmetic does).
func convertNumberOnly(val any) (float64, bool) {
	switch x := val.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
