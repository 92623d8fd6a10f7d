package stdlib

import (
	"strconv"
	"strings"

	. "github.com/lollipopkit/luacore/api"
	"github.com/lollipopkit/luacore/consts"
)

var baseFuncs = map[string]GoFunction{
	"print":          basePrint,
	"assert":         baseAssert,
	"error":          baseError,
	"ipairs":         baseIPairs,
	"pairs":          basePairs,
	"next":           baseNext,
	"load":           baseLoad,
	"loadfile":       baseLoadFile,
	"dofile":         baseDoFile,
	"pcall":          basePCall,
	"xpcall":         baseXPCall,
	"rawget":         baseRawGet,
	"rawset":         baseRawSet,
	"rawequal":       baseRawEqual,
	"rawlen":         baseRawLen,
	"select":         baseSelect,
	"setmetatable":   baseSetMetatable,
	"getmetatable":   baseGetMetatable,
	"collectgarbage": baseCollectGarbage,
	"type":           baseType,
	"tostring":       baseToString,
	"tonumber":       baseToNumber,
}

// lua-5.3.4/src/lbaselib.c#luaopen_base()
func OpenBaseLib(ls LkState) int {
	/* open lib into global table */
	ls.PushGlobalTable()
	ls.SetFuncs(baseFuncs, 0)
	/* set global _G */
	ls.PushValue(-1)
	ls.SetField(-2, "_G")
	/* set global _VERSION */
	ls.PushString(consts.VERSION)
	ls.SetField(-2, "_VERSION")
	return 1
}

// print (···)
// http://www.lua.org/manual/5.3/manual.html#pdf-print
// lua-5.3.4/src/lbaselib.c#luaB_print()
func basePrint(ls LkState) int {
	n := ls.GetTop() /* number of arguments */
	for i := 1; i <= n; i++ {
		if i > 1 {
			print("\t")
		}
		print(ls.ToString2(i))
		ls.Pop(1) /* pop result */
	}
	println()
	return 0
}

// assert (v [, message])
// http://www.lua.org/manual/5.3/manual.html#pdf-assert
// lua-5.3.4/src/lbaselib.c#luaB_assert()
func baseAssert(ls LkState) int {
	if ls.ToBoolean(1) { /* condition is true? */
		return ls.GetTop() /* return all arguments */
	} else { /* error */
		ls.CheckAny(1)                     /* there must be a condition */
		ls.Remove(1)                       /* remove it */
		ls.PushString("assertion failed!") /* default message */
		ls.SetTop(1)                       /* leave only message (default if no other one) */
		return baseError(ls)               /* call 'error' */
	}
}

// error (message [, level])
// http://www.lua.org/manual/5.3/manual.html#pdf-error
// lua-5.3.4/src/lbaselib.c#luaB_error()
//
// the C implementation prepends "chunkname:line:" for string messages
// when level > 0 (luaL_where); that needs debug-level call info this
// engine doesn't track (the debug library is out of scope), so the
// message is raised as-is regardless of level.
func baseError(ls LkState) int {
	ls.SetTop(1)
	return ls.Error()
}

// ipairs (t)
// http://www.lua.org/manual/5.3/manual.html#pdf-ipairs
// lua-5.3.4/src/lbaselib.c#luaB_ipairs()
func baseIPairs(ls LkState) int {
	ls.CheckAny(1)
	ls.PushGoFunction(iPairsAux) /* iteration function */
	ls.PushValue(1)              /* state */
	ls.PushInteger(0)            /* initial value */
	return 3
}

func iPairsAux(ls LkState) int {
	i := ls.CheckInteger(2) + 1
	ls.PushInteger(i)
	if ls.GetI(1, i) == LUA_TNIL {
		return 1
	} else {
		return 2
	}
}

// pairs (t)
// http://www.lua.org/manual/5.3/manual.html#pdf-pairs
// lua-5.3.4/src/lbaselib.c#luaB_pairs()
func basePairs(ls LkState) int {
	ls.CheckAny(1)
	if ls.GetMetafield(1, "__pairs") == LUA_TNIL { /* no metamethod? */
		ls.PushGoFunction(baseNext) /* will return generator, */
		ls.PushValue(1)             /* state, */
		ls.PushNil()
	} else {
		ls.PushValue(1) /* argument 'self' to metamethod */
		ls.Call(1, 3)   /* get 3 values from metamethod */
	}
	return 3
}

// next (table [, index])
// http://www.lua.org/manual/5.3/manual.html#pdf-next
// lua-5.3.4/src/lbaselib.c#luaB_next()
func baseNext(ls LkState) int {
	ls.CheckType(1, LUA_TTABLE)
	ls.SetTop(2) /* create a 2nd argument if there isn't one */
	if ls.Next(1) {
		return 2
	} else {
		ls.PushNil()
		return 1
	}
}

// load (chunk [, chunkname [, mode [, env]]])
// http://www.lua.org/manual/5.3/manual.html#pdf-load
// lua-5.3.4/src/lbaselib.c#luaB_load()
func baseLoad(ls LkState) int {
	var status LkStatus
	chunk, isStr := ls.ToStringX(1)
	mode := ls.OptString(3, "bt")
	env := 0 /* 'env' index or 0 if no 'env' */
	if !ls.IsNone(4) {
		env = 4
	}
	if isStr { /* loading a string? */
		chunkname := ls.OptString(2, chunk)
		status = ls.Load([]byte(chunk), chunkname, mode)
	} else { /* loading from a reader function */
		panic("load: loading from a reader function is not supported")
	}
	return loadAux(ls, status, env)
}

// lua-5.3.4/src/lbaselib.c#load_aux()
func loadAux(ls LkState, status LkStatus, envIdx int) int {
	if status == LUA_OK {
		if envIdx != 0 { /* 'env' parameter? */
			panic("load: custom 'env' is not supported")
		}
		return 1
	} else { /* error (message is on top of the stack) */
		ls.PushNil()
		ls.Insert(-2) /* put before error message */
		return 2      /* return nil plus error message */
	}
}

// loadfile ([filename [, mode [, env]]])
// http://www.lua.org/manual/5.3/manual.html#pdf-loadfile
// lua-5.3.4/src/lbaselib.c#luaB_loadfile()
func baseLoadFile(ls LkState) int {
	fname := ls.OptString(1, "")
	mode := ls.OptString(2, "bt")
	env := 0 /* 'env' index or 0 if no 'env' */
	if !ls.IsNone(3) {
		env = 3
	}
	status := ls.LoadFileX(fname, mode)
	return loadAux(ls, status, env)
}

// dofile ([filename])
// http://www.lua.org/manual/5.3/manual.html#pdf-dofile
// lua-5.3.4/src/lbaselib.c#luaB_dofile()
func baseDoFile(ls LkState) int {
	fname := ls.OptString(1, "")
	ls.SetTop(1)
	if ls.LoadFile(fname) != LUA_OK {
		return ls.Error()
	}
	ls.Call(0, LUA_MULTRET)
	return ls.GetTop() - 1
}

// pcall (f [, arg1, ···])
// http://www.lua.org/manual/5.3/manual.html#pdf-pcall
// lua-5.3.4/src/lbaselib.c#luaB_pcall()
func basePCall(ls LkState) int {
	nArgs := ls.GetTop() - 1
	status := ls.PCall(nArgs, -1, 0)
	ls.PushBoolean(status == LUA_OK)
	ls.Insert(1)
	return ls.GetTop()
}

// xpcall (f, msgh [, arg1, ···])
// http://www.lua.org/manual/5.3/manual.html#pdf-xpcall
// lua-5.3.4/src/lbaselib.c#luaB_xpcall()
func baseXPCall(ls LkState) int {
	nArgs := ls.GetTop() - 2
	ls.CheckType(2, LUA_TFUNCTION) /* check error function */
	ls.PushValue(1)                /* exchange function and error handler */
	ls.Copy(2, 1)
	ls.Replace(2)
	status := ls.PCall(nArgs, -1, 1)
	ls.PushBoolean(status == LUA_OK)
	ls.Replace(1)
	return ls.GetTop()
}

// rawget (table, index)
// http://www.lua.org/manual/5.3/manual.html#pdf-rawget
// lua-5.3.4/src/lbaselib.c#luaB_rawget()
func baseRawGet(ls LkState) int {
	ls.CheckType(1, LUA_TTABLE)
	ls.CheckAny(2)
	ls.SetTop(2)
	ls.RawGet(1)
	return 1
}

// rawset (table, index, value)
// http://www.lua.org/manual/5.3/manual.html#pdf-rawset
// lua-5.3.4/src/lbaselib.c#luaB_rawset()
func baseRawSet(ls LkState) int {
	ls.CheckType(1, LUA_TTABLE)
	ls.CheckAny(2)
	ls.CheckAny(3)
	ls.SetTop(3)
	ls.RawSet(1)
	return 1
}

// rawequal (v1, v2)
// http://www.lua.org/manual/5.3/manual.html#pdf-rawequal
// lua-5.3.4/src/lbaselib.c#luaB_rawequal()
func baseRawEqual(ls LkState) int {
	ls.CheckAny(1)
	ls.CheckAny(2)
	ls.PushBoolean(ls.RawEqual(1, 2))
	return 1
}

// rawlen (v)
// http://www.lua.org/manual/5.3/manual.html#pdf-rawlen
// lua-5.3.4/src/lbaselib.c#luaB_rawlen()
func baseRawLen(ls LkState) int {
	t := ls.Type(1)
	ls.ArgCheck(t == LUA_TTABLE || t == LUA_TSTRING, 1, "table or string expected")
	ls.PushInteger(ls.RawLen(1))
	return 1
}

// select (n, ···)
// http://www.lua.org/manual/5.3/manual.html#pdf-select
// lua-5.3.4/src/lbaselib.c#luaB_select()
func baseSelect(ls LkState) int {
	n := ls.GetTop()
	if ls.Type(1) == LUA_TSTRING && ls.CheckString(1) == "#" {
		ls.PushInteger(int64(n - 1))
		return 1
	}
	i := ls.CheckInteger(1)
	if i < 0 {
		i = int64(n) + i
	}
	ls.ArgCheck(1 <= i, 1, "index out of range")
	if int(i) > n-1 {
		return 0
	}
	return n - int(i)
}

// setmetatable (table, metatable)
// http://www.lua.org/manual/5.3/manual.html#pdf-setmetatable
// lua-5.3.4/src/lbaselib.c#luaB_setmetatable()
func baseSetMetatable(ls LkState) int {
	t := ls.Type(2)
	ls.CheckType(1, LUA_TTABLE)
	ls.ArgCheck(t == LUA_TNIL || t == LUA_TTABLE, 2, "nil or table expected")
	if ls.GetMetafield(1, "__metatable") != LUA_TNIL {
		panic("cannot change a protected metatable")
	}
	ls.SetTop(2)
	ls.SetMetatable(1)
	return 1
}

// getmetatable (object)
// http://www.lua.org/manual/5.3/manual.html#pdf-getmetatable
// lua-5.3.4/src/lbaselib.c#luaB_getmetatable()
func baseGetMetatable(ls LkState) int {
	if !ls.GetMetatable(1) {
		ls.PushNil()
		return 1
	}
	if ls.GetMetafield(1, "__metatable") != LUA_TNIL {
		return 1 /* the __metatable field already pushed by GetMetafield */
	}
	return 1
}

// collectgarbage ([opt [, arg]])
// http://www.lua.org/manual/5.3/manual.html#pdf-collectgarbage
//
// this engine has no separate GC to control; accepted for source
// compatibility and always reports success.
func baseCollectGarbage(ls LkState) int {
	opt := ls.OptString(1, "collect")
	switch opt {
	case "count":
		ls.PushNumber(0)
		ls.PushNumber(0)
		return 2
	default:
		ls.PushInteger(0)
		return 1
	}
}

// type (v)
// http://www.lua.org/manual/5.3/manual.html#pdf-type
// lua-5.3.4/src/lbaselib.c#luaB_type()
func baseType(ls LkState) int {
	t := ls.Type(1)
	ls.ArgCheck(t != LUA_TNONE, 1, "value expected")
	ls.PushString(ls.TypeName(t))
	return 1
}

// tostring (v)
// http://www.lua.org/manual/5.3/manual.html#pdf-tostring
// lua-5.3.4/src/lbaselib.c#luaB_tostring()
func baseToString(ls LkState) int {
	ls.CheckAny(1)
	ls.ToString2(1)
	return 1
}

// tonumber (e [, base])
// http://www.lua.org/manual/5.3/manual.html#pdf-tonumber
// lua-5.3.4/src/lbaselib.c#luaB_tonumber()
func baseToNumber(ls LkState) int {
	if ls.IsNoneOrNil(2) { /* standard conversion? */
		ls.CheckAny(1)
		if ls.Type(1) == LUA_TNUMBER { /* already a number? */
			ls.SetTop(1) /* yes; return it */
			return 1
		} else {
			if s, ok := ls.ToStringX(1); ok {
				if ls.StringToNumber(s) {
					return 1 /* successful conversion to number */
				} /* else not a number */
			}
		}
	} else {
		ls.CheckType(1, LUA_TSTRING) /* no numbers as strings */
		s := strings.TrimSpace(ls.ToString(1))
		base := int(ls.CheckInteger(2))
		ls.ArgCheck(2 <= base && base <= 36, 2, "base out of range")
		if n, err := strconv.ParseInt(s, base, 64); err == nil {
			ls.PushInteger(n)
			return 1
		} /* else not a number */
	} /* else not a number */
	ls.PushNil() /* not a number */
	return 1
}
