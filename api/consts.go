package api

import (
	"math/bits"
)

const LUA_MINSTACK = 20
const LUAI_MAXSTACK = 1000000
const LUA_REGISTRYINDEX = -LUAI_MAXSTACK - 1000
const LUA_RIDX_MAINTHREAD int64 = 1
const LUA_RIDX_GLOBALS int64 = 2
const LUA_MULTRET = -1

const (
	offset        = bits.UintSize - 1
	LUA_MAXINTEGER = 1<<offset - 1
	LUA_MININTEGER = -1 << offset
)

/* basic types */
type LkType = int

const (
	LUA_TNONE LkType = iota - 1 // -1
	LUA_TNIL
	LUA_TBOOLEAN
	LUA_TLIGHTUSERDATA
	LUA_TNUMBER
	LUA_TSTRING
	LUA_TTABLE
	LUA_TFUNCTION
	LUA_TUSERDATA
	LUA_TTHREAD
)

/* arithmetic functions */
type ArithOp = int

const (
	LUA_OPADD  ArithOp = iota // +
	LUA_OPSUB                 // -
	LUA_OPMUL                 // *
	LUA_OPMOD                 // %
	LUA_OPPOW                 // ^
	LUA_OPDIV                 // /
	LUA_OPIDIV                // //
	LUA_OPBAND                // &
	LUA_OPBOR                 // |
	LUA_OPBXOR                // ~
	LUA_OPSHL                 // <<
	LUA_OPSHR                 // >>
	LUA_OPUNM                 // -
	LUA_OPBNOT                // ~
)

/* comparison functions */
type CompareOp = int

const (
	LUA_OPEQ CompareOp = iota // ==
	LUA_OPLT                  // <
	LUA_OPLE                  // <=
)

/* thread status */
type LkStatus int

const (
	LUA_OK LkStatus = iota
	LUA_YIELD
	LUA_ERRRUN
	LUA_ERRSYNTAX
	LUA_ERRMEM
	LUA_ERRGCMM
	LUA_ERRERR
	LUA_ERRFILE
)
