package stdlib

import (
	"fmt"
	"strings"

	. "github.com/lollipopkit/luacore/api"
)

// Lua pattern matching, ported from lua-5.3.4/src/lstrlib.c. Lua
// patterns are not regular expressions: they are a small, greedy,
// backtracking matcher with character classes (%a, %d, %s, ...),
// captures, anchors and a handful of special items (%b, %f). This
// file implements that matcher directly rather than translating
// patterns into Go's RE2 syntax, since RE2 cannot express %b/%f and
// Lua's greedy backtracking semantics differ from RE2's.

const (
	capUnfinished = -1
	capPosition   = -2
	maxCaptures   = 32
	l_esc         = '%'
	specials      = "^$*+?.([%-"
)

type capInfo struct {
	start int
	len   int
}

type matchState struct {
	src     string
	pat     string
	level   int
	capture [maxCaptures]capInfo
	matchDepth int
}

const maxCCalls = 200

func classEnd(ms *matchState, p int) int {
	c := ms.pat[p]
	p++
	if c == l_esc {
		if p == len(ms.pat) {
			panic("malformed pattern (ends with '%')")
		}
		return p + 1
	}
	if c == '[' {
		if p < len(ms.pat) && ms.pat[p] == '^' {
			p++
		}
		for {
			if p == len(ms.pat) {
				panic("malformed pattern (missing ']')")
			}
			c = ms.pat[p]
			p++
			if c == l_esc && p < len(ms.pat) {
				p++
			} else if c == ']' {
				return p
			}
		}
	}
	return p
}

func matchClassChar(c byte, cl byte) bool {
	var res bool
	switch lower(cl) {
	case 'a':
		res = isAlpha(c)
	case 'd':
		res = isDigit(c)
	case 'l':
		res = isLower(c)
	case 's':
		res = isSpace(c)
	case 'u':
		res = isUpper(c)
	case 'w':
		res = isAlpha(c) || isDigit(c)
	case 'c':
		res = isCntrl(c)
	case 'p':
		res = isPunct(c)
	case 'x':
		res = isHex(c)
	case 'g':
		res = isPrint(c) && c != ' '
	default:
		return cl == c
	}
	if isUpper(cl) {
		return !res
	}
	return res
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isAlpha(c byte) bool { return isUpper(c) || isLower(c) }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
func isCntrl(c byte) bool { return c < 32 || c == 127 }
func isHex(c byte) bool {
	return isDigit(c) || (lower(c) >= 'a' && lower(c) <= 'f')
}
func isPunct(c byte) bool {
	return isPrint(c) && c != ' ' && !isAlpha(c) && !isDigit(c)
}
func isPrint(c byte) bool { return c >= 32 && c < 127 }

func matchClassInSet(c byte, ms *matchState, p, ec int) bool {
	sig := true
	pat := ms.pat
	if pat[p+1] == '^' {
		sig = false
		p++
	}
	p++
	for p < ec {
		if pat[p] == l_esc {
			p++
			if matchClassChar(c, pat[p]) {
				return sig
			}
		} else if p+2 < ec && pat[p+1] == '-' {
			if pat[p] <= c && c <= pat[p+2] {
				return sig
			}
			p += 2
		} else if pat[p] == c {
			return sig
		}
		p++
	}
	return !sig
}

func singleMatch(ms *matchState, s, p, ep int) bool {
	if s >= len(ms.src) {
		return false
	}
	c := ms.src[s]
	switch ms.pat[p] {
	case '.':
		return true
	case l_esc:
		return matchClassChar(c, ms.pat[p+1])
	case '[':
		return matchClassInSet(c, ms, p, ep-1)
	default:
		return ms.pat[p] == c
	}
}

func (ms *matchState) match(s, p int) int {
	ms.matchDepth++
	if ms.matchDepth > maxCCalls {
		panic("pattern too complex")
	}
	defer func() { ms.matchDepth-- }()

	for p != len(ms.pat) {
		switch ms.pat[p] {
		case '(':
			if p+1 < len(ms.pat) && ms.pat[p+1] == ')' {
				return ms.startCapture(s, p+2, capPosition)
			}
			return ms.startCapture(s, p+1, capUnfinished)
		case ')':
			return ms.endCapture(s, p+1)
		case '$':
			if p+1 == len(ms.pat) {
				if s == len(ms.src) {
					return s
				}
				return -1
			}
		case l_esc:
			if p+1 < len(ms.pat) {
				switch ms.pat[p+1] {
				case 'b':
					s = ms.matchBalance(s, p+2)
					if s == -1 {
						return -1
					}
					p += 4
					continue
				case 'f':
					p += 2
					if p == len(ms.pat) || ms.pat[p] != '[' {
						panic("missing '[' after '%f' in pattern")
					}
					ep := classEnd(ms, p)
					var previous byte = 0
					if s > 0 {
						previous = ms.src[s-1]
					}
					var cur byte = 0
					if s < len(ms.src) {
						cur = ms.src[s]
					}
					if !matchClassInSet(previous, ms, p, ep-1) && matchClassInSet(cur, ms, p, ep-1) {
						p = ep
						continue
					}
					return -1
				default:
					if isDigit(ms.pat[p+1]) {
						s = ms.matchCapture(s, int(ms.pat[p+1]-'0'))
						if s == -1 {
							return -1
						}
						p += 2
						continue
					}
				}
			}
		}

		ep := classEnd(ms, p)
		if ep < len(ms.pat) {
			switch ms.pat[ep] {
			case '?':
				if singleMatch(ms, s, p, ep) {
					if r := ms.match(s+1, ep+1); r != -1 {
						return r
					}
				}
				p = ep + 1
				continue
			case '+':
				if singleMatch(ms, s, p, ep) {
					return ms.maxExpand(s+1, p, ep)
				}
				return -1
			case '*':
				return ms.maxExpand(s, p, ep)
			case '-':
				return ms.minExpand(s, p, ep)
			}
		}
		if !singleMatch(ms, s, p, ep) {
			return -1
		}
		s++
		p = ep
	}
	return s
}

func (ms *matchState) maxExpand(s, p, ep int) int {
	i := 0
	for singleMatch(ms, s+i, p, ep) {
		i++
	}
	for i >= 0 {
		if r := ms.match(s+i, ep+1); r != -1 {
			return r
		}
		i--
	}
	return -1
}

func (ms *matchState) minExpand(s, p, ep int) int {
	for {
		if r := ms.match(s, ep+1); r != -1 {
			return r
		} else if singleMatch(ms, s, p, ep) {
			s++
		} else {
			return -1
		}
	}
}

func (ms *matchState) startCapture(s, p, what int) int {
	level := ms.level
	if level >= maxCaptures {
		panic("too many captures")
	}
	ms.capture[level].len = what
	ms.capture[level].start = s
	ms.level = level + 1
	r := ms.match(s, p)
	if r == -1 {
		ms.level--
	}
	return r
}

func (ms *matchState) endCapture(s, p int) int {
	l := -1
	for i := ms.level - 1; i >= 0; i-- {
		if ms.capture[i].len == capUnfinished {
			l = i
			break
		}
	}
	if l == -1 {
		panic("invalid pattern capture")
	}
	ms.capture[l].len = s - ms.capture[l].start
	r := ms.match(s, p)
	if r == -1 {
		ms.capture[l].len = capUnfinished
	}
	return r
}

func (ms *matchState) matchCapture(s, l int) int {
	l = ms.checkCapture(l)
	length := ms.capture[l].len
	if len(ms.src)-s >= length &&
		ms.src[ms.capture[l].start:ms.capture[l].start+length] == ms.src[s:s+length] {
		return s + length
	}
	return -1
}

func (ms *matchState) checkCapture(l int) int {
	l -= '1'
	if l < 0 || l >= ms.level || ms.capture[l].len == capUnfinished {
		panic(fmt.Sprintf("invalid capture index %%%d", l+1))
	}
	return l
}

func (ms *matchState) matchBalance(s, p int) int {
	if p+1 >= len(ms.pat) {
		panic("missing arguments to '%b'")
	}
	if s >= len(ms.src) || ms.src[s] != ms.pat[p] {
		return -1
	}
	b := ms.pat[p]
	e := ms.pat[p+1]
	cont := 1
	s++
	for s < len(ms.src) {
		if ms.src[s] == e {
			cont--
			if cont == 0 {
				return s + 1
			}
		} else if ms.src[s] == b {
			cont++
		}
		s++
	}
	return -1
}

func (ms *matchState) captureLen(i int) int {
	if ms.capture[i].len == capPosition {
		return -1
	}
	return ms.capture[i].len
}

func (ms *matchState) pushOneCapture(ls LkState, i, s, e int) {
	if i >= ms.level {
		if i == 0 {
			ls.PushString(ms.src[s:e])
		} else {
			panic(fmt.Sprintf("invalid capture index %%%d", i+1))
		}
		return
	}
	if ms.capture[i].len == capPosition {
		ls.PushInteger(int64(ms.capture[i].start + 1))
	} else {
		c := ms.capture[i]
		ls.PushString(ms.src[c.start : c.start+c.len])
	}
}

func (ms *matchState) pushCaptures(ls LkState, s, e int) int {
	nLevels := ms.level
	if nLevels == 0 && s != -1 {
		nLevels = 1
	}
	for i := 0; i < nLevels; i++ {
		ms.pushOneCapture(ls, i, s, e)
	}
	return nLevels
}

func posRelatPattern(pos int64, l int) int {
	if pos >= 0 {
		return int(pos)
	} else if -pos > int64(l) {
		return 0
	}
	return l + int(pos) + 1
}

// string.find (s, pattern [, init [, plain]])
// lua-5.3.4/src/lstrlib.c#str_find_aux()
func strFind(ls LkState) int { return strFindAux(ls, true) }

// string.match (s, pattern [, init])
// lua-5.3.4/src/lstrlib.c#str_find_aux()
func strMatch(ls LkState) int { return strFindAux(ls, false) }

func strFindAux(ls LkState, find bool) int {
	s := ls.CheckString(1)
	p := ls.CheckString(2)
	init := posRelatPattern(ls.OptInteger(3, 1), len(s))
	if init < 1 {
		init = 1
	} else if init > len(s)+1 {
		ls.PushNil()
		return 1
	}
	init--

	plain := find && ls.ToBoolean(4)
	if plain || (find && !strings.ContainsAny(p, specials)) {
		idx := strings.Index(s[init:], p)
		if idx < 0 {
			ls.PushNil()
			return 1
		}
		ls.PushInteger(int64(init + idx + 1))
		ls.PushInteger(int64(init + idx + len(p)))
		return 2
	}

	ms := &matchState{src: s, pat: p}
	anchor := len(p) > 0 && p[0] == '^'
	pp := 0
	if anchor {
		pp = 1
	}
	si := init
	for {
		ms.level = 0
		ms.matchDepth = 0
		if e := ms.match(si, pp); e != -1 {
			if find {
				ls.PushInteger(int64(si + 1))
				ls.PushInteger(int64(e))
				return 2 + ms.pushCaptures(ls, -1, -1)
			}
			return ms.pushCaptures(ls, si, e)
		}
		si++
		if si > len(s) || anchor {
			break
		}
	}
	ls.PushNil()
	return 1
}

// string.gmatch (s, pattern)
// lua-5.3.4/src/lstrlib.c#gmatch_aux()
func strGMatch(ls LkState) int {
	s := ls.CheckString(1)
	p := ls.CheckString(2)
	pos := 0
	ls.PushGoFunction(func(ls LkState) int {
		ms := &matchState{src: s, pat: p}
		for si := pos; si <= len(s); si++ {
			ms.level = 0
			ms.matchDepth = 0
			if e := ms.match(si, 0); e != -1 {
				if e == si {
					pos = e + 1
				} else {
					pos = e
				}
				return ms.pushCaptures(ls, si, e)
			}
		}
		return 0
	})
	return 1
}

// string.gsub (s, pattern, repl [, n])
// lua-5.3.4/src/lstrlib.c#str_gsub()
func strGSub(ls LkState) int {
	s := ls.CheckString(1)
	p := ls.CheckString(2)
	maxN := ls.OptInteger(4, int64(len(s)+1))

	anchor := len(p) > 0 && p[0] == '^'
	pp := 0
	if anchor {
		pp = 1
	}

	var out strings.Builder
	si := 0
	count := int64(0)
	ms := &matchState{src: s, pat: p}
	for count < maxN {
		ms.level = 0
		ms.matchDepth = 0
		e := ms.match(si, pp)
		if e != -1 {
			count++
			addReplacement(ls, ms, &out, si, e)
		}
		if e != -1 && e > si {
			si = e
		} else if si < len(s) {
			out.WriteByte(s[si])
			si++
		} else {
			break
		}
		if anchor {
			break
		}
	}
	out.WriteString(s[si:])
	ls.PushString(out.String())
	ls.PushInteger(count)
	return 2
}

func addReplacement(ls LkState, ms *matchState, out *strings.Builder, s, e int) {
	repIdx := 3
	switch ls.Type(repIdx) {
	case LUA_TNUMBER, LUA_TSTRING:
		repl, _ := ls.ToStringX(repIdx)
		for i := 0; i < len(repl); i++ {
			if repl[i] != l_esc {
				out.WriteByte(repl[i])
				continue
			}
			i++
			if i >= len(repl) {
				panic("invalid use of '%' in replacement string")
			}
			if !isDigit(repl[i]) {
				out.WriteByte(repl[i])
				continue
			}
			if repl[i] == '0' {
				out.WriteString(ms.src[s:e])
				continue
			}
			n := ms.pushOneCaptureValue(ls, int(repl[i]-'1'), s, e)
			out.WriteString(n)
		}
	case LUA_TTABLE:
		n := 1
		if ms.level > 0 {
			n = ms.level
		}
		ms.pushOneCapture(ls, 0, s, e)
		key, _ := ls.ToStringX(-1)
		ls.Pop(1)
		_ = n
		ls.GetField(repIdx, key)
		writeSubResult(ls, out, s, e, ms)
	case LUA_TFUNCTION:
		nRes := ms.pushCaptures(ls, s, e)
		ls.PushValue(repIdx)
		ls.Insert(-nRes - 1)
		ls.Call(nRes, 1)
		writeSubResult(ls, out, s, e, ms)
	default:
		panic("bad argument #3 to 'gsub' (string/function/table expected)")
	}
}

func writeSubResult(ls LkState, out *strings.Builder, s, e int, ms *matchState) {
	if ls.IsNil(-1) || (ls.IsBoolean(-1) && !ls.ToBoolean(-1)) {
		out.WriteString(ms.src[s:e])
	} else if ls.IsString(-1) || ls.IsNumber(-1) {
		str, _ := ls.ToStringX(-1)
		out.WriteString(str)
	} else {
		panic("invalid replacement value (a " + ls.TypeName(ls.Type(-1)) + ")")
	}
	ls.Pop(1)
}

// pushOneCaptureValue returns a capture's text without touching the Lua stack,
// for use inside %-escape expansion of a gsub replacement string.
func (ms *matchState) pushOneCaptureValue(ls LkState, i, s, e int) string {
	if i >= ms.level {
		if i == 0 {
			return ms.src[s:e]
		}
		panic(fmt.Sprintf("invalid capture index %%%d", i+1))
	}
	if ms.capture[i].len == capPosition {
		return fmt.Sprintf("%d", ms.capture[i].start+1)
	}
	c := ms.capture[i]
	return ms.src[c.start : c.start+c.len]
}
