package stdlib

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
	. "github.com/lollipopkit/luacore/api"
)

// re is an auxiliary library exposing Go's RE2 regexp engine to
// scripts that need it, alongside the Lua pattern matching already
// wired into the string library. Compiled expressions are cached
// since scripts tend to reuse the same pattern across many calls.
var (
	reCacher, _ = lru.New[string, *regexp.Regexp](64)
	reLib       = map[string]GoFunction{
		"have": reFound,
		"find": reFind,
	}
)

func OpenReLib(ls LkState) int {
	ls.NewLib(reLib)
	return 1
}

func getExp(pattern string) *regexp.Regexp {
	if exp, ok := reCacher.Get(pattern); ok {
		return exp
	}
	exp := regexp.MustCompile(pattern)
	reCacher.Add(pattern, exp)
	return exp
}

func reFound(ls LkState) int {
	pattern := ls.CheckString(1)
	text := ls.CheckString(2)
	ls.PushBoolean(getExp(pattern).MatchString(text))
	return 1
}

func reFind(ls LkState) int {
	pattern := ls.CheckString(1)
	text := ls.CheckString(2)
	matches := getExp(pattern).FindStringSubmatch(text)
	ms := make([]any, len(matches))
	for idx := 0; idx < len(matches); idx++ {
		ms[idx] = matches[idx]
	}
	pushList(&ls, ms)
	return 1
}
