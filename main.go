package main

import (
	"flag"
	"io/ioutil"

	"github.com/lollipopkit/luacore/env"
	"github.com/lollipopkit/luacore/repl"
	"github.com/lollipopkit/luacore/term"
)

func main() {
	astFlag := flag.Bool("ast", false, "dump the parsed AST of the given file as JSON instead of running it")
	flag.Parse()

	file := flag.Arg(0)
	if file == "" {
		repl.Repl()
		return
	}

	if *astFlag {
		WriteAst(file)
		return
	}

	data, err := ioutil.ReadFile(file)
	if err != nil {
		term.Error("can't read file: " + err.Error())
	}

	e := env.CreateEnv(env.Config{})
	if _, err := e.Exec(string(data), file); err != nil {
		term.Error(err.Error())
	}
}
