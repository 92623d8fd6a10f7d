// Package env provides a single entry point for embedding the engine:
// CreateEnv wires a state.LkState with the base libraries loaded and the
// external collaborators that main.go and repl/ otherwise reached into
// state/stdlib directly to get: stdout (print), process exit (os.exit),
// package.path, and file reading for ParseFile. Config.Stdin is accepted
// and defaulted but nothing reads from it.
package env

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	. "github.com/lollipopkit/luacore/api"
	"github.com/lollipopkit/luacore/compiler/ast"
	"github.com/lollipopkit/luacore/compiler/parser"
	"github.com/lollipopkit/luacore/state"
)

// Config collects the external collaborators the engine needs. Every
// field falls back to its os-backed default in CreateEnv when left zero.
type Config struct {
	LuaPath    string
	Stdin      io.Reader
	Stdout     io.Writer
	OsExit     func(int)
	FileExists func(string) bool
	LoadFile   func(string) ([]byte, error)
}

func (c *Config) setDefaults() {
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.OsExit == nil {
		c.OsExit = os.Exit
	}
	if c.FileExists == nil {
		c.FileExists = func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		}
	}
	if c.LoadFile == nil {
		c.LoadFile = ioutil.ReadFile
	}
}

// Env is a ready-to-run Lua state built from a Config.
type Env struct {
	cfg Config
	ls  LkState
}

// CreateEnv loads the base libraries into a fresh state and reroutes
// print, os.exit and package.path through cfg's collaborators.
func CreateEnv(cfg Config) *Env {
	cfg.setDefaults()

	e := &Env{cfg: cfg, ls: state.New()}
	e.ls.OpenLibs()
	e.wireCollaborators()
	return e
}

func (e *Env) wireCollaborators() {
	e.ExtendLib("_G", map[string]GoFunction{
		"print": func(ls LkState) int {
			n := ls.GetTop()
			for i := 1; i <= n; i++ {
				if i > 1 {
					io.WriteString(e.cfg.Stdout, "\t")
				}
				io.WriteString(e.cfg.Stdout, ls.ToString2(i))
			}
			io.WriteString(e.cfg.Stdout, "\n")
			return 0
		},
	})

	e.ExtendLib("os", map[string]GoFunction{
		"exit": func(ls LkState) int {
			code := 0
			switch {
			case ls.IsBoolean(1):
				if !ls.ToBoolean(1) {
					code = 1
				}
			case ls.GetTop() >= 1:
				code = int(ls.ToInteger(1))
			}
			e.cfg.OsExit(code)
			return 0
		},
	})

	if e.cfg.LuaPath != "" {
		e.ls.GetGlobal("package")
		e.ls.PushString(e.cfg.LuaPath)
		e.ls.SetField(-2, "path")
		e.ls.Pop(1)
	}
}

// LoadLib registers a stdlib table under a global name, mirroring the
// state.LkState.RequireF convention the base libraries use.
func (e *Env) LoadLib(name string, lib GoFunction) {
	e.ls.RequireF(name, lib, true)
	e.ls.Pop(1)
}

// ExtendLib adds functions to an already-loaded (or not-yet-loaded) global
// table without clobbering whatever else is already in it.
func (e *Env) ExtendLib(name string, fns map[string]GoFunction) {
	if e.ls.GetGlobal(name) == LUA_TNIL {
		e.ls.Pop(1)
		e.ls.NewTable()
		e.ls.SetGlobal(name)
		e.ls.GetGlobal(name)
	}
	for fname, fn := range fns {
		e.ls.PushGoFunction(fn)
		e.ls.SetField(-2, fname)
	}
	e.ls.Pop(1)
}

// Parse compiles source into its AST without running it.
func (e *Env) Parse(source, chunkName string) (block *ast.Block, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapPanic(chunkName, r)
		}
	}()
	block = parser.Parse(source, chunkName)
	return
}

// ParseFile reads path via the configured FileExists/LoadFile collaborators
// and parses it.
func (e *Env) ParseFile(path string) (*ast.Block, error) {
	if !e.cfg.FileExists(path) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	data, err := e.cfg.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read file %s: %w", path, err)
	}
	return e.Parse(string(data), path)
}

// Exec compiles and runs source, returning its top-level return values or
// a Go error wrapping whatever value the chunk raised or panicked with.
func (e *Env) Exec(source, chunkName string) (results []interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapPanic(chunkName, r)
		}
	}()

	if status := e.ls.LoadString(source, "stdin"); status != LUA_OK {
		return nil, fmt.Errorf("%s: failed to load chunk", chunkName)
	}
	e.ls.Call(0, -1)

	n := e.ls.GetTop()
	results = make([]interface{}, n)
	for i := 1; i <= n; i++ {
		results[i-1] = toGoValue(e.ls, i)
	}
	e.ls.Pop(n)
	return
}

func wrapPanic(chunkName string, r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%s: %w", chunkName, err)
	}
	return fmt.Errorf("%s: %v", chunkName, r)
}

func toGoValue(ls LkState, idx int) interface{} {
	switch {
	case ls.IsNil(idx):
		return nil
	case ls.IsBoolean(idx):
		return ls.ToBoolean(idx)
	case ls.IsInteger(idx):
		return ls.ToInteger(idx)
	case ls.IsNumber(idx):
		return ls.ToNumber(idx)
	case ls.IsString(idx):
		s, _ := ls.ToStringX(idx)
		return s
	default:
		return ls.ToPointer(idx)
	}
}
