// Package luagame loads games written in Lua from the console's storage card.
//
// A script must define a global function run(spryg). The spryg table it
// receives exposes the console (see api.go); call its functions with a dot,
// e.g. spryg.button("W").
package luagame

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"spryg/console"
	"spryg/supervisor"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// DefaultScript is the file loaded when Loader.Path is empty.
const DefaultScript = "game.lua"

// Loader reads and compiles a script from storage.
type Loader struct {
	Path string
}

func (l Loader) path() string {
	if l.Path == "" {
		return DefaultScript
	}
	return l.Path
}

// Load implements supervisor.Loader. A missing card or script reports
// supervisor.ErrGameNotFound; a script that does not parse reports a
// *supervisor.RuntimeFailure.
func (l Loader) Load(ctx context.Context, c *console.Console) (supervisor.Game, error) {
	name := l.path()
	st, ok := c.Storage()
	if !ok {
		return nil, fmt.Errorf("%w: no storage for %s", supervisor.ErrGameNotFound, name)
	}
	src, err := st.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", supervisor.ErrGameNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("luagame: read %s: %w", name, err)
	}
	s, err := Compile(path.Base(name), src)
	if err != nil {
		return nil, err
	}
	c.Logf("luagame: loaded %s (%d bytes)", name, len(src))
	return s.Run, nil
}

// Script is a compiled game.
type Script struct {
	name  string
	proto *lua.FunctionProto
}

// Compile parses src. The script is not executed.
func Compile(name string, src []byte) (*Script, error) {
	chunk, err := parse.Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, &supervisor.RuntimeFailure{Type: "SyntaxError", Description: err.Error(), Err: err}
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, &supervisor.RuntimeFailure{Type: "SyntaxError", Description: err.Error(), Err: err}
	}
	return &Script{name: name, proto: proto}, nil
}

// Run executes the script's top level in a fresh VM and then calls run(spryg).
// The VM stops when ctx is done and Run returns ctx.Err().
func (s *Script) Run(ctx context.Context, c *console.Console) error {
	L := newState()
	defer L.Close()
	L.SetContext(ctx)

	mod := newModule(ctx, L, c)
	L.SetGlobal("spryg", mod)

	L.Push(L.NewFunctionFromProto(s.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return failure(ctx, err)
	}

	fn, ok := L.GetGlobal("run").(*lua.LFunction)
	if !ok {
		return &supervisor.RuntimeFailure{
			Type:        "RuntimeError",
			Description: s.name + ": no run(spryg) function",
		}
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, mod); err != nil {
		return failure(ctx, err)
	}
	return ctx.Err()
}

// Libraries a game may use. os, io, package and debug stay closed so a script
// cannot leave the console except by returning from run.
var gameLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
	{lua.CoroutineLibName, lua.OpenCoroutine},
}

// Base functions that reach the host filesystem or module loader.
var closedGlobals = []string{"dofile", "loadfile", "require", "module"}

func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range gameLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range closedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func failure(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return err
	}
	f := &supervisor.RuntimeFailure{
		Type:        errorType(apiErr.Type),
		Description: apiErr.Object.String(),
		Stack:       []byte(apiErr.StackTrace),
		Err:         err,
	}
	if apiErr.Cause != nil {
		f.Err = apiErr.Cause
	}
	return f
}

func errorType(t lua.ApiErrorType) string {
	switch t {
	case lua.ApiErrorSyntax:
		return "SyntaxError"
	case lua.ApiErrorFile:
		return "FileError"
	case lua.ApiErrorPanic:
		return "GoPanic"
	default:
		return "RuntimeError"
	}
}
