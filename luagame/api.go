package luagame

import (
	"context"
	"time"

	"spryg/console"
	"spryg/hal"

	lua "github.com/yuin/gopher-lua"
)

// newModule builds the spryg table:
//
//	button(id) -> bool          led(side, on)
//	tone(hz) -> tone            play(tone, ms)
//	clear([color])              text(str, [color], [pitch])
//	flip()                      show(str, [color])
//	pixel(x, y, color)          rect(x, y, w, h, color)
//	rgb(r, g, b) -> color       ticks() -> ms
//	ticks_diff(a, b) -> ms      sleep(ms)
//	log(str)
//
// plus the BLACK, WHITE and RED colors.
func newModule(ctx context.Context, L *lua.LState, c *console.Console) *lua.LTable {
	m := &api{ctx: ctx, c: c}
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"button":     m.button,
		"led":        m.led,
		"tone":       m.tone,
		"play":       m.play,
		"clear":      m.clear,
		"text":       m.text,
		"flip":       m.flip,
		"show":       m.show,
		"pixel":      m.pixel,
		"rect":       m.rect,
		"rgb":        m.rgb,
		"ticks":      m.ticks,
		"ticks_diff": m.ticksDiff,
		"sleep":      m.sleep,
		"log":        m.log,
	})
	L.SetField(mod, "BLACK", lua.LNumber(console.Black))
	L.SetField(mod, "WHITE", lua.LNumber(console.White))
	L.SetField(mod, "RED", lua.LNumber(console.Red))
	return mod
}

type api struct {
	ctx context.Context
	c   *console.Console
}

func optColor(L *lua.LState, n int, d console.Color) console.Color {
	return console.Color(uint16(L.OptInt(n, int(d))))
}

func (a *api) button(L *lua.LState) int {
	b, err := console.ParseButton(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	pressed, err := a.c.Peripherals.Pressed(b)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LBool(pressed))
	return 1
}

func (a *api) led(L *lua.LState) int {
	side, err := console.ParseSide(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	if err := a.c.Peripherals.SetIndicator(side, L.CheckBool(2)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (a *api) tone(L *lua.LState) int {
	t, err := a.c.Audio.SynthesizeTone(L.CheckInt(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	ud := L.NewUserData()
	ud.Value = t
	L.Push(ud)
	return 1
}

func (a *api) play(L *lua.LState) int {
	t, ok := L.CheckUserData(1).Value.(console.ToneBuffer)
	if !ok {
		L.ArgError(1, "tone expected")
		return 0
	}
	d := time.Duration(L.CheckInt(2)) * time.Millisecond
	if err := a.c.Audio.PlayForDuration(a.ctx, t, d); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (a *api) clear(L *lua.LState) int {
	a.c.Display.Clear(optColor(L, 1, console.Black))
	return 0
}

func (a *api) text(L *lua.LState) int {
	a.c.Display.DrawText(L.CheckString(1), optColor(L, 2, console.White), L.OptInt(3, console.DefaultLineHeight))
	return 0
}

func (a *api) flip(L *lua.LState) int {
	if err := a.c.Display.Flip(); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (a *api) show(L *lua.LState) int {
	if err := a.c.Display.ShowText(L.CheckString(1), optColor(L, 2, console.White)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (a *api) pixel(L *lua.LState) int {
	a.c.Display.SetPixel565(L.CheckInt(1), L.CheckInt(2), optColor(L, 3, console.White))
	return 0
}

func (a *api) rect(L *lua.LState) int {
	a.c.Display.FillRect(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), optColor(L, 5, console.White))
	return 0
}

func (a *api) rgb(L *lua.LState) int {
	r, g, b := L.CheckInt(1), L.CheckInt(2), L.CheckInt(3)
	L.Push(lua.LNumber(console.RGB(uint8(r), uint8(g), uint8(b))))
	return 1
}

func (a *api) ticks(L *lua.LState) int {
	L.Push(lua.LNumber(a.c.Ticks()))
	return 1
}

func (a *api) ticksDiff(L *lua.LState) int {
	end, start := uint32(L.CheckInt64(1)), uint32(L.CheckInt64(2))
	L.Push(lua.LNumber(hal.TicksDiff(end, start)))
	return 1
}

func (a *api) sleep(L *lua.LState) int {
	d := time.Duration(L.CheckInt(1)) * time.Millisecond
	if err := a.c.Sleep(a.ctx, d); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (a *api) log(L *lua.LState) int {
	a.c.Logf("game: %s", L.CheckString(1))
	return 0
}
