package main

import (
	"fmt"
	"io"

	lua "github.com/yuin/gopher-lua"

	"pcecd/emu"
	"pcecd/hw/hwdefs"
)

// script runs Lua programs poking at the console bus. The following
// functions are exposed:
//
//	read(addr)          read a byte
//	peek(addr)          read a byte, without side effects
//	write(addr, val)    write a byte
//	irq_set(name)       raise a CD-ROM interrupt source
//	irq_clear(name)     lower a CD-ROM interrupt source
//	irq_pending()       true if the CD-ROM interrupt is pending on the CPU
//	step([n])           run n audio steps (default 1)
//	save_state()        return the console state, as a string
//	load_state(s)       restore a state returned by save_state
//	printf(fmt, ...)    formatted output (string.format syntax)
type script struct {
	L       *lua.LState
	console *emu.Console
	out     io.Writer
}

func newScript(console *emu.Console, out io.Writer) *script {
	s := &script{
		L:       lua.NewState(),
		console: console,
		out:     out,
	}
	for name, fn := range map[string]lua.LGFunction{
		"read":        s.read,
		"peek":        s.peek,
		"write":       s.write,
		"irq_set":     s.irqSet,
		"irq_clear":   s.irqClear,
		"irq_pending": s.irqPending,
		"step":        s.step,
		"save_state":  s.saveState,
		"load_state":  s.loadState,
		"printf":      s.printf,
	} {
		s.L.SetGlobal(name, s.L.NewFunction(fn))
	}
	return s
}

func (s *script) Close() {
	s.L.Close()
}

func (s *script) RunFile(path string) error {
	if err := s.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

func (s *script) RunString(src string) error {
	if err := s.L.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func checkAddr(L *lua.LState, n int) uint16 {
	addr := L.CheckInt(n)
	if addr < 0 || addr > 0xFFFF {
		L.ArgError(n, fmt.Sprintf("address out of range: %#x", addr))
	}
	return uint16(addr)
}

func checkIrq(L *lua.LState, n int) hwdefs.CdIrq {
	name := L.CheckString(n)
	irq, ok := hwdefs.CdIrqByName(name)
	if !ok {
		L.ArgError(n, fmt.Sprintf("unknown irq source %q", name))
	}
	return irq
}

func (s *script) read(L *lua.LState) int {
	L.Push(lua.LNumber(s.console.Read8(checkAddr(L, 1))))
	return 1
}

func (s *script) peek(L *lua.LState) int {
	L.Push(lua.LNumber(s.console.Peek8(checkAddr(L, 1))))
	return 1
}

func (s *script) write(L *lua.LState) int {
	addr := checkAddr(L, 1)
	val := L.CheckInt(2)
	if val < 0 || val > 0xFF {
		L.ArgError(2, fmt.Sprintf("value out of range: %#x", val))
	}
	s.console.Write8(addr, uint8(val))
	return 0
}

func (s *script) irqSet(L *lua.LState) int {
	s.console.SetIrqSource(checkIrq(L, 1))
	return 0
}

func (s *script) irqClear(L *lua.LState) int {
	s.console.ClearIrqSource(checkIrq(L, 1))
	return 0
}

func (s *script) irqPending(L *lua.LState) int {
	L.Push(lua.LBool(s.console.IrqPending()))
	return 1
}

func (s *script) step(L *lua.LState) int {
	n := L.OptInt(1, 1)
	if n < 0 {
		L.ArgError(1, "negative step count")
	}
	s.console.Step(n)
	return 0
}

func (s *script) saveState(L *lua.LState) int {
	L.Push(lua.LString(s.console.SaveState()))
	return 1
}

func (s *script) loadState(L *lua.LState) int {
	if err := s.console.LoadState([]byte(L.CheckString(1))); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (s *script) printf(L *lua.LState) int {
	format := L.GetField(L.GetGlobal("string"), "format")
	args := make([]lua.LValue, L.GetTop())
	for i := range args {
		args[i] = L.Get(i + 1)
	}
	if err := L.CallByParam(lua.P{Fn: format, NRet: 1, Protect: true}, args...); err != nil {
		L.RaiseError("printf: %v", err)
	}
	str := L.ToString(-1)
	L.Pop(1)
	fmt.Fprint(s.out, str)
	return 0
}
