package hwio

import (
	"fmt"
	"slices"
	"sort"

	"pcecd/emu/log"
)

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

// A Table dispatches accesses to the devices and registers mapped into it.
type Table struct {
	Name string

	// Unmapped, if set, receives the accesses that hit no mapping.
	// Otherwise they read as 0 and writes are dropped.
	Unmapped BankIO8

	ranges []mapping // sorted by address, non-overlapping
}

type mapping struct {
	begin, end uint16 // inclusive
	io         BankIO8
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	t.Reset()
	return t
}

func (t *Table) Reset() {
	t.ranges = nil
}

// Map a register bank (that is, a structure containing mulitple Reg8/Device
// fields). For this function to work, registers must have a struct tag
// "hwio", containing the following fields:
//
//	offset=0x12     Byte-offset within the register bank at which this
//	                register is mapped. There is no default value: if this
//	                option is missing, the register is assumed not to be
//	                part of the bank, and is ignored by this call.
//
//	bank=NN         Ordinal bank number (if not specified, default to zero).
//	                This option allows for a structure to expose multiple
//	                banks, as regs can be grouped by bank by specified the
//	                bank number.
func (t *Table) MapBank(addr uint16, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Reg8:
			t.MapReg8(addr+reg.offset, r)
		case *Device:
			t.MapDevice(addr+reg.offset, r)
		default:
			panic(fmt.Errorf("invalid reg type: %T", r))
		}
	}
}

func (t *Table) MapReg8(addr uint16, io *Reg8) {
	t.mapBus8(addr, 1, io)
}

func (t *Table) MapDevice(addr uint16, io *Device) {
	t.mapBus8(addr, uint16(io.Size), io)
}

func (t *Table) mapBus8(addr, size uint16, io BankIO8) {
	if size == 0 {
		panic(fmt.Errorf("%s: zero-sized mapping at %04x", t.Name, addr))
	}
	end := addr + size - 1
	if end < addr {
		panic(fmt.Errorf("%s: mapping at %04x overflows address space", t.Name, addr))
	}

	idx := sort.Search(len(t.ranges), func(i int) bool { return t.ranges[i].end >= addr })
	if idx < len(t.ranges) && t.ranges[idx].begin <= end {
		panic(fmt.Errorf("%s: mapping [%04x-%04x] overlaps [%04x-%04x]",
			t.Name, addr, end, t.ranges[idx].begin, t.ranges[idx].end))
	}

	log.ModHwIo.DebugZ("map").
		String("bus", t.Name).
		Hex16("begin", addr).
		Hex16("end", end).
		End()

	t.ranges = slices.Insert(t.ranges, idx, mapping{begin: addr, end: end, io: io})
}

// Unmap removes all mappings fully contained in [begin, end].
func (t *Table) Unmap(begin, end uint16) {
	t.ranges = slices.DeleteFunc(t.ranges, func(m mapping) bool {
		return m.begin >= begin && m.end <= end
	})
}

func (t *Table) search(addr uint16) BankIO8 {
	idx := sort.Search(len(t.ranges), func(i int) bool { return t.ranges[i].end >= addr })
	if idx < len(t.ranges) && t.ranges[idx].begin <= addr {
		return t.ranges[idx].io
	}
	return nil
}

// Read8 searches in the table for the device mapped at the given address and
// forward the read to it.
func (t *Table) Read8(addr uint16, peek bool) uint8 {
	io := t.search(addr)
	if io == nil {
		if t.Unmapped != nil {
			return t.Unmapped.Read8(addr, peek)
		}
		return 0
	}
	return io.Read8(addr, peek)
}

// Peek8 is a convenience function.
func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	io := t.search(addr)
	if io == nil {
		if t.Unmapped != nil {
			t.Unmapped.Write8(addr, val)
		}
		return
	}
	io.Write8(addr, val)
}
