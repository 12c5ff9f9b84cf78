package hwio

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// InitRegs initializes all the Reg8 and Device fields of the structure pointed
// to by data, according to their "hwio" struct tag:
//
//	reset=0x12      initial value (Reg8 only)
//	rwmask=0xF0     writable bits, others are kept on write (Reg8 only)
//	size=0x10       size of the mapped range (Device only)
//	readonly        writes are ignored
//	writeonly       reads return 0
//	rcb[=Method]    read callback, defaults to ReadFIELDNAME
//	wcb[=Method]    write callback, defaults to WriteFIELDNAME
//
// Reg8 callbacks have the signatures func(val uint8, peek bool) uint8 and
// func(old, val uint8). Device callbacks have the signatures
// func(addr uint16, peek bool) uint8 and func(addr uint16, val uint8).
func InitRegs(data any) error {
	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("hwio: InitRegs expects a pointer to struct, got %T", data)
	}
	sval := val.Elem()
	styp := sval.Type()

	for i := range styp.NumField() {
		field := styp.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			return fmt.Errorf("hwio: field %s: %w", field.Name, err)
		}

		switch ptr := sval.Field(i).Addr().Interface().(type) {
		case *Reg8:
			err = initReg8(val, field.Name, ptr, opts)
		case *Device:
			err = initDevice(val, field.Name, ptr, opts)
		default:
			err = fmt.Errorf("unsupported type %T", ptr)
		}
		if err != nil {
			return fmt.Errorf("hwio: field %s: %w", field.Name, err)
		}
	}
	return nil
}

// MustInitRegs is like InitRegs but panics on error.
func MustInitRegs(data any) {
	if err := InitRegs(data); err != nil {
		panic(err)
	}
}

type tagOpts map[string]string

func parseTag(tag string) (tagOpts, error) {
	opts := make(tagOpts)
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		k, v, _ := strings.Cut(opt, "=")
		if _, dup := opts[k]; dup {
			return nil, fmt.Errorf("duplicated option %q", k)
		}
		opts[k] = v
	}
	return opts, nil
}

func (o tagOpts) uint(key string, bits int) (uint64, bool, error) {
	s, ok := o[key]
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, true, fmt.Errorf("invalid %s value %q: %w", key, s, err)
	}
	return v, true, nil
}

func (o tagOpts) flags() (RWFlags, error) {
	_, ro := o["readonly"]
	_, wo := o["writeonly"]
	switch {
	case ro && wo:
		return 0, fmt.Errorf("readonly and writeonly are exclusive")
	case ro:
		return ReadOnlyFlag, nil
	case wo:
		return WriteOnlyFlag, nil
	}
	return ReadWriteFlag, nil
}

// callback returns the method implementing the callback named by key, or an
// invalid value if the option isn't set.
func (o tagOpts) callback(obj reflect.Value, key, prefix, field string) (reflect.Value, error) {
	name, ok := o[key]
	if !ok {
		return reflect.Value{}, nil
	}
	if name == "" {
		name = prefix + strings.ToUpper(field)
	}
	m := obj.MethodByName(name)
	if !m.IsValid() {
		return reflect.Value{}, fmt.Errorf("missing method %s on %s", name, obj.Type())
	}
	return m, nil
}

func initReg8(obj reflect.Value, name string, reg *Reg8, opts tagOpts) error {
	reg.Name = name

	reset, _, err := opts.uint("reset", 8)
	if err != nil {
		return err
	}
	reg.Value = uint8(reset)

	if rwmask, ok, err := opts.uint("rwmask", 8); err != nil {
		return err
	} else if ok {
		reg.RoMask = ^uint8(rwmask)
	}

	if reg.Flags, err = opts.flags(); err != nil {
		return err
	}

	rcb, err := opts.callback(obj, "rcb", "Read", name)
	if err != nil {
		return err
	}
	if rcb.IsValid() {
		fn, ok := rcb.Interface().(func(uint8, bool) uint8)
		if !ok {
			return fmt.Errorf("invalid read callback signature %s", rcb.Type())
		}
		reg.ReadCb = fn
	}

	wcb, err := opts.callback(obj, "wcb", "Write", name)
	if err != nil {
		return err
	}
	if wcb.IsValid() {
		fn, ok := wcb.Interface().(func(uint8, uint8))
		if !ok {
			return fmt.Errorf("invalid write callback signature %s", wcb.Type())
		}
		reg.WriteCb = fn
	}
	return nil
}

func initDevice(obj reflect.Value, name string, dev *Device, opts tagOpts) error {
	dev.Name = name

	size, ok, err := opts.uint("size", 16)
	if err != nil {
		return err
	}
	if !ok || size == 0 {
		return fmt.Errorf("device requires a non-zero size")
	}
	dev.Size = int(size)

	if dev.Flags, err = opts.flags(); err != nil {
		return err
	}

	rcb, err := opts.callback(obj, "rcb", "Read", name)
	if err != nil {
		return err
	}
	if rcb.IsValid() {
		fn, ok := rcb.Interface().(func(uint16, bool) uint8)
		if !ok {
			return fmt.Errorf("invalid read callback signature %s", rcb.Type())
		}
		dev.ReadCb = fn
	}

	wcb, err := opts.callback(obj, "wcb", "Write", name)
	if err != nil {
		return err
	}
	if wcb.IsValid() {
		fn, ok := wcb.Interface().(func(uint16, uint8))
		if !ok {
			return fmt.Errorf("invalid write callback signature %s", wcb.Type())
		}
		dev.WriteCb = fn
	}
	return nil
}

type bankReg struct {
	offset uint16
	regPtr any
}

// bankGetRegs returns the registers of bank that are part of bank number
// bankNum, that is, those having an offset option.
func bankGetRegs(bank any, bankNum int) ([]bankReg, error) {
	val := reflect.ValueOf(bank)
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("hwio: expected pointer to struct, got %T", bank)
	}
	sval := val.Elem()
	styp := sval.Type()

	var regs []bankReg
	for i := range styp.NumField() {
		field := styp.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("hwio: field %s: %w", field.Name, err)
		}
		off, ok, err := opts.uint("offset", 16)
		if err != nil {
			return nil, fmt.Errorf("hwio: field %s: %w", field.Name, err)
		}
		if !ok {
			continue
		}
		num, _, err := opts.uint("bank", 8)
		if err != nil {
			return nil, fmt.Errorf("hwio: field %s: %w", field.Name, err)
		}
		if int(num) != bankNum {
			continue
		}
		regs = append(regs, bankReg{
			offset: uint16(off),
			regPtr: sval.Field(i).Addr().Interface(),
		})
	}
	return regs, nil
}
