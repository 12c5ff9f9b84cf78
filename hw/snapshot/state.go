package snapshot

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Version of the save state stream. Bump it whenever a field is added,
// removed or reordered.
const Version = 1

// A Serializer is a device whose state is part of a save state. SaveState
// must always write the same fields in the same order.
type Serializer interface {
	SaveState(e *jx.Encoder)
	LoadState(d *jx.Decoder) error
}

// A Field binds a name in the save state object to a device variable.
type Field struct {
	Name string
	Enc  func(e *jx.Encoder)
	Dec  func(d *jx.Decoder) error
}

// EncodeObject writes fields as a JSON object, in order.
func EncodeObject(e *jx.Encoder, fields []Field) {
	e.ObjStart()
	for _, f := range fields {
		e.FieldStart(f.Name)
		f.Enc(e)
	}
	e.ObjEnd()
}

// DecodeObject reads an object written by EncodeObject. Unknown keys are
// skipped, missing ones are reported as errors.
func DecodeObject(d *jx.Decoder, fields []Field) error {
	seen := make([]bool, len(fields))
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		for i, f := range fields {
			if f.Name != string(key) {
				continue
			}
			if err := f.Dec(d); err != nil {
				return errors.Wrapf(err, "field %q", f.Name)
			}
			seen[i] = true
			return nil
		}
		return d.Skip()
	})
	if err != nil {
		return err
	}
	for i, ok := range seen {
		if !ok {
			return errors.Errorf("missing field %q", fields[i].Name)
		}
	}
	return nil
}

func Uint8(name string, v *uint8) Field {
	return Field{
		Name: name,
		Enc:  func(e *jx.Encoder) { e.UInt8(*v) },
		Dec: func(d *jx.Decoder) (err error) {
			*v, err = d.UInt8()
			return err
		},
	}
}

func Uint16(name string, v *uint16) Field {
	return Field{
		Name: name,
		Enc:  func(e *jx.Encoder) { e.UInt16(*v) },
		Dec: func(d *jx.Decoder) (err error) {
			*v, err = d.UInt16()
			return err
		},
	}
}

func Uint32(name string, v *uint32) Field {
	return Field{
		Name: name,
		Enc:  func(e *jx.Encoder) { e.UInt32(*v) },
		Dec: func(d *jx.Decoder) (err error) {
			*v, err = d.UInt32()
			return err
		},
	}
}

func Int(name string, v *int) Field {
	return Field{
		Name: name,
		Enc:  func(e *jx.Encoder) { e.Int(*v) },
		Dec: func(d *jx.Decoder) (err error) {
			*v, err = d.Int()
			return err
		},
	}
}

func Int16(name string, v *int16) Field {
	return Field{
		Name: name,
		Enc:  func(e *jx.Encoder) { e.Int16(*v) },
		Dec: func(d *jx.Decoder) (err error) {
			*v, err = d.Int16()
			return err
		},
	}
}

func Bool(name string, v *bool) Field {
	return Field{
		Name: name,
		Enc:  func(e *jx.Encoder) { e.Bool(*v) },
		Dec: func(d *jx.Decoder) (err error) {
			*v, err = d.Bool()
			return err
		},
	}
}

// Bytes binds a variable-length byte slice. Empty and nil slices are both
// restored as nil.
func Bytes(name string, v *[]byte) Field {
	return Field{
		Name: name,
		Enc: func(e *jx.Encoder) {
			if len(*v) == 0 {
				e.Str("")
				return
			}
			e.Base64(*v)
		},
		Dec: func(d *jx.Decoder) error {
			buf, err := d.Base64()
			if err != nil {
				return err
			}
			if len(buf) == 0 {
				buf = nil
			}
			*v = buf
			return nil
		},
	}
}

// Array binds a fixed-size memory area, the decoded size must match.
func Array(name string, v []byte) Field {
	return Field{
		Name: name,
		Enc:  func(e *jx.Encoder) { e.Base64(v) },
		Dec: func(d *jx.Decoder) error {
			buf, err := d.Base64()
			if err != nil {
				return err
			}
			if len(buf) != len(v) {
				return errors.Errorf("size mismatch: got %d bytes, want %d", len(buf), len(v))
			}
			copy(v, buf)
			return nil
		},
	}
}

// Nested delegates a field to another serializer.
func Nested(name string, s Serializer) Field {
	return Field{
		Name: name,
		Enc:  s.SaveState,
		Dec:  s.LoadState,
	}
}

// Marshal returns the save state of root, preceded by the stream version.
func Marshal(name string, root Serializer) []byte {
	return MarshalObject(Nested(name, root))
}

// MarshalObject is like Marshal, for a save state made of multiple fields.
func MarshalObject(fields ...Field) []byte {
	version := Version
	var e jx.Encoder
	EncodeObject(&e, append([]Field{Int("version", &version)}, fields...))
	return e.Bytes()
}

// Unmarshal restores root from a save state produced by Marshal.
func Unmarshal(buf []byte, name string, root Serializer) error {
	return UnmarshalObject(buf, Nested(name, root))
}

// UnmarshalObject restores a save state produced by MarshalObject. The
// stream version is checked before any field is decoded.
func UnmarshalObject(buf []byte, fields ...Field) error {
	if err := checkVersion(buf); err != nil {
		return errors.Wrap(err, "load state")
	}
	version := Field{
		Name: "version",
		Dec:  func(d *jx.Decoder) error { return d.Skip() },
	}
	err := DecodeObject(jx.DecodeBytes(buf), append([]Field{version}, fields...))
	if err != nil {
		return errors.Wrap(err, "load state")
	}
	return nil
}

// checkVersion verifies that the first field of the stream is a supported
// version.
func checkVersion(buf []byte) error {
	first := true
	err := jx.DecodeBytes(buf).ObjBytes(func(d *jx.Decoder, key []byte) error {
		if !first {
			return d.Skip()
		}
		first = false
		if string(key) != "version" {
			return errors.Errorf("first field is %q, want \"version\"", key)
		}
		v, err := d.Int()
		if err != nil {
			return errors.Wrap(err, "version")
		}
		if v != Version {
			return errors.Errorf("unsupported save state version %d (want %d)", v, Version)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if first {
		return errors.New("missing version")
	}
	return nil
}
