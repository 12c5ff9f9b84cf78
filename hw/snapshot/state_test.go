package snapshot

import (
	"strings"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"
)

type inner struct {
	Sample int16
	On     bool
}

func (in *inner) fields() []Field {
	return []Field{
		Int16("sample", &in.Sample),
		Bool("on", &in.On),
	}
}

func (in *inner) SaveState(e *jx.Encoder)       { EncodeObject(e, in.fields()) }
func (in *inner) LoadState(d *jx.Decoder) error { return DecodeObject(d, in.fields()) }

type device struct {
	A   uint8
	B   uint16
	C   uint32
	N   int
	Buf []byte
	Mem [8]byte
	In  inner
}

func (dev *device) fields() []Field {
	return []Field{
		Uint8("a", &dev.A),
		Uint16("b", &dev.B),
		Uint32("c", &dev.C),
		Int("n", &dev.N),
		Bytes("buf", &dev.Buf),
		Array("mem", dev.Mem[:]),
		Nested("inner", &dev.In),
	}
}

func (dev *device) SaveState(e *jx.Encoder)       { EncodeObject(e, dev.fields()) }
func (dev *device) LoadState(d *jx.Decoder) error { return DecodeObject(d, dev.fields()) }

func TestMarshalUnmarshal(t *testing.T) {
	want := device{
		A:   0x7C,
		B:   0xBEEF,
		C:   0x12345678,
		N:   -3,
		Buf: []byte{1, 2, 3},
		Mem: [8]byte{0, 0xAA, 0x55, 0x03},
		In:  inner{Sample: -1234, On: true},
	}

	buf := Marshal("dev", &want)

	var got device
	if err := Unmarshal(buf, "dev", &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldOrder(t *testing.T) {
	dev := device{}
	buf := string(Marshal("dev", &dev))

	prev := -1
	for _, key := range []string{`"version"`, `"a"`, `"b"`, `"c"`, `"n"`, `"buf"`, `"mem"`, `"inner"`, `"sample"`, `"on"`} {
		idx := strings.Index(buf, key)
		if idx <= prev {
			t.Fatalf("key %s out of order in %s", key, buf)
		}
		prev = idx
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  string
	}{
		{"version", `{"version":99,"dev":{}}`},
		{"missing field", `{"version":1,"dev":{"a":1}}`},
		{"bad type", `{"version":1,"dev":{"a":"x"}}`},
		{"array size", `{"version":1,"dev":{"a":1,"b":2,"c":3,"n":4,"buf":"","mem":"AAE=","inner":{"sample":0,"on":false}}}`},
		{"not json", `garbage`},
		{"empty", `{}`},
		{"version last", `{"dev":{"a":1,"b":2,"c":3,"n":4,"buf":"","mem":"AAAAAAAAAAA=","inner":{"sample":0,"on":false}},"version":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dev device
			if err := Unmarshal([]byte(tt.buf), "dev", &dev); err == nil {
				t.Fatal("Unmarshal should fail")
			} else {
				t.Log(err)
			}
		})
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	buf := `{"version":1,"extra":[1,2],"dev":{"a":1,"b":2,"c":3,"n":4,"buf":"","mem":"AAAAAAAAAAA=","future":true,"inner":{"sample":5,"on":true}}}`

	var dev device
	if err := Unmarshal([]byte(buf), "dev", &dev); err != nil {
		t.Fatal(err)
	}
	if dev.A != 1 || dev.In.Sample != 5 {
		t.Errorf("unexpected state %+v", dev)
	}
}

func TestVersionCheckedFirst(t *testing.T) {
	buf := `{"dev":{"a":7,"b":2,"c":3,"n":4,"buf":"","mem":"AAAAAAAAAAA=","inner":{"sample":5,"on":true}},"version":1}`

	var dev device
	if err := Unmarshal([]byte(buf), "dev", &dev); err == nil {
		t.Fatal("Unmarshal should fail")
	}
	if dev.A != 0 || dev.In.Sample != 0 {
		t.Errorf("device modified by rejected state: %+v", dev)
	}
}
