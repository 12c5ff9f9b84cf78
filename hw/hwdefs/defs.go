package hwdefs

import (
	"fmt"
	"strings"
)

// IrqLine identifies an interrupt input of the system interrupt controller.
type IrqLine uint8

const (
	Irq2 IrqLine = 1 << iota // CD-ROM unit / expansion port
	Irq1                     // VDC
	TimerIrq

	numIrqLines = 3
)

var irqLineNames = [numIrqLines]string{
	"irq2",
	"irq1",
	"timer",
}

func (irq IrqLine) String() string {
	var names []string
	for i := range numIrqLines {
		if irq&(1<<i) != 0 {
			names = append(names, irqLineNames[i])
		}
	}
	return strings.Join(names, "|")
}

// CdIrq is a set of CD-ROM interrupt sources, as seen in the active and
// enabled IRQ registers ($1803 / $1802).
type CdIrq uint8

const (
	CdIrqAdpcmHalf   CdIrq = 0x04 // ADPCM playback reached half of its length
	CdIrqAdpcmStop   CdIrq = 0x08 // ADPCM playback ended
	CdIrqSubCode     CdIrq = 0x10 // sub-channel data ready
	CdIrqStatusMsgIn CdIrq = 0x20 // data transfer done
	CdIrqDataIn      CdIrq = 0x40 // data transfer ready

	// CdIrqWritable holds the sources the CPU can enable through $1802.
	CdIrqWritable = CdIrqAdpcmHalf | CdIrqAdpcmStop | CdIrqSubCode | CdIrqStatusMsgIn | CdIrqDataIn

	// CdIrqScsi holds the sources driven by the SCSI drive. Their enable
	// bits are cleared by a drive reset.
	CdIrqScsi = CdIrqSubCode | CdIrqStatusMsgIn | CdIrqDataIn
)

var cdIrqNames = map[CdIrq]string{
	CdIrqAdpcmHalf:   "adpcm-half",
	CdIrqAdpcmStop:   "adpcm-stop",
	CdIrqSubCode:     "subcode",
	CdIrqStatusMsgIn: "status-msg-in",
	CdIrqDataIn:      "data-in",
}

func (irq CdIrq) String() string {
	if irq == 0 {
		return "none"
	}
	var names []string
	for i := range 8 {
		bit := CdIrq(1 << i)
		if irq&bit == 0 {
			continue
		}
		if name, ok := cdIrqNames[bit]; ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("bit%d", i))
		}
	}
	return strings.Join(names, "|")
}

// CdIrqByName returns the single interrupt source with the given name.
func CdIrqByName(name string) (CdIrq, bool) {
	for irq, n := range cdIrqNames {
		if n == name {
			return irq, true
		}
	}
	return 0, false
}

// CdRomType is the kind of CD-ROM unit plugged to the console.
type CdRomType uint8

const (
	CdRomBase   CdRomType = iota // CD-ROM², no hardware signature
	CdRomSuper                   // Super CD-ROM²
	CdRomArcade                  // Arcade CD-ROM²
)

var cdRomTypeNames = [...]string{"base", "super", "arcade"}

func (t CdRomType) String() string {
	if int(t) < len(cdRomTypeNames) {
		return cdRomTypeNames[t]
	}
	return fmt.Sprintf("CdRomType(%d)", uint8(t))
}

func (t CdRomType) MarshalText() ([]byte, error) {
	if int(t) >= len(cdRomTypeNames) {
		return nil, fmt.Errorf("invalid cdrom type %d", uint8(t))
	}
	return []byte(cdRomTypeNames[t]), nil
}

func (t *CdRomType) UnmarshalText(text []byte) error {
	for i, name := range cdRomTypeNames {
		if name == string(text) {
			*t = CdRomType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cdrom type %q (want one of %s)", text, strings.Join(cdRomTypeNames[:], ", "))
}
