package scsi

import (
	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
)

// Status codes sent during the status phase.
const (
	StatusGood           uint8 = 0x00
	StatusCheckCondition uint8 = 0x02
)

// Sense keys reported by REQUEST SENSE.
const (
	SenseNone           uint8 = 0x00
	SenseNotReady       uint8 = 0x02
	SenseMediumError    uint8 = 0x03
	SenseIllegalRequest uint8 = 0x05
)

// IrqSink receives the interrupt conditions raised by the drive.
type IrqSink interface {
	SetIrqSource(src hwdefs.CdIrq)
	ClearIrqSource(src hwdefs.CdIrq)
}

type nopIrq struct{}

func (nopIrq) SetIrqSource(hwdefs.CdIrq)   {}
func (nopIrq) ClearIrqSource(hwdefs.CdIrq) {}

// Bus is the drive side of the CD-ROM command bus. The initiator (the
// CPU, through the CD-ROM registers) changes signals or the data port and
// then calls Update, which lets the drive react.
type Bus struct {
	disc Disc
	irq  IrqSink

	signals      signals
	phase        Phase
	dataPort     uint8
	autoClearAck bool

	cmd    [10]byte
	cmdLen int

	status uint8
	sense  uint8

	buf       []byte // data-in bytes being transferred
	pos       int
	lba       uint32 // next sector to read
	remaining int    // sectors left after the one in buf
}

// NewBus returns a drive reading from disc. disc may be nil, in which case
// the drive reports it is not ready.
func NewBus(disc Disc) *Bus {
	return &Bus{disc: disc, irq: nopIrq{}}
}

// PlugIrq connects the drive interrupt conditions to the given sink.
func (b *Bus) PlugIrq(irq IrqSink) {
	b.irq = irq
}

func (b *Bus) Phase() Phase { return b.phase }

func (b *Bus) SetSignal(sig Signal, val bool) {
	if val {
		b.signals |= signals(sig.mask())
	} else {
		b.signals &^= signals(sig.mask())
	}
}

func (b *Bus) CheckSignal(sig Signal) bool {
	return uint16(b.signals)&sig.mask() != 0
}

func (b *Bus) DataPort() uint8 { return b.dataPort }

func (b *Bus) SetDataPort(val uint8) { b.dataPort = val }

// SetAckWithAutoClear asserts ACK. The next Update processes the ACK then
// releases it and processes the bus again, completing a whole handshake.
func (b *Bus) SetAckWithAutoClear() {
	b.SetSignal(Ack, true)
	b.autoClearAck = true
}

// Status returns the bus status byte, as seen by the CPU.
func (b *Bus) Status() uint8 {
	bit := func(sig Signal, n uint) uint8 {
		if b.CheckSignal(sig) {
			return 1 << n
		}
		return 0
	}
	return bit(Bsy, 7) | bit(Req, 6) | bit(Msg, 5) | bit(Cd, 4) | bit(Io, 3)
}

// Update lets the drive react to the current state of the bus.
func (b *Bus) Update() {
	b.process()
	if b.autoClearAck && b.CheckSignal(Ack) {
		b.autoClearAck = false
		b.SetSignal(Ack, false)
		b.process()
	}
}

func (b *Bus) process() {
	if b.CheckSignal(Rst) {
		b.reset()
		return
	}

	if b.phase == BusFree {
		if b.CheckSignal(Sel) {
			b.selected()
		}
		return
	}

	req, ack := b.CheckSignal(Req), b.CheckSignal(Ack)
	switch {
	case req && ack:
		// The initiator acknowledged the current byte.
		b.SetSignal(Req, false)
		if b.phase == Command {
			b.cmd[b.cmdLen] = b.dataPort
			b.cmdLen++
		}
	case !req && !ack:
		b.next()
	}
}

// reset aborts any transfer. RST itself stays asserted until the initiator
// releases it.
func (b *Bus) reset() {
	if b.phase != BusFree || b.signals != signals(Rst.mask()) {
		log.ModScsi.DebugZ("reset").Stringer("phase", b.phase).End()
	}
	b.signals = signals(Rst.mask())
	b.phase = BusFree
	b.autoClearAck = false
	b.cmdLen = 0
	b.buf = nil
	b.pos = 0
	b.remaining = 0
	b.irq.ClearIrqSource(hwdefs.CdIrqDataIn | hwdefs.CdIrqStatusMsgIn)
}

func (b *Bus) selected() {
	log.ModScsi.DebugZ("selected").End()
	b.SetSignal(Bsy, true)
	b.irq.ClearIrqSource(hwdefs.CdIrqStatusMsgIn)
	b.setPhase(Command)
	b.cmdLen = 0
	b.SetSignal(Req, true)
}

func (b *Bus) setPhase(p Phase) {
	log.ModScsi.DebugZ("phase").
		Stringer("from", b.phase).
		Stringer("to", p).
		End()

	b.phase = p
	b.SetSignal(Msg, p == MessageIn)
	b.SetSignal(Cd, p == Command || p == Status || p == MessageIn)
	b.SetSignal(Io, p == DataIn || p == Status || p == MessageIn)
	if p == BusFree {
		b.SetSignal(Bsy, false)
		b.SetSignal(Req, false)
	}
}

// next moves to the next byte of the current phase, or to the next phase,
// once a handshake is complete.
func (b *Bus) next() {
	switch b.phase {
	case Command:
		if b.cmdLen < commandLength(b.cmd[0]) {
			b.SetSignal(Req, true)
			return
		}
		b.execute()

	case DataIn:
		b.pos++
		if b.pos < len(b.buf) {
			b.dataPort = b.buf[b.pos]
			b.SetSignal(Req, true)
			return
		}
		if b.remaining > 0 {
			b.remaining--
			if !b.readSector() {
				return
			}
			b.dataPort = b.buf[0]
			b.SetSignal(Req, true)
			return
		}
		b.buf = nil
		b.statusPhase(StatusGood)

	case Status:
		b.setPhase(MessageIn)
		b.dataPort = 0
		b.SetSignal(Req, true)

	case MessageIn:
		b.setPhase(BusFree)
	}
}

func (b *Bus) statusPhase(status uint8) {
	b.irq.ClearIrqSource(hwdefs.CdIrqDataIn)
	b.status = status
	b.setPhase(Status)
	b.dataPort = status
	b.SetSignal(Req, true)
	b.irq.SetIrqSource(hwdefs.CdIrqStatusMsgIn)
}

func (b *Bus) checkCondition(sense uint8) {
	b.sense = sense
	b.statusPhase(StatusCheckCondition)
}

func (b *Bus) dataInPhase(buf []byte) {
	b.buf = buf
	b.pos = 0
	b.setPhase(DataIn)
	b.dataPort = buf[0]
	b.SetSignal(Req, true)
	b.irq.SetIrqSource(hwdefs.CdIrqDataIn)
}

// commandLength returns the size of a command, given its opcode.
func commandLength(opcode uint8) int {
	if opcode < 0x20 {
		return 6
	}
	return 10
}
