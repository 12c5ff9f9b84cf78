package scsi

import (
	"pcecd/emu/log"
)

const (
	cmdTestUnitReady = 0x00
	cmdRequestSense  = 0x03
	cmdRead6         = 0x08
)

func (b *Bus) execute() {
	cmd := b.cmd[:b.cmdLen]
	log.ModScsi.DebugZ("execute command").
		Hex8("opcode", cmd[0]).
		Int("len", len(cmd)).
		End()

	switch cmd[0] {
	case cmdTestUnitReady:
		if b.disc == nil {
			b.checkCondition(SenseNotReady)
			return
		}
		b.statusPhase(StatusGood)

	case cmdRequestSense:
		b.requestSense(cmd[4])

	case cmdRead6:
		b.read6(cmd)

	default:
		log.ModScsi.WarnZ("unsupported command").Hex8("opcode", cmd[0]).End()
		b.checkCondition(SenseIllegalRequest)
	}
}

func (b *Bus) requestSense(alloc uint8) {
	data := make([]byte, 10)
	data[0] = 0x70 // current error, fixed format
	data[2] = b.sense
	data[7] = uint8(len(data) - 8)
	if alloc != 0 && int(alloc) < len(data) {
		data = data[:alloc]
	}
	b.sense = SenseNone
	b.dataInPhase(data)
}

func (b *Bus) read6(cmd []byte) {
	if b.disc == nil {
		b.checkCondition(SenseNotReady)
		return
	}

	b.lba = uint32(cmd[1]&0x1F)<<16 | uint32(cmd[2])<<8 | uint32(cmd[3])
	count := int(cmd[4])
	if count == 0 {
		count = 256
	}
	log.ModScsi.DebugZ("read").
		Uint("lba", uint64(b.lba)).
		Int("count", count).
		End()

	b.remaining = count - 1
	if !b.readSector() {
		return
	}
	b.dataInPhase(b.buf)
}

// readSector loads the sector at lba into buf. On failure, the command ends
// with a check condition and false is returned.
func (b *Bus) readSector() bool {
	if b.disc == nil {
		log.ModScsi.WarnZ("read sector with no disc").Uint("lba", uint64(b.lba)).End()
		b.buf = nil
		b.remaining = 0
		b.checkCondition(SenseNotReady)
		return false
	}
	buf := make([]byte, SectorSize)
	if err := b.disc.ReadSector(b.lba, buf); err != nil {
		log.ModScsi.WarnZ("read sector").Error("err", err).End()
		b.buf = nil
		b.remaining = 0
		b.checkCondition(SenseMediumError)
		return false
	}
	b.buf = buf
	b.pos = 0
	b.lba++
	return true
}
