package cdrom

import (
	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
	"pcecd/hw/hwio"
	"pcecd/hw/scsi"
)

// $1800: writing selects the drive, reading returns the bus status.
func (cd *CdRom) ReadSCSICTRL(_ uint8, _ bool) uint8 {
	return cd.scsi.Status()
}

func (cd *CdRom) WriteSCSICTRL(_, _ uint8) {
	cd.pulse(scsi.Sel)
}

// $1801: command/data port.
func (cd *CdRom) ReadCMD(_ uint8, _ bool) uint8 {
	return cd.scsi.DataPort()
}

func (cd *CdRom) WriteCMD(_, val uint8) {
	cd.setDataPort(val)
}

// $1802: bit 7 is ACK, other bits are the enabled interrupts.
func (cd *CdRom) ReadIRQENABLE(_ uint8, _ bool) uint8 {
	return uint8(cd.enabled) | hwio.Bool8(cd.scsi.CheckSignal(scsi.Ack), 7)
}

func (cd *CdRom) WriteIRQENABLE(_, val uint8) {
	cd.drive(scsi.Ack, hwio.GetBit8(val, 7))
	cd.setEnabled(hwdefs.CdIrq(val))
}

// $1803: active interrupts. Reading locks BRAM and toggles the CD-DA
// channel selected by $1805-$1806. Bit 1 is set when the left channel is
// selected.
func (cd *CdRom) ReadSTATUS(_ uint8, peek bool) uint8 {
	right := !cd.readRightChannel
	if !peek {
		cd.readRightChannel = right
		if !cd.bramLocked {
			log.ModCdRom.DebugZ("bram locked").End()
		}
		cd.bramLocked = true
	}
	return uint8(cd.active) | hwio.Bool8(!right, 1)
}

// $1804: bit 1 drives the drive reset line.
func (cd *CdRom) ReadRESET(_ uint8, _ bool) uint8 {
	return hwio.Bool8(cd.scsi.CheckSignal(scsi.Rst), 1)
}

func (cd *CdRom) WriteRESET(_, val uint8) {
	reset := hwio.GetBit8(val, 1)
	cd.drive(scsi.Rst, reset)
	if reset {
		cd.enabled &^= hwdefs.CdIrqScsi
		cd.updateIrq()
	}
}

// $1805-$1806: CD-DA sample of the selected channel.
func (cd *CdRom) sample() int16 {
	if cd.readRightChannel {
		return cd.audio.RightSample()
	}
	return cd.audio.LeftSample()
}

func (cd *CdRom) ReadCDDALO(_ uint8, _ bool) uint8 {
	return uint8(cd.sample())
}

func (cd *CdRom) ReadCDDAHI(_ uint8, _ bool) uint8 {
	return uint8(uint16(cd.sample()) >> 8)
}

// $1807: BRAM unlock.
func (cd *CdRom) ReadBRAM(_ uint8, _ bool) uint8 {
	return hwio.Bool8(!cd.bramLocked, 7)
}

func (cd *CdRom) WriteBRAM(_, val uint8) {
	if hwio.GetBit8(val, 7) {
		log.ModCdRom.DebugZ("bram unlocked").End()
		cd.bramLocked = false
	}
}

// $1808: reads return the drive data port, and acknowledge the byte when
// the drive is sending data. Writes go to the ADPCM address latch.
func (cd *CdRom) ReadADPCMDATA(_ uint8, peek bool) uint8 {
	val := cd.scsi.DataPort()
	if !peek {
		cd.autoAck()
	}
	return val
}

func (cd *CdRom) WriteADPCMDATA(_, val uint8) {
	cd.adpcm.Write(0x08, val)
}

// $1809-$180E: ADPCM registers.
func (cd *CdRom) ReadADPCMREGS(addr uint16, peek bool) uint8 {
	if peek {
		return cd.adpcm.Peek(addr)
	}
	return cd.adpcm.Read(addr)
}

func (cd *CdRom) WriteADPCMREGS(addr uint16, val uint8) {
	cd.adpcm.Write(addr, val)
}

// $180F: audio fader, write only.
func (cd *CdRom) ReadFADER(_ uint8, peek bool) uint8 {
	return unknownRegs{}.Read8(0x0F, peek)
}

func (cd *CdRom) WriteFADER(_, val uint8) {
	cd.fader.Write(val)
}

// $18C0-$18C3: hardware signature, absent on the base unit.
func (cd *CdRom) ReadSIGNATURE(addr uint16, _ bool) uint8 {
	if cd.typ == hwdefs.CdRomBase {
		return 0xFF
	}
	return signature[addr&0x03]
}
