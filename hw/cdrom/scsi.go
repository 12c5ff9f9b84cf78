package cdrom

import "pcecd/hw/scsi"

// drive changes a signal line and lets the drive react to it.
func (cd *CdRom) drive(sig scsi.Signal, val bool) {
	cd.scsi.SetSignal(sig, val)
	cd.scsi.Update()
}

// pulse strobes a signal line, the drive sees both edges.
func (cd *CdRom) pulse(sig scsi.Signal) {
	cd.drive(sig, true)
	cd.drive(sig, false)
}

func (cd *CdRom) setDataPort(val uint8) {
	cd.scsi.SetDataPort(val)
	cd.scsi.Update()
}

// dataIn reports whether the drive is sending data to the CPU.
func (cd *CdRom) dataIn() bool {
	return cd.scsi.CheckSignal(scsi.Req) &&
		cd.scsi.CheckSignal(scsi.Io) &&
		!cd.scsi.CheckSignal(scsi.Cd)
}

// autoAck completes the handshake of the byte just read from the data port.
func (cd *CdRom) autoAck() {
	if cd.dataIn() {
		cd.scsi.SetAckWithAutoClear()
		cd.scsi.Update()
	}
}
