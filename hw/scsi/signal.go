package scsi

import "strings"

// Signal is a control line of the drive bus.
type Signal uint8

const (
	Ack Signal = iota
	Atn
	Bsy
	Cd
	Io
	Msg
	Req
	Rst
	Sel

	numSignals
)

var signalNames = [numSignals]string{"ACK", "ATN", "BSY", "CD", "IO", "MSG", "REQ", "RST", "SEL"}

func (s Signal) String() string {
	if s < numSignals {
		return signalNames[s]
	}
	return "?"
}

func (s Signal) mask() uint16 { return 1 << s }

// signals holds the state of all lines, one bit per Signal.
type signals uint16

func (s signals) String() string {
	var names []string
	for sig := range numSignals {
		if uint16(s)&sig.mask() != 0 {
			names = append(names, sig.String())
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "|")
}

// Phase is the bus transaction stage the drive is in.
type Phase uint8

const (
	BusFree Phase = iota
	Command
	DataIn
	Status
	MessageIn
)

func (p Phase) String() string {
	switch p {
	case BusFree:
		return "bus-free"
	case Command:
		return "command"
	case DataIn:
		return "data-in"
	case Status:
		return "status"
	case MessageIn:
		return "message-in"
	}
	return "?"
}
