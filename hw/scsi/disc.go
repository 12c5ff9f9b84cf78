package scsi

import "fmt"

// SectorSize is the size of a data sector (mode 1).
const SectorSize = 2048

// A Disc provides the sectors read by the drive.
type Disc interface {
	ReadSector(lba uint32, buf []byte) error
}

// MemDisc is an in-memory disc image made of contiguous data sectors.
type MemDisc struct {
	data []byte
}

func NewMemDisc(sectors int) *MemDisc {
	return &MemDisc{data: make([]byte, sectors*SectorSize)}
}

// LoadMemDisc returns a disc made of the raw user data sectors in data. The
// last sector is zero padded.
func LoadMemDisc(data []byte) *MemDisc {
	n := (len(data) + SectorSize - 1) / SectorSize
	d := NewMemDisc(n)
	copy(d.data, data)
	return d
}

func (d *MemDisc) Sectors() int {
	return len(d.data) / SectorSize
}

// WriteSector fills the sector at lba with buf, zero padded.
func (d *MemDisc) WriteSector(lba uint32, buf []byte) error {
	sector, err := d.sector(lba)
	if err != nil {
		return err
	}
	clear(sector)
	copy(sector, buf)
	return nil
}

func (d *MemDisc) ReadSector(lba uint32, buf []byte) error {
	sector, err := d.sector(lba)
	if err != nil {
		return err
	}
	copy(buf, sector)
	return nil
}

func (d *MemDisc) sector(lba uint32) ([]byte, error) {
	if int(lba) >= d.Sectors() {
		return nil, fmt.Errorf("sector %d out of range (disc has %d sectors)", lba, d.Sectors())
	}
	off := int(lba) * SectorSize
	return d.data[off : off+SectorSize], nil
}
