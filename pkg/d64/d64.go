// Package d64 builds 1541 floppy disk images: a fixed 35-track geometry
// with a per-track free-space bitmap (BAM), a directory sector, and
// sector-chained file data.
package d64

import (
	"errors"
	"fmt"

	"goc64/pkg/petscii"
)

const (
	// Tracks is the number of tracks on a disk. Track numbers start at 1.
	Tracks = 35

	// SectorSize is the raw size of every sector.
	SectorSize = 256

	// TotalSectors across all tracks.
	TotalSectors = 683

	// ImageSize is the exact byte size of every image.
	ImageSize = TotalSectors * SectorSize

	// DirTrack holds the BAM (sector 0) and the directory (sector 1);
	// file data never lands on it.
	DirTrack = 18

	// FileNameLen is the fixed width of directory entry names.
	FileNameLen = 16

	// payload bytes per data sector; the first two bytes chain to the
	// next sector.
	payloadSize = SectorSize - 2

	// 32-byte entries in the single directory sector.
	dirEntries = 8

	// data chains start here and scan forward sector-then-track.
	firstDataTrack  = 1
	firstDataSector = 0
)

var (
	ErrDiskFull      = errors.New("d64: disk full")
	ErrDirectoryFull = errors.New("d64: directory full")
	ErrNameTooLong   = errors.New("d64: file name too long")
)

// SectorsPerTrack returns the sector count of a track. Outer tracks are
// longer and hold more sectors; the counts fall in four bands.
func SectorsPerTrack(track int) int {
	switch {
	case track < 1 || track > Tracks:
		return 0
	case track <= 17:
		return 21
	case track <= 24:
		return 19
	case track <= 30:
		return 18
	default:
		return 17
	}
}

// Image is a disk image under construction. The zero value is not
// usable; call New.
type Image struct {
	data []byte

	track  int // allocation cursor
	sector int
	files  int
}

// New returns a formatted, empty image carrying the given disk name.
func New(name string) *Image {
	im := &Image{
		data:   make([]byte, ImageSize),
		track:  firstDataTrack,
		sector: firstDataSector,
	}

	bam := im.sectorData(DirTrack, 0)
	bam[0] = DirTrack // first directory sector
	bam[1] = 1
	bam[2] = 0x41 // format marker "A"
	bam[3] = 0x00

	// One 4-byte entry per track: free count plus a bitmap where a set
	// bit means free.
	for t := 1; t <= Tracks; t++ {
		e := bam[t*4:]
		n := SectorsPerTrack(t)
		e[0] = byte(n)
		bits := uint32(1)<<n - 1
		e[1] = byte(bits)
		e[2] = byte(bits >> 8)
		e[3] = byte(bits >> 16)
	}

	// Disk header: padded name, disk ID, DOS version "2A".
	for i := 0x90; i <= 0xAA; i++ {
		bam[i] = 0xA0
	}
	copy(bam[0x90:0xA0], petscii.Encode(name))
	bam[0xA2] = '6'
	bam[0xA3] = '4'
	bam[0xA5] = '2'
	bam[0xA6] = 'A'

	im.markUsed(DirTrack, 0)
	im.markUsed(DirTrack, 1)

	dir := im.sectorData(DirTrack, 1)
	dir[0] = 0x00 // no further directory sectors
	dir[1] = 0xFF

	return im
}

// AddFile writes data as a closed PRG file. The image is left unchanged
// when the data does not fit or the directory is full.
func (im *Image) AddFile(name string, data []byte) error {
	if len(name) > FileNameLen {
		return fmt.Errorf("%w: %q", ErrNameTooLong, name)
	}
	if im.files == dirEntries {
		return fmt.Errorf("%w: %q", ErrDirectoryFull, name)
	}

	count := (len(data) + payloadSize - 1) / payloadSize
	if count == 0 {
		count = 1
	}
	if count > im.freeDataSectors() {
		return fmt.Errorf("%w: %q needs %d sectors", ErrDiskFull, name, count)
	}

	var firstT, firstS int
	var prev []byte
	remaining := data
	last := 0
	for i := 0; i < count; i++ {
		t, s := im.allocate()
		if prev != nil {
			prev[0] = byte(t)
			prev[1] = byte(s)
		} else {
			firstT, firstS = t, s
		}
		sec := im.sectorData(t, s)
		last = copy(sec[2:], remaining)
		remaining = remaining[last:]
		prev = sec
	}
	// Final sector: zero track marker, then the offset of the last valid
	// byte (payload length + 1).
	prev[0] = 0x00
	prev[1] = byte(last + 1)

	e := im.sectorData(DirTrack, 1)[im.files*32:]
	e[2] = 0x82 // closed PRG
	e[3] = byte(firstT)
	e[4] = byte(firstS)
	for i := 5; i < 5+FileNameLen; i++ {
		e[i] = 0xA0
	}
	copy(e[5:5+FileNameLen], petscii.Encode(name))
	e[30] = byte(count)
	e[31] = byte(count >> 8)
	im.files++
	return nil
}

// Bytes returns the raw image. The slice aliases the builder's storage.
func (im *Image) Bytes() []byte {
	return im.data
}

// FreeSectors totals the BAM free counts.
func (im *Image) FreeSectors() int {
	bam := im.sectorData(DirTrack, 0)
	free := 0
	for t := 1; t <= Tracks; t++ {
		free += int(bam[t*4])
	}
	return free
}

// freeDataSectors is the capacity left for file chains; the directory
// track never holds data.
func (im *Image) freeDataSectors() int {
	bam := im.sectorData(DirTrack, 0)
	free := 0
	for t := 1; t <= Tracks; t++ {
		if t == DirTrack {
			continue
		}
		free += int(bam[t*4])
	}
	return free
}

// sectorData returns the 256-byte slice backing one sector.
func (im *Image) sectorData(track, sector int) []byte {
	off := 0
	for t := 1; t < track; t++ {
		off += SectorsPerTrack(t)
	}
	off = (off + sector) * SectorSize
	return im.data[off : off+SectorSize]
}

// allocate claims the next free sector after the cursor, sector-then-
// track, skipping the directory track. The caller has already checked
// capacity.
func (im *Image) allocate() (track, sector int) {
	for {
		if im.track == DirTrack || im.sector >= SectorsPerTrack(im.track) {
			im.track++
			im.sector = 0
			continue
		}
		t, s := im.track, im.sector
		im.sector++
		im.markUsed(t, s)
		return t, s
	}
}

// markUsed clears the sector's BAM bit and decrements the track's free
// count, once.
func (im *Image) markUsed(track, sector int) {
	e := im.sectorData(DirTrack, 0)[track*4:]
	idx := 1 + sector/8
	mask := byte(1) << (sector % 8)
	if e[idx]&mask == 0 {
		return
	}
	e[idx] &^= mask
	e[0]--
}
