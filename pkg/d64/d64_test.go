package d64

import (
	"bytes"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Image", func() {
	var img *Image

	BeforeEach(func() {
		img = New("test disk")
	})

	Context("freshly formatted", func() {
		It("is exactly 174848 bytes", func() {
			Expect(img.Bytes()).To(HaveLen(ImageSize))
		})

		It("places the BAM header on the directory track", func() {
			bam := img.sectorData(DirTrack, 0)
			Expect(bam[0]).To(Equal(byte(DirTrack)))
			Expect(bam[1]).To(Equal(byte(1)))
			Expect(bam[2]).To(Equal(byte(0x41)))
		})

		It("carries the PETSCII disk name padded to sixteen bytes", func() {
			bam := img.sectorData(DirTrack, 0)
			want := append([]byte("TEST DISK"), bytes.Repeat([]byte{0xA0}, 7)...)
			Expect(bam[0x90:0xA0]).To(Equal(want))
		})

		It("marks every data sector free and the BAM and directory used", func() {
			Expect(img.FreeSectors()).To(Equal(TotalSectors - 2))
			bam := img.sectorData(DirTrack, 0)
			Expect(bam[1*4]).To(Equal(byte(21)))
			Expect(bam[DirTrack*4]).To(Equal(byte(17)))
			Expect(bam[35*4]).To(Equal(byte(17)))
		})

		It("terminates the empty directory sector", func() {
			dir := img.sectorData(DirTrack, 1)
			Expect(dir[0]).To(Equal(byte(0x00)))
			Expect(dir[1]).To(Equal(byte(0xFF)))
		})
	})

	Context("adding a 10-byte file", func() {
		payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

		BeforeEach(func() {
			Expect(img.AddFile("demo", payload)).To(Succeed())
		})

		It("chains a single sector ending in the byte count plus one", func() {
			sec := img.sectorData(1, 0)
			Expect(sec[0]).To(Equal(byte(0x00)))
			Expect(sec[1]).To(Equal(byte(0x0B)))
			Expect(sec[2:12]).To(Equal(payload))
		})

		It("writes a closed PRG directory entry with sector count 1", func() {
			e := img.sectorData(DirTrack, 1)[:32]
			Expect(e[2]).To(Equal(byte(0x82)))
			Expect(e[3]).To(Equal(byte(1)))
			Expect(e[4]).To(Equal(byte(0)))
			Expect(e[5:9]).To(Equal([]byte("DEMO")))
			Expect(e[9:21]).To(Equal(bytes.Repeat([]byte{0xA0}, 12)))
			Expect(e[30]).To(Equal(byte(1)))
			Expect(e[31]).To(Equal(byte(0)))
		})

		It("claims exactly one sector in the BAM", func() {
			bam := img.sectorData(DirTrack, 0)
			Expect(bam[1*4]).To(Equal(byte(20)))
			Expect(bam[1*4+1] & 0x01).To(BeZero())
			Expect(img.FreeSectors()).To(Equal(TotalSectors - 3))
		})
	})

	Context("adding a file spanning two sectors", func() {
		BeforeEach(func() {
			Expect(img.AddFile("long", make([]byte, 300))).To(Succeed())
		})

		It("links the first sector to the second", func() {
			first := img.sectorData(1, 0)
			Expect(first[0]).To(Equal(byte(1)))
			Expect(first[1]).To(Equal(byte(1)))
		})

		It("terminates the last sector with the remaining byte count", func() {
			second := img.sectorData(1, 1)
			Expect(second[0]).To(Equal(byte(0x00)))
			Expect(second[1]).To(Equal(byte(300 - 254 + 1)))
		})

		It("records the sector count in the directory", func() {
			e := img.sectorData(DirTrack, 1)[:32]
			Expect(e[30]).To(Equal(byte(2)))
		})
	})

	Context("when a chain crosses the directory track", func() {
		// Tracks 1-17 hold 357 sectors; one more byte of payload than
		// they carry forces the chain onto the far side.
		size := 357*254 + 1

		BeforeEach(func() {
			Expect(img.AddFile("big", make([]byte, size))).To(Succeed())
		})

		It("skips track 18 entirely", func() {
			last := img.sectorData(17, 20)
			Expect(last[0]).To(Equal(byte(19)))
			Expect(last[1]).To(Equal(byte(0)))
		})

		It("leaves the directory track's free count untouched", func() {
			bam := img.sectorData(DirTrack, 0)
			Expect(bam[DirTrack*4]).To(Equal(byte(17)))
			Expect(bam[19*4]).To(Equal(byte(18)))
		})
	})

	Context("capacity limits", func() {
		It("rejects a payload beyond the data capacity", func() {
			free := img.freeDataSectors()
			before := img.FreeSectors()
			err := img.AddFile("huge", make([]byte, (free+1)*254))
			Expect(err).To(MatchError(ErrDiskFull))
			Expect(img.FreeSectors()).To(Equal(before))
		})

		It("accepts a payload that exactly fills the data sectors", func() {
			free := img.freeDataSectors()
			Expect(img.AddFile("full", make([]byte, free*254))).To(Succeed())
			Expect(img.freeDataSectors()).To(BeZero())
		})

		It("rejects a ninth directory entry", func() {
			for i := 0; i < 8; i++ {
				Expect(img.AddFile(fmt.Sprintf("file%d", i), []byte{byte(i)})).To(Succeed())
			}
			Expect(img.AddFile("file8", []byte{8})).To(MatchError(ErrDirectoryFull))
		})

		It("rejects names longer than sixteen characters", func() {
			Expect(img.AddFile("seventeen-chars!!", nil)).To(MatchError(ErrNameTooLong))
		})
	})

	Context("geometry", func() {
		It("totals 683 sectors over the four bands", func() {
			total := 0
			for t := 1; t <= Tracks; t++ {
				total += SectorsPerTrack(t)
			}
			Expect(total).To(Equal(TotalSectors))
		})

		It("returns zero outside the track range", func() {
			Expect(SectorsPerTrack(0)).To(BeZero())
			Expect(SectorsPerTrack(36)).To(BeZero())
		})
	})
})
