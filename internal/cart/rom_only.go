package cart

// ROMOnly implements a cartridge without MBC or external RAM: bank 0 and
// the "switchable" bank region both read straight out of the first 32 KiB
// of the image, and all writes are discarded.
type ROMOnly struct {
	rom []byte
	h   *Header
}

// NewROMOnly wraps rom with no banking. h may be nil if header parsing
// failed; a nil header is reported as a zero-value Header by Header().
func NewROMOnly(rom []byte, h *Header) *ROMOnly {
	return &ROMOnly{rom: rom, h: h}
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (c *ROMOnly) Write(addr uint16, value byte) {
	// ROM-only: writes are ignored, including MBC-shaped control writes
	// and external-RAM writes (there is no external RAM).
}

func (c *ROMOnly) Header() *Header {
	if c.h == nil {
		return &Header{}
	}
	return c.h
}

func (c *ROMOnly) Bank() BankInfo { return BankInfo{ROMBank: 1} }

func (c *ROMOnly) Reset() {}
