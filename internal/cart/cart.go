// Package cart models the Game Boy cartridge: the ROM/RAM bytes, the
// parsed header, and the MBC1/MBC3/MBC5/ROM-only banking schemes that
// decide which physical bytes a CPU address maps to.
package cart

import "errors"

// Errors for ROM images that cannot be loaded: New returns ErrROMTooSmall
// and ErrInvalidImage, ParseHeader returns ErrHeaderTooSmall. Out-of-range
// addresses and values are never an error at this layer — only load-time
// problems are.
var (
	ErrROMTooSmall    = errors.New("cart: rom too small (must be at least 32 KiB)")
	ErrInvalidImage   = errors.New("cart: rom is not a power-of-two sized image")
	ErrHeaderTooSmall = errors.New("cart: rom too small to contain a header")
)

const minROMSize = 32 * 1024

// BankInfo is the observability snapshot the MMU exposes to hosts/tests.
type BankInfo struct {
	ROMBank    int
	RAMBank    int
	RAMEnabled bool
}

// Cartridge is the minimal capability set the MMU needs: ROM reads
// (0x0000-0x7FFF, which also carries MBC control writes) and external
// RAM reads/writes (0xA000-0xBFFF, enable-gated).
type Cartridge interface {
	// Read returns a byte for ROM (0x0000-0x7FFF) or external RAM
	// (0xA000-0xBFFF).
	Read(addr uint16) byte
	// Write handles MBC control-register writes (0x0000-0x7FFF) and
	// external RAM writes (0xA000-0xBFFF).
	Write(addr uint16, value byte)
	// Header returns the parsed cartridge header.
	Header() *Header
	// Bank reports the current banking state for observability.
	Bank() BankInfo
	// Reset restores post-power banking state (bank 1 selected, RAM
	// disabled). ROM/RAM contents are untouched.
	Reset()
}

// BatteryBacked is implemented by cartridges carrying persistable
// external RAM.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// New parses rom's header and returns the Cartridge implementation that
// matches its declared MBC type, falling back to ROM-only for unknown
// types so homebrew/test ROMs with nonstandard header bytes still load.
func New(rom []byte) (Cartridge, error) {
	if len(rom) < minROMSize {
		return nil, ErrROMTooSmall
	}
	if len(rom)&(len(rom)-1) != 0 {
		return nil, ErrInvalidImage
	}

	h, err := ParseHeader(rom)
	if err != nil {
		return NewROMOnly(rom, nil), nil
	}
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom, h), nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h), nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h), nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h), nil
	default:
		return NewROMOnly(rom, h), nil
	}
}
