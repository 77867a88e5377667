package cart

// MBC1 implements MBC1 ROM/RAM banking: up to 125 usable 16 KiB ROM banks
// and up to 32 KiB of RAM in up to 4 banks, selected by a 5-bit/2-bit
// register pair and a mode-select bit. The 2 high bits always extend the
// switchable ROM bank; in mode 1 they also select the RAM bank (in mode 0
// RAM bank 0 is used).
type MBC1 struct {
	rom []byte
	ram []byte
	h   *Header

	romBankLow5       byte // lower 5 bits of ROM bank number (0 remapped to 1)
	ramBankOrRomHigh2 byte // ROM bank high bits (both modes), also RAM bank in mode 1
	ramEnabled        bool
	modeSelect        byte // 0: ROM banking (default), 1: RAM banking
}

// NewMBC1 wraps rom with MBC1 banking and the RAM size declared by h (h
// may be nil, meaning no RAM).
func NewMBC1(rom []byte, h *Header) *MBC1 {
	m := &MBC1{rom: rom, h: h, romBankLow5: 1}
	if h != nil && h.RAMSizeBytes > 0 {
		m.ram = make([]byte, h.RAMSizeBytes)
	}
	return m
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		// Bank 0 region always reads the first 16 KiB of ROM, in both
		// modes: mode 1's upper bits only steer the 0xA000-0xBFFF RAM
		// bank and the 0x4000-0x7FFF switchable ROM bank, never this one.
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		off := int(m.effectiveROMBank())*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		off := m.ramOffset(addr)
		if off >= 0 && off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		m.romBankLow5 = value & 0x1F
		if m.romBankLow5 == 0 {
			m.romBankLow5 = 1
		}
	case addr < 0x6000:
		m.ramBankOrRomHigh2 = value & 0x03
	case addr < 0x8000:
		m.modeSelect = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		off := m.ramOffset(addr)
		if off >= 0 && off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

func (m *MBC1) ramOffset(addr uint16) int {
	bank := 0
	if m.modeSelect == 1 {
		bank = int(m.ramBankOrRomHigh2 & 0x03)
	}
	return bank*0x2000 + int(addr-0xA000)
}

func (m *MBC1) effectiveROMBank() byte {
	high := m.ramBankOrRomHigh2 & 0x03
	return m.romBankLow5 | (high << 5)
}

func (m *MBC1) Header() *Header {
	if m.h == nil {
		return &Header{}
	}
	return m.h
}

func (m *MBC1) Bank() BankInfo {
	ramBank := 0
	if m.modeSelect == 1 {
		ramBank = int(m.ramBankOrRomHigh2 & 0x03)
	}
	return BankInfo{
		ROMBank:    int(m.effectiveROMBank()),
		RAMBank:    ramBank,
		RAMEnabled: m.ramEnabled,
	}
}

func (m *MBC1) Reset() {
	m.romBankLow5 = 1
	m.ramBankOrRomHigh2 = 0
	m.ramEnabled = false
	m.modeSelect = 0
}

func (m *MBC1) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC1) LoadRAM(data []byte) {
	if len(m.ram) == 0 || len(data) == 0 {
		return
	}
	copy(m.ram, data)
}
