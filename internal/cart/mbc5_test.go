package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMBC5_ROMBanking_9Bit(t *testing.T) {
	rom := make([]byte, 0x4000*260)
	rom[0x100*0x4000] = 0xAB
	m := NewMBC5(rom, nil)

	m.Write(0x2000, 0x00) // low byte
	m.Write(0x3000, 0x01) // high bit -> bank 0x100
	require.Equal(t, byte(0xAB), m.Read(0x4000))
	require.Equal(t, 0x100, m.Bank().ROMBank)
}

func TestMBC5_ROMBankZeroIsLegal(t *testing.T) {
	rom := make([]byte, 0x4000*2)
	m := NewMBC5(rom, nil)
	m.Write(0x2000, 0x00)
	require.Equal(t, 0, m.Bank().ROMBank, "MBC5 bank 0 is not remapped to 1")
}

func TestMBC5_RAMBanking(t *testing.T) {
	m := NewMBC5(make([]byte, 0x4000*2), &Header{RAMSizeBytes: 0x2000 * 4})
	m.Write(0x0000, 0x0A) // enable
	m.Write(0x4000, 0x03) // bank 3
	m.Write(0xA123, 0x55)
	require.Equal(t, byte(0x55), m.Read(0xA123))
	require.Equal(t, 3, m.Bank().RAMBank)
}

func TestMBC5_RAMDisabled_ReadsFF(t *testing.T) {
	m := NewMBC5(make([]byte, 0x4000*2), &Header{RAMSizeBytes: 0x2000})
	require.Equal(t, byte(0xFF), m.Read(0xA000))
}

func TestMBC5_Reset(t *testing.T) {
	m := NewMBC5(make([]byte, 0x4000*2), &Header{RAMSizeBytes: 0x2000})
	m.Write(0x0000, 0x0A)
	m.Write(0x2000, 0x02)
	m.Reset()
	info := m.Bank()
	require.False(t, info.RAMEnabled)
	require.Equal(t, 1, info.ROMBank)
}
