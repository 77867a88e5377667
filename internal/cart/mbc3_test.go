package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newMBC3(t *testing.T) *MBC3 {
	t.Helper()
	rom := make([]byte, 0x8000)
	return NewMBC3(rom, &Header{RAMSizeBytes: 0x2000})
}

func TestMBC3_RTC_LatchAndRead(t *testing.T) {
	prevNow := nowUnix
	nowUnix = func() int64 { return 100 }
	defer func() { nowUnix = prevNow }()

	m := newMBC3(t)
	m.Write(0x0000, 0x0A) // RAM enable
	m.rtcSec, m.rtcMin, m.rtcHour, m.rtcDay = 5, 6, 7, 0x101
	m.rtcHalt, m.rtcCarry = false, false
	m.Write(0x6000, 0x01) // latch (0->1)

	m.Write(0x4000, 0x08)
	require.Equal(t, byte(5), m.Read(0xA000), "latched sec")

	m.rtcSec = 30
	require.Equal(t, byte(5), m.Read(0xA000), "latched read ignores live change")

	m.Write(0x4000, 0x0B)
	require.Equal(t, byte(0x01), m.Read(0xA000), "latched day low")

	m.Write(0x4000, 0x0C)
	got := m.Read(0xA000)
	require.NotZero(t, got&0x01, "day-high bit set")
	require.Zero(t, got&0x40, "halt bit not set")
}

func TestMBC3_RTC_Advance_And_Persist(t *testing.T) {
	prevNow := nowUnix
	nowVal := int64(100)
	nowUnix = func() int64 { return nowVal }
	defer func() { nowUnix = prevNow }()

	m := newMBC3(t)
	m.rtcSec, m.rtcMin, m.rtcHour, m.rtcDay = 30, 59, 23, 0x1FF
	m.rtcHalt, m.rtcCarry = false, false
	m.lastRTCWallSec = nowVal

	nowVal = 120
	_ = m.Read(0x0000)
	require.Equal(t, byte(50), m.rtcSec)
	require.Equal(t, byte(59), m.rtcMin)

	nowVal = 180
	_ = m.Read(0x0001)
	require.Equal(t, byte(50), m.rtcSec)
	require.Zero(t, m.rtcMin)
	require.Zero(t, m.rtcHour)
	require.Zero(t, m.rtcDay)
	require.True(t, m.rtcCarry)

	data := m.SaveRAM()
	n := newMBC3(t)
	n.LoadRAM(data)
	require.Equal(t, m.rtcSec, n.rtcSec)
	require.Equal(t, m.rtcMin, n.rtcMin)
	require.Equal(t, m.rtcHour, n.rtcHour)
	require.Equal(t, m.rtcDay, n.rtcDay)
}

func TestMBC3_ROMBanking(t *testing.T) {
	rom := make([]byte, 0x4000*8)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC3(rom, nil)
	require.Equal(t, 1, m.Bank().ROMBank)

	m.Write(0x2000, 0x05)
	require.Equal(t, byte(0x05), m.Read(0x4000))

	m.Write(0x2000, 0x00)
	require.Equal(t, byte(0x01), m.Read(0x4000), "bank 0 remaps to 1")
}

func TestMBC3_Reset_DisablesRAMAndRestoresBank1(t *testing.T) {
	m := newMBC3(t)
	m.Write(0x0000, 0x0A)
	m.Write(0x2000, 0x07)
	m.Reset()
	info := m.Bank()
	require.False(t, info.RAMEnabled)
	require.Equal(t, 1, info.ROMBank)
}
