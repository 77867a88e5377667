package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_TooSmall(t *testing.T) {
	_, err := New(make([]byte, 1024))
	require.ErrorIs(t, err, ErrROMTooSmall)
}

func TestNew_NotPowerOfTwo(t *testing.T) {
	_, err := New(make([]byte, 40*1024))
	require.ErrorIs(t, err, ErrInvalidImage)
}

func TestNew_DispatchesByCartType(t *testing.T) {
	cases := []struct {
		name     string
		cartType byte
		want     Cartridge
	}{
		{"rom-only", 0x00, &ROMOnly{}},
		{"mbc1", 0x01, &MBC1{}},
		{"mbc3", 0x11, &MBC3{}},
		{"mbc5", 0x19, &MBC5{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rom := buildROM("T", c.cartType, 0x01, 0x00, 64*1024)
			got, err := New(rom)
			require.NoError(t, err)
			require.IsType(t, c.want, got)
		})
	}
}

func TestNew_UnknownCartTypeFallsBackToROMOnly(t *testing.T) {
	rom := buildROM("T", 0xFE, 0x01, 0x00, 64*1024)
	got, err := New(rom)
	require.NoError(t, err)
	require.IsType(t, &ROMOnly{}, got)
}
