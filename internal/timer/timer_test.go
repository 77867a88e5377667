package timer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTimer() (*Timer, *int) {
	fired := 0
	t := New(func(bit int) {
		if bit == timerInterruptBit {
			fired++
		}
	})
	return t, &fired
}

func TestDIV_IncrementsEvery256Cycles(t *testing.T) {
	tm, _ := newTestTimer()
	tm.Step(256 * 3)
	require.Equal(t, byte(3), tm.ReadDIV())
}

func TestDIV_WriteResetsCounter(t *testing.T) {
	tm, _ := newTestTimer()
	tm.Step(1000)
	require.NotZero(t, tm.ReadDIV())
	tm.WriteDIV(0xFF)
	require.Zero(t, tm.ReadDIV())
}

func TestTIMA_IncrementsEvery16CyclesAtFreq01(t *testing.T) {
	tm, _ := newTestTimer()
	tm.WriteTAC(0x05) // enable, freq select 01 -> bit 3 -> 16 cycles
	tm.Step(16)
	require.Equal(t, byte(1), tm.ReadTIMA())
	tm.Step(16 * 9)
	require.Equal(t, byte(10), tm.ReadTIMA())
}

func TestTIMA_OverflowReloadsFromTMAAndInterrupts(t *testing.T) {
	tm, fired := newTestTimer()
	tm.WriteTAC(0x05)
	tm.WriteTMA(0x42)
	tm.WriteTIMA(0xFF)
	tm.Step(16)
	require.Equal(t, byte(0x42), tm.ReadTIMA())
	require.Equal(t, 1, *fired)
}

func TestDIV_WriteFallingEdgeIncrementsTIMA(t *testing.T) {
	tm, _ := newTestTimer()
	tm.WriteTAC(0x05) // bit 3 selected
	tm.Step(8)        // internalCounter = 8, bit3 = 1
	require.True(t, tm.signal())
	tm.WriteTIMA(0x10)
	tm.WriteDIV(0) // resets counter to 0, signal goes high->low: extra increment
	require.Equal(t, byte(0x11), tm.ReadTIMA())
}

func TestTAC_WriteFallingEdgeIncrementsTIMA(t *testing.T) {
	tm, _ := newTestTimer()
	tm.WriteTAC(0x05) // enable + bit3
	tm.Step(8)        // counter=8 -> bit3=1
	require.True(t, tm.signal())
	tm.WriteTIMA(0x20)
	tm.WriteTAC(0x06) // switch to bit5 selection, still enabled; bit5 of 8 is 0 -> falling edge
	require.Equal(t, byte(0x21), tm.ReadTIMA())
}

func TestTAC_DisableStopsIncrementing(t *testing.T) {
	tm, _ := newTestTimer()
	tm.Step(1000) // disabled: no TIMA movement regardless of DIV activity
	require.Zero(t, tm.ReadTIMA())
}

func TestReadTAC_UnusedBitsReadAsOne(t *testing.T) {
	tm, _ := newTestTimer()
	tm.WriteTAC(0x02)
	require.Equal(t, byte(0xFA), tm.ReadTAC())
}

func TestReset_RestoresPostPowerState(t *testing.T) {
	tm, _ := newTestTimer()
	tm.WriteTAC(0x07)
	tm.WriteTMA(0x55)
	tm.WriteTIMA(0x66)
	tm.Step(5000)
	tm.Reset()
	require.Zero(t, tm.ReadDIV())
	require.Zero(t, tm.ReadTIMA())
	require.Zero(t, tm.ReadTMA())
	require.Equal(t, byte(0xF8), tm.ReadTAC())
}
