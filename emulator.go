// Package emulator is the Host API: it wires CPU, MMU, Timer, and Serial
// into a single machine and drives the system loop — step the CPU, then
// propagate the cycles it consumed to Timer and Serial.
package emulator

import (
	"github.com/sirupsen/logrus"

	"github.com/palebit/dmgcore/internal/cart"
	"github.com/palebit/dmgcore/internal/cpu"
	"github.com/palebit/dmgcore/internal/mmu"
	"github.com/palebit/dmgcore/internal/serial"
	"github.com/palebit/dmgcore/internal/timer"
)

// Config holds the settings that affect emulation behavior.
type Config struct {
	Trace  bool // log each CPU.Step via Logger
	Logger *logrus.Logger
}

// Machine is a DMG core: CPU + MMU (which itself owns Timer, Serial, and
// memory) with no PPU, APU, or UI attached.
type Machine struct {
	cfg    Config
	logger *logrus.Logger

	mmu *mmu.MMU
	cpu *cpu.CPU

	cycles  uint64
	running bool
}

// New constructs a Machine. Call LoadCartridge before Start/Step.
func New(cfg Config) *Machine {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	m := &Machine{cfg: cfg, logger: logger}
	m.mmu = mmu.New(logger)
	m.cpu = cpu.New(m.mmu)
	m.cpu.Reset(false)
	return m
}

// LoadCartridge parses rom and wires the resulting Cartridge into the MMU.
func (m *Machine) LoadCartridge(rom []byte) error {
	c, err := cart.New(rom)
	if err != nil {
		return err
	}
	m.mmu.LoadCartridge(c)
	m.cpu.Reset(false)
	return nil
}

// LoadBootROM installs a 256-byte boot ROM overlay and resets the CPU to
// the zeroed, PC=0 boot-ROM-present state.
func (m *Machine) LoadBootROM(data [256]byte) error {
	if err := m.mmu.LoadBootROM(data[:]); err != nil {
		return err
	}
	m.cpu.Reset(true)
	return nil
}

// SetPostBootState skips the boot ROM (if any) straight to the documented
// post-boot hardware state, for hosts that don't ship a boot ROM image.
func (m *Machine) SetPostBootState() {
	m.mmu.SetPostBootState()
	m.cpu.Reset(false)
}

// Reset restores MMU, peripherals, and CPU to their power-on/boot-overlay
// state, matching whatever boot ROM is (or isn't) currently loaded.
func (m *Machine) Reset() {
	m.mmu.Reset()
	m.cpu.Reset(m.mmu.Snapshot().BootROMEnabled)
	m.cycles = 0
}

// Start marks the machine as running; Step is a no-op while stopped.
func (m *Machine) Start() { m.running = true }

// Stop halts the system loop; Step returns 0 until Start is called again.
func (m *Machine) Stop() { m.running = false }

// Step executes one CPU instruction (fetch/execute, interrupt dispatch, or
// HALT/STOP idle), propagates the consumed T-cycles to Timer and Serial in
// that order, and returns the cycle count. Returns 0 if the machine isn't
// running.
func (m *Machine) Step() uint32 {
	if !m.running {
		return 0
	}
	cycles := m.cpu.Step()
	m.mmu.Timer().Step(cycles)
	m.mmu.Serial().Step(cycles)
	m.cycles += uint64(cycles)
	if m.cfg.Trace && m.logger != nil {
		m.logger.WithField("cycles", cycles).Trace(m.cpu.GetDebugInfo())
	}
	return uint32(cycles)
}

// CycleCount returns the cumulative T-cycles consumed since construction
// or the last Reset.
func (m *Machine) CycleCount() uint64 { return m.cycles }

// MMU exposes the system bus for inspection/testing.
func (m *Machine) MMU() *mmu.MMU { return m.mmu }

// CPU exposes the SM83 interpreter for inspection/testing.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Timer exposes the hardware timer.
func (m *Machine) Timer() *timer.Timer { return m.mmu.Timer() }

// Serial exposes the serial port.
func (m *Machine) Serial() *serial.Serial { return m.mmu.Serial() }
