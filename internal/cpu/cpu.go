// Package cpu implements the SM83 fetch-decode-execute interpreter: the
// full unprefixed and CB-prefixed opcode tables, flag arithmetic,
// interrupt dispatch, and HALT/STOP.
package cpu

import (
	"fmt"

	"github.com/palebit/dmgcore/internal/mmu"
)

// CPU holds the SM83 register file and drives instruction execution
// against an MMU. It never ticks Timer or Serial itself — per the
// system loop contract, the host (the root emulator package here) reads
// the cycle count Step returns and propagates it.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	IME     bool
	halted  bool
	stopped bool

	// eiDelay counts down the Step() calls remaining before a pending EI
	// takes effect: EI sets it to 2, the end of EI's own Step brings it to
	// 1, and the end of the following instruction's Step brings it to 0
	// and flips IME true; 0 means nothing is pending. This is what gives
	// "EI; RET" one full instruction of masked interrupts.
	eiDelay int

	mmu *mmu.MMU
}

// New creates a CPU wired to m, with SP/PC in their power-on default
// (callers should call Reset to load either post-boot or boot-ROM-present
// register state before running).
func New(m *mmu.MMU) *CPU {
	return &CPU{mmu: m, SP: 0xFFFE, PC: 0x0000}
}

// MMU exposes the underlying bus for tests/tools.
func (c *CPU) MMU() *mmu.MMU { return c.mmu }

// GetPC returns the program counter.
func (c *CPU) GetPC() uint16 { return c.PC }

// IsHalted reports whether the CPU is in HALT, waiting for IF&IE != 0.
func (c *CPU) IsHalted() bool { return c.halted }

// IsStopped reports whether the CPU is in STOP (deep halt; only a host
// reset clears it).
func (c *CPU) IsStopped() bool { return c.stopped }

// GetDebugInfo renders a one-line trace of CPU state, in the same shape
// as a disassembler trace line: "pc=0x.... op=0x.. a=.. f=.. ...".
func (c *CPU) GetDebugInfo() string {
	op := byte(0xFF)
	if c.mmu != nil {
		op = c.mmu.Read(c.PC)
	}
	return fmt.Sprintf(
		"pc=0x%04X op=0x%02X a=0x%02X f=0x%02X bc=0x%04X de=0x%04X hl=0x%04X sp=0x%04X ime=%v halted=%v stopped=%v",
		c.PC, op, c.A, c.F, c.getBC(), c.getDE(), c.getHL(), c.SP, c.IME, c.halted, c.stopped,
	)
}

// Reset loads post-boot register values (A=01, F=B0, BC=0013, DE=00D8,
// HL=014D, SP=FFFE, PC=0100) when no boot ROM is installed, or zeroes
// everything with PC=0 when one is, per the boot-overlay handoff.
func (c *CPU) Reset(bootROMInstalled bool) {
	if bootROMInstalled {
		c.A, c.F = 0, 0
		c.B, c.C = 0, 0
		c.D, c.E = 0, 0
		c.H, c.L = 0, 0
		c.SP = 0
		c.PC = 0x0000
	} else {
		c.A, c.F = 0x01, 0xB0
		c.B, c.C = 0x00, 0x13
		c.D, c.E = 0x00, 0xD8
		c.H, c.L = 0x01, 0x4D
		c.SP = 0xFFFE
		c.PC = 0x0100
	}
	c.IME = false
	c.halted = false
	c.stopped = false
	c.eiDelay = 0
}

const (
	flagZ byte = 1 << 7
	flagN byte = 1 << 6
	flagH byte = 1 << 5
	flagC byte = 1 << 4
)

func (c *CPU) setZNHC(z, n, h, carry bool) {
	var f byte
	if z {
		f |= flagZ
	}
	if n {
		f |= flagN
	}
	if h {
		f |= flagH
	}
	if carry {
		f |= flagC
	}
	c.F = f
}

func (c *CPU) add8(a, b byte) (res byte, z, n, h, cy bool) {
	r := uint16(a) + uint16(b)
	res = byte(r)
	z, n = res == 0, false
	h = ((a & 0x0F) + (b & 0x0F)) > 0x0F
	cy = r > 0xFF
	return
}

func (c *CPU) adc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := uint16(a) + uint16(b) + uint16(ci)
	res = byte(r)
	z, n = res == 0, false
	h = ((a & 0x0F) + (b & 0x0F) + ci) > 0x0F
	cy = r > 0xFF
	return
}

func (c *CPU) sub8(a, b byte) (res byte, z, n, h, cy bool) {
	r := int16(a) - int16(b)
	res = byte(r)
	z, n = res == 0, true
	h = (a & 0x0F) < (b & 0x0F)
	cy = int16(a) < int16(b)
	return
}

func (c *CPU) sbc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := int16(a) - int16(b) - int16(ci)
	res = byte(r)
	z, n = res == 0, true
	h = (a & 0x0F) < ((b & 0x0F) + ci)
	cy = int16(a) < int16(b)+int16(ci)
	return
}

func (c *CPU) and8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a & b
	z, n, h, cy = res == 0, false, true, false
	return
}

func (c *CPU) xor8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a ^ b
	z, n, h, cy = res == 0, false, false, false
	return
}

func (c *CPU) or8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a | b
	z, n, h, cy = res == 0, false, false, false
	return
}

func (c *CPU) cp8(a, b byte) (z, n, h, cy bool) {
	_, z, n, h, cy = c.sub8(a, b)
	return
}

func (c *CPU) read8(addr uint16) byte     { return c.mmu.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.mmu.Write(addr, v) }

func (c *CPU) fetch8() byte {
	b := c.read8(c.PC)
	c.PC++
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | (hi << 8)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return lo | (hi << 8)
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v&0x00FF))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) getAF() uint16  { return uint16(c.A)<<8 | uint16(c.F&0xF0) }
func (c *CPU) setAF(v uint16) { c.A = byte(v >> 8); c.F = byte(v) & 0xF0 }
func (c *CPU) getBC() uint16  { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) { c.B = byte(v >> 8); c.C = byte(v) }
func (c *CPU) getDE() uint16  { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) { c.D = byte(v >> 8); c.E = byte(v) }
func (c *CPU) getHL() uint16  { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) { c.H = byte(v >> 8); c.L = byte(v) }

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

// serviceInterrupt checks IE&IF, and if any bit is pending, dispatches
// the highest-priority one (VBlank=0 .. Joypad=4): clears IME, clears
// that IF bit, pushes PC, jumps to the vector, and costs 20 T-cycles. It
// returns 0 when nothing is pending.
func (c *CPU) serviceInterrupt() int {
	pending := c.mmu.IE() & c.mmu.IF()
	if pending == 0 {
		return 0
	}
	var bit uint
	for bit = 0; bit < 5; bit++ {
		if pending&(1<<bit) != 0 {
			break
		}
	}
	c.mmu.ClearIF(int(bit))
	c.halted = false
	c.IME = false
	c.push16(c.PC)
	c.PC = 0x40 + uint16(bit)*8
	return 20
}

// Step executes one instruction (or services a pending interrupt, or
// idles one cycle in HALT/STOP) and returns the consumed T-cycles.
func (c *CPU) Step() (cycles int) {
	defer func() {
		if c.eiDelay > 0 {
			c.eiDelay--
			if c.eiDelay == 0 {
				c.IME = true
			}
		}
	}()

	if c.stopped {
		return 4
	}

	if c.halted {
		if c.IME {
			if cyc := c.serviceInterrupt(); cyc != 0 {
				return cyc
			}
			return 4 // still halted, nothing pending
		}
		if (c.mmu.IF() & c.mmu.IE()) != 0 {
			c.halted = false
		} else {
			return 4
		}
	}

	if c.IME {
		if cyc := c.serviceInterrupt(); cyc != 0 {
			return cyc
		}
	}

	op := c.fetch8()
	return c.execute(op)
}

func (c *CPU) execute(op byte) int {
	switch op {
	case 0x00: // NOP
		return 4
	case 0x10: // STOP
		c.fetch8() // STOP's mandatory (usually zero) trailing byte
		c.stopped = true
		return 4

	// LD r,d8
	case 0x06:
		c.B = c.fetch8()
		return 8
	case 0x0E:
		c.C = c.fetch8()
		return 8
	case 0x16:
		c.D = c.fetch8()
		return 8
	case 0x1E:
		c.E = c.fetch8()
		return 8
	case 0x26:
		c.H = c.fetch8()
		return 8
	case 0x2E:
		c.L = c.fetch8()
		return 8
	case 0x3E:
		c.A = c.fetch8()
		return 8

	// LD r,r' and LD (HL),r / LD r,(HL) (0x76 = HALT, handled below)
	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x47,
		0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4F,
		0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x57,
		0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5F,
		0x60, 0x61, 0x62, 0x63, 0x64, 0x65, 0x67,
		0x68, 0x69, 0x6A, 0x6B, 0x6C, 0x6D, 0x6F,
		0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x77,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7F:
		d := (op >> 3) & 7
		s := op & 7
		val := c.getReg8(s)
		c.setReg8(d, val)
		if d == 6 || s == 6 {
			return 8
		}
		return 4

	// 16-bit loads
	case 0x01:
		c.setBC(c.fetch16())
		return 12
	case 0x11:
		c.setDE(c.fetch16())
		return 12
	case 0x21:
		c.setHL(c.fetch16())
		return 12
	case 0x31:
		c.SP = c.fetch16()
		return 12
	case 0x08: // LD (a16),SP
		addr := c.fetch16()
		c.write16(addr, c.SP)
		return 20

	case 0x36: // LD (HL),d8
		c.write8(c.getHL(), c.fetch8())
		return 12

	case 0x02:
		c.write8(c.getBC(), c.A)
		return 8
	case 0x12:
		c.write8(c.getDE(), c.A)
		return 8
	case 0x0A:
		c.A = c.read8(c.getBC())
		return 8
	case 0x1A:
		c.A = c.read8(c.getDE())
		return 8

	case 0x22: // LD (HL+),A
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl + 1)
		return 8
	case 0x2A: // LD A,(HL+)
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl + 1)
		return 8
	case 0x32: // LD (HL-),A
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl - 1)
		return 8
	case 0x3A: // LD A,(HL-)
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl - 1)
		return 8

	case 0xE0: // LDH (a8),A
		n := uint16(c.fetch8())
		c.write8(0xFF00+n, c.A)
		return 12
	case 0xF0: // LDH A,(a8)
		n := uint16(c.fetch8())
		c.A = c.read8(0xFF00 + n)
		return 12
	case 0xE2: // LD (C),A
		c.write8(0xFF00+uint16(c.C), c.A)
		return 8
	case 0xF2: // LD A,(C)
		c.A = c.read8(0xFF00 + uint16(c.C))
		return 8

	case 0x07: // RLCA
		cval := (c.A >> 7) & 1
		c.A = (c.A << 1) | cval
		c.setZNHC(false, false, false, cval == 1)
		return 4
	case 0x0F: // RRCA
		cval := c.A & 1
		c.A = (c.A >> 1) | (cval << 7)
		c.setZNHC(false, false, false, cval == 1)
		return 4
	case 0x17: // RLA
		cval := (c.A >> 7) & 1
		carry := c.carryIn()
		c.A = (c.A << 1) | carry
		c.setZNHC(false, false, false, cval == 1)
		return 4
	case 0x1F: // RRA
		cval := c.A & 1
		carry := c.carryIn()
		c.A = (c.A >> 1) | (carry << 7)
		c.setZNHC(false, false, false, cval == 1)
		return 4
	case 0x27: // DAA
		a := c.A
		cf := (c.F & flagC) != 0
		if (c.F & flagN) == 0 {
			if cf || a > 0x99 {
				a += 0x60
				cf = true
			}
			if (c.F&flagH) != 0 || (a&0x0F) > 9 {
				a += 0x06
			}
		} else {
			if cf {
				a -= 0x60
			}
			if (c.F & flagH) != 0 {
				a -= 0x06
			}
		}
		c.A = a
		c.setZNHC(c.A == 0, (c.F&flagN) != 0, false, cf)
		return 4
	case 0x2F: // CPL
		c.A = ^c.A
		c.F = (c.F & (flagZ | flagC)) | flagN | flagH
		return 4
	case 0x37: // SCF
		c.F = (c.F & flagZ) | flagC
		return 4
	case 0x3F: // CCF
		newC := (c.F & flagC) == 0
		c.F = (c.F & flagZ)
		if newC {
			c.F |= flagC
		}
		return 4

	case 0x04: // INC B
		c.B, c.F = c.inc8(c.B)
		return 4
	case 0x0C:
		c.C, c.F = c.inc8(c.C)
		return 4
	case 0x14:
		c.D, c.F = c.inc8(c.D)
		return 4
	case 0x1C:
		c.E, c.F = c.inc8(c.E)
		return 4
	case 0x24:
		c.H, c.F = c.inc8(c.H)
		return 4
	case 0x2C:
		c.L, c.F = c.inc8(c.L)
		return 4
	case 0x3C:
		c.A, c.F = c.inc8(c.A)
		return 4
	case 0x34: // INC (HL)
		addr := c.getHL()
		v, f := c.inc8(c.read8(addr))
		c.write8(addr, v)
		c.F = f
		return 12

	case 0x05: // DEC B
		c.B, c.F = c.dec8(c.B)
		return 4
	case 0x0D:
		c.C, c.F = c.dec8(c.C)
		return 4
	case 0x15:
		c.D, c.F = c.dec8(c.D)
		return 4
	case 0x1D:
		c.E, c.F = c.dec8(c.E)
		return 4
	case 0x25:
		c.H, c.F = c.dec8(c.H)
		return 4
	case 0x2D:
		c.L, c.F = c.dec8(c.L)
		return 4
	case 0x3D:
		c.A, c.F = c.dec8(c.A)
		return 4
	case 0x35: // DEC (HL)
		addr := c.getHL()
		v, f := c.dec8(c.read8(addr))
		c.write8(addr, v)
		c.F = f
		return 12

	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87:
		r, z, n, h, cy := c.add8(c.A, c.aluSrc(op))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return c.aluCycles(op)
	case 0x88, 0x89, 0x8A, 0x8B, 0x8C, 0x8D, 0x8E, 0x8F:
		r, z, n, h, cy := c.adc8(c.A, c.aluSrc(op), (c.F&flagC) != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return c.aluCycles(op)
	case 0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97:
		r, z, n, h, cy := c.sub8(c.A, c.aluSrc(op))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return c.aluCycles(op)
	case 0x98, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9E, 0x9F:
		r, z, n, h, cy := c.sbc8(c.A, c.aluSrc(op), (c.F&flagC) != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return c.aluCycles(op)
	case 0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7:
		r, z, n, h, cy := c.and8(c.A, c.aluSrc(op))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return c.aluCycles(op)
	case 0xA8, 0xA9, 0xAA, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF:
		r, z, n, h, cy := c.xor8(c.A, c.aluSrc(op))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return c.aluCycles(op)
	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7:
		r, z, n, h, cy := c.or8(c.A, c.aluSrc(op))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return c.aluCycles(op)
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		z, n, h, cy := c.cp8(c.A, c.aluSrc(op))
		c.setZNHC(z, n, h, cy)
		return c.aluCycles(op)

	// ALU immediate
	case 0xC6:
		r, z, n, h, cy := c.add8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xCE:
		r, z, n, h, cy := c.adc8(c.A, c.fetch8(), (c.F&flagC) != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xD6:
		r, z, n, h, cy := c.sub8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xDE:
		r, z, n, h, cy := c.sbc8(c.A, c.fetch8(), (c.F&flagC) != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xE6:
		r, z, n, h, cy := c.and8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xEE:
		r, z, n, h, cy := c.xor8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xF6:
		r, z, n, h, cy := c.or8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xFE:
		z, n, h, cy := c.cp8(c.A, c.fetch8())
		c.setZNHC(z, n, h, cy)
		return 8

	case 0xEA: // LD (a16),A
		c.write8(c.fetch16(), c.A)
		return 16
	case 0xFA: // LD A,(a16)
		c.A = c.read8(c.fetch16())
		return 16

	case 0xC3: // JP a16
		c.PC = c.fetch16()
		return 16
	case 0xE9: // JP (HL)
		c.PC = c.getHL()
		return 4
	case 0x18: // JR r8
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 12

	case 0x20: // JR NZ
		return c.jrCond(op, (c.F&flagZ) == 0)
	case 0x28: // JR Z
		return c.jrCond(op, (c.F&flagZ) != 0)
	case 0x30: // JR NC
		return c.jrCond(op, (c.F&flagC) == 0)
	case 0x38: // JR C
		return c.jrCond(op, (c.F&flagC) != 0)

	case 0xCD: // CALL a16
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	case 0xC9: // RET
		c.PC = c.pop16()
		return 16
	case 0xD9: // RETI
		c.PC = c.pop16()
		c.IME = true
		return 16

	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST t
		c.push16(c.PC)
		c.PC = uint16(op &^ 0xC7)
		return 16

	case 0xC4: // CALL NZ
		return c.callCond(op, (c.F&flagZ) == 0)
	case 0xCC: // CALL Z
		return c.callCond(op, (c.F&flagZ) != 0)
	case 0xD4: // CALL NC
		return c.callCond(op, (c.F&flagC) == 0)
	case 0xDC: // CALL C
		return c.callCond(op, (c.F&flagC) != 0)

	case 0xC0: // RET NZ
		return c.retCond((c.F & flagZ) == 0)
	case 0xC8: // RET Z
		return c.retCond((c.F & flagZ) != 0)
	case 0xD0: // RET NC
		return c.retCond((c.F & flagC) == 0)
	case 0xD8: // RET C
		return c.retCond((c.F & flagC) != 0)

	case 0xC2: // JP NZ,a16
		return c.jpCond((c.F & flagZ) == 0)
	case 0xCA: // JP Z,a16
		return c.jpCond((c.F & flagZ) != 0)
	case 0xD2: // JP NC,a16
		return c.jpCond((c.F & flagC) == 0)
	case 0xDA: // JP C,a16
		return c.jpCond((c.F & flagC) != 0)

	case 0x03:
		c.setBC(c.getBC() + 1)
		return 8
	case 0x13:
		c.setDE(c.getDE() + 1)
		return 8
	case 0x23:
		c.setHL(c.getHL() + 1)
		return 8
	case 0x33:
		c.SP++
		return 8
	case 0x0B:
		c.setBC(c.getBC() - 1)
		return 8
	case 0x1B:
		c.setDE(c.getDE() - 1)
		return 8
	case 0x2B:
		c.setHL(c.getHL() - 1)
		return 8
	case 0x3B:
		c.SP--
		return 8

	case 0x09: // ADD HL,BC
		c.addHL(c.getBC())
		return 8
	case 0x19: // ADD HL,DE
		c.addHL(c.getDE())
		return 8
	case 0x29: // ADD HL,HL
		c.addHL(c.getHL())
		return 8
	case 0x39: // ADD HL,SP
		c.addHL(c.SP)
		return 8

	case 0xF8: // LD HL,SP+e8
		off := int8(c.fetch8())
		low := byte(c.SP & 0xFF)
		_, _, _, h, cy := c.add8(low, byte(off))
		c.setHL(uint16(int32(int16(c.SP)) + int32(off)))
		c.setZNHC(false, false, h, cy)
		return 12
	case 0xF9: // LD SP,HL
		c.SP = c.getHL()
		return 8
	case 0xE8: // ADD SP,e8
		off := int8(c.fetch8())
		low := byte(c.SP & 0xFF)
		_, _, _, h, cy := c.add8(low, byte(off))
		c.SP = uint16(int32(int16(c.SP)) + int32(off))
		c.setZNHC(false, false, h, cy)
		return 16

	case 0xF3: // DI
		c.IME = false
		c.eiDelay = 0
		return 4
	case 0xFB: // EI
		c.eiDelay = 2
		return 4

	case 0xCB:
		return c.executeCB(c.fetch8())

	case 0xF5:
		c.push16(c.getAF())
		return 16
	case 0xC5:
		c.push16(c.getBC())
		return 16
	case 0xD5:
		c.push16(c.getDE())
		return 16
	case 0xE5:
		c.push16(c.getHL())
		return 16
	case 0xF1:
		c.setAF(c.pop16())
		return 12
	case 0xC1:
		c.setBC(c.pop16())
		return 12
	case 0xD1:
		c.setDE(c.pop16())
		return 12
	case 0xE1:
		c.setHL(c.pop16())
		return 12

	case 0x76: // HALT
		c.halted = true
		return 4

	default:
		// Per the sanctioned catch-all for undefined opcodes: execute as
		// a no-op rather than panicking, so a corrupt ROM never crashes a
		// long-running host loop.
		return 4
	}
}

func (c *CPU) executeCB(cb byte) int {
	reg := cb & 7
	opg := (cb >> 6) & 3
	y := (cb >> 3) & 7

	cycles := 8
	if reg == 6 {
		cycles = 16
		if opg == 1 { // BIT b,(HL) is 12 cycles, not 16
			cycles = 12
		}
	}

	v := c.getReg8(reg)
	switch opg {
	case 0: // rotate/shift/swap group
		var cflag byte
		switch y {
		case 0: // RLC
			cflag = (v >> 7) & 1
			v = (v << 1) | cflag
		case 1: // RRC
			cflag = v & 1
			v = (v >> 1) | (cflag << 7)
		case 2: // RL
			cflag = (v >> 7) & 1
			v = (v << 1) | c.carryIn()
		case 3: // RR
			cflag = v & 1
			v = (v >> 1) | (c.carryIn() << 7)
		case 4: // SLA
			cflag = (v >> 7) & 1
			v <<= 1
		case 5: // SRA
			cflag = v & 1
			v = (v >> 1) | (v & 0x80)
		case 6: // SWAP
			v = (v << 4) | (v >> 4)
		case 7: // SRL
			cflag = v & 1
			v >>= 1
		}
		if y == 6 {
			c.setZNHC(v == 0, false, false, false)
		} else {
			c.setZNHC(v == 0, false, false, cflag == 1)
		}
		c.setReg8(reg, v)
	case 1: // BIT y,r
		bit := (v >> y) & 1
		c.F = (c.F & flagC) | flagH
		if bit == 0 {
			c.F |= flagZ
		}
	case 2: // RES y,r
		c.setReg8(reg, v&^(1<<y))
	case 3: // SET y,r
		c.setReg8(reg, v|(1<<y))
	}
	return cycles
}

func (c *CPU) carryIn() byte {
	if (c.F & flagC) != 0 {
		return 1
	}
	return 0
}

func (c *CPU) inc8(v byte) (byte, byte) {
	old := v
	v++
	var f byte
	if v == 0 {
		f |= flagZ
	}
	if (old & 0x0F) == 0x0F {
		f |= flagH
	}
	f |= c.F & flagC
	return v, f
}

func (c *CPU) dec8(v byte) (byte, byte) {
	old := v
	v--
	f := flagN
	if v == 0 {
		f |= flagZ
	}
	if (old & 0x0F) == 0x00 {
		f |= flagH
	}
	f |= c.F & flagC
	return v, f
}

func (c *CPU) addHL(rr uint16) {
	hl := c.getHL()
	r := uint32(hl) + uint32(rr)
	h := ((hl & 0x0FFF) + (rr & 0x0FFF)) > 0x0FFF
	c.setHL(uint16(r))
	c.setZNHC((c.F&flagZ) != 0, false, h, r > 0xFFFF)
}

// getReg8/setReg8 map an opcode's 3-bit register index to B,C,D,E,H,L,
// (HL),A, the canonical SM83 register order.
func (c *CPU) getReg8(idx byte) byte {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.getHL())
	default:
		return c.A
	}
}

func (c *CPU) setReg8(idx byte, v byte) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.getHL(), v)
	default:
		c.A = v
	}
}

func (c *CPU) aluSrc(op byte) byte { return c.getReg8(op & 7) }

func (c *CPU) aluCycles(op byte) int {
	if op&7 == 6 {
		return 8
	}
	return 4
}

func (c *CPU) jrCond(op byte, taken bool) int {
	off := int8(c.fetch8())
	if taken {
		c.PC = uint16(int32(c.PC) + int32(off))
		return 12
	}
	return 8
}

func (c *CPU) jpCond(taken bool) int {
	addr := c.fetch16()
	if taken {
		c.PC = addr
		return 16
	}
	return 12
}

func (c *CPU) callCond(op byte, taken bool) int {
	addr := c.fetch16()
	if taken {
		c.push16(c.PC)
		c.PC = addr
		return 24
	}
	return 12
}

func (c *CPU) retCond(taken bool) int {
	if taken {
		c.PC = c.pop16()
		return 20
	}
	return 8
}
