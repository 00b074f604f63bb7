package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/dmgcore/gbcore/jeebie/memory"
)

func TestCPU_registerPairs(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu)

	cpu.a, cpu.f = 0xAB, 0xF0
	assert.Equal(t, uint16(0xABF0), cpu.getAF())

	cpu.setAF(0xBEEF)
	assert.Equal(t, uint8(0xBE), cpu.a)
	assert.Equal(t, uint8(0xE0), cpu.f, "low nibble of F is always zero")

	cpu.setBC(0xCAFE)
	assert.Equal(t, uint8(0xCA), cpu.b)
	assert.Equal(t, uint8(0xFE), cpu.c)
	assert.Equal(t, uint16(0xCAFE), cpu.getBC())

	cpu.setDE(0x1234)
	assert.Equal(t, uint16(0x1234), cpu.getDE())

	cpu.setHL(0x5678)
	assert.Equal(t, uint16(0x5678), cpu.getHL())
}

func TestCPU_readImmediate(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu)

	cpu.pc = 0xC000
	mmu.Write(0xC000, 0x42)
	mmu.Write(0xC001, 0xCD)
	mmu.Write(0xC002, 0xAB)

	assert.Equal(t, uint8(0x42), cpu.peekImmediate(), "peek should not advance PC")
	assert.Equal(t, uint16(0xC000), cpu.pc)

	assert.Equal(t, uint8(0x42), cpu.readImmediate())
	assert.Equal(t, uint16(0xC001), cpu.pc)

	assert.Equal(t, uint16(0xABCD), cpu.readImmediateWord())
	assert.Equal(t, uint16(0xC003), cpu.pc)
}

func TestCPU_readSignedImmediate(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu)

	cpu.pc = 0xC000
	mmu.Write(0xC000, 0xFE) // -2

	assert.Equal(t, int8(-2), cpu.readSignedImmediate())
	assert.Equal(t, uint16(0xC001), cpu.pc)
}
