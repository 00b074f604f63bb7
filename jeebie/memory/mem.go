package memory

import (
	"fmt"
	"log/slog"

	"github.com/dmgcore/gbcore/jeebie/addr"
	"github.com/dmgcore/gbcore/jeebie/audio"
	"github.com/dmgcore/gbcore/jeebie/bit"
	"github.com/dmgcore/gbcore/jeebie/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionUnused
	regionIO
	regionHRAM
)

// SerialPort is the minimal interface for a serial device connected to SB/SC.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// MMU allows access to all memory mapped I/O and data/registers
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	memory    []byte
	APU       *audio.APU
	regionMap [256]memRegion

	joypad *Joypad

	serial SerialPort
	timer  Timer

	dma  oamDMA
	hdma hdma

	bootROM        []byte
	bootROMEnabled bool

	cgbMode         bool
	currentVRAMBank uint8
	vramBanks       [2][0x2000]byte
	currentWRAMBank uint8
	wramBanks       [8][0x1000]byte

	bgPalette  cgbPaletteRAM
	objPalette cgbPaletteRAM

	speedSwitchArmed bool
	doubleSpeed      bool
}

// New creates a new memory unity with default data, i.e. nothing cartridge loaded.
// Equivalent to turning on a Gameboy without a cartridge in.
func New() *MMU {
	mmu := &MMU{
		memory:          make([]byte, 0x10000),
		cart:            NewCartridge(),
		APU:             audio.New(),
		currentWRAMBank: 1,
	}
	mmu.joypad = NewJoypad(func() { mmu.RequestInterrupt(addr.JoypadInterrupt) })
	mmu.serial = serial.NewLogSink(func() { mmu.RequestInterrupt(addr.SerialInterrupt) })
	mmu.timer.TimerInterruptHandler = func() { mmu.RequestInterrupt(addr.TimerInterrupt) }
	initRegionMap(mmu)
	return mmu
}

// Tick advances any i/o that needs it: the timer, serial port, and any OAM
// DMA transfer currently in flight.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
	m.dma.Tick(cycles,
		func(a uint16) byte { return m.Read(a) },
		func(a uint16, v byte) { m.memory[a] = v },
	)
}

// OnPPUHBlank is called by the PPU driver once per HBlank period; it
// advances any in-flight HBlank-mode HDMA transfer by one 16-byte block.
func (m *MMU) OnPPUHBlank() {
	m.hdma.OnHBlank(func(src, dst uint16) { m.Write(dst, m.Read(src)) })
}

// SetTimerSeed initializes the internal timer divider seed and DIV register.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

// NewWithCartridge creates a new memory unit with the provided cartridge data
// loaded, equivalent to turning on a Gameboy with a cartridge in. It fails
// if the cartridge requests an MBC this core doesn't implement.
func NewWithCartridge(cart *Cartridge) (*MMU, error) {
	mmu := New()
	mmu.cart = cart
	mmu.SetCGBMode(cart.IsColor())

	switch cart.mbcType {
	case NoMBCType:
		mmu.mbc = NewNoMBC(cart.data)
	case MBC1Type:
		mmu.mbc = NewMBC1(cart.data, cart.hasBattery, cart.ramBankCount)
	case MBC1MultiType:
		mmu.mbc = NewMBC1(cart.data, cart.hasBattery, cart.ramBankCount) // FIXME: add support for multicart
	case MBC2Type:
		m := NewMBC2(cart.data)
		m.hasBattery = cart.hasBattery
		mmu.mbc = m
	case MBC3Type:
		m := NewMBC3(cart.data, cart.ramBankCount, cart.hasRTC, nil)
		m.hasBattery = cart.hasBattery
		mmu.mbc = m
	case MBC5Type:
		m := NewMBC5(cart.data, cart.hasRumble, cart.ramBankCount)
		m.hasBattery = cart.hasBattery
		mmu.mbc = m
	default:
		return nil, fmt.Errorf("unsupported MBC type: %d", cart.mbcType)
	}

	return mmu, nil
}

// SaveRAM returns the battery-backed external RAM contents for the loaded
// cartridge, or nil if the cartridge has no battery-backed save to persist.
func (m *MMU) SaveRAM() []byte {
	if m.mbc == nil || !m.mbc.SupportsSaves() {
		return nil
	}
	return m.mbc.Save()
}

// LoadRAM restores battery-backed external RAM contents previously produced
// by SaveRAM, e.g. from a .sav file written alongside the ROM.
func (m *MMU) LoadRAM(data []byte) error {
	if m.mbc == nil || !m.mbc.SupportsSaves() {
		return fmt.Errorf("cartridge does not support battery-backed saves")
	}
	return m.mbc.Load(data)
}

func initRegionMap(m *MMU) {
	// ROM: 0x0000-0x7FFF
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	// VRAM: 0x8000-0x9FFF
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	// External RAM: 0xA000-0xBFFF
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	// Work RAM: 0xC000-0xDFFF
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	// Echo RAM: 0xE000-0xFDFF
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM: 0xFE00-0xFE9F, Unused: 0xFEA0-0xFEFF
	m.regionMap[0xFE] = regionOAM
	// IO + HRAM: 0xFF00-0xFFFF
	m.regionMap[0xFF] = regionIO
}

// RequestInterrupt sets the interrupt flag (IF register) of the chosen interrupt to 1.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	interruptFlags := m.Read(addr.IF)

	var bitPos uint8
	switch interrupt {
	case addr.VBlankInterrupt:
		bitPos = 0
	case addr.LCDSTATInterrupt:
		bitPos = 1
	case addr.TimerInterrupt:
		bitPos = 2
	case addr.SerialInterrupt:
		bitPos = 3
	case addr.JoypadInterrupt:
		bitPos = 4
	default:
		panic(fmt.Sprintf("Unknown interrupt: 0x%02X", uint8(interrupt)))
	}

	newFlags := bit.Set(bitPos, interruptFlags)

	m.Write(addr.IF, newFlags)
}

func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	value := m.Read(address)
	if set {
		value = bit.Set(index, value)
	} else {
		value = bit.Reset(index, value)
	}
	m.Write(address, value)
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM:
		if m.bootROMOverlay(address) {
			return m.bootROM[address]
		}
		if m.mbc == nil {
			slog.Warn("Reading from ROM with no cartridge", "addr", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		return m.mbc.Read(address)
	case regionExtRAM:
		if m.mbc == nil {
			slog.Warn("Reading from external RAM with no cartridge", "addr", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		return m.mbc.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		if address >= 0xFEA0 {
			return 0x00
		}
		if m.dma.BlocksOAM() {
			return 0xFF
		}
		return m.memory[address]
	case regionIO:
		return m.readIO(address)
	default:
		panic(fmt.Sprintf("Attempted read at unmapped address: 0x%X", address))
	}
}

func (m *MMU) readIO(address uint16) byte {
	switch address {
	case addr.P1:
		return m.joypad.Read()
	case addr.SB, addr.SC:
		return m.serial.Read(address)
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		return m.timer.Read(address)
	case addr.KEY1:
		return m.readKEY1()
	case addr.VBK:
		return m.readVBK()
	case addr.HDMA5:
		return m.hdma.readControl()
	case addr.BCPS:
		return m.bgPalette.readSpec()
	case addr.BCPD:
		return m.bgPalette.readData()
	case addr.OCPS:
		return m.objPalette.readSpec()
	case addr.OCPD:
		return m.objPalette.readData()
	case addr.SVBK:
		return m.readSVBK()
	case addr.IF:
		// Just in case, we always read the upper 3 bits of IF as 1.
		// They're not used, but have caused me some headaches when checking for
		// when the halt bug triggers (IF != 0).
		return m.memory[address] | 0xE0
	}

	if address >= addr.AudioStart && address <= addr.AudioEnd {
		return m.APU.ReadRegister(address)
	}
	if address == addr.PCM12 || address == addr.PCM34 {
		return m.APU.ReadRegister(address)
	}

	// HRAM (0xFF80+) and any other IO register fall back to plain storage.
	return m.memory[address]
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		if m.mbc == nil {
			slog.Warn("Writing to ROM with no cartridge", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.mbc.Write(address, value)
	case regionVRAM:
		m.memory[address] = value
	case regionExtRAM:
		if m.mbc == nil {
			slog.Warn("Writing to external RAM with no cartridge", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.mbc.Write(address, value)
	case regionWRAM:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		m.memory[address] = value
	case regionIO:
		m.writeIO(address, value)
	default:
		panic(fmt.Sprintf("Attempted write at unmapped address: 0x%X", address))
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch address {
	case addr.P1:
		m.joypad.Write(value)
		return
	case addr.SB, addr.SC:
		m.serial.Write(address, value)
		return
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		m.timer.Write(address, value)
		return
	case addr.IF:
		// This goddamn register has its upper 3 bits always set as 1...
		// Beware if you're trying to match halt bug behavior.
		m.memory[address] = value | 0xE0
		return
	case addr.DMA:
		m.dma.Start(value)
		m.memory[address] = value
		return
	case addr.KEY1:
		m.writeKEY1(value)
		return
	case addr.VBK:
		m.writeVBK(value)
		return
	case addr.BootROMDisable:
		m.writeBootROMDisable(value)
		return
	case addr.HDMA1:
		m.hdma.writeSourceHigh(value)
		return
	case addr.HDMA2:
		m.hdma.writeSourceLow(value)
		return
	case addr.HDMA3:
		m.hdma.writeDestHigh(value)
		return
	case addr.HDMA4:
		m.hdma.writeDestLow(value)
		return
	case addr.HDMA5:
		m.hdma.writeControl(value, func(src, dst uint16) { m.Write(dst, m.Read(src)) })
		return
	case addr.BCPS:
		m.bgPalette.writeSpec(value)
		return
	case addr.BCPD:
		m.bgPalette.writeData(value)
		return
	case addr.OCPS:
		m.objPalette.writeSpec(value)
		return
	case addr.OCPD:
		m.objPalette.writeData(value)
		return
	case addr.SVBK:
		m.writeSVBK(value)
		return
	}

	if address >= addr.AudioStart && address <= addr.AudioEnd {
		m.APU.WriteRegister(address, value)
		return
	}

	// HRAM (0xFF80+) and any other IO register fall back to plain storage.
	m.memory[address] = value
}

// HandleKeyPress forwards a key-down event to the joypad and requests the
// joypad interrupt if that press pulled low a currently-selected line.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	m.joypad.Press(key)
}

// HandleKeyRelease forwards a key-up event to the joypad.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.Release(key)
}
