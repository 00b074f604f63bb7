package memory

// oamDMA implements the OAM DMA engine armed by writes to the DMA register
// (0xFF46). Real hardware takes 2 M-cycles before the transfer proper
// starts, then copies one byte per M-cycle for 160 M-cycles; for the whole
// duration (startup delay included) the DMA unit has sole access to the
// internal bus, so CPU reads of the OAM range return 0xFF.
type oamDMA struct {
	active  bool
	source  uint16
	elapsed int // M-cycles since Start, including the startup delay
}

const (
	oamDMAStartupMCycles = 2
	oamDMATransferBytes  = 160
	oamDMATotalMCycles   = oamDMAStartupMCycles + oamDMATransferBytes
)

// Start arms a transfer from source page value<<8. Writing DMA again before
// a previous transfer finished abandons it and begins a fresh one, matching
// hardware.
func (d *oamDMA) Start(value uint8) {
	d.active = true
	d.source = uint16(value) << 8
	d.elapsed = 0
}

// Tick advances the transfer by tCycles T-cycles, copying one OAM byte per
// elapsed M-cycle once the startup delay has passed.
func (d *oamDMA) Tick(tCycles int, read func(uint16) byte, write func(uint16, byte)) {
	if !d.active {
		return
	}
	for mCycles := tCycles / 4; mCycles > 0 && d.active; mCycles-- {
		if d.elapsed >= oamDMAStartupMCycles {
			byteIdx := uint16(d.elapsed - oamDMAStartupMCycles)
			write(0xFE00+byteIdx, read(d.source+byteIdx))
		}
		d.elapsed++
		if d.elapsed >= oamDMATotalMCycles {
			d.active = false
		}
	}
}

// BlocksOAM reports whether CPU reads of the OAM range should currently
// return 0xFF in place of their actual contents.
func (d *oamDMA) BlocksOAM() bool {
	return d.active
}
