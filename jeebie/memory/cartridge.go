package memory

import (
	"fmt"

	"github.com/dmgcore/gbcore/jeebie/util"
)

const titleLength = 11

const (
	entryPointAddress       = 0x100
	logoAddress             = 0x104
	titleAddress            = 0x134
	manufacturerCodeAddress = 0x13F
	cgbFlagAddress          = 0x143
	newLicenseCodeAddress   = 0x144
	sgbFlagAddress          = 0x146
	cartridgeTypeAddress    = 0x147
	romSizeAddress          = 0x148
	ramSizeAddress          = 0x149
	destinationCodeAddress  = 0x14A
	oldLicenseCodeAddress   = 0x14B
	versionNumberAddress    = 0x14C
	headerChecksumAddress   = 0x14D
	globalChecksumAddress   = 0x14E
)

// MBCType identifies which memory bank controller a cartridge header asks for.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC1MultiType
	MBC2Type
	MBC3Type
	MBC5Type
)

// ramBankCounts maps the RAM size header byte (0x149) to a bank count, each
// bank being 8KB. Code 0x01 (2KB) is listed by some docs but never used by
// licensed cartridges, so it's folded into a single bank like code 0x02.
var ramBankCounts = map[uint8]uint8{
	0x00: 0,
	0x01: 1,
	0x02: 1,
	0x03: 4,
	0x04: 16,
	0x05: 8,
}

// Cartridge holds the ROM image and the header fields needed to pick and
// configure the right MBC.
type Cartridge struct {
	data           []byte
	title          string
	headerChecksum uint16
	globalChecksum uint16
	version        uint8
	cartType       uint8
	romSize        uint8
	ramSize        uint8

	cgbFlag byte

	mbcType      MBCType
	hasBattery   bool
	hasRTC       bool
	hasRumble    bool
	ramBankCount uint8
}

// NewCartridge creates an empty cartridge, useful only for debugging purposes.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:    make([]byte, 0x10000),
		mbcType: NoMBCType,
	}
}

// NewCartridgeWithData initializes a new Cartridge from a slice of bytes,
// parsing the header to determine the MBC type and its RAM/battery/RTC/rumble
// configuration. It returns an error - rather than panicking or silently
// guessing - for any header condition that makes the image impossible to
// load safely: too short to contain a header, a ROM length that isn't a
// power of two, an unrecognized RAM size code, or a cartridge type byte this
// core has no MBC implementation for.
func NewCartridgeWithData(bytes []byte) (*Cartridge, error) {
	if len(bytes) <= globalChecksumAddress+1 {
		return nil, fmt.Errorf("malformed cartridge: image too short to contain a header (%d bytes)", len(bytes))
	}
	if len(bytes)&(len(bytes)-1) != 0 {
		return nil, fmt.Errorf("malformed cartridge: ROM length 0x%X is not a power of two", len(bytes))
	}

	titleBytes := bytes[titleAddress : titleAddress+titleLength]

	cart := &Cartridge{
		data:           make([]byte, len(bytes)),
		title:          string(titleBytes),
		headerChecksum: util.CombineBytes(bytes[headerChecksumAddress+1], bytes[headerChecksumAddress]),
		globalChecksum: util.CombineBytes(bytes[globalChecksumAddress+1], bytes[globalChecksumAddress]),
		version:        bytes[versionNumberAddress],
		cartType:       bytes[cartridgeTypeAddress],
		romSize:        bytes[romSizeAddress],
		ramSize:        bytes[ramSizeAddress],
		cgbFlag:        bytes[cgbFlagAddress],
	}

	copy(cart.data, bytes)

	ramBanks, ok := ramBankCounts[cart.ramSize]
	if !ok {
		return nil, fmt.Errorf("malformed cartridge: unrecognized RAM size code 0x%02X at 0x149", cart.ramSize)
	}
	cart.ramBankCount = ramBanks

	if err := cart.parseCartridgeType(); err != nil {
		return nil, err
	}

	return cart, nil
}

// IsColor reports whether the header's CGB flag enables Color-mode hardware
// (0x80 supports both DMG and CGB, 0xC0 requires CGB).
func (c *Cartridge) IsColor() bool {
	return c.cgbFlag == 0x80 || c.cgbFlag == 0xC0
}

// CleanTitle returns the cartridge title with null padding and
// non-printable bytes normalized, suitable for display or for deriving save
// file names.
func (c *Cartridge) CleanTitle() string {
	return cleanGameboyTitle([]byte(c.title))
}

// parseCartridgeType decodes the 0x147 cartridge type byte into an MBC
// selection plus the battery/RTC/rumble feature flags that accompany it. It
// returns an error for any cartridge type byte this core has no MBC
// implementation for, rather than silently falling back to a default.
func (c *Cartridge) parseCartridgeType() error {
	switch c.cartType {
	case 0x00:
		c.mbcType = NoMBCType
	case 0x01:
		c.mbcType = MBC1Type
	case 0x02:
		c.mbcType = MBC1Type
	case 0x03:
		c.mbcType = MBC1Type
		c.hasBattery = true
	case 0x05:
		c.mbcType = MBC2Type
	case 0x06:
		c.mbcType = MBC2Type
		c.hasBattery = true
	case 0x0F:
		c.mbcType = MBC3Type
		c.hasRTC = true
		c.hasBattery = true
	case 0x10:
		c.mbcType = MBC3Type
		c.hasRTC = true
		c.hasBattery = true
	case 0x11:
		c.mbcType = MBC3Type
	case 0x12:
		c.mbcType = MBC3Type
	case 0x13:
		c.mbcType = MBC3Type
		c.hasBattery = true
	case 0x19, 0x1A:
		c.mbcType = MBC5Type
	case 0x1B:
		c.mbcType = MBC5Type
		c.hasBattery = true
	case 0x1C, 0x1D:
		c.mbcType = MBC5Type
		c.hasRumble = true
	case 0x1E:
		c.mbcType = MBC5Type
		c.hasRumble = true
		c.hasBattery = true
	default:
		return fmt.Errorf("malformed cartridge: unsupported cartridge type byte 0x%02X at 0x147", c.cartType)
	}

	// MBC2 carries its own 512x4bit RAM, never external banks.
	if c.mbcType == MBC2Type {
		c.ramBankCount = 0
	}
	return nil
}
