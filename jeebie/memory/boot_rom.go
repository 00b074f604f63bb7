package memory

import "fmt"

// LoadBootROM installs a boot ROM image that overlays the cartridge from
// reset: the DMG overlay covers 0x0000-0x00FF, and the larger CGB overlay
// additionally covers 0x0200-0x08FF (0x0100-0x01FF is always the cartridge
// header, never overlaid, since the boot ROM jumps there to start the
// game). The overlay is permanently disabled the first time a write to the
// boot ROM disable register (0xFF50) sets bit 0; there is no way to
// re-enable it afterwards.
func (m *MMU) LoadBootROM(data []byte) error {
	switch len(data) {
	case 0x100, 0x900:
	default:
		return fmt.Errorf("malformed boot ROM: expected 256 or 2304 bytes, got %d", len(data))
	}
	m.bootROM = make([]byte, len(data))
	copy(m.bootROM, data)
	m.bootROMEnabled = true
	return nil
}

// bootROMOverlay reports whether address currently reads from the boot ROM
// rather than the cartridge.
func (m *MMU) bootROMOverlay(address uint16) bool {
	if !m.bootROMEnabled {
		return false
	}
	if address <= 0x00FF {
		return true
	}
	return len(m.bootROM) == 0x900 && address >= 0x0200 && address <= 0x08FF
}

func (m *MMU) writeBootROMDisable(value uint8) {
	if value&0x01 != 0 {
		m.bootROMEnabled = false
	}
}
