package memory

import "github.com/dmgcore/gbcore/jeebie/bit"

// JoypadKey represents a key on the Gameboy joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Joypad models the P1 register's button matrix. Real hardware exposes two
// 4-bit button groups (d-pad and face buttons) multiplexed onto the low
// nibble of a single register; which group appears is chosen by the two
// selection bits (4-5) the game writes into P1.
type Joypad struct {
	buttons uint8 // low nibble, 1 = released, 0 = pressed (A,B,Select,Start)
	dpad    uint8 // low nibble, 1 = released, 0 = pressed (Right,Left,Up,Down)
	selects uint8 // bits 4-5 as last written to P1

	onFallingEdge func() // fired when a selected line transitions high->low
}

// NewJoypad creates a joypad with every button released. onFallingEdge, if
// non-nil, is invoked whenever a button transition would pull low a line
// that is currently selected, matching the joypad interrupt's trigger.
func NewJoypad(onFallingEdge func()) *Joypad {
	return &Joypad{
		buttons:       0x0F,
		dpad:          0x0F,
		onFallingEdge: onFallingEdge,
	}
}

// Read reconstructs the P1 byte as hardware would present it: bits 6-7 float
// high, bits 4-5 echo the last selection write, and bits 0-3 reflect
// whichever group(s) are currently selected (both groups AND'd together if
// both selection bits are held low at once, matching real hardware).
func (j *Joypad) Read() uint8 {
	result := uint8(0b1100_0000) | j.selects

	selectDpad := !bit.IsSet(4, j.selects)
	selectButtons := !bit.IsSet(5, j.selects)

	switch {
	case selectButtons && !selectDpad:
		result |= j.buttons
	case selectDpad && !selectButtons:
		result |= j.dpad
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad
	default:
		result |= 0x0F
	}

	return result
}

// Write updates the selection bits; only bits 4-5 of P1 are writable.
func (j *Joypad) Write(value uint8) {
	j.selects = value & 0b0011_0000
}

// Press lowers the line for key, firing onFallingEdge if that line is
// currently selected and was previously high.
func (j *Joypad) Press(key JoypadKey) {
	before := j.selectedLines()
	j.setLine(key, false)
	after := j.selectedLines()
	if before&^after != 0 && j.onFallingEdge != nil {
		j.onFallingEdge()
	}
}

// Release raises the line for key.
func (j *Joypad) Release(key JoypadKey) {
	j.setLine(key, true)
}

// selectedLines returns the low nibble the hardware would currently present,
// used only to detect press-triggered falling edges on selected lines.
func (j *Joypad) selectedLines() uint8 {
	return j.Read() & 0x0F
}

func (j *Joypad) setLine(key JoypadKey, released bool) {
	group, idx := j.groupFor(key)
	if group == nil {
		return
	}
	if released {
		*group = bit.Set(idx, *group)
	} else {
		*group = bit.Reset(idx, *group)
	}
}

func (j *Joypad) groupFor(key JoypadKey) (*uint8, uint8) {
	switch key {
	case JoypadRight:
		return &j.dpad, 0
	case JoypadLeft:
		return &j.dpad, 1
	case JoypadUp:
		return &j.dpad, 2
	case JoypadDown:
		return &j.dpad, 3
	case JoypadA:
		return &j.buttons, 0
	case JoypadB:
		return &j.buttons, 1
	case JoypadSelect:
		return &j.buttons, 2
	case JoypadStart:
		return &j.buttons, 3
	default:
		return nil, 0
	}
}
