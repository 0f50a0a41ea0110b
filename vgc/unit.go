package vgc

import "fmt"

// PressureUnit is the controller's display unit code (UNI command).
type PressureUnit int

// Unit codes per the controller's UNI mnemonic.
const (
	UnitMbar PressureUnit = iota
	UnitTorr
	UnitPascal
	UnitMicron
	UnitHPascal
	UnitVolt
)

var unitNames = [...]string{
	UnitMbar:    "mbar",
	UnitTorr:    "Torr",
	UnitPascal:  "Pascal",
	UnitMicron:  "Micron",
	UnitHPascal: "hPascal",
	UnitVolt:    "Volt",
}

// Valid reports whether u is a unit code the controller understands.
func (u PressureUnit) Valid() bool {
	return u >= UnitMbar && u <= UnitVolt
}

// String returns the display name of the unit, e.g. "Pascal" for code 2.
func (u PressureUnit) String() string {
	if !u.Valid() {
		return fmt.Sprintf("PressureUnit(%d)", int(u))
	}
	return unitNames[u]
}
