package vgc

// Identity is the controller's self-description as reported by the AYT
// command: "type,model,serial,firmware,hardware".
//
// GaugeCount is derived from the trailing digit of the model designation
// (e.g. "DUAL2" → 2). It is zero when the designation carries no digit;
// the Device logs that as a configuration anomaly but does not fail.
type Identity struct {
	Type       string
	Model      string
	Serial     int64
	Firmware   string
	Hardware   string
	GaugeCount int
}

// Capability describes which optional operations a device variant supports.
//
// Controller generations differ: some front-ends have no temperature
// sensor, some do not answer AYT. Operations gated on a missing capability
// fail with ErrUnsupported before touching the transport.
type Capability uint8

const (
	// CapTemperature enables ReadTemperature (TMP).
	CapTemperature Capability = 1 << iota
	// CapIdentity enables InitializeIdentity (AYT) and lazy identity lookup.
	CapIdentity
)

// DefaultCapabilities is the full VGC502/VGC503 feature set.
const DefaultCapabilities = CapTemperature | CapIdentity

// Has reports whether all bits of want are present.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}
