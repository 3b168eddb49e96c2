package application

// PowerState is the bulb power state as reported by the control service.
// The empty string means the state is not known (for example when the
// service could not reach the bulb).
type PowerState string

const (
	PowerOn  PowerState = "on"
	PowerOff PowerState = "off"
)

// DeviceStatus is an immutable snapshot of the bulb as the control service
// last reported it. Brightness is a percentage in [1,100]; zero means the
// value is absent. Connected reflects the service's link to the physical
// bulb, OK only whether the service call itself succeeded.
type DeviceStatus struct {
	OK         bool       `json:"ok"`
	Power      PowerState `json:"power,omitempty"`
	Brightness int        `json:"brightness,omitempty"`
	Connected  bool       `json:"connected"`
	Error      string     `json:"error,omitempty"`
}

// Adjustable reports whether brightness adjustment makes sense right now.
// The bulb keeps its last level while off, but adjusting it requires the
// bulb to be on and reachable.
func (s DeviceStatus) Adjustable() bool {
	return s.Connected && s.Power == PowerOn
}
