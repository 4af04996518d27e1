package transport

// PowerState is the host's view of the transceiver power mode.
type PowerState uint8

const (
	PowerAwake PowerState = iota
	PowerSleep
)

func (s PowerState) String() string {
	switch s {
	case PowerAwake:
		return "awake"
	case PowerSleep:
		return "sleep"
	default:
		return "unknown"
	}
}
