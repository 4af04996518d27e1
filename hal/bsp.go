package hal

import "fmt"

// LFClock selects the low-frequency clock of the LR1110.
type LFClock uint8

const (
	LFClockRC LFClock = iota
	LFClockXTAL
	LFClockExternal
)

// RegMode selects the LR1110 power regulator.
type RegMode uint8

const (
	RegModeLDO RegMode = iota
	RegModeDCDC
)

func (m RegMode) String() string {
	switch m {
	case RegModeLDO:
		return "ldo"
	case RegModeDCDC:
		return "dcdc"
	default:
		return fmt.Sprintf("regmode(%d)", uint8(m))
	}
}

// ParseRegMode maps "ldo" or "dcdc" to a RegMode. The empty string selects
// DC-DC.
func ParseRegMode(s string) (RegMode, error) {
	switch s {
	case "", "dcdc":
		return RegModeDCDC, nil
	case "ldo":
		return RegModeLDO, nil
	default:
		return 0, fmt.Errorf("unknown regulator mode %q", s)
	}
}

// BSP is the board support surface of the geolocation middleware.
type BSP struct {
	hooks   *ScanHooks
	regMode RegMode
}

func NewBSP(hooks *ScanHooks, regMode RegMode) *BSP {
	if hooks == nil {
		hooks = &ScanHooks{}
	}
	return &BSP{hooks: hooks, regMode: regMode}
}

func (b *BSP) GnssPrescanActions()  { b.hooks.InvokePrescan() }
func (b *BSP) GnssPostscanActions() { b.hooks.InvokePostscan() }

// The WM1110 needs no bus preparation around Wi-Fi scans.
func (b *BSP) WifiPrescanActions()  {}
func (b *BSP) WifiPostscanActions() {}

// LFClockConfig reports the 32.768 kHz crystal fitted on the WM1110.
func (b *BSP) LFClockConfig() LFClock { return LFClockXTAL }

func (b *BSP) RegMode() RegMode { return b.regMode }
