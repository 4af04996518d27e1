package transport

// Driver is the interface that wraps the raw bus and control lines of the
// transceiver. It has no protocol knowledge and performs no retries.
//
// Callers must hold exclusive use of the bus: at most one exchange is in
// flight and no exchange overlaps a wake or reset sequence.
type Driver interface {
	// Configure prepares the bus and the control lines. NSS idles high.
	Configure() error
	// BeginTransfer asserts NSS.
	BeginTransfer()
	// Transfer shifts max(len(tx), len(rx)) bytes. Either buffer may be nil
	// but not both; when both are set they have the same length.
	Transfer(tx, rx []byte) error
	// EndTransfer deasserts NSS.
	EndTransfer()
	// Busy reports the level of the BUSY line.
	Busy() bool
	// SetReset drives the NRESET line.
	SetReset(high bool)
}

// Observer receives bus activity notifications. All methods are called
// synchronously from the framing path.
type Observer interface {
	ExchangeDone(kind ExchangeKind, n int)
	WakePulse()
	EnteredSleep()
	ResetDone()
}

// ExchangeKind labels the framing operation an exchange belongs to.
type ExchangeKind string

const (
	KindWrite      ExchangeKind = "write"
	KindCommand    ExchangeKind = "command"
	KindReply      ExchangeKind = "reply"
	KindDirectRead ExchangeKind = "direct_read"
)

type nopObserver struct{}

func (nopObserver) ExchangeDone(ExchangeKind, int) {}
func (nopObserver) WakePulse()                     {}
func (nopObserver) EnteredSleep()                  {}
func (nopObserver) ResetDone()                     {}
