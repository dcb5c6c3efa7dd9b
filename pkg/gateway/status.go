package gateway

// Status is the lifecycle state of a Connection.
//
//	Idle → Connecting → Open → Disconnected
type Status uint8

const (
	StatusIdle         Status = iota // Created, no transport yet
	StatusConnecting                 // Transport instantiated, not established
	StatusOpen                       // Transport established, sends allowed
	StatusDisconnected               // Terminal
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusConnecting:
		return "Connecting"
	case StatusOpen:
		return "Open"
	case StatusDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}
