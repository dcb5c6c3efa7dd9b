package gateway

// Opcode identifies the purpose of a gateway envelope.
type Opcode int

const (
	OpDispatch            Opcode = 0  // Server → Client event
	OpHeartbeat           Opcode = 1  // Liveness ping (both directions)
	OpIdentify            Opcode = 2  // Client session handshake
	OpPresenceUpdate      Opcode = 3  // Client presence change
	OpVoiceStateUpdate    Opcode = 4  // Client voice state change
	OpResume              Opcode = 5  // Client session resume
	OpReconnect           Opcode = 7  // Server asks client to reconnect
	OpRequestGuildMembers Opcode = 8  // Client member chunk request
	OpInvalidSession      Opcode = 9  // Server rejected the session
	OpHello               Opcode = 10 // Server greeting with heartbeat interval
	OpHeartbeatAck        Opcode = 11 // Server acknowledged a heartbeat
)

// String returns the string representation of the opcode.
func (op Opcode) String() string {
	switch op {
	case OpDispatch:
		return "Dispatch"
	case OpHeartbeat:
		return "Heartbeat"
	case OpIdentify:
		return "Identify"
	case OpPresenceUpdate:
		return "PresenceUpdate"
	case OpVoiceStateUpdate:
		return "VoiceStateUpdate"
	case OpResume:
		return "Resume"
	case OpReconnect:
		return "Reconnect"
	case OpRequestGuildMembers:
		return "RequestGuildMembers"
	case OpInvalidSession:
		return "InvalidSession"
	case OpHello:
		return "Hello"
	case OpHeartbeatAck:
		return "HeartbeatAck"
	default:
		return "Unknown"
	}
}
