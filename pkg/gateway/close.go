package gateway

import (
	"errors"
	"fmt"
)

// Close codes sent by the gateway or the transport.
const (
	CloseNormal               = 1000
	CloseGoingAway            = 1001
	CloseAbnormal             = 1006
	CloseUnknownError         = 4000
	CloseUnknownOpcode        = 4001
	CloseDecodeError          = 4002
	CloseNotAuthenticated     = 4003
	CloseAuthenticationFailed = 4004
	CloseAlreadyAuthenticated = 4005
	CloseInvalidSeq           = 4007
	CloseRateLimited          = 4008
	CloseSessionTimedOut      = 4009
	CloseInvalidShard         = 4010
	CloseShardingRequired     = 4011
	CloseInvalidAPIVersion    = 4012
	CloseInvalidIntents       = 4013
	CloseDisallowedIntents    = 4014
)

// Gateway errors.
var (
	ErrNotOpen              = errors.New("gateway: connection is not open")
	ErrMalformedFrame       = errors.New("gateway: malformed frame")
	ErrInflate              = errors.New("gateway: inflate failed")
	ErrAuthenticationFailed = errors.New("gateway: authentication failed")
	ErrLoopStopped          = errors.New("gateway: event loop stopped")
)

// CloseError describes how a connection ended.
type CloseError struct {
	Code   int
	Reason string
}

// Error implements the error interface.
func (e *CloseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("gateway: closed with %d (%s)", e.Code, CloseCodeName(e.Code))
	}
	return fmt.Sprintf("gateway: closed with %d (%s): %s", e.Code, CloseCodeName(e.Code), e.Reason)
}

// Is reports ErrAuthenticationFailed for code 4004.
func (e *CloseError) Is(target error) bool {
	return target == ErrAuthenticationFailed && e.Code == CloseAuthenticationFailed
}

// Fatal reports whether the close cannot be fixed by connecting again with
// the same credential and options.
func (e *CloseError) Fatal() bool {
	switch e.Code {
	case CloseAuthenticationFailed,
		CloseInvalidShard,
		CloseShardingRequired,
		CloseInvalidAPIVersion,
		CloseInvalidIntents,
		CloseDisallowedIntents:
		return true
	default:
		return false
	}
}

// CloseCodeName returns a short name for a close code.
func CloseCodeName(code int) string {
	switch code {
	case CloseNormal:
		return "Normal"
	case CloseGoingAway:
		return "GoingAway"
	case CloseAbnormal:
		return "Abnormal"
	case CloseUnknownError:
		return "UnknownError"
	case CloseUnknownOpcode:
		return "UnknownOpcode"
	case CloseDecodeError:
		return "DecodeError"
	case CloseNotAuthenticated:
		return "NotAuthenticated"
	case CloseAuthenticationFailed:
		return "AuthenticationFailed"
	case CloseAlreadyAuthenticated:
		return "AlreadyAuthenticated"
	case CloseInvalidSeq:
		return "InvalidSeq"
	case CloseRateLimited:
		return "RateLimited"
	case CloseSessionTimedOut:
		return "SessionTimedOut"
	case CloseInvalidShard:
		return "InvalidShard"
	case CloseShardingRequired:
		return "ShardingRequired"
	case CloseInvalidAPIVersion:
		return "InvalidAPIVersion"
	case CloseInvalidIntents:
		return "InvalidIntents"
	case CloseDisallowedIntents:
		return "DisallowedIntents"
	default:
		return "Unknown"
	}
}
