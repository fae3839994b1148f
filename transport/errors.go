package transport

import "fmt"

// ErrorCode is a QUIC transport error code as carried in CONNECTION_CLOSE
// frames (spec.md §6).
type ErrorCode uint64

// Transport error codes.
const (
	NoError                  ErrorCode = 0x0
	InternalError            ErrorCode = 0x1
	ServerBusy               ErrorCode = 0x2
	FlowControlError         ErrorCode = 0x3
	StreamIDError            ErrorCode = 0x4
	StreamStateError         ErrorCode = 0x5
	FinalOffsetError         ErrorCode = 0x6
	FrameEncodingError       ErrorCode = 0x7
	TransportParameterError  ErrorCode = 0x8
	VersionNegotiationError  ErrorCode = 0x9
	ProtocolViolation        ErrorCode = 0xA
	// CryptoError is the base of the CRYPTO_ERROR range (RFC 9000 §20.1),
	// used here to surface TLS-oracle failures as a connection-fatal Error.
	CryptoError ErrorCode = 0x100
)

var errorCodeNames = map[ErrorCode]string{
	NoError:                 "no_error",
	InternalError:           "internal_error",
	ServerBusy:              "server_busy",
	FlowControlError:        "flow_control_error",
	StreamIDError:           "stream_id_error",
	StreamStateError:        "stream_state_error",
	FinalOffsetError:        "final_offset_error",
	FrameEncodingError:      "frame_encoding_error",
	TransportParameterError: "transport_parameter_error",
	VersionNegotiationError: "version_negotiation_error",
	ProtocolViolation:       "protocol_violation",
}

func errorCodeString(code uint64) string {
	if name, ok := errorCodeNames[ErrorCode(code)]; ok {
		return name
	}
	if code >= uint64(CryptoError) && code <= uint64(CryptoError)+0xff {
		return fmt.Sprintf("crypto_error_%d", code-uint64(CryptoError))
	}
	return fmt.Sprintf("crypto_error_%d", code)
}

// Error is a connection-fatal transport or application error (spec.md §7
// class 2/3).
type Error struct {
	Code        ErrorCode
	Message     string
	Application bool
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return errorCodeString(uint64(e.Code))
	}
	return fmt.Sprintf("%s: %s", errorCodeString(uint64(e.Code)), e.Message)
}

var (
	errInvalidToken     = newError(ProtocolViolation, "invalid retry token")
	errFlowControl      = newError(FlowControlError, "")
	errShortBuffer      = newError(InternalError, "short buffer")
	errDone             = newError(NoError, "done")
)

func sprint(a ...interface{}) string {
	return fmt.Sprint(a...)
}
