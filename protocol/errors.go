package protocol

import (
	"errors"
	"fmt"
)

// EncodingError reports input that could not be turned into a valid frame:
// wrong parameter count or a value outside the device's representable
// range. It is always raised before any I/O happens, so it is never worth
// retrying.
type EncodingError struct {
	// Command is the command that failed to encode
	Command Command

	// Reason describes what was wrong with the input
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %s: %s", e.Command, e.Reason)
}

// IsEncodingError returns true if the error is an *EncodingError.
func IsEncodingError(err error) bool {
	var ee *EncodingError
	return errors.As(err, &ee)
}

// ErrorKind classifies how the device's response violated the protocol.
type ErrorKind int

const (
	// KindTimeout means no complete response unit arrived within the
	// configured read timeout
	KindTimeout ErrorKind = iota

	// KindTruncated means the response ended before the declared field
	// count or terminator was seen
	KindTruncated

	// KindUnexpectedResponse means the device answered with bytes that do
	// not match the command's declared response shape
	KindUnexpectedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindTruncated:
		return "truncated response"
	case KindUnexpectedResponse:
		return "unexpected response"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// ProtocolError reports a response that did not honor the device contract.
// The device answered (or failed to answer in time), but not in the form
// the issued command declares.
type ProtocolError struct {
	// Command is the command whose response was bad
	Command Command

	// Kind classifies the violation
	Kind ErrorKind

	// Detail describes the specific mismatch
	Detail string
}

func (e *ProtocolError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Command, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Command, e.Kind, e.Detail)
}

// IsProtocolError returns true if the error is a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsTimeout returns true if the error is a *ProtocolError of kind KindTimeout.
func IsTimeout(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.Kind == KindTimeout
}

// IsTruncated returns true if the error is a *ProtocolError of kind KindTruncated.
func IsTruncated(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.Kind == KindTruncated
}

// IsUnexpectedResponse returns true if the error is a *ProtocolError of
// kind KindUnexpectedResponse.
func IsUnexpectedResponse(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.Kind == KindUnexpectedResponse
}
