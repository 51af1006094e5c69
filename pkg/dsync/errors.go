package dsync

import "fmt"

// CodecErrorKind discriminates malformed-response failures.
type CodecErrorKind int

const (
	ShortResponse CodecErrorKind = iota
	BadMagic
	IDMismatch
)

func (k CodecErrorKind) String() string {
	switch k {
	case ShortResponse:
		return "short response"
	case BadMagic:
		return "bad magic"
	case IDMismatch:
		return "request id mismatch"
	}
	return "codec error"
}

// CodecError is a malformed or stale response datagram. It is final for
// the target within the round; the poller never retries.
type CodecError struct {
	Kind   CodecErrorKind
	Detail string
}

func (e *CodecError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// TransportErrorKind discriminates socket-level failures.
type TransportErrorKind int

const (
	TransportTimeout TransportErrorKind = iota
	TransportUnreachable
	TransportOther
)

// TransportError wraps a socket-level fault on one exchange.
type TransportError struct {
	Kind  TransportErrorKind
	Cause error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case TransportTimeout:
		return "timeout"
	case TransportUnreachable:
		return fmt.Sprintf("unreachable: %v", e.Cause)
	}
	return e.Cause.Error()
}

func (e *TransportError) Unwrap() error { return e.Cause }
