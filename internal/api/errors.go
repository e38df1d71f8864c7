package api

import "fmt"

// Kind classifies a failed backend call. The user mostly sees one generic
// message per operation; the kind exists so logs can tell a dead network
// from a misbehaving server.
type Kind int

const (
	// KindTransport means the request never produced a usable HTTP response.
	KindTransport Kind = iota
	// KindStatus means the server answered with a non-2xx status.
	KindStatus
	// KindDecode means the body was not the expected JSON.
	KindDecode
	// KindServer means a 2xx envelope reported success=false.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// APIError carries the classification and, for KindServer, the message the
// backend supplied.
type APIError struct {
	Kind    Kind
	Op      string
	Status  int    // HTTP status, when one was received
	Message string // server-provided message, may be empty
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
}

func (e *APIError) Unwrap() error { return e.Err }
