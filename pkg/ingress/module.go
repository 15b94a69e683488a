package ingress

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

type Transport string

const (
	TransportTCP Transport = "tcp"
	TransportWS  Transport = "ws"
)

const (
	dialTimeout  = 10 * time.Second
	probeTimeout = time.Millisecond
)

func ParseTransport(value string) (Transport, error) {
	switch Transport(value) {
	case TransportTCP, "":
		return TransportTCP, nil
	case TransportWS:
		return TransportWS, nil
	}
	return "", fmt.Errorf("unknown transport %q", value)
}

// Listen returns a listener whose connections all speak the single-byte
// relay protocol, whatever the transport underneath.
func Listen(transport Transport, address string) (net.Listener, error) {
	switch transport {
	case TransportTCP:
		return net.Listen("tcp", address)
	case TransportWS:
		return ListenWS(address)
	}
	return nil, fmt.Errorf("unknown transport %q", transport)
}

func Dial(ctx context.Context, transport Transport, address string) (net.Conn, error) {
	switch transport {
	case TransportTCP:
		dialer := net.Dialer{Timeout: dialTimeout}
		return dialer.DialContext(ctx, "tcp", address)
	case TransportWS:
		return DialWS(ctx, address)
	}
	return nil, fmt.Errorf("unknown transport %q", transport)
}

// Shutdown sends FIN before closing when the transport supports half-close
// so the peer reads EOF rather than a reset.
func Shutdown(conn net.Conn) error {
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.CloseWrite()
	}
	return conn.Close()
}

// Alive reports whether a client that is not expected to send anything has
// hung up. A byte that does arrive is consumed. Only TCP connections are
// checked; a WebSocket connection is torn down by an expired read deadline.
func Alive(conn net.Conn) bool {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return true
	}

	if err := tcp.SetReadDeadline(time.Now().Add(probeTimeout)); err != nil {
		return false
	}
	defer tcp.SetReadDeadline(time.Time{})

	buf := make([]byte, 1)
	_, err := tcp.Read(buf)
	if err == nil {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
