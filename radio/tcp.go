package radio

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// preambleTimeout bounds how long an accepted connection may take to
// announce its service before it is dropped.
const preambleTimeout = 10 * time.Second

// TCPAdapter bridges radio channels onto TCP connections so payers run
// without radio hardware. Peers are registered by hardware address; Connect
// dials the registered endpoint and announces the service UUID as a 16 byte
// preamble for the listener to route on.
type TCPAdapter struct {
	dialer net.Dialer

	mu    sync.RWMutex
	peers map[string]string
}

// NewTCPAdapter creates an adapter with no registered peers.
func NewTCPAdapter() *TCPAdapter {
	return &TCPAdapter{peers: make(map[string]string)}
}

// Register maps a peer's hardware address to the TCP endpoint its listener
// is bound to.
func (a *TCPAdapter) Register(addr, endpoint string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.peers[strings.ToUpper(addr)] = endpoint
}

// Connect dials the endpoint registered for addr and writes the service
// preamble.
func (a *TCPAdapter) Connect(ctx context.Context, addr string, service uuid.UUID) (Channel, error) {
	a.mu.RLock()
	endpoint, ok := a.peers[strings.ToUpper(addr)]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no endpoint registered for peer %s", addr)
	}

	conn, err := a.dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}
	if _, err := conn.Write(service[:]); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to announce service: %w", err)
	}
	return conn.(*net.TCPConn), nil
}

// TCPListener accepts bridged channels on one TCP endpoint. The service
// preamble routes each connection; connections announcing an unknown service
// or none at all are dropped without ever reaching the server.
type TCPListener struct {
	ln net.Listener
}

// ListenTCP binds a bridge listener to endpoint. Pass a ":0" port to let the
// system pick one and read it back from Addr.
func ListenTCP(endpoint string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", endpoint, err)
	}
	return &TCPListener{ln: ln}, nil
}

// Accept returns the next announced channel and its service.
func (l *TCPListener) Accept() (Channel, uuid.UUID, error) {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return nil, uuid.Nil, err
		}

		tc := conn.(*net.TCPConn)
		tc.SetReadDeadline(time.Now().Add(preambleTimeout))
		var service uuid.UUID
		if _, err := io.ReadFull(tc, service[:]); err != nil {
			tc.Close()
			continue
		}
		tc.SetReadDeadline(time.Time{})

		switch service {
		case ServiceClassic, ServicePaymentProtocol:
			return tc, service, nil
		default:
			tc.Close()
		}
	}
}

// Addr returns the bound endpoint.
func (l *TCPListener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close stops accepting connections.
func (l *TCPListener) Close() error {
	return l.ln.Close()
}
