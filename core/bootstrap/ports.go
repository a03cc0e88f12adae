package bootstrap

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
)

// PortBindError reports that the server-mode listener could not be bound.
type PortBindError struct {
	Host       string
	Port       int
	RangeStart int
	RangeEnd   int
	Err        error
}

func (e *PortBindError) Error() string {
	if e.Port != 0 {
		return fmt.Sprintf("cannot start server mode: port %d on %s is unavailable: %v", e.Port, e.Host, e.Err)
	}
	return fmt.Sprintf("cannot start server mode: no free port in range %d-%d on %s", e.RangeStart, e.RangeEnd, e.Host)
}

func (e *PortBindError) Unwrap() error {
	return e.Err
}

func listen(host string, port int) (net.Listener, error) {
	return net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
}

// bindExplicit binds exactly host:port.
func bindExplicit(host string, port int) (net.Listener, error) {
	ln, err := listen(host, port)
	if err != nil {
		return nil, &PortBindError{Host: host, Port: port, Err: err}
	}
	return ln, nil
}

// bindInRange binds the first free port in [start, end]. Errors other than
// "address in use" stop the scan, since every later port would fail the same way.
func bindInRange(host string, start, end int) (net.Listener, error) {
	for port := start; port <= end && port <= 65535; port++ {
		ln, err := listen(host, port)
		if err == nil {
			return ln, nil
		}
		if isAddrInUse(err) {
			continue
		}
		return nil, &PortBindError{Host: host, Port: port, Err: err}
	}
	return nil, &PortBindError{Host: host, RangeStart: start, RangeEnd: end, Err: syscall.EADDRINUSE}
}

func isAddrInUse(err error) bool {
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}
	// Windows reports WSAEADDRINUSE, which syscall.EADDRINUSE does not match.
	msg := err.Error()
	return strings.Contains(msg, "address already in use") ||
		strings.Contains(msg, "Only one usage of each socket address")
}
