package utils

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidIP = errors.New("invalid IP address or hostname given")

var schemes = []string{"http://", "https://", "ws://", "wss://", "tcp://"}

// SanitizeAddr trims leading protocol scheme, path and port from the given
// IP address or hostname if present.
func SanitizeAddr(addr string) (string, error) {
	original := addr
	for _, scheme := range schemes {
		addr = strings.TrimPrefix(addr, scheme)
	}
	addr, _, _ = strings.Cut(addr, "/")
	addr = strings.Split(addr, ":")[0]
	if addr == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidIP, original)
	}
	return addr, nil
}

// Endpoint turns a node address into a URL, assuming plain HTTP when no scheme is given.
// The address must carry a host.
func Endpoint(addr string) (string, error) {
	if _, err := SanitizeAddr(addr); err != nil {
		return "", err
	}
	if strings.Contains(addr, "://") {
		return addr, nil
	}
	return "http://" + addr, nil
}
