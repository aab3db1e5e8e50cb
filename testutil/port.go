package testutil

import (
	"fmt"
	mrand "math/rand"
	"net"
	"sync"
	"testing"
)

// ports handed out so far, so parallel tests never race on the same one
var (
	allocatedPorts = make(map[int]struct{})
	portMu         sync.Mutex
)

// AllocateUniquePort returns a free localhost TCP port that no other test in
// this process has been given yet.
func AllocateUniquePort(t *testing.T) int {
	const (
		basePort  = 20000
		portRange = 30000
	)

	for attempt := 0; attempt < 10; attempt++ {
		port := basePort + mrand.Intn(portRange)

		portMu.Lock()
		if _, taken := allocatedPorts[port]; taken {
			portMu.Unlock()

			continue
		}

		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			portMu.Unlock()

			continue
		}
		allocatedPorts[port] = struct{}{}
		portMu.Unlock()

		if err := listener.Close(); err != nil {
			continue
		}

		return port
	}

	t.Fatalf("failed to find an available port in range %d-%d", basePort, basePort+portRange)

	return 0
}
