package main

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FailingServerExitsNonZero(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	args := os.Args
	t.Cleanup(func() { os.Args = args })
	os.Args = []string{"widsview", "-addr", busy.Addr().String(), "-grpc", "0"}

	assert.Equal(t, 1, run())
}
