package mcpserver

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerRunWritesOneResponsePerRequestInOrder(t *testing.T) {
	in := strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}` + "\n" +
			`{"jsonrpc":"2.0","method":"ignored-notification","params":{}}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}` + "\n",
	)
	var out bytes.Buffer

	d := NewDispatcher(newTestRegistry(), ServerInfo{Name: "x", Version: "1"}, nil)
	s := NewServer(d, in, &out, nil)

	err := s.Run(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":1`)
	assert.Contains(t, lines[1], `"id":2`)
}

func TestServerStopUnblocksRunOnClosableReader(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	var out bytes.Buffer
	d := NewDispatcher(newTestRegistry(), ServerInfo{Name: "x", Version: "1"}, nil)
	s := NewServer(d, r, &out, nil)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	s.Stop()
	<-done
}
