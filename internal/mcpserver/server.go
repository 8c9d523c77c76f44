package mcpserver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/ternarybob/arbor"
)

// Server drives the single-threaded stdio request loop: one JSON-RPC
// request per line in, at most one response line out, in arrival order.
// Concurrency inside a single tools/call (the unified search fan-out) is
// entirely hidden behind that one call's handler.
type Server struct {
	dispatcher *Dispatcher
	in         io.Reader
	out        io.Writer
	logger     arbor.ILogger
	running    atomic.Bool
	stopReader io.Closer
}

// NewServer builds a Server reading requests from in and writing responses
// to out. If in also implements io.Closer, Stop will close it to unblock a
// pending read.
func NewServer(dispatcher *Dispatcher, in io.Reader, out io.Writer, logger arbor.ILogger) *Server {
	s := &Server{dispatcher: dispatcher, in: in, out: out, logger: logger}
	if closer, ok := in.(io.Closer); ok {
		s.stopReader = closer
	}
	return s
}

// Run reads lines from stdin until end-of-stream or Stop is called,
// dispatching each one and writing its response. Returns nil on a clean
// end-of-stream, or the scanner's error on abnormal I/O failure.
func (s *Server) Run(ctx context.Context) error {
	s.running.Store(true)
	if s.logger != nil {
		s.logger.Info().Msg("mcp server loop starting")
	}

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)

	for s.running.Load() && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		response, ok := s.dispatcher.Handle(ctx, line)
		if !ok {
			continue
		}

		if _, err := fmt.Fprintln(s.out, response); err != nil {
			if s.logger != nil {
				s.logger.Error().Err(err).Msg("failed to write response line")
			}
			return err
		}
		if flusher, ok := s.out.(interface{ Flush() error }); ok {
			flusher.Flush()
		}
	}

	if s.logger != nil {
		s.logger.Info().Msg("mcp server loop terminating")
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return nil
}

// Stop flips the running flag and, if the input stream supports it, closes
// it to unblock a pending Scan call.
func (s *Server) Stop() {
	s.running.Store(false)
	if s.stopReader != nil {
		s.stopReader.Close()
	}
}
