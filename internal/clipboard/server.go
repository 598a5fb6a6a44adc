package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// TextClipboard is the context-aware clipboard surface shared by Bridge and
// Client.
type TextClipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, value string) error
}

// Server answers clipboard requests arriving on a transport, one at a time
// and in arrival order.
type Server struct {
	bridge TextClipboard
	logger zerolog.Logger
	seq    int64
}

// NewServer creates a server backed by bridge.
func NewServer(bridge TextClipboard, logger zerolog.Logger) *Server {
	return &Server{bridge: bridge, logger: logger}
}

// Serve handles requests until the peer closes the transport or ctx is done.
// The transport is closed on return. A clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, t Transport) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		_ = t.Close()
		return nil
	})

	g.Go(func() error {
		defer cancel()
		return s.loop(gctx, t)
	})

	return g.Wait()
}

func (s *Server) loop(ctx context.Context, t Transport) error {
	for {
		frame, err := t.Receive()
		if err != nil {
			if ctx.Err() != nil || isClosed(err) {
				return nil
			}
			return fmt.Errorf("clipboard server receive: %w", err)
		}

		var resp response
		req, err := decodeRequest(frame)
		if err != nil {
			seq := gjson.GetBytes(frame, "seq")
			if !gjson.ValidBytes(frame) || !seq.Exists() {
				s.logger.Warn().Err(err).Msg("dropping malformed clipboard request")
				continue
			}
			s.seq++
			resp = response{
				Seq:        s.seq,
				RequestSeq: seq.Int(),
				Command:    gjson.GetBytes(frame, "command").String(),
				Message:    err.Error(),
			}
		} else {
			resp = s.handle(ctx, req)
		}

		out, err := encodeResponse(resp)
		if err != nil {
			return fmt.Errorf("clipboard server encode: %w", err)
		}
		if err := t.Send(out); err != nil {
			if ctx.Err() != nil || isClosed(err) {
				return nil
			}
			return fmt.Errorf("clipboard server send: %w", err)
		}
	}
}

func (s *Server) handle(ctx context.Context, req request) response {
	s.seq++
	resp := response{
		Seq:        s.seq,
		RequestSeq: req.Seq,
		Command:    req.Command,
	}

	var err error
	switch req.Command {
	case CommandReadText:
		resp.Value, err = s.bridge.ReadText(ctx)
	case CommandWriteText:
		err = s.bridge.WriteText(ctx, req.Value)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command)
	}

	if err != nil {
		s.logger.Debug().Err(err).Str("command", req.Command).Int64("seq", req.Seq).Msg("clipboard request failed")
		resp.Message = err.Error()
		return resp
	}
	resp.Success = true
	return resp
}

// isClosed reports whether err means the other side went away.
func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe)
}
