package clipboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// result is what a pending call receives: a decoded response, or the error
// that made its response unreadable.
type result struct {
	resp response
	err  error
}

// Client is the isolated side of the bridge. Its ReadText and WriteText
// send a request and wait for the matching response.
type Client struct {
	transport Transport
	logger    zerolog.Logger

	mu      sync.Mutex
	seq     int64
	pending map[int64]chan result
	closed  bool

	closeOnce sync.Once
	group     errgroup.Group
}

// NewClient starts reading responses from t.
func NewClient(t Transport, logger zerolog.Logger) *Client {
	c := &Client{
		transport: t,
		logger:    logger,
		pending:   make(map[int64]chan result),
	}
	c.group.Go(c.readLoop)
	return c
}

// ReadText asks the host for the clipboard text.
func (c *Client) ReadText(ctx context.Context) (string, error) {
	resp, err := c.call(ctx, request{Command: CommandReadText})
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

// WriteText asks the host to replace the clipboard text.
func (c *Client) WriteText(ctx context.Context, value string) error {
	_, err := c.call(ctx, request{Command: CommandWriteText, Value: value})
	return err
}

func (c *Client) call(ctx context.Context, req request) (response, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return response{}, ErrClosed
	}
	c.seq++
	req.Seq = c.seq
	ch := make(chan result, 1)
	c.pending[req.Seq] = ch
	c.mu.Unlock()

	frame, err := encodeRequest(req)
	if err == nil {
		err = c.transport.Send(frame)
	}
	if err != nil {
		c.forget(req.Seq)
		return response{}, fmt.Errorf("clipboard %s: %w", req.Command, err)
	}

	select {
	case res, ok := <-ch:
		if !ok {
			return response{}, ErrClosed
		}
		if res.err != nil {
			return response{}, fmt.Errorf("clipboard %s: %w", req.Command, res.err)
		}
		resp := res.resp
		if !resp.Success {
			return response{}, &RemoteError{Command: req.Command, Message: resp.Message}
		}
		return resp, nil
	case <-ctx.Done():
		c.forget(req.Seq)
		return response{}, ctx.Err()
	}
}

func (c *Client) forget(seq int64) {
	c.mu.Lock()
	delete(c.pending, seq)
	c.mu.Unlock()
}

func (c *Client) readLoop() error {
	defer c.failPending()

	for {
		frame, err := c.transport.Receive()
		if err != nil {
			if isClosed(err) {
				return nil
			}
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return nil
			}
			c.logger.Warn().Err(err).Msg("clipboard client receive failed")
			return err
		}

		resp, err := decodeResponse(frame)
		if err != nil {
			// A readable request_seq still identifies the caller to fail.
			requestSeq := gjson.GetBytes(frame, "request_seq")
			if !gjson.ValidBytes(frame) || !requestSeq.Exists() {
				c.logger.Warn().Err(err).Msg("dropping malformed clipboard response")
				continue
			}
			resp = response{RequestSeq: requestSeq.Int()}
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.RequestSeq]
		delete(c.pending, resp.RequestSeq)
		c.mu.Unlock()

		if !ok {
			c.logger.Debug().Int64("request_seq", resp.RequestSeq).Msg("response for unknown request")
			continue
		}
		ch <- result{resp: resp, err: err}
	}
}

// failPending marks the client closed and releases every waiting call.
func (c *Client) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for seq, ch := range c.pending {
		close(ch)
		delete(c.pending, seq)
	}
}

// Close closes the transport and waits for the reader to exit. Pending
// calls fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		err = c.transport.Close()
		if werr := c.group.Wait(); werr != nil && err == nil {
			err = werr
		}
	})
	return err
}
