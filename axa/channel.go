package axa

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/axaremote/go-axa/logger"
	"github.com/axaremote/go-axa/transport"
)

// cmdChannel frames commands onto the transport and reads back their
// responses. It owns the single command in flight invariant: a capacity-1
// semaphore serializes all senders, and the slot is released on every exit
// path.
type cmdChannel struct {
	transport transport.Transport
	sem       chan struct{}
	logger    logger.Logger
	metrics   *DeviceMetrics
}

func newCmdChannel(t transport.Transport, l logger.Logger, m *DeviceMetrics) *cmdChannel {
	return &cmdChannel{
		transport: t,
		sem:       make(chan struct{}, 1),
		logger:    l,
		metrics:   m,
	}
}

// send transmits command and returns the response with the echo line
// removed. Lines of a multi-line response are joined with "\n"; a response
// that carried no content beyond the echo comes back as "".
func (c *cmdChannel) send(ctx context.Context, command string) (string, error) {
	if err := c.transport.Open(); err != nil {
		c.logger.Error("connection not available", "transport", c.transport.String(), "error", err)
		c.metrics.incCommandErrCount()

		return "", fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		c.metrics.incCommandErrCount()

		return "", fmt.Errorf("%w: %v", ErrCommandTimeout, ctx.Err())
	}
	defer func() { <-c.sem }()

	command = strings.ToUpper(command)
	c.metrics.incCommandSendCount()
	c.logger.Debug("send command", "command", command)

	response, err := c.exchange(ctx, command)
	if err != nil {
		c.metrics.incCommandErrCount()

		return "", err
	}

	c.logger.Debug("received response", "command", command, "response", response)

	return response, nil
}

// exchange performs one command round trip. The opener is woken with a blank
// line first and one stale line is discarded before the command goes out;
// that recovers the half-duplex link from whatever a previous exchange left
// behind.
func (c *cmdChannel) exchange(ctx context.Context, command string) (string, error) {
	if err := c.transport.Reset(); err != nil {
		return "", fmt.Errorf("reset %s: %w", c.transport, err)
	}

	if _, err := c.transport.Write([]byte("\r\n")); err != nil {
		return "", fmt.Errorf("write %s: %w", c.transport, err)
	}

	if _, err := c.transport.ReadLine(); err != nil {
		return "", fmt.Errorf("read %s: %w", c.transport, err)
	}

	if _, err := c.transport.Write([]byte(command + "\r\n")); err != nil {
		return "", fmt.Errorf("write %s: %w", c.transport, err)
	}

	if err := c.transport.Flush(); err != nil {
		return "", fmt.Errorf("flush %s: %w", c.transport, err)
	}

	lines, err := c.readResponse(ctx)
	if err != nil {
		return "", err
	}

	return c.stripEcho(command, lines)
}

// readResponse collects response lines until the link goes quiet. Each line
// is decoded and trimmed of its terminator and surrounding whitespace.
func (c *cmdChannel) readResponse(ctx context.Context) ([]string, error) {
	var lines []string

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCommandTimeout, err)
		}

		raw, err := c.transport.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", c.transport, err)
		}

		if len(raw) == 0 {
			return lines, nil
		}

		if !utf8.Valid(raw) {
			c.metrics.incDecodeErrCount()
			c.logger.Warn("response line does not decode", "line", fmt.Sprintf("%q", raw))

			return nil, ErrInvalidResponse
		}

		lines = append(lines, strings.TrimSpace(string(raw)))
	}
}

// stripEcho validates the echo line and joins the remaining lines into the
// response.
func (c *cmdChannel) stripEcho(command string, lines []string) (string, error) {
	if len(lines) == 0 {
		c.metrics.incEmptyResponseCount()
		c.logger.Error("empty response, suspect cabling", "command", command, "transport", c.transport.String())

		return "", ErrEmptyResponse
	}

	if lines[0] != command {
		c.metrics.incEchoMismatchCount()
		c.logger.Error("no command echo received", "command", command, "response", strings.Join(lines, "\n"))

		return "", ErrNoEcho
	}

	return strings.Join(lines[1:], "\n"), nil
}
