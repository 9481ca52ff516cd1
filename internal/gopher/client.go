package gopher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/proxy"
)

// Fetch defaults.
const (
	// DefaultTimeout bounds connecting and each read cycle.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxRetries is how many times a transient failure is retried
	// before the fetch gives up.
	DefaultMaxRetries = 3

	// readChunkSize is the receive buffer size for the read loop.
	readChunkSize = 2048
)

// ErrRetriesExhausted is returned by Fetch when every attempt failed with
// a transient error.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Dialer is the subset of dialing gopherdl needs. *net.Dialer satisfies
// it, as do the SOCKS5 dialers from golang.org/x/net/proxy.
type Dialer interface {
	Dial(network, address string) (net.Conn, error)
}

// Client fetches raw resource content over TCP: connect, write the
// selector followed by CRLF, read until the server closes the connection.
// The protocol has no response framing; EOF is the only end-of-content
// signal.
type Client struct {
	dialer     Dialer
	timeout    time.Duration
	maxRetries int
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the connect and per-read timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithMaxRetries sets how many transient failures are retried per fetch.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithLogger sets the logger used for retry and give-up reporting.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDialer replaces the stdlib dialer, for example with a SOCKS5 proxy
// dialer from SOCKS5Dialer.
func WithDialer(dialer Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// NewClient creates a fetch client with the default timeout and retry
// budget.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = &net.Dialer{Timeout: c.timeout}
	}
	return c
}

// SOCKS5Dialer builds a dialer that tunnels through the SOCKS5 proxy at
// address in "host:port" form. Pass the result to WithDialer. No proxy
// authentication is used.
func SOCKS5Dialer(address string) (Dialer, error) {
	dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	return dialer, nil
}

// Fetch retrieves the resource's bytes. The politeness delay is slept
// before every attempt; transient failures (resolution errors, timeouts,
// refused connections) grow the delay and retry up to the retry budget,
// after which a wrapped ErrRetriesExhausted comes back. Other errors fail
// the fetch immediately. Cancelling ctx interrupts sleeping, dialing, and
// reading.
func (c *Client) Fetch(ctx context.Context, res *Resource, delay time.Duration) ([]byte, error) {
	backoff := newRetryBackoff(delay, c.maxRetries)
	for {
		if err := sleepContext(ctx, backoff.Delay()); err != nil {
			return nil, err
		}

		data, err := c.fetchOnce(ctx, res)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isTransientError(err) {
			return nil, fmt.Errorf("fetch %s: %w", res.URL(), err)
		}

		next, ok := backoff.Next()
		if !ok {
			c.logger.Warn("giving up on resource", "url", res.URL(), "error", err)
			return nil, fmt.Errorf("fetch %s: %w: %w", res.URL(), ErrRetriesExhausted, err)
		}
		backoff = next
		c.logger.Debug("retrying fetch",
			"url", res.URL(),
			"delay", backoff.Delay(),
			"error", err)
	}
}

// fetchOnce performs a single request: dial, send the selector, read to
// EOF. The read deadline is refreshed before every read so a stalled
// server fails after the timeout instead of hanging the mirror.
func (c *Client) fetchOnce(ctx context.Context, res *Resource) ([]byte, error) {
	addr := net.JoinHostPort(res.Host, strconv.Itoa(res.Port))
	conn, err := c.dialContext(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte(res.Selector + "\r\n")); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
		n, err := conn.Read(chunk)
		buf.Write(chunk[:n])
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf.Bytes(), nil
			}
			return nil, err
		}
	}
}

// dialContext dials through the configured dialer, honoring ctx. Dialers
// without native context support (the plain proxy.Dialer interface) run
// in a goroutine with a select; when ctx wins the race, the stray
// connection is closed as soon as the dial completes.
func (c *Client) dialContext(ctx context.Context, address string) (net.Conn, error) {
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)

	go func() {
		conn, err := c.dialer.Dial("tcp", address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if result := <-resultCh; result.conn != nil {
				result.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case result := <-resultCh:
		return result.conn, result.err
	}
}

// isTransientError reports whether the failure class is worth retrying:
// name resolution errors, timeouts, and refused connections. Anything
// else (resets mid-read, unreachable networks) fails the resource
// immediately.
func isTransientError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

// sleepContext sleeps for d unless ctx is cancelled first. A zero or
// negative d returns immediately.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
