package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brizzai/loopback-login/internal/auth/constants"
	"github.com/brizzai/loopback-login/internal/logger"
	"github.com/brizzai/loopback-login/internal/utils"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for in-flight responses on Close
	shutdownTimeout = time.Second

	readHeaderTimeout = 10 * time.Second
)

// Loopback is a one-shot rendezvous with the browser: it accepts the first
// HTTP request sent to the redirect URI's host:port, hands it to the caller,
// and must be closed afterwards. It cannot be reused for a second login.
type Loopback struct {
	listener net.Listener
	server   *http.Server

	requests chan *Callback
	serveErr chan error
	done     chan struct{}

	claimed   atomic.Bool
	accepted  atomic.Bool
	closeOnce sync.Once
}

// Callback is the single request received by a Loopback.
type Callback struct {
	Method     string
	RequestURI string

	replies   chan reply
	written   chan error
	responded atomic.Bool
}

type reply struct {
	status int
	body   string
}

// Listen binds the loopback listener on the configured host and port and
// starts serving in the background. Binding happens before anything is shown
// to the user, so a busy port aborts the attempt with ErrBindFailure.
func Listen(ctx context.Context, cfg OAuthConfig) (*Loopback, error) {
	addr := cfg.BindAddress()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %w", ErrBindFailure, addr, err)
	}

	l := &Loopback{
		listener: ln,
		requests: make(chan *Callback, 1),
		serveErr: make(chan error, 1),
		done:     make(chan struct{}),
	}
	l.server = &http.Server{
		Handler:           http.HandlerFunc(l.handle),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.serveErr <- err
		}
	}()

	logger.Debug("Loopback listener bound", zap.String("address", ln.Addr().String()))
	return l, nil
}

// Addr returns the bound address
func (l *Loopback) Addr() net.Addr {
	return l.listener.Addr()
}

func (l *Loopback) handle(w http.ResponseWriter, r *http.Request) {
	if !l.claimed.CompareAndSwap(false, true) {
		logger.Debug("Rejecting request after callback was received",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		_ = utils.WriteText(w, http.StatusGone, constants.AlreadyHandledPage)
		return
	}

	cb := &Callback{
		Method:     r.Method,
		RequestURI: r.RequestURI,
		replies:    make(chan reply, 1),
		written:    make(chan error, 1),
	}
	l.requests <- cb

	select {
	case rep := <-cb.replies:
		cb.written <- utils.WriteText(w, rep.status, rep.body)
	case <-r.Context().Done():
		cb.written <- fmt.Errorf("browser disconnected: %w", r.Context().Err())
	case <-l.done:
		// closed before anyone answered, still tell the browser the attempt ended
		_ = utils.WriteText(w, http.StatusServiceUnavailable, constants.FailurePage)
		cb.written <- net.ErrClosed
	}
}

// Accept blocks until the browser's request arrives. It may be called once.
// It fails with ErrCallbackTimeout when ctx's deadline passes and with
// ErrCallbackIO for any other reason the request can no longer arrive.
func (l *Loopback) Accept(ctx context.Context) (*Callback, error) {
	if !l.accepted.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: callback was already accepted", ErrCallbackIO)
	}

	select {
	case cb := <-l.requests:
		return cb, nil
	case err := <-l.serveErr:
		return nil, fmt.Errorf("%w: %w", ErrCallbackIO, err)
	case <-l.done:
		return nil, fmt.Errorf("%w: %w", ErrCallbackIO, net.ErrClosed)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrCallbackTimeout
		}
		return nil, fmt.Errorf("%w: %w", ErrCallbackIO, ctx.Err())
	}
}

// Close stops the server and releases the port. It is safe to call more than once.
func (l *Loopback) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err = l.server.Shutdown(ctx); err != nil {
			err = l.server.Close()
		}
		// Serve may not have started yet, in which case it has not taken ownership of the listener
		if closeErr := l.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) && err == nil {
			err = closeErr
		}
		logger.Debug("Loopback listener closed", zap.String("address", l.listener.Addr().String()))
	})
	return err
}

// Respond sends a plain-text page back to the browser. Only the first call
// writes; a failed write is reported as ErrCallbackIO.
func (c *Callback) Respond(status int, body string) error {
	if !c.responded.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: response already sent", ErrCallbackIO)
	}
	c.replies <- reply{status: status, body: body}
	if err := <-c.written; err != nil {
		return fmt.Errorf("%w: writing response: %w", ErrCallbackIO, err)
	}
	return nil
}
