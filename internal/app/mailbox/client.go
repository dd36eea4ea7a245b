// Package mailbox is a convenience layer over IMAP for short-lived, reused
// execution environments. A Client owns one server session, keeps it alive
// across invocations, and exposes high-level mailbox operations that hide
// identifier resolution, hierarchy-delimiter discovery and per-mailbox
// serialization from the caller.
package mailbox

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"strconv"
	"sync"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/charset"

	"github.com/hickar/mailboxer/internal/app/config"
)

type Dialer interface {
	DialTLS(address string, options *imapclient.Options) (*imapclient.Client, error)
	DialInsecure(address string, options *imapclient.Options) (*imapclient.Client, error)
}

// NetDialer dials the server over the network via the imapclient package.
type NetDialer struct{}

func (NetDialer) DialTLS(address string, options *imapclient.Options) (*imapclient.Client, error) {
	return imapclient.DialTLS(address, options)
}

func (NetDialer) DialInsecure(address string, options *imapclient.Options) (*imapclient.Client, error) {
	return imapclient.DialInsecure(address, options)
}

// Client holds one IMAP session for a single (host, port, login) identity.
// All public operations connect on demand, so callers never dial explicitly.
// Instances are normally obtained from a Registry, which hands back the same
// Client for the same identity across repeated invocations.
type Client struct {
	cfg    config.ClientConfig
	dialer Dialer
	logger *slog.Logger

	mu        sync.Mutex
	engine    *imapclient.Client
	connected bool
	delim     rune // discovered hierarchy delimiter, 0 until first LIST

	locks mailboxLocks
}

func NewClient(cfg config.ClientConfig, dialer Dialer, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg.WithDefaults(),
		dialer: dialer,
		logger: logger,
	}
}

// Connect establishes and authenticates the session. Calling it on an
// already-connected Client is a no-op, which makes every operation
// connection-safe. Handshake and authentication failures are surfaced to
// the caller and never retried here.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	options := &imapclient.Options{
		WordDecoder: &mime.WordDecoder{CharsetReader: charset.Reader},
	}

	var engine *imapclient.Client
	var err error
	if c.cfg.Insecure {
		engine, err = c.dialer.DialInsecure(addr, options)
	} else {
		options.TLSConfig = &tls.Config{
			ServerName:         c.cfg.Host,
			InsecureSkipVerify: c.cfg.InsecureSkipVerify, //nolint:gosec
		}
		engine, err = c.dialer.DialTLS(addr, options)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	if err = engine.Login(c.cfg.Login, c.cfg.Password).Wait(); err != nil {
		_ = engine.Close()
		return fmt.Errorf("login: %w", err)
	}

	c.engine = engine
	c.connected = true
	c.logger.Debug("session established", slog.String("address", addr))
	return nil
}

// Disconnect logs the session out. The connected flag is reset before the
// LOGOUT round-trip, so even a server that fails mid-logout cannot leave
// the Client half-connected. Calling it on a disconnected Client is a no-op.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	engine := c.engine
	c.engine = nil
	c.connected = false
	c.delim = 0

	if err := engine.Logout().Wait(); err != nil {
		_ = engine.Close()
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Connected reports whether the Client currently holds a live session.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// session connects on demand and returns the engine handle.
func (c *Client) session() (*imapclient.Client, error) {
	if err := c.Connect(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine, nil
}

// hierarchyDelim returns the server's folder hierarchy delimiter,
// discovering it with a LIST "" "" round-trip on first use.
func (c *Client) hierarchyDelim(engine *imapclient.Client) (rune, error) {
	c.mu.Lock()
	delim := c.delim
	c.mu.Unlock()
	if delim != 0 {
		return delim, nil
	}

	roots, err := engine.List("", "", nil).Collect()
	if err != nil {
		return 0, fmt.Errorf("list hierarchy root: %w", err)
	}

	delim = '/'
	for _, root := range roots {
		if root.Delim != 0 {
			delim = root.Delim
			break
		}
	}

	c.mu.Lock()
	c.delim = delim
	c.mu.Unlock()
	return delim, nil
}

// withMailbox runs fn while holding the advisory lock for the named mailbox.
// The session is established before the lock is taken, and the lock is
// released on every exit path, including panics. A failure inside one
// operation therefore cannot deadlock the next one reusing this session.
func (c *Client) withMailbox(folder string, fn func(engine *imapclient.Client) error) error {
	engine, err := c.session()
	if err != nil {
		return err
	}

	return c.locks.with(folder, func() error {
		return fn(engine)
	})
}

// withSelected additionally selects the mailbox before running fn, handing
// it the selection state the sequence numbering is scoped to.
func (c *Client) withSelected(folder string, fn func(engine *imapclient.Client, box *imap.SelectData) error) error {
	return c.withMailbox(folder, func(engine *imapclient.Client) error {
		box, err := engine.Select(folder, nil).Wait()
		if err != nil {
			return fmt.Errorf("select %q: %w", folder, err)
		}
		return fn(engine, box)
	})
}
