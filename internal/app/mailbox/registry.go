package mailbox

import (
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hickar/mailboxer/internal/app/config"
	"github.com/hickar/mailboxer/internal/pkg/kvstore"
)

// identity is the cache key for a client instance. Two configs agreeing on
// these three fields share one session.
type identity struct {
	host  string
	port  int
	login string
}

// Registry is the process-wide instance cache. In a reused execution
// environment it hands back the same Client, and therefore the same live
// session, across repeated entry calls. It is an explicit injectable value
// rather than a hidden singleton so tests can construct isolated registries.
type Registry struct {
	dialer  Dialer
	logger  *slog.Logger
	clients *kvstore.KVStore[identity, *Client]
}

func NewRegistry(dialer Dialer, logger *slog.Logger) *Registry {
	return &Registry{
		dialer:  dialer,
		logger:  logger,
		clients: kvstore.New[identity, *Client](),
	}
}

// GetOrCreate returns the cached Client for the config's identity,
// constructing and caching one on first request. The underlying store's
// insert-if-absent is atomic, so overlapping calls for the same identity
// observe a single instance.
func (r *Registry) GetOrCreate(cfg config.ClientConfig) *Client {
	cfg = cfg.WithDefaults()
	key := identity{host: cfg.Host, port: cfg.Port, login: cfg.Login}

	return r.clients.GetOrSet(key, func() *Client {
		return NewClient(cfg, r.dialer, r.logger.With(
			slog.String("host", cfg.Host),
			slog.String("login", cfg.Login),
		))
	})
}

// Len reports the number of cached client instances.
func (r *Registry) Len() int {
	return r.clients.Len()
}

// CloseAll disconnects every cached session and empties the registry.
// Disconnects run concurrently and failures are logged per instance, so one
// stuck logout never blocks the others. Afterwards GetOrCreate constructs
// brand-new, unconnected clients.
func (r *Registry) CloseAll() {
	var group errgroup.Group
	for _, client := range r.clients.Drain() {
		client := client
		group.Go(func() error {
			if err := client.Disconnect(); err != nil {
				r.logger.Warn("disconnect failed during registry teardown", slog.Any("error", err))
			}
			return nil
		})
	}
	_ = group.Wait()
}
