package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fjod/takes-and-tastes/internal/auth"
	"github.com/fjod/takes-and-tastes/internal/cart"
	"github.com/fjod/takes-and-tastes/internal/checkout"
	"github.com/fjod/takes-and-tastes/internal/client"
	"github.com/fjod/takes-and-tastes/internal/config"
	"github.com/fjod/takes-and-tastes/internal/repository"
	"github.com/fjod/takes-and-tastes/internal/storage"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// runtime is one CLI session: local storage, the cart restored from it, the
// signed-in user and an API client.
type runtime struct {
	out      io.Writer
	store    *cart.Store
	session  *auth.Session
	api      *client.Client
	workflow *checkout.Workflow
	closers  []func()
}

func newRuntime(ctx context.Context, cfg *config.Client, out io.Writer) (*runtime, error) {
	rt := &runtime{out: out}

	kv, err := rt.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	policy, err := cart.ParsePolicy(cfg.ConflictPolicy)
	if err != nil {
		rt.close()
		return nil, err
	}

	rt.session = auth.NewSession(kv)
	if err := rt.session.Restore(ctx); err != nil {
		rt.close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	rt.store = cart.NewStore(cart.NewMirror(kv), cart.WithPolicy(policy))
	// registered after storage so the mirror drains before the connection closes
	rt.closers = append(rt.closers, rt.store.Close)
	if err := rt.store.Load(ctx); err != nil {
		rt.close()
		return nil, fmt.Errorf("restore cart: %w", err)
	}

	rt.api = client.New(cfg.APIURL, cfg.RequestTimeout, rt.session)
	rt.workflow = checkout.NewWorkflow(rt.store, rt.api,
		checkout.WithCountry(cfg.Country),
		checkout.WithAttemptStore(checkout.NewKVAttempts(kv)),
		checkout.OnTransition(func(from, to checkout.Status) {
			log.WithFields(log.Fields{"from": from, "to": to}).Debug("checkout")
		}),
	)
	return rt, nil
}

func (rt *runtime) openStorage(ctx context.Context, cfg *config.Client) (storage.KV, error) {
	switch cfg.StorageBackend {
	case config.BackendMongo:
		db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				log.WithError(err).Warn("mongo disconnect failed")
			}
		})
		return storage.NewMongoKV(db, cfg.Namespace), nil
	default:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		rt.closers = append(rt.closers, func() { rdb.Close() })
		return storage.NewRedisKV(rdb, cfg.Namespace), nil
	}
}

// close releases resources in reverse order of acquisition.
func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

func (rt *runtime) printf(format string, args ...any) {
	fmt.Fprintf(rt.out, format, args...)
}
