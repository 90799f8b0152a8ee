package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ecoruta/portal/internal/core/ports"
	"github.com/ecoruta/portal/internal/core/service"
	"github.com/ecoruta/portal/internal/infrastructure/apiclient"
	dbmongo "github.com/ecoruta/portal/internal/infrastructure/db/mongo"
	dbredis "github.com/ecoruta/portal/internal/infrastructure/db/redis"
	"github.com/ecoruta/portal/internal/infrastructure/ecoruta"
	"github.com/ecoruta/portal/internal/infrastructure/jwtinspect"
	"github.com/ecoruta/portal/internal/infrastructure/tokenstore"
	"github.com/ecoruta/portal/internal/pkg/config"
	"github.com/ecoruta/portal/internal/pkg/validation"
)

// App is the client stack shared by the commands. It is built on first use
// so that commands which never talk to the backend do not open a store.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	backend  ports.KeyValueStore
	tokens   *tokenstore.Store
	client   *apiclient.Client
	session  *service.SessionService
	services *ecoruta.Services

	closers []func()
}

// Connect builds the token store, API client and session.
func (a *App) Connect(ctx context.Context) error {
	if a.session != nil {
		return nil
	}

	backend, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	a.backend = backend
	a.tokens = tokenstore.New(backend, a.log)

	a.client = apiclient.New(apiclient.Config{
		BaseURL: a.cfg.APIURL,
		Timeout: a.cfg.APITimeout,
	}, a.tokens, a.log)

	inspector := jwtinspect.New()
	gateway := ecoruta.NewGateway(a.client, a.tokens, inspector, ecoruta.DefaultEndpoints())
	a.session = service.NewSessionService(gateway, a.tokens, inspector, validation.New(), a.log)
	a.client.OnSessionExpired(a.session.Expire)
	a.services = ecoruta.NewServices(a.client)
	return nil
}

func (a *App) openStore(ctx context.Context) (ports.KeyValueStore, error) {
	st := a.cfg.Store
	switch st.Kind {
	case config.StoreMemory:
		return tokenstore.NewMemory(), nil
	case config.StoreRedis:
		client, err := dbredis.Connect(ctx, dbredis.Config{
			Addr:     st.RedisAddr,
			Password: st.RedisPassword,
			DB:       st.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis token store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return dbredis.NewTokenStore(client, st.Profile), nil
	case config.StoreMongo:
		client, db, err := dbmongo.Connect(ctx, dbmongo.Config{
			URI:      st.MongoURI,
			Database: st.MongoDatabase,
			AppName:  "ecoruta-cli",
		})
		if err != nil {
			return nil, fmt.Errorf("open mongo token store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		return dbmongo.NewTokenStore(db, st.Profile), nil
	default:
		path := st.Path
		if path == "" {
			p, err := tokenstore.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return tokenstore.NewFile(path), nil
	}
}

// Close releases the store connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
