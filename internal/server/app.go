// Package server wires configuration, storage, token services and the HTTP
// API together and runs them until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	server *httpapi.Server
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	codec, err := auth.NewCodec(c.SecretKeyBytes(), c.Issuer)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.StoreTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.RedisAddr,
		Password:     c.RedisPassword,
		DB:           c.RedisDB,
		DialTimeout:  c.StoreTimeout,
		ReadTimeout:  c.StoreTimeout,
		WriteTimeout: c.StoreTimeout,
	})
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = db.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}

	store := refreshtokens.NewRedisStore(rdb, c.RedisKeyPrefix)
	usersRepo := rm.Users(db)

	issuer := auth.NewIssuer(codec, store, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration, c.StoreTimeout)
	verifier := auth.NewVerifier(codec, usersRepo, c.StoreTimeout)

	us := services.NewUserService(db, dbx.NewSQLTransactor(db, nil), rm,
		cryptox.NewBcryptHasher(bcrypt.DefaultCost), issuer, verifier, store, c.StoreTimeout, logger)

	h := httpapi.NewHandler(us, map[string]httpapi.HealthCheck{
		"postgres": db.PingContext,
		"redis":    store.Ping,
	}, c.CookieSecure, logger)
	gate := httpapi.NewGate(verifier, logger)
	router := httpapi.NewRouter(h, gate, c.CORSAllowedOrigins, logger)

	logger.Info(ctx, "token codec ready", "alg", codec.Algorithm(), "issuer", c.Issuer)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		redis:  rdb,
		server: httpapi.NewServer(c.EndpointAddrHTTP, router, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the database and Redis connections.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if err := app.redis.Close(); err != nil {
		app.logger.Warn(ctx, "redis close", "error", err.Error())
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err.Error())
	}
	app.logger.Info(ctx, "App stopped")
}
