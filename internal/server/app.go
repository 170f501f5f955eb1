// Package server wires configuration, storage, the user service and the
// HTTP and gRPC transports into a runnable application.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/dmitrijs2005/videotube/internal/server/auth"
	"github.com/dmitrijs2005/videotube/internal/server/config"
	"github.com/dmitrijs2005/videotube/internal/server/password"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/principals"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/videotube/internal/server/grpc"
	hs "github.com/dmitrijs2005/videotube/internal/server/http"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	storage     io.Closer
	userService *services.UserService
}

// NewApp validates c, opens the configured store and builds the user
// service. Close must be called to release the store.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(os.Stdout, c.LogBackend, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, err
	}

	repo, closer, err := principals.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	us := services.NewUserService(repo, password.NewHasher(c.BcryptCost), auth.NewCodec(), c.TokenSettings(), logger)

	return &App{config: c, logger: logger, storage: closer, userService: us}, nil
}

// Users exposes the user service for command-line tools.
func (app *App) Users() *services.UserService {
	return app.userService
}

func (app *App) Close() error {
	if app.storage == nil {
		return nil
	}
	return app.storage.Close()
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

func (app *App) httpServer() *hs.Server {
	gin.SetMode(gin.ReleaseMode)

	cookies := hs.NewCookieManager(hs.CookieConfig{
		Secure:   app.config.CookieSecure,
		SameSite: app.config.CookieSameSite,
		Domain:   app.config.CookieDomain,
	})
	h := hs.NewHandler(app.userService, cookies, app.config.AccessTokenValidityDuration, app.config.RefreshTokenValidityDuration)
	router := hs.NewRouter(h, app.logger, hs.RouterConfig{
		ClientURL:      app.config.ClientURL,
		MetricsEnabled: app.config.MetricsEnabled,
	})

	return hs.NewServer(app.config.EndpointAddrHTTP, router, app.logger.With("module", "http_server"))
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives or one of the servers fails. The first failure stops both.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	runners := map[string]func(context.Context) error{
		"http": app.httpServer().Run,
		"grpc": gs.NewServer(app.config.EndpointAddrGRPC, app.userService, app.logger).Run,
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for name, run := range runners {
		name, run := name, run
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, "server failed", "server", name, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")

	return errors.Join(errs...)
}
