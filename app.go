package verso

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/verso-dev/verso/internal/dev"
	"github.com/verso-dev/verso/pkg/action"
	"github.com/verso-dev/verso/pkg/assets"
	"github.com/verso-dev/verso/pkg/router"
	"github.com/verso-dev/verso/pkg/server"
)

// =============================================================================
// App Type
// =============================================================================

// App is the main Verso application entry point.
// It wraps the router, the action endpoint, and static file serving into a
// single http.Handler.
//
// Create an App with verso.New():
//
//	app := verso.New(verso.Config{
//	    Static:  verso.StaticConfig{Dir: "public", Prefix: "/"},
//	    DevMode: os.Getenv("ENV") != "production",
//	})
//
//	app.Action("subscribe", subscribeAction)
//	app.Handle("/hello/:name", helloHandler)
//	http.ListenAndServe(":8080", app)
type App struct {
	router   *router.Router
	actions  *action.Registry
	endpoint *server.Endpoint

	store        assets.Store
	staticPrefix string

	reload *dev.Hub

	config Config
	logger *slog.Logger

	// ready registers the action endpoint as the last route, so that
	// middleware added after New still wraps it.
	ready sync.Once
}

// New creates a new Verso application with the given configuration.
func New(cfg Config) *App {
	if cfg.Action.Path == "" {
		cfg.Action.Path = DefaultActionConfig().Path
	}
	if cfg.Action.ForwardTimeout == 0 {
		cfg.Action.ForwardTimeout = DefaultActionConfig().ForwardTimeout
	}
	if cfg.Static.Prefix == "" {
		cfg.Static.Prefix = "/"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	actions := action.NewRegistry(logger)

	app := &App{
		router:  router.New(router.WithLogger(logger)),
		actions: actions,
		endpoint: server.NewEndpoint(actions,
			server.WithLogger(logger),
			server.WithClient(&http.Client{Timeout: cfg.Action.ForwardTimeout})),
		staticPrefix: cfg.Static.Prefix,
		config:       cfg,
		logger:       logger,
	}

	switch {
	case cfg.Static.Store != nil:
		app.store = cfg.Static.Store
	case cfg.Static.Dir != "":
		app.store = assets.NewDirStore(cfg.Static.Dir)
	}

	if cfg.DevMode {
		app.reload = dev.NewHub(logger)
	}

	return app
}

// =============================================================================
// http.Handler Implementation
// =============================================================================

// ServeHTTP implements http.Handler.
// Static files and the dev reload socket are answered before the route
// chain runs.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if a.reload != nil && r.URL.Path == dev.ReloadPath {
		a.reload.ServeHTTP(w, r)
		return
	}

	if a.store != nil && a.tryStatic(w, r) {
		return
	}

	a.ready.Do(func() {
		a.router.Method(http.MethodPost, a.config.Action.Path, a.endpoint.Handler())
	})

	a.router.ServeHTTP(w, r)
}

// =============================================================================
// Registration
// =============================================================================

// Action registers a named server action.
func (a *App) Action(id string, fn action.Func) {
	a.actions.Register(id, fn)
}

// Handle registers a handler for every HTTP method.
func (a *App) Handle(pattern string, h router.Handler) {
	a.router.Handle(pattern, h)
}

// Method registers a handler for a single HTTP method.
func (a *App) Method(method, pattern string, h router.Handler) {
	a.router.Method(method, pattern, h)
}

// Use appends middleware to the route chain.
func (a *App) Use(handlers ...router.Handler) {
	a.router.Use(handlers...)
}

// SetNotFound replaces the handler run when no route matches.
func (a *App) SetNotFound(h router.Handler) {
	a.router.SetNotFound(h)
}

// SetErrorHandler sets the handler for errors escaping the chain.
func (a *App) SetErrorHandler(h router.ErrorHandler) {
	a.router.SetErrorHandler(h)
}

// =============================================================================
// Accessors
// =============================================================================

// Router returns the underlying route chain.
func (a *App) Router() *router.Router {
	return a.router
}

// Actions returns the action registry.
func (a *App) Actions() *action.Registry {
	return a.actions
}

// Config returns the configuration the app was created with.
func (a *App) Config() Config {
	return a.config
}

// =============================================================================
// Running
// =============================================================================

// Run starts the HTTP server on the given address. In dev mode it also
// watches the static directory and pushes reload messages.
func (a *App) Run(addr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.startWatcher(ctx)

	a.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, a)
}

func (a *App) startWatcher(ctx context.Context) {
	if !a.config.DevMode || a.config.Static.Dir == "" {
		return
	}

	w := dev.NewWatcher([]string{a.config.Static.Dir}, 500*time.Millisecond)
	w.OnChange(func(c dev.Change) {
		if c.CSS {
			a.reload.NotifyCSS(c.Path)
		} else {
			a.reload.NotifyReload()
		}
	})
	go w.Start(ctx)
}
