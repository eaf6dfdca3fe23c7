package app

import (
	"log/slog"

	"github.com/suranjanamuahaha/BlinkEd/internal/api"
	"github.com/suranjanamuahaha/BlinkEd/internal/auth"
	"github.com/suranjanamuahaha/BlinkEd/internal/chat"
	"github.com/suranjanamuahaha/BlinkEd/internal/config"
	"github.com/suranjanamuahaha/BlinkEd/internal/credstore"
)

// App is the wired client: one credential store, one gateway and one session
// per process.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   credstore.Store
	Client  *api.Client
	Session *auth.Service
}

// New loads configuration from cfgPath (see config.Load) and wires every
// component. The session is still loading; call Session.Restore next.
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return Wire(cfg, NewLogger(cfg.Log))
}

// Wire builds the components from an already loaded configuration.
func Wire(cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := credstore.Open(cfg)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.ServerURL, cfg.HTTPTimeout, store, logger)
	session := auth.NewService(client, store, logger)

	logger.Debug("client wired",
		slog.String("version", Version),
		slog.String("server_url", cfg.ServerURL),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("storage_path", store.Path()),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Client:  client,
		Session: session,
	}, nil
}

// NewSurface returns a chat surface bound to the session, answering with the
// configured demo video.
func (a *App) NewSurface() *chat.Surface {
	responder := chat.DemoResponder{
		VideoURL: a.Config.Chat.DemoVideoURL,
		Links:    a.Config.Chat.DemoLinks,
	}
	return chat.NewSurface(a.Session, responder, a.Config.Chat.AnonymousPromptLimit, a.Logger)
}

// Close releases the session. Late results from in-flight requests are
// dropped after this.
func (a *App) Close() {
	a.Session.Close()
}
