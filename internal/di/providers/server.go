package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/relaychat/relay-server/internal/api"
	"github.com/relaychat/relay-server/internal/config"
	"github.com/relaychat/relay-server/internal/logger"
	"github.com/relaychat/relay-server/internal/service"
	"github.com/relaychat/relay-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// Get all services
	authService := do.MustInvoke[*service.AuthService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	groupService := do.MustInvoke[*service.GroupService](i)
	channelService := do.MustInvoke[*service.ChannelService](i)
	presenceService := do.MustInvoke[*service.PresenceService](i)
	pickerService := do.MustInvoke[*service.PickerService](i)

	services := &api.Services{
		Auth:     authService,
		Session:  sessionService,
		Profile:  profileService,
		Group:    groupService,
		Channel:  channelService,
		Presence: presenceService,
		Picker:   pickerService,
	}

	// The SSE handler resolves its user from the request context set by
	// the API auth middleware.
	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger, api.UserIDFromContext)

	handler := api.NewServer(cfg, storeHandle.Store, services, sseHandler, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
