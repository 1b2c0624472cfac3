// Package di provides dependency injection configuration for the Relay server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/relaychat/relay-server/internal/auth"
	"github.com/relaychat/relay-server/internal/config"
	"github.com/relaychat/relay-server/internal/di/providers"
	"github.com/relaychat/relay-server/internal/logger"
	"github.com/relaychat/relay-server/internal/media/avatars"
	"github.com/relaychat/relay-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogLevel)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideConfigWatcher)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideAvatarStorage)
	do.Provide(injector, providers.ProvideAuditLog)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideGroupService)
	do.Provide(injector, providers.ProvideChannelService)
	do.Provide(injector, providers.ProvidePresenceService)
	do.Provide(injector, providers.ProvidePickerService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.ConfigWatcherHandle](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*avatars.Storage](injector)
	_ = do.MustInvoke[*providers.AuditLogHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.GroupService](injector)
	_ = do.MustInvoke[*service.ChannelService](injector)
	_ = do.MustInvoke[*service.PresenceService](injector)
	_ = do.MustInvoke[*service.PickerService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
