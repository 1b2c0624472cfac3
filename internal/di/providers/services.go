package providers

import (
	"github.com/samber/do/v2"

	"github.com/relaychat/relay-server/internal/auth"
	"github.com/relaychat/relay-server/internal/config"
	"github.com/relaychat/relay-server/internal/logger"
	"github.com/relaychat/relay-server/internal/media/avatars"
	"github.com/relaychat/relay-server/internal/service"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	avatarStorage := do.MustInvoke[*avatars.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, indexHandle.SearchIndex, avatarStorage, log.Logger), nil
}

// ProvideGroupService provides the group service.
func ProvideGroupService(i do.Injector) (*service.GroupService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGroupService(storeHandle.Store, indexHandle.SearchIndex, log.Logger), nil
}

// ProvideChannelService provides the channel membership service.
func ProvideChannelService(i do.Injector) (*service.ChannelService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	auditHandle := do.MustInvoke[*AuditLogHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewChannelService(storeHandle.Store, auditHandle.Log, log.Logger), nil
}

// ProvidePresenceService provides the user presence service.
func ProvidePresenceService(i do.Injector) (*service.PresenceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPresenceService(storeHandle.Store, log.Logger), nil
}

// ProvidePickerService provides the channel invite picker service.
func ProvidePickerService(i do.Injector) (*service.PickerService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	groupService := do.MustInvoke[*service.GroupService](i)
	channelService := do.MustInvoke[*service.ChannelService](i)
	presenceService := do.MustInvoke[*service.PresenceService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPickerService(
		storeHandle.Store,
		profileService,
		groupService,
		channelService,
		presenceService,
		cfg.Picker.DebounceDelay,
		cfg.Picker.PerPage,
		log.Logger,
	), nil
}
