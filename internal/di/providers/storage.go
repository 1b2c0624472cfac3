package providers

import (
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/relaychat/relay-server/internal/audit"
	"github.com/relaychat/relay-server/internal/config"
	"github.com/relaychat/relay-server/internal/logger"
	"github.com/relaychat/relay-server/internal/media/avatars"
)

// ProvideAvatarStorage provides the on-disk avatar storage.
func ProvideAvatarStorage(i do.Injector) (*avatars.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := avatars.NewStorage(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("avatar storage: %w", err)
	}

	log.Info("Avatar storage initialized")

	return storage, nil
}

// AuditLogHandle wraps the audit log with shutdown capability.
type AuditLogHandle struct {
	*audit.Log
}

// Shutdown implements do.Shutdownable.
func (h *AuditLogHandle) Shutdown() error {
	return h.Close()
}

// ProvideAuditLog provides the SQLite-backed audit log.
func ProvideAuditLog(i do.Injector) (*AuditLogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	auditPath := filepath.Join(cfg.Data.BasePath, "audit.db")
	auditLog, err := audit.Open(auditPath, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}

	log.Info("Audit log initialized", "path", auditPath)

	return &AuditLogHandle{Log: auditLog}, nil
}
