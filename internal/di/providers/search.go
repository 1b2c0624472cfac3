package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/relaychat/relay-server/internal/config"
	"github.com/relaychat/relay-server/internal/logger"
	"github.com/relaychat/relay-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index and wires it to the
// store so profile and group writes are indexed automatically.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(cfg.Data.BasePath, "search"),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(index)

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchReindexIfNeeded backfills the index from the store when the
// index is empty but profiles exist (fresh index after a mapping change).
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	profiles, err := storeHandle.ListProfiles(ctx)
	if err != nil || len(profiles) == 0 {
		return
	}

	log.Info("Search index is empty but profiles exist, triggering initial reindex",
		"profile_count", len(profiles),
	)

	go func() {
		reindexCtx := context.Background()
		indexed := 0
		for i := range profiles {
			if err := indexHandle.IndexProfile(reindexCtx, &profiles[i]); err != nil {
				log.Warn("Failed to index profile", "user_id", profiles[i].ID, "error", err)
				continue
			}
			indexed++
		}

		groups, err := storeHandle.ListGroups(reindexCtx)
		if err != nil {
			log.Warn("Failed to list groups for reindex", "error", err)
		}
		for i := range groups {
			if err := indexHandle.IndexGroup(reindexCtx, &groups[i]); err != nil {
				log.Warn("Failed to index group", "group_id", groups[i].ID, "error", err)
				continue
			}
			indexed++
		}

		log.Info("Initial search reindex completed", "documents", indexed)
	}()
}
