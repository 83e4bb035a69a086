package services

import (
	"surveyhub/internal/database"
	"surveyhub/internal/events"
	"surveyhub/internal/logger"
)

// Analytics results are derived from the full response set, so any saved
// response invalidates them wholesale.
const analyticsResultsKey = "analytics:results"

// CacheInvalidationService watches the event bus and drops cache entries
// made stale by writes on other server instances. Local writes already
// invalidate their own entries in the repositories.
type CacheInvalidationService struct {
	db       database.DB
	eventBus *events.EventBus
	log      logger.Logger
}

func NewCacheInvalidationService(db database.DB, eventBus *events.EventBus) *CacheInvalidationService {
	s := &CacheInvalidationService{
		db:       db,
		eventBus: eventBus,
		log:      logger.New("CacheInvalidationService"),
	}

	eventBus.Subscribe(s.handle)

	return s
}

func (s *CacheInvalidationService) handle(event events.Event) {
	log := s.log.Function("handle")

	switch event.Type {
	case events.TypeResponseSaved:
		if event.ResponseID != "" {
			if err := database.NewCacheBuilder(s.db.Cache.Response, event.ResponseID).Delete(); err != nil {
				log.Warn("failed to invalidate response cache", "responseID", event.ResponseID, "error", err)
			}
		}
		if err := database.NewCacheBuilder(s.db.Cache.Analytics, analyticsResultsKey).Delete(); err != nil {
			log.Warn("failed to invalidate analytics cache", "error", err)
		}
	case events.TypeUserCreated:
		// User rows are not cached; nothing to drop.
	}
}
