package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/township/internal/coordinator"
)

// Syncer is the part of the coordinator the sync endpoints need.
type Syncer interface {
	Load(ctx context.Context) coordinator.Source
	Status() coordinator.Status
}

// SyncHandler exposes reload and sync status.
type SyncHandler struct {
	sync   Syncer
	logger *slog.Logger
}

func NewSyncHandler(sync Syncer, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{sync: sync, logger: logger}
}

// HandleReload reruns the load protocol.
//
// HTTP: POST /api/reload
//
// It always answers 200: when the remote store is down the data simply
// comes from the local cache, and the body says so.
func (h *SyncHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	source := h.sync.Load(r.Context())
	writeJSON(w, http.StatusOK, h.sync.Status())
	h.logger.Debug("reload requested", slog.String("source", string(source)))
}

// HandleStatus reports where the data came from and whether the last
// change has reached the remote store.
//
// HTTP: GET /api/sync
func (h *SyncHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sync.Status())
}
