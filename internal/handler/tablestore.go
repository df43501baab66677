package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/tablestore"
)

// TableStoreHandler serves the remote store wire contract on a single
// endpoint.
//
// It answers 200 even on failure and reports the problem in the body:
// {"error": ...} on read, {"success": false, "error": ...} on write.
// Clients must look at the body, not the status.
type TableStoreHandler struct {
	store  *tablestore.Store
	logger *slog.Logger
}

func NewTableStoreHandler(store *tablestore.Store, logger *slog.Logger) *TableStoreHandler {
	return &TableStoreHandler{store: store, logger: logger}
}

type readResponse struct {
	Users         []tablestore.Object `json:"users"`
	Payments      []tablestore.Object `json:"payments"`
	Issues        []tablestore.Object `json:"issues"`
	Notifications []tablestore.Object `json:"notifications"`
}

type writeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HandleRead returns every table.
//
// HTTP: GET /
func (h *TableStoreHandler) HandleRead(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ReadAll(r.Context())
	if err != nil {
		h.logger.Error("table read failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, readResponse{
		Users:         tables[model.Users],
		Payments:      tables[model.Payments],
		Issues:        tables[model.Issues],
		Notifications: tables[model.Notifications],
	})
}

// HandleWrite replaces every table present in the body.
//
// HTTP: POST /
func (h *TableStoreHandler) HandleWrite(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var payload map[string][]map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusOK, writeResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	written, err := h.store.WriteAll(r.Context(), payload)
	if err != nil {
		h.logger.Error("table write failed",
			slog.Any("written", written),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusOK, writeResponse{Error: err.Error()})
		return
	}

	h.logger.Info("tables written", slog.Any("tables", written))
	writeJSON(w, http.StatusOK, writeResponse{Success: true, Message: "Data synced successfully"})
}
