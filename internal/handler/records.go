package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/township/internal/auth"
	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/service"
)

// RecordHandler serves payments, issues, notifications and the dashboard.
//
// ROLE-AWARE READS:
// The same GET route answers both roles. An admin sees every record and can
// filter with ?search=&status=&type=; a resident sees only their own flat.
// Writes are split by role at the router (see server.routes).
type RecordHandler struct {
	payments      *service.PaymentService
	issues        *service.IssueService
	notifications *service.NotificationService
	overview      *service.OverviewService
}

func NewRecordHandler(
	payments *service.PaymentService,
	issues *service.IssueService,
	notifications *service.NotificationService,
	overview *service.OverviewService,
) *RecordHandler {
	return &RecordHandler{
		payments:      payments,
		issues:        issues,
		notifications: notifications,
		overview:      overview,
	}
}

// currentUser is only ever missing if a route was mounted without
// RequireAuth; treat that as unauthenticated rather than panicking.
func currentUser(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "not logged in"})
	}
	return u, ok
}

// =========================================================================
// PAYMENTS
// =========================================================================

// HandleListPayments serves GET /api/payments.
func (h *RecordHandler) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	if u.Role != model.RoleAdmin {
		writeJSON(w, http.StatusOK, h.payments.ListForFlat(u.FlatNumber))
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.payments.List(service.PaymentFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
	}))
}

// HandleRecordPayment serves POST /api/payments. Admin only.
func (h *RecordHandler) HandleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var in service.RecordInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.payments.Record(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleMarkPaid serves POST /api/payments/{id}/paid. Admin only.
func (h *RecordHandler) HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// =========================================================================
// ISSUES
// =========================================================================

// HandleListIssues serves GET /api/issues.
func (h *RecordHandler) HandleListIssues(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	if u.Role != model.RoleAdmin {
		writeJSON(w, http.StatusOK, h.issues.ListForFlat(u.FlatNumber))
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.issues.List(service.IssueFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Type:   q.Get("type"),
	}))
}

type raiseIssueRequest struct {
	IssueType   string `json:"issueType"`
	Description string `json:"description"`
}

// HandleRaiseIssue serves POST /api/issues. Residents only.
func (h *RecordHandler) HandleRaiseIssue(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req raiseIssueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	issue, err := h.issues.Raise(r.Context(), u, req.IssueType, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

// HandleUpdateIssue serves PUT /api/issues/{id}. Admin only.
func (h *RecordHandler) HandleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	var in service.IssueUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	issue, err := h.issues.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// =========================================================================
// NOTIFICATIONS
// =========================================================================

// HandleListNotifications serves GET /api/notifications.
func (h *RecordHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	if u.Role != model.RoleAdmin {
		writeJSON(w, http.StatusOK, h.notifications.ListFor(u))
		return
	}
	writeJSON(w, http.StatusOK, h.notifications.List())
}

// HandleSendNotification serves POST /api/notifications. Admin only.
func (h *RecordHandler) HandleSendNotification(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in service.SendInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	n, err := h.notifications.Send(r.Context(), u, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// =========================================================================
// OVERVIEW
// =========================================================================

// HandleOverview serves GET /api/overview.
func (h *RecordHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	if u.Role == model.RoleAdmin {
		writeJSON(w, http.StatusOK, h.overview.Admin())
		return
	}
	writeJSON(w, http.StatusOK, h.overview.Resident(u))
}
