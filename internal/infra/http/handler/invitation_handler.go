package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loopmeet/api/internal/app"
	"github.com/loopmeet/api/internal/infra/http/middleware"
	"github.com/loopmeet/api/pkg/apierror"
	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/logger"
)

// InvitationHandler serves the invitation endpoints.
type InvitationHandler struct {
	invitations *app.InvitationService
	queries     *app.InvitationQueryService
	logger      *logger.Logger
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(
	invitations *app.InvitationService,
	queries *app.InvitationQueryService,
	log *logger.Logger,
) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		queries:     queries,
		logger:      log.With("handler", "invitation"),
	}
}

// ListPending handles GET /invitations. It lists the pending invitations
// addressed to the caller's email.
func (h *InvitationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetEmail(r.Context())
	if email == "" {
		respondJSON(w, http.StatusOK, app.PendingInvitationsView{Invitations: []app.PendingInvitationView{}})
		return
	}

	view, err := h.queries.ListPending(r.Context(), email)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

type createInvitationRequest struct {
	Email string `json:"email"`
}

// Create handles POST /groups/{groupID}/invitations.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}

	groupID, err := shared.IDFromString(chi.URLParam(r, "groupID"))
	if err != nil {
		apierror.NotFound("Group").WriteJSON(w)
		return
	}

	var req createInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.BadRequest(apierror.CodeBadRequest, "Invalid request body.").WriteJSON(w)
		return
	}

	view, err := h.invitations.Create(r.Context(), userID, groupID, req.Email)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, view)
}

// Accept handles POST /invitations/{invitationID}/accept.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, h.invitations.Accept)
}

// Decline handles POST /invitations/{invitationID}/decline.
func (h *InvitationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, h.invitations.Decline)
}

func (h *InvitationHandler) answer(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, userID shared.ID, email string, invitationID shared.ID) error,
) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}

	invitationID, err := shared.IDFromString(chi.URLParam(r, "invitationID"))
	if err != nil {
		apierror.NotFound("Invitation").WriteJSON(w)
		return
	}

	email := middleware.GetEmail(r.Context())
	if err := action(r.Context(), userID, email, invitationID); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
