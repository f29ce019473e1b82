package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loopmeet/api/internal/app"
	"github.com/loopmeet/api/internal/infra/http/middleware"
	"github.com/loopmeet/api/pkg/apierror"
	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/logger"
)

// GroupHandler serves the group endpoints.
type GroupHandler struct {
	groups      *app.GroupService
	queries     *app.GroupQueryService
	invitations *app.InvitationQueryService
	logger      *logger.Logger
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(
	groups *app.GroupService,
	queries *app.GroupQueryService,
	invitations *app.InvitationQueryService,
	log *logger.Logger,
) *GroupHandler {
	return &GroupHandler{
		groups:      groups,
		queries:     queries,
		invitations: invitations,
		logger:      log.With("handler", "group"),
	}
}

// groupsResponse is the group overview plus the caller's pending
// invitations, so the client renders both from one request.
type groupsResponse struct {
	Owned              []app.GroupSummary          `json:"owned"`
	Member             []app.GroupSummary          `json:"member"`
	PendingInvitations []app.PendingInvitationView `json:"pending_invitations"`
}

// List handles GET /groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}

	view, err := h.queries.GetGroups(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	pending := []app.PendingInvitationView{}
	if email := middleware.GetEmail(r.Context()); email != "" {
		pendingView, err := h.invitations.ListPending(r.Context(), email)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		pending = pendingView.Invitations
	}

	respondJSON(w, http.StatusOK, groupsResponse{
		Owned:              view.Owned,
		Member:             view.Member,
		PendingInvitations: pending,
	})
}

type createGroupRequest struct {
	Name string `json:"name"`
}

// Create handles POST /groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}

	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.BadRequest(apierror.CodeBadRequest, "Invalid request body.").WriteJSON(w)
		return
	}

	summary, err := h.groups.Create(r.Context(), userID, req.Name)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, summary)
}

// Detail handles GET /groups/{groupID}.
func (h *GroupHandler) Detail(w http.ResponseWriter, r *http.Request) {
	groupID, err := shared.IDFromString(chi.URLParam(r, "groupID"))
	if err != nil {
		apierror.NotFound("Group").WriteJSON(w)
		return
	}

	view, err := h.queries.GetGroupDetail(r.Context(), groupID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

type renameGroupRequest struct {
	Name string `json:"name"`
}

// Rename handles PATCH /groups/{groupID}.
func (h *GroupHandler) Rename(w http.ResponseWriter, r *http.Request) {
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

	var req renameGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.BadRequest(apierror.CodeBadRequest, "Invalid request body.").WriteJSON(w)
		return
	}

	summary, err := h.groups.Rename(r.Context(), groupID, userID, req.Name)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// currentUserID parses the authenticated user ID from the request context.
func currentUserID(r *http.Request) (shared.ID, *apierror.Error) {
	id, err := shared.IDFromString(middleware.GetUserID(r.Context()))
	if err != nil {
		return shared.ID{}, apierror.Unauthorized("")
	}
	return id, nil
}
