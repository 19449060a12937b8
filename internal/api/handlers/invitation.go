package handlers

import (
	"net/http"

	"dashboard-backend/internal/auth"
	apperrors "dashboard-backend/internal/errors"
	"dashboard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvitationHandler handles HTTP requests for the invitation lifecycle
type InvitationHandler struct {
	invitationService service.InvitationServiceInterface
	accessService     service.AccessServiceInterface
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitationService service.InvitationServiceInterface, accessService service.AccessServiceInterface) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		accessService:     accessService,
	}
}

// Create handles POST /invitations
// @Summary Issue an invitation
// @Description Issue a pending invitation to join a team; requires manage rights on the target team
// @Tags invitations
// @Accept json
// @Produce json
// @Param invitation body service.CreateInvitationRequest true "Invitation data"
// @Success 201 {object} service.InvitationResponse "Successfully created"
// @Failure 400 {object} map[string]interface{} "Invalid request body or role"
// @Failure 403 {object} map[string]interface{} "May not manage this team"
// @Security BearerAuth
// @Router /invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req service.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.InvitedBy = userID

	canManage, err := h.accessService.CanManageTeam(userID, req.TeamID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canManage {
		respondError(c, apperrors.ErrNotTeamManager)
		return
	}

	invitation, err := h.invitationService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invitation)
}

// List handles GET /invitations
// @Summary List invitations
// @Description Filter by ?email= (pending invitations for that address) or ?team_id= (all invitations for that team). One filter is required.
// @Tags invitations
// @Produce json
// @Param email query string false "Invitee email"
// @Param team_id query string false "Team ID"
// @Success 200 {array} service.InvitationResponse "Invitations"
// @Failure 400 {object} map[string]interface{} "Missing or invalid filter"
// @Security BearerAuth
// @Router /invitations [get]
func (h *InvitationHandler) List(c *gin.Context) {
	email := c.Query("email")
	teamParam := c.Query("team_id")

	switch {
	case email != "":
		invitations, err := h.invitationService.GetByEmail(email)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invitations)
	case teamParam != "":
		teamID, err := uuid.Parse(teamParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid team_id"})
			return
		}
		invitations, err := h.invitationService.GetByTeam(teamID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invitations)
	default:
		respondError(c, apperrors.ErrMissingInvitationFilter)
	}
}

// GetByToken handles GET /invitations/:token
// @Summary Look up an invitation by token
// @Description Public lookup used by the acceptance page. Returns the invitation details plus an is_valid flag; looking up an expired pending invitation transitions it to expired.
// @Tags invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} map[string]interface{} "Invitation with validity flag"
// @Failure 404 {object} map[string]interface{} "Invitation not found"
// @Router /invitations/{token} [get]
func (h *InvitationHandler) GetByToken(c *gin.Context) {
	token := c.Param("token")

	// Validity first so a stale pending invitation is expired before the
	// details are rendered.
	valid, err := h.invitationService.IsValid(token)
	if err != nil {
		respondError(c, err)
		return
	}

	invitation, err := h.invitationService.GetByToken(token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invitation": invitation,
		"is_valid":   valid,
	})
}

// Accept handles POST /invitations/:token/accept
// @Summary Accept an invitation
// @Description Resolve a pending invitation and join the team. The authenticated user's email must match the invitation.
// @Tags invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} service.TeamResponse "Joined team"
// @Failure 403 {object} map[string]interface{} "Email does not match invitation"
// @Failure 409 {object} map[string]interface{} "Invitation is no longer pending"
// @Security BearerAuth
// @Router /invitations/{token}/accept [post]
func (h *InvitationHandler) Accept(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	team, err := h.invitationService.AcceptInvitation(c.Param("token"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// Reject handles POST /invitations/:token/reject
// @Summary Reject an invitation
// @Description Resolve a pending invitation as rejected. The authenticated user's email must match the invitation.
// @Tags invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} map[string]interface{} "Rejected"
// @Failure 403 {object} map[string]interface{} "Email does not match invitation"
// @Failure 409 {object} map[string]interface{} "Invitation is no longer pending"
// @Security BearerAuth
// @Router /invitations/{token}/reject [post]
func (h *InvitationHandler) Reject(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.invitationService.RejectInvitation(c.Param("token"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}
