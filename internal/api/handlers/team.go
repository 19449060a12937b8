package handlers

import (
	"net/http"
	"strconv"

	"dashboard-backend/internal/auth"
	apperrors "dashboard-backend/internal/errors"
	"dashboard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TeamHandler handles HTTP requests for teams and memberships. Every mutation
// is gated on the manage predicate: organization owner or team manager.
type TeamHandler struct {
	teamService   service.TeamServiceInterface
	accessService service.AccessServiceInterface
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService service.TeamServiceInterface, accessService service.AccessServiceInterface) *TeamHandler {
	return &TeamHandler{
		teamService:   teamService,
		accessService: accessService,
	}
}

// requireManage enforces the manage predicate for the team, writing the error
// response itself when access is denied.
func (h *TeamHandler) requireManage(c *gin.Context, userID, teamID uuid.UUID) bool {
	canManage, err := h.accessService.CanManageTeam(userID, teamID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !canManage {
		respondError(c, apperrors.ErrNotTeamManager)
		return false
	}
	return true
}

// Create handles POST /teams
// @Summary Create a team
// @Description Create a team in an organization; only the organization owner may create teams
// @Tags teams
// @Accept json
// @Produce json
// @Param team body service.CreateTeamRequest true "Team data"
// @Success 201 {object} service.TeamResponse "Successfully created"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 403 {object} map[string]interface{} "Not the organization owner"
// @Security BearerAuth
// @Router /teams [post]
func (h *TeamHandler) Create(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req service.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isOwner, err := h.accessService.IsOrganizationOwner(userID, req.OrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !isOwner {
		respondError(c, apperrors.ErrNotOrganizationOwner)
		return
	}

	team, err := h.teamService.Create(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, team)
}

// Get handles GET /teams/:id
// @Summary Get a team with its member list
// @Tags teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} service.TeamResponse "Team"
// @Failure 404 {object} map[string]interface{} "Team not found"
// @Security BearerAuth
// @Router /teams/{id} [get]
func (h *TeamHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	team, err := h.teamService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// List handles GET /teams
// @Summary List teams
// @Description With ?organization_id= lists that organization's teams paginated; without it lists the authenticated user's teams
// @Tags teams
// @Produce json
// @Param organization_id query string false "Organization ID"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} service.TeamListResponse "Teams"
// @Security BearerAuth
// @Router /teams [get]
func (h *TeamHandler) List(c *gin.Context) {
	if orgParam := c.Query("organization_id"); orgParam != "" {
		orgID, err := uuid.Parse(orgParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization_id"})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		teams, err := h.teamService.GetByOrganization(orgID, page, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, teams)
		return
	}

	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	teams, err := h.teamService.GetByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

// Update handles PUT /teams/:id
// @Summary Update a team
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param team body service.UpdateTeamRequest true "Fields to update"
// @Success 200 {object} service.TeamResponse "Updated team"
// @Failure 403 {object} map[string]interface{} "May not manage this team"
// @Failure 404 {object} map[string]interface{} "Team not found"
// @Security BearerAuth
// @Router /teams/{id} [put]
func (h *TeamHandler) Update(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if !h.requireManage(c, userID, id) {
		return
	}

	var req service.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.teamService.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// Delete handles DELETE /teams/:id
// @Summary Delete a team
// @Tags teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]interface{} "May not manage this team"
// @Failure 404 {object} map[string]interface{} "Team not found"
// @Security BearerAuth
// @Router /teams/{id} [delete]
func (h *TeamHandler) Delete(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if !h.requireManage(c, userID, id) {
		return
	}

	if err := h.teamService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddMember handles POST /teams/:id/members
// @Summary Add a member to a team
// @Description Adds a user directly; duplicate memberships are rejected
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param member body service.AddMemberRequest true "Member data"
// @Success 200 {object} service.TeamResponse "Team with updated member list"
// @Failure 403 {object} map[string]interface{} "May not manage this team"
// @Failure 409 {object} map[string]interface{} "User is already a member"
// @Security BearerAuth
// @Router /teams/{id}/members [post]
func (h *TeamHandler) AddMember(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if !h.requireManage(c, userID, id) {
		return
	}

	var req service.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.AddedBy = userID

	team, err := h.teamService.AddMember(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// RemoveMember handles DELETE /teams/:id/members/:userId
// @Summary Remove a member from a team
// @Tags teams
// @Produce json
// @Param id path string true "Team ID"
// @Param userId path string true "User ID"
// @Success 200 {object} service.TeamResponse "Team with updated member list"
// @Failure 403 {object} map[string]interface{} "May not manage this team"
// @Failure 404 {object} map[string]interface{} "Membership not found"
// @Security BearerAuth
// @Router /teams/{id}/members/{userId} [delete]
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}

	if !h.requireManage(c, userID, id) {
		return
	}

	team, err := h.teamService.RemoveMember(id, memberID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// updateMemberRoleRequest is the body for role changes
type updateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateMemberRole handles PUT /teams/:id/members/:userId
// @Summary Change a member's role
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param userId path string true "User ID"
// @Param role body updateMemberRoleRequest true "New role"
// @Success 200 {object} service.TeamResponse "Team with updated member list"
// @Failure 400 {object} map[string]interface{} "Invalid role"
// @Failure 403 {object} map[string]interface{} "May not manage this team"
// @Failure 404 {object} map[string]interface{} "Membership not found"
// @Security BearerAuth
// @Router /teams/{id}/members/{userId} [put]
func (h *TeamHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}

	if !h.requireManage(c, userID, id) {
		return
	}

	var req updateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.teamService.UpdateMemberRole(id, memberID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// permissionRequest is the body for permission add/remove
type permissionRequest struct {
	Permission string `json:"permission" binding:"required"`
}

// AddPermission handles POST /teams/:id/permissions
// @Summary Add a permission to the team's permission set
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param permission body permissionRequest true "Permission"
// @Success 200 {object} service.TeamResponse "Team with updated permissions"
// @Failure 403 {object} map[string]interface{} "May not manage this team"
// @Security BearerAuth
// @Router /teams/{id}/permissions [post]
func (h *TeamHandler) AddPermission(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if !h.requireManage(c, userID, id) {
		return
	}

	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.teamService.AddPermission(id, req.Permission)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// RemovePermission handles DELETE /teams/:id/permissions
// @Summary Remove a permission from the team's permission set
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param permission body permissionRequest true "Permission"
// @Success 200 {object} service.TeamResponse "Team with updated permissions"
// @Failure 403 {object} map[string]interface{} "May not manage this team"
// @Security BearerAuth
// @Router /teams/{id}/permissions [delete]
func (h *TeamHandler) RemovePermission(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if !h.requireManage(c, userID, id) {
		return
	}

	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.teamService.RemovePermission(id, req.Permission)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}
