package handlers

import (
	"net/http"

	"dashboard-backend/internal/auth"
	apperrors "dashboard-backend/internal/errors"
	"dashboard-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// OrganizationHandler handles HTTP requests for organizations
type OrganizationHandler struct {
	orgService    service.OrganizationServiceInterface
	accessService service.AccessServiceInterface
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgService service.OrganizationServiceInterface, accessService service.AccessServiceInterface) *OrganizationHandler {
	return &OrganizationHandler{
		orgService:    orgService,
		accessService: accessService,
	}
}

// Create handles POST /organizations
// @Summary Create an organization
// @Description Create an organization owned by the authenticated user
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body service.CreateOrganizationRequest true "Organization data"
// @Success 201 {object} service.OrganizationResponse "Successfully created"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Security BearerAuth
// @Router /organizations [post]
func (h *OrganizationHandler) Create(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req service.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	org, err := h.orgService.Create(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

// Get handles GET /organizations/:id
// @Summary Get an organization by id
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} service.OrganizationResponse "Organization"
// @Failure 404 {object} map[string]interface{} "Organization not found"
// @Security BearerAuth
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	org, err := h.orgService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// List handles GET /organizations
// @Summary List organizations for the authenticated user
// @Description Returns organizations the user owns or belongs to through a team. With owned=true, only owned organizations.
// @Tags organizations
// @Produce json
// @Param owned query bool false "Only organizations owned by the user"
// @Success 200 {array} service.OrganizationResponse "Organizations"
// @Security BearerAuth
// @Router /organizations [get]
func (h *OrganizationHandler) List(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var orgs []service.OrganizationResponse
	var err error
	if c.Query("owned") == "true" {
		orgs, err = h.orgService.GetByOwner(userID)
	} else {
		orgs, err = h.orgService.GetByUser(userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orgs)
}

// Teams handles GET /organizations/:id/teams
// @Summary List all teams of an organization
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {array} service.TeamResponse "Teams"
// @Failure 404 {object} map[string]interface{} "Organization not found"
// @Security BearerAuth
// @Router /organizations/{id}/teams [get]
func (h *OrganizationHandler) Teams(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	teams, err := h.orgService.GetTeams(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, teams)
}

// Role handles GET /organizations/:id/role
// @Summary Get the authenticated user's derived role in an organization
// @Description Returns admin for the owner, manager for a manager in any team, member for any other membership, none otherwise
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} map[string]interface{} "Derived role"
// @Security BearerAuth
// @Router /organizations/{id}/role [get]
func (h *OrganizationHandler) Role(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.accessService.GetUserOrgRole(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if role == nil {
		c.JSON(http.StatusOK, gin.H{"role": "none"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": *role})
}

// Update handles PUT /organizations/:id
// @Summary Update an organization
// @Description Update profile fields; only the owner may update. Ownership is not transferable.
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param organization body service.UpdateOrganizationRequest true "Fields to update"
// @Success 200 {object} service.OrganizationResponse "Updated organization"
// @Failure 403 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "Organization not found"
// @Security BearerAuth
// @Router /organizations/{id} [put]
func (h *OrganizationHandler) Update(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	isOwner, err := h.accessService.IsOrganizationOwner(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !isOwner {
		respondError(c, apperrors.ErrNotOrganizationOwner)
		return
	}

	var req service.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	org, err := h.orgService.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// Delete handles DELETE /organizations/:id
// @Summary Delete an organization
// @Description Only the owner may delete the organization
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "Organization not found"
// @Security BearerAuth
// @Router /organizations/{id} [delete]
func (h *OrganizationHandler) Delete(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	isOwner, err := h.accessService.IsOrganizationOwner(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !isOwner {
		respondError(c, apperrors.ErrNotOrganizationOwner)
		return
	}

	if err := h.orgService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
