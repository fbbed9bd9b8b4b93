package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"orgaccount-backend/server/middleware"
	"orgaccount-backend/services/organization"
	"orgaccount-backend/shared/utils/query"
)

// OrganizationHandler serves organization management. All routes are
// admin-only; the router enforces that.
type OrganizationHandler struct {
	orgs *organization.Service
}

func NewOrganizationHandler(orgs *organization.Service) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs}
}

// CreateOrganizationRequest carries a new organization.
type CreateOrganizationRequest struct {
	Name     string     `json:"name" binding:"required" example:"Acme Corp"`
	Location string     `json:"location" example:"Berlin"`
	Phone    string     `json:"phone" example:"+49 30 1234567"`
	OwnerID  *uuid.UUID `json:"owner_id"`
}

// AddUsersRequest names the accounts to move into the organization.
type AddUsersRequest struct {
	PKs []uuid.UUID `json:"pks" binding:"required"`
}

// POST /orgs/create_org
// @Summary Create an organization (admin)
// @Description The caller becomes the owner unless owner_id is given
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body CreateOrganizationRequest true "Organization data"
// @Success 201 {object} map[string]interface{} "Created organization"
// @Failure 400 {object} map[string]interface{} "Validation errors"
// @Router /orgs/create_org [post]
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	org, err := h.orgs.Create(c.Request.Context(), organization.CreateParams{
		Name:     req.Name,
		Location: req.Location,
		Phone:    req.Phone,
		OwnerID:  req.OwnerID,
	}, middleware.CurrentUser(c))
	if err != nil {
		if errors.Is(err, organization.ErrUnknownAccount) {
			c.JSON(http.StatusBadRequest, gin.H{"owner_id": []string{organization.ErrUnknownAccount.Error()}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		return
	}

	c.JSON(http.StatusCreated, org)
}

// GET /orgs/:id/list_users
// @Summary List an organization's members (admin)
// @Description Members in creation order, five per page
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Param page query int false "Page number"
// @Success 200 {object} map[string]interface{} "Members with pagination metadata"
// @Failure 404 {object} map[string]string "Unknown organization"
// @Router /orgs/{id}/list_users [get]
func (h *OrganizationHandler) ListUsers(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	members, pagination, err := h.orgs.ListMembers(c.Request.Context(), id, query.ParsePage(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	serialized := make([]gin.H, 0, len(members))
	for i := range members {
		serialized = append(serialized, serializeUser(&members[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      serialized,
		"pagination": pagination,
	})
}

// POST /orgs/:id/add_users
// @Summary Add accounts to an organization (admin)
// @Description Roster union: listed accounts join, existing members stay. All ids must exist or nothing changes.
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param users body AddUsersRequest true "Account ids"
// @Success 200 {object} map[string]string "Roster updated"
// @Failure 400 {object} map[string]interface{} "Unknown account in the list"
// @Failure 404 {object} map[string]string "Unknown organization"
// @Router /orgs/{id}/add_users [post]
func (h *OrganizationHandler) AddUsers(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req AddUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	if err := h.orgs.AddMembers(c.Request.Context(), id, req.PKs); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "Users added to organization."})
}

func (h *OrganizationHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, organization.ErrUnknownOrganization):
		c.JSON(http.StatusNotFound, gin.H{"detail": organization.ErrUnknownOrganization.Error()})
	case errors.Is(err, organization.ErrUnknownAccount):
		c.JSON(http.StatusBadRequest, gin.H{"pks": []string{organization.ErrUnknownAccount.Error()}})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
	}
}

func (h *OrganizationHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return uuid.Nil, false
	}
	return id, true
}
