package api

import (
	"carbon-market/internal/middleware"
	"carbon-market/internal/models"
	"carbon-market/internal/response"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads the :id path parameter.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// CreateProjectRequest represents a project submission
type CreateProjectRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	Certification  string   `json:"certification"`
	PricePerCredit *float64 `json:"price_per_credit"`
}

// CreateProject submits a new offset project for review
func CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	project := &models.Project{
		Name:           req.Name,
		Description:    req.Description,
		Certification:  req.Certification,
		PricePerCredit: req.PricePerCredit,
		OwnerID:        user.ID,
	}

	if err := svc.Projects.CreateProject(project); err != nil {
		response.FromError(c, err)
		return
	}
	response.CreatedJSON(c, project)
}

// GetMarketplace lists confirmed projects offered for sale
func GetMarketplace(c *gin.Context) {
	projects, err := svc.Projects.GetMarketplaceProjects()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, projects)
}

// GetMyProjects lists the acting account's projects
func GetMyProjects(c *gin.Context) {
	user := middleware.CurrentUser(c)
	projects, err := svc.Projects.GetProjectsByOwner(user.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, projects)
}

// GetProject returns one project
func GetProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	project, err := svc.Projects.GetProject(id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, project)
}

// UpdateProjectRequest represents a project metadata update
type UpdateProjectRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Certification string `json:"certification"`
}

// UpdateProject updates descriptive fields of an owned project
func UpdateProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Certification != "" {
		updates["certification"] = req.Certification
	}

	user := middleware.CurrentUser(c)
	if err := svc.Projects.UpdateProject(id, user.ID, updates); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, nil)
}

// DeleteProject removes a project and its credits
func DeleteProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	if err := svc.Projects.DeleteProject(id, user); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, nil)
}

// VisibilityRequest represents a marketplace visibility toggle
type VisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

// SetProjectVisibility toggles the owner's for-sale visibility flag
func SetProjectVisibility(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	if err := svc.Projects.SetVisibility(id, user.ID, *req.Visible); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, nil)
}

// GetPendingProjects lists projects awaiting review
func GetPendingProjects(c *gin.Context) {
	projects, err := svc.Projects.GetPendingProjects()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, projects)
}

// ApproveRequest represents an approval decision with its issuance count
type ApproveRequest struct {
	Credits int `json:"credits" binding:"required,gt=0"`
}

// ApproveProject confirms a project and issues its first credits
func ApproveProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	project, err := svc.Projects.Approve(id, req.Credits)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, project)
}

// DenyProject rejects an under-review project
func DenyProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	project, err := svc.Projects.Deny(id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, project)
}
