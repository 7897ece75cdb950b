package api

import (
	"carbon-market/internal/middleware"
	"carbon-market/internal/models"
	"carbon-market/internal/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

// requireProjectOwner loads the project and verifies the acting account owns
// it (admins pass as well).
func requireProjectOwner(c *gin.Context, projectID uint) (*models.Project, bool) {
	project, err := svc.Projects.GetProject(projectID)
	if err != nil {
		response.FromError(c, err)
		return nil, false
	}

	user := middleware.CurrentUser(c)
	if project.OwnerID != user.ID && !user.Role.Has(models.CapApproveProjects) {
		response.ErrorJSON(c, http.StatusForbidden, "Not the project owner")
		return nil, false
	}
	return project, true
}

// GetProjectCredits lists the credit ledger of an owned project
func GetProjectCredits(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if _, ok := requireProjectOwner(c, id); !ok {
		return
	}

	credits, err := svc.Credits.CreditsByProject(id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, credits)
}

// GetMyCredits lists credits bought by the acting account
func GetMyCredits(c *gin.Context) {
	user := middleware.CurrentUser(c)
	credits, err := svc.Credits.CreditsByBuyer(user.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, credits)
}

// AddCreditsRequest represents a later issuance on a confirmed project
type AddCreditsRequest struct {
	Count int `json:"count" binding:"required,gt=0"`
}

// AddCredits mints additional credits for a confirmed project
func AddCredits(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AddCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	project, err := svc.Credits.AddCredits(id, req.Count)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, project)
}

// ListingRequest represents a for-sale cap declaration
type ListingRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ListCreditsForSale sets how many credits the project offers for sale
func ListCreditsForSale(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if _, ok := requireProjectOwner(c, id); !ok {
		return
	}

	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	project, err := svc.Credits.ListForSale(id, *req.Quantity)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, project)
}

// UpdateCreditsInfoRequest represents a price and for-sale quantity update
type UpdateCreditsInfoRequest struct {
	Price    float64 `json:"price" binding:"required,gt=0"`
	Quantity *int    `json:"quantity" binding:"required"`
}

// UpdateCreditsInfo updates the project price and rewrites unsold unit prices
func UpdateCreditsInfo(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if _, ok := requireProjectOwner(c, id); !ok {
		return
	}

	var req UpdateCreditsInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	project, err := svc.Credits.UpdateCreditsInfo(id, req.Price, *req.Quantity)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, project)
}

// SellRequest represents a direct sell-down to a known buyer
type SellRequest struct {
	BuyerID  uint `json:"buyer_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,gt=0"`
}

// SellCredits transfers the oldest-expiring unsold credits to the buyer
func SellCredits(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if _, ok := requireProjectOwner(c, id); !ok {
		return
	}

	var req SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	sold, err := svc.Credits.Sell(id, req.BuyerID, req.Quantity)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, sold)
}
