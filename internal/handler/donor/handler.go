package donor

import (
	"github.com/gin-gonic/gin"

	"github.com/jeevanrakshak/donor-api/internal/handler"
	"github.com/jeevanrakshak/donor-api/internal/model"
	donorsvc "github.com/jeevanrakshak/donor-api/internal/service/donor"
	requestsvc "github.com/jeevanrakshak/donor-api/internal/service/request"
	"github.com/jeevanrakshak/donor-api/pkg/errors"
	"github.com/jeevanrakshak/donor-api/pkg/httputil"
)

type Handler struct {
	donors   *donorsvc.Service
	requests *requestsvc.Service
}

func NewHandler(donors *donorsvc.Service, requests *requestsvc.Service) *Handler {
	return &Handler{
		donors:   donors,
		requests: requests,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	donors := rg.Group("/donors")
	{
		donors.GET("/search", h.SearchDonors)
		donors.GET("/me", h.GetProfile)
		donors.PATCH("/me", h.UpdateProfile)
		donors.PUT("/me/availability", h.SetAvailability)
		donors.POST("/me/token", h.RegisterToken)
		donors.GET("/me/dashboard", h.GetDashboard)
		donors.GET("/me/notifications", h.NewRequestCount)
	}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/leaderboard", h.Leaderboard)
}

// SearchDonors finds available donors, optionally narrowed to a blood group
// and a region.
func (h *Handler) SearchDonors(c *gin.Context) {
	var filter model.DonorFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	if filter.BloodGroup != "" && !filter.BloodGroup.IsValid() {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid blood group", nil))
		return
	}

	donors, err := h.donors.Search(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, donors)
}

func (h *Handler) GetProfile(c *gin.Context) {
	donorID, err := handler.DonorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	donor, err := h.donors.Get(c.Request.Context(), donorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, donor)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	donorID, err := handler.DonorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	donor, err := h.donors.UpdateProfile(c.Request.Context(), donorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, donor)
}

func (h *Handler) SetAvailability(c *gin.Context) {
	donorID, err := handler.DonorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	if err := h.donors.SetAvailability(c.Request.Context(), donorID, *req.Availability); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"availability": *req.Availability})
}

// RegisterToken stores a device push token for the authenticated donor.
// Re-registering the same token is a no-op.
func (h *Handler) RegisterToken(c *gin.Context) {
	donorID, err := handler.DonorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	if err := h.donors.RegisterToken(c.Request.Context(), donorID, req.Token); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, gin.H{"registered": true})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	donorID, err := handler.DonorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	dashboard, err := h.donors.Dashboard(c.Request.Context(), donorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, dashboard)
}

// NewRequestCount reports how many requests opened in the donor's region
// since they last checked, then moves the checkpoint forward.
func (h *Handler) NewRequestCount(c *gin.Context) {
	donorID, err := handler.DonorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	donor, err := h.donors.Get(c.Request.Context(), donorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	count, err := h.requests.NewRequestCount(c.Request.Context(), donor.Region, donor.LastCheckedAt)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.donors.TouchLastChecked(c.Request.Context(), donorID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"new_requests": count})
}

func (h *Handler) Leaderboard(c *gin.Context) {
	donors, err := h.donors.Leaderboard(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, donors)
}
