package donation

import (
	"github.com/gin-gonic/gin"

	"github.com/jeevanrakshak/donor-api/internal/handler"
	"github.com/jeevanrakshak/donor-api/internal/model"
	donorsvc "github.com/jeevanrakshak/donor-api/internal/service/donor"
	"github.com/jeevanrakshak/donor-api/internal/service/lifecycle"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	"github.com/jeevanrakshak/donor-api/pkg/errors"
	"github.com/jeevanrakshak/donor-api/pkg/httputil"
)

type Handler struct {
	lifecycle *lifecycle.Service
	donors    *donorsvc.Service
	donations repository.DonationRepository
}

func NewHandler(lifecycle *lifecycle.Service, donors *donorsvc.Service, donations repository.DonationRepository) *Handler {
	return &Handler{
		lifecycle: lifecycle,
		donors:    donors,
		donations: donations,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	donations := rg.Group("/donations")
	{
		donations.GET("", h.ListDonations)
		donations.POST("/external", h.LogExternalDonation)
	}
}

// ListDonations returns the authenticated donor's own donation history.
func (h *Handler) ListDonations(c *gin.Context) {
	donorID, err := handler.DonorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	donations, err := h.donations.ListByDonor(c.Request.Context(), donorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, donations)
}

// LogExternalDonation records a donation made outside the platform. It never
// touches any request or the leaderboard count.
func (h *Handler) LogExternalDonation(c *gin.Context) {
	donorID, err := handler.DonorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.LogExternalDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	donor, err := h.donors.Get(c.Request.Context(), donorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	donation, err := h.lifecycle.LogExternalDonation(c.Request.Context(), donor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, donation)
}
