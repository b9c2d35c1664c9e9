package bank

import (
	"github.com/gin-gonic/gin"

	"github.com/jeevanrakshak/donor-api/internal/handler"
	"github.com/jeevanrakshak/donor-api/internal/model"
	banksvc "github.com/jeevanrakshak/donor-api/internal/service/bank"
	"github.com/jeevanrakshak/donor-api/pkg/errors"
	"github.com/jeevanrakshak/donor-api/pkg/httputil"
)

type Handler struct {
	service     *banksvc.Service
	adminEmails map[string]struct{}
}

func NewHandler(service *banksvc.Service, adminEmails []string) *Handler {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		admins[email] = struct{}{}
	}
	return &Handler{
		service:     service,
		adminEmails: admins,
	}
}

// RegisterPublicRoutes exposes the read-only directory.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/banks", h.ListBanks)
	rg.GET("/camps", h.ListCamps)
}

// RegisterRoutes exposes the admin-only write endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/banks", h.requireAdmin, h.CreateBank)
	rg.POST("/camps", h.requireAdmin, h.CreateCamp)
}

func (h *Handler) requireAdmin(c *gin.Context) {
	if _, ok := h.adminEmails[handler.DonorEmail(c)]; !ok {
		httputil.RespondWithError(c, errors.Forbidden("admin access required", nil))
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handler) ListBanks(c *gin.Context) {
	banks, err := h.service.ListBanks(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, banks)
}

func (h *Handler) CreateBank(c *gin.Context) {
	var req model.CreateBloodBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	bank, err := h.service.CreateBank(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, bank)
}

func (h *Handler) ListCamps(c *gin.Context) {
	camps, err := h.service.ListCamps(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, camps)
}

func (h *Handler) CreateCamp(c *gin.Context) {
	var req model.CreateDonationCampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	camp, err := h.service.CreateCamp(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, camp)
}
