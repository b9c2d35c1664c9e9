package request

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jeevanrakshak/donor-api/internal/handler"
	"github.com/jeevanrakshak/donor-api/internal/model"
	donorsvc "github.com/jeevanrakshak/donor-api/internal/service/donor"
	"github.com/jeevanrakshak/donor-api/internal/service/lifecycle"
	requestsvc "github.com/jeevanrakshak/donor-api/internal/service/request"
	"github.com/jeevanrakshak/donor-api/pkg/errors"
	"github.com/jeevanrakshak/donor-api/pkg/httputil"
)

type Handler struct {
	requests  *requestsvc.Service
	lifecycle *lifecycle.Service
	donors    *donorsvc.Service
}

func NewHandler(requests *requestsvc.Service, lifecycle *lifecycle.Service, donors *donorsvc.Service) *Handler {
	return &Handler{
		requests:  requests,
		lifecycle: lifecycle,
		donors:    donors,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	requests := rg.Group("/requests")
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListRequests)
		requests.GET("/open", h.ListOpenRequests)
		requests.GET("/:id", h.GetRequest)
		requests.POST("/:id/accept", h.AcceptRequest)
		requests.POST("/:id/fulfill", h.FulfillRequest)
	}
}

func (h *Handler) CreateRequest(c *gin.Context) {
	requesterID, err := handler.DonorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	request, err := h.requests.Create(c.Request.Context(), requesterID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, request)
}

func (h *Handler) GetRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid request ID", err))
		return
	}

	request, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, request)
}

func (h *Handler) ListRequests(c *gin.Context) {
	requests, err := h.requests.ListAll(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, requests)
}

func (h *Handler) ListOpenRequests(c *gin.Context) {
	requests, err := h.requests.ListOpen(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, requests)
}

// AcceptRequest claims an open request for the authenticated donor.
func (h *Handler) AcceptRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid request ID", err))
		return
	}

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

	donation, err := h.lifecycle.Accept(c.Request.Context(), id, donor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, donation)
}

// FulfillRequest is the requester's confirmation that the donation happened.
func (h *Handler) FulfillRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid request ID", err))
		return
	}

	actorID, err := handler.DonorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.lifecycle.MarkFulfilled(c.Request.Context(), id, actorID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"status": string(model.RequestStatusFulfilled)})
}
