package handlers

import (
	"net/http"

	"github.com/LuqmanKt98/hangout-app/models"
	"github.com/LuqmanKt98/hangout-app/services"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	Requests *services.RequestService
}

func NewRequestHandler(svc *services.RequestService) *RequestHandler {
	return &RequestHandler{Requests: svc}
}

// POST /api/requests
func (h *RequestHandler) Create(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateHangoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	hr, err := h.Requests.Create(c.Request.Context(), userID, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Request sent", hr)
}

// GET /api/requests/received
func (h *RequestHandler) ListReceived(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	reqs, err := h.Requests.ListReceived(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", reqs)
}

// GET /api/requests/sent
func (h *RequestHandler) ListSent(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	reqs, err := h.Requests.ListSent(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", reqs)
}

// GET /api/plans
func (h *RequestHandler) ListPlans(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	plans, err := h.Requests.ListConfirmedPlans(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", plans)
}

// PUT /api/requests/:id/status
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	hr, err := h.Requests.UpdateStatus(c.Request.Context(), userID, requestID, req.Status)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Request "+string(hr.Status), hr)
}

// PUT /api/requests/:id/seen
func (h *RequestHandler) MarkSeen(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Requests.MarkSeen(c.Request.Context(), userID, requestID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Marked seen", nil)
}

// DELETE /api/requests/:id
func (h *RequestHandler) Delete(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Requests.Delete(c.Request.Context(), userID, requestID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Request deleted", nil)
}

// DELETE /api/requests
func (h *RequestHandler) ClearHistory(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	result, err := h.Requests.ClearHistory(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "History cleared", result)
}
