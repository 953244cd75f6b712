package handlers

import (
	"net/http"

	"github.com/LuqmanKt98/hangout-app/models"
	"github.com/LuqmanKt98/hangout-app/services"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	Availability *services.AvailabilityService
}

func NewAvailabilityHandler(svc *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Availability: svc}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// POST /api/availability
func (h *AvailabilityHandler) Create(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	avail, err := h.Availability.Create(c.Request.Context(), userID, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Availability created", avail)
}

// GET /api/availability
func (h *AvailabilityHandler) ListOwn(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	windows, err := h.Availability.ListOwn(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", windows)
}

// GET /api/availability/shared
func (h *AvailabilityHandler) ListShared(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	windows, err := h.Availability.ListSharedWithMe(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", windows)
}

// PUT /api/availability/:id
func (h *AvailabilityHandler) Update(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	availID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	avail, err := h.Availability.Update(c.Request.Context(), userID, availID, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Availability updated", avail)
}

// DELETE /api/availability/:id
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	availID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Availability.Delete(c.Request.Context(), userID, availID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Availability deleted", nil)
}

// PUT /api/availability/:id/share
func (h *AvailabilityHandler) Share(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	availID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.ShareAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.Availability.ShareWith(c.Request.Context(), userID, availID, req); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Sharing updated", nil)
}

// GET /api/availability/:id/shares
func (h *AvailabilityHandler) SharedGrants(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	availID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	grants, err := h.Availability.SharedGrantsFor(c.Request.Context(), userID, availID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", grants)
}

// POST /api/availability/now
func (h *AvailabilityHandler) SetAvailableNow(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.AvailableNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	avail, err := h.Availability.SetAvailableNow(c.Request.Context(), userID, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "You're available now", avail)
}

// DELETE /api/availability/now
func (h *AvailabilityHandler) ClearAvailableNow(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	if err := h.Availability.ClearAvailableNow(c.Request.Context(), userID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Availability cleared", nil)
}
