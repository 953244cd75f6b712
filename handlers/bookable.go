package handlers

import (
	"net/http"

	"github.com/LuqmanKt98/hangout-app/models"
	"github.com/LuqmanKt98/hangout-app/services"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/gin-gonic/gin"
)

type BookableHandler struct {
	Bookables *services.BookableService
}

func NewBookableHandler(svc *services.BookableService) *BookableHandler {
	return &BookableHandler{Bookables: svc}
}

// POST /api/bookable
func (h *BookableHandler) Create(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateBookableLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	link, err := h.Bookables.CreateLink(c.Request.Context(), userID, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Link created", link)
}

// GET /api/bookable
func (h *BookableHandler) ListMine(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	links, err := h.Bookables.ListMine(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", links)
}

// GET /book/:token
func (h *BookableHandler) Resolve(c *gin.Context) {
	link, err := h.Bookables.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", link)
}

// POST /book/:token
func (h *BookableHandler) Book(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	booking, err := h.Bookables.Book(c.Request.Context(), userID, c.Param("token"), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Slot booked", booking)
}

// PUT /api/bookable/:id/active
func (h *BookableHandler) ToggleActive(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	linkID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.ToggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	link, err := h.Bookables.ToggleActive(c.Request.Context(), userID, linkID, *req.IsActive)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Link updated", link)
}

// DELETE /api/bookable/:id
func (h *BookableHandler) Delete(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	linkID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Bookables.DeleteLink(c.Request.Context(), userID, linkID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Link deleted", nil)
}

// GET /api/bookable/:id/bookings
func (h *BookableHandler) ListBookings(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	linkID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	bookings, err := h.Bookables.ListBookings(c.Request.Context(), userID, linkID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", bookings)
}
