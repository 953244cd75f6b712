package handlers

import (
	"net/http"

	"github.com/LuqmanKt98/hangout-app/models"
	"github.com/LuqmanKt98/hangout-app/services"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	Friends *services.FriendService
}

func NewFriendHandler(svc *services.FriendService) *FriendHandler {
	return &FriendHandler{Friends: svc}
}

// GET /api/friends
func (h *FriendHandler) List(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	friends, err := h.Friends.ListFriends(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", friends)
}

// DELETE /api/friends/:id
func (h *FriendHandler) Remove(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	friendID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Friends.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Friend removed", nil)
}

// POST /api/friends/requests
func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	fr, err := h.Friends.SendFriendRequest(c.Request.Context(), userID, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Friend request sent", fr)
}

// GET /api/friends/requests/received
func (h *FriendHandler) ListReceived(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	reqs, err := h.Friends.ListReceivedFriendRequests(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", reqs)
}

// GET /api/friends/requests/sent
func (h *FriendHandler) ListSent(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	reqs, err := h.Friends.ListSentFriendRequests(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", reqs)
}

// PUT /api/friends/requests/:id/accept
func (h *FriendHandler) Accept(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Friends.AcceptFriendRequest(c.Request.Context(), userID, requestID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Friend request accepted", nil)
}

// PUT /api/friends/requests/:id/decline
func (h *FriendHandler) Decline(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Friends.DeclineFriendRequest(c.Request.Context(), userID, requestID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Friend request declined", nil)
}

// POST /api/users/search
func (h *FriendHandler) Search(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.SearchUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	results, err := h.Friends.SearchUsers(c.Request.Context(), userID, req.Query)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", results)
}
