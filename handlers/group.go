package handlers

import (
	"net/http"

	"github.com/LuqmanKt98/hangout-app/models"
	"github.com/LuqmanKt98/hangout-app/services"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	Groups *services.GroupService
}

func NewGroupHandler(svc *services.GroupService) *GroupHandler {
	return &GroupHandler{Groups: svc}
}

// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	group, err := h.Groups.Create(c.Request.Context(), userID, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Group created", group)
}

// GET /api/groups
func (h *GroupHandler) List(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groups, err := h.Groups.ListMyGroups(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", groups)
}

// GET /api/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	group, err := h.Groups.Get(c.Request.Context(), userID, groupID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", group)
}

// PUT /api/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	group, err := h.Groups.Update(c.Request.Context(), userID, groupID, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Group updated", group)
}

// DELETE /api/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Groups.Delete(c.Request.Context(), userID, groupID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Group deleted", nil)
}

// POST /api/groups/:id/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.AddGroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.Groups.AddMember(c.Request.Context(), userID, groupID, req); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Member added", nil)
}

// DELETE /api/groups/:id/members/:userId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	if err := h.Groups.RemoveMember(c.Request.Context(), userID, groupID, targetID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Member removed", nil)
}

// PUT /api/groups/:id/members/:userId/role
func (h *GroupHandler) UpdateMemberRole(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.Groups.UpdateMemberRole(c.Request.Context(), userID, groupID, targetID, req.Role); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Role updated", nil)
}
