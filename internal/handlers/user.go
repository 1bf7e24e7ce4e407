package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"github.com/taskpilot-dev/taskpilot/internal/services"
	"github.com/taskpilot-dev/taskpilot/internal/types"
	"github.com/taskpilot-dev/taskpilot/internal/utils"
)

type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(ctx *gin.Context) {
	users, err := h.users.List()

	if err != nil {
		respondError(ctx, err, "Failed to retrieve users")
		return
	}

	response := make([]types.UserResponse, 0, len(users))

	for _, user := range users {
		response = append(response, types.UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *UserHandler) UpdateRole(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateUserRoleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateRole(id, req.Role)

	if err != nil {
		respondError(ctx, err, "Failed to update role")
		return
	}

	ctx.JSON(http.StatusOK, types.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
}

func (h *UserHandler) Delete(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.Delete(id); err != nil {
		respondError(ctx, err, "Failed to delete user")
		return
	}

	ctx.Status(http.StatusNoContent)
}
