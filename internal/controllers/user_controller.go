package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evacreport/backend/internal/middleware"
	"github.com/evacreport/backend/internal/services"
)

type UserController struct {
	users services.UserDirectory
}

func NewUserController(users services.UserDirectory) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) GetCurrentUser(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	user, err := uc.users.FindUserByEmail(c.Request.Context(), claims.Email)
	if err != nil {
		respondError(c, "user_controller", err)
		return
	}

	// Clear password from response
	user.Password = ""

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

func (uc *UserController) GetUsers(c *gin.Context) {
	users, err := uc.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, "user_controller", err)
		return
	}

	// Clear passwords from response
	for i := range users {
		users[i].Password = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}
