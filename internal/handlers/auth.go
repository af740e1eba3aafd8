package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/store"
	"github.com/chachabrian/ridelink-backend/pkg/utils"
)

type RegisterInput struct {
	Username  string      `json:"username" binding:"required,min=3,max=50"`
	Password  string      `json:"password" binding:"required,min=6"`
	Role      models.Role `json:"role" binding:"required,oneof=driver customer"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email" binding:"omitempty,email"`
	Phone     string      `json:"phone"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(st *store.Store, jwt *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		user, err := st.CreateUser(input.Username, input.Password, input.Role, models.Profile{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
			Phone:     input.Phone,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := jwt.GenerateToken(user)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, gin.H{"token": token, "user": user})
	}
}

func Login(st *store.Store, jwt *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		user, err := st.GetUserByUsername(input.Username)
		if err != nil || user.CheckPassword(input.Password) != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := jwt.GenerateToken(user)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"token": token, "user": user})
	}
}
