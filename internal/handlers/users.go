package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/middleware"
	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/services"
	"github.com/chachabrian/ridelink-backend/internal/store"
)

const maxAvatarBytes = 5 << 20

// UpdateProfileInput is the part of a profile users may edit themselves.
type UpdateProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
}

func GetProfile(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := st.GetUser(c.GetString(middleware.UserIDKey))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, user)
	}
}

func UpdateProfile(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		user, err := st.UpdateUserProfile(c.GetString(middleware.UserIDKey), models.ProfilePatch{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
			Phone:     input.Phone,
			Bio:       input.Bio,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, user)
	}
}

// UploadAvatar stores the multipart "avatar" file and points the profile at it.
func UploadAvatar(st *store.Store, avatars *services.AvatarStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.UserIDKey)

		file, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(400, gin.H{"error": "avatar file is required"})
			return
		}
		if file.Size > maxAvatarBytes {
			c.JSON(400, gin.H{"error": fmt.Sprintf("avatar must be at most %d bytes", maxAvatarBytes)})
			return
		}

		src, err := file.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer src.Close()

		url, err := avatars.Save(c.Request.Context(), userID, file.Filename, src)
		if err != nil {
			respondError(c, err)
			return
		}

		user, err := st.UpdateUserProfile(userID, models.ProfilePatch{Avatar: &url})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, user)
	}
}
