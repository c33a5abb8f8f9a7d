package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sociograph/sociograph/internal/middleware"
	"github.com/sociograph/sociograph/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req services.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileService.CreateProfile(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Profile created successfully",
		"profile": profile,
	})
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// ListProfiles supports case-insensitive substring filtering on first
// and last name.
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	offset, limit := pagination(c)
	firstName := c.Query("first_name")
	lastName := c.Query("last_name")

	profiles, err := h.profileService.ListProfiles(c.Request.Context(), firstName, lastName, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles": profiles,
		"offset":   offset,
		"limit":    limit,
	})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), middleware.GetActor(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

func (h *ProfileHandler) UploadPicture(c *gin.Context) {
	var req struct {
		Picture string `json:"picture" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileService.UpdatePicture(c.Request.Context(), middleware.GetActor(c), c.Param("id"), req.Picture)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	if err := h.profileService.DeleteProfile(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted"})
}

func (h *ProfileHandler) Follow(c *gin.Context) {
	if err := h.profileService.Follow(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You are now following this user"})
}

// Unfollow on a missing edge answers with a notice, not an error.
func (h *ProfileHandler) Unfollow(c *gin.Context) {
	removed, err := h.profileService.Unfollow(c.Request.Context(), middleware.GetActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if !removed {
		c.JSON(http.StatusOK, gin.H{"message": "You haven't followed this user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You unfollowed this user"})
}

func (h *ProfileHandler) GetFollowers(c *gin.Context) {
	offset, limit := pagination(c)

	followers, err := h.profileService.Followers(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"followers": followers,
		"offset":    offset,
		"limit":     limit,
	})
}

func (h *ProfileHandler) GetFollowings(c *gin.Context) {
	offset, limit := pagination(c)

	followings, err := h.profileService.Followings(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"followings": followings,
		"offset":     offset,
		"limit":      limit,
	})
}
