package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sociograph/sociograph/internal/middleware"
	"github.com/sociograph/sociograph/internal/services"
)

type FeedHandler struct {
	feedService    *services.FeedService
	likeService    *services.LikeService
	commentService *services.CommentService
}

func NewFeedHandler(feedService *services.FeedService, likeService *services.LikeService, commentService *services.CommentService) *FeedHandler {
	return &FeedHandler{
		feedService:    feedService,
		likeService:    likeService,
		commentService: commentService,
	}
}

func (h *FeedHandler) CreatePost(c *gin.Context) {
	var req services.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, scheduled, err := h.feedService.CreatePost(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if scheduled {
		c.JSON(http.StatusAccepted, gin.H{
			"message":      "Post scheduled for publication",
			"scheduled_at": req.ScheduledAt,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    post,
	})
}

// GetFeed composes the caller's feed; hashtag is an optional
// case-insensitive substring filter.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	offset, limit := pagination(c)
	hashtag := c.Query("hashtag")

	posts, err := h.feedService.GetFeed(c.Request.Context(), middleware.GetActor(c), hashtag, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  posts,
		"offset": offset,
		"limit":  limit,
	})
}

func (h *FeedHandler) GetPost(c *gin.Context) {
	post, err := h.feedService.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *FeedHandler) GetProfilePosts(c *gin.Context) {
	offset, limit := pagination(c)

	posts, err := h.feedService.GetProfilePosts(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  posts,
		"offset": offset,
		"limit":  limit,
	})
}

func (h *FeedHandler) GetLikedPosts(c *gin.Context) {
	offset, limit := pagination(c)

	posts, err := h.feedService.LikedPosts(c.Request.Context(), middleware.GetActor(c), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  posts,
		"offset": offset,
		"limit":  limit,
	})
}

func (h *FeedHandler) UpdatePostMedia(c *gin.Context) {
	var req struct {
		MediaURL string `json:"media_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.feedService.UpdateMedia(c.Request.Context(), middleware.GetActor(c), c.Param("id"), req.MediaURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *FeedHandler) DeletePost(c *gin.Context) {
	if err := h.feedService.DeletePost(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *FeedHandler) LikePost(c *gin.Context) {
	like, err := h.likeService.Like(c.Request.Context(), middleware.GetActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post liked successfully",
		"like":    like,
	})
}

// UnlikePost on a post the caller never liked answers with a notice,
// not an error.
func (h *FeedHandler) UnlikePost(c *gin.Context) {
	removed, err := h.likeService.Unlike(c.Request.Context(), middleware.GetActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if !removed {
		c.JSON(http.StatusOK, gin.H{"message": "You haven't liked this post"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You unliked this post"})
}

func (h *FeedHandler) GetPostLikes(c *gin.Context) {
	offset, limit := pagination(c)

	likes, err := h.likeService.PostLikes(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"likes":  likes,
		"offset": offset,
		"limit":  limit,
	})
}

func (h *FeedHandler) CreateComment(c *gin.Context) {
	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), middleware.GetActor(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

func (h *FeedHandler) GetPostComments(c *gin.Context) {
	offset, limit := pagination(c)

	comments, err := h.commentService.PostComments(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"offset":   offset,
		"limit":    limit,
	})
}

func (h *FeedHandler) UpdateComment(c *gin.Context) {
	var req services.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.UpdateComment(c.Request.Context(), middleware.GetActor(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

func (h *FeedHandler) DeleteComment(c *gin.Context) {
	if err := h.commentService.DeleteComment(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
