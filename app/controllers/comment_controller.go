package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salary-parser/app/requests"
	"github.com/salary-parser/app/services"
)

// CommentController rebuilds comment threads.
type CommentController struct {
	commentService *services.CommentService
}

func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// BuildTree nests the flat rows of one thread.
func (cc *CommentController) BuildTree(c *gin.Context) {
	var req requests.CommentTreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, cc.commentService.BuildTree(req.Comments))
}
