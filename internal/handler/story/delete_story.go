package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "mango/internal/service/story"
)

// DeleteStory 删除故事
// @Summary      删除故事
// @Description  删除故事（软删除）。删除后详情、列表、进度接口均不再返回该故事。
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      404  {object}  ErrorResponse  "故事不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories/{id} [delete]
// @Security     BearerAuth
func (h *Handler) DeleteStory(c *gin.Context) {
	storyID := c.Param("id")
	if storyID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "story id is required",
		})
		return
	}

	if err := h.storyService.DeleteStory(c.Request.Context(), storyID); err != nil {
		if errors.Is(err, storysvc.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    40401,
				Message: "story not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "删除成功",
	})
}
