package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProgress 获取故事生成进度
// @Summary      获取故事生成进度
// @Description  统计故事各幻灯片的状态分布，供前端轮询。故事不存在时 available 为 false，不返回 404。
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories/{id}/progress [get]
// @Security     BearerAuth
func (h *Handler) GetProgress(c *gin.Context) {
	storyID := c.Param("id")
	if storyID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "story id is required",
		})
		return
	}

	progress, err := h.storyService.GetProgress(c.Request.Context(), storyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "获取成功",
		"data":    progress,
	})
}
