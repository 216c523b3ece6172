package story

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mango/internal/pkg/ctxutil"
	storysvc "mango/internal/service/story"
)

// GetStory 获取故事详情
// @Summary      获取故事详情
// @Description  获取故事及其所有幻灯片的当前状态。
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      404  {object}  ErrorResponse  "故事不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories/{id} [get]
// @Security     BearerAuth
func (h *Handler) GetStory(c *gin.Context) {
	storyID := c.Param("id")
	if storyID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "story id is required",
		})
		return
	}

	st, err := h.storyService.GetStory(c.Request.Context(), storyID)
	if err != nil {
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
		"message": "获取成功",
		"data":    toStoryInfo(st),
	})
}

// ListStories 获取故事列表
// @Summary      获取故事列表
// @Description  获取当前用户的故事列表，按创建时间倒序。
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        limit  query     int  false  "返回条数上限（默认 20）"
// @Success      200    {object}  map[string]interface{}  "成功响应"
// @Failure      500    {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories [get]
// @Security     BearerAuth
func (h *Handler) ListStories(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := ctxutil.GetUserID(ctx)

	limit := int64(20)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	stories, err := h.storyService.ListStories(ctx, userID, limit)
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
		"data": gin.H{
			"stories": toStoryInfoList(stories),
			"count":   len(stories),
		},
	})
}
