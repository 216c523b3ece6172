package story

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	storysvc "mango/internal/service/story"
)

// RetrySlideRequest 重试幻灯片请求
type RetrySlideRequest struct {
	Prompt string `json:"prompt"` // 覆盖提示词（可选，为空时沿用原提示词）
}

// RetrySlide 重试单张幻灯片的素材生成
// @Summary      重试幻灯片素材生成
// @Description  重新生成指定幻灯片的素材，同步等待结果。可传入新的提示词覆盖原提示词，覆盖后持久化。重复触发采用后写覆盖语义。
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        id       path      string             true   "故事ID"
// @Param        index    path      int                true   "幻灯片下标（从0开始）"
// @Param        request  body      RetrySlideRequest  false  "重试请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      404      {object}  ErrorResponse  "故事或幻灯片不存在"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories/{id}/slides/{index}/retry [post]
// @Security     BearerAuth
func (h *Handler) RetrySlide(c *gin.Context) {
	storyID := c.Param("id")
	if storyID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "story id is required",
		})
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "invalid slide index",
		})
		return
	}

	// body 可省略
	var req RetrySlideRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    40001,
				Message: "Invalid request body",
				Detail:  err.Error(),
			})
			return
		}
	}

	slide, err := h.storyService.RetrySlide(c.Request.Context(), storyID, index, req.Prompt)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, storysvc.ErrStoryNotFound):
			code = http.StatusNotFound
			errorCode = 40401
		case errors.Is(err, storysvc.ErrSlideNotFound):
			code = http.StatusNotFound
			errorCode = 40402
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "重试完成",
		"data":    toSlideInfo(index, slide),
	})
}
