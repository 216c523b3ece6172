package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "mango/internal/service/story"
)

// FunFactsRequest 趣味知识请求
type FunFactsRequest struct {
	Topic string `json:"topic" binding:"required"` // 主题（必填）
}

// GetFunFacts 获取主题相关的趣味知识
// @Summary      获取趣味知识
// @Description  生成主题相关的趣味知识列表，用于素材生成等待页面。结果带缓存，LLM 不可用时返回兜底文案。
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        request  body      FunFactsRequest  true  "趣味知识请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/fun-facts [post]
// @Security     BearerAuth
func (h *Handler) GetFunFacts(c *gin.Context) {
	var req FunFactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	facts, err := h.storyService.GetFunFacts(c.Request.Context(), req.Topic)
	if err != nil {
		if errors.Is(err, storysvc.ErrTopicRequired) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    40001,
				Message: err.Error(),
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
		"data": gin.H{
			"topic": req.Topic,
			"facts": facts,
		},
	})
}
