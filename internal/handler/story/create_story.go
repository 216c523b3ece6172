package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mango/internal/pkg/ctxutil"
	storysvc "mango/internal/service/story"
)

// CreateStoryRequest 创建故事请求
type CreateStoryRequest struct {
	Topic       string `json:"topic" binding:"required"` // 故事主题（必填）
	Style       string `json:"style"`                    // 图片风格（可选，如 drawing）
	AllowMotion *bool  `json:"allow_motion"`             // 是否允许视频幻灯片（默认 true）
}

// CreateStory 创建视觉故事
// @Summary      创建视觉故事
// @Description  根据主题生成故事大纲并落库草稿，素材生成在后台进行。返回时所有幻灯片为 pending 状态，进度通过轮询接口观察。
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        request  body      CreateStoryRequest  true  "创建故事请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories [post]
// @Security     BearerAuth
func (h *Handler) CreateStory(c *gin.Context) {
	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	userID, _ := ctxutil.GetUserID(ctx)

	allowMotion := true
	if req.AllowMotion != nil {
		allowMotion = *req.AllowMotion
	}

	st, err := h.storyService.CreateStory(ctx, &storysvc.CreateStoryRequest{
		UserID:      userID,
		Topic:       req.Topic,
		Style:       req.Style,
		AllowMotion: allowMotion,
	})
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, storysvc.ErrTopicRequired):
			code = http.StatusBadRequest
			errorCode = 40001
		case errors.Is(err, storysvc.ErrEmptyPlan):
			code = http.StatusBadGateway
			errorCode = 50201
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "故事已创建，素材生成中",
		"data":    toStoryInfo(st),
	})
}
