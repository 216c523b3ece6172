package story

import (
	"time"

	"mango/internal/model/story"
	httputil "mango/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// SlideInfo 幻灯片信息 DTO
type SlideInfo struct {
	Index        int    `json:"index"`                   // 幻灯片下标
	Title        string `json:"title"`                   // 标题
	Content      string `json:"content"`                 // 教学内容
	Type         string `json:"type"`                    // 素材类型：image, video
	ImagePrompt  string `json:"image_prompt"`            // 图片生成提示词
	VideoPrompt  string `json:"video_prompt,omitempty"`  // 视频生成提示词
	Status       string `json:"status"`                  // 状态：pending, generating, completed, failed
	AssetURL     string `json:"asset_url,omitempty"`     // 素材URL
	ErrorMessage string `json:"error_message,omitempty"` // 失败原因
}

// StoryInfo 故事信息 DTO
type StoryInfo struct {
	ID          string      `json:"id"`              // 故事ID
	UserID      string      `json:"user_id"`         // 用户ID
	Topic       string      `json:"topic"`           // 主题
	Narrative   string      `json:"narrative"`       // 故事概述
	Style       string      `json:"style,omitempty"` // 图片风格
	AllowMotion bool        `json:"allow_motion"`    // 是否允许视频幻灯片
	Slides      []SlideInfo `json:"slides"`          // 幻灯片列表
	CreatedAt   string      `json:"created_at"`      // 创建时间
	UpdatedAt   string      `json:"updated_at"`      // 更新时间
}

// toSlideInfo 将 Slide 实体转换为 SlideInfo DTO
func toSlideInfo(index int, slide *story.Slide) SlideInfo {
	return SlideInfo{
		Index:        index,
		Title:        slide.Title,
		Content:      slide.Content,
		Type:         string(slide.Type),
		ImagePrompt:  slide.ImagePrompt,
		VideoPrompt:  slide.VideoPrompt,
		Status:       string(slide.Status),
		AssetURL:     slide.AssetURL,
		ErrorMessage: slide.ErrorMessage,
	}
}

// toStoryInfo 将 Story 实体转换为 StoryInfo DTO
func toStoryInfo(st *story.Story) StoryInfo {
	slides := make([]SlideInfo, len(st.Slides))
	for i := range st.Slides {
		slides[i] = toSlideInfo(i, &st.Slides[i])
	}
	return StoryInfo{
		ID:          st.ID,
		UserID:      st.UserID,
		Topic:       st.Topic,
		Narrative:   st.Narrative,
		Style:       st.Style,
		AllowMotion: st.AllowMotion,
		Slides:      slides,
		CreatedAt:   st.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   st.UpdatedAt.Format(time.RFC3339),
	}
}

// toStoryInfoList 将 Story 列表转换为 StoryInfo 列表
func toStoryInfoList(stories []*story.Story) []StoryInfo {
	result := make([]StoryInfo, len(stories))
	for i, st := range stories {
		result[i] = toStoryInfo(st)
	}
	return result
}
