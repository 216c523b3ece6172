package story

// StoryPlan 策划结果
// LLM 返回的故事大纲，落库前转换为 Story 实体
type StoryPlan struct {
	Topic     string      `json:"topic"`     // 主题（LLM 回显）
	Narrative string      `json:"narrative"` // 故事概述
	Slides    []SlidePlan `json:"slides"`    // 幻灯片策划列表
}

// SlidePlan 单张幻灯片的策划
type SlidePlan struct {
	Title       string `json:"title"`                 // 幻灯片标题
	Content     string `json:"content"`               // 教学内容
	ImagePrompt string `json:"imagePrompt"`           // 图片生成提示词
	VideoPrompt string `json:"videoPrompt,omitempty"` // 视频生成提示词（可选）
	Type        string `json:"type"`                  // 素材类型：image / video
}
