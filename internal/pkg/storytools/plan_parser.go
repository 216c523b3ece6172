package storytools

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"mango/internal/model/story"
)

// CleanJSONContent 清理 LLM 返回的 JSON 内容
// 移除 markdown 代码块标记和首尾空白
func CleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	// 移除 markdown 代码块标记（```json ... ``` 或 ``` ... ```）
	markdownPattern := regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json)?\s*\n(.*?)\n\s*` + "```" + `\s*$`)
	if matches := markdownPattern.FindStringSubmatch(content); len(matches) > 1 {
		content = matches[1]
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// ParseStoryPlan 解析并校验 LLM 返回的策划 JSON
//
// 校验规则：
//   - slides 至少 1 张
//   - 每张幻灯片 title/content/imagePrompt 必填
//   - type 必须是 image 或 video
//   - type=video 但缺少 videoPrompt 时降级为 image（不视为错误）
//   - allowMotion=false 时所有 video 降级为 image
func ParseStoryPlan(content string, allowMotion bool) (*story.StoryPlan, error) {
	cleaned := CleanJSONContent(content)

	var plan story.StoryPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("parse story plan JSON: %w", err)
	}

	if len(plan.Slides) == 0 {
		return nil, fmt.Errorf("story plan has no slides")
	}

	for i := range plan.Slides {
		slide := &plan.Slides[i]
		if slide.Title == "" {
			return nil, fmt.Errorf("slide %d: title is required", i)
		}
		if slide.Content == "" {
			return nil, fmt.Errorf("slide %d: content is required", i)
		}
		if slide.ImagePrompt == "" {
			return nil, fmt.Errorf("slide %d: imagePrompt is required", i)
		}

		switch story.MediaType(slide.Type) {
		case story.MediaTypeImage:
			slide.VideoPrompt = ""
		case story.MediaTypeVideo:
			if slide.VideoPrompt == "" || !allowMotion {
				slide.Type = string(story.MediaTypeImage)
				slide.VideoPrompt = ""
			}
		default:
			return nil, fmt.Errorf("slide %d: invalid type %q", i, slide.Type)
		}
	}

	return &plan, nil
}
