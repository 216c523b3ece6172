package storytools

import (
	"fmt"
)

// 策划提示词模板
// 要求 LLM 直接输出结构化 JSON，字段与 story.StoryPlan 对齐；
// 幻灯片 schema 片段按是否允许视频分两个版本
const storyPlanPromptTemplate = `You are an expert educator creating an engaging visual story about: "%s". Create a visual story plan.

Respond with a single JSON object only, no markdown, no extra text. The JSON must have this exact shape:
{
  "topic": "the topic of the story",
  "narrative": "a brief, engaging overview of the topic",
  "slides": [
    {
      "title": "the title of the slide",
      "content": "educational content for this slide (2-3 sentences)",
%s
    }
  ]
}

The slides array must contain 5-7 slides covering the topic.`

const slideSchemaWithMotion = `      "imagePrompt": "detailed prompt to generate a high-quality, educational image for this slide",
      "videoPrompt": "optional: detailed prompt to generate a 5-second moving infographic video if the concept requires motion; omit otherwise",
      "type": "image or video; choose video only if motion is crucial"`

const slideSchemaImageOnly = `      "imagePrompt": "detailed prompt to generate a high-quality, educational image for this slide",
      "type": "image"`

// BuildStoryPlanPrompt 构建故事策划提示词
// 不允许视频时策划阶段就不给模型视频选项（解析层的降级只作兜底）
func BuildStoryPlanPrompt(topic string, allowMotion bool) string {
	schema := slideSchemaImageOnly
	if allowMotion {
		schema = slideSchemaWithMotion
	}
	return fmt.Sprintf(storyPlanPromptTemplate, topic, schema)
}

// BuildFunFactsPrompt 构建趣味知识提示词
// 趣味知识用于生成等待期间的用户陪伴内容
func BuildFunFactsPrompt(topic string) string {
	return fmt.Sprintf(`Generate 20 fun and interesting facts about "%s" to keep the user entertained while waiting.

Respond with a single JSON object only, no markdown, no extra text:
{"facts": ["fact 1", "fact 2", ...]}`, topic)
}
