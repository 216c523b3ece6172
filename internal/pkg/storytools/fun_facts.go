package storytools

import (
	"encoding/json"
	"fmt"
)

// fallbackFunFacts 趣味知识兜底文案
// LLM 不可用时返回，保证等待页面不空白
var fallbackFunFacts = []string{
	"Did you know? Learning new things increases brain plasticity.",
	"Patience is a virtue, and good things come to those who wait!",
	"The world is full of fascinating wonders.",
	"Stay tuned, something amazing is being created for you.",
}

// FallbackFunFacts 返回兜底趣味知识的副本
func FallbackFunFacts() []string {
	facts := make([]string, len(fallbackFunFacts))
	copy(facts, fallbackFunFacts)
	return facts
}

// ParseFunFacts 解析 LLM 返回的趣味知识 JSON
func ParseFunFacts(content string) ([]string, error) {
	cleaned := CleanJSONContent(content)

	var payload struct {
		Facts []string `json:"facts"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse fun facts JSON: %w", err)
	}
	if len(payload.Facts) == 0 {
		return nil, fmt.Errorf("fun facts list is empty")
	}
	return payload.Facts, nil
}
