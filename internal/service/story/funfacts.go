package story

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"mango/internal/pkg/cache"
	"mango/internal/pkg/storytools"
)

// GetFunFacts 获取主题相关的趣味知识
//
// 等待页面的陪伴内容：先查缓存，未命中则调用 LLM 生成并回填缓存。
// LLM 失败时返回兜底文案（不缓存），保证接口总是有内容返回。
func (s *storyService) GetFunFacts(ctx context.Context, topic string) ([]string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrTopicRequired
	}

	cacheKey := cache.FunFactsCacheKey(topic)
	if s.redisCache != nil {
		var cached []string
		if err := s.redisCache.Get(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	content, err := s.llmProvider.Generate(ctx, storytools.BuildFunFactsPrompt(topic))
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("趣味知识生成失败，使用兜底文案")
		return storytools.FallbackFunFacts(), nil
	}

	facts, err := storytools.ParseFunFacts(content)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("趣味知识解析失败，使用兜底文案")
		return storytools.FallbackFunFacts(), nil
	}

	if s.redisCache != nil {
		if err := s.redisCache.Set(ctx, cacheKey, facts, cache.FunFactsCacheTTL); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("趣味知识写入缓存失败")
		}
	}

	return facts, nil
}
