package story

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"mango/internal/config"
	"mango/internal/model/story"
	"mango/internal/pkg/id"
	"mango/internal/pkg/storytools"
)

// CreateStory 创建故事
//
// 流程：
// 1. 调用 LLM 生成故事大纲（同步，失败则整个请求失败）
// 2. 按大纲构建草稿并落库，所有幻灯片为 pending
// 3. 后台启动素材生成，立即返回草稿
func (s *storyService) CreateStory(ctx context.Context, req *CreateStoryRequest) (*story.Story, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, ErrTopicRequired
	}

	// 视频被全局禁用时，策划阶段就不允许出视频幻灯片
	allowMotion := req.AllowMotion && s.genCfg.VideoMode != config.VideoModeDisabled

	plan, err := s.generatePlan(ctx, topic, allowMotion)
	if err != nil {
		return nil, err
	}

	st := buildDraft(req.UserID, topic, req.Style, allowMotion, plan)
	if err := s.storyRepo.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create story draft: %w", err)
	}

	log.Info().
		Str("story_id", st.ID).
		Str("topic", topic).
		Int("slides", len(st.Slides)).
		Msg("故事草稿已创建，开始生成素材")

	// 素材生成脱离请求生命周期，进度通过轮询观察
	go s.runGeneration(context.Background(), st)

	return st, nil
}

// generatePlan 调用 LLM 生成并解析故事大纲
func (s *storyService) generatePlan(ctx context.Context, topic string, allowMotion bool) (*story.StoryPlan, error) {
	prompt := storytools.BuildStoryPlanPrompt(topic, allowMotion)

	content, err := s.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate story plan: %w", err)
	}

	plan, err := storytools.ParseStoryPlan(content, allowMotion)
	if err != nil {
		if len(content) > 0 {
			log.Error().Err(err).Str("topic", topic).Msg("策划结果解析失败")
		}
		return nil, fmt.Errorf("%w: %v", ErrEmptyPlan, err)
	}

	return plan, nil
}

// buildDraft 按策划结果构建故事草稿
// 所有幻灯片初始为 pending，素材字段为空
func buildDraft(userID, topic, style string, allowMotion bool, plan *story.StoryPlan) *story.Story {
	st := &story.Story{
		ID:          id.New(),
		UserID:      userID,
		Topic:       topic,
		Narrative:   plan.Narrative,
		Style:       style,
		AllowMotion: allowMotion,
		Slides:      make([]story.Slide, 0, len(plan.Slides)),
	}

	for _, sp := range plan.Slides {
		st.Slides = append(st.Slides, story.Slide{
			Title:       sp.Title,
			Content:     sp.Content,
			Type:        story.MediaType(sp.Type),
			ImagePrompt: sp.ImagePrompt,
			VideoPrompt: sp.VideoPrompt,
			Status:      story.SlideStatusPending,
		})
	}

	return st
}
