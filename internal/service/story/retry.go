package story

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"mango/internal/model/story"
)

// RetrySlide 重试单张幻灯片的素材生成
//
// 与初始编排不同，重试是同步的：调用方拿到的就是终态结果。
// 重复触发采用后写覆盖语义，不做互斥；每次重试都有完整的重试预算。
// overridePrompt 非空时先持久化新提示词，后续自动重试也使用新提示词。
func (s *storyService) RetrySlide(ctx context.Context, storyID string, index int, overridePrompt string) (*story.Slide, error) {
	st, err := s.storyRepo.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}

	if index < 0 || index >= len(st.Slides) {
		return nil, ErrSlideNotFound
	}

	overridePrompt = strings.TrimSpace(overridePrompt)
	if overridePrompt != "" {
		slide := &st.Slides[index]
		if err := s.storyRepo.UpdateSlidePrompt(ctx, storyID, index, slide.Type, overridePrompt); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrSlideNotFound
			}
			return nil, err
		}
		if slide.Type == story.MediaTypeVideo {
			slide.VideoPrompt = overridePrompt
		} else {
			slide.ImagePrompt = overridePrompt
		}
	}

	log.Info().
		Str("story_id", storyID).
		Int("slide", index).
		Bool("override_prompt", overridePrompt != "").
		Msg("重试幻灯片素材生成")

	s.generateSlideAsset(ctx, st, index)

	// 返回落库后的最新状态
	updated, err := s.storyRepo.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	if index >= len(updated.Slides) {
		return nil, ErrSlideNotFound
	}
	return &updated.Slides[index], nil
}
