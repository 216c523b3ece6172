package story

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"mango/internal/config"
	"mango/internal/model/story"
)

// runGeneration 故事素材生成编排
//
// 每张幻灯片是一个独立任务：状态定点落库，单张失败不影响其他幻灯片。
// 视频的调度由 VideoMode 决定：
//   - concurrent: 图片和视频一起并发生成，全部完成后返回
//   - deferred:   先并发生成所有图片，图片全部收尾后再并发生成视频
//   - disabled:   草稿阶段已不产生视频幻灯片，这里只处理图片
func (s *storyService) runGeneration(ctx context.Context, st *story.Story) {
	var images, videos []int
	for i := range st.Slides {
		if st.Slides[i].Type == story.MediaTypeVideo {
			videos = append(videos, i)
		} else {
			images = append(images, i)
		}
	}

	if s.genCfg.VideoMode == config.VideoModeConcurrent {
		s.generateBatch(ctx, st, append(images, videos...))
		log.Info().Str("story_id", st.ID).Msg("故事素材生成结束")
		return
	}

	s.generateBatch(ctx, st, images)

	if s.genCfg.VideoMode == config.VideoModeDeferred && len(videos) > 0 {
		log.Info().
			Str("story_id", st.ID).
			Int("videos", len(videos)).
			Msg("图片生成收尾，开始生成视频")
		s.generateBatch(ctx, st, videos)
	}

	log.Info().Str("story_id", st.ID).Msg("故事素材生成结束")
}

// generateBatch 并发生成一批幻灯片素材，等待全部收尾
// 不使用首错取消：任何一张失败都不应中断其余幻灯片
func (s *storyService) generateBatch(ctx context.Context, st *story.Story, indexes []int) {
	var wg sync.WaitGroup
	for _, index := range indexes {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			s.generateSlideAsset(ctx, st, index)
		}(index)
	}
	wg.Wait()
}
