package story

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"mango/internal/model/story"
	"mango/internal/pkg/gemini"
	"mango/internal/pkg/storytools"
)

// taskOutcome 单次生成调用的分类结果
type taskOutcome int

const (
	outcomeTransient   taskOutcome = iota // 瞬时错误，可退避重试
	outcomeRateLimited                    // 配额耗尽，重试无意义，立即终态
	outcomeFatal                          // 请求契约错误，立即终态
)

// generateSlideAsset 生成单张幻灯片的素材
//
// 状态机：generating -> completed / failed，结果定点落库。
// 瞬时错误按指数退避重试（BaseDelay * 2^attempt），限流和契约错误不重试。
func (s *storyService) generateSlideAsset(ctx context.Context, st *story.Story, index int) {
	slide := &st.Slides[index]

	if err := s.storyRepo.UpdateSlideStatus(ctx, st.ID, index, story.SlideStatusGenerating); err != nil {
		log.Error().Err(err).Str("story_id", st.ID).Int("slide", index).Msg("更新幻灯片状态失败")
		return
	}

	var lastErr error
	for attempt := 0; attempt < s.genCfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			// 指数退避：BaseDelay * 2^(attempt-1)
			delay := s.genCfg.BaseDelay * time.Duration(1<<(attempt-1))
			log.Warn().
				Err(lastErr).
				Str("story_id", st.ID).
				Int("slide", index).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("幻灯片素材生成失败，退避重试")
			select {
			case <-ctx.Done():
				s.finishFailed(st.ID, index, ctx.Err())
				return
			case <-time.After(delay):
			}
		}

		assetURL, err := s.generateOnce(ctx, st, index, slide)
		if err == nil {
			if repoErr := s.storyRepo.UpdateSlideCompleted(ctx, st.ID, index, assetURL); repoErr != nil {
				log.Error().Err(repoErr).Str("story_id", st.ID).Int("slide", index).Msg("写入幻灯片成功结果失败")
				return
			}
			log.Info().
				Str("story_id", st.ID).
				Int("slide", index).
				Str("asset_url", assetURL).
				Msg("幻灯片素材生成成功")
			return
		}

		lastErr = err
		if classifyError(err) != outcomeTransient {
			break
		}
	}

	s.finishFailed(st.ID, index, lastErr)
}

// generateOnce 执行一次生成调用并上传素材，返回素材URL
func (s *storyService) generateOnce(ctx context.Context, st *story.Story, index int, slide *story.Slide) (string, error) {
	if slide.Type == story.MediaTypeVideo {
		callCtx, cancel := s.taskContext(ctx, s.genCfg.VideoTimeout)
		defer cancel()

		prompt := storytools.ApplyStyle(slide.VideoPrompt, st.Style)
		data, err := s.videoProvider.GenerateVideo(callCtx, prompt)
		if err != nil {
			return "", err
		}
		return s.uploadAsset(ctx, st.ID, index, data, "video/mp4")
	}

	callCtx, cancel := s.taskContext(ctx, s.genCfg.ImageTimeout)
	defer cancel()

	prompt := storytools.ApplyStyle(slide.ImagePrompt, st.Style)
	data, mimeType, err := s.imageProvider.GenerateImage(callCtx, prompt)
	if err != nil {
		return "", err
	}
	return s.uploadAsset(ctx, st.ID, index, data, mimeType)
}

// uploadAsset 上传素材字节并返回可访问的URL
func (s *storyService) uploadAsset(ctx context.Context, storyID string, index int, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("stories/%s/slide_%d%s", storyID, index, extensionFor(contentType))
	url, err := s.store.Upload(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return "", fmt.Errorf("upload asset: %w", err)
	}
	return url, nil
}

// rateLimitedMessage 限流失败时写入幻灯片的提示文案
// 配额错误的原始报文对用户没有意义，统一成可操作的提示
const rateLimitedMessage = "rate limit exceeded, please wait a moment and retry"

// finishFailed 写入幻灯片的失败终态
func (s *storyService) finishFailed(storyID string, index int, cause error) {
	message := "generation failed"
	switch {
	case cause == nil:
	case gemini.IsRateLimited(cause):
		message = rateLimitedMessage
	default:
		message = cause.Error()
	}

	// 故事可能已被删除，失败落库本身的错误只记录日志
	if err := s.storyRepo.UpdateSlideFailed(context.Background(), storyID, index, message); err != nil {
		log.Error().Err(err).Str("story_id", storyID).Int("slide", index).Msg("写入幻灯片失败结果失败")
		return
	}

	log.Error().
		Err(cause).
		Str("story_id", storyID).
		Int("slide", index).
		Str("error_message", message).
		Msg("幻灯片素材生成失败")
}

// classifyError 对生成错误分类，决定是否重试
func classifyError(err error) taskOutcome {
	switch {
	case gemini.IsRateLimited(err):
		return outcomeRateLimited
	case gemini.IsFatal(err):
		return outcomeFatal
	default:
		return outcomeTransient
	}
}

// taskContext 为单次生成调用派生带超时的上下文
func (s *storyService) taskContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// extensionFor 根据 MIME 类型推断文件扩展名
func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	default:
		return ""
	}
}
