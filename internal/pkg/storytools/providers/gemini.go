package providers

import (
	"context"
	"fmt"

	"mango/internal/pkg/gemini"
)

// GeminiImageProvider Gemini 实现的图片生成提供者
// 实现了 storytools.ImageProvider 接口
type GeminiImageProvider struct {
	client *gemini.ImageClient
}

// NewGeminiImageProvider 创建基于 Gemini 的图片生成提供者
func NewGeminiImageProvider(client *gemini.ImageClient) *GeminiImageProvider {
	return &GeminiImageProvider{
		client: client,
	}
}

// GenerateImage 生成图片
// 实现了 storytools.ImageProvider 接口
func (p *GeminiImageProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	if p.client == nil {
		return nil, "", fmt.Errorf("gemini image client is required")
	}
	return p.client.GenerateImage(ctx, prompt)
}

// GeminiVideoProvider Gemini 实现的视频生成提供者（Veo）
// 实现了 storytools.VideoProvider 接口
type GeminiVideoProvider struct {
	client *gemini.VideoClient
}

// NewGeminiVideoProvider 创建基于 Gemini 的视频生成提供者
func NewGeminiVideoProvider(client *gemini.VideoClient) *GeminiVideoProvider {
	return &GeminiVideoProvider{
		client: client,
	}
}

// GenerateVideo 生成视频（内部完成长任务轮询，同步返回）
// 实现了 storytools.VideoProvider 接口
func (p *GeminiVideoProvider) GenerateVideo(ctx context.Context, prompt string) ([]byte, error) {
	if p.client == nil {
		return nil, fmt.Errorf("gemini video client is required")
	}
	return p.client.GenerateVideo(ctx, prompt)
}
