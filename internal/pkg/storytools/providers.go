package storytools

import (
	"context"
)

// LLMProvider 定义了调用大模型的接口
// 具体的「如何调用大模型」由调用方通过实现此接口注入，方便单测和替换实现
type LLMProvider interface {
	// Generate 根据提示词生成文本
	//
	// Args:
	//   - ctx: 上下文
	//   - prompt: 提示词
	//
	// Returns:
	//   - text: 生成的文本
	//   - err: 错误信息
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageProvider 图片生成提供者接口
type ImageProvider interface {
	// GenerateImage 生成图片
	// Args:
	//   - ctx: 上下文
	//   - prompt: 图片描述文本
	// Returns:
	//   - imageData: 图片二进制数据
	//   - mimeType: 图片 MIME 类型（如 image/png）
	//   - error: 错误信息
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// VideoProvider 视频生成提供者接口
// 实现内部完成长任务的提交与轮询，对调用方表现为同步接口
type VideoProvider interface {
	// GenerateVideo 生成视频
	// Args:
	//   - ctx: 上下文
	//   - prompt: 视频描述文本
	// Returns:
	//   - videoData: 视频二进制数据
	//   - error: 错误信息
	GenerateVideo(ctx context.Context, prompt string) ([]byte, error)
}
