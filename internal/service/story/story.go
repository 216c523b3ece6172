package story

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"mango/internal/config"
	"mango/internal/model/story"
	"mango/internal/pkg/cache"
	"mango/internal/pkg/storage"
	"mango/internal/pkg/storytools"
	storyrepo "mango/internal/repository/story"
)

// StoryService 视觉故事服务接口
// 定义 story 模块 service 层提供的能力
type StoryService interface {
	// CreateStory 创建故事：策划大纲、落库草稿并在后台启动素材生成
	// 返回时所有幻灯片处于 pending 状态
	CreateStory(ctx context.Context, req *CreateStoryRequest) (*story.Story, error)

	// GetStory 获取故事详情（含所有幻灯片的当前状态）
	GetStory(ctx context.Context, id string) (*story.Story, error)

	// ListStories 获取用户的故事列表
	ListStories(ctx context.Context, userID string, limit int64) ([]*story.Story, error)

	// GetProgress 获取故事的生成进度
	GetProgress(ctx context.Context, id string) (*Progress, error)

	// RetrySlide 重试单张幻灯片的素材生成（同步等待结果）
	// overridePrompt 非空时先持久化新提示词再生成
	RetrySlide(ctx context.Context, storyID string, index int, overridePrompt string) (*story.Slide, error)

	// DeleteStory 删除故事（软删除，删除后各查询接口均不可见）
	DeleteStory(ctx context.Context, id string) error

	// GetFunFacts 获取主题相关的趣味知识（带缓存，用于等待页面）
	GetFunFacts(ctx context.Context, topic string) ([]string, error)
}

// CreateStoryRequest 创建故事请求
type CreateStoryRequest struct {
	UserID      string // 所属用户ID
	Topic       string // 故事主题
	Style       string // 图片风格（可选）
	AllowMotion bool   // 是否允许视频幻灯片
}

// storyService 视觉故事服务实现
type storyService struct {
	storyRepo     storyrepo.StoryRepository
	llmProvider   storytools.LLMProvider
	imageProvider storytools.ImageProvider
	videoProvider storytools.VideoProvider
	store         storage.Storage
	redisCache    *cache.RedisCache
	genCfg        config.GenerationConfig
}

// NewStoryService 创建视觉故事服务
//
// Args:
//   - db: MongoDB 数据库实例
//   - llmProvider: 策划 LLM 提供者
//   - imageProvider: 图片生成提供者
//   - videoProvider: 视频生成提供者（VideoMode=disabled 时可为 nil）
//   - store: 素材存储
//   - redisCache: Redis 缓存（趣味知识；可为 nil，降级为不缓存）
//   - genCfg: 素材编排策略配置
func NewStoryService(
	db *mongo.Database,
	llmProvider storytools.LLMProvider,
	imageProvider storytools.ImageProvider,
	videoProvider storytools.VideoProvider,
	store storage.Storage,
	redisCache *cache.RedisCache,
	genCfg config.GenerationConfig,
) StoryService {
	return &storyService{
		storyRepo:     storyrepo.NewStoryRepo(db),
		llmProvider:   llmProvider,
		imageProvider: imageProvider,
		videoProvider: videoProvider,
		store:         store,
		redisCache:    redisCache,
		genCfg:        genCfg,
	}
}

// GetStory 获取故事详情
func (s *storyService) GetStory(ctx context.Context, id string) (*story.Story, error) {
	st, err := s.storyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return st, nil
}

// ListStories 获取用户的故事列表
func (s *storyService) ListStories(ctx context.Context, userID string, limit int64) ([]*story.Story, error) {
	return s.storyRepo.FindByUserID(ctx, userID, limit)
}

// DeleteStory 删除故事
// 后台可能还有生成任务在跑：任务的定点更新过滤未删除文档，删除后自然落空
func (s *storyService) DeleteStory(ctx context.Context, id string) error {
	if _, err := s.storyRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrStoryNotFound
		}
		return err
	}
	return s.storyRepo.Delete(ctx, id)
}
