package story

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mango/internal/model/story"
)

// StoryRepository 故事仓库接口（供 service 层依赖）
// 幻灯片状态更新都是定点更新（slides.N.*），并发生成时互不覆盖
type StoryRepository interface {
	Create(ctx context.Context, s *story.Story) error
	FindByID(ctx context.Context, id string) (*story.Story, error)
	FindByUserID(ctx context.Context, userID string, limit int64) ([]*story.Story, error)
	UpdateSlideStatus(ctx context.Context, storyID string, index int, status story.SlideStatus) error
	UpdateSlideCompleted(ctx context.Context, storyID string, index int, assetURL string) error
	UpdateSlideFailed(ctx context.Context, storyID string, index int, errorMessage string) error
	UpdateSlidePrompt(ctx context.Context, storyID string, index int, mediaType story.MediaType, prompt string) error
	Delete(ctx context.Context, id string) error
}

// StoryRepo 故事仓库
type StoryRepo struct {
	coll *mongo.Collection
}

// NewStoryRepo 创建故事仓库
func NewStoryRepo(db *mongo.Database) *StoryRepo {
	var s story.Story
	return &StoryRepo{coll: db.Collection(s.Collection())}
}

// Create 创建故事记录
func (r *StoryRepo) Create(ctx context.Context, s *story.Story) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, s)
	return err
}

// FindByID 根据ID查询
func (r *StoryRepo) FindByID(ctx context.Context, id string) (*story.Story, error) {
	var s story.Story
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted_at": nil}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByUserID 查询用户的故事列表（按创建时间倒序）
func (r *StoryRepo) FindByUserID(ctx context.Context, userID string, limit int64) ([]*story.Story, error) {
	filter := bson.M{"user_id": userID, "deleted_at": nil}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var stories []*story.Story
	if err := cur.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// UpdateSlideStatus 更新单张幻灯片的状态
func (r *StoryRepo) UpdateSlideStatus(ctx context.Context, storyID string, index int, status story.SlideStatus) error {
	update := bson.M{"$set": bson.M{
		fmt.Sprintf("slides.%d.status", index): status,
		"updated_at":                           time.Now(),
	}}
	return r.updateSlide(ctx, storyID, index, update)
}

// UpdateSlideCompleted 写入单张幻灯片的成功结果
// 成功时清除历史错误信息
func (r *StoryRepo) UpdateSlideCompleted(ctx context.Context, storyID string, index int, assetURL string) error {
	update := bson.M{
		"$set": bson.M{
			fmt.Sprintf("slides.%d.status", index):    story.SlideStatusCompleted,
			fmt.Sprintf("slides.%d.asset_url", index): assetURL,
			"updated_at":                              time.Now(),
		},
		"$unset": bson.M{
			fmt.Sprintf("slides.%d.error_message", index): "",
		},
	}
	return r.updateSlide(ctx, storyID, index, update)
}

// UpdateSlideFailed 写入单张幻灯片的失败结果
// 失败时清除历史素材URL
func (r *StoryRepo) UpdateSlideFailed(ctx context.Context, storyID string, index int, errorMessage string) error {
	update := bson.M{
		"$set": bson.M{
			fmt.Sprintf("slides.%d.status", index):        story.SlideStatusFailed,
			fmt.Sprintf("slides.%d.error_message", index): errorMessage,
			"updated_at":                                  time.Now(),
		},
		"$unset": bson.M{
			fmt.Sprintf("slides.%d.asset_url", index): "",
		},
	}
	return r.updateSlide(ctx, storyID, index, update)
}

// UpdateSlidePrompt 更新单张幻灯片的生成提示词（重试时覆盖）
func (r *StoryRepo) UpdateSlidePrompt(ctx context.Context, storyID string, index int, mediaType story.MediaType, prompt string) error {
	field := fmt.Sprintf("slides.%d.image_prompt", index)
	if mediaType == story.MediaTypeVideo {
		field = fmt.Sprintf("slides.%d.video_prompt", index)
	}
	update := bson.M{"$set": bson.M{
		field:        prompt,
		"updated_at": time.Now(),
	}}
	return r.updateSlide(ctx, storyID, index, update)
}

// updateSlide 幻灯片定点更新
// 过滤条件要求目标下标存在，故事不存在或下标越界都返回 ErrNoDocuments
func (r *StoryRepo) updateSlide(ctx context.Context, storyID string, index int, update bson.M) error {
	filter := bson.M{
		"id":         storyID,
		"deleted_at": nil,
		fmt.Sprintf("slides.%d", index): bson.M{"$exists": true},
	}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete 软删除
func (r *StoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"deleted_at": time.Now(),
			"updated_at": time.Now(),
		}},
	)
	return err
}
