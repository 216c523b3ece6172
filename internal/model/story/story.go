package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Story 视觉故事实体
// 说明：一次生成请求对应一个故事，策划产出的幻灯片作为内嵌数组持久化，
// 素材生成只对单张幻灯片做定点更新（slides.N.*），不重写整个文档
type Story struct {
	ID     string `bson:"id" json:"id"`           // 故事ID（UUID）
	UserID string `bson:"user_id" json:"user_id"` // 所属用户ID

	Topic       string `bson:"topic" json:"topic"`                     // 用户输入的主题
	Narrative   string `bson:"narrative" json:"narrative"`             // 故事概述（策划产出）
	Style       string `bson:"style,omitempty" json:"style,omitempty"` // 图片风格（如 drawing）
	AllowMotion bool   `bson:"allow_motion" json:"allow_motion"`       // 是否允许视频幻灯片

	Slides []Slide `bson:"slides" json:"slides"` // 幻灯片列表（顺序即展示顺序）

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// Slide 幻灯片
// 素材结果字段（AssetURL/ErrorMessage）互斥：成功清错误，失败清URL
type Slide struct {
	Title   string `bson:"title" json:"title"`     // 幻灯片标题
	Content string `bson:"content" json:"content"` // 教学内容（2-3句）

	Type        MediaType `bson:"type" json:"type"`                                     // 素材类型：image / video
	ImagePrompt string    `bson:"image_prompt" json:"image_prompt"`                     // 图片生成提示词
	VideoPrompt string    `bson:"video_prompt,omitempty" json:"video_prompt,omitempty"` // 视频生成提示词（type=video 时必需）

	Status       SlideStatus `bson:"status" json:"status"`                                   // 素材状态
	AssetURL     string      `bson:"asset_url,omitempty" json:"asset_url,omitempty"`         // 生成的素材URL
	ErrorMessage string      `bson:"error_message,omitempty" json:"error_message,omitempty"` // 失败原因
}

// Prompt 返回当前幻灯片实际用于生成的提示词
func (s *Slide) Prompt() string {
	if s.Type == MediaTypeVideo {
		return s.VideoPrompt
	}
	return s.ImagePrompt
}

// Collection 返回集合名称
func (s *Story) Collection() string { return "stories" }

// EnsureIndexes 创建和维护索引
func (s *Story) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(s.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "slides.status", Value: 1}},
			Options: options.Index().SetName("idx_slide_status"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
