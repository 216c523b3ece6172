package story

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"mango/internal/model/story"
)

// Progress 故事生成进度
// 供前端轮询展示，故事不存在时 Available=false 而不是报错
type Progress struct {
	Available  bool    `json:"available"`  // 故事是否存在
	Total      int     `json:"total"`      // 幻灯片总数
	Pending    int     `json:"pending"`    // 待处理数
	Generating int     `json:"generating"` // 生成中数
	Completed  int     `json:"completed"`  // 已完成数
	Failed     int     `json:"failed"`     // 失败数
	Percent    float64 `json:"percent"`    // 终态占比（0-100）
	Done       bool    `json:"done"`       // 是否全部到达终态
}

// GetProgress 获取故事的生成进度
func (s *storyService) GetProgress(ctx context.Context, id string) (*Progress, error) {
	st, err := s.storyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &Progress{Available: false}, nil
		}
		return nil, err
	}

	return BuildProgress(st), nil
}

// BuildProgress 从故事实体统计进度
func BuildProgress(st *story.Story) *Progress {
	p := &Progress{
		Available: true,
		Total:     len(st.Slides),
	}

	for i := range st.Slides {
		switch st.Slides[i].Status {
		case story.SlideStatusCompleted:
			p.Completed++
		case story.SlideStatusFailed:
			p.Failed++
		case story.SlideStatusGenerating:
			p.Generating++
		default:
			p.Pending++
		}
	}

	if p.Total > 0 {
		terminal := p.Completed + p.Failed
		p.Percent = float64(terminal) / float64(p.Total) * 100
		p.Done = terminal == p.Total
	}

	return p
}
