package story

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"mango/internal/config"
	"mango/internal/model/story"
)

// fakeStoryRepo 内存版故事仓库，行为对齐 Mongo 实现：
// 定点更新只改目标幻灯片，story/下标不存在返回 ErrNoDocuments
type fakeStoryRepo struct {
	mu      sync.Mutex
	stories map[string]*story.Story
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{stories: make(map[string]*story.Story)}
}

func cloneStory(st *story.Story) *story.Story {
	c := *st
	c.Slides = make([]story.Slide, len(st.Slides))
	copy(c.Slides, st.Slides)
	return &c
}

func (r *fakeStoryRepo) Create(ctx context.Context, st *story.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st.CreatedAt = time.Now()
	st.UpdatedAt = st.CreatedAt
	r.stories[st.ID] = cloneStory(st)
	return nil
}

func (r *fakeStoryRepo) FindByID(ctx context.Context, id string) (*story.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.stories[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneStory(st), nil
}

func (r *fakeStoryRepo) FindByUserID(ctx context.Context, userID string, limit int64) ([]*story.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*story.Story
	for _, st := range r.stories {
		if st.UserID == userID {
			result = append(result, cloneStory(st))
		}
	}
	return result, nil
}

func (r *fakeStoryRepo) slide(id string, index int) (*story.Story, *story.Slide, error) {
	st, ok := r.stories[id]
	if !ok {
		return nil, nil, mongo.ErrNoDocuments
	}
	if index < 0 || index >= len(st.Slides) {
		return nil, nil, mongo.ErrNoDocuments
	}
	return st, &st.Slides[index], nil
}

func (r *fakeStoryRepo) UpdateSlideStatus(ctx context.Context, storyID string, index int, status story.SlideStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, slide, err := r.slide(storyID, index)
	if err != nil {
		return err
	}
	slide.Status = status
	return nil
}

func (r *fakeStoryRepo) UpdateSlideCompleted(ctx context.Context, storyID string, index int, assetURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, slide, err := r.slide(storyID, index)
	if err != nil {
		return err
	}
	slide.Status = story.SlideStatusCompleted
	slide.AssetURL = assetURL
	slide.ErrorMessage = ""
	return nil
}

func (r *fakeStoryRepo) UpdateSlideFailed(ctx context.Context, storyID string, index int, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, slide, err := r.slide(storyID, index)
	if err != nil {
		return err
	}
	slide.Status = story.SlideStatusFailed
	slide.ErrorMessage = errorMessage
	slide.AssetURL = ""
	return nil
}

func (r *fakeStoryRepo) UpdateSlidePrompt(ctx context.Context, storyID string, index int, mediaType story.MediaType, prompt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, slide, err := r.slide(storyID, index)
	if err != nil {
		return err
	}
	if mediaType == story.MediaTypeVideo {
		slide.VideoPrompt = prompt
	} else {
		slide.ImagePrompt = prompt
	}
	return nil
}

func (r *fakeStoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stories, id)
	return nil
}

// get 返回仓库内的最新快照
func (r *fakeStoryRepo) get(id string) *story.Story {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.stories[id]
	if !ok {
		return nil
	}
	return cloneStory(st)
}

// fakeLLMProvider 固定返回内容或错误的 LLM
type fakeLLMProvider struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	prompts  []string
}

func (p *fakeLLMProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

// fakeImageProvider 可编排错误序列的图片生成器
// errs 逐次消费，耗尽后返回成功
type fakeImageProvider struct {
	mu        sync.Mutex
	errs      []error
	calls     int
	callTimes []time.Time
	prompts   []string
}

func (p *fakeImageProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.callTimes = append(p.callTimes, time.Now())
	p.prompts = append(p.prompts, prompt)
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		if err != nil {
			return nil, "", err
		}
	}
	return []byte("png-bytes"), "image/png", nil
}

func (p *fakeImageProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// fakeVideoProvider 可编排错误序列的视频生成器
type fakeVideoProvider struct {
	mu        sync.Mutex
	errs      []error
	calls     int
	callTimes []time.Time
	prompts   []string
}

func (p *fakeVideoProvider) GenerateVideo(ctx context.Context, prompt string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.callTimes = append(p.callTimes, time.Now())
	p.prompts = append(p.prompts, prompt)
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return []byte("mp4-bytes"), nil
}

func (p *fakeVideoProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// fakeStorage 内存存储，URL 规则固定
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.objects[key] = content
	return "https://assets.test/" + key, nil
}

func (s *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (s *fakeStorage) GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return "https://assets.test/" + key, nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStorage) GetStorageType() string {
	return "fake"
}

// testGenConfig 测试用编排配置：毫秒级退避，保证用例快速稳定
func testGenConfig(videoMode string) config.GenerationConfig {
	return config.GenerationConfig{
		VideoMode:   videoMode,
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
	}
}

// newTestService 组装测试用服务实例
func newTestService(
	repo *fakeStoryRepo,
	llm *fakeLLMProvider,
	img *fakeImageProvider,
	vid *fakeVideoProvider,
	genCfg config.GenerationConfig,
) (*storyService, *fakeStorage) {
	store := newFakeStorage()
	return &storyService{
		storyRepo:     repo,
		llmProvider:   llm,
		imageProvider: img,
		videoProvider: vid,
		store:         store,
		genCfg:        genCfg,
	}, store
}
