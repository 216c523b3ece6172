package story

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"mango/internal/config"
	"mango/internal/model/story"
	"mango/internal/pkg/gemini"
)

// seedStory 构造并入库一个测试故事
func seedStory(repo *fakeStoryRepo, slides ...story.Slide) *story.Story {
	st := &story.Story{
		ID:     "story-1",
		UserID: "user-1",
		Topic:  "volcanoes",
		Slides: slides,
	}
	_ = repo.Create(context.Background(), st)
	return st
}

func imageSlide(prompt string) story.Slide {
	return story.Slide{
		Title:       "slide",
		Content:     "content",
		Type:        story.MediaTypeImage,
		ImagePrompt: prompt,
		Status:      story.SlideStatusPending,
	}
}

func videoSlide(prompt string) story.Slide {
	return story.Slide{
		Title:       "slide",
		Content:     "content",
		Type:        story.MediaTypeVideo,
		VideoPrompt: prompt,
		Status:      story.SlideStatusPending,
	}
}

func TestGenerateSlideAsset(t *testing.T) {
	Convey("幻灯片素材生成", t, func() {
		repo := newFakeStoryRepo()
		llm := &fakeLLMProvider{}

		Convey("首次成功直接写入完成终态", func() {
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, imageSlide("a volcano"))

			svc.generateSlideAsset(context.Background(), st, 0)

			So(img.callCount(), ShouldEqual, 1)
			got := repo.get(st.ID)
			So(got.Slides[0].Status, ShouldEqual, story.SlideStatusCompleted)
			So(got.Slides[0].AssetURL, ShouldEqual, "https://assets.test/stories/story-1/slide_0.png")
			So(got.Slides[0].ErrorMessage, ShouldBeEmpty)
		})

		Convey("瞬时错误指数退避后重试成功", func() {
			img := &fakeImageProvider{errs: []error{
				errors.New("connection reset"),
				errors.New("connection reset"),
			}}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, imageSlide("a volcano"))

			start := time.Now()
			svc.generateSlideAsset(context.Background(), st, 0)
			elapsed := time.Since(start)

			So(img.callCount(), ShouldEqual, 3)
			// 两次退避：BaseDelay + 2*BaseDelay
			So(elapsed, ShouldBeGreaterThanOrEqualTo, 3*svc.genCfg.BaseDelay)
			got := repo.get(st.ID)
			So(got.Slides[0].Status, ShouldEqual, story.SlideStatusCompleted)
		})

		Convey("瞬时错误耗尽重试预算后失败", func() {
			img := &fakeImageProvider{errs: []error{
				errors.New("timeout"),
				errors.New("timeout"),
				errors.New("timeout"),
			}}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, imageSlide("a volcano"))

			svc.generateSlideAsset(context.Background(), st, 0)

			So(img.callCount(), ShouldEqual, svc.genCfg.MaxAttempts)
			got := repo.get(st.ID)
			So(got.Slides[0].Status, ShouldEqual, story.SlideStatusFailed)
			So(got.Slides[0].ErrorMessage, ShouldContainSubstring, "timeout")
			So(got.Slides[0].AssetURL, ShouldBeEmpty)
		})

		Convey("限流错误不重试，立即失败", func() {
			img := &fakeImageProvider{errs: []error{
				&gemini.APIError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded"},
			}}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, imageSlide("a volcano"))

			svc.generateSlideAsset(context.Background(), st, 0)

			So(img.callCount(), ShouldEqual, 1)
			got := repo.get(st.ID)
			So(got.Slides[0].Status, ShouldEqual, story.SlideStatusFailed)
			// 限流写入统一的提示文案，而不是原始报文
			So(got.Slides[0].ErrorMessage, ShouldEqual, rateLimitedMessage)
			So(got.Slides[0].ErrorMessage, ShouldNotContainSubstring, "429")
		})

		Convey("契约错误不重试，立即失败", func() {
			img := &fakeImageProvider{errs: []error{
				&gemini.APIError{StatusCode: 400, Status: "INVALID_ARGUMENT", Message: "prompt rejected"},
			}}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, imageSlide("a volcano"))

			svc.generateSlideAsset(context.Background(), st, 0)

			So(img.callCount(), ShouldEqual, 1)
			got := repo.get(st.ID)
			So(got.Slides[0].Status, ShouldEqual, story.SlideStatusFailed)
			So(got.Slides[0].ErrorMessage, ShouldContainSubstring, "prompt rejected")
		})

		Convey("视频幻灯片走视频生成器并以 mp4 落盘", func() {
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, videoSlide("magma rising"))

			svc.generateSlideAsset(context.Background(), st, 0)

			So(vid.callCount(), ShouldEqual, 1)
			So(img.callCount(), ShouldEqual, 0)
			So(vid.prompts[0], ShouldEqual, "magma rising")
			got := repo.get(st.ID)
			So(got.Slides[0].Status, ShouldEqual, story.SlideStatusCompleted)
			So(got.Slides[0].AssetURL, ShouldEqual, "https://assets.test/stories/story-1/slide_0.mp4")
		})

		Convey("图片提示词带上故事风格指南", func() {
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := &story.Story{
				ID:     "story-1",
				UserID: "user-1",
				Topic:  "volcanoes",
				Style:  "drawing",
				Slides: []story.Slide{imageSlide("a volcano")},
			}
			So(repo.Create(context.Background(), st), ShouldBeNil)

			svc.generateSlideAsset(context.Background(), st, 0)

			So(img.prompts[0], ShouldStartWith, "a volcano")
			So(img.prompts[0], ShouldContainSubstring, "hand-drawn educational illustration")
		})

		Convey("视频提示词同样带上故事风格指南", func() {
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := &story.Story{
				ID:     "story-1",
				UserID: "user-1",
				Topic:  "volcanoes",
				Style:  "drawing",
				Slides: []story.Slide{videoSlide("magma rising")},
			}
			So(repo.Create(context.Background(), st), ShouldBeNil)

			svc.generateSlideAsset(context.Background(), st, 0)

			So(vid.prompts[0], ShouldStartWith, "magma rising")
			So(vid.prompts[0], ShouldContainSubstring, "hand-drawn educational illustration")
		})

		Convey("存储失败按瞬时错误重试", func() {
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, store := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			store.err = errors.New("bucket unavailable")
			st := seedStory(repo, imageSlide("a volcano"))

			svc.generateSlideAsset(context.Background(), st, 0)

			So(img.callCount(), ShouldEqual, svc.genCfg.MaxAttempts)
			got := repo.get(st.ID)
			So(got.Slides[0].Status, ShouldEqual, story.SlideStatusFailed)
			So(got.Slides[0].ErrorMessage, ShouldContainSubstring, "bucket unavailable")
		})
	})
}

func TestExtensionFor(t *testing.T) {
	Convey("extensionFor 推断扩展名", t, func() {
		So(extensionFor("image/png"), ShouldEqual, ".png")
		So(extensionFor("image/jpeg"), ShouldEqual, ".jpg")
		So(extensionFor("image/webp"), ShouldEqual, ".webp")
		So(extensionFor("video/mp4"), ShouldEqual, ".mp4")
		So(extensionFor("application/octet-stream"), ShouldBeEmpty)
	})
}
