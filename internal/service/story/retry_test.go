package story

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"mango/internal/config"
	"mango/internal/model/story"
	"mango/internal/pkg/gemini"
)

func TestRetrySlide(t *testing.T) {
	Convey("重试幻灯片素材生成", t, func() {
		repo := newFakeStoryRepo()
		llm := &fakeLLMProvider{}

		Convey("故事不存在返回 ErrStoryNotFound，且不触发生成", func() {
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))

			_, err := svc.RetrySlide(context.Background(), "no-such-story", 0, "")

			So(errors.Is(err, ErrStoryNotFound), ShouldBeTrue)
			So(img.callCount(), ShouldEqual, 0)
		})

		Convey("下标越界返回 ErrSlideNotFound", func() {
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, imageSlide("a volcano"))

			_, err := svc.RetrySlide(context.Background(), st.ID, 5, "")
			So(errors.Is(err, ErrSlideNotFound), ShouldBeTrue)

			_, err = svc.RetrySlide(context.Background(), st.ID, -1, "")
			So(errors.Is(err, ErrSlideNotFound), ShouldBeTrue)
			So(img.callCount(), ShouldEqual, 0)
		})

		Convey("重试成功清除历史错误信息", func() {
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, imageSlide("a volcano"), imageSlide("untouched"))
			So(repo.UpdateSlideFailed(context.Background(), st.ID, 0, "quota exceeded"), ShouldBeNil)

			slide, err := svc.RetrySlide(context.Background(), st.ID, 0, "")

			So(err, ShouldBeNil)
			So(slide.Status, ShouldEqual, story.SlideStatusCompleted)
			So(slide.AssetURL, ShouldNotBeEmpty)
			So(slide.ErrorMessage, ShouldBeEmpty)

			// 其余幻灯片不受影响
			got := repo.get(st.ID)
			So(got.Slides[1].Status, ShouldEqual, story.SlideStatusPending)
		})

		Convey("重试失败返回失败终态而不是错误", func() {
			img := &fakeImageProvider{errs: []error{
				&gemini.APIError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded"},
			}}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, imageSlide("a volcano"))

			slide, err := svc.RetrySlide(context.Background(), st.ID, 0, "")

			So(err, ShouldBeNil)
			So(slide.Status, ShouldEqual, story.SlideStatusFailed)
			So(slide.ErrorMessage, ShouldEqual, rateLimitedMessage)
		})

		Convey("覆盖提示词先持久化再生成", func() {
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, imageSlide("old prompt"))

			slide, err := svc.RetrySlide(context.Background(), st.ID, 0, "  new prompt  ")

			So(err, ShouldBeNil)
			So(slide.ImagePrompt, ShouldEqual, "new prompt")
			So(img.prompts[0], ShouldEqual, "new prompt")

			got := repo.get(st.ID)
			So(got.Slides[0].ImagePrompt, ShouldEqual, "new prompt")
		})

		Convey("视频幻灯片的覆盖提示词写入 video_prompt", func() {
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, videoSlide("old motion"))

			slide, err := svc.RetrySlide(context.Background(), st.ID, 0, "new motion")

			So(err, ShouldBeNil)
			So(slide.VideoPrompt, ShouldEqual, "new motion")
			So(vid.prompts[0], ShouldEqual, "new motion")
		})

		Convey("重试拥有完整的重试预算", func() {
			img := &fakeImageProvider{errs: []error{
				errors.New("timeout"),
				errors.New("timeout"),
			}}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))
			st := seedStory(repo, imageSlide("a volcano"))
			So(repo.UpdateSlideFailed(context.Background(), st.ID, 0, "earlier failure"), ShouldBeNil)

			slide, err := svc.RetrySlide(context.Background(), st.ID, 0, "")

			So(err, ShouldBeNil)
			So(img.callCount(), ShouldEqual, 3)
			So(slide.Status, ShouldEqual, story.SlideStatusCompleted)
		})
	})
}
