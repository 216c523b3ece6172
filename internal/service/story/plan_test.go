package story

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"mango/internal/config"
	"mango/internal/model/story"
)

const validPlanJSON = `{
	"topic": "火山",
	"narrative": "火山是地球内部能量的出口。",
	"slides": [
		{"title": "什么是火山", "content": "火山是岩浆喷出的通道。", "imagePrompt": "a volcano diagram", "type": "image"},
		{"title": "喷发过程", "content": "岩浆上升并喷发。", "imagePrompt": "an eruption", "videoPrompt": "magma rising", "type": "video"}
	]
}`

// waitForDone 轮询仓库直到故事全部到达终态
func waitForDone(repo *fakeStoryRepo, id string) *story.Story {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		st := repo.get(id)
		if st != nil && BuildProgress(st).Done {
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}
	return repo.get(id)
}

func TestCreateStory(t *testing.T) {
	Convey("创建故事", t, func() {
		repo := newFakeStoryRepo()

		Convey("空主题返回 ErrTopicRequired，且不调用 LLM", func() {
			llm := &fakeLLMProvider{response: validPlanJSON}
			svc, _ := newTestService(repo, llm, &fakeImageProvider{}, &fakeVideoProvider{}, testGenConfig(config.VideoModeConcurrent))

			_, err := svc.CreateStory(context.Background(), &CreateStoryRequest{UserID: "user-1", Topic: "   "})

			So(errors.Is(err, ErrTopicRequired), ShouldBeTrue)
			So(llm.calls, ShouldEqual, 0)
		})

		Convey("未收录的风格原样透传", func() {
			llm := &fakeLLMProvider{response: validPlanJSON}
			svc, _ := newTestService(repo, llm, &fakeImageProvider{}, &fakeVideoProvider{}, testGenConfig(config.VideoModeConcurrent))

			st, err := svc.CreateStory(context.Background(), &CreateStoryRequest{
				UserID:      "user-1",
				Topic:       "火山",
				Style:       "oil-painting",
				AllowMotion: true,
			})

			So(err, ShouldBeNil)
			So(st.Style, ShouldEqual, "oil-painting")
		})

		Convey("LLM 返回不可解析内容时返回 ErrEmptyPlan", func() {
			llm := &fakeLLMProvider{response: "抱歉，我无法完成这个任务。"}
			svc, _ := newTestService(repo, llm, &fakeImageProvider{}, &fakeVideoProvider{}, testGenConfig(config.VideoModeConcurrent))

			_, err := svc.CreateStory(context.Background(), &CreateStoryRequest{UserID: "user-1", Topic: "火山", AllowMotion: true})

			So(errors.Is(err, ErrEmptyPlan), ShouldBeTrue)
		})

		Convey("LLM 调用失败时整个请求失败", func() {
			llm := &fakeLLMProvider{err: errors.New("upstream unavailable")}
			svc, _ := newTestService(repo, llm, &fakeImageProvider{}, &fakeVideoProvider{}, testGenConfig(config.VideoModeConcurrent))

			_, err := svc.CreateStory(context.Background(), &CreateStoryRequest{UserID: "user-1", Topic: "火山", AllowMotion: true})

			So(err, ShouldNotBeNil)
		})

		Convey("创建成功返回全 pending 草稿，后台完成素材生成", func() {
			llm := &fakeLLMProvider{response: validPlanJSON}
			img := &fakeImageProvider{}
			vid := &fakeVideoProvider{}
			svc, _ := newTestService(repo, llm, img, vid, testGenConfig(config.VideoModeConcurrent))

			st, err := svc.CreateStory(context.Background(), &CreateStoryRequest{
				UserID:      "user-1",
				Topic:       "  火山  ",
				AllowMotion: true,
			})

			So(err, ShouldBeNil)
			So(st.ID, ShouldNotBeEmpty)
			So(st.Topic, ShouldEqual, "火山")
			So(st.Narrative, ShouldNotBeEmpty)
			So(len(st.Slides), ShouldEqual, 2)
			for i := range st.Slides {
				So(st.Slides[i].Status, ShouldEqual, story.SlideStatusPending)
				So(st.Slides[i].AssetURL, ShouldBeEmpty)
			}
			So(st.Slides[1].Type, ShouldEqual, story.MediaTypeVideo)

			// 后台编排最终把所有幻灯片推到终态
			done := waitForDone(repo, st.ID)
			So(done, ShouldNotBeNil)
			So(done.Slides[0].Status, ShouldEqual, story.SlideStatusCompleted)
			So(done.Slides[1].Status, ShouldEqual, story.SlideStatusCompleted)
			So(img.callCount(), ShouldEqual, 1)
			So(vid.callCount(), ShouldEqual, 1)
		})

		Convey("视频全局禁用时草稿不含视频幻灯片", func() {
			llm := &fakeLLMProvider{response: validPlanJSON}
			img := &fakeImageProvider{}
			svc, _ := newTestService(repo, llm, img, nil, testGenConfig(config.VideoModeDisabled))

			st, err := svc.CreateStory(context.Background(), &CreateStoryRequest{
				UserID:      "user-1",
				Topic:       "火山",
				AllowMotion: true,
			})

			So(err, ShouldBeNil)
			// 策划提示词本身就不给视频选项
			So(llm.prompts[0], ShouldNotContainSubstring, "videoPrompt")
			for i := range st.Slides {
				So(st.Slides[i].Type, ShouldEqual, story.MediaTypeImage)
				So(st.Slides[i].VideoPrompt, ShouldBeEmpty)
			}

			done := waitForDone(repo, st.ID)
			So(done.Slides[0].Status, ShouldEqual, story.SlideStatusCompleted)
			So(done.Slides[1].Status, ShouldEqual, story.SlideStatusCompleted)
			So(img.callCount(), ShouldEqual, 2)
		})

		Convey("用户关闭视频时所有幻灯片降级为图片", func() {
			llm := &fakeLLMProvider{response: validPlanJSON}
			svc, _ := newTestService(repo, llm, &fakeImageProvider{}, &fakeVideoProvider{}, testGenConfig(config.VideoModeConcurrent))

			st, err := svc.CreateStory(context.Background(), &CreateStoryRequest{
				UserID:      "user-1",
				Topic:       "火山",
				AllowMotion: false,
			})

			So(err, ShouldBeNil)
			So(st.AllowMotion, ShouldBeFalse)
			So(llm.prompts[0], ShouldNotContainSubstring, "videoPrompt")
			for i := range st.Slides {
				So(st.Slides[i].Type, ShouldEqual, story.MediaTypeImage)
			}
		})

		Convey("允许视频时策划提示词包含视频选项", func() {
			llm := &fakeLLMProvider{response: validPlanJSON}
			svc, _ := newTestService(repo, llm, &fakeImageProvider{}, &fakeVideoProvider{}, testGenConfig(config.VideoModeConcurrent))

			_, err := svc.CreateStory(context.Background(), &CreateStoryRequest{
				UserID:      "user-1",
				Topic:       "火山",
				AllowMotion: true,
			})

			So(err, ShouldBeNil)
			So(llm.prompts[0], ShouldContainSubstring, "videoPrompt")
		})
	})
}

func TestGetStory(t *testing.T) {
	Convey("获取故事详情", t, func() {
		repo := newFakeStoryRepo()
		svc, _ := newTestService(repo, &fakeLLMProvider{}, &fakeImageProvider{}, &fakeVideoProvider{}, testGenConfig(config.VideoModeConcurrent))

		Convey("故事不存在返回 ErrStoryNotFound", func() {
			_, err := svc.GetStory(context.Background(), "no-such-story")
			So(errors.Is(err, ErrStoryNotFound), ShouldBeTrue)
		})

		Convey("返回幻灯片的当前状态", func() {
			st := seedStory(repo, imageSlide("a volcano"))
			So(repo.UpdateSlideCompleted(context.Background(), st.ID, 0, "https://assets.test/x.png"), ShouldBeNil)

			got, err := svc.GetStory(context.Background(), st.ID)
			So(err, ShouldBeNil)
			So(got.Slides[0].Status, ShouldEqual, story.SlideStatusCompleted)
			So(got.Slides[0].AssetURL, ShouldEqual, "https://assets.test/x.png")
		})
	})
}

func TestDeleteStory(t *testing.T) {
	Convey("删除故事", t, func() {
		repo := newFakeStoryRepo()
		svc, _ := newTestService(repo, &fakeLLMProvider{}, &fakeImageProvider{}, &fakeVideoProvider{}, testGenConfig(config.VideoModeConcurrent))

		Convey("故事不存在返回 ErrStoryNotFound", func() {
			err := svc.DeleteStory(context.Background(), "no-such-story")
			So(errors.Is(err, ErrStoryNotFound), ShouldBeTrue)
		})

		Convey("删除后各查询接口不再可见", func() {
			st := seedStory(repo, imageSlide("a volcano"))

			So(svc.DeleteStory(context.Background(), st.ID), ShouldBeNil)

			_, err := svc.GetStory(context.Background(), st.ID)
			So(errors.Is(err, ErrStoryNotFound), ShouldBeTrue)

			progress, err := svc.GetProgress(context.Background(), st.ID)
			So(err, ShouldBeNil)
			So(progress.Available, ShouldBeFalse)
		})
	})
}
