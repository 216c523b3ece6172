package storytools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"mango/internal/model/story"
)

func TestCleanJSONContent(t *testing.T) {
	Convey("CleanJSONContent 能清理 LLM 返回的 JSON 内容", t, func() {
		Convey("纯 JSON 原样返回", func() {
			So(CleanJSONContent(`{"topic": "海洋"}`), ShouldEqual, `{"topic": "海洋"}`)
		})

		Convey("移除 markdown 代码块标记", func() {
			content := "```json\n{\"topic\": \"海洋\"}\n```"
			So(CleanJSONContent(content), ShouldEqual, `{"topic": "海洋"}`)
		})

		Convey("移除无语言标记的代码块", func() {
			content := "```\n{\"topic\": \"海洋\"}\n```"
			So(CleanJSONContent(content), ShouldEqual, `{"topic": "海洋"}`)
		})

		Convey("移除首尾空白", func() {
			So(CleanJSONContent("  {\"a\": 1}  \n"), ShouldEqual, `{"a": 1}`)
		})
	})
}

func TestParseStoryPlan(t *testing.T) {
	validContent := `{
		"topic": "火山",
		"narrative": "火山是地球内部能量的出口。",
		"slides": [
			{"title": "什么是火山", "content": "火山是岩浆喷出的通道。", "imagePrompt": "a volcano diagram", "type": "image"},
			{"title": "喷发过程", "content": "岩浆上升并喷发。", "imagePrompt": "an eruption", "videoPrompt": "magma rising and erupting", "type": "video"}
		]
	}`

	Convey("ParseStoryPlan 能解析并校验策划 JSON", t, func() {
		Convey("合法内容解析成功", func() {
			plan, err := ParseStoryPlan(validContent, true)
			So(err, ShouldBeNil)
			So(plan.Topic, ShouldEqual, "火山")
			So(plan.Narrative, ShouldNotBeEmpty)
			So(len(plan.Slides), ShouldEqual, 2)
			So(plan.Slides[0].Type, ShouldEqual, string(story.MediaTypeImage))
			So(plan.Slides[1].Type, ShouldEqual, string(story.MediaTypeVideo))
			So(plan.Slides[1].VideoPrompt, ShouldNotBeEmpty)
		})

		Convey("带 markdown 代码块的内容也能解析", func() {
			plan, err := ParseStoryPlan("```json\n"+validContent+"\n```", true)
			So(err, ShouldBeNil)
			So(len(plan.Slides), ShouldEqual, 2)
		})

		Convey("非 JSON 内容返回错误", func() {
			_, err := ParseStoryPlan("抱歉，我无法完成这个任务。", true)
			So(err, ShouldNotBeNil)
		})

		Convey("空幻灯片列表返回错误", func() {
			_, err := ParseStoryPlan(`{"topic": "a", "narrative": "b", "slides": []}`, true)
			So(err, ShouldNotBeNil)
		})

		Convey("缺少必填字段返回错误", func() {
			content := `{"topic": "a", "narrative": "b", "slides": [{"title": "t", "content": "", "imagePrompt": "p", "type": "image"}]}`
			_, err := ParseStoryPlan(content, true)
			So(err, ShouldNotBeNil)
		})

		Convey("非法素材类型返回错误", func() {
			content := `{"topic": "a", "narrative": "b", "slides": [{"title": "t", "content": "c", "imagePrompt": "p", "type": "gif"}]}`
			_, err := ParseStoryPlan(content, true)
			So(err, ShouldNotBeNil)
		})

		Convey("video 缺少 videoPrompt 时降级为 image", func() {
			content := `{"topic": "a", "narrative": "b", "slides": [{"title": "t", "content": "c", "imagePrompt": "p", "type": "video"}]}`
			plan, err := ParseStoryPlan(content, true)
			So(err, ShouldBeNil)
			So(plan.Slides[0].Type, ShouldEqual, string(story.MediaTypeImage))
			So(plan.Slides[0].VideoPrompt, ShouldBeEmpty)
		})

		Convey("不允许视频时所有 video 降级为 image", func() {
			plan, err := ParseStoryPlan(validContent, false)
			So(err, ShouldBeNil)
			So(plan.Slides[1].Type, ShouldEqual, string(story.MediaTypeImage))
			So(plan.Slides[1].VideoPrompt, ShouldBeEmpty)
		})

		Convey("image 幻灯片多余的 videoPrompt 被清空", func() {
			content := `{"topic": "a", "narrative": "b", "slides": [{"title": "t", "content": "c", "imagePrompt": "p", "videoPrompt": "v", "type": "image"}]}`
			plan, err := ParseStoryPlan(content, true)
			So(err, ShouldBeNil)
			So(plan.Slides[0].VideoPrompt, ShouldBeEmpty)
		})
	})
}

func TestParseFunFacts(t *testing.T) {
	Convey("ParseFunFacts 能解析趣味知识 JSON", t, func() {
		Convey("合法内容解析成功", func() {
			facts, err := ParseFunFacts(`{"facts": ["事实一", "事实二"]}`)
			So(err, ShouldBeNil)
			So(len(facts), ShouldEqual, 2)
		})

		Convey("空列表返回错误", func() {
			_, err := ParseFunFacts(`{"facts": []}`)
			So(err, ShouldNotBeNil)
		})

		Convey("非 JSON 返回错误", func() {
			_, err := ParseFunFacts("not json")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestApplyStyle(t *testing.T) {
	Convey("ApplyStyle 能追加风格指南", t, func() {
		Convey("已知风格追加指南文本", func() {
			result := ApplyStyle("a volcano", "drawing")
			So(result, ShouldStartWith, "a volcano")
			So(result, ShouldContainSubstring, "hand-drawn educational illustration")
		})

		Convey("未知风格原样返回", func() {
			So(ApplyStyle("a volcano", "cyberpunk"), ShouldEqual, "a volcano")
		})

		Convey("空风格原样返回", func() {
			So(ApplyStyle("a volcano", ""), ShouldEqual, "a volcano")
		})
	})
}

func TestBuildStoryPlanPrompt(t *testing.T) {
	Convey("BuildStoryPlanPrompt 按是否允许视频构建提示词", t, func() {
		Convey("允许视频时给出 video 选项", func() {
			prompt := BuildStoryPlanPrompt("火山", true)
			So(prompt, ShouldContainSubstring, "火山")
			So(prompt, ShouldContainSubstring, "videoPrompt")
			So(prompt, ShouldContainSubstring, "image or video")
		})

		Convey("不允许视频时提示词完全不提视频", func() {
			prompt := BuildStoryPlanPrompt("火山", false)
			So(prompt, ShouldContainSubstring, "火山")
			So(prompt, ShouldContainSubstring, "imagePrompt")
			So(prompt, ShouldNotContainSubstring, "videoPrompt")
			So(prompt, ShouldNotContainSubstring, "video")
		})
	})
}
