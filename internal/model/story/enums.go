package story

// SlideStatus 幻灯片素材状态
type SlideStatus string

const (
	SlideStatusPending    SlideStatus = "pending"    // 待处理（草稿刚落库）
	SlideStatusGenerating SlideStatus = "generating" // 生成中（任务已启动）
	SlideStatusCompleted  SlideStatus = "completed"  // 已完成（素材URL已写入）
	SlideStatusFailed     SlideStatus = "failed"     // 失败（错误信息已写入）
)

// String 返回状态的字符串表示
func (s SlideStatus) String() string {
	return string(s)
}

// IsTerminal 判断是否为终态
func (s SlideStatus) IsTerminal() bool {
	return s == SlideStatusCompleted || s == SlideStatusFailed
}

// MediaType 幻灯片素材类型
type MediaType string

const (
	MediaTypeImage MediaType = "image" // 静态图片
	MediaTypeVideo MediaType = "video" // 短视频
)

// String 返回类型的字符串表示
func (t MediaType) String() string {
	return string(t)
}

// Valid 判断素材类型是否合法
func (t MediaType) Valid() bool {
	return t == MediaTypeImage || t == MediaTypeVideo
}
