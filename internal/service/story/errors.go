package story

import (
	"errors"
)

// service 层业务错误
// handler 层据此映射 HTTP 状态码
var (
	ErrTopicRequired = errors.New("topic is required")
	ErrStoryNotFound = errors.New("story not found")
	ErrSlideNotFound = errors.New("slide not found")
	ErrEmptyPlan     = errors.New("story plan has no slides")
)
