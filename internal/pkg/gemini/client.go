package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Config Gemini 素材生成配置
type Config struct {
	APIKey     string // API Key（必需）
	BaseURL    string // API 基础 URL（可选，默认: https://generativelanguage.googleapis.com/v1beta）
	ImageModel string // 图片生成模型名称（可选，默认: gemini-3-pro-image-preview）
	VideoModel string // 视频生成模型名称（可选，默认: veo-3.1-generate-preview）
}

// ConfigFromEnv 从环境变量创建 Gemini 配置
// 支持的环境变量：
//   - GEMINI_API_KEY: API Key（必需）
//   - GEMINI_BASE_URL: API 基础 URL（可选）
//   - GEMINI_IMAGE_MODEL: 图片生成模型名称（可选）
//   - GEMINI_VIDEO_MODEL: 视频生成模型名称（可选）
func ConfigFromEnv() *Config {
	cfg := &Config{
		APIKey:     os.Getenv("GEMINI_API_KEY"),
		BaseURL:    os.Getenv("GEMINI_BASE_URL"),
		ImageModel: os.Getenv("GEMINI_IMAGE_MODEL"),
		VideoModel: os.Getenv("GEMINI_VIDEO_MODEL"),
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.ImageModel == "" {
		c.ImageModel = "gemini-3-pro-image-preview"
	}
	if c.VideoModel == "" {
		c.VideoModel = "veo-3.1-generate-preview"
	}
}

// APIError Gemini API 错误
// 保留 HTTP 状态码和 API status 字符串，供上层分类（限流/致命/瞬时）
type APIError struct {
	StatusCode int    // HTTP 状态码
	Status     string // API 错误状态（如 RESOURCE_EXHAUSTED, INVALID_ARGUMENT）
	Message    string // 错误描述
}

// Error 实现 error 接口
func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini api error: status %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini api error: status %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited 判断错误是否为配额/限流错误
// 限流在重试窗口内不会恢复，调用方不应自动重试
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
}

// IsFatal 判断错误是否为请求本身的契约错误（重试无意义）
func IsFatal(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	switch apiErr.Status {
	case "INVALID_ARGUMENT", "PERMISSION_DENIED", "FAILED_PRECONDITION":
		return true
	}
	return false
}

// parseAPIError 从非 2xx 响应构造 *APIError
// 响应体格式: {"error": {"code": 429, "message": "...", "status": "RESOURCE_EXHAUSTED"}}
func parseAPIError(statusCode int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		apiErr.Status = payload.Error.Status
		apiErr.Message = payload.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// doJSON 发送请求并解析 JSON 响应，非 2xx 返回 *APIError
func doJSON(client *http.Client, req *http.Request, apiKey string, out any) error {
	req.Header.Set("x-goog-api-key", apiKey)
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
