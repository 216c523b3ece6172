package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// VideoClient Gemini 视频生成客户端（Veo）
// 视频生成是长任务：predictLongRunning 提交后轮询 operation 直到完成，再下载视频文件
type VideoClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string

	pollInterval time.Duration
	maxWaitTime  time.Duration
}

// NewVideoClient 创建 Gemini 视频生成客户端
func NewVideoClient(config *Config, maxWaitTime time.Duration) (*VideoClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	config.applyDefaults()

	if maxWaitTime <= 0 {
		maxWaitTime = 15 * time.Minute
	}

	return &VideoClient{
		httpClient:   newHTTPClient(60 * time.Second),
		apiKey:       config.APIKey,
		baseURL:      strings.TrimSuffix(config.BaseURL, "/"),
		model:        config.VideoModel,
		pollInterval: 5 * time.Second,
		maxWaitTime:  maxWaitTime,
	}, nil
}

// GenerateVideo 根据提示词生成视频（同步等待）
//
// 实现流程：
// 1. 调用 predictLongRunning 提交任务，返回 operation 名称
// 2. 每 5 秒轮询一次 operation 直到 done
// 3. 下载生成的视频文件并返回字节
func (c *VideoClient) GenerateVideo(ctx context.Context, prompt string) ([]byte, error) {
	operationName, err := c.createVideoOperation(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("create video operation: %w", err)
	}

	log.Info().Str("operation", operationName).Msg("视频生成任务提交成功")

	startTime := time.Now()
	for {
		if time.Since(startTime) > c.maxWaitTime {
			return nil, fmt.Errorf("video generation timeout after %v", c.maxWaitTime)
		}

		done, videoURI, err := c.getOperation(ctx, operationName)
		if err != nil {
			return nil, fmt.Errorf("get operation status: %w", err)
		}

		if done {
			if videoURI == "" {
				return nil, fmt.Errorf("video URI is empty in completed operation")
			}
			videoData, err := c.downloadVideo(ctx, videoURI)
			if err != nil {
				return nil, fmt.Errorf("download video: %w", err)
			}
			log.Info().Str("operation", operationName).Int("size", len(videoData)).Msg("视频生成成功并下载完成")
			return videoData, nil
		}

		log.Debug().Str("operation", operationName).Msg("视频生成中，继续等待...")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// createVideoOperation 提交视频生成任务，返回 operation 名称
func (c *VideoClient) createVideoOperation(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"instances": []map[string]interface{}{
			{"prompt": prompt},
		},
		"parameters": map[string]interface{}{
			"aspectRatio": "16:9",
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/models/%s:predictLongRunning", c.baseURL, c.model)

	log.Debug().
		Str("api_url", apiURL).
		Str("model", c.model).
		Msg("创建视频生成任务")

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	var apiResp struct {
		Name string `json:"name"`
	}
	if err := doJSON(c.httpClient, req, c.apiKey, &apiResp); err != nil {
		log.Error().Err(err).Str("model", c.model).Msg("视频生成请求失败")
		return "", err
	}

	if apiResp.Name == "" {
		return "", fmt.Errorf("operation name is empty in response")
	}
	return apiResp.Name, nil
}

// getOperation 查询长任务状态
func (c *VideoClient) getOperation(ctx context.Context, operationName string) (done bool, videoURI string, err error) {
	apiURL := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimPrefix(operationName, "/"))

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return false, "", fmt.Errorf("create request: %w", err)
	}

	var apiResp struct {
		Done  bool `json:"done"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
		Response struct {
			GenerateVideoResponse struct {
				GeneratedSamples []struct {
					Video struct {
						URI string `json:"uri"`
					} `json:"video"`
				} `json:"generatedSamples"`
			} `json:"generateVideoResponse"`
		} `json:"response"`
	}
	if err := doJSON(c.httpClient, req, c.apiKey, &apiResp); err != nil {
		return false, "", err
	}

	// 任务本身失败时，把 operation 内嵌的错误还原成 APIError，让上层按同一套规则分类
	if apiResp.Done && apiResp.Error != nil {
		return false, "", &APIError{
			StatusCode: apiResp.Error.Code,
			Status:     apiResp.Error.Status,
			Message:    apiResp.Error.Message,
		}
	}

	if !apiResp.Done {
		return false, "", nil
	}

	samples := apiResp.Response.GenerateVideoResponse.GeneratedSamples
	if len(samples) == 0 {
		return true, "", nil
	}
	return true, samples[0].Video.URI, nil
}

// downloadVideo 下载生成的视频文件
// 文件 URI 同样需要 API Key 鉴权
func (c *VideoClient) downloadVideo(ctx context.Context, videoURI string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", videoURI, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseAPIError(resp.StatusCode, body)
	}

	videoData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read video data: %w", err)
	}
	return videoData, nil
}
