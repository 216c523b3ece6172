package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ImageClient Gemini 图片生成客户端
// 调用 generateContent 接口，图片以 inlineData（base64）形式返回
type ImageClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// NewImageClient 创建 Gemini 图片生成客户端
func NewImageClient(config *Config, timeout time.Duration) (*ImageClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	config.applyDefaults()

	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &ImageClient{
		httpClient: newHTTPClient(timeout),
		apiKey:     config.APIKey,
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		model:      config.ImageModel,
	}, nil
}

// GenerateImage 根据提示词生成一张图片（同步接口）
// 返回解码后的图片字节和 MIME 类型
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseModalities": []string{"IMAGE"},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	log.Debug().
		Str("api_url", apiURL).
		Str("model", c.model).
		Msg("提交图片生成请求")

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					InlineData *struct {
						MimeType string `json:"mimeType"`
						Data     string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
	}
	if err := doJSON(c.httpClient, req, c.apiKey, &apiResp); err != nil {
		log.Error().Err(err).Str("model", c.model).Msg("图片生成请求失败")
		return nil, "", err
	}

	// 取第一个带 inlineData 的 part
	for _, candidate := range apiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			imageData, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, "", fmt.Errorf("decode base64 image data: %w", err)
			}
			mimeType := part.InlineData.MimeType
			if mimeType == "" {
				mimeType = "image/png"
			}
			log.Debug().Int("size", len(imageData)).Str("mime_type", mimeType).Msg("图片生成成功")
			return imageData, mimeType, nil
		}
	}

	return nil, "", fmt.Errorf("no image data in response")
}
