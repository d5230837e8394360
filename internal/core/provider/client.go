package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flavor-twin/internal/infrastructure/config"
	"flavor-twin/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	searchPath = "/recipe/search"
	detailPath = "/recipe/{id}"
)

// Client 以 HTTP 呼叫外部食譜服務
type Client struct {
	client *resty.Client
}

var _ RecipeProvider = (*Client)(nil)

// NewClient 創建食譜服務客戶端
func NewClient(cfg config.ProviderConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// 只重試連線錯誤與 5xx
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	if cfg.APIKey != "" {
		client.SetHeader("X-API-Key", cfg.APIKey)
	}

	common.LogInfo("食譜服務客戶端已初始化",
		zap.String("base_url", cfg.BaseURL),
		zap.String("key", config.MaskAPIKey(cfg.APIKey)),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("retry_count", cfg.RetryCount),
	)

	return &Client{client: client}
}

// SearchByTitle 以名稱搜尋食譜，只取第一頁第一筆
func (c *Client) SearchByTitle(ctx context.Context, query string) ([]CandidateStub, error) {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"title":    query,
			"page":     "1",
			"pageSize": "1",
		}).
		Get(searchPath)
	err = checkResponse(resp, err)
	common.LogProviderCall(searchPath, time.Since(start), err, common.RequestIDFromContext(ctx))

	if errors.Is(err, errNotFound) {
		return []CandidateStub{}, nil
	}
	if err != nil {
		return nil, err
	}

	var body interface{}
	if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to parse recipe search response: %w", err)
	}

	items := unwrapList(body)
	stubs := make([]CandidateStub, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		stub := stubFromMap(m)
		if stub.ID == "" && stub.Title == "" {
			continue
		}
		stubs = append(stubs, stub)
	}
	return stubs, nil
}

// GetDetail 取得食譜詳細資料
func (c *Client) GetDetail(ctx context.Context, id string) (RawRecipe, error) {
	if id == "" {
		return nil, nil
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get(detailPath)
	err = checkResponse(resp, err)
	common.LogProviderCall(detailPath, time.Since(start), err, common.RequestIDFromContext(ctx))

	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var body interface{}
	if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to parse recipe detail response: %w", err)
	}

	switch v := body.(type) {
	case map[string]interface{}:
		return RawRecipe(v), nil
	case []interface{}:
		if len(v) > 0 {
			if m, ok := v[0].(map[string]interface{}); ok {
				return RawRecipe(m), nil
			}
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected recipe detail payload %T", body)
	}
}

var errNotFound = errors.New("recipe not found")

// checkResponse 將傳輸錯誤與非 200 狀態統一為 error
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("failed to send request to recipe provider: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return errNotFound
	default:
		return fmt.Errorf("recipe provider returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
