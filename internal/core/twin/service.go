package twin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flavor-twin/internal/core/cache"
	"flavor-twin/internal/core/catalog"
	"flavor-twin/internal/core/flavor"
	"flavor-twin/internal/core/provider"
	"flavor-twin/internal/infrastructure/config"
	"flavor-twin/internal/pkg/common"

	"go.uber.org/zap"
)

// 來源菜餚的出處
const (
	OriginCatalog  = "catalog"
	OriginCache    = "cache"
	OriginProvider = "provider"
	OriginRequest  = "request"
)

// ErrUnresolvedSource 目錄與食譜服務都找不到來源菜餚
var ErrUnresolvedSource = common.ErrUnresolvedSource

// SourceProfile 來源菜餚與其風味輪廓
type SourceProfile struct {
	Dish    flavor.Dish    `json:"dish"`
	Origin  string         `json:"origin"`
	Vector  flavor.Vector  `json:"vector"`
	Raw     flavor.Vector  `json:"raw"`
	Profile flavor.Profile `json:"profile"`
}

// Result 一次比對的結果
type Result struct {
	Source SourceProfile        `json:"source"`
	Twins  []flavor.MatchResult `json:"twins"`
}

// Service 解析來源菜餚並執行風味分身比對
type Service struct {
	engine   *flavor.Engine
	catalog  *catalog.Catalog
	provider provider.RecipeProvider
	cache    cache.DishCache
	match    config.MatchConfig
}

// NewService 創建比對服務。provider 為 nil 時只在目錄中查找；
// dishCache 為 nil 時不快取。
func NewService(engine *flavor.Engine, cat *catalog.Catalog, p provider.RecipeProvider, dishCache cache.DishCache, match config.MatchConfig) *Service {
	if dishCache == nil {
		dishCache = cache.Noop{}
	}
	if match.DefaultK <= 0 {
		match.DefaultK = flavor.DefaultK
	}
	return &Service{
		engine:   engine,
		catalog:  cat,
		provider: p,
		cache:    dishCache,
		match:    match,
	}
}

// Engine 使用中的比對引擎
func (s *Service) Engine() *flavor.Engine {
	return s.engine
}

// Catalog 使用中的目錄
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// FindTwins 以名稱解析來源菜餚後比對。progress 可為 nil。
func (s *Service) FindTwins(ctx context.Context, query string, k int, progress flavor.ProgressFunc) (*Result, error) {
	report := s.reporter(ctx, progress)

	report(flavor.StageLocatingSource)
	source, origin, err := s.resolve(ctx, query, report)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, source, origin, k, report)
}

// Match 直接以呼叫端提供的來源菜餚比對
func (s *Service) Match(ctx context.Context, source flavor.Dish, k int, progress flavor.ProgressFunc) (*Result, error) {
	if strings.TrimSpace(source.Name) == "" {
		return nil, common.NewValidationError("source dish name is required")
	}
	if err := flavor.Validate(source); err != nil {
		return nil, common.ErrInvalidDish.Wrap(err)
	}
	return s.run(ctx, source, OriginRequest, k, s.reporter(ctx, progress))
}

// Profile 計算單一菜餚的風味輪廓
func (s *Service) Profile(d flavor.Dish, origin string) SourceProfile {
	raw := s.engine.Builder().BuildVector(d.Ingredients)
	display := flavor.NormalizeForDisplay(raw)
	return SourceProfile{
		Dish:    d,
		Origin:  origin,
		Vector:  display,
		Raw:     raw,
		Profile: flavor.DescribeProfile(display),
	}
}

// ClampK 將 k 限制在設定範圍內，未指定時使用預設值
func (s *Service) ClampK(k int) int {
	if k <= 0 {
		return s.match.DefaultK
	}
	if s.match.MaxK > 0 && k > s.match.MaxK {
		return s.match.MaxK
	}
	return k
}

func (s *Service) run(ctx context.Context, source flavor.Dish, origin string, k int, report flavor.ProgressFunc) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	twins, err := s.engine.WithProgress(report).FindTwins(source, s.catalog.All(), s.ClampK(k))
	if err != nil {
		if errors.Is(err, flavor.ErrUndefinedIngredients) {
			return nil, common.ErrInvalidDish.Wrap(err)
		}
		return nil, common.ErrInternalError.Wrap(err)
	}

	common.LogInfo("風味分身比對完成",
		zap.String("來源", source.Name),
		zap.String("出處", origin),
		zap.Int("結果數量", len(twins)),
		zap.Duration("耗時", time.Since(start)),
		zap.String("request_id", common.RequestIDFromContext(ctx)),
	)

	return &Result{
		Source: s.Profile(source, origin),
		Twins:  twins,
	}, nil
}

func (s *Service) resolve(ctx context.Context, query string, report flavor.ProgressFunc) (flavor.Dish, string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return flavor.Dish{}, "", common.NewValidationError("dish name is required")
	}

	// 目錄優先
	if d, ok := s.catalog.Find(q); ok {
		return d, OriginCatalog, nil
	}

	if d, err := s.cache.Get(ctx, q); err == nil {
		return d, OriginCache, nil
	} else if !errors.Is(err, common.ErrCacheMiss) && !errors.Is(err, common.ErrCacheDisabled) {
		common.LogWarn("讀取快取失敗", zap.Error(err))
	}

	if s.provider == nil {
		return flavor.Dish{}, "", ErrUnresolvedSource.Wrap(fmt.Errorf("no dish matches %q", q))
	}

	stubs, err := s.provider.SearchByTitle(ctx, q)
	if err != nil {
		return flavor.Dish{}, "", providerError(err)
	}
	if len(stubs) == 0 {
		return flavor.Dish{}, "", ErrUnresolvedSource.Wrap(fmt.Errorf("no dish matches %q", q))
	}

	stub := stubs[0]
	raw, err := s.provider.GetDetail(ctx, stub.ID)
	if err != nil {
		return flavor.Dish{}, "", providerError(err)
	}

	report(flavor.StageParsingRecipe)
	d := provider.ToDish(stub, raw)
	if d.Name == "" {
		return flavor.Dish{}, "", ErrUnresolvedSource.Wrap(fmt.Errorf("recipe %s has no name", stub))
	}

	if err := s.cache.Set(ctx, q, d); err != nil {
		common.LogWarn("寫入快取失敗", zap.String("查詢", q), zap.Error(err))
	}
	return d, OriginProvider, nil
}

// providerError 逾時對應 504，其餘對應 502
func providerError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return common.ErrGatewayTimeout.Wrap(err)
	}
	return common.ErrProviderError.Wrap(err)
}

// reporter 記錄每個階段並轉發給訂閱者
func (s *Service) reporter(ctx context.Context, progress flavor.ProgressFunc) flavor.ProgressFunc {
	requestID := common.RequestIDFromContext(ctx)
	return func(stage flavor.Stage) {
		common.LogDebug("比對階段", zap.String("stage", string(stage)), zap.String("request_id", requestID))
		if progress != nil {
			progress(stage)
		}
	}
}
