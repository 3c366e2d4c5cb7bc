package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/pkg/cache"
	"github.com/stokku/inventory-service/pkg/metrics"
)

const (
	forecastWindowDays = 90
	optimizeWindowDays = 180

	leadTimeDays = 7
	orderingCost = 50.0
	holdingRate  = 0.2
	// fallbackHoldingCost keeps the EOQ defined for rows with no unit cost.
	fallbackHoldingCost = 1.0

	cacheTTL = 15 * time.Minute
)

// Result is a demand forecast over a planning period.
type Result struct {
	ExpectedDemand      float64 `json:"expectedDemand"`
	UpperBound          float64 `json:"upperBound"`
	LowerBound          float64 `json:"lowerBound"`
	RecommendedOrder    int64   `json:"recommendedOrder"`
	StockoutProbability float64 `json:"stockoutProbability"`
}

// OptimizeResult is a set of derived replenishment parameters for
// longer-horizon planning.
type OptimizeResult struct {
	OptimizedMinStock        int64 `json:"optimizedMinStock"`
	OptimizedMaxStock        int64 `json:"optimizedMaxStock"`
	OptimizedReorderPoint    int64 `json:"optimizedReorderPoint"`
	OptimizedReorderQuantity int64 `json:"optimizedReorderQuantity"`
	SafetyStock              int64 `json:"safetyStock"`
}

// SalesReader provides the sales slice of the movement ledger.
type SalesReader interface {
	ListSalesSince(ctx context.Context, storeID, productID string, since time.Time) ([]model.StockMovement, error)
}

// StockReader provides the current stock position.
type StockReader interface {
	GetByStoreProduct(ctx context.Context, storeID, productID string) (*model.Inventory, error)
}

// Engine computes demand forecasts and replenishment parameters from the
// movement ledger. It never mutates inventory; a forecast against a slightly
// stale snapshot is acceptable, which is why results are cacheable.
type Engine struct {
	sales  SalesReader
	stock  StockReader
	cache  *cache.RedisClient
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine builds a forecasting engine. cache may be nil, in which case
// every call recomputes.
func NewEngine(sales SalesReader, stock StockReader, redis *cache.RedisClient, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		sales:  sales,
		stock:  stock,
		cache:  redis,
		logger: logger,
		now:    time.Now,
	}
}

// Forecast projects demand for the (product, store) pair over periodDays.
// A pair with no sales history yields the zero result: no data is a valid
// answer, not an error.
func (e *Engine) Forecast(ctx context.Context, productID, storeID string, periodDays int, confidence float64) (*Result, error) {
	if periodDays <= 0 {
		return nil, fmt.Errorf("%w: periodDays must be positive", model.ErrValidation)
	}

	start := time.Now()
	defer func() {
		metrics.ForecastDuration.Observe(time.Since(start).Seconds())
	}()

	cacheKey := fmt.Sprintf("forecast:%s:%s:%d:%.2f", storeID, productID, periodDays, confidence)
	if e.cache != nil {
		var cached Result
		if hit, err := e.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
			e.logger.Warn("forecast cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	now := e.now().UTC()
	movements, err := e.sales.ListSalesSince(ctx, storeID, productID, daysAgo(now, forecastWindowDays))
	if err != nil {
		return nil, err
	}

	series := dailySeries(movements)
	if len(series) == 0 {
		return &Result{}, nil
	}

	level, trend := holt(series)
	expected := math.Max(0, level+trend*float64(periodDays))

	sigma := popStdDev(series)
	z := zScore(confidence)
	upper := expected + z*sigma
	lower := math.Max(0, expected-z*sigma)

	currentStock := int64(0)
	if inv, err := e.stock.GetByStoreProduct(ctx, storeID, productID); err != nil {
		return nil, err
	} else if inv != nil {
		currentStock = inv.Quantity
	}

	// Target the expected demand plus half the confidence spread as safety
	// margin, net of stock already on hand.
	recommended := int64(math.Ceil(math.Max(0, expected+0.5*(upper-expected)-float64(currentStock))))

	stockout := 0.0
	if sigma > 0 {
		stockout = normalCDF(expected / sigma)
	}

	result := &Result{
		ExpectedDemand:      expected,
		UpperBound:          upper,
		LowerBound:          lower,
		RecommendedOrder:    recommended,
		StockoutProbability: stockout,
	}

	if e.cache != nil {
		if err := e.cache.SetJSON(ctx, cacheKey, result, cacheTTL); err != nil {
			e.logger.Warn("forecast cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// OptimizeStockLevels derives min/max/reorder-point/order-quantity
// parameters from a longer demand window at the target service level.
func (e *Engine) OptimizeStockLevels(ctx context.Context, productID, storeID string, historicalDays int, serviceLevel float64) (*OptimizeResult, error) {
	if historicalDays <= 0 {
		historicalDays = optimizeWindowDays
	}

	now := e.now().UTC()
	movements, err := e.sales.ListSalesSince(ctx, storeID, productID, daysAgo(now, historicalDays))
	if err != nil {
		return nil, err
	}

	series := dailySeries(movements)
	if len(series) == 0 {
		return &OptimizeResult{}, nil
	}

	sigma := popStdDev(series)
	avgDaily := mean(series)
	z := zScore(serviceLevel)

	safetyStock := int64(math.Ceil(z * sigma))
	reorderPoint := int64(math.Ceil(avgDaily*leadTimeDays + float64(safetyStock)))

	holdingCost := fallbackHoldingCost
	if inv, err := e.stock.GetByStoreProduct(ctx, storeID, productID); err != nil {
		return nil, err
	} else if inv != nil && inv.UnitCost.Valid && inv.UnitCost.Decimal.IsPositive() {
		holdingCost = inv.UnitCost.Decimal.InexactFloat64() * holdingRate
	}

	annualDemand := avgDaily * 365
	eoq := int64(math.Ceil(math.Sqrt(2 * annualDemand * orderingCost / holdingCost)))

	return &OptimizeResult{
		OptimizedMinStock:        safetyStock,
		OptimizedMaxStock:        safetyStock + eoq,
		OptimizedReorderPoint:    reorderPoint,
		OptimizedReorderQuantity: eoq,
		SafetyStock:              safetyStock,
	}, nil
}
