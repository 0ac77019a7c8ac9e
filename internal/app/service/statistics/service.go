package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/softmint/billing/pkg/types"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatisticType string

const (
	StatisticTypeDailyPaymentCount StatisticType = "daily_payment_count"
	StatisticTypeDailyGmv          StatisticType = "daily_gmv"
	StatisticTypeTotalGmv          StatisticType = "total_gmv"
)

type RevenueStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type RevenueStatisticRequest struct {
	Filters   []*types.CommonFilter       `json:"filters"`
	DataItems []*RevenueStatisticDataItem `json:"data_items"`
}

// Build composes a WHERE clause from the request filters.
func (f *RevenueStatisticRequest) Build(builder clause.Builder) {
	if f == nil || len(f.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range f.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		filter.Build(builder)
	}
}

type RevenueStatisticResponseDataItem struct {
	Date  string `json:"date"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type RevenueStatisticResponse struct {
	DataItems map[StatisticType][]RevenueStatisticResponseDataItem `json:"data_items"`
}

// Service computes revenue statistics over recorded payments. Internally
// granted entitlements are excluded from every series.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) getDailyPaymentCount(ctx context.Context, request *RevenueStatisticRequest) ([]RevenueStatisticResponseDataItem, error) {
	var results []RevenueStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("payment").
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("provider != ?", types.PaymentProviderInner).
		Where(clause.Where{Exprs: []clause.Expression{request}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyGmv(ctx context.Context, request *RevenueStatisticRequest) ([]RevenueStatisticResponseDataItem, error) {
	var results []RevenueStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("payment").
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, currency AS label, sum(amount) as value").
		Where("provider != ? AND status = ?", types.PaymentProviderInner, types.PaymentStatusSucceeded).
		Where(clause.Where{Exprs: []clause.Expression{request}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalGmv(ctx context.Context, _ *RevenueStatisticRequest) ([]RevenueStatisticResponseDataItem, error) {
	var results []RevenueStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH min_max_dates AS (
    SELECT MIN(DATE(created_at)) as min_date, MAX(DATE(created_at)) as max_date
    FROM payment
),
distinct_dates AS (
    SELECT generate_series(min_date, max_date, '1 day'::interval) as date FROM min_max_dates
),
dates AS (
    SELECT TO_CHAR(date, 'YYYY-MM-DD') as date FROM distinct_dates
),
currencies AS (
    SELECT DISTINCT currency as label FROM payment WHERE provider != ?
),
date_currency_combinations AS (
    SELECT d.date, c.label FROM dates d CROSS JOIN currencies c
),
gmv_date AS (
    SELECT dc.date, dc.label, COALESCE(SUM(p.amount), 0) as value
    FROM date_currency_combinations dc
    LEFT JOIN payment p
      ON TO_CHAR(p.created_at, 'YYYY-MM-DD') = dc.date
     AND p.currency = dc.label
     AND p.provider != ?
     AND p.status = ?
    GROUP BY dc.date, dc.label
)
SELECT d.date as date, d.label as label, SUM(s.value) as value
FROM gmv_date d
LEFT JOIN gmv_date s ON s.date <= d.date AND s.label = d.label
GROUP BY d.date, d.label
ORDER BY d.date DESC, d.label ASC
`, types.PaymentProviderInner, types.PaymentProviderInner, types.PaymentStatusSucceeded).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getRevenueStatistic(ctx context.Context, request *RevenueStatisticRequest, dataItem *RevenueStatisticDataItem) ([]RevenueStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyPaymentCount:
		return s.getDailyPaymentCount(ctx, request)
	case StatisticTypeDailyGmv:
		return s.getDailyGmv(ctx, request)
	case StatisticTypeTotalGmv:
		return s.getTotalGmv(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetRevenueStatistic fans requested series out concurrently and fails the
// whole request on the first series error.
func (s *Service) GetRevenueStatistic(ctx context.Context, request *RevenueStatisticRequest) (*RevenueStatisticResponse, error) {
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []RevenueStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *RevenueStatisticDataItem) {
			defer wg.Done()
			res, err := s.getRevenueStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []RevenueStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	results := make(map[StatisticType][]RevenueStatisticResponseDataItem)
	for i := 0; i < len(request.DataItems); i++ {
		select {
		case err := <-errChan:
			if err != nil {
				return nil, err
			}
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &RevenueStatisticResponse{DataItems: results}, nil
}
