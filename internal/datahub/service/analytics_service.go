package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const analyticsCacheTTL = 5 * time.Minute

// AnalyticsService computes per-dataset statistics. Results are cached in
// Redis since the field scan walks every active record.
type AnalyticsService struct {
	recordRepo  *repository.RecordRepository
	datasetRepo *repository.DatasetRepository
	rdb         *redis.Client
}

func NewAnalyticsService(recordRepo *repository.RecordRepository, datasetRepo *repository.DatasetRepository, rdb *redis.Client) *AnalyticsService {
	return &AnalyticsService{recordRepo: recordRepo, datasetRepo: datasetRepo, rdb: rdb}
}

// FieldStats aggregates one schema field across all active records.
type FieldStats struct {
	Type          string     `json:"type"`
	TotalValues   int        `json:"totalValues"`
	UniqueValues  int        `json:"uniqueValues"`
	NullValues    int        `json:"nullValues"`
	Min           *float64   `json:"min,omitempty"`
	Max           *float64   `json:"max,omitempty"`
	Average       *float64   `json:"average,omitempty"`
	Sum           *float64   `json:"sum,omitempty"`
	AverageLength *float64   `json:"averageLength,omitempty"`
	TopValues     []TopValue `json:"topValues,omitempty"`
}

// TopValue is one of the most frequent values of a field.
type TopValue struct {
	Value interface{} `json:"value"`
	Count int         `json:"count"`
}

// DayCount is one day of the submission time series.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Analytics is the full per-dataset report.
type Analytics struct {
	DatasetID            string                `json:"datasetId"`
	TotalRecords         int64                 `json:"totalRecords"`
	RecordsToday         int64                 `json:"recordsToday"`
	RecordsThisWeek      int64                 `json:"recordsThisWeek"`
	RecordsThisMonth     int64                 `json:"recordsThisMonth"`
	AverageRecordsPerDay float64               `json:"averageRecordsPerDay"`
	TimeSeries           []DayCount            `json:"timeSeries"`
	FieldStatistics      map[string]FieldStats `json:"fieldStatistics"`
	GeneratedAt          time.Time             `json:"generatedAt"`
}

// Get returns the dataset's analytics, from cache when fresh.
func (s *AnalyticsService) Get(ctx context.Context, datasetID string) (*Analytics, error) {
	cacheKey := fmt.Sprintf("datahub:analytics:%s", datasetID)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached Analytics
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	report, err := s.compute(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(report); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, raw, analyticsCacheTTL).Err(); err != nil {
				zap.L().Warn("failed to cache analytics", zap.String("dataset_id", datasetID), zap.Error(err))
			}
		}
	}
	return report, nil
}

// Invalidate drops the cached report, called after bulk imports.
func (s *AnalyticsService) Invalidate(ctx context.Context, datasetID string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, fmt.Sprintf("datahub:analytics:%s", datasetID))
}

func (s *AnalyticsService) compute(ctx context.Context, datasetID string) (*Analytics, error) {
	dataset, err := s.datasetRepo.FindByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := s.recordRepo.CountSince(ctx, datasetID, dayStart)
	if err != nil {
		return nil, err
	}
	week, err := s.recordRepo.CountSince(ctx, datasetID, dayStart.AddDate(0, 0, -6))
	if err != nil {
		return nil, err
	}
	month, err := s.recordRepo.CountSince(ctx, datasetID, dayStart.AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}

	records, err := s.recordRepo.FindAllForExport(ctx, datasetID, entity.RecordStatusActive)
	if err != nil {
		return nil, err
	}

	report := &Analytics{
		DatasetID:        datasetID,
		TotalRecords:     int64(len(records)),
		RecordsToday:     today,
		RecordsThisWeek:  week,
		RecordsThisMonth: month,
		FieldStatistics:  make(map[string]FieldStats, len(dataset.Schema.Fields)),
		GeneratedAt:      now,
	}

	if len(records) > 0 {
		first := records[0].Metadata.SubmittedAt
		days := now.Sub(first).Hours()/24 + 1
		if days < 1 {
			days = 1
		}
		report.AverageRecordsPerDay = float64(len(records)) / days
	}

	for _, field := range dataset.Schema.Fields {
		report.FieldStatistics[field.Name] = fieldStats(field, records)
	}
	report.TimeSeries = timeSeries(records, dayStart)
	return report, nil
}

// timeSeries buckets submissions per day over the last 30 days, oldest first.
func timeSeries(records []entity.DatasetRecord, dayStart time.Time) []DayCount {
	const days = 30
	start := dayStart.AddDate(0, 0, -(days - 1))

	buckets := make(map[string]int64, days)
	for i := range records {
		at := records[i].Metadata.SubmittedAt
		if at.Before(start) {
			continue
		}
		buckets[at.Format("2006-01-02")]++
	}

	series := make([]DayCount, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, DayCount{Date: date, Count: buckets[date]})
	}
	return series
}

func fieldStats(field entity.DatasetField, records []entity.DatasetRecord) FieldStats {
	stats := FieldStats{Type: field.Type}

	counts := make(map[string]int)
	values := make(map[string]interface{})
	var sum, lengths float64
	var numeric, strCount int
	var min, max float64

	for i := range records {
		value, ok := records[i].Data[field.Name]
		if !ok || value == nil || value == "" {
			stats.NullValues++
			continue
		}
		stats.TotalValues++

		key := cellString(value)
		counts[key]++
		values[key] = value

		if n, isNum := numericCell(value); isNum && field.Type == "number" {
			if numeric == 0 || n < min {
				min = n
			}
			if numeric == 0 || n > max {
				max = n
			}
			sum += n
			numeric++
		}
		if s, isStr := value.(string); isStr {
			lengths += float64(len(s))
			strCount++
		}
	}

	stats.UniqueValues = len(counts)
	if numeric > 0 {
		avg := sum / float64(numeric)
		total := sum
		stats.Min, stats.Max, stats.Average, stats.Sum = &min, &max, &avg, &total
	}
	if strCount > 0 {
		avgLen := lengths / float64(strCount)
		stats.AverageLength = &avgLen
	}

	type pair struct {
		key   string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for k, c := range counts {
		pairs = append(pairs, pair{k, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].key < pairs[j].key
	})
	limit := 5
	if len(pairs) < limit {
		limit = len(pairs)
	}
	for _, p := range pairs[:limit] {
		stats.TopValues = append(stats.TopValues, TopValue{Value: values[p.key], Count: p.count})
	}
	return stats
}

func numericCell(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
