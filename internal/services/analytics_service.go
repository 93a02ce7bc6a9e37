package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/justsurfingit/job-trends-api/internal/cache"
	"github.com/justsurfingit/job-trends-api/internal/config"
	apperrors "github.com/justsurfingit/job-trends-api/internal/errors"
	"github.com/justsurfingit/job-trends-api/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SummaryCacheKey = "analytics:summary"
	UnknownLabel    = "Unknown"

	// SummaryVersionKey changes on every job write. A summary is only cached
	// if the version is the same before and after it was computed.
	SummaryVersionKey = "analytics:summary:version"

	topSkillsLimit = 10
	versionTTL     = 24 * time.Hour
)

type SkillCount struct {
	SkillID   uint   `json:"skill_id"`
	SkillName string `json:"skill_name"`
	Count     int64  `json:"count" gorm:"column:job_count"`
}

type YearSalary struct {
	Year         int     `json:"year"`
	AvgMinSalary float64 `json:"avg_min_salary"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type Summary struct {
	TotalJobs               int64        `json:"total_jobs"`
	AverageMinSalary        float64      `json:"average_min_salary"`
	TopSkills               []SkillCount `json:"top_skills"`
	SalaryTrend             []YearSalary `json:"salary_trend"`
	WorkSettingDistribution []LabelCount `json:"work_setting_distribution"`
	CompanySizeDistribution []LabelCount `json:"company_size_distribution"`
}

// EmptySummary is what dashboards get when the store is empty or unreachable.
func EmptySummary() *Summary {
	return &Summary{
		TopSkills:               []SkillCount{},
		SalaryTrend:             []YearSalary{},
		WorkSettingDistribution: []LabelCount{},
		CompanySizeDistribution: []LabelCount{},
	}
}

// JobColumnsReport is the payload of the column-inspection debug endpoint.
type JobColumnsReport struct {
	Columns   []string       `json:"columns"`
	SampleRow map[string]any `json:"sample_row"`
}

type AnalyticsService struct {
	DB         *gorm.DB
	Cache      cache.Cache
	CacheTTL   time.Duration
	Logger     *zap.Logger
	Dimensions DimensionMap
}

func NewAnalyticsService(db *gorm.DB, c cache.Cache, logger *zap.Logger, cfg *config.Config) *AnalyticsService {
	return &AnalyticsService{
		DB:         db,
		Cache:      c,
		CacheTTL:   cfg.CacheTTL,
		Logger:     logger,
		Dimensions: DefaultDimensions,
	}
}

func (s *AnalyticsService) CountJobs(ctx context.Context) (int64, error) {
	var total int64
	err := s.DB.WithContext(ctx).Model(&models.Job{}).Count(&total).Error
	return total, err
}

// AverageMinSalary is 0 for an empty table rather than NULL.
func (s *AnalyticsService) AverageMinSalary(ctx context.Context) (float64, error) {
	var avg float64
	row := s.DB.WithContext(ctx).
		Model(&models.Job{}).
		Select("COALESCE(CAST(AVG(min_salary) AS FLOAT), 0)").
		Row()
	if err := row.Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

// TopSkills ranks skills by number of linked jobs; ties go to the lower id.
func (s *AnalyticsService) TopSkills(ctx context.Context) ([]SkillCount, error) {
	out := []SkillCount{}
	err := s.DB.WithContext(ctx).
		Table("job_skills").
		Select("skills.id AS skill_id, skills.name AS skill_name, COUNT(job_skills.job_id) AS job_count").
		Joins("JOIN skills ON skills.id = job_skills.skill_id").
		Group("skills.id, skills.name").
		Order("job_count DESC, skills.id ASC").
		Limit(topSkillsLimit).
		Scan(&out).Error
	if out == nil {
		out = []SkillCount{}
	}
	return out, err
}

func (s *AnalyticsService) SalaryTrend(ctx context.Context) ([]YearSalary, error) {
	out := []YearSalary{}
	err := s.DB.WithContext(ctx).
		Model(&models.Job{}).
		Select("work_year AS year, COALESCE(CAST(AVG(min_salary) AS FLOAT), 0) AS avg_min_salary").
		Where("work_year IS NOT NULL").
		Group("work_year").
		Order("work_year ASC").
		Scan(&out).Error
	if out == nil {
		out = []YearSalary{}
	}
	return out, err
}

func (s *AnalyticsService) WorkSettingDistribution(ctx context.Context) ([]LabelCount, error) {
	return s.distribution(ctx, "work_setting")
}

func (s *AnalyticsService) CompanySizeDistribution(ctx context.Context) ([]LabelCount, error) {
	return s.distribution(ctx, "company_size")
}

// Summary composes every dashboard aggregate. Results are cached until the
// next write or CacheTTL, whichever comes first.
func (s *AnalyticsService) Summary(ctx context.Context) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.Summary")
	defer span.End()

	if data, err := s.Cache.Get(ctx, SummaryCacheKey); err == nil {
		var cached Summary
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	} else if !errors.Is(err, cache.ErrNotFound) {
		s.Logger.Warn("analytics cache read failed", zap.Error(err))
	}

	version := s.summaryVersion(ctx)
	summary := EmptySummary()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.TotalJobs, err = s.CountJobs(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.AverageMinSalary, err = s.AverageMinSalary(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.TopSkills, err = s.TopSkills(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.SalaryTrend, err = s.SalaryTrend(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.WorkSettingDistribution, err = s.WorkSettingDistribution(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.CompanySizeDistribution, err = s.CompanySizeDistribution(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, apperrors.FromStore("failed to compute analytics summary", err)
	}

	if s.summaryVersion(ctx) != version {
		// a write landed while computing; caching would outlive it
		s.Logger.Debug("jobs changed during summary, not caching")
		return summary, nil
	}
	if data, err := json.Marshal(summary); err == nil {
		if err := s.Cache.Set(ctx, SummaryCacheKey, data, s.CacheTTL); err != nil {
			s.Logger.Warn("analytics cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *AnalyticsService) summaryVersion(ctx context.Context) string {
	data, err := s.Cache.Get(ctx, SummaryVersionKey)
	if err != nil {
		return ""
	}
	return string(data)
}

// AggregateByDimension counts jobs grouped by the column that backs dimension.
// NULL and empty values are reported under UnknownLabel.
func (s *AnalyticsService) AggregateByDimension(ctx context.Context, dimension string) ([]LabelCount, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.AggregateByDimension")
	defer span.End()

	columns, err := s.JobColumnNames(ctx)
	if err != nil {
		return nil, apperrors.FromStore("failed to inspect jobs columns", err)
	}

	column, candidates, ok := s.Dimensions.Resolve(dimension, columns)
	if !ok {
		return nil, apperrors.SchemaMismatch(fmt.Sprintf("No matching %s column found on jobs.", dimension), nil).
			WithDetail("tried_candidates", candidates).
			WithDetail("available_columns", columns)
	}

	rows, err := s.DB.WithContext(ctx).
		Model(&models.Job{}).
		Select("? AS label, COUNT(*) AS job_count", clause.Column{Name: column}).
		Clauses(clause.GroupBy{Columns: []clause.Column{{Name: column}}}).
		Order("job_count DESC, label ASC").
		Rows()
	if err != nil {
		return nil, apperrors.FromStore("failed to aggregate jobs by "+column, err)
	}
	defer rows.Close()

	out, err := scanLabelCounts(rows)
	if err != nil {
		return nil, apperrors.FromStore("failed to read aggregate rows", err)
	}
	return mergeUnknown(out), nil
}

// JobColumnNames lists the physical columns of the jobs table as the store
// reports them.
func (s *AnalyticsService) JobColumnNames(ctx context.Context) ([]string, error) {
	types, err := s.DB.WithContext(ctx).Migrator().ColumnTypes(&models.Job{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name())
	}
	return names, nil
}

func (s *AnalyticsService) JobColumns(ctx context.Context) (*JobColumnsReport, error) {
	columns, err := s.JobColumnNames(ctx)
	if err != nil {
		return nil, apperrors.FromStore("failed to inspect jobs columns", err)
	}

	var sample []map[string]any
	if err := s.DB.WithContext(ctx).Table("jobs").Order("id ASC").Limit(1).Find(&sample).Error; err != nil {
		return nil, apperrors.FromStore("failed to sample jobs", err)
	}

	report := &JobColumnsReport{Columns: columns}
	if len(sample) > 0 {
		report.SampleRow = sample[0]
	}
	return report, nil
}

// distribution counts the non-empty values of column. NULL and "" rows are
// left out.
func (s *AnalyticsService) distribution(ctx context.Context, column string) ([]LabelCount, error) {
	rows, err := s.DB.WithContext(ctx).
		Model(&models.Job{}).
		Select("? AS label, COUNT(*) AS job_count", clause.Column{Name: column}).
		Where(clause.Expr{SQL: "? IS NOT NULL AND ? <> ''", Vars: []any{clause.Column{Name: column}, clause.Column{Name: column}}}).
		Clauses(clause.GroupBy{Columns: []clause.Column{{Name: column}}}).
		Order("job_count DESC, label ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLabelCounts(rows)
}

func scanLabelCounts(rows *sql.Rows) ([]LabelCount, error) {
	out := []LabelCount{}
	for rows.Next() {
		var label sql.NullString
		var count int64
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		lc := LabelCount{Label: UnknownLabel, Count: count}
		if label.Valid && label.String != "" {
			lc.Label = label.String
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// mergeUnknown folds NULL and empty-string groups into a single Unknown row
// and restores count-descending order.
func mergeUnknown(in []LabelCount) []LabelCount {
	out := make([]LabelCount, 0, len(in))
	unknownAt := -1
	for _, lc := range in {
		if lc.Label == UnknownLabel {
			if unknownAt >= 0 {
				out[unknownAt].Count += lc.Count
				continue
			}
			unknownAt = len(out)
		}
		out = append(out, lc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
