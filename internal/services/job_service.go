package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-trends-api/internal/cache"
	"github.com/justsurfingit/job-trends-api/internal/config"
	"github.com/justsurfingit/job-trends-api/internal/dtos"
	apperrors "github.com/justsurfingit/job-trends-api/internal/errors"
	"github.com/justsurfingit/job-trends-api/internal/events"
	"github.com/justsurfingit/job-trends-api/internal/models"
	"github.com/justsurfingit/job-trends-api/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tracer = telemetry.GetTracer("job-trends-api/services")

type JobService struct {
	DB              *gorm.DB
	Events          events.Publisher
	Cache           cache.Cache
	Logger          *zap.Logger
	DefaultWorkYear int
}

func NewJobService(db *gorm.DB, publisher events.Publisher, c cache.Cache, logger *zap.Logger, cfg *config.Config) *JobService {
	return &JobService{
		DB:              db,
		Events:          publisher,
		Cache:           c,
		Logger:          logger,
		DefaultWorkYear: cfg.DefaultWorkYear,
	}
}

// withRelations preloads everything the projection needs, so nothing is
// fetched lazily after the request's session is done.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Company").Preload("Skills", func(db *gorm.DB) *gorm.DB {
		return db.Order("skills.id ASC")
	})
}

func (s *JobService) ListJobs(ctx context.Context, q dtos.ListJobsQuery) ([]models.Job, error) {
	ctx, span := tracer.Start(ctx, "JobService.ListJobs")
	defer span.End()

	if err := q.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	query := withRelations(s.DB.WithContext(ctx))
	if term := strings.TrimSpace(q.Search); term != "" {
		p := likePattern(term)
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\')`, p, p)
	}
	if title := strings.TrimSpace(q.Title); title != "" {
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, likePattern(title))
	}
	if location := strings.TrimSpace(q.Location); location != "" {
		query = query.Where(`LOWER(location) LIKE ? ESCAPE '\'`, likePattern(location))
	}

	jobs := []models.Job{}
	err := query.Order("jobs.id ASC").Offset(q.Skip).Limit(q.EffectiveLimit()).Find(&jobs).Error
	if err != nil {
		return nil, apperrors.FromStore("failed to list jobs", err)
	}
	return jobs, nil
}

func (s *JobService) CountJobs(ctx context.Context) (int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Job{}).Count(&total).Error; err != nil {
		return 0, apperrors.FromStore("failed to count jobs", err)
	}
	return total, nil
}

func (s *JobService) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := withRelations(s.DB.WithContext(ctx)).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound(fmt.Sprintf("Job %d not found", id), err)
	}
	if err != nil {
		return nil, apperrors.FromStore("failed to load job", err)
	}
	return &job, nil
}

func (s *JobService) CreateJob(ctx context.Context, req *dtos.JobCreateRequest) (*models.Job, error) {
	ctx, span := tracer.Start(ctx, "JobService.CreateJob")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	job := &models.Job{
		Title:             strings.TrimSpace(req.Title),
		Location:          strings.TrimSpace(req.Location),
		MinSalary:         req.MinSalary,
		MaxSalary:         req.MaxSalary,
		WorkYear:          req.WorkYear,
		JobCategory:       req.JobCategory,
		SalaryCurrency:    req.SalaryCurrency,
		Salary:            req.Salary,
		SalaryInUSD:       req.SalaryInUSD,
		EmployeeResidence: req.EmployeeResidence,
		ExperienceLevel:   req.ExperienceLevel,
		EmploymentType:    req.EmploymentType,
		WorkSetting:       req.WorkSetting,
		CompanySize:       req.CompanySize,
	}
	if job.WorkYear == nil {
		year := s.DefaultWorkYear
		job.WorkYear = &year
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if name := strings.TrimSpace(req.CompanyName); name != "" {
			company, err := findOrCreateCompany(tx, name)
			if err != nil {
				return err
			}
			job.CompanyID = &company.ID
		}

		if err := tx.Omit(clause.Associations).Create(job).Error; err != nil {
			return err
		}

		skills, err := findOrCreateSkills(tx, req.Skills)
		if err != nil {
			return err
		}
		return replaceSkills(tx, job.ID, skills)
	})
	if err != nil {
		return nil, apperrors.FromStore("failed to create job", err)
	}

	created, err := s.GetJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, events.SubjectJobCreated, created.ID, created.Title)
	return created, nil
}

// UpdateJob applies a partial update: nil fields keep their stored value.
// A non-nil Skills slice replaces the whole skill set (empty clears it), and
// a non-nil CompanyName re-links the company (empty detaches it).
func (s *JobService) UpdateJob(ctx context.Context, id uint, req *dtos.JobUpdateRequest) (*models.Job, error) {
	ctx, span := tracer.Start(ctx, "JobService.UpdateJob")
	defer span.End()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.First(&job, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(fmt.Sprintf("Job %d not found", id), err)
			}
			return err
		}

		applyUpdate(&job, req)
		if err := checkBounds(&job); err != nil {
			return err
		}

		if req.CompanyName != nil {
			job.CompanyID = nil
			if name := strings.TrimSpace(*req.CompanyName); name != "" {
				company, err := findOrCreateCompany(tx, name)
				if err != nil {
					return err
				}
				job.CompanyID = &company.ID
			}
		}

		if err := tx.Omit(clause.Associations).Save(&job).Error; err != nil {
			return err
		}

		if req.Skills == nil {
			return nil
		}
		skills, err := findOrCreateSkills(tx, req.Skills)
		if err != nil {
			return err
		}
		return replaceSkills(tx, job.ID, skills)
	})
	if err != nil {
		return nil, apperrors.FromStore("failed to update job", err)
	}

	updated, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, events.SubjectJobUpdated, updated.ID, updated.Title)
	return updated, nil
}

// DeleteJob removes the job and its job_skills rows in one transaction.
func (s *JobService) DeleteJob(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "JobService.DeleteJob")
	defer span.End()

	var title string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.First(&job, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(fmt.Sprintf("Job %d not found", id), err)
			}
			return err
		}
		title = job.Title

		if err := tx.Where("job_id = ?", job.ID).Delete(&models.JobSkill{}).Error; err != nil {
			return err
		}
		return tx.Delete(&job).Error
	})
	if err != nil {
		return apperrors.FromStore("failed to delete job", err)
	}

	s.afterWrite(ctx, events.SubjectJobDeleted, id, title)
	return nil
}

// afterWrite bumps the summary version, drops the cached summary and
// announces the change. None of these can fail the request: the write is
// already committed.
func (s *JobService) afterWrite(ctx context.Context, subject string, jobID uint, title string) {
	if err := s.Cache.Set(ctx, SummaryVersionKey, []byte(uuid.NewString()), versionTTL); err != nil {
		s.Logger.Warn("failed to bump analytics summary version", zap.Error(err))
	}
	if err := s.Cache.Delete(ctx, SummaryCacheKey); err != nil {
		s.Logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}

	event := events.JobEvent{
		Type:       subject,
		JobID:      jobID,
		Title:      title,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Events.PublishJobEvent(ctx, subject, event); err != nil {
		s.Logger.Warn("failed to publish job event",
			zap.String("subject", subject),
			zap.Uint("job_id", jobID),
			zap.Error(err))
	}
}

func findOrCreateCompany(tx *gorm.DB, name string) (*models.Company, error) {
	var company models.Company
	// it creates an entry if one doesn't already exist
	if err := tx.Where(models.Company{Name: name}).FirstOrCreate(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func findOrCreateSkills(tx *gorm.DB, names []string) ([]models.Skill, error) {
	names = normalizeNames(names)
	skills := make([]models.Skill, 0, len(names))
	for _, name := range names {
		var skill models.Skill
		if err := tx.Where(models.Skill{Name: name}).FirstOrCreate(&skill).Error; err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}
	return skills, nil
}

// replaceSkills makes skills the complete association set of jobID.
func replaceSkills(tx *gorm.DB, jobID uint, skills []models.Skill) error {
	if err := tx.Where("job_id = ?", jobID).Delete(&models.JobSkill{}).Error; err != nil {
		return err
	}
	if len(skills) == 0 {
		return nil
	}
	rows := make([]models.JobSkill, 0, len(skills))
	for _, skill := range skills {
		rows = append(rows, models.JobSkill{JobID: jobID, SkillID: skill.ID})
	}
	return tx.Create(&rows).Error
}

func applyUpdate(job *models.Job, req *dtos.JobUpdateRequest) {
	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.MinSalary != nil {
		job.MinSalary = req.MinSalary
	}
	if req.MaxSalary != nil {
		job.MaxSalary = req.MaxSalary
	}
	if req.WorkYear != nil {
		job.WorkYear = req.WorkYear
	}
	if req.JobCategory != nil {
		job.JobCategory = req.JobCategory
	}
	if req.SalaryCurrency != nil {
		job.SalaryCurrency = req.SalaryCurrency
	}
	if req.Salary != nil {
		job.Salary = req.Salary
	}
	if req.SalaryInUSD != nil {
		job.SalaryInUSD = req.SalaryInUSD
	}
	if req.EmployeeResidence != nil {
		job.EmployeeResidence = req.EmployeeResidence
	}
	if req.ExperienceLevel != nil {
		job.ExperienceLevel = req.ExperienceLevel
	}
	if req.EmploymentType != nil {
		job.EmploymentType = req.EmploymentType
	}
	if req.WorkSetting != nil {
		job.WorkSetting = req.WorkSetting
	}
	if req.CompanySize != nil {
		job.CompanySize = req.CompanySize
	}
}

// checkBounds re-validates salary bounds after merging, since a partial
// update may send only one side.
func checkBounds(job *models.Job) error {
	if job.MinSalary != nil && job.MaxSalary != nil && *job.MinSalary > *job.MaxSalary {
		msg := fmt.Sprintf("min_salary (%d) must not exceed max_salary (%d)", *job.MinSalary, *job.MaxSalary)
		return apperrors.Validation(msg, nil)
	}
	return nil
}

// normalizeNames trims, drops blanks and de-duplicates while keeping order.
func normalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func likePattern(term string) string {
	term = strings.ToLower(term)
	term = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + term + "%"
}
