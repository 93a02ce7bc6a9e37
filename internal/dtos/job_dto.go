package dtos

import "fmt"

const (
	DefaultListLimit = 100
	MaxListLimit     = 10000
)

// JobCreateRequest is the POST /jobs body.
type JobCreateRequest struct {
	Title     string `json:"job_title" binding:"required,notblank,max=255"`
	Location  string `json:"location" binding:"required,notblank,max=255"`
	MinSalary *int   `json:"min_salary" binding:"omitempty,gte=0"`
	MaxSalary *int   `json:"max_salary" binding:"omitempty,gte=0"`

	// Optional Fields
	CompanyName       string   `json:"company_name" binding:"max=255"`
	WorkYear          *int     `json:"work_year" binding:"omitempty,gte=1900,lte=2100"`
	JobCategory       *string  `json:"job_category" binding:"omitempty,max=100"`
	SalaryCurrency    *string  `json:"salary_currency" binding:"omitempty,max=10"`
	Salary            *int     `json:"salary" binding:"omitempty,gte=0"`
	SalaryInUSD       *int     `json:"salary_in_usd" binding:"omitempty,gte=0"`
	EmployeeResidence *string  `json:"employee_residence" binding:"omitempty,max=255"`
	ExperienceLevel   *string  `json:"experience_level" binding:"omitempty,max=50"`
	EmploymentType    *string  `json:"employment_type" binding:"omitempty,max=50"`
	WorkSetting       *string  `json:"work_setting" binding:"omitempty,max=50"`
	CompanySize       *string  `json:"company_size" binding:"omitempty,max=10"`
	Skills            []string `json:"skills" binding:"dive,max=100"`
}

func (r *JobCreateRequest) Validate() error {
	return checkSalaryBounds(r.MinSalary, r.MaxSalary)
}

// JobUpdateRequest is the PUT /jobs/:id body. It has the same keys as
// JobCreateRequest; every field is optional and nil means "keep".
type JobUpdateRequest struct {
	Title     *string `json:"job_title" binding:"omitempty,notblank,max=255"`
	Location  *string `json:"location" binding:"omitempty,notblank,max=255"`
	MinSalary *int    `json:"min_salary" binding:"omitempty,gte=0"`
	MaxSalary *int    `json:"max_salary" binding:"omitempty,gte=0"`

	CompanyName       *string  `json:"company_name" binding:"omitempty,max=255"`
	WorkYear          *int     `json:"work_year" binding:"omitempty,gte=1900,lte=2100"`
	JobCategory       *string  `json:"job_category" binding:"omitempty,max=100"`
	SalaryCurrency    *string  `json:"salary_currency" binding:"omitempty,max=10"`
	Salary            *int     `json:"salary" binding:"omitempty,gte=0"`
	SalaryInUSD       *int     `json:"salary_in_usd" binding:"omitempty,gte=0"`
	EmployeeResidence *string  `json:"employee_residence" binding:"omitempty,max=255"`
	ExperienceLevel   *string  `json:"experience_level" binding:"omitempty,max=50"`
	EmploymentType    *string  `json:"employment_type" binding:"omitempty,max=50"`
	WorkSetting       *string  `json:"work_setting" binding:"omitempty,max=50"`
	CompanySize       *string  `json:"company_size" binding:"omitempty,max=10"`
	Skills            []string `json:"skills" binding:"omitempty,dive,max=100"`
}

// ListJobsQuery holds GET /jobs query parameters.
type ListJobsQuery struct {
	Search   string `form:"search"`
	Title    string `form:"title"`
	Location string `form:"location"`
	Skip     int    `form:"skip"`
	Limit    *int   `form:"limit"`
}

func (q *ListJobsQuery) Validate() error {
	if q.Skip < 0 {
		return fmt.Errorf("skip must be >= 0, got %d", q.Skip)
	}
	if q.Limit != nil && (*q.Limit < 1 || *q.Limit > MaxListLimit) {
		return fmt.Errorf("limit must be between 1 and %d, got %d", MaxListLimit, *q.Limit)
	}
	return nil
}

func (q *ListJobsQuery) EffectiveLimit() int {
	if q.Limit == nil {
		return DefaultListLimit
	}
	return *q.Limit
}

type JobExtractionRequest struct {
	RawText string `json:"raw_text" binding:"required,notblank"`
	URL     string `json:"url"`
}

func checkSalaryBounds(minSalary, maxSalary *int) error {
	if minSalary != nil && maxSalary != nil && *minSalary > *maxSalary {
		return fmt.Errorf("min_salary (%d) must not exceed max_salary (%d)", *minSalary, *maxSalary)
	}
	return nil
}
