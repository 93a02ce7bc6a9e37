package models

import (
	"time"
)

type Company struct {
	ID   uint   `gorm:"primaryKey" json:"company_id"`
	Name string `gorm:"size:255;uniqueIndex;not null" json:"company_name"`

	// 'omitempty' prevents infinite loops when fetching a Job -> Company -> Jobs -> ...
	Jobs []Job `json:"jobs,omitempty"`
}

type Skill struct {
	ID   uint   `gorm:"primaryKey" json:"skill_id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"skill_name"`
}

type Job struct {
	ID        uint      `gorm:"primaryKey" json:"job_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Foreign Key. Nullable: a job may be posted without a company.
	CompanyID *uint `gorm:"index" json:"company_id"`
	// Association: GORM needs Preload() to fill this
	Company *Company `json:"company"`

	// Core fields
	Title     string `gorm:"size:255;not null" json:"job_title"`
	Location  string `gorm:"size:255" json:"location"`
	MinSalary *int   `json:"min_salary"`
	MaxSalary *int   `json:"max_salary"`

	// Analytics fields
	WorkYear          *int    `gorm:"index" json:"work_year"`
	JobCategory       *string `gorm:"size:100" json:"job_category"`
	SalaryCurrency    *string `gorm:"size:10" json:"salary_currency"`
	Salary            *int    `json:"salary"`
	SalaryInUSD       *int    `gorm:"column:salary_in_usd" json:"salary_in_usd"`
	EmployeeResidence *string `gorm:"size:255" json:"employee_residence"`
	ExperienceLevel   *string `gorm:"size:50" json:"experience_level"`
	EmploymentType    *string `gorm:"size:50" json:"employment_type"`
	WorkSetting       *string `gorm:"size:50" json:"work_setting"`
	CompanySize       *string `gorm:"size:10" json:"company_size"`

	Skills []Skill `gorm:"many2many:job_skills" json:"skills"`
}

// JobSkill is the job_skills join table. The composite primary key keeps
// each (job, skill) pair unique.
type JobSkill struct {
	JobID   uint `gorm:"primaryKey"`
	SkillID uint `gorm:"primaryKey;index"`
}

// All lists the models managed by AutoMigrate, parents first.
func All() []any {
	return []any{&Company{}, &Skill{}, &Job{}, &JobSkill{}}
}
