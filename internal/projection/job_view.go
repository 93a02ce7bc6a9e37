// Package projection turns stored jobs into the response shape consumed by
// the dashboard clients.
//
// Several generations of front-end code read the same values under different
// keys, so every JobView carries the canonical snake_case keys plus a fixed
// set of aliases:
//
//	canonical           aliases
//	job_id              id, Job_ID, jobId
//	job_title           title, Job_Title, jobTitle
//	location            Location, job_location, company_location
//	min_salary          salary_min, minSalary, Min_Salary
//	max_salary          salary_max, maxSalary, Max_Salary
//	salary              Salary
//	salary_in_usd       salary_usd
//	work_year           year, Work_Year
//	job_category        Job_Category, industry
//	experience_level    Experience_Level, experienceLevel
//	employment_type     Employment_Type, employmentType, job_type
//	work_setting        Work_Setting, workSetting, remote_type
//	company_size        Company_Size, companySize
//	company_name        companyName, Company
//	skills              skill_names (names only)
//
// Aliases live only here. Storage and query code use the canonical names.
package projection

import "github.com/justsurfingit/job-trends-api/internal/models"

type CompanyView struct {
	ID   uint   `json:"company_id"`
	Name string `json:"company_name"`
}

type SkillView struct {
	ID   uint   `json:"skill_id"`
	Name string `json:"skill_name"`
}

type JobView struct {
	JobID             uint         `json:"job_id"`
	JobTitle          string       `json:"job_title"`
	Location          string       `json:"location"`
	MinSalary         *int         `json:"min_salary"`
	MaxSalary         *int         `json:"max_salary"`
	WorkYear          *int         `json:"work_year"`
	JobCategory       *string      `json:"job_category"`
	SalaryCurrency    *string      `json:"salary_currency"`
	Salary            *int         `json:"salary"`
	SalaryInUSD       *int         `json:"salary_in_usd"`
	EmployeeResidence *string      `json:"employee_residence"`
	ExperienceLevel   *string      `json:"experience_level"`
	EmploymentType    *string      `json:"employment_type"`
	WorkSetting       *string      `json:"work_setting"`
	CompanySize       *string      `json:"company_size"`
	CompanyName       *string      `json:"company_name"`
	Company           *CompanyView `json:"company"`
	Skills            []SkillView  `json:"skills"`

	ID         uint   `json:"id"`
	JobIDUpper uint   `json:"Job_ID"`
	JobIDCamel uint   `json:"jobId"`
	Title      string `json:"title"`
	TitleUpper string `json:"Job_Title"`
	TitleCamel string `json:"jobTitle"`

	LocationUpper   string `json:"Location"`
	JobLocation     string `json:"job_location"`
	CompanyLocation string `json:"company_location"`

	SalaryMin      *int `json:"salary_min"`
	MinSalaryCamel *int `json:"minSalary"`
	MinSalaryUpper *int `json:"Min_Salary"`
	SalaryMax      *int `json:"salary_max"`
	MaxSalaryCamel *int `json:"maxSalary"`
	MaxSalaryUpper *int `json:"Max_Salary"`
	SalaryUpper    *int `json:"Salary"`
	SalaryUSD      *int `json:"salary_usd"`

	Year          *int    `json:"year"`
	WorkYearUpper *int    `json:"Work_Year"`
	CategoryUpper *string `json:"Job_Category"`
	Industry      *string `json:"industry"`

	ExperienceLevelUpper *string `json:"Experience_Level"`
	ExperienceLevelCamel *string `json:"experienceLevel"`
	EmploymentTypeUpper  *string `json:"Employment_Type"`
	EmploymentTypeCamel  *string `json:"employmentType"`
	JobType              *string `json:"job_type"`
	WorkSettingUpper     *string `json:"Work_Setting"`
	WorkSettingCamel     *string `json:"workSetting"`
	RemoteType           *string `json:"remote_type"`
	CompanySizeUpper     *string `json:"Company_Size"`
	CompanySizeCamel     *string `json:"companySize"`
	CompanyNameCamel     *string `json:"companyName"`
	CompanyUpper         *string `json:"Company"`

	SkillNames []string `json:"skill_names"`
}

// Project builds the response view for job. Company and Skills must already
// be loaded; Project never touches the database.
func Project(job *models.Job) JobView {
	v := JobView{
		JobID:             job.ID,
		JobTitle:          job.Title,
		Location:          job.Location,
		MinSalary:         job.MinSalary,
		MaxSalary:         job.MaxSalary,
		WorkYear:          job.WorkYear,
		JobCategory:       job.JobCategory,
		SalaryCurrency:    job.SalaryCurrency,
		Salary:            job.Salary,
		SalaryInUSD:       job.SalaryInUSD,
		EmployeeResidence: job.EmployeeResidence,
		ExperienceLevel:   job.ExperienceLevel,
		EmploymentType:    job.EmploymentType,
		WorkSetting:       job.WorkSetting,
		CompanySize:       job.CompanySize,
		Skills:            make([]SkillView, 0, len(job.Skills)),
		SkillNames:        make([]string, 0, len(job.Skills)),
	}

	if job.Company != nil {
		name := job.Company.Name
		v.Company = &CompanyView{ID: job.Company.ID, Name: name}
		v.CompanyName = &name
	}
	for _, s := range job.Skills {
		v.Skills = append(v.Skills, SkillView{ID: s.ID, Name: s.Name})
		v.SkillNames = append(v.SkillNames, s.Name)
	}

	v.ID, v.JobIDUpper, v.JobIDCamel = v.JobID, v.JobID, v.JobID
	v.Title, v.TitleUpper, v.TitleCamel = v.JobTitle, v.JobTitle, v.JobTitle
	v.LocationUpper, v.JobLocation, v.CompanyLocation = v.Location, v.Location, v.Location
	v.SalaryMin, v.MinSalaryCamel, v.MinSalaryUpper = v.MinSalary, v.MinSalary, v.MinSalary
	v.SalaryMax, v.MaxSalaryCamel, v.MaxSalaryUpper = v.MaxSalary, v.MaxSalary, v.MaxSalary
	v.SalaryUpper = v.Salary
	v.SalaryUSD = v.SalaryInUSD
	v.Year, v.WorkYearUpper = v.WorkYear, v.WorkYear
	v.CategoryUpper, v.Industry = v.JobCategory, v.JobCategory
	v.ExperienceLevelUpper, v.ExperienceLevelCamel = v.ExperienceLevel, v.ExperienceLevel
	v.EmploymentTypeUpper, v.EmploymentTypeCamel, v.JobType = v.EmploymentType, v.EmploymentType, v.EmploymentType
	v.WorkSettingUpper, v.WorkSettingCamel, v.RemoteType = v.WorkSetting, v.WorkSetting, v.WorkSetting
	v.CompanySizeUpper, v.CompanySizeCamel = v.CompanySize, v.CompanySize
	v.CompanyNameCamel, v.CompanyUpper = v.CompanyName, v.CompanyName

	return v
}

func ProjectAll(jobs []models.Job) []JobView {
	out := make([]JobView, 0, len(jobs))
	for i := range jobs {
		out = append(out, Project(&jobs[i]))
	}
	return out
}
