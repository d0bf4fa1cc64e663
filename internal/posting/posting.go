package posting

// Field names a labeled value on a job detail page. The string form is the
// key used in rules files.
type Field string

const (
	FieldCompany               Field = "company"
	FieldWorkDescription       Field = "workDescription"
	FieldLocation              Field = "location"
	FieldEmploymentType        Field = "employmentType"
	FieldSalaryText            Field = "salaryText"
	FieldSalaryTypeText        Field = "salaryTypeText"
	FieldWorkTime              Field = "workTime"
	FieldHolidaySchedule       Field = "holidaySchedule"
	FieldQualification         Field = "qualification"
	FieldExperienceRequirement Field = "experienceRequirement"
	FieldWelfareText           Field = "welfareText"
	FieldNotes                 Field = "notes"
)

// Fields lists every labeled field in display order.
var Fields = []Field{
	FieldCompany,
	FieldWorkDescription,
	FieldLocation,
	FieldEmploymentType,
	FieldSalaryText,
	FieldSalaryTypeText,
	FieldWorkTime,
	FieldHolidaySchedule,
	FieldQualification,
	FieldExperienceRequirement,
	FieldWelfareText,
	FieldNotes,
}

// JobPosting is one extracted job page. Text fields are empty when the page
// has no matching label; salary bounds are nil when no amount was found.
type JobPosting struct {
	URL   string `json:"url"`
	Title string `json:"title"`

	Company               string `json:"company"`
	WorkDescription       string `json:"workDescription"`
	Location              string `json:"location"`
	EmploymentType        string `json:"employmentType"`
	SalaryText            string `json:"salaryText"`
	SalaryTypeText        string `json:"salaryTypeText"`
	WorkTime              string `json:"workTime"`
	HolidaySchedule       string `json:"holidaySchedule"`
	Qualification         string `json:"qualification"`
	ExperienceRequirement string `json:"experienceRequirement"`
	WelfareText           string `json:"welfareText"`
	Notes                 string `json:"notes"`

	SalaryMin *int `json:"salaryMin,omitempty"`
	SalaryMax *int `json:"salaryMax,omitempty"`

	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

// Get returns the text of a labeled field, or "" for an unknown field.
func (p *JobPosting) Get(f Field) string {
	if ptr := p.slot(f); ptr != nil {
		return *ptr
	}
	return ""
}

// Set assigns the text of a labeled field. Unknown fields are ignored.
func (p *JobPosting) Set(f Field, v string) {
	if ptr := p.slot(f); ptr != nil {
		*ptr = v
	}
}

func (p *JobPosting) slot(f Field) *string {
	switch f {
	case FieldCompany:
		return &p.Company
	case FieldWorkDescription:
		return &p.WorkDescription
	case FieldLocation:
		return &p.Location
	case FieldEmploymentType:
		return &p.EmploymentType
	case FieldSalaryText:
		return &p.SalaryText
	case FieldSalaryTypeText:
		return &p.SalaryTypeText
	case FieldWorkTime:
		return &p.WorkTime
	case FieldHolidaySchedule:
		return &p.HolidaySchedule
	case FieldQualification:
		return &p.Qualification
	case FieldExperienceRequirement:
		return &p.ExperienceRequirement
	case FieldWelfareText:
		return &p.WelfareText
	case FieldNotes:
		return &p.Notes
	}
	return nil
}

// DisplayName is the Japanese heading used when rendering a field.
func DisplayName(f Field) string {
	switch f {
	case FieldCompany:
		return "事業所名"
	case FieldWorkDescription:
		return "仕事内容"
	case FieldLocation:
		return "就業場所"
	case FieldEmploymentType:
		return "雇用形態"
	case FieldSalaryText:
		return "賃金"
	case FieldSalaryTypeText:
		return "賃金形態"
	case FieldWorkTime:
		return "就業時間"
	case FieldHolidaySchedule:
		return "休日"
	case FieldQualification:
		return "必要な資格"
	case FieldExperienceRequirement:
		return "必要な経験"
	case FieldWelfareText:
		return "福利厚生"
	case FieldNotes:
		return "特記事項"
	}
	return string(f)
}
