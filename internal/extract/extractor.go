package extract

import (
	"github.com/hyperifyio/jobdigest/internal/posting"
)

// Labels maps each field to the exact header text that introduces it.
type Labels map[posting.Field]string

// DefaultLabels are the headers used on Hello Work job detail pages.
func DefaultLabels() Labels {
	return Labels{
		posting.FieldCompany:               "事業所名",
		posting.FieldWorkDescription:       "仕事内容",
		posting.FieldLocation:              "就業場所",
		posting.FieldEmploymentType:        "雇用形態",
		posting.FieldSalaryText:            "基本給（ａ）",
		posting.FieldSalaryTypeText:        "賃金形態等",
		posting.FieldWorkTime:              "就業時間",
		posting.FieldHolidaySchedule:       "休日等",
		posting.FieldQualification:         "必要な免許・資格",
		posting.FieldExperienceRequirement: "必要な経験等",
		posting.FieldWelfareText:           "福利厚生",
		posting.FieldNotes:                 "求人に関する特記事項",
	}
}

// Merge returns a copy of l with every non-empty label in override applied.
func (l Labels) Merge(override Labels) Labels {
	out := make(Labels, len(l)+len(override))
	for k, v := range l {
		out[k] = v
	}
	for k, v := range override {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Extractor fills a JobPosting from a parsed document.
type Extractor struct {
	Labels    Labels
	Selectors Selectors
}

// Extract populates the title and every labeled field. Fields without a
// label, or whose label is absent from the page, stay empty.
func (e Extractor) Extract(doc *Document, url string) posting.JobPosting {
	labels := e.Labels
	if labels == nil {
		labels = DefaultLabels()
	}
	view := doc.Use(e.Selectors)
	p := posting.JobPosting{URL: url, Title: view.Title()}
	for _, f := range posting.Fields {
		if label, ok := labels[f]; ok {
			p.Set(f, view.Field(label))
		}
	}
	return p
}
