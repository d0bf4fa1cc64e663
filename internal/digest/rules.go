package digest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/jobdigest/internal/extract"
	"github.com/hyperifyio/jobdigest/internal/posting"
)

// KeywordGroup emits Phrase when any keyword occurs in the concatenation of
// the listed fields.
type KeywordGroup struct {
	Keywords []string        `yaml:"keywords" json:"keywords"`
	Fields   []posting.Field `yaml:"fields" json:"fields"`
	Phrase   string          `yaml:"phrase" json:"phrase"`
}

func (g KeywordGroup) matches(p posting.JobPosting) bool {
	return containsAny(joinFields(p, g.Fields), g.Keywords)
}

// Rules is the complete heuristic table. Zero-valued sections fall back to
// DefaultRules when loaded from a file.
type Rules struct {
	Labels    extract.Labels    `yaml:"labels" json:"labels"`
	Selectors extract.Selectors `yaml:"selectors" json:"selectors"`

	// DescriptionLimit caps the work description bullet, counted in runes.
	DescriptionLimit int            `yaml:"descriptionLimit" json:"descriptionLimit"`
	Welfare          []KeywordGroup `yaml:"welfare" json:"welfare"`
	// AnnualHolidays must capture the day count in its first group. It is
	// matched against welfare and notes text with full-width forms folded.
	AnnualHolidays string `yaml:"annualHolidays" json:"annualHolidays"`
	Fallback       string `yaml:"fallback" json:"fallback"`

	HighSalaryThreshold int            `yaml:"highSalaryThreshold" json:"highSalaryThreshold"`
	HighSalaryTag       string         `yaml:"highSalaryTag" json:"highSalaryTag"`
	Highlights          []KeywordGroup `yaml:"highlights" json:"highlights"`
	Fillers             []string       `yaml:"fillers" json:"fillers"`
	MinHighlights       int            `yaml:"minHighlights" json:"minHighlights"`
}

var (
	welfareScope  = []posting.Field{posting.FieldWelfareText, posting.FieldNotes}
	commuteScope  = []posting.Field{posting.FieldWelfareText, posting.FieldNotes, posting.FieldLocation}
	workScope     = []posting.Field{posting.FieldWorkDescription, posting.FieldNotes}
	descScope     = []posting.Field{posting.FieldWorkDescription}
	defaultMinTag = 3
)

// DefaultRules returns the built-in Japanese rule table.
func DefaultRules() Rules {
	return Rules{
		Labels:           extract.DefaultLabels(),
		Selectors:        extract.DefaultSelectors(),
		DescriptionLimit: 40,
		Welfare: []KeywordGroup{
			{Keywords: []string{"社宅", "住宅手当", "退職金"}, Fields: welfareScope, Phrase: "福利厚生が充実"},
			{Keywords: []string{"資格取得支援", "研修", "キャリア"}, Fields: welfareScope, Phrase: "スキルアップ支援あり"},
			{Keywords: []string{"託児所", "扶養", "子育て"}, Fields: welfareScope, Phrase: "子育て支援あり"},
			{Keywords: []string{"マイカー通勤", "車通勤", "駐車場"}, Fields: commuteScope, Phrase: "マイカー通勤OK"},
			{Keywords: []string{"通勤手当", "資格手当", "役職手当", "処遇改善手当", "夜勤手当"}, Fields: welfareScope, Phrase: "各種手当あり"},
		},
		AnnualHolidays:      `年間休日[\s\x{3000}]*(\d{2,3})日`,
		Fallback:            "求人情報から要約を作成できませんでした。",
		HighSalaryThreshold: 250000,
		HighSalaryTag:       "高収入（月給25万円以上）",
		Highlights: []KeywordGroup{
			{Keywords: []string{"希少", "待望"}, Fields: descScope, Phrase: "希少求人"},
			{Keywords: []string{"社宅", "資格", "退職金", "扶養", "住宅"}, Fields: welfareScope, Phrase: "福利厚生が充実"},
			{Keywords: []string{"夜勤なし", "残業なし", "日勤のみ"}, Fields: workScope, Phrase: "働きやすい勤務条件"},
			{Keywords: []string{"駅近", "マイカー", "車通勤", "バス"}, Fields: commuteScope, Phrase: "アクセス良好"},
		},
		Fillers:       []string{"ブランクOK", "研修制度あり", "チームワーク重視", "地域密着", "シフト柔軟"},
		MinHighlights: defaultMinTag,
	}
}

// LoadRules reads a YAML or JSON rules file and fills unset sections from
// DefaultRules. Labels are merged per field.
func LoadRules(path string) (Rules, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, err
	}
	var r Rules
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(b, &r); err != nil {
			return Rules{}, fmt.Errorf("parse rules json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &r); err != nil {
			return Rules{}, fmt.Errorf("parse rules yaml: %w", err)
		}
	}
	r = r.withDefaults()
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

func (r Rules) withDefaults() Rules {
	def := DefaultRules()
	r.Labels = def.Labels.Merge(r.Labels)
	if r.Selectors.Header == "" {
		r.Selectors.Header = def.Selectors.Header
	}
	if r.Selectors.Value == "" {
		r.Selectors.Value = def.Selectors.Value
	}
	if r.Selectors.Title == "" {
		r.Selectors.Title = def.Selectors.Title
	}
	if r.DescriptionLimit <= 0 {
		r.DescriptionLimit = def.DescriptionLimit
	}
	if r.Welfare == nil {
		r.Welfare = def.Welfare
	}
	if strings.TrimSpace(r.AnnualHolidays) == "" {
		r.AnnualHolidays = def.AnnualHolidays
	}
	if strings.TrimSpace(r.Fallback) == "" {
		r.Fallback = def.Fallback
	}
	if r.HighSalaryThreshold <= 0 {
		r.HighSalaryThreshold = def.HighSalaryThreshold
	}
	if r.HighSalaryTag == "" {
		r.HighSalaryTag = def.HighSalaryTag
	}
	if r.Highlights == nil {
		r.Highlights = def.Highlights
	}
	if len(r.Fillers) == 0 {
		r.Fillers = def.Fillers
	}
	if r.MinHighlights <= 0 {
		r.MinHighlights = def.MinHighlights
	}
	return r
}

// Validate checks that the holiday pattern compiles with a capture group and
// that the filler pool can always satisfy MinHighlights.
func (r Rules) Validate() error {
	re, err := regexp.Compile(r.AnnualHolidays)
	if err != nil {
		return fmt.Errorf("rules: annualHolidays: %w", err)
	}
	if re.NumSubexp() < 1 {
		return fmt.Errorf("rules: annualHolidays needs a capture group")
	}
	if n := len(dedupe(r.Fillers)); n < r.MinHighlights {
		return fmt.Errorf("rules: %d distinct fillers cannot satisfy minHighlights=%d", n, r.MinHighlights)
	}
	for i, g := range r.Welfare {
		if g.Phrase == "" || len(g.Keywords) == 0 || len(g.Fields) == 0 {
			return fmt.Errorf("rules: welfare group %d needs keywords, fields and phrase", i)
		}
	}
	for i, g := range r.Highlights {
		if g.Phrase == "" || len(g.Keywords) == 0 || len(g.Fields) == 0 {
			return fmt.Errorf("rules: highlight %d needs keywords, fields and phrase", i)
		}
	}
	return nil
}

func joinFields(p posting.JobPosting, fields []posting.Field) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(p.Get(f))
	}
	return b.String()
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
