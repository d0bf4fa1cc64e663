package digest

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/width"

	"github.com/hyperifyio/jobdigest/internal/posting"
)

const (
	bullet    = "・"
	ellipsis  = "…"
	separator = "、"
)

// Generator derives the summary and highlight tags of a posting. It is safe
// for concurrent use; the random source is guarded.
type Generator struct {
	rules     Rules
	holidayRe *regexp.Regexp

	mu  sync.Mutex
	rnd *rand.Rand
}

// New validates rules and returns a Generator drawing fillers from rnd. A nil
// rnd is seeded from the clock.
func New(rules Rules, rnd *rand.Rand) (*Generator, error) {
	rules = rules.withDefaults()
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		rules:     rules,
		holidayRe: regexp.MustCompile(rules.AnnualHolidays),
		rnd:       rnd,
	}, nil
}

// Rules returns the effective rule table.
func (g *Generator) Rules() Rules { return g.rules }

// Apply sets Summary and Highlights on p.
func (g *Generator) Apply(p *posting.JobPosting) {
	p.Summary = g.Summarize(*p)
	p.Highlights = g.Highlight(*p)
}

// Summarize renders one bullet per available fact: title, truncated work
// description, holidays, and a welfare line built from keyword groups plus
// the annual holiday count. With nothing to say it returns the fallback
// notice.
func (g *Generator) Summarize(p posting.JobPosting) string {
	var lines []string
	if p.Title != "" {
		lines = append(lines, bullet+"職種："+p.Title)
	}
	if p.WorkDescription != "" {
		lines = append(lines, bullet+"仕事内容："+truncateRunes(p.WorkDescription, g.rules.DescriptionLimit))
	}
	if p.HolidaySchedule != "" {
		lines = append(lines, bullet+"休日："+p.HolidaySchedule)
	}
	if welfare := g.welfarePhrases(p); len(welfare) > 0 {
		lines = append(lines, bullet+"福利厚生："+strings.Join(welfare, separator))
	}
	if len(lines) == 0 {
		return g.rules.Fallback
	}
	return strings.Join(lines, "\n")
}

func (g *Generator) welfarePhrases(p posting.JobPosting) []string {
	var out []string
	for _, grp := range g.rules.Welfare {
		if grp.matches(p) {
			out = append(out, grp.Phrase)
		}
	}
	if m := g.holidayRe.FindStringSubmatch(width.Fold.String(p.WelfareText + p.Notes)); len(m) > 1 {
		out = append(out, fmt.Sprintf("年間休日%s日", m[1]))
	}
	return dedupe(out)
}

// Highlight evaluates the tag rules in order and tops the list up with
// random fillers until it holds MinHighlights distinct tags.
func (g *Generator) Highlight(p posting.JobPosting) []string {
	var tags []string
	if p.SalaryMin != nil && *p.SalaryMin >= g.rules.HighSalaryThreshold {
		tags = append(tags, g.rules.HighSalaryTag)
	}
	for _, grp := range g.rules.Highlights {
		if grp.matches(p) {
			tags = append(tags, grp.Phrase)
		}
	}
	tags = dedupe(tags)
	if len(tags) >= g.rules.MinHighlights {
		return tags
	}

	present := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		present[t] = struct{}{}
	}
	pool := make([]string, 0, len(g.rules.Fillers))
	for _, f := range dedupe(g.rules.Fillers) {
		if _, ok := present[f]; !ok {
			pool = append(pool, f)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for len(tags) < g.rules.MinHighlights && len(pool) > 0 {
		i := g.rnd.Intn(len(pool))
		tags = append(tags, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return tags
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit]) + ellipsis
}
