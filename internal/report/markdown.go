package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/jobdigest/internal/posting"
)

// Item is one processed URL: either a posting or the error that stopped it.
type Item struct {
	Index   int
	URL     string
	Posting *posting.JobPosting
	Err     error
}

// Batch is the input to rendering.
type Batch struct {
	RunID       string
	GeneratedAt time.Time
	Items       []Item

	Model          string
	HTTPCacheUsed  bool
	LLMCacheUsed   bool
	RobotsEnforced bool
}

// NewRunID returns a random identifier recorded in the report footer.
func NewRunID() string {
	return uuid.NewString()
}

// FailureNotice is the per-item message shown for a URL that could not be
// processed. index is zero-based.
func FailureNotice(index int) string {
	return fmt.Sprintf("%d件目の求人の取得に失敗しました", index+1)
}

// SalaryRange formats extracted bounds, or "" when absent.
func SalaryRange(p posting.JobPosting) string {
	if p.SalaryMin == nil {
		return ""
	}
	lo := strconv.Itoa(*p.SalaryMin)
	if p.SalaryMax == nil || *p.SalaryMax == *p.SalaryMin {
		return lo
	}
	return lo + "〜" + strconv.Itoa(*p.SalaryMax)
}

// Markdown renders one section per item in input order followed by a run
// footer.
func Markdown(b Batch) string {
	var sb strings.Builder
	sb.WriteString("# 求人ダイジェスト\n\n")
	ok, failed := counts(b.Items)
	if !b.GeneratedAt.IsZero() {
		sb.WriteString("作成日時: ")
		sb.WriteString(b.GeneratedAt.Format("2006-01-02 15:04"))
		sb.WriteString("  \n")
	}
	fmt.Fprintf(&sb, "件数: %d（成功 %d / 失敗 %d）\n", len(b.Items), ok, failed)

	for _, it := range b.Items {
		sb.WriteString("\n")
		if it.Err != nil || it.Posting == nil {
			writeFailure(&sb, it)
			continue
		}
		writePosting(&sb, it.Index, *it.Posting)
	}
	return appendRunFooter(sb.String(), b)
}

func writeFailure(sb *strings.Builder, it Item) {
	fmt.Fprintf(sb, "## %d. 取得失敗\n\n", it.Index+1)
	if it.URL != "" {
		fmt.Fprintf(sb, "URL: <%s>\n\n", it.URL)
	}
	sb.WriteString("> ")
	sb.WriteString(FailureNotice(it.Index))
	if it.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(singleLine(it.Err.Error()))
	}
	sb.WriteString("\n")
}

func writePosting(sb *strings.Builder, index int, p posting.JobPosting) {
	title := p.Title
	if title == "" {
		title = "（職種名なし）"
	}
	fmt.Fprintf(sb, "## %d. %s\n\n", index+1, singleLine(title))
	if p.URL != "" {
		fmt.Fprintf(sb, "URL: [%s](%s)\n\n", p.URL, p.URL)
	}

	rows := 0
	for _, f := range posting.Fields {
		v := p.Get(f)
		if v == "" {
			continue
		}
		if rows == 0 {
			sb.WriteString("| 項目 | 内容 |\n|---|---|\n")
		}
		rows++
		fmt.Fprintf(sb, "| %s | %s |\n", posting.DisplayName(f), tableCell(v))
	}
	if r := SalaryRange(p); r != "" {
		if rows == 0 {
			sb.WriteString("| 項目 | 内容 |\n|---|---|\n")
		}
		fmt.Fprintf(sb, "| 賃金（数値） | %s |\n", r)
		rows++
	}
	if rows > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("### 要約\n\n")
	for _, line := range strings.Split(p.Summary, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sb.WriteString(line)
		sb.WriteString("  \n")
	}
	sb.WriteString("\n### おすすめポイント\n\n")
	for _, h := range p.Highlights {
		sb.WriteString("- ")
		sb.WriteString(h)
		sb.WriteString("\n")
	}
}

func counts(items []Item) (ok, failed int) {
	for _, it := range items {
		if it.Err != nil || it.Posting == nil {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "<br>")
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
