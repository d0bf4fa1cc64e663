package report

import (
	"fmt"
	"strconv"
	"strings"
)

// appendRunFooter appends a footer recording the per-run ID, the item counts
// and the settings that affect the output.
func appendRunFooter(markdown string, b Batch) string {
	ok, failed := counts(b.Items)
	model := strings.TrimSpace(b.Model)
	if model == "" {
		model = "none"
	}
	var sb strings.Builder
	sb.WriteString(markdown)
	sb.WriteString("\n---\n")
	sb.WriteString("Run: id=")
	sb.WriteString(strings.TrimSpace(b.RunID))
	sb.WriteString("; postings=")
	sb.WriteString(strconv.Itoa(ok))
	sb.WriteString("; failed=")
	sb.WriteString(strconv.Itoa(failed))
	sb.WriteString("; model=")
	sb.WriteString(model)
	sb.WriteString("; http_cache=")
	sb.WriteString(fmt.Sprintf("%t", b.HTTPCacheUsed))
	sb.WriteString("; llm_cache=")
	sb.WriteString(fmt.Sprintf("%t", b.LLMCacheUsed))
	sb.WriteString("; robots=")
	sb.WriteString(fmt.Sprintf("%t", b.RobotsEnforced))
	sb.WriteString("\n")
	return sb.String()
}
