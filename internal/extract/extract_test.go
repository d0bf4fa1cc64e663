package extract

import (
	"testing"

	"github.com/hyperifyio/jobdigest/internal/posting"
)

const detailPage = `<!doctype html>
<html>
  <head><title>求人情報</title></head>
  <body>
    <h1>  介護職員（日勤）  </h1>
    <h1>second heading</h1>
    <table>
      <tr><th>事業所名</th><td>　社会福祉法人さくら会　</td></tr>
      <tr><th>　仕事内容　</th><td>
        利用者様の生活支援をお願いします。
      </td></tr>
      <tr><th>就業場所</th><td>東京都八王子市</td></tr>
      <tr><th>仕事内容（補足）</th><td>should not match</td></tr>
      <tr><th>基本給（ａ）</th><td>月給180,000円〜220,000円</td></tr>
      <tr><th>福利厚生</th><td>退職金制度あり</td></tr>
    </table>
  </body>
</html>`

func TestField_ExactLabelReturnsTrimmedValue(t *testing.T) {
	doc, err := ParseString(detailPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Field("事業所名"); got != "社会福祉法人さくら会" {
		t.Fatalf("unexpected company %q", got)
	}
	if got := doc.Field("仕事内容"); got != "利用者様の生活支援をお願いします。" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestField_NoPartialMatch(t *testing.T) {
	doc, err := ParseString(detailPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, label := range []string{"事業所", "仕事", "福利", "求人に関する特記事項", ""} {
		if got := doc.Field(label); got != "" {
			t.Fatalf("label %q: expected empty, got %q", label, got)
		}
	}
}

func TestField_ValueInNextRowInDocumentOrder(t *testing.T) {
	doc, err := ParseString(`<table>
	<tr><th>休日等</th></tr>
	<tr><th>ignored header</th><td>土日祝</td></tr>
	</table>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Field("休日等"); got != "土日祝" {
		t.Fatalf("expected next data cell, got %q", got)
	}
}

func TestField_LabelWithoutFollowingValue(t *testing.T) {
	doc, err := ParseString(`<table><tr><td>before</td><th>就業時間</th></tr></table>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Field("就業時間"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestTitle_FirstHeadingOrEmpty(t *testing.T) {
	doc, err := ParseString(detailPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Title(); got != "介護職員（日勤）" {
		t.Fatalf("unexpected title %q", got)
	}
	empty, err := ParseString(`<p>no heading</p>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := empty.Title(); got != "" {
		t.Fatalf("expected empty title, got %q", got)
	}
}

func TestUse_ClassBasedLabelPairs(t *testing.T) {
	doc, err := ParseString(`<div>
	<span class="kyujin_detail_label">就業時間</span><span class="kyujin_detail_value">8:30〜17:30</span>
	<span class="kyujin_detail_label">休日等</span><span class="kyujin_detail_value">日曜日</span>
	</div>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	view := doc.Use(Selectors{Header: ".kyujin_detail_label", Value: ".kyujin_detail_value"})
	if got := view.Field("休日等"); got != "日曜日" {
		t.Fatalf("unexpected value %q", got)
	}
	if got := doc.Field("休日等"); got != "" {
		t.Fatalf("default selectors should not see span pairs, got %q", got)
	}
}

func TestExtractor_FillsPostingAndDefaultsMissingToEmpty(t *testing.T) {
	doc, err := ParseString(detailPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := Extractor{}.Extract(doc, "https://example.test/job/1")
	if p.URL != "https://example.test/job/1" {
		t.Fatalf("url not carried: %q", p.URL)
	}
	if p.Title != "介護職員（日勤）" {
		t.Fatalf("unexpected title %q", p.Title)
	}
	if p.Location != "東京都八王子市" || p.SalaryText != "月給180,000円〜220,000円" || p.WelfareText != "退職金制度あり" {
		t.Fatalf("fields not extracted: %+v", p)
	}
	if p.Notes != "" || p.WorkTime != "" || p.Qualification != "" {
		t.Fatalf("missing labels should be empty: %+v", p)
	}
}

func TestExtractor_EmptyDocument(t *testing.T) {
	doc, err := ParseString("")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := Extractor{}.Extract(doc, "u")
	for _, f := range posting.Fields {
		if v := p.Get(f); v != "" {
			t.Fatalf("field %s: expected empty, got %q", f, v)
		}
	}
	if p.Title != "" {
		t.Fatalf("expected empty title")
	}
}

func TestLabels_MergeOverridesNonEmpty(t *testing.T) {
	merged := DefaultLabels().Merge(Labels{posting.FieldNotes: "特記事項", posting.FieldCompany: ""})
	if merged[posting.FieldNotes] != "特記事項" {
		t.Fatalf("override not applied")
	}
	if merged[posting.FieldCompany] != "事業所名" {
		t.Fatalf("empty override should keep default")
	}
}
