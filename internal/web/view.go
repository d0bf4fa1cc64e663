package web

import (
	"strings"

	"github.com/hyperifyio/jobdigest/internal/app"
	"github.com/hyperifyio/jobdigest/internal/posting"
	"github.com/hyperifyio/jobdigest/internal/report"
)

type pageView struct {
	Input   string
	Error   string
	MaxURLs int
	Items   []itemView
}

type fieldView struct {
	Name  string
	Value string
}

type itemView struct {
	Ordinal    int
	URL        string
	Title      string
	Fields     []fieldView
	Salary     string
	Summary    []string
	Highlights []string
	Failure    string
	Cause      string
}

func newItemView(r app.Result) itemView {
	v := itemView{Ordinal: r.Index + 1, URL: r.URL}
	if r.Err != nil || r.Posting == nil {
		v.Failure = report.FailureNotice(r.Index)
		if r.Err != nil {
			v.Cause = r.Err.Error()
		}
		return v
	}
	p := *r.Posting
	v.Title = p.Title
	for _, f := range posting.Fields {
		if val := p.Get(f); val != "" {
			v.Fields = append(v.Fields, fieldView{Name: posting.DisplayName(f), Value: val})
		}
	}
	v.Salary = report.SalaryRange(p)
	for _, line := range strings.Split(p.Summary, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			v.Summary = append(v.Summary, line)
		}
	}
	v.Highlights = p.Highlights
	return v
}

const pageTemplate = `<!doctype html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>ハローワーク求人スクレイパー</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; }
.error { color: #b00020; }
.item { border-top: 1px solid #ccc; margin-top: 1.5rem; }
th { text-align: left; white-space: nowrap; padding-right: 1rem; vertical-align: top; }
td { white-space: pre-wrap; }
</style>
</head>
<body>
<h1>ハローワーク求人スクレイパー</h1>
<p>ハローワークの求人詳細URLを1行に1件ずつ入力してください（最大{{.MaxURLs}}件）。</p>
<form method="post" action="/">
<textarea name="urls" rows="6" placeholder="https://www.hellowork.mhlw.go.jp/kensaku/...">{{.Input}}</textarea>
<p><button type="submit">取得する</button></p>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{range .Items}}
<section class="item">
{{if .Failure}}
<h2>{{.Ordinal}}. 取得失敗</h2>
<p class="error">{{.Failure}}{{if .Cause}}: {{.Cause}}{{end}}</p>
<p><a href="{{.URL}}">{{.URL}}</a></p>
{{else}}
<h2>{{.Ordinal}}. {{if .Title}}{{.Title}}{{else}}（職種名なし）{{end}}</h2>
<p><a href="{{.URL}}">{{.URL}}</a></p>
<h3>【抽出項目一覧】</h3>
<table>
{{range .Fields}}<tr><th>{{.Name}}</th><td>{{.Value}}</td></tr>
{{end}}{{if .Salary}}<tr><th>賃金（数値）</th><td>{{.Salary}}</td></tr>{{end}}
</table>
<h3>【おすすめポイント】</h3>
<ul>
{{range .Highlights}}<li>{{.}}</li>
{{end}}</ul>
<h3>【求人概要】</h3>
<p>{{range .Summary}}{{.}}<br>
{{end}}</p>
{{end}}
</section>
{{end}}
</body>
</html>
`
