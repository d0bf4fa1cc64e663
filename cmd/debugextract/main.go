package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hyperifyio/jobdigest/internal/extract"
	"github.com/hyperifyio/jobdigest/internal/fetch"
	"github.com/hyperifyio/jobdigest/internal/salary"
)

// debugextract fetches one job page and prints the raw extracted fields as
// JSON, without summary or highlights. Useful when a label stops matching.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: debugextract <job-url>")
		os.Exit(2)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client := &fetch.Client{
		HTTPClient:        &http.Client{Timeout: 20 * time.Second},
		UserAgent:         fetch.DefaultUserAgent,
		MaxAttempts:       1,
		PerRequestTimeout: 20 * time.Second,
	}
	if err := dump(ctx, client, os.Args[1], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "err:", err)
		os.Exit(1)
	}
}

type pager interface {
	Page(ctx context.Context, url string) (string, error)
}

func dump(ctx context.Context, p pager, url string, w io.Writer) error {
	page, err := p.Page(ctx, url)
	if err != nil {
		return err
	}
	doc, err := extract.ParseString(page)
	if err != nil {
		return err
	}
	post := extract.Extractor{}.Extract(doc, url)
	post.SalaryMin, post.SalaryMax = salary.ParseBounds(post.SalaryText)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(post)
}
