package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/jobdigest/internal/app"
	"github.com/hyperifyio/jobdigest/internal/posting"
)

// DefaultMaxURLs bounds one form or API submission.
const DefaultMaxURLs = 20

// Processor runs the batch pipeline. *app.App implements it.
type Processor interface {
	Process(ctx context.Context, urls []string) []app.Result
}

// Server is the form UI and JSON API.
type Server struct {
	proc    Processor
	maxURLs int
	engine  *gin.Engine
}

// New builds the router. maxURLs <= 0 means DefaultMaxURLs.
func New(proc Processor, maxURLs int) *Server {
	if maxURLs <= 0 {
		maxURLs = DefaultMaxURLs
	}
	s := &Server{proc: proc, maxURLs: maxURLs}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.SetHTMLTemplate(template.Must(template.New("page").Parse(pageTemplate)))

	r.GET("/", s.form)
	r.POST("/", s.submit)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/api/digest", s.apiDigest)
	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("web server listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) form(c *gin.Context) {
	c.HTML(http.StatusOK, "page", pageView{MaxURLs: s.maxURLs})
}

func (s *Server) submit(c *gin.Context) {
	input := c.PostForm("urls")
	view := pageView{Input: input, MaxURLs: s.maxURLs}
	urls := app.ParseURLList(input)
	if msg := s.checkCount(len(urls)); msg != "" {
		view.Error = msg
		c.HTML(http.StatusBadRequest, "page", view)
		return
	}
	results := s.proc.Process(c.Request.Context(), urls)
	view.Items = make([]itemView, 0, len(results))
	for _, r := range results {
		view.Items = append(view.Items, newItemView(r))
	}
	c.HTML(http.StatusOK, "page", view)
}

type digestRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

type digestItem struct {
	Index   int                 `json:"index"`
	URL     string              `json:"url"`
	Posting *posting.JobPosting `json:"posting,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func (s *Server) apiDigest(c *gin.Context) {
	var req digestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	urls := app.ParseURLList(strings.Join(req.URLs, "\n"))
	if msg := s.checkCount(len(urls)); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	results := s.proc.Process(c.Request.Context(), urls)
	out := make([]digestItem, 0, len(results))
	for _, r := range results {
		item := digestItem{Index: r.Index, URL: r.URL, Posting: r.Posting}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (s *Server) checkCount(n int) string {
	switch {
	case n == 0:
		return "求人ページのURLを1件以上入力してください。"
	case n > s.maxURLs:
		return fmt.Sprintf("一度に処理できるURLは%d件までです（%d件入力されました）。", s.maxURLs, n)
	}
	return ""
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
