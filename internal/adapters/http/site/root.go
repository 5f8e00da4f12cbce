// Package site serves the HTML landing page at the root path.
package site

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/okian/reciperank/internal/domain/types"
)

// Endpoint is one API route listed on the landing page.
type Endpoint struct {
	Method  string
	Path    string
	Summary string
}

// Endpoints lists the routes the service exposes.
var Endpoints = []Endpoint{
	{"POST", "/rank", "Rank candidates"},
	{"POST", "/rank/merge", "Merge weighted result sets and rank the union"},
	{"POST", "/rank/hits", "Hydrate search hits from the recipe store and rank them"},
	{"POST", "/trending", "Order candidates by recent activity"},
	{"POST", "/explain", "Explain how one candidate was scored"},
	{"GET", "/modes", "Ranking modes and their weights"},
	{"GET", "/stats", "Service statistics"},
	{"GET", "/healthz", "Health check"},
	{"GET", "/metrics", "Prometheus metrics"},
	{"GET", "/api-docs", "API reference"},
}

var page = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>Recipe Ranking</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 52rem; }
    table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
    td, th { text-align: left; padding: .3rem .6rem; border-bottom: 1px solid #ddd; }
    code { font-size: .95em; }
  </style>
</head>
<body>
  <h1>Recipe Ranking</h1>
  <h2>Endpoints</h2>
  <table>
    <tr><th>Method</th><th>Path</th><th></th></tr>
    {{range .Endpoints}}<tr><td>{{.Method}}</td><td><code>{{.Path}}</code></td><td>{{.Summary}}</td></tr>
    {{end}}
  </table>
  <h2>Modes</h2>
  <table>
    <tr><th>Mode</th><th>Similarity</th><th>Quality</th><th>Engagement</th><th>Recency</th></tr>
    {{range .Modes}}<tr><td>{{.Name}}</td><td>{{printf "%.2f" .Weights.Similarity}}</td><td>{{printf "%.2f" .Weights.Quality}}</td><td>{{printf "%.2f" .Weights.Engagement}}</td><td>{{printf "%.2f" .Weights.Recency}}</td></tr>
    {{end}}
  </table>
</body>
</html>
`))

// Register attaches the landing page to mux. Only the exact root path is
// served; every other unmatched path is a 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler())
}

// RootHandler renders the landing page.
type RootHandler struct {
	body []byte
}

// NewRootHandler renders the page once.
func NewRootHandler() *RootHandler {
	var buf bytes.Buffer
	data := struct {
		Endpoints []Endpoint
		Modes     []types.ModeInfo
	}{Endpoints, types.Modes()}
	if err := page.Execute(&buf, data); err != nil {
		panic(err)
	}
	return &RootHandler{body: buf.Bytes()}
}

// ServeHTTP implements http.Handler.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.body)
}
