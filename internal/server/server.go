// Package server exposes supplier risk over HTTP: a JSON API, a small
// HTML dashboard for digests, and Prometheus metrics.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuin/goldmark"

	"github.com/riskwatch/riskwatch/internal/config"
	"github.com/riskwatch/riskwatch/internal/database"
	"github.com/riskwatch/riskwatch/internal/risk"
)

//go:embed templates/*.html
var templateFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for risk results and digests.
type Server struct {
	cfg   *config.Config
	db    *database.DB
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server. gatherer backs /metrics; pass nil to
// disable the endpoint.
func New(cfg *config.Config, db *database.DB, gatherer prometheus.Gatherer) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "digest.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{cfg: cfg, db: db, pages: pages, mux: http.NewServeMux()}
	s.routes(gatherer)
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/digest/", s.handleDigest)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/suppliers", s.handleSuppliers)
	s.mux.HandleFunc("/api/suppliers/", s.handleSupplierRisk)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/alerts", s.handleAlerts)

	if gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	suppliers, err := s.db.GetSuppliers()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	digests, _ := s.db.ListDigests(14)

	s.render(w, "index.html", map[string]any{
		"Suppliers": suppliers,
		"Digests":   digests,
	})
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimPrefix(r.URL.Path, "/digest/")
	if date == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	d, _ := s.db.GetDigest(date)

	s.render(w, "digest.html", map[string]any{
		"Digest": d,
		"Date":   date,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.db.CountSuppliers(); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := s.db.GetSuppliers()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type supplierJSON struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		City      *string `json:"city,omitempty"`
		Country   string  `json:"country"`
		Tier      int     `json:"tier"`
		RiskScore float64 `json:"risk_score"`
		RiskLevel string  `json:"risk_level"`
		Summary   *string `json:"event_summary,omitempty"`
	}
	out := make([]supplierJSON, 0, len(suppliers))
	for _, sup := range suppliers {
		out = append(out, supplierJSON{
			ID: sup.ID, Name: sup.Name, City: sup.City, Country: sup.Country,
			Tier: sup.Tier, RiskScore: sup.RiskScore, RiskLevel: sup.RiskLevel,
			Summary: sup.EventSummary,
		})
	}
	writeJSON(w, out)
}

// handleSupplierRisk recomputes a supplier's score on demand so the
// response reflects the current clock, not the last pipeline run.
func (s *Server) handleSupplierRisk(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/suppliers/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[1] != "risk" {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "invalid supplier id", http.StatusBadRequest)
		return
	}

	supplier, err := s.db.GetSupplier(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if supplier == nil {
		http.NotFound(w, r)
		return
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -s.cfg.Ingest.WindowDays).Format(time.RFC3339)
	events, err := s.db.GetEventsSince(cutoff)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	engine := risk.NewEngine(s.cfg.Scoring, s.cfg.Ingest.WindowDays)
	writeJSON(w, engine.ScoreSupplier(supplier, events, now))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.Ingest.WindowDays).Format(time.RFC3339)
	events, err := s.db.GetEventsSince(cutoff)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type eventJSON struct {
		ID          int64   `json:"id"`
		Title       string  `json:"title"`
		Source      string  `json:"source"`
		URL         *string `json:"url,omitempty"`
		PublishedAt string  `json:"published_at"`
		Country     *string `json:"country,omitempty"`
		EventType   string  `json:"event_type"`
		Signal      string  `json:"signal"`
	}
	out := make([]eventJSON, 0, len(events))
	for _, e := range events {
		out = append(out, eventJSON{
			ID: e.ID, Title: e.Title, Source: e.Source, URL: e.URL,
			PublishedAt: e.PublishedAt, Country: e.Country,
			EventType: e.EventType, Signal: e.Signal,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.db.GetRecentAlerts(50)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []database.Alert{}
	}
	writeJSON(w, alerts)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(cfg *config.Config, db *database.DB, gatherer prometheus.Gatherer, port int) error {
	srv, err := New(cfg, db, gatherer)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
