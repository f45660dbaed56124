package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/headslug/internal/config"
	"github.com/dgallion1/headslug/internal/metrics"
	"github.com/dgallion1/headslug/internal/pipeline"
)

type upload struct {
	field    string
	filename string
	body     string
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, f.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	cfg := config.Config{
		Port:           "8090",
		WorkerCount:    1,
		MaxQueueSize:   10,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		StatsWindow:    time.Hour,
		LogLevel:       "info",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prom.NewRegistry()
	orch := pipeline.NewOrchestrator(cfg, log, metrics.NewPrometheusRecorder(reg))
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, metrics.HTTPHandler(reg), log, cfg), orch
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnchors_Markdown(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := multipartRequest(t, "/api/anchors", nil, upload{
		field:    "file",
		filename: "post.md",
		body:     "# Seção 1\n\n## Visão Geral\n\n## Visão Geral\n",
	})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "post", res.Title)
	require.Len(t, res.Headings, 3)
	assert.Equal(t, "secao-1", res.Headings[0].Slug)
	assert.Equal(t, "visao-geral", res.Headings[1].Slug)
	assert.Equal(t, "visao-geral-1", res.Headings[2].Slug)
	require.Len(t, res.TOC, 1)
	assert.Len(t, res.TOC[0].Children, 2)
	assert.Contains(t, res.HTML, `<h1 id="secao-1">`)
}

func TestAnchors_TitleOverride(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := multipartRequest(t, "/api/anchors", map[string]string{"title": "Notes"}, upload{
		field: "file", filename: "a.md", body: "# A\n",
	})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notes", decode(t, rec)["title"])
}

func TestAnchors_Errors(t *testing.T) {
	tests := []struct {
		name string
		file *upload
		code int
	}{
		{name: "missing file", code: http.StatusBadRequest},
		{name: "unsupported", file: &upload{field: "file", filename: "a.txt", body: "x"}, code: http.StatusUnsupportedMediaType},
		{name: "too large", file: &upload{field: "file", filename: "a.md", body: string(bytes.Repeat([]byte("#"), 200))}, code: http.StatusRequestEntityTooLarge},
		{name: "bad frontmatter", file: &upload{field: "file", filename: "a.md", body: "---\ntitle: x\n# no close\n"}, code: http.StatusUnprocessableEntity},
	}

	srv, _ := newTestServer(t, func(c *config.Config) { c.MaxUploadBytes = 100 })
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.file == nil {
				req = multipartRequest(t, "/api/anchors", map[string]string{"title": "x"})
			} else {
				req = multipartRequest(t, "/api/anchors", nil, *tt.file)
			}
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestJobs_SubmitAndPoll(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := multipartRequest(t, "/api/jobs", nil,
		upload{field: "files", filename: "a.md", body: "# Setup\n\n## Setup\n"},
		upload{field: "files", filename: "b.txt", body: "nope"},
	)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var body struct {
		Jobs []jobEntry `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Jobs, 2)
	assert.NotEmpty(t, body.Jobs[0].JobID)
	assert.Equal(t, "/api/jobs/"+body.Jobs[0].JobID, body.Jobs[0].PollURL)
	assert.Empty(t, body.Jobs[1].JobID)
	assert.Contains(t, body.Jobs[1].Error, "unsupported")

	var snap pipeline.JobSnapshot
	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, body.Jobs[0].PollURL, nil))
		if rec.Code != http.StatusOK {
			return false
		}
		snap = pipeline.JobSnapshot{}
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			return false
		}
		return snap.Status == pipeline.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	require.NotNil(t, snap.Result)
	require.Len(t, snap.Result.Headings, 2)
	assert.Equal(t, "setup", snap.Result.Headings[0].Slug)
	assert.Equal(t, "setup-1", snap.Result.Headings[1].Slug)
	assert.Equal(t, 2, snap.Progress.HeadingsFound)
}

func TestJobs_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobs_NoFiles(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/api/jobs", map[string]string{"title": "x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/api/anchors", nil, upload{field: "file", filename: "a.md", body: "# A\n"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	latency, ok := out["latency"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	assert.Equal(t, 1.0, latency["count"])
	byFormat, ok := latency["by_format"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	markdown, ok := byFormat["markdown"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	assert.Equal(t, 1.0, markdown["count"])
	assert.Equal(t, 0.0, markdown["failed"])
	assert.Contains(t, out, "queue_depth")

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `headslug_headings_total{format="markdown"} 1`)
}

func TestAuth(t *testing.T) {
	srv, _ := newTestServer(t, func(c *config.Config) { c.APIKey = "secret" })

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays public.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestWriteJSON_LogsEncodeError(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	w := brokenWriter{httptest.NewRecorder()}
	writeJSON(log, w, http.StatusOK, map[string]string{"a": "b"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, logs.String(), "encode response")
	assert.Contains(t, logs.String(), io.ErrClosedPipe.Error())
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "doc.md", sanitizeFilename(`C:\docs\doc.md`))
	assert.Equal(t, "unnamed", sanitizeFilename(""))
	assert.Equal(t, "a_b.md", sanitizeFilename("a..b.md"))
}
