package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/events"
	"resume-matcher/internal/shared/config"
)

type countingAnalyzer struct {
	mu    sync.Mutex
	calls int
}

func (a *countingAnalyzer) Analyze(context.Context, string, string) (analyzer.Result, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	return analyzer.Result{Score: 80, Summary: "ok", Strengths: []string{"x"}}, nil
}

func (a *countingAnalyzer) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// buildPDF writes a single-page PDF with one text line per entry.
func buildPDF(lines []string) []byte {
	var content strings.Builder
	content.WriteString("BT\n/F1 11 Tf\n14 TL\n72 760 Td\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "(%s ) Tj T*\n", line)
	}
	content.WriteString("ET\n")
	stream := content.String()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func resumePDF() []byte {
	lines := []string{
		"Jane Doe",
		"jane.doe@example.com  555-123-4567",
		"Experience",
		"Senior Backend Engineer, Acme Corp, 2019 - present",
		"Built Go services handling payments for two million customers.",
		"Led the migration of batch billing jobs to event driven pipelines.",
		"Backend Developer, Initech, 2015 - 2019",
		"Maintained PostgreSQL schemas and wrote reporting APIs.",
		"Education",
		"BSc Computer Science, State University, 2015",
		"Skills",
		"Go, PostgreSQL, Kubernetes, AWS, RabbitMQ, Prometheus",
	}
	for len(buildPDF(lines)) < 2048 {
		lines = append(lines, "Delivered internal tooling and mentored junior engineers on service design.")
	}
	return buildPDF(lines)
}

func newTestApp(t *testing.T, an analyzer.Analyzer) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		Env:           "dev",
		BlobStoreType: "local",
		LocalStoreDir: t.TempDir(),
	}
	app, err := BuildWith(context.Background(), cfg, Overrides{Analyzer: an, Publisher: &events.Recorder{}})
	if err != nil {
		t.Fatalf("BuildWith: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func register(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	resp := doJSON(t, r, http.MethodPost, "/api/user/register", "", map[string]string{
		"email": email, "password": "pw-123456", "firstName": "Jane", "lastName": "Doe",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	json.Unmarshal(resp.Body.Bytes(), &out)
	return out.Token
}

func upload(t *testing.T, r http.Handler, token, name, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="resume"; filename="`+name+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestUploadThenMatchEndToEnd(t *testing.T) {
	stub := &countingAnalyzer{}
	app := newTestApp(t, stub)
	r := app.Router
	token := register(t, r, "jane@example.com")

	pdfBytes := resumePDF()
	resp := upload(t, r, token, "jane.pdf", "application/pdf", pdfBytes)
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var uploaded struct {
		Resume struct {
			ID        string `json:"id"`
			PageCount *int   `json:"pageCount"`
		} `json:"resume"`
	}
	json.Unmarshal(resp.Body.Bytes(), &uploaded)
	if uploaded.Resume.PageCount == nil || *uploaded.Resume.PageCount != 1 {
		t.Fatalf("expected page count 1, got %+v", uploaded.Resume)
	}

	userID := mustUserID(t, app, token)
	stored, err := app.ResumesRepo.GetActive(context.Background(), userID, uploaded.Resume.ID)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if !stored.Active || !strings.Contains(stored.ExtractedText, "jane.doe@example.com") {
		t.Fatalf("unexpected stored resume: active=%v text=%q", stored.Active, stored.ExtractedText)
	}
	rc, err := app.Store.Get(context.Background(), stored.BlobLocator)
	if err != nil {
		t.Fatalf("blob not retrievable: %v", err)
	}
	rc.Close()

	job := strings.Repeat("Go backend role. ", 4)[:60]
	resp = doJSON(t, r, http.MethodPost, "/api/match/create", token, map[string]string{
		"resumeId": uploaded.Resume.ID, "jobDescription": job,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("match: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		Match struct {
			MatchScore float64 `json:"matchScore"`
		} `json:"match"`
	}
	json.Unmarshal(resp.Body.Bytes(), &created)
	if created.Match.MatchScore != 80 {
		t.Fatalf("expected score 80, got %v", created.Match.MatchScore)
	}

	resp = doJSON(t, r, http.MethodPost, "/api/match/create", token, map[string]string{
		"resumeId": uploaded.Resume.ID, "jobDescription": strings.Repeat("a", 10001),
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("long description: expected 400, got %d", resp.Code)
	}
	if stub.Calls() != 1 {
		t.Fatalf("expected exactly one analyzer call, got %d", stub.Calls())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t, &countingAnalyzer{})
	for _, path := range []string{"/api/resume", "/api/match", "/api/resume/x/text"} {
		if resp := doJSON(t, app.Router, http.MethodGet, path, "", nil); resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, resp.Code)
		}
		if resp := doJSON(t, app.Router, http.MethodGet, path, "garbage", nil); resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s with bad token: expected 401, got %d", path, resp.Code)
		}
	}
}

func TestResumeTextIsPrivate(t *testing.T) {
	app := newTestApp(t, &countingAnalyzer{})
	owner := register(t, app.Router, "owner@example.com")
	other := register(t, app.Router, "other@example.com")

	resp := upload(t, app.Router, owner, "jane.pdf", "application/pdf", resumePDF())
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var uploaded struct {
		Resume struct {
			ID string `json:"id"`
		} `json:"resume"`
	}
	json.Unmarshal(resp.Body.Bytes(), &uploaded)

	foreign := doJSON(t, app.Router, http.MethodGet, "/api/resume/"+uploaded.Resume.ID+"/text", other, nil)
	missing := doJSON(t, app.Router, http.MethodGet, "/api/resume/00000000-0000-0000-0000-000000000000/text", other, nil)
	if foreign.Code != http.StatusNotFound || foreign.Body.String() != missing.Body.String() {
		t.Fatalf("expected identical 404s, got %d %s / %d %s", foreign.Code, foreign.Body.String(), missing.Code, missing.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, &countingAnalyzer{})

	resp := doJSON(t, app.Router, http.MethodGet, "/api/health", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"ok":true`) {
		t.Fatalf("health: %d %s", resp.Code, resp.Body.String())
	}

	token := register(t, app.Router, "m@example.com")
	upload(t, app.Router, token, "notes.txt", "text/plain", []byte("hello"))

	resp = doJSON(t, app.Router, http.MethodGet, "/metrics", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `resume_ingest_total{outcome="invalid"} 1`) {
		t.Fatalf("expected invalid ingest counter in metrics output")
	}
}

func mustUserID(t *testing.T, app *App, token string) string {
	t.Helper()
	claims, err := app.Issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return claims.Sub
}
