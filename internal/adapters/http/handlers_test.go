package http_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/reproj/internal/adapters/http"
	"github.com/samirrijal/reproj/internal/adapters/projection"
	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/usecases"
	"github.com/samirrijal/reproj/internal/proj"
	"github.com/samirrijal/reproj/internal/reproject"
)

// ---- Mock projector ----

// shiftProjector knows zone 30N and destinations WGS84/ETRS89 and binds them
// to a fixed arithmetic transform so tests assert plumbing, not geodesy.
type shiftProjector struct {
	mu    sync.Mutex
	calls int
}

func (p *shiftProjector) Bind(zone, dest string) (func(x, y float64) (float64, float64, error), error) {
	if !strings.EqualFold(zone, "30N") {
		return nil, domain.ErrUnknownZone
	}
	if !strings.EqualFold(dest, "WGS84") && !strings.EqualFold(dest, "ETRS89") {
		return nil, domain.ErrUnknownDestination
	}
	return func(x, y float64) (float64, float64, error) {
		p.mu.Lock()
		p.calls++
		p.mu.Unlock()
		return x + 1, y * 10, nil
	}, nil
}

func (p *shiftProjector) Systems() domain.Systems {
	return domain.Systems{
		Sources:      []domain.System{{Code: "30N", EPSG: 23030, Name: "ED50 / UTM zone 30N"}},
		Destinations: []domain.System{{Code: "WGS84", EPSG: 4326, Name: "WGS 84"}, {Code: "ETRS89", EPSG: 4258, Name: "ETRS89"}},
	}
}

func (p *shiftProjector) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// ---- Mock job plumbing ----

type mockJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
}

func (m *mockJobRepo) Create(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *mockJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *mockJobRepo) MarkRunning(ctx context.Context, id string) error { return nil }
func (m *mockJobRepo) Complete(ctx context.Context, id string, output json.RawMessage, pairs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j := m.jobs[id]
	j.Status, j.Output, j.Pairs = domain.JobSucceeded, output, pairs
	return nil
}
func (m *mockJobRepo) Fail(ctx context.Context, id string, reason string) error { return nil }

type mockStarter struct{ started []string }

func (m *mockStarter) StartJob(ctx context.Context, jobID string) error {
	m.started = append(m.started, jobID)
	return nil
}

type mockEventRepo struct{ stats *domain.AuditStats }

func (m *mockEventRepo) Insert(ctx context.Context, event *domain.TransformEvent) error { return nil }
func (m *mockEventRepo) Stats(ctx context.Context) (*domain.AuditStats, error) {
	return m.stats, nil
}

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

// ---- Helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true, ErrorHandler: handler.ErrorHandler})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(p *shiftProjector, opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Transforms: usecases.NewTransformService(p, reproject.NewEngine(reproject.DefaultMaxDepth, false), nil, nil, 0),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func do(t *testing.T, app *fiber.App, method, target, contentType, body string) (int, []byte, map[string]string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	headers := map[string]string{}
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return resp.StatusCode, b, headers
}

type apiError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	RequestID string `json:"request_id"`
}

func decodeError(t *testing.T, body []byte) apiError {
	t.Helper()
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return e
}

func assertJSONEqual(t *testing.T, got []byte, want string) {
	t.Helper()
	var g, w any
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("decode %s: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("decode want: %v", err)
	}
	gb, _ := json.Marshal(g)
	wb, _ := json.Marshal(w)
	if string(gb) != string(wb) {
		t.Errorf("got %s, want %s", gb, wb)
	}
}

// ---- Single point ----

func TestTransformPoint_ScenarioA(t *testing.T) {
	deps := &handler.Dependencies{
		Transforms: usecases.NewTransformService(projection.New(proj.DefaultRegistry()),
			reproject.NewEngine(reproject.DefaultMaxDepth, false), nil, nil, 0),
	}
	app := setupApp(deps)

	status, body, _ := do(t, app, "GET", "/v1/transform/30N/WGS84?x=433829.9531810064&y=4811755.32568882", "", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var p []float64
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p) != 2 {
		t.Fatalf("expected 2-element array, got %v", p)
	}
	if math.Abs(p[0]-(-3.81917591)) > 1e-4 || math.Abs(p[1]-43.45391861) > 1e-4 {
		t.Errorf("got %v, want about [-3.819176, 43.453919]", p)
	}
}

func TestTransformPoint_Plumbing(t *testing.T) {
	p := &shiftProjector{}
	app := setupApp(makeDeps(p))

	status, body, _ := do(t, app, "GET", "/v1/transform/30n/wgs84?x=1&y=2", "", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	assertJSONEqual(t, body, `[2, 20]`)
	if p.count() != 1 {
		t.Errorf("expected 1 transform call, got %d", p.count())
	}
}

func TestTransformPoint_ScenarioF_MissingY(t *testing.T) {
	p := &shiftProjector{}
	app := setupApp(makeDeps(p))

	for _, target := range []string{"/v1/transform/30N/WGS84?x=1", "/v1/transform/30N/WGS84?y=1", "/v1/transform/30N/WGS84?x=1&y="} {
		status, body, _ := do(t, app, "GET", target, "", "")
		if status != 400 {
			t.Fatalf("%s: expected 400, got %d", target, status)
		}
		if e := decodeError(t, body); e.Message != "Must set both x and y query params." {
			t.Errorf("%s: unexpected message %q", target, e.Message)
		}
	}
	if p.count() != 0 {
		t.Errorf("expected no transform call, got %d", p.count())
	}
}

func TestTransformPoint_NotANumber(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	for _, target := range []string{"/v1/transform/30N/WGS84?x=abc&y=1", "/v1/transform/30N/WGS84?x=NaN&y=1", "/v1/transform/30N/WGS84?x=1&y=1e400"} {
		status, body, _ := do(t, app, "GET", target, "", "")
		if status != 400 {
			t.Fatalf("%s: expected 400, got %d", target, status)
		}
		if e := decodeError(t, body); e.Code != "bad_request" {
			t.Errorf("%s: expected bad_request, got %q", target, e.Code)
		}
	}
}

func TestTransformPoint_UnknownSystems(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	tests := []struct {
		target string
		msg    string
	}{
		{"/v1/transform/28N/WGS84?x=1&y=2", "Not valid zone for Spain."},
		{"/v1/transform/30N/EPSG3857?x=1&y=2", "Not valid destination system."},
		// Unknown systems win over missing parameters.
		{"/v1/transform/28N/WGS84", "Not valid zone for Spain."},
	}
	for _, tt := range tests {
		status, body, _ := do(t, app, "GET", tt.target, "", "")
		if status != 404 {
			t.Fatalf("%s: expected 404, got %d", tt.target, status)
		}
		if e := decodeError(t, body); e.Message != tt.msg {
			t.Errorf("%s: expected %q, got %q", tt.target, tt.msg, e.Message)
		}
	}
}

// ---- Payloads ----

func TestTransformPayload_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     string
		strategy string
		pairs    string
	}{
		{
			name:     "B flat array",
			body:     `[[433829.5,4811755.25],[0,0]]`,
			want:     `[[433830.5,48117552.5],[1,0]]`,
			strategy: "array",
			pairs:    "2",
		},
		{
			name:     "C point",
			body:     `{"type":"Point","coordinates":[433829.5,4811755.25]}`,
			want:     `{"type":"Point","coordinates":[433830.5,48117552.5]}`,
			strategy: "geojson",
			pairs:    "1",
		},
		{
			name:     "D geometry collection",
			body:     `{"type":"GeometryCollection","geometries":[{"type":"Point","coordinates":[1,2]}]}`,
			want:     `{"type":"GeometryCollection","geometries":[{"type":"Point","coordinates":[2,20]}]}`,
			strategy: "geojson",
			pairs:    "1",
		},
		{
			name:     "feature keeps properties",
			body:     `{"type":"Feature","id":7,"properties":{"name":"Santander","ref":[1,2]},"geometry":{"type":"LineString","coordinates":[[1,2],[3,4]]}}`,
			want:     `{"type":"Feature","id":7,"properties":{"name":"Santander","ref":[1,2]},"geometry":{"type":"LineString","coordinates":[[2,20],[4,40]]}}`,
			strategy: "geojson",
			pairs:    "2",
		},
		{
			name:     "plain object walked",
			body:     `{"foo":{"coordinates":[1,2]}}`,
			want:     `{"foo":{"coordinates":[2,20]}}`,
			strategy: "object",
			pairs:    "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(makeDeps(&shiftProjector{}))
			status, body, headers := do(t, app, "POST", "/v1/transform/30N/WGS84", "application/json", tt.body)
			if status != 200 {
				t.Fatalf("expected 200, got %d: %s", status, body)
			}
			assertJSONEqual(t, body, tt.want)
			if headers["X-Reproj-Strategy"] != tt.strategy {
				t.Errorf("expected strategy %s, got %q", tt.strategy, headers["X-Reproj-Strategy"])
			}
			if headers["X-Reproj-Pairs"] != tt.pairs {
				t.Errorf("expected %s pairs, got %q", tt.pairs, headers["X-Reproj-Pairs"])
			}
		})
	}
}

func TestTransformPayload_ScenarioE_ShortPair(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	status, body, _ := do(t, app, "POST", "/v1/transform/30N/WGS84", "application/json", `{"coordinates": [1]}`)
	if status != 422 {
		t.Fatalf("expected 422, got %d: %s", status, body)
	}
	e := decodeError(t, body)
	if e.Code != "transform_failed" {
		t.Errorf("expected transform_failed, got %q", e.Code)
	}
	if e.Path != "$.coordinates" {
		t.Errorf("expected path $.coordinates, got %q", e.Path)
	}
}

func TestTransformPayload_RequestTimeout(t *testing.T) {
	p := &shiftProjector{}
	app := setupApp(makeDeps(p, func(d *handler.Dependencies) {
		d.RequestTimeout = time.Nanosecond
	}))

	pairs := make([]string, 2001)
	for i := range pairs {
		pairs[i] = "[1,2]"
	}
	status, body, _ := do(t, app, "POST", "/v1/transform/30N/WGS84", "application/json", "["+strings.Join(pairs, ",")+"]")
	if status != 408 {
		t.Fatalf("expected 408, got %d: %s", status, body)
	}
	if e := decodeError(t, body); e.Code != "timeout" {
		t.Errorf("expected code timeout, got %q", e.Code)
	}
	if n := p.count(); n != 0 {
		t.Errorf("expected no transforms after the deadline, got %d", n)
	}
}

func TestTransformPayload_GeoJSONContentTypeEchoed(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	status, _, headers := do(t, app, "POST", "/v1/transform/30N/WGS84", "application/geo+json; charset=utf-8",
		`{"type":"Point","coordinates":[1,2]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if headers["Content-Type"] != "application/geo+json" {
		t.Errorf("expected geo+json content type, got %q", headers["Content-Type"])
	}
}

func TestTransformPayload_Errors(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		status      int
		msg         string
	}{
		{"unknown zone", "/v1/transform/28N/WGS84", "application/json", `[[1,2]]`, 404, "Not valid zone for Spain."},
		{"unknown dest", "/v1/transform/30N/ED50", "application/json", `[[1,2]]`, 404, "Not valid destination system."},
		{"unknown zone before content type", "/v1/transform/28N/WGS84", "text/plain", `[[1,2]]`, 404, "Not valid zone for Spain."},
		{"not json", "/v1/transform/30N/WGS84", "text/plain", `[[1,2]]`, 415, "Only accepts application/json."},
		{"missing content type", "/v1/transform/30N/WGS84", "", `[[1,2]]`, 415, "Only accepts application/json."},
		{"invalid json", "/v1/transform/30N/WGS84", "application/json", `[[1,2]`, 400, ""},
		{"trailing data", "/v1/transform/30N/WGS84", "application/json", `[[1,2]] [[3,4]]`, 400, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &shiftProjector{}
			app := setupApp(makeDeps(p))
			status, body, _ := do(t, app, "POST", tt.target, tt.contentType, tt.body)
			if status != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, status, body)
			}
			e := decodeError(t, body)
			if tt.msg != "" && e.Message != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, e.Message)
			}
			if p.count() != 0 {
				t.Errorf("expected no transform call, got %d", p.count())
			}
		})
	}
}

func TestTransformPayload_PreservesNumberForm(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	// Non-coordinate numbers keep their exact lexical form.
	status, body, _ := do(t, app, "POST", "/v1/transform/30N/WGS84", "application/json",
		`{"type":"Point","coordinates":[1,2],"properties":{"big":12345678901234567890,"f":1.50}}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(string(body), "12345678901234567890") || !strings.Contains(string(body), "1.50") {
		t.Errorf("expected untouched numbers kept verbatim, got %s", body)
	}
}

// ---- Systems & legacy routes ----

func TestSystems(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	status, body, _ := do(t, app, "GET", "/v1/systems", "", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var s domain.Systems
	if err := json.Unmarshal(body, &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(s.Sources) != 1 || s.Sources[0].Code != "30N" || len(s.Destinations) != 2 {
		t.Errorf("unexpected systems %+v", s)
	}
}

func TestSystems_ETag(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	status, body, headers := do(t, app, "GET", "/v1/systems", "", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	sum := sha256.Sum256(body)
	want := `W/"` + hex.EncodeToString(sum[:8]) + `"`
	if headers["Etag"] != want {
		t.Fatalf("expected ETag %s, got %q", want, headers["Etag"])
	}

	req := httptest.NewRequest("GET", "/v1/systems", nil)
	req.Header.Set("If-None-Match", want)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 304 {
		t.Errorf("expected 304 for matching If-None-Match, got %d", resp.StatusCode)
	}
}

func TestLegacyRoutes(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	status, body, headers := do(t, app, "GET", "/30N/ETRS89?x=1&y=2", "", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	assertJSONEqual(t, body, `[2, 20]`)
	if headers["Deprecation"] != "true" || headers["Sunset"] == "" {
		t.Errorf("expected deprecation headers, got %v", headers)
	}
	if headers["Link"] != `</v1/transform/30N/ETRS89>; rel="successor-version"` {
		t.Errorf("unexpected Link %q", headers["Link"])
	}

	// A zone alone means WGS84.
	status, body, headers = do(t, app, "POST", "/30N", "application/json", `[[1,2]]`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	assertJSONEqual(t, body, `[[2, 20]]`)
	if headers["Link"] != `</v1/transform/30N/WGS84>; rel="successor-version"` {
		t.Errorf("unexpected Link %q", headers["Link"])
	}

	status, body, _ = do(t, app, "GET", "/29N?x=1&y=2", "", "")
	if status != 404 || decodeError(t, body).Message != "Not valid zone for Spain." {
		t.Errorf("expected zone 404, got %d: %s", status, body)
	}
}

// ---- Jobs & stats ----

func TestJobs_Unavailable(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	status, body, _ := do(t, app, "POST", "/v1/jobs/30N/WGS84", "application/json", `[[1,2]]`)
	if status != 503 {
		t.Fatalf("expected 503, got %d: %s", status, body)
	}
	status, _, _ = do(t, app, "GET", "/v1/jobs/abc", "", "")
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
	status, _, _ = do(t, app, "GET", "/v1/stats", "", "")
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}

func TestJobs_SubmitAndGet(t *testing.T) {
	p := &shiftProjector{}
	repo := &mockJobRepo{jobs: map[string]*domain.Job{}}
	starter := &mockStarter{}
	var jobs *usecases.JobService
	deps := makeDeps(p, func(d *handler.Dependencies) {
		jobs = usecases.NewJobService(repo, starter, p, d.Transforms)
		d.Jobs = jobs
	})
	app := setupApp(deps)

	status, body, headers := do(t, app, "POST", "/v1/jobs/30N/WGS84", "application/json", `[[1,2],[3,4]]`)
	if status != 202 {
		t.Fatalf("expected 202, got %d: %s", status, body)
	}
	var accepted struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted.Status != string(domain.JobPending) {
		t.Errorf("expected pending, got %q", accepted.Status)
	}
	if headers["Location"] != "/v1/jobs/"+accepted.ID {
		t.Errorf("unexpected Location %q", headers["Location"])
	}
	if len(starter.started) != 1 || starter.started[0] != accepted.ID {
		t.Fatalf("expected workflow started for %s, got %v", accepted.ID, starter.started)
	}
	if p.count() != 0 {
		t.Errorf("expected no transform before the job runs, got %d", p.count())
	}

	// Pending jobs are not cached.
	status, _, headers = do(t, app, "GET", "/v1/jobs/"+accepted.ID, "", "")
	if status != 200 || headers["Cache-Control"] != "no-store" {
		t.Fatalf("expected 200 no-store, got %d %q", status, headers["Cache-Control"])
	}

	if err := jobs.Run(context.Background(), accepted.ID); err != nil {
		t.Fatalf("run: %v", err)
	}

	status, body, _ = do(t, app, "GET", "/v1/jobs/"+accepted.ID, "", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var job struct {
		Status string          `json:"status"`
		Pairs  int             `json:"pairs"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.Status != string(domain.JobSucceeded) || job.Pairs != 2 {
		t.Errorf("unexpected job %s", body)
	}
	assertJSONEqual(t, job.Result, `[[2,20],[4,40]]`)

	status, _, _ = do(t, app, "GET", "/v1/jobs/missing", "", "")
	if status != 404 {
		t.Errorf("expected 404 for unknown job, got %d", status)
	}
}

func TestJobs_SubmitValidation(t *testing.T) {
	p := &shiftProjector{}
	repo := &mockJobRepo{jobs: map[string]*domain.Job{}}
	starter := &mockStarter{}
	deps := makeDeps(p, func(d *handler.Dependencies) {
		d.Jobs = usecases.NewJobService(repo, starter, p, d.Transforms)
	})
	app := setupApp(deps)

	if status, _, _ := do(t, app, "POST", "/v1/jobs/28N/WGS84", "application/json", `[[1,2]]`); status != 404 {
		t.Errorf("expected 404, got %d", status)
	}
	if status, _, _ := do(t, app, "POST", "/v1/jobs/30N/WGS84", "text/csv", `1,2`); status != 415 {
		t.Errorf("expected 415, got %d", status)
	}
	if status, _, _ := do(t, app, "POST", "/v1/jobs/30N/WGS84", "application/json", `{`); status != 400 {
		t.Errorf("expected 400, got %d", status)
	}
	if len(starter.started) != 0 {
		t.Errorf("expected no workflow started, got %v", starter.started)
	}
}

func TestStats(t *testing.T) {
	events := &mockEventRepo{stats: &domain.AuditStats{Requests: 3, Pairs: 10, Failures: 1, ByZone: map[string]int64{"30N": 3}}}
	app := setupApp(makeDeps(&shiftProjector{}, func(d *handler.Dependencies) {
		d.Audit = usecases.NewAuditService(events)
	}))

	status, body, headers := do(t, app, "GET", "/v1/stats", "", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	assertJSONEqual(t, body, `{"requests":3,"pairs":10,"failures":1,"by_zone":{"30N":3}}`)
	if headers["Cache-Control"] != "no-cache" {
		t.Errorf("expected no-cache, got %q", headers["Cache-Control"])
	}
}

// ---- GraphQL ----

func TestGraphQL(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	query := `{"query":"{ transformPoint(zone: \"30N\", x: 1, y: 2) transform(zone: \"30N\", dest: \"ETRS89\", payload: \"[[3,4]]\") { payload pairs strategy } systems { sources { code } } }"}`
	status, body, _ := do(t, app, "POST", "/graphql", "application/json", query)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var result struct {
		Data struct {
			TransformPoint []float64 `json:"transformPoint"`
			Transform      struct {
				Payload  string `json:"payload"`
				Pairs    int    `json:"pairs"`
				Strategy string `json:"strategy"`
			} `json:"transform"`
			Systems domain.Systems `json:"systems"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Data.TransformPoint) != 2 || result.Data.TransformPoint[0] != 2 || result.Data.TransformPoint[1] != 20 {
		t.Errorf("unexpected transformPoint %v", result.Data.TransformPoint)
	}
	if result.Data.Transform.Payload != `[[4,40]]` || result.Data.Transform.Pairs != 1 || result.Data.Transform.Strategy != "array" {
		t.Errorf("unexpected transform %+v", result.Data.Transform)
	}
	if len(result.Data.Systems.Sources) != 1 {
		t.Errorf("unexpected systems %+v", result.Data.Systems)
	}
}

func TestGraphQL_UnknownZone(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	status, body, _ := do(t, app, "POST", "/graphql", "application/json",
		`{"query":"{ transformPoint(zone: \"28N\", x: 1, y: 2) }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(string(body), domain.ErrUnknownZone.Error()) {
		t.Errorf("expected unknown zone error, got %s", body)
	}
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}, func(d *handler.Dependencies) { d.Version = "1.2.3" }))

	status, body, _ := do(t, app, "GET", "/v1/health", "", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var h struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	_ = json.Unmarshal(body, &h)
	if h.Status != "healthy" || h.Version != "1.2.3" {
		t.Errorf("unexpected health %s", body)
	}
}

func TestReady(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}, func(d *handler.Dependencies) {
		d.Checks = map[string]handler.Pinger{"postgres": pinger{}, "valkey": nil, "temporal": nil}
	}))
	status, body, _ := do(t, app, "GET", "/v1/ready", "", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	assertJSONEqual(t, body, `{"status":"ready","checks":{"postgres":"ok","temporal":"not configured","valkey":"not configured"}}`)

	app = setupApp(makeDeps(&shiftProjector{}, func(d *handler.Dependencies) {
		d.Checks = map[string]handler.Pinger{"nats": pinger{err: errors.New("connection refused")}}
	}))
	status, body, _ = do(t, app, "GET", "/v1/ready", "", "")
	if status != 503 {
		t.Fatalf("expected 503, got %d: %s", status, body)
	}
	assertJSONEqual(t, body, `{"status":"not ready","checks":{"nats":"error: connection refused"}}`)
}

func TestUnknownRoute_APIErrorFormat(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	status, body, _ := do(t, app, "DELETE", "/v1/systems", "", "")
	if status != 405 && status != 404 {
		t.Fatalf("expected 404 or 405, got %d", status)
	}
	if e := decodeError(t, body); e.Status != status {
		t.Errorf("expected APIError body, got %s", body)
	}
}

func TestRequestIDInErrors(t *testing.T) {
	app := setupApp(makeDeps(&shiftProjector{}))

	_, body, headers := do(t, app, "GET", "/v1/transform/28N/WGS84?x=1&y=2", "", "")
	e := decodeError(t, body)
	if e.RequestID == "" || e.RequestID != headers["X-Request-Id"] {
		t.Errorf("expected request id %q in error, got %q", headers["X-Request-Id"], e.RequestID)
	}
}
