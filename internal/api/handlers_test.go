package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tsplab/internal/experiment"
	"tsplab/internal/model"
	"tsplab/internal/store"
	"tsplab/internal/tsplib"
)

const squareDoc = `NAME: square4
TYPE: TSP
DIMENSION: 4
EDGE_WEIGHT_TYPE: EUC_2D
NODE_COORD_SECTION
1 0 0
2 10 0
3 10 10
4 0 10
EOF
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "square4.tsp"), []byte(squareDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	optima := filepath.Join(dir, "optima.json")
	if err := os.WriteFile(optima, []byte(`{"square4": 40}`), 0o644); err != nil {
		t.Fatal(err)
	}
	catalog, err := tsplib.LoadCatalog(dir, optima)
	if err != nil {
		t.Fatal(err)
	}
	return &Server{Store: store.NewMemory(), Catalog: catalog, Broker: NewBroker()}
}

func acsAlgorithm() experiment.Algorithm {
	return experiment.Algorithm{
		Name: "acs", NumAnts: 4, Alpha: 1, Beta: 2,
		Rho: 0.1, Phi: 0.1, Q0: 0.9,
		MaxIterations: 10, MaxTime: 60, StagnationLimit: 60,
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	h(rr, req)
	return rr
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
	var ready struct {
		Instances int `json:"instances"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &ready); err != nil {
		t.Fatal(err)
	}
	if ready.Instances != 1 {
		t.Fatalf("ready instances = %d, want 1", ready.Instances)
	}
}

func TestSolveCatalogInstance(t *testing.T) {
	s := newTestServer(t)
	rr := postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{
		Instance: "square4", Seed: 7, Algorithm: acsAlgorithm(),
	})
	if rr.Code != 200 {
		t.Fatalf("solve: got %d body %s", rr.Code, rr.Body.String())
	}
	var out struct {
		ID     string              `json:"id"`
		Result model.SolveResponse `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.ID == "" {
		t.Fatal("no solve id")
	}
	if out.Result.BestCost != 40 || len(out.Result.BestTour) != 4 {
		t.Fatalf("bad result: %+v", out.Result)
	}
	if out.Result.Instance != "square4" || out.Result.Algorithm != "acs" || out.Result.Seed != 7 {
		t.Fatalf("bad result header: %+v", out.Result)
	}

	// Fetch the stored record back.
	rr = httptest.NewRecorder()
	s.SolveByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solves/"+out.ID, nil))
	if rr.Code != 200 {
		t.Fatalf("get solve: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.SolveByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solves/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get unknown solve: got %d", rr.Code)
	}
}

func TestSolveInlineCoords(t *testing.T) {
	s := newTestServer(t)
	rr := postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{
		Inline: &model.InstanceIn{
			Name:           "inline4",
			EdgeWeightType: "EUC_2D",
			Coords:         [][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		},
		Algorithm: acsAlgorithm(),
	})
	if rr.Code != 200 {
		t.Fatalf("inline solve: got %d body %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Result model.SolveResponse `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Result.Instance != "inline4" || out.Result.BestCost != 40 {
		t.Fatalf("bad inline result: %+v", out.Result)
	}
}

func TestSolveInlineMatrix(t *testing.T) {
	s := newTestServer(t)
	rr := postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{
		Inline: &model.InstanceIn{
			EdgeWeightFormat: "FULL_MATRIX",
			Dimension:        3,
			Weights:          []int{0, 1, 2, 1, 0, 3, 2, 3, 0},
		},
		Algorithm: acsAlgorithm(),
	})
	if rr.Code != 200 {
		t.Fatalf("matrix solve: got %d body %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Result model.SolveResponse `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	// Only one cycle exists on 3 nodes: 1+3+2.
	if out.Result.BestCost != 6 {
		t.Fatalf("best cost = %v, want 6", out.Result.BestCost)
	}
}

func TestSolveValidation(t *testing.T) {
	s := newTestServer(t)
	cases := map[string]model.SolveRequest{
		"no instance":   {Algorithm: acsAlgorithm()},
		"both sources":  {Instance: "square4", Inline: &model.InstanceIn{}, Algorithm: acsAlgorithm()},
		"empty inline":  {Inline: &model.InstanceIn{}, Algorithm: acsAlgorithm()},
		"no dimension":  {Inline: &model.InstanceIn{Weights: []int{0}}, Algorithm: acsAlgorithm()},
		"bad algorithm": {Instance: "square4", Algorithm: experiment.Algorithm{Name: "tabu", MaxTime: 1}},
		"no max time":   {Instance: "square4", Algorithm: experiment.Algorithm{Name: "acs", NumAnts: 4}},
	}
	for name, req := range cases {
		if rr := postJSON(t, s.SolveHandler, "/v1/solve", req); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", name, rr.Code)
		}
	}

	rr := postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{
		Instance: "missing", Algorithm: acsAlgorithm(),
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown instance: got %d, want 404", rr.Code)
	}
}

func TestInstancesListAndGet(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.InstancesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/instances", nil))
	if rr.Code != 200 {
		t.Fatalf("list: got %d", rr.Code)
	}
	var list struct {
		Items []model.InstanceOut `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 || list.Items[0].Name != "square4" || list.Items[0].Dimension != 4 {
		t.Fatalf("bad items: %+v", list.Items)
	}
	if list.Items[0].Optimal == nil || *list.Items[0].Optimal != 40 {
		t.Fatalf("optimal not joined: %+v", list.Items[0])
	}

	rr = httptest.NewRecorder()
	s.InstanceByNameHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/instances/square4", nil))
	if rr.Code != 200 {
		t.Fatalf("get: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.InstanceByNameHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/instances/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get missing: got %d", rr.Code)
	}
}

func testExperimentRequest() model.ExperimentRequest {
	return model.ExperimentRequest{Configs: []experiment.ExperimentConfig{{
		Name:      "square4_acs",
		Runs:      1,
		SeedBase:  1,
		Problem:   experiment.Problem{Instance: "square4"},
		Algorithm: acsAlgorithm(),
	}}}
}

func TestExperimentsCreateAndGet(t *testing.T) {
	s := newTestServer(t)
	rr := postJSON(t, s.ExperimentsHandler, "/v1/experiments", testExperimentRequest())
	if rr.Code != http.StatusAccepted {
		t.Fatalf("create: got %d body %s", rr.Code, rr.Body.String())
	}
	var job model.ExperimentJob
	if err := json.Unmarshal(rr.Body.Bytes(), &job); err != nil {
		t.Fatal(err)
	}
	if job.ID == "" || job.Status != model.JobQueued {
		t.Fatalf("bad job: %+v", job)
	}

	rr = httptest.NewRecorder()
	s.ExperimentByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/experiments/"+job.ID, nil))
	if rr.Code != 200 {
		t.Fatalf("get: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ExperimentByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/experiments/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get missing: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.ExperimentsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/experiments?limit=5", nil))
	if rr.Code != 200 {
		t.Fatalf("list: got %d", rr.Code)
	}
	var list struct {
		Items []model.ExperimentJob `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("got %d jobs, want 1", len(list.Items))
	}
}

func TestExperimentsCreateRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	b, _ := json.Marshal(testExperimentRequest())
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/experiments", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Role", "viewer")
	s.ExperimentsHandler(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("got %d, want 403", rr.Code)
	}
}

func TestExperimentsCreateRejectsInvalid(t *testing.T) {
	s := newTestServer(t)
	empty := model.ExperimentRequest{}
	if rr := postJSON(t, s.ExperimentsHandler, "/v1/experiments", empty); rr.Code != http.StatusBadRequest {
		t.Fatalf("empty: got %d", rr.Code)
	}
	unnamed := testExperimentRequest()
	unnamed.Configs[0].Name = ""
	if rr := postJSON(t, s.ExperimentsHandler, "/v1/experiments", unnamed); rr.Code != http.StatusBadRequest {
		t.Fatalf("unnamed: got %d", rr.Code)
	}
	badRuns := testExperimentRequest()
	badRuns.Configs[0].Runs = 0
	if rr := postJSON(t, s.ExperimentsHandler, "/v1/experiments", badRuns); rr.Code != http.StatusBadRequest {
		t.Fatalf("zero runs: got %d", rr.Code)
	}
}

func TestResults(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	job, err := s.Store.CreateJob(ctx, testExperimentRequest().Configs)
	if err != nil {
		t.Fatal(err)
	}
	s.Store.FetchDueJobs(ctx, 1)
	s.Store.CompleteJob(ctx, job.ID, []experiment.Summary{{ConfigName: "square4_acs", BestCost: 40}})

	rr := httptest.NewRecorder()
	s.ResultsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/results", nil))
	if rr.Code != 200 {
		t.Fatalf("results: got %d", rr.Code)
	}
	var list struct {
		Items []experiment.Summary `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 || list.Items[0].BestCost != 40 {
		t.Fatalf("bad results: %+v", list.Items)
	}
}

// sseRecorder is a minimal ResponseWriter that implements http.Flusher
// and captures writes for SSE tests.
type sseRecorder struct {
	hdr  http.Header
	buf  bytes.Buffer
	code int
}

func (r *sseRecorder) Header() http.Header {
	if r.hdr == nil {
		r.hdr = http.Header{}
	}
	return r.hdr
}
func (r *sseRecorder) WriteHeader(c int)           { r.code = c }
func (r *sseRecorder) Write(p []byte) (int, error) { return r.buf.Write(p) }
func (r *sseRecorder) Flush()                      {}

func TestJobEventsSSE(t *testing.T) {
	s := newTestServer(t)
	job, err := s.Store.CreateJob(context.Background(), testExperimentRequest().Configs)
	if err != nil {
		t.Fatal(err)
	}

	sseReq := httptest.NewRequest(http.MethodGet, "/v1/experiments/"+job.ID+"/events/stream", nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sseReq = sseReq.WithContext(ctx)

	rec := &sseRecorder{}
	done := make(chan struct{})
	go func() {
		s.ExperimentByIDHandler(rec, sseReq)
		close(done)
	}()

	// Give the handler time to subscribe and send the first heartbeat.
	time.Sleep(50 * time.Millisecond)
	s.Broker.Publish(job.ID, SSEEvent{Type: "experiment.progress", Data: map[string]any{"jobId": job.ID, "bestCost": 42.0}})

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if bytes.Contains(rec.buf.Bytes(), []byte("event: experiment.progress")) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !bytes.Contains(rec.buf.Bytes(), []byte("event: experiment.progress")) {
		t.Fatalf("SSE did not contain expected event. Body: %s", rec.buf.String())
	}
	if !bytes.Contains(rec.buf.Bytes(), []byte("event: heartbeat")) {
		t.Fatalf("SSE missing heartbeat. Body: %s", rec.buf.String())
	}
	cancel()
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("handler did not exit after cancel")
	}
}
