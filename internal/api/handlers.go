package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tsplab/internal/experiment"
	"tsplab/internal/metrics"
	"tsplab/internal/model"
	"tsplab/internal/store"
	"tsplab/internal/tsplib"
)

// SolveHandler handles POST /v1/solve: one algorithm, one instance, one run.
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateSolveRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}
	inst, err := s.resolveInstance(req)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Instance not found", err.Error(), r.URL.Path)
		return
	}
	solver, err := experiment.BuildSolver(inst, req.Algorithm, req.Seed)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid algorithm", err.Error(), r.URL.Path)
		return
	}
	res, err := solver.Solve(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Solve failed", err.Error(), r.URL.Path)
		return
	}
	metrics.ObserveSolverRun(req.Algorithm.Name, res.Duration, res.BestCost)
	resp := model.SolveResponse{
		Instance:   inst.Name,
		Algorithm:  req.Algorithm.Name,
		Seed:       req.Seed,
		BestCost:   res.BestCost,
		BestTour:   res.BestTour,
		History:    res.History,
		DurationMs: float64(res.Duration.Nanoseconds()) / 1e6,
	}
	id, err := s.Store.SaveSolve(r.Context(), resp)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "result": resp})
}

// SolveByIDHandler handles GET /v1/solves/{id}
func (s *Server) SolveByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/solves/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	res, err := s.Store.GetSolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Solve not found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Lookup failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// InstancesHandler handles GET /v1/instances
func (s *Server) InstancesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	names := s.Catalog.Names()
	items := make([]model.InstanceOut, 0, len(names))
	for _, name := range names {
		inst, _ := s.Catalog.Get(name)
		items = append(items, model.InstanceOut{
			Name:           inst.Name,
			Dimension:      inst.Dimension,
			EdgeWeightType: inst.EdgeWeightType,
			Comment:        inst.Comment,
			Optimal:        inst.Optimal,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// InstanceByNameHandler handles GET /v1/instances/{name}
func (s *Server) InstanceByNameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/v1/instances/")
	if name == "" || strings.Contains(name, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing name", r.URL.Path)
		return
	}
	inst, ok := s.Catalog.Get(name)
	if !ok {
		writeProblem(w, http.StatusNotFound, "Instance not found", name, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":           inst.Name,
		"comment":        inst.Comment,
		"dimension":      inst.Dimension,
		"edgeWeightType": inst.EdgeWeightType,
		"optimal":        inst.Optimal,
	})
}

// ExperimentsHandler handles POST/GET /v1/experiments
func (s *Server) ExperimentsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		p := s.getPrincipal(r)
		if !p.IsAdmin() {
			writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
			return
		}
		var req model.ExperimentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if len(req.Configs) == 0 {
			writeProblem(w, http.StatusBadRequest, "Empty experiment", "configs required", r.URL.Path)
			return
		}
		for i := range req.Configs {
			if req.Configs[i].Name == "" {
				writeProblem(w, http.StatusBadRequest, "Invalid config", fmt.Sprintf("configs[%d] has no name", i), r.URL.Path)
				return
			}
			if err := experiment.ValidateConfig(req.Configs[i]); err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid config", err.Error(), r.URL.Path)
				return
			}
		}
		job, err := s.Store.CreateJob(r.Context(), req.Configs)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create job failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusAccepted, job)
	case http.MethodGet:
		status := r.URL.Query().Get("status")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, err := s.Store.ListJobs(r.Context(), status, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List jobs failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ExperimentByIDHandler handles GET /v1/experiments/{id} and its
// /events/stream (SSE) and /ws subresources.
func (s *Server) ExperimentByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/experiments/")
	if rest == r.URL.Path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) > 2 && parts[1] == "events" && parts[2] == "stream" {
		s.streamJobEvents(w, r, id)
		return
	}
	if len(parts) > 1 && parts[1] == "ws" {
		s.ProgressWSHandler(w, r, id)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	job, err := s.Store.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Job not found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Lookup failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// streamJobEvents serves SSE for a job's progress events.
func (s *Server) streamJobEvents(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, err := s.Store.GetJob(r.Context(), id); err != nil {
		writeProblem(w, http.StatusNotFound, "Job not found", "", r.URL.Path)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)
	// initial heartbeat
	fmt.Fprintf(w, "event: heartbeat\n")
	fmt.Fprintf(w, "data: {\"jobId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
	flusher.Flush()
	notify := r.Context().Done()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			b, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", string(b))
			flusher.Flush()
		case <-time.After(15 * time.Second):
			fmt.Fprintf(w, "event: heartbeat\n")
			fmt.Fprintf(w, "data: {\"jobId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
			flusher.Flush()
		}
	}
}

// ResultsHandler handles GET /v1/results: summaries across completed jobs.
func (s *Server) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, err := s.Store.ListSummaries(r.Context(), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List results failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "instances": s.Catalog.Len()})
}

func (s *Server) resolveInstance(req model.SolveRequest) (*tsplib.Instance, error) {
	if req.Instance != "" {
		inst, ok := s.Catalog.Get(req.Instance)
		if !ok {
			return nil, fmt.Errorf("instance %q not in catalog", req.Instance)
		}
		return inst, nil
	}
	return instanceFromInline(req.Inline)
}

func instanceFromInline(in *model.InstanceIn) (*tsplib.Instance, error) {
	if len(in.Coords) > 0 {
		inst, err := tsplib.FromCoords(in.EdgeWeightType, in.Coords)
		if err != nil {
			return nil, err
		}
		inst.Name = in.Name
		return inst, nil
	}
	n := in.Dimension
	inst, err := tsplib.FromMatrix(in.EdgeWeightFormat, in.Weights, n)
	if err != nil {
		return nil, err
	}
	inst.Name = in.Name
	return inst, nil
}
