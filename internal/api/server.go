package api

import (
	"os"
	"strings"

	"tsplab/internal/auth"
	"tsplab/internal/jobs"
	"tsplab/internal/store"
	"tsplab/internal/tsplib"
)

type Server struct {
	Store   store.Store
	Catalog *tsplib.Catalog
	Auth    *auth.Verifier
	Broker  EventBroker
}

// NewServer creates a Server. If DATABASE_URL is unset, uses in-memory store.
// The instance catalog is loaded from DATA_DIR with known optima from
// OPTIMA_PATH; both are optional.
func NewServer() (*Server, error) {
	dsn := os.Getenv("DATABASE_URL")
	var s store.Store
	if strings.TrimSpace(dsn) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		s = sp
	}
	catalog, err := tsplib.LoadCatalog(os.Getenv("DATA_DIR"), os.Getenv("OPTIMA_PATH"))
	if err != nil {
		return nil, err
	}
	// Broker selection
	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}
	return &Server{Store: s, Catalog: catalog, Auth: auth.NewVerifierFromEnv(), Broker: broker}, nil
}

// NewExperimentWorker creates a background worker for queued experiment jobs.
func (s *Server) NewExperimentWorker() *jobs.Worker {
	w := jobs.NewWorker(s.Store, s.Catalog)
	w.Publish = func(jobID, evtType string, data map[string]any) {
		s.Broker.Publish(jobID, SSEEvent{Type: evtType, Data: data})
	}
	return w
}
