package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"tsplab/internal/buildinfo"
)

func (s *Server) VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Info())
}

func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"PORT":             os.Getenv("PORT"),
			"AUTH_MODE":        os.Getenv("AUTH_MODE"),
			"DATA_DIR":         os.Getenv("DATA_DIR"),
			"OPTIMA_PATH":      os.Getenv("OPTIMA_PATH"),
			"RATE_RPS":         os.Getenv("RATE_RPS"),
			"RATE_BURST":       os.Getenv("RATE_BURST"),
			"JOB_FETCH_LIMIT":  os.Getenv("JOB_FETCH_LIMIT"),
			"HAS_DATABASE_URL": os.Getenv("DATABASE_URL") != "",
			"HAS_REDIS_URL":    os.Getenv("REDIS_URL") != "",
		},
		"instances": s.Catalog.Len(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}
