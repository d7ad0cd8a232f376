package api

import (
	"errors"

	"tsplab/internal/experiment"
	"tsplab/internal/model"
)

func validateSolveRequest(req *model.SolveRequest) error {
	if req.Instance == "" && req.Inline == nil {
		return errors.New("instance or inline is required")
	}
	if req.Instance != "" && req.Inline != nil {
		return errors.New("instance and inline are mutually exclusive")
	}
	if req.Inline != nil {
		if len(req.Inline.Coords) == 0 && len(req.Inline.Weights) == 0 {
			return errors.New("inline instance needs coords or weights")
		}
		if len(req.Inline.Weights) > 0 && req.Inline.Dimension <= 0 {
			return errors.New("inline weights need a dimension")
		}
	}
	return experiment.ValidateAlgorithm(req.Algorithm)
}
