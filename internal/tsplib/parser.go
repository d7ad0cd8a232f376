package tsplib

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// ParseFile reads and parses a TSPLIB .tsp file.
func ParseFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	in, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// Parse reads a TSPLIB document: header fields, then NODE_COORD_SECTION or
// EDGE_WEIGHT_SECTION, optionally DISPLAY_DATA_SECTION. It builds the
// distance matrix for the declared EDGE_WEIGHT_TYPE before returning.
// Individual malformed coordinate records are skipped with a warning;
// structural problems (unknown types, missing sections) are errors.
func Parse(r io.Reader) (*Instance, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content := string(raw)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("tsplib: empty document")
	}
	lines := strings.Split(content, "\n")

	in := &Instance{
		Name:             fieldValue(lines, "NAME"),
		Type:             fieldValue(lines, "TYPE"),
		Comment:          fieldValue(lines, "COMMENT"),
		EdgeWeightType:   fieldValue(lines, "EDGE_WEIGHT_TYPE"),
		EdgeWeightFormat: fieldValue(lines, "EDGE_WEIGHT_FORMAT"),
	}
	dim := fieldValue(lines, "DIMENSION")
	if dim == "" {
		return nil, fmt.Errorf("tsplib: missing DIMENSION field")
	}
	n, err := strconv.Atoi(dim)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("tsplib: invalid DIMENSION value %q", dim)
	}
	in.Dimension = n
	if in.EdgeWeightType == "" {
		return nil, fmt.Errorf("tsplib: missing EDGE_WEIGHT_TYPE field")
	}

	switch in.EdgeWeightType {
	case WeightExplicit:
		values, err := readWeightSection(lines)
		if err != nil {
			return nil, err
		}
		in.Matrix, err = explicitMatrix(in.EdgeWeightFormat, values, n)
		if err != nil {
			return nil, err
		}
	case WeightEuc2D, WeightCeil2D, WeightATT, WeightGeo:
		in.Coords = readCoordSection(lines, "NODE_COORD_SECTION")
		if len(in.Coords) == 0 {
			return nil, fmt.Errorf("tsplib: missing NODE_COORD_SECTION for %s instance", in.EdgeWeightType)
		}
		if len(in.Coords) != n {
			log.Printf("tsplib: %s declares DIMENSION %d but has %d coordinates; using %d",
				in.Name, n, len(in.Coords), len(in.Coords))
			in.Dimension = len(in.Coords)
		}
		in.Matrix, err = coordMatrix(in.EdgeWeightType, in.Coords)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("tsplib: unsupported EDGE_WEIGHT_TYPE %q", in.EdgeWeightType)
	}

	if fieldValue(lines, "DISPLAY_DATA_TYPE") == "TWOD_DISPLAY" {
		in.DisplayCoords = readCoordSection(lines, "DISPLAY_DATA_SECTION")
	}
	return in, nil
}

// fieldValue extracts "KEY : value" header fields. Returns "" when absent.
func fieldValue(lines []string, field string) string {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, field) {
			continue
		}
		rest := strings.TrimPrefix(trimmed, field)
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, ":") {
			continue
		}
		return strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return ""
}

func readCoordSection(lines []string, section string) [][2]float64 {
	var coords [][2]float64
	inSection := false
	for _, line := range lines {
		if strings.Contains(line, section) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "EOF" || strings.HasSuffix(trimmed, "_SECTION") {
			break
		}
		parts := strings.Fields(trimmed)
		if len(parts) < 3 {
			continue
		}
		x, errX := strconv.ParseFloat(parts[1], 64)
		y, errY := strconv.ParseFloat(parts[2], 64)
		if errX != nil || errY != nil {
			log.Printf("tsplib: skipping malformed coordinate line %q", trimmed)
			continue
		}
		coords = append(coords, [2]float64{x, y})
	}
	return coords
}

func readWeightSection(lines []string) ([]int, error) {
	var values []int
	inSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "EOF" || strings.Contains(line, "DISPLAY_DATA_SECTION") || strings.Contains(line, "NODE_COORD_SECTION") {
			break
		}
		if strings.Contains(line, "EDGE_WEIGHT_SECTION") {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		for _, tok := range strings.Fields(trimmed) {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("tsplib: non-integer weight %q", tok)
			}
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("tsplib: missing or empty EDGE_WEIGHT_SECTION")
	}
	return values, nil
}
