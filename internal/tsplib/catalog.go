package tsplib

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Catalog holds every parseable .tsp instance found in a directory, joined
// with known optimal tour lengths from a JSON file (instance name → length).
type Catalog struct {
	instances map[string]*Instance
}

// LoadCatalog parses all .tsp files under dir. Files that fail to parse are
// skipped with a warning; a missing or unreadable optima file only means
// instances carry no known optimum. optimaPath may be empty.
func LoadCatalog(dir, optimaPath string) (*Catalog, error) {
	if dir == "" {
		return &Catalog{instances: map[string]*Instance{}}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("tsplib: reading instance dir: %w", err)
	}
	optima := loadOptima(optimaPath)

	c := &Catalog{instances: map[string]*Instance{}}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".tsp" {
			continue
		}
		in, err := ParseFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Printf("tsplib: skipping %s: %v", e.Name(), err)
			continue
		}
		if in.Name == "" {
			in.Name = strings.TrimSuffix(e.Name(), ".tsp")
		}
		if opt, ok := optima[in.Name]; ok {
			v := opt
			in.Optimal = &v
		}
		c.instances[in.Name] = in
	}
	log.Printf("tsplib: catalog loaded %d instances from %s", len(c.instances), dir)
	return c, nil
}

func loadOptima(path string) map[string]float64 {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("tsplib: optimal results file unavailable: %v", err)
		return nil
	}
	optima := map[string]float64{}
	if err := json.Unmarshal(raw, &optima); err != nil {
		log.Printf("tsplib: invalid optimal results JSON %s: %v", path, err)
		return nil
	}
	return optima
}

// Get returns the instance with the given name.
func (c *Catalog) Get(name string) (*Instance, bool) {
	in, ok := c.instances[name]
	return in, ok
}

// Names lists loaded instance names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.instances))
	for n := range c.instances {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len reports how many instances loaded successfully.
func (c *Catalog) Len() int { return len(c.instances) }
