package experiment

import (
	"encoding/json"
	"log"
	"os"
)

// Collector appends summaries to a JSON results file. Existing entries are
// preserved across invocations; an unreadable file is replaced rather than
// aborting the batch.
type Collector struct {
	Path string
}

// Append merges the summaries into the file at Path.
func (c *Collector) Append(summaries []Summary) error {
	existing := c.load()
	existing = append(existing, summaries...)
	raw, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path, raw, 0o644)
}

func (c *Collector) load() []Summary {
	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil
	}
	var out []Summary
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Printf("experiment: %s is not valid results JSON, starting fresh: %v", c.Path, err)
		return nil
	}
	return out
}
