package jobboard

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/garnizeh/rozgar/pkg/models"
)

type seedFile struct {
	Jobs []models.Job `yaml:"jobs"`
}

// LoadSeed reads the initial job list from a YAML file in fsys.
func LoadSeed(fsys fs.FS, name string) ([]models.Job, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read job seed %s: %w", name, err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("parse job seed %s: %w", name, err)
	}
	seen := make(map[int64]bool, len(sf.Jobs))
	for _, j := range sf.Jobs {
		if j.ID <= 0 || seen[j.ID] {
			return nil, fmt.Errorf("job seed %s: invalid or duplicate id %d", name, j.ID)
		}
		if j.Progress < 0 || j.Progress > 100 {
			return nil, fmt.Errorf("job seed %s: job %d progress out of range", name, j.ID)
		}
		seen[j.ID] = true
	}
	return sf.Jobs, nil
}
