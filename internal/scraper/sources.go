package scraper

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Source describes one listing feed to scrape. Params are appended to
// every page request (proxy keys, rendering flags and the like).
type Source struct {
	Name     string            `yaml:"name"`
	BaseURL  string            `yaml:"base_url"`
	Params   map[string]string `yaml:"params,omitempty"`
	MaxPages int               `yaml:"max_pages,omitempty"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads source definitions from a YAML file.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scraper: read sources file %s", path)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "scraper: parse sources file %s", path)
	}
	if len(f.Sources) == 0 {
		return nil, eris.Errorf("scraper: no sources defined in %s", path)
	}

	for i := range f.Sources {
		if f.Sources[i].BaseURL == "" {
			return nil, eris.Errorf("scraper: source %q missing base_url", f.Sources[i].Name)
		}
	}
	return f.Sources, nil
}
