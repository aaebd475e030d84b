package memory

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/pathflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Fixture describes a set of models in YAML.
//
//	current: inst
//	models:
//	  - id: root
//	    nodes: [N1, N2]
//	    groups:
//	      - id: G1
//	        members: [N1, N2]
//	  - id: inst
//	    parent: root
//	    nodes: [N1]
//	    groups:
//	      - id: G1
//	        region: {x: 0, y: 0, width: 200, height: 100}
type Fixture struct {
	Current string         `yaml:"current"`
	Models  []ModelFixture `yaml:"models"`
}

// ModelFixture describes one model.
type ModelFixture struct {
	ID     string         `yaml:"id"`
	Parent string         `yaml:"parent,omitempty"`
	Nodes  []string       `yaml:"nodes,omitempty"`
	Groups []GroupFixture `yaml:"groups,omitempty"`
}

// GroupFixture describes one group. Region is where it is drawn on the canvas.
type GroupFixture struct {
	ID      string       `yaml:"id"`
	Parent  string       `yaml:"parent,omitempty"`
	Members []string     `yaml:"members,omitempty"`
	Region  *domain.Rect `yaml:"region,omitempty"`
}

// DecodeFixture reads a YAML fixture.
func DecodeFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("failed to decode model fixture: %w", err)
	}
	return f, nil
}

// LoadModel reads a YAML fixture file and builds the model set.
func LoadModel(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model fixture: %w", err)
	}
	defer file.Close()

	f, err := DecodeFixture(file)
	if err != nil {
		return nil, err
	}
	return NewModel(f)
}
