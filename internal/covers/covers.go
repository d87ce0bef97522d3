// Package covers assigns display cover images to new interviews.
//
// The image list ships embedded with the binary; covers are a presentation
// detail and never influence scoring.
package covers

import (
	_ "embed"
	"fmt"
	"math/rand"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed covers.yaml
var coversYAML []byte

type coverFile struct {
	Covers []string `yaml:"covers"`
}

// Picker selects a random cover image reference.
type Picker struct {
	mu     sync.Mutex
	covers []string
	rnd    *rand.Rand
}

// NewPicker parses the embedded cover list.
func NewPicker(seed int64) (*Picker, error) {
	var cf coverFile
	if err := yaml.Unmarshal(coversYAML, &cf); err != nil {
		return nil, fmt.Errorf("op=covers.parse: %w", err)
	}
	if len(cf.Covers) == 0 {
		return nil, fmt.Errorf("op=covers.parse: empty cover list")
	}
	return &Picker{covers: cf.Covers, rnd: rand.New(rand.NewSource(seed))}, nil
}

// Pick returns a random cover reference. Safe for concurrent use.
func (p *Picker) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.covers[p.rnd.Intn(len(p.covers))]
}
