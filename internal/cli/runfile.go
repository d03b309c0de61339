package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/annealer/internal/optimization/annealing"
)

// runFile is the YAML document accepted by --config.
//
//	function: rastrigin
//	workers: 4
//	annealing:
//	  initial_temp: 100
//	  k_max: 100000
//	  interval: {lo: -5.12, hi: 5.12}
type runFile struct {
	Function  string    `yaml:"function"`
	Workers   int       `yaml:"workers"`
	Annealing yaml.Node `yaml:"annealing"`
}

// loadRunFile reads path. An empty path yields an empty file.
func loadRunFile(path string) (*runFile, error) {
	rf := &runFile{}
	if path == "" {
		return rf, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run file: %w", err)
	}
	if err := yaml.Unmarshal(data, rf); err != nil {
		return nil, fmt.Errorf("parse run file %s: %w", path, err)
	}
	return rf, nil
}

// apply overlays the annealing section on cfg. It reports whether the
// section set an interval.
func (rf *runFile) apply(cfg *annealing.Config) (bool, error) {
	if rf.Annealing.Kind == 0 {
		return false, nil
	}
	if err := rf.Annealing.Decode(cfg); err != nil {
		return false, fmt.Errorf("parse annealing section: %w", err)
	}

	var keys map[string]yaml.Node
	if err := rf.Annealing.Decode(&keys); err != nil {
		return false, fmt.Errorf("parse annealing section: %w", err)
	}
	_, hasInterval := keys["interval"]
	return hasInterval, nil
}
