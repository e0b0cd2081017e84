package ingest

import (
	"fmt"
	"path/filepath"
	"sort"

	"gopkg.in/ini.v1"
)

// Param is one section-qualified configuration key with its raw,
// unparsed value.
type Param struct {
	Name  string // "section.key"; bare "key" for the default section
	Value string
}

// HarvestParams collects key/value parameters from the run's config files
// and hands them, sorted by name, to the sink. Later files win when the
// same qualified key appears more than once. An unparsable config file is
// fatal for this pass only; the caller's log-parsing output is untouched.
// Runs without config files write no params table.
func (o *Orchestrator) HarvestParams(run, inputDir string) error {
	files, err := o.listFiles(inputDir, o.confExts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	merged := make(map[string]string)
	for _, path := range files {
		cfg, err := ini.Load(path)
		if err != nil {
			return fmt.Errorf("parsing config file %s: %w", filepath.Base(path), err)
		}
		for _, section := range cfg.Sections() {
			for _, key := range section.Keys() {
				name := key.Name()
				if section.Name() != ini.DefaultSection {
					name = section.Name() + "." + name
				}
				merged[name] = key.Value()
			}
		}
	}

	params := make([]Param, 0, len(merged))
	for name, value := range merged {
		params = append(params, Param{Name: name, Value: value})
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return o.sink.WriteParams(run, params)
}
