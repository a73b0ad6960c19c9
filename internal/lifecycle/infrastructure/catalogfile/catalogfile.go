// Package catalogfile reads and writes stage catalogs as YAML.
package catalogfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/security"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout. A missing section keeps the stock definition.
type File struct {
	Lead            *Pipeline       `yaml:"lead,omitempty"`
	Project         *Pipeline       `yaml:"project,omitempty"`
	PaymentTemplate []ScheduleEntry `yaml:"payment_template,omitempty"`
}

// Pipeline is the ordered stage list of one subject type.
type Pipeline struct {
	Stages []domain.StageDefinition `yaml:"stages"`
}

// ScheduleEntry mirrors domain.ScheduleDefinition with the percentage kept
// as text so values like 12.5 survive without float rounding.
type ScheduleEntry struct {
	Label       string           `yaml:"label"`
	Stage       string           `yaml:"stage,omitempty"`
	Type        domain.EntryType `yaml:"type"`
	FixedAmount int64            `yaml:"fixed_amount,omitempty"`
	Percentage  string           `yaml:"percentage,omitempty"`
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*domain.StageCatalog, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid catalog yaml: %w", err)
	}
	return f.Build()
}

// Load reads a catalog file.
func Load(path string) (*domain.StageCatalog, error) {
	data, err := security.ReadDocument(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	catalog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return catalog, nil
}

// LoadOrDefault loads path, or returns the stock catalog when path is empty.
func LoadOrDefault(path string) (*domain.StageCatalog, error) {
	if path == "" {
		return domain.DefaultStageCatalog(), nil
	}
	return Load(path)
}

// Build validates the file and turns it into a catalog.
func (f File) Build() (*domain.StageCatalog, error) {
	leadStages := domain.DefaultLeadStages()
	if f.Lead != nil {
		leadStages = f.Lead.Stages
	}
	projectStages := domain.DefaultProjectStages()
	if f.Project != nil {
		projectStages = f.Project.Stages
	}

	lead, err := domain.NewCatalog(domain.SubjectTypeLead, leadStages)
	if err != nil {
		return nil, err
	}
	project, err := domain.NewCatalog(domain.SubjectTypeProject, projectStages)
	if err != nil {
		return nil, err
	}

	template := domain.DefaultPaymentTemplate()
	if f.PaymentTemplate != nil {
		template = make([]domain.ScheduleDefinition, 0, len(f.PaymentTemplate))
		for i, e := range f.PaymentTemplate {
			def, err := e.Definition()
			if err != nil {
				return nil, fmt.Errorf("payment_template[%d]: %w", i, err)
			}
			template = append(template, def)
		}
	}
	return domain.NewStageCatalog(lead, project, template)
}

// Definition converts the entry into a domain definition.
func (e ScheduleEntry) Definition() (domain.ScheduleDefinition, error) {
	def := domain.ScheduleDefinition{
		Label:       e.Label,
		StageKey:    e.Stage,
		Type:        e.Type,
		FixedAmount: e.FixedAmount,
	}
	if e.Percentage != "" {
		p, err := domain.ParsePercent(e.Percentage)
		if err != nil {
			return def, err
		}
		def.Percentage = p
	}
	return def, nil
}

// ParseSchedule reads a bare list of schedule entries, the format used for
// per-project custom schedules.
func ParseSchedule(data []byte) ([]domain.ScheduleDefinition, error) {
	var entries []ScheduleEntry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("schedule file is empty")
		}
		return nil, fmt.Errorf("invalid schedule yaml: %w", err)
	}
	defs := make([]domain.ScheduleDefinition, 0, len(entries))
	for i, e := range entries {
		def, err := e.Definition()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// FromCatalog is the inverse of Build.
func FromCatalog(c *domain.StageCatalog) File {
	f := File{}
	if stages, err := c.StagesFor(domain.SubjectTypeLead); err == nil {
		f.Lead = &Pipeline{Stages: stages}
	}
	if stages, err := c.StagesFor(domain.SubjectTypeProject); err == nil {
		f.Project = &Pipeline{Stages: stages}
	}
	for _, def := range c.PaymentTemplate() {
		e := ScheduleEntry{
			Label:       def.Label,
			Stage:       def.StageKey,
			Type:        def.Type,
			FixedAmount: def.FixedAmount,
		}
		if def.Type == domain.EntryPercentage {
			e.Percentage = def.Percentage.String()
		}
		f.PaymentTemplate = append(f.PaymentTemplate, e)
	}
	return f
}

// Marshal renders a catalog as YAML.
func Marshal(c *domain.StageCatalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromCatalog(c)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
