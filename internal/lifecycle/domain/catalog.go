package domain

import (
	"fmt"
	"strings"
)

// SubjectType distinguishes leads from projects.
type SubjectType string

const (
	SubjectTypeLead    SubjectType = "lead"
	SubjectTypeProject SubjectType = "project"
)

// String returns the string representation of the subject type.
func (t SubjectType) String() string {
	return string(t)
}

// IsValid returns true if the subject type is known.
func (t SubjectType) IsValid() bool {
	return t == SubjectTypeLead || t == SubjectTypeProject
}

// ParseSubjectType parses a string into a SubjectType.
func ParseSubjectType(s string) (SubjectType, error) {
	t := SubjectType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", invalidInput("unknown subject type %q", s)
	}
	return t, nil
}

// SubStageKind is the completion predicate of a sub-stage.
type SubStageKind string

const (
	SubStageBinary     SubStageKind = "binary"
	SubStagePercentage SubStageKind = "percentage"
)

// IsValid returns true if the kind is known.
func (k SubStageKind) IsValid() bool {
	return k == SubStageBinary || k == SubStagePercentage
}

// SubStageDefinition is a single milestone task inside a group.
type SubStageDefinition struct {
	ID   string       `yaml:"id" json:"id"`
	Name string       `yaml:"name" json:"name"`
	Kind SubStageKind `yaml:"kind" json:"kind"`
}

// SubStageGroup is a named milestone made of sub-stages.
type SubStageGroup struct {
	Name      string               `yaml:"name" json:"name"`
	SubStages []SubStageDefinition `yaml:"sub_stages" json:"sub_stages"`
}

// StageDefinition is one ordered phase of a subject's lifecycle.
type StageDefinition struct {
	Key          string          `yaml:"key" json:"key"`
	Name         string          `yaml:"name" json:"name"`
	Index        int             `yaml:"-" json:"index"`
	ExpectedDays int             `yaml:"expected_days,omitempty" json:"expected_days,omitempty"`
	Groups       []SubStageGroup `yaml:"groups,omitempty" json:"groups,omitempty"`
}

// SubStageRef locates a sub-stage inside its catalog.
type SubStageRef struct {
	StageKey   string
	StageIndex int
	GroupIndex int
	Definition SubStageDefinition
}

// Catalog is the ordered stage list of one subject type.
type Catalog struct {
	subjectType SubjectType
	stages      []StageDefinition
	index       map[string]int
	subStages   map[string]SubStageRef
}

// NewCatalog validates and indexes an ordered stage list.
func NewCatalog(subjectType SubjectType, stages []StageDefinition) (*Catalog, error) {
	if !subjectType.IsValid() {
		return nil, fmt.Errorf("unknown subject type %q", subjectType)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("%s catalog has no stages", subjectType)
	}

	c := &Catalog{
		subjectType: subjectType,
		stages:      make([]StageDefinition, len(stages)),
		index:       make(map[string]int, len(stages)),
		subStages:   make(map[string]SubStageRef),
	}

	for i, stage := range stages {
		if stage.Key == "" {
			return nil, fmt.Errorf("%s stage %d has no key", subjectType, i)
		}
		if _, dup := c.index[stage.Key]; dup {
			return nil, fmt.Errorf("%s stage %q is defined twice", subjectType, stage.Key)
		}
		if stage.ExpectedDays < 0 {
			return nil, fmt.Errorf("%s stage %q has negative expected_days", subjectType, stage.Key)
		}
		stage.Index = i
		if stage.Name == "" {
			stage.Name = stage.Key
		}
		for g, group := range stage.Groups {
			if len(group.SubStages) == 0 {
				return nil, fmt.Errorf("group %q of stage %q has no sub-stages", group.Name, stage.Key)
			}
			for _, sub := range group.SubStages {
				if sub.ID == "" {
					return nil, fmt.Errorf("group %q of stage %q has a sub-stage without id", group.Name, stage.Key)
				}
				if !sub.Kind.IsValid() {
					return nil, fmt.Errorf("sub-stage %q has unknown kind %q", sub.ID, sub.Kind)
				}
				if _, dup := c.subStages[sub.ID]; dup {
					return nil, fmt.Errorf("sub-stage %q is defined twice", sub.ID)
				}
				c.subStages[sub.ID] = SubStageRef{
					StageKey:   stage.Key,
					StageIndex: i,
					GroupIndex: g,
					Definition: sub,
				}
			}
		}
		c.stages[i] = stage
		c.index[stage.Key] = i
	}

	return c, nil
}

// SubjectType returns the subject type this catalog describes.
func (c *Catalog) SubjectType() SubjectType { return c.subjectType }

// Stages returns a copy of the ordered stage list.
func (c *Catalog) Stages() []StageDefinition {
	out := make([]StageDefinition, len(c.stages))
	copy(out, c.stages)
	return out
}

// Len returns the number of stages.
func (c *Catalog) Len() int { return len(c.stages) }

// Initial returns the first stage.
func (c *Catalog) Initial() StageDefinition { return c.stages[0] }

// Terminal returns the last stage.
func (c *Catalog) Terminal() StageDefinition { return c.stages[len(c.stages)-1] }

// Stage returns the stage at the given ordinal.
func (c *Catalog) Stage(index int) StageDefinition { return c.stages[index] }

// IndexOf returns the ordinal of a stage key.
func (c *Catalog) IndexOf(key string) (int, error) {
	i, ok := c.index[key]
	if !ok {
		return -1, unknownStage(c.subjectType, key)
	}
	return i, nil
}

// SubStage looks up a sub-stage by id.
func (c *Catalog) SubStage(id string) (SubStageRef, error) {
	ref, ok := c.subStages[id]
	if !ok {
		return SubStageRef{}, ErrSubStageNotFound
	}
	return ref, nil
}

// StageCatalog holds the catalogs of every subject type plus the project
// payment-schedule template.
type StageCatalog struct {
	catalogs map[SubjectType]*Catalog
	template []ScheduleDefinition
}

// NewStageCatalog builds a StageCatalog from per-type catalogs.
func NewStageCatalog(lead, project *Catalog, template []ScheduleDefinition) (*StageCatalog, error) {
	if lead == nil || project == nil {
		return nil, fmt.Errorf("both lead and project catalogs are required")
	}
	if lead.subjectType != SubjectTypeLead || project.subjectType != SubjectTypeProject {
		return nil, fmt.Errorf("catalog subject types do not match")
	}
	if err := ValidateScheduleDefinitions(template); err != nil {
		return nil, fmt.Errorf("payment template: %w", err)
	}
	for _, def := range template {
		if def.StageKey == "" {
			continue
		}
		if _, err := project.IndexOf(def.StageKey); err != nil {
			return nil, fmt.Errorf("payment template entry %q: %w", def.Label, err)
		}
	}
	return &StageCatalog{
		catalogs: map[SubjectType]*Catalog{
			SubjectTypeLead:    lead,
			SubjectTypeProject: project,
		},
		template: cloneDefinitions(template),
	}, nil
}

// For returns the catalog of a subject type.
func (c *StageCatalog) For(subjectType SubjectType) (*Catalog, error) {
	catalog, ok := c.catalogs[subjectType]
	if !ok {
		return nil, invalidInput("unknown subject type %q", subjectType)
	}
	return catalog, nil
}

// StagesFor returns the ordered stage definitions of a subject type.
func (c *StageCatalog) StagesFor(subjectType SubjectType) ([]StageDefinition, error) {
	catalog, err := c.For(subjectType)
	if err != nil {
		return nil, err
	}
	return catalog.Stages(), nil
}

// IndexOf returns the ordinal of a stage within the subject type's catalog.
func (c *StageCatalog) IndexOf(subjectType SubjectType, key string) (int, error) {
	catalog, err := c.For(subjectType)
	if err != nil {
		return -1, err
	}
	return catalog.IndexOf(key)
}

// PaymentTemplate returns the default project payment schedule.
func (c *StageCatalog) PaymentTemplate() []ScheduleDefinition {
	return cloneDefinitions(c.template)
}

// DefaultLeadStages is the stock lead pipeline.
func DefaultLeadStages() []StageDefinition {
	return []StageDefinition{
		{Key: "new", Name: "New Lead"},
		{Key: "contacted", Name: "Contacted"},
		{Key: "requirement_gathering", Name: "Requirement Gathering"},
		{Key: "floor_plan_creation", Name: "Floor Plan Creation"},
		{Key: "quotation_shared", Name: "Quotation Shared"},
		{Key: "booked", Name: "Booked"},
	}
}

// DefaultProjectStages is the stock project pipeline.
func DefaultProjectStages() []StageDefinition {
	return []StageDefinition{
		{
			Key: "kickoff", Name: "Project Kickoff", ExpectedDays: 7,
			Groups: []SubStageGroup{{
				Name: "Booking",
				SubStages: []SubStageDefinition{
					{ID: "booking_amount_received", Name: "Booking amount received", Kind: SubStageBinary},
					{ID: "agreement_signed", Name: "Agreement signed", Kind: SubStageBinary},
				},
			}},
		},
		{
			Key: "site_measurement", Name: "Site Measurement", ExpectedDays: 7,
			Groups: []SubStageGroup{{
				Name: "Measurement",
				SubStages: []SubStageDefinition{
					{ID: "site_visit_done", Name: "Site visit done", Kind: SubStageBinary},
					{ID: "measurements_uploaded", Name: "Measurements uploaded", Kind: SubStageBinary},
				},
			}},
		},
		{
			Key: "design", Name: "Design", ExpectedDays: 21,
			Groups: []SubStageGroup{
				{
					Name: "Floor Plan",
					SubStages: []SubStageDefinition{
						{ID: "floor_plan_draft", Name: "Floor plan draft", Kind: SubStageBinary},
						{ID: "floor_plan_approved", Name: "Floor plan approved", Kind: SubStageBinary},
					},
				},
				{
					Name: "3D Design",
					SubStages: []SubStageDefinition{
						{ID: "renders_progress", Name: "3D renders", Kind: SubStagePercentage},
						{ID: "design_signoff", Name: "Design sign-off", Kind: SubStageBinary},
					},
				},
			},
		},
		{
			Key: "quotation_finalization", Name: "Quotation Finalization", ExpectedDays: 7,
			Groups: []SubStageGroup{{
				Name: "Final Quote",
				SubStages: []SubStageDefinition{
					{ID: "boq_prepared", Name: "Bill of quantities prepared", Kind: SubStageBinary},
					{ID: "quote_signed", Name: "Final quote signed", Kind: SubStageBinary},
				},
			}},
		},
		{
			Key: "production", Name: "Production", ExpectedDays: 30,
			Groups: []SubStageGroup{{
				Name: "Factory",
				SubStages: []SubStageDefinition{
					{ID: "production_progress", Name: "Production progress", Kind: SubStagePercentage},
					{ID: "quality_check", Name: "Quality check", Kind: SubStageBinary},
				},
			}},
		},
		{
			Key: "site_execution", Name: "Site Execution", ExpectedDays: 30,
			Groups: []SubStageGroup{{
				Name: "Installation",
				SubStages: []SubStageDefinition{
					{ID: "civil_work", Name: "Civil work", Kind: SubStagePercentage},
					{ID: "installation", Name: "Installation", Kind: SubStagePercentage},
				},
			}},
		},
		{
			Key: "handover", Name: "Handover", ExpectedDays: 7,
			Groups: []SubStageGroup{{
				Name: "Handover",
				SubStages: []SubStageDefinition{
					{ID: "snag_closure", Name: "Snag list closed", Kind: SubStageBinary},
					{ID: "handover_signed", Name: "Handover signed", Kind: SubStageBinary},
				},
			}},
		},
		{Key: "completed", Name: "Completed"},
	}
}

// DefaultPaymentTemplate is the stock project payment schedule.
func DefaultPaymentTemplate() []ScheduleDefinition {
	return []ScheduleDefinition{
		{Label: "Booking amount", StageKey: "kickoff", Type: EntryFixed, FixedAmount: 25000},
		{Label: "Design sign-off", StageKey: "design", Type: EntryPercentage, Percentage: mustPercent("10")},
		{Label: "Production start", StageKey: "production", Type: EntryPercentage, Percentage: mustPercent("50")},
		{Label: "Before handover", StageKey: "handover", Type: EntryRemaining},
	}
}

// DefaultStageCatalog returns the stock catalogs.
func DefaultStageCatalog() *StageCatalog {
	lead, err := NewCatalog(SubjectTypeLead, DefaultLeadStages())
	if err != nil {
		panic(err)
	}
	project, err := NewCatalog(SubjectTypeProject, DefaultProjectStages())
	if err != nil {
		panic(err)
	}
	catalog, err := NewStageCatalog(lead, project, DefaultPaymentTemplate())
	if err != nil {
		panic(err)
	}
	return catalog
}
