package model

import (
	"time"

	"github.com/google/uuid"
)

// JobTemplate is a reusable job: requirements, selected stock and options,
// without any optimization result.
type JobTemplate struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
	Requirements []CutRequirement `json:"requirements"`
	Stocks       []StockOption    `json:"stocks"`
	Options      Options          `json:"options"`
}

// NewJobTemplate copies the given job data into a new template.
func NewJobTemplate(name, description string, reqs []CutRequirement, stocks []StockOption, opts Options) JobTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return JobTemplate{
		ID:           uuid.New().String()[:8],
		Name:         name,
		Description:  description,
		CreatedAt:    now,
		UpdatedAt:    now,
		Requirements: copyRequirements(reqs),
		Stocks:       copyStocks(stocks),
		Options:      opts,
	}
}

// Instantiate returns copies of the template's requirements and stocks.
// Requirements get new IDs; stocks keep theirs so every run of a template
// sees the same catalog.
func (t JobTemplate) Instantiate() ([]CutRequirement, []StockOption, Options) {
	reqs := make([]CutRequirement, len(t.Requirements))
	for i, r := range t.Requirements {
		reqs[i] = NewCutRequirement(r.Label, r.Diameter, r.Length, r.Quantity)
	}
	stocks := copyStocks(t.Stocks)
	return reqs, stocks, t.Options
}

// TemplateStore holds a collection of job templates.
type TemplateStore struct {
	Templates []JobTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []JobTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t JobTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *JobTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *JobTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns the template names.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

func copyRequirements(reqs []CutRequirement) []CutRequirement {
	if reqs == nil {
		return []CutRequirement{}
	}
	cp := make([]CutRequirement, len(reqs))
	copy(cp, reqs)
	return cp
}

func copyStocks(stocks []StockOption) []StockOption {
	if stocks == nil {
		return []StockOption{}
	}
	cp := make([]StockOption, len(stocks))
	copy(cp, stocks)
	return cp
}
