package project

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/piwi3910/RebarCut/internal/model"
)

// DefaultTemplatePath is templates.json inside DefaultConfigDir.
func DefaultTemplatePath() string {
	return filepath.Join(DefaultConfigDir(), "templates.json")
}

// SaveTemplates writes the job template store to path.
func SaveTemplates(path string, store model.TemplateStore) error {
	return writeJSON(path, store)
}

// LoadTemplates reads the job template store at path; no file means no
// templates yet.
func LoadTemplates(path string) (model.TemplateStore, error) {
	store := model.NewTemplateStore()
	if err := readJSON(path, &store); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NewTemplateStore(), nil
		}
		return model.TemplateStore{}, err
	}
	if store.Templates == nil {
		store.Templates = []model.JobTemplate{}
	}
	return store, nil
}

func LoadDefaultTemplates() (model.TemplateStore, error) {
	return LoadTemplates(DefaultTemplatePath())
}

func SaveDefaultTemplates(store model.TemplateStore) error {
	return SaveTemplates(DefaultTemplatePath(), store)
}
