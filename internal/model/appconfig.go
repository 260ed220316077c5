package model

import "time"

// AppConfig holds user-wide preferences and the defaults applied to new jobs.
type AppConfig struct {
	DefaultKerfWidth      float64       `json:"default_kerf_width"`
	DefaultWasteThreshold float64       `json:"default_waste_threshold"`
	DefaultTimeBudget     time.Duration `json:"default_time_budget"`
	DefaultStrategy       Strategy      `json:"default_strategy"`
	DefaultMinOffcut      float64       `json:"default_min_offcut"`
	AllowCustomStock      bool          `json:"allow_custom_stock"`

	RecentJobs []string `json:"recent_jobs"`
	OutputDir  string   `json:"output_dir"` // Where reports go when no path is given
}

// DefaultAppConfig returns an AppConfig matching DefaultOptions().
func DefaultAppConfig() AppConfig {
	defaults := DefaultOptions()
	return AppConfig{
		DefaultKerfWidth:      defaults.KerfWidth,
		DefaultWasteThreshold: defaults.WasteThreshold,
		DefaultTimeBudget:     defaults.TimeBudget,
		DefaultStrategy:       defaults.Strategy,
		DefaultMinOffcut:      defaults.MinReusableOffcut,
		AllowCustomStock:      defaults.AllowCustomStock,
		RecentJobs:            []string{},
		OutputDir:             ".",
	}
}

// ApplyToOptions copies the saved defaults into the given Options.
func (c AppConfig) ApplyToOptions(o *Options) {
	o.KerfWidth = c.DefaultKerfWidth
	o.WasteThreshold = c.DefaultWasteThreshold
	o.TimeBudget = c.DefaultTimeBudget
	o.Strategy = c.DefaultStrategy
	o.MinReusableOffcut = c.DefaultMinOffcut
	o.AllowCustomStock = c.AllowCustomStock
}

// maxRecentJobs bounds the recent job list.
const maxRecentJobs = 10

// AddRecentJob moves path to the front of the recent job list.
func (c *AppConfig) AddRecentJob(path string) {
	jobs := []string{path}
	for _, j := range c.RecentJobs {
		if j != path {
			jobs = append(jobs, j)
		}
	}
	if len(jobs) > maxRecentJobs {
		jobs = jobs[:maxRecentJobs]
	}
	c.RecentJobs = jobs
}
