// Package plan defines the fixed subscription tiers and their limits.
// There are only three plans, so they live in code rather than a table.
package plan

import (
	"fmt"
	"time"
)

// Plan describes the limits of one subscription tier.
type Plan struct {
	Key           string
	Name          string
	PriceUSD      int
	MaxResponses  int
	// MaxProjects is 0 for unlimited.
	MaxProjects   int
	// MaxDurationSeconds caps a single recording's length.
	MaxDurationSeconds int
	// Languages is nil when every supported language is allowed.
	Languages     []string
	ExportFormats []string
	// Batch enables batch transcription endpoints.
	Batch         bool
	RetentionDays int
	ShowBranding  bool
	CustomThemes  bool
	CustomDomains bool
}

var plans = map[string]Plan{
	"free": {
		Key:                "free",
		Name:               "Free",
		PriceUSD:           0,
		MaxResponses:       50,
		MaxProjects:        1,
		MaxDurationSeconds: 60,
		Languages:          []string{"es"},
		ExportFormats:      []string{"csv"},
		Batch:              false,
		RetentionDays:      30,
		ShowBranding:       true,
	},
	"freelancer": {
		Key:                "freelancer",
		Name:               "Freelancer",
		PriceUSD:           29,
		MaxResponses:       500,
		MaxProjects:        5,
		MaxDurationSeconds: 120,
		Languages:          []string{"es", "en", "pt", "fr", "de", "it", "ja", "ko", "zh"},
		ExportFormats:      []string{"csv", "xlsx"},
		Batch:              true,
		RetentionDays:      90,
	},
	"pro": {
		Key:                "pro",
		Name:               "Pro",
		PriceUSD:           149,
		MaxResponses:       5000,
		MaxProjects:        0,
		MaxDurationSeconds: 300,
		Languages:          nil,
		ExportFormats:      []string{"csv", "xlsx", "api"},
		Batch:              true,
		RetentionDays:      365,
		CustomThemes:       true,
		CustomDomains:      true,
	},
}

// Get returns the plan for key, falling back to the free plan for unknown keys.
func Get(key string) Plan {
	if p, ok := plans[key]; ok {
		return p
	}
	return plans["free"]
}

// AllowsLanguage reports whether the plan permits transcription in lang.
func (p Plan) AllowsLanguage(lang string) bool {
	if p.Languages == nil {
		return true
	}
	for _, l := range p.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// AllowsDuration reports whether a recording of the given length fits the plan.
func (p Plan) AllowsDuration(seconds int) bool {
	return seconds <= p.MaxDurationSeconds
}

// CurrentMonth returns the usage-accounting month key, e.g. "2026-08".
func CurrentMonth() string {
	now := time.Now().UTC()
	return fmt.Sprintf("%04d-%02d", now.Year(), int(now.Month()))
}
