// Package forecast converts feature bundles, persisted scores and industry
// priors into per-lead close predictions and a pipeline revenue forecast.
package forecast

import (
	"fmt"
	"os"

	"leadengine_backend/internal/leads/domain"

	"gopkg.in/yaml.v3"
)

// IndustryPrior holds the historical baseline for one industry.
type IndustryPrior struct {
	CloseRate      float64 `yaml:"close_rate" json:"closeRate"`
	AvgDealValue   float64 `yaml:"avg_deal_value" json:"avgDealValue"`
	AvgDaysToClose int     `yaml:"avg_days_to_close" json:"avgDaysToClose"`
}

// Priors is the industry prior lookup table with a fallback row.
type Priors struct {
	Default    IndustryPrior
	byIndustry map[string]IndustryPrior
}

var defaultPrior = IndustryPrior{CloseRate: 0.25, AvgDealValue: 3000, AvgDaysToClose: 22}

var builtinPriors = map[string]IndustryPrior{
	domain.IndustryHomeImprovement: {CloseRate: 0.30, AvgDealValue: 5000, AvgDaysToClose: 25},
	domain.IndustryHVAC:            {CloseRate: 0.28, AvgDealValue: 3600, AvgDaysToClose: 21},
	domain.IndustryPlumbing:        {CloseRate: 0.32, AvgDealValue: 2500, AvgDaysToClose: 14},
	domain.IndustryElectrical:      {CloseRate: 0.30, AvgDealValue: 2800, AvgDaysToClose: 16},
	domain.IndustryRoofing:         {CloseRate: 0.26, AvgDealValue: 8500, AvgDaysToClose: 30},
	domain.IndustryLandscaping:     {CloseRate: 0.24, AvgDealValue: 3200, AvgDaysToClose: 20},
}

// DefaultPriors returns the built-in table.
func DefaultPriors() *Priors {
	rows := make(map[string]IndustryPrior, len(builtinPriors))
	for k, v := range builtinPriors {
		rows[k] = v
	}
	return &Priors{Default: defaultPrior, byIndustry: rows}
}

// Lookup returns the prior for a normalized industry and whether a specific
// row matched. Unknown industries get the default row.
func (p *Priors) Lookup(industry string) (IndustryPrior, bool) {
	if row, ok := p.byIndustry[domain.NormalizeIndustry(industry)]; ok {
		return row, true
	}
	return p.Default, false
}

// Industries returns the number of industry-specific rows.
func (p *Priors) Industries() int {
	return len(p.byIndustry)
}

type priorsFile struct {
	Default    *IndustryPrior           `yaml:"default"`
	Industries map[string]IndustryPrior `yaml:"industries"`
}

// LoadPriors reads a YAML override file and merges it over the built-in
// table. An empty path returns the built-in table.
//
//	default:
//	  close_rate: 0.25
//	  avg_deal_value: 3000
//	  avg_days_to_close: 22
//	industries:
//	  solar: {close_rate: 0.22, avg_deal_value: 14000, avg_days_to_close: 45}
func LoadPriors(path string) (*Priors, error) {
	priors := DefaultPriors()
	if path == "" {
		return priors, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read industry priors: %w", err)
	}
	return priors.merge(data)
}

func (p *Priors) merge(data []byte) (*Priors, error) {
	var file priorsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse industry priors: %w", err)
	}

	if file.Default != nil {
		if err := validatePrior("default", *file.Default); err != nil {
			return nil, err
		}
		p.Default = *file.Default
	}
	for name, row := range file.Industries {
		if err := validatePrior(name, row); err != nil {
			return nil, err
		}
		p.byIndustry[domain.NormalizeIndustry(name)] = row
	}
	return p, nil
}

func validatePrior(name string, row IndustryPrior) error {
	if row.CloseRate <= 0 || row.CloseRate > 1 {
		return fmt.Errorf("industry prior %q: close_rate must be in (0, 1]", name)
	}
	if row.AvgDealValue < 0 {
		return fmt.Errorf("industry prior %q: avg_deal_value must not be negative", name)
	}
	if row.AvgDaysToClose <= 0 {
		return fmt.Errorf("industry prior %q: avg_days_to_close must be positive", name)
	}
	return nil
}
