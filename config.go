package cgtpool

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config carries the display annotations resolved by the caller: asset and
// platform display names, and the account patterns that tagged commission
// and income postings upstream. It only ever decorates output rows; nothing
// in it alters matching arithmetic.
type Config struct {
	AssetNames         map[string]string `yaml:"asset_names"`
	PlatformNames      map[string]string `yaml:"platform_names"`
	CommissionAccounts string            `yaml:"commission_accounts"`
	IncomeAccounts     string            `yaml:"income_accounts"`

	commissionRE *regexp.Regexp
	incomeRE     *regexp.Regexp
}

// LoadConfig reads a YAML annotation config file, expanding ${VAR}
// environment variables, and validates its account patterns.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) compile() error {
	var err error
	if c.CommissionAccounts != "" {
		if c.commissionRE, err = regexp.Compile(c.CommissionAccounts); err != nil {
			return fmt.Errorf("invalid commission account pattern: %w", err)
		}
	}
	if c.IncomeAccounts != "" {
		if c.incomeRE, err = regexp.Compile(c.IncomeAccounts); err != nil {
			return fmt.Errorf("invalid income account pattern: %w", err)
		}
	}
	return nil
}

// IsCommissionAccount reports whether an account name matches the
// commission pattern.
func (c *Config) IsCommissionAccount(account string) bool {
	return c.commissionRE != nil && c.commissionRE.MatchString(account)
}

// IsIncomeAccount reports whether an account name matches the income
// pattern.
func (c *Config) IsIncomeAccount(account string) bool {
	return c.incomeRE != nil && c.incomeRE.MatchString(account)
}

// AssetName returns the display name for an asset, falling back to the
// asset code itself.
func (c *Config) AssetName(asset string) string {
	if name, ok := c.AssetNames[asset]; ok {
		return name
	}
	return asset
}

// PlatformName returns the display name for an account group, falling back
// to the account code itself.
func (c *Config) PlatformName(account string) string {
	if name, ok := c.PlatformNames[account]; ok {
		return name
	}
	return account
}

// Annotate fills the display-name fields on every disposal row of a report.
func (c *Config) Annotate(report *TaxReport) {
	for i := range report.Years {
		year := &report.Years[i]
		for j := range year.Disposals {
			d := &year.Disposals[j]
			d.AssetName = c.AssetName(d.Pool.Asset)
			d.PlatformName = c.PlatformName(d.Pool.Account)
		}
	}
}
