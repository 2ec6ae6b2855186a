package billing

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ProductCatalog is the fixed, two-entry table from billing interval to the
// provider-specific SKU identifier. The catalog never changes at runtime;
// it is loaded once at process start.
type ProductCatalog struct {
	Monthly string `yaml:"monthly"`
	Annual  string `yaml:"annual"`
}

// SKU returns the store product identifier for an interval.
func (c ProductCatalog) SKU(interval BillingInterval) (string, error) {
	switch interval {
	case IntervalMonthly:
		return c.Monthly, nil
	case IntervalAnnual:
		return c.Annual, nil
	default:
		return "", errors.Join(ErrUnknownInterval, fmt.Errorf("interval %q", interval))
	}
}

// Interval resolves a SKU back to its billing interval. Used when matching
// store purchases against the known products during restore.
func (c ProductCatalog) Interval(sku string) (BillingInterval, bool) {
	switch sku {
	case c.Monthly:
		return IntervalMonthly, true
	case c.Annual:
		return IntervalAnnual, true
	default:
		return IntervalNone, false
	}
}

// KnownSKUs returns every SKU the engine considers its own.
func (c ProductCatalog) KnownSKUs() []string {
	return []string{c.Monthly, c.Annual}
}

// Validate ensures both entries are present and distinct.
func (c ProductCatalog) Validate() error {
	if c.Monthly == "" || c.Annual == "" {
		return errors.Join(ErrInvalidCatalog, errors.New("both monthly and annual SKUs are required"))
	}
	if c.Monthly == c.Annual {
		return errors.Join(ErrInvalidCatalog, errors.New("monthly and annual SKUs must differ"))
	}
	return nil
}

// LoadCatalog reads a product catalog from YAML. Unknown fields are
// rejected to catch catalog typos at startup rather than at purchase time.
func LoadCatalog(r io.Reader) (ProductCatalog, error) {
	var catalog ProductCatalog

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return ProductCatalog{}, errors.Join(ErrInvalidCatalog, err)
	}

	if err := catalog.Validate(); err != nil {
		return ProductCatalog{}, err
	}

	return catalog, nil
}

// LoadCatalogFile reads a product catalog from a YAML file.
func LoadCatalogFile(path string) (ProductCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return ProductCatalog{}, errors.Join(ErrInvalidCatalog, err)
	}
	defer f.Close()

	return LoadCatalog(f)
}
