// Package registry loads and validates the loan product catalog. The
// catalog is a JSON file checked against a schema at load time so a bad
// deploy fails fast instead of quoting broken products.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"finsync-advisor/internal/models"
)

// catalogSchema is the structural contract every products file must meet.
const catalogSchema = `{
	"type": "object",
	"required": ["products"],
	"properties": {
		"products": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["productId", "name", "minAmount", "maxAmount", "minTenure", "maxTenure", "baseRate"],
				"properties": {
					"productId": {"type": "string", "minLength": 1},
					"name": {"type": "string", "minLength": 1},
					"minAmount": {"type": "integer", "minimum": 1000},
					"maxAmount": {"type": "integer", "minimum": 1000},
					"minTenure": {"type": "integer", "minimum": 1},
					"maxTenure": {"type": "integer", "maximum": 120},
					"baseRate": {"type": "number", "minimum": 1, "maximum": 40},
					"processingFee": {"type": "number", "minimum": 0, "maximum": 0.1},
					"description": {"type": "string"}
				}
			}
		}
	}
}`

type catalogFile struct {
	Products []models.LoanProduct `json:"products"`
}

// Registry is a read-mostly product catalog. Reload swaps the whole
// product list atomically.
type Registry struct {
	mu       sync.RWMutex
	path     string
	products []models.LoanProduct
}

// Load reads, validates, and caches the catalog at path.
func Load(path string) (*Registry, error) {
	r := &Registry{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the catalog file. On any failure the previously loaded
// products stay in effect.
func (r *Registry) Reload() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", r.path, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(catalogSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("catalog validation failed: %v", errs)
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	for _, p := range file.Products {
		if p.MinAmount > p.MaxAmount {
			return fmt.Errorf("product %s: minAmount %d exceeds maxAmount %d", p.ProductID, p.MinAmount, p.MaxAmount)
		}
		if p.MinTenure > p.MaxTenure {
			return fmt.Errorf("product %s: minTenure %d exceeds maxTenure %d", p.ProductID, p.MinTenure, p.MaxTenure)
		}
	}

	r.mu.Lock()
	r.products = file.Products
	r.mu.Unlock()
	return nil
}

// Products returns a copy of the catalog.
func (r *Registry) Products() []models.LoanProduct {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.LoanProduct, len(r.products))
	copy(out, r.products)
	return out
}

// Match returns the products that can serve an amount and tenure.
func (r *Registry) Match(amount int64, tenureMonths int) []models.LoanProduct {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []models.LoanProduct
	for _, p := range r.products {
		if amount >= p.MinAmount && amount <= p.MaxAmount &&
			tenureMonths >= p.MinTenure && tenureMonths <= p.MaxTenure {
			matches = append(matches, p)
		}
	}
	return matches
}

// Find returns a product by ID.
func (r *Registry) Find(productID string) (*models.LoanProduct, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ProductID == productID {
			out := p
			return &out, true
		}
	}
	return nil, false
}
