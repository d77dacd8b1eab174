package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalog = `{
	"products": [
		{
			"productId": "PL-STD",
			"name": "Personal Loan",
			"minAmount": 50000,
			"maxAmount": 2000000,
			"minTenure": 12,
			"maxTenure": 60,
			"baseRate": 12.5,
			"processingFee": 0.02
		},
		{
			"productId": "PL-PREMIUM",
			"name": "Premium Personal Loan",
			"minAmount": 500000,
			"maxAmount": 5000000,
			"minTenure": 12,
			"maxTenure": 84,
			"baseRate": 10.5,
			"processingFee": 0.01
		}
	]
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidCatalog(t *testing.T) {
	r, err := Load(writeCatalog(t, validCatalog))
	require.NoError(t, err)
	assert.Len(t, r.Products(), 2)

	p, ok := r.Find("PL-STD")
	require.True(t, ok)
	assert.Equal(t, 12.5, p.BaseRate)
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing products", `{}`},
		{"empty products", `{"products": []}`},
		{"missing required field", `{"products": [{"productId": "X", "name": "X"}]}`},
		{"amount below floor", `{"products": [{"productId": "X", "name": "X", "minAmount": 10, "maxAmount": 100000, "minTenure": 12, "maxTenure": 60, "baseRate": 12}]}`},
		{"not json", `{broken`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCatalog(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsInvertedRanges(t *testing.T) {
	catalog := `{"products": [{"productId": "X", "name": "X", "minAmount": 500000, "maxAmount": 50000, "minTenure": 12, "maxTenure": 60, "baseRate": 12}]}`
	_, err := Load(writeCatalog(t, catalog))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minAmount")
}

func TestMatch(t *testing.T) {
	r, err := Load(writeCatalog(t, validCatalog))
	require.NoError(t, err)

	t.Run("amount in one product range", func(t *testing.T) {
		matches := r.Match(100000, 36)
		require.Len(t, matches, 1)
		assert.Equal(t, "PL-STD", matches[0].ProductID)
	})

	t.Run("amount in overlapping ranges", func(t *testing.T) {
		assert.Len(t, r.Match(800000, 36), 2)
	})

	t.Run("tenure out of range", func(t *testing.T) {
		assert.Empty(t, r.Match(100000, 72))
	})
}

func TestReloadKeepsOldCatalogOnFailure(t *testing.T) {
	path := writeCatalog(t, validCatalog)
	r, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))
	assert.Error(t, r.Reload())
	assert.Len(t, r.Products(), 2)
}
