package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tables := Default()
	require.NotNil(t, tables)

	assert.Equal(t, 16, tables.Allergens.Len())
	assert.Equal(t, []string{"milk", "eggs", "fish"}, tables.Allergens.Names()[:3])

	entries := tables.Additives.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "sugar", entries[0].Key)

	sugar := entry(t, tables, "sugar")
	assert.Equal(t, ConcernModerate, sugar.Concern)
	assert.Equal(t, "sweetener", sugar.Category)

	salt := entry(t, tables, "salt")
	assert.Equal(t, ConcernLow, salt.Concern)

	wine := entry(t, tables, "wine")
	assert.Equal(t, ConcernHigh, wine.Concern)
	assert.Equal(t, CategoryAlcoholicBeverage, wine.Category)

	caffeine := entry(t, tables, "caffeine")
	assert.Equal(t, ConcernHigh, caffeine.Concern)
	assert.Equal(t, CategoryPsychoactiveSubstance, caffeine.Category)
}

func entry(t *testing.T, tables *Tables, key string) AdditiveEntry {
	t.Helper()
	for _, e := range tables.Additives.Entries() {
		if e.Key == key {
			return e
		}
	}
	t.Fatalf("additive %q not found", key)
	return AdditiveEntry{}
}

func TestDefault_AlcoholAndPsychoactiveAreHighConcern(t *testing.T) {
	Default().Additives.Each(func(e AdditiveEntry) bool {
		if e.Category == CategoryAlcoholicBeverage || e.Category == CategoryPsychoactiveSubstance {
			assert.Equal(t, ConcernHigh, e.Concern, "additive %q", e.Key)
		}
		return true
	})
}

func TestDefault_TableOrder(t *testing.T) {
	keys := []string{}
	Default().Additives.Each(func(e AdditiveEntry) bool {
		keys = append(keys, e.Key)
		return true
	})

	indexOf := func(key string) int {
		for i, k := range keys {
			if k == key {
				return i
			}
		}
		return -1
	}

	assert.Less(t, indexOf("red 40"), indexOf("modified"))
	assert.Less(t, indexOf("sugar"), indexOf("salt"))
	assert.Less(t, indexOf("maltodextrin"), indexOf("wine"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		check       func(t *testing.T, tables *Tables)
	}{
		{
			name: "valid document is normalized",
			input: `
allergens:
  - " Milk "
  - Eggs
additives:
  - key: " Red 40 "
    description: color
    category: Color
    concern: moderate
  - key: modified
    description: starch
    category: thickener
    concern: low
`,
			check: func(t *testing.T, tables *Tables) {
				assert.Equal(t, []string{"milk", "eggs"}, tables.Allergens.Names())
				entries := tables.Additives.Entries()
				require.Len(t, entries, 2)
				assert.Equal(t, "red 40", entries[0].Key)
				assert.Equal(t, "color", entries[0].Category)
				assert.Equal(t, "modified", entries[1].Key)
			},
		},
		{
			name:  "json documents are accepted",
			input: `{"allergens": ["milk"], "additives": [{"key": "salt", "description": "d", "category": "seasoning", "concern": "low"}]}`,
			check: func(t *testing.T, tables *Tables) {
				assert.Equal(t, 1, tables.Allergens.Len())
				assert.Equal(t, 1, tables.Additives.Len())
			},
		},
		{
			name: "unknown concern is kept as loaded",
			input: `
allergens: [milk]
additives:
  - key: salt
    description: d
    category: seasoning
    concern: Severe
`,
			check: func(t *testing.T, tables *Tables) {
				assert.Equal(t, Concern("severe"), entry(t, tables, "salt").Concern)
			},
		},
		{
			name: "missing category is rejected",
			input: `
allergens: [milk]
additives:
  - key: salt
    description: d
    concern: low
`,
			expectError: true,
		},
		{
			name: "unknown field is rejected",
			input: `
allergens: [milk]
additives:
  - key: salt
    description: d
    category: seasoning
    concern: low
    colour: white
`,
			expectError: true,
		},
		{
			name: "duplicate additive key is rejected",
			input: `
allergens: [milk]
additives:
  - key: salt
    description: d
    category: seasoning
    concern: low
  - key: SALT
    description: d
    category: seasoning
    concern: low
`,
			expectError: true,
		},
		{
			name:        "duplicate allergen is rejected",
			input:       "allergens: [milk, Milk]\nadditives: []\n",
			expectError: true,
		},
		{
			name:        "blank allergen is rejected",
			input:       "allergens: [milk, '  ']\nadditives: []\n",
			expectError: true,
		},
		{
			name:        "missing sections are rejected",
			input:       "allergens: [milk]\n",
			expectError: true,
		},
		{
			name:        "malformed yaml is rejected",
			input:       "allergens: [milk\n",
			expectError: true,
		},
		{
			name:        "empty document is rejected",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := Parse([]byte(tt.input))
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, tables)
				return
			}
			require.NoError(t, err)
			tt.check(t, tables)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	content := `
allergens: [sesame]
additives:
  - key: carrageenan
    description: thickener
    category: thickener
    concern: moderate
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	tables, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sesame"}, tables.Allergens.Names())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	tables, err := LoadOrDefault("  ")
	require.NoError(t, err)
	assert.Same(t, Default(), tables)

	_, err = LoadOrDefault("/nonexistent/tables.yaml")
	assert.Error(t, err)
}

func TestTables_AreCopiedOnRead(t *testing.T) {
	tables := Default()

	names := tables.Allergens.Names()
	names[0] = "changed"
	assert.Equal(t, "milk", tables.Allergens.Names()[0])

	entries := tables.Additives.Entries()
	entries[0].Key = "changed"
	assert.Equal(t, "sugar", tables.Additives.Entries()[0].Key)
}
