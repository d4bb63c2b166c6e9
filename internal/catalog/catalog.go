// Package catalog holds the bundled module and inverter parameter tables.
// The tables are loaded once per process and shared read-only; all lookups
// are safe for concurrent use.
package catalog

import (
	"embed"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/b0d/pv-forecast/internal/domain"
)

//go:embed data/modules.csv data/inverters.csv
var dataFS embed.FS

// Catalog exposes the two read-only equipment tables.
type Catalog struct {
	modules     map[string]domain.EquipmentRecord
	inverters   map[string]domain.EquipmentRecord
	moduleIDs   []string
	inverterIDs []string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the process-wide catalog, loading the embedded tables on
// first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load()
	})
	return defaultCatalog, defaultErr
}

// Load parses the embedded datasets into a fresh catalog.
func Load() (*Catalog, error) {
	modules, err := loadTable("data/modules.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to load module table: %w", err)
	}
	inverters, err := loadTable("data/inverters.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to load inverter table: %w", err)
	}
	return New(modules, inverters), nil
}

// New builds a catalog from explicit record lists. Used by tests to inject
// synthetic equipment.
func New(modules, inverters []domain.EquipmentRecord) *Catalog {
	c := &Catalog{
		modules:   make(map[string]domain.EquipmentRecord, len(modules)),
		inverters: make(map[string]domain.EquipmentRecord, len(inverters)),
	}
	for _, m := range modules {
		c.modules[m.ID] = m
		c.moduleIDs = append(c.moduleIDs, m.ID)
	}
	for _, inv := range inverters {
		c.inverters[inv.ID] = inv
		c.inverterIDs = append(c.inverterIDs, inv.ID)
	}
	sort.Strings(c.moduleIDs)
	sort.Strings(c.inverterIDs)
	return c
}

func loadTable(path string) ([]domain.EquipmentRecord, error) {
	f, err := dataFS.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: expected header plus at least one record", path)
	}

	header := rows[0]
	records := make([]domain.EquipmentRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%s: row for %q has %d columns, want %d", path, row[0], len(row), len(header))
		}
		rec := domain.EquipmentRecord{
			ID:     row[0],
			Params: make(map[string]float64, len(header)-1),
		}
		for i := 1; i < len(header); i++ {
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %s.%s: %w", path, row[0], header[i], err)
			}
			rec.Params[header[i]] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

// Module returns the module record for the given id.
func (c *Catalog) Module(id string) (domain.EquipmentRecord, bool) {
	rec, ok := c.modules[id]
	return rec, ok
}

// Inverter returns the inverter record for the given id.
func (c *Catalog) Inverter(id string) (domain.EquipmentRecord, bool) {
	rec, ok := c.inverters[id]
	return rec, ok
}

// ModuleIDs returns all module identifiers, sorted.
func (c *Catalog) ModuleIDs() []string { return c.moduleIDs }

// InverterIDs returns all inverter identifiers, sorted.
func (c *Catalog) InverterIDs() []string { return c.inverterIDs }

// BrandsOf derives the sorted distinct brand prefixes from a list of model
// identifiers. The brand is the first token before the identifier's first
// underscore.
func BrandsOf(ids []string) []string {
	seen := make(map[string]bool)
	var brands []string
	for _, id := range ids {
		b := brandOf(id)
		if b != "" && !seen[b] {
			seen[b] = true
			brands = append(brands, b)
		}
	}
	sort.Strings(brands)
	return brands
}

// ModelsForBrand filters identifiers down to one brand prefix.
func ModelsForBrand(ids []string, brand string) []string {
	var models []string
	for _, id := range ids {
		if brandOf(id) == brand {
			models = append(models, id)
		}
	}
	return models
}

func brandOf(id string) string {
	if i := strings.Index(id, "_"); i > 0 {
		return id[:i]
	}
	return id
}

// DefaultSelection returns the index of the preferred identifier, or 0 when
// it is absent. Never fails, even on an empty list.
func DefaultSelection(ids []string, preferred string) int {
	for i, id := range ids {
		if id == preferred {
			return i
		}
	}
	return 0
}

// ModuleLabel renders a human-readable summary of a module record: base
// name, revision year when present, and the STC power rating. When the
// table carries no explicit rating the label falls back to Impo·Vmpo.
func ModuleLabel(rec domain.EquipmentRecord) string {
	watts := rec.Param("STC")
	if watts == 0 {
		watts = rec.Param("Impo") * rec.Param("Vmpo")
	}
	name, year := splitNameYear(rec.ID)
	if year != "" {
		return fmt.Sprintf("%s (%s) - %.0f W", name, year, watts)
	}
	return fmt.Sprintf("%s - %.0f W", name, watts)
}

// InverterLabel renders the inverter's rated AC power in kW and its nominal
// AC voltage.
func InverterLabel(rec domain.EquipmentRecord) string {
	name, year := splitNameYear(rec.ID)
	label := fmt.Sprintf("%s - %.2f kW, %.0f V", name, rec.Param("Paco")/1000.0, rec.Param("Vac"))
	if year != "" {
		label = fmt.Sprintf("%s (%s) - %.2f kW, %.0f V", name, year, rec.Param("Paco")/1000.0, rec.Param("Vac"))
	}
	return label
}

// splitNameYear pulls a four-digit year token out of an identifier and
// returns the remaining tokens joined as the display name.
func splitNameYear(id string) (name, year string) {
	tokens := strings.FieldsFunc(id, func(r rune) bool { return r == '_' })
	var kept []string
	for _, tok := range tokens {
		if year == "" && len(tok) == 4 && isDigits(tok) {
			year = tok
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " "), year
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
