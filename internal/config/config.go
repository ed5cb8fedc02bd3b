package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
	"github.com/ramonehamilton/stccg-pack-opener/internal/packs"
)

// Config represents the application configuration.
type Config struct {
	// Catalog file configuration
	Catalog CatalogConfig `toml:"catalog"`

	// Collation windows
	Collation CollationConfig `toml:"collation"`

	// Chase-slot and replacement odds
	Odds OddsConfig `toml:"odds"`

	// Product definitions (combined sets, virtual sets, starter routing)
	Products ProductsConfig `toml:"products"`

	// Collection database
	Storage StorageConfig `toml:"storage"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// CatalogConfig contains catalog file settings.
type CatalogConfig struct {
	CardsFile string   `toml:"cards_file"` // JSON array of card rows
	SetsFile  string   `toml:"sets_file"`  // JSON array of set metadata rows (optional)
	SetsFiles []string `toml:"sets_files"` // Extra metadata files merged over sets_file, later wins
	Watch     bool     `toml:"watch"`      // Reload the catalog when the files change
}

// SetMetaFiles returns the set metadata files in merge order.
func (c CatalogConfig) SetMetaFiles() []string {
	files := make([]string, 0, len(c.SetsFiles)+1)
	if c.SetsFile != "" {
		files = append(files, c.SetsFile)
	}
	for _, f := range c.SetsFiles {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Limits is a collation window per rarity.
type Limits struct {
	Common   int `toml:"common"`
	Uncommon int `toml:"uncommon"`
	Rare     int `toml:"rare"`
}

// CollationConfig contains the per-set collation windows.
type CollationConfig struct {
	Default Limits            `toml:"default"`
	Sets    map[string]Limits `toml:"sets"`
}

// Rates holds the probability constants for one set.
type Rates struct {
	UltraRate       float64 `toml:"ultra_rate"`
	RarePlusRate    float64 `toml:"rare_plus_rate"`
	VirtualScale    float64 `toml:"virtual_scale"`
	ReplacementRate float64 `toml:"replacement_rate"`
	FoilSlotRate    float64 `toml:"foil_slot_rate"`
}

// OddsConfig contains default odds and per-set overrides.
type OddsConfig struct {
	Rates
	Sets map[string]Rates `toml:"sets"`
}

// ProductsConfig describes how sets are assembled into products.
type ProductsConfig struct {
	CrossSetPromoCode   string   `toml:"cross_set_promo_code"`
	CrossSetPromoName   string   `toml:"cross_set_promo_name"`
	CrossSetPromoSets   []string `toml:"cross_set_promo_sets"`
	PhysicalSets        []string `toml:"physical_sets"` // Common pool for the cross-set promo product
	VirtualPromoCode    string   `toml:"virtual_promo_code"`
	VirtualPromoName    string   `toml:"virtual_promo_name"`
	VirtualPromoSets    []string `toml:"virtual_promo_sets"`
	VirtualSets         []string `toml:"virtual_sets"`
	TribbleStarterSet   string   `toml:"tribble_starter_set"`
	StarterUncommonSets []string `toml:"starter_uncommon_sets"`
	FoilSlotSets        []string `toml:"foil_slot_sets"`
	HiddenSets          []string `toml:"hidden_sets"` // Left out of set listings
	PackOrder           []string `toml:"pack_order"`  // Listed first, in this order
}

// StorageConfig contains collection database settings.
type StorageConfig struct {
	DBPath      string `toml:"db_path"`      // Empty means ~/.stccg-pack-opener/collection.db
	AutoMigrate bool   `toml:"auto_migrate"` // Run migrations on open
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	combined := catalog.DefaultCombineRules()
	pools := packs.DefaultPoolRules()
	collation := packs.DefaultCollationTable()
	odds := packs.DefaultOdds()

	sets := make(map[string]Limits, len(collation.Sets))
	for code, l := range collation.Sets {
		sets[code] = Limits(l)
	}

	return &Config{
		Catalog: CatalogConfig{
			CardsFile: "data/cards.json",
			SetsFile:  "data/sets.json",
			Watch:     false,
		},
		Collation: CollationConfig{
			Default: Limits(collation.Default),
			Sets:    sets,
		},
		Odds: OddsConfig{
			Rates: Rates(odds),
		},
		Products: ProductsConfig{
			CrossSetPromoCode:   combined.CrossSetPromoCode,
			CrossSetPromoName:   combined.CrossSetPromoName,
			CrossSetPromoSets:   combined.CrossSetPromoSets,
			VirtualPromoCode:    combined.VirtualPromoCode,
			VirtualPromoName:    combined.VirtualPromoName,
			VirtualPromoSets:    combined.VirtualPromoSets,
			TribbleStarterSet:   pools.TribbleStarterSet,
			StarterUncommonSets: pools.StarterUncommonSets,
			VirtualSets:         []string{"COC"},
			FoilSlotSets:        []string{"BOG"},
			HiddenSets:          []string{"COC"},
			PackOrder:           []string{"PRE", "ALT", "QCM", "FCO", "DS9", "DOM", "BOG", "ROA", "TWT", "TSD", "MIR", "VOY", "BOR", "HAD", "TMP", "WNOHGB", "VPROMO"},
		},
		Storage: StorageConfig{
			DBPath:      "",
			AutoMigrate: true,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Dir returns the application directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".stccg-pack-opener")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default location.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path. Keys missing from the file keep
// their default values. Returns default config if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	// Decoding replaces whole per-set rows, so keys a row leaves out would
	// read as zero. Re-apply the rows over their defaults instead.
	var rows setRows
	if err := toml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	config.applySetRows(rows, DefaultConfig())

	return config, nil
}

// setRows holds the per-set tables as written, with nil for missing keys.
type setRows struct {
	Collation struct {
		Sets map[string]limitsRow `toml:"sets"`
	} `toml:"collation"`
	Odds struct {
		Sets map[string]ratesRow `toml:"sets"`
	} `toml:"odds"`
}

type limitsRow struct {
	Common   *int `toml:"common"`
	Uncommon *int `toml:"uncommon"`
	Rare     *int `toml:"rare"`
}

type ratesRow struct {
	UltraRate       *float64 `toml:"ultra_rate"`
	RarePlusRate    *float64 `toml:"rare_plus_rate"`
	VirtualScale    *float64 `toml:"virtual_scale"`
	ReplacementRate *float64 `toml:"replacement_rate"`
	FoilSlotRate    *float64 `toml:"foil_slot_rate"`
}

// applySetRows fills per-set rows from their base: the built-in row for that
// set when one exists, else the configured default row.
func (c *Config) applySetRows(rows setRows, defaults *Config) {
	if len(rows.Collation.Sets) > 0 && c.Collation.Sets == nil {
		c.Collation.Sets = make(map[string]Limits, len(rows.Collation.Sets))
	}
	for code, row := range rows.Collation.Sets {
		base, ok := defaults.Collation.Sets[code]
		if !ok {
			base = c.Collation.Default
		}
		c.Collation.Sets[code] = row.over(base)
	}

	if len(rows.Odds.Sets) > 0 && c.Odds.Sets == nil {
		c.Odds.Sets = make(map[string]Rates, len(rows.Odds.Sets))
	}
	for code, row := range rows.Odds.Sets {
		c.Odds.Sets[code] = row.over(c.Odds.Rates)
	}
}

func (r limitsRow) over(base Limits) Limits {
	setInt(&base.Common, r.Common)
	setInt(&base.Uncommon, r.Uncommon)
	setInt(&base.Rare, r.Rare)
	return base
}

func (r ratesRow) over(base Rates) Rates {
	setFloat(&base.UltraRate, r.UltraRate)
	setFloat(&base.RarePlusRate, r.RarePlusRate)
	setFloat(&base.VirtualScale, r.VirtualScale)
	setFloat(&base.ReplacementRate, r.ReplacementRate)
	setFloat(&base.FoilSlotRate, r.FoilSlotRate)
	return base
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Save saves the configuration to the default location.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Catalog.CardsFile == "" {
		return fmt.Errorf("catalog cards_file is required")
	}

	if err := c.Collation.Default.validate("default"); err != nil {
		return err
	}
	for code, l := range c.Collation.Sets {
		if err := l.validate(code); err != nil {
			return err
		}
	}

	if err := packs.Odds(c.Odds.Rates).Validate(); err != nil {
		return fmt.Errorf("odds: %w", err)
	}
	for code, r := range c.Odds.Sets {
		if err := packs.Odds(r).Validate(); err != nil {
			return fmt.Errorf("odds for %s: %w", code, err)
		}
	}

	return nil
}

func (l Limits) validate(name string) error {
	if l.Common < 0 || l.Uncommon < 0 || l.Rare < 0 {
		return fmt.Errorf("collation window for %s cannot be negative: %+v", name, l)
	}
	return nil
}

// CombineRules returns the synthetic set definitions for the catalog registry.
func (c *Config) CombineRules() catalog.CombineRules {
	return catalog.CombineRules{
		CrossSetPromoCode: c.Products.CrossSetPromoCode,
		CrossSetPromoName: c.Products.CrossSetPromoName,
		CrossSetPromoSets: c.Products.CrossSetPromoSets,
		VirtualPromoCode:  c.Products.VirtualPromoCode,
		VirtualPromoName:  c.Products.VirtualPromoName,
		VirtualPromoSets:  c.Products.VirtualPromoSets,
	}
}

// ComposerConfig returns the pack composer settings. Random, Tracker and Logger
// are left for the caller.
func (c *Config) ComposerConfig() packs.ComposerConfig {
	collation := packs.CollationTable{
		Default: packs.CollationLimits(c.Collation.Default),
		Sets:    make(map[string]packs.CollationLimits, len(c.Collation.Sets)),
	}
	for code, l := range c.Collation.Sets {
		collation.Sets[code] = packs.CollationLimits(l)
	}

	odds := packs.OddsTable{
		Default: packs.Odds(c.Odds.Rates),
		Sets:    make(map[string]packs.Odds, len(c.Odds.Sets)),
	}
	for code, r := range c.Odds.Sets {
		odds.Sets[code] = packs.Odds(r)
	}

	return packs.ComposerConfig{
		Pools: packs.PoolRules{
			TribbleStarterSet:   c.Products.TribbleStarterSet,
			StarterUncommonSets: c.Products.StarterUncommonSets,
		},
		Collation:         collation,
		Odds:              odds,
		CrossSetPromoCode: c.Products.CrossSetPromoCode,
		CrossSetPromoSets: c.Products.CrossSetPromoSets,
		PhysicalSets:      c.Products.PhysicalSets,
		VirtualPromoCode:  c.Products.VirtualPromoCode,
		VirtualPromoSets:  c.Products.VirtualPromoSets,
		VirtualSets:       c.Products.VirtualSets,
		FoilSlotSets:      c.Products.FoilSlotSets,
	}
}

// DBPath returns the configured database path, or collection.db in the
// application directory.
func (c *Config) DBPath() (string, error) {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "collection.db"), nil
}
