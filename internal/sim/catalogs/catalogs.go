package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"craftage.ai/internal/sim/world/kernel/model"
)

// Catalogs is the immutable rule configuration. It is built once by Load and
// only read afterwards, so it may be shared by every goroutine.
type Catalogs struct {
	Ages        AgeCatalog
	Resources   ResourceCatalog
	Items       ItemCatalog
	Recipes     RecipeCatalog
	Consumables ConsumableCatalog
	Tools       ToolCatalog
}

type AgeCatalog struct {
	Names  []string
	Digest string
}

type ResourceCatalog struct {
	ByID   map[string]ResourceDef
	Digest string
}

// ResourceDef is a gatherable world node.
type ResourceDef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Drops string `json:"drops"`
	Yield int    `json:"yield"`
}

type ItemCatalog struct {
	Palette []string
	Defs    map[string]ItemDef
	Digest  string
}

type ItemKind string

const (
	KindResource  ItemKind = "RESOURCE"
	KindTool      ItemKind = "TOOL"
	KindStructure ItemKind = "STRUCTURE"
)

// ItemDef is one inventory key.
type ItemDef struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Icon string   `json:"icon"`
	Kind ItemKind `json:"kind"`
}

type RecipeCatalog struct {
	ByID   map[string]RecipeDef
	Digest string
}

type Category string

const (
	CategoryAll       Category = "all"
	CategoryTools     Category = "tools"
	CategoryWeapons   Category = "weapons"
	CategoryBuildings Category = "buildings"
)

var categoryLabels = map[Category]string{
	CategoryAll:       "All",
	CategoryTools:     "Tools",
	CategoryWeapons:   "Weapons",
	CategoryBuildings: "Buildings",
}

type RecipeDef struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Icon        string         `json:"icon"`
	Category    Category       `json:"category"`
	Requires    map[string]int `json:"requires"`
	Produces    map[string]int `json:"produces"`
	Age         int            `json:"age"`
	Description string         `json:"description"`
}

type ConsumableCatalog struct {
	ByID   map[string]ConsumableDef
	Digest string
}

// ConsumableDef carries a declarative effect: vital name -> additive amount.
type ConsumableDef struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Icon        string             `json:"icon"`
	Effect      string             `json:"effect"`
	ResourceKey string             `json:"resource_key"`
	Gains       map[string]float64 `json:"gains"`
}

type ToolCatalog struct {
	ByTool map[string]ToolBonusDef
	Digest string
}

type ToolBonusDef struct {
	Tool       string   `json:"tool"`
	Resources  []string `json:"resources"`
	Multiplier int      `json:"multiplier"`
}

func (t ToolBonusDef) Affects(item string) bool {
	for _, r := range t.Resources {
		if r == item {
			return true
		}
	}
	return false
}

// Load reads the tables from a config directory.
func Load(configDir string) (*Catalogs, error) {
	return LoadFS(os.DirFS(configDir))
}

// LoadFS reads the tables from fsys and checks every cross reference.
func LoadFS(fsys fs.FS) (*Catalogs, error) {
	var c Catalogs

	if err := loadAges(fsys, "ages.json", &c.Ages); err != nil {
		return nil, err
	}
	if err := loadItems(fsys, "items.json", &c.Items); err != nil {
		return nil, err
	}
	if err := loadResources(fsys, "resources.json", &c.Resources); err != nil {
		return nil, err
	}
	if err := loadRecipes(fsys, "recipes.json", &c.Recipes); err != nil {
		return nil, err
	}
	if err := loadConsumables(fsys, "consumables.json", &c.Consumables); err != nil {
		return nil, err
	}
	if err := loadTools(fsys, "tools.json", &c.Tools); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func readTable(fsys fs.FS, name string, v any) (string, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return sha256Hex(raw), nil
}

func loadAges(fsys fs.FS, name string, out *AgeCatalog) error {
	digest, err := readTable(fsys, name, &out.Names)
	if err != nil {
		return err
	}
	if len(out.Names) == 0 {
		return fmt.Errorf("%s: no ages", name)
	}
	out.Digest = digest
	return nil
}

func loadItems(fsys fs.FS, name string, out *ItemCatalog) error {
	var defs []ItemDef
	digest, err := readTable(fsys, name, &defs)
	if err != nil {
		return err
	}
	out.Digest = digest
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("%s: empty id", name)
		}
		switch d.Kind {
		case KindResource, KindTool, KindStructure:
		default:
			return fmt.Errorf("%s: %s: bad kind %q", name, d.ID, d.Kind)
		}
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("%s: duplicate id %s", name, d.ID)
		}
		out.Defs[d.ID] = d
	}
	out.Palette = sortedKeys(out.Defs)
	return nil
}

func loadResources(fsys fs.FS, name string, out *ResourceCatalog) error {
	var defs []ResourceDef
	digest, err := readTable(fsys, name, &defs)
	if err != nil {
		return err
	}
	out.Digest = digest
	out.ByID = map[string]ResourceDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("%s: empty id", name)
		}
		if d.Yield < 0 {
			return fmt.Errorf("%s: %s: negative yield", name, d.ID)
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadRecipes(fsys fs.FS, name string, out *RecipeCatalog) error {
	var defs []RecipeDef
	digest, err := readTable(fsys, name, &defs)
	if err != nil {
		return err
	}
	out.Digest = digest
	out.ByID = map[string]RecipeDef{}
	for _, r := range defs {
		if r.ID == "" {
			return fmt.Errorf("%s: empty id", name)
		}
		if _, dup := out.ByID[r.ID]; dup {
			return fmt.Errorf("%s: duplicate id %s", name, r.ID)
		}
		out.ByID[r.ID] = r
	}
	return nil
}

func loadConsumables(fsys fs.FS, name string, out *ConsumableCatalog) error {
	var defs []ConsumableDef
	digest, err := readTable(fsys, name, &defs)
	if err != nil {
		return err
	}
	out.Digest = digest
	out.ByID = map[string]ConsumableDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("%s: empty id", name)
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadTools(fsys fs.FS, name string, out *ToolCatalog) error {
	var defs []ToolBonusDef
	digest, err := readTable(fsys, name, &defs)
	if err != nil {
		return err
	}
	out.Digest = digest
	out.ByTool = map[string]ToolBonusDef{}
	for _, d := range defs {
		if d.Tool == "" {
			return fmt.Errorf("%s: empty tool", name)
		}
		out.ByTool[d.Tool] = d
	}
	return nil
}

func (c *Catalogs) validate() error {
	for _, r := range c.Resources.ByID {
		if _, ok := c.Items.Defs[r.Drops]; !ok {
			return fmt.Errorf("resources.json: %s drops unknown item %q", r.ID, r.Drops)
		}
	}
	for _, r := range c.Recipes.ByID {
		if _, ok := categoryLabels[r.Category]; !ok || r.Category == CategoryAll {
			return fmt.Errorf("recipes.json: %s: bad category %q", r.ID, r.Category)
		}
		if r.Age < 0 || r.Age >= len(c.Ages.Names) {
			return fmt.Errorf("recipes.json: %s: age %d out of range", r.ID, r.Age)
		}
		if len(r.Produces) == 0 {
			return fmt.Errorf("recipes.json: %s: produces nothing", r.ID)
		}
		for _, side := range []map[string]int{r.Requires, r.Produces} {
			for k, n := range side {
				if _, ok := c.Items.Defs[k]; !ok {
					return fmt.Errorf("recipes.json: %s: unknown item %q", r.ID, k)
				}
				if n <= 0 {
					return fmt.Errorf("recipes.json: %s: %s quantity must be > 0", r.ID, k)
				}
			}
		}
	}
	for _, d := range c.Consumables.ByID {
		if _, ok := c.Items.Defs[d.ResourceKey]; !ok {
			return fmt.Errorf("consumables.json: %s: unknown resource_key %q", d.ID, d.ResourceKey)
		}
		for vital := range d.Gains {
			if !model.IsVital(vital) {
				return fmt.Errorf("consumables.json: %s: unknown vital %q", d.ID, vital)
			}
		}
	}
	for _, t := range c.Tools.ByTool {
		if def, ok := c.Items.Defs[t.Tool]; !ok || def.Kind != KindTool {
			return fmt.Errorf("tools.json: %q is not a tool item", t.Tool)
		}
		if t.Multiplier < 1 {
			return fmt.Errorf("tools.json: %s: multiplier must be >= 1", t.Tool)
		}
		for _, it := range t.Resources {
			if _, ok := c.Items.Defs[it]; !ok {
				return fmt.Errorf("tools.json: %s: unknown item %q", t.Tool, it)
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
