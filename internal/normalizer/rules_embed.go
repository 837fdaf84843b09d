package normalizer

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"

	"github.com/salary-parser/internal/similarity"
	"gopkg.in/yaml.v3"
)

//go:embed data/mappings.yaml
var mappingsYAML []byte

// Mapping families shipped in data/mappings.yaml.
const (
	FamilyEducation       = "education"
	FamilyCivilStatus     = "civil_status"
	FamilyContractType    = "contract_type"
	FamilyCompanySize     = "company_size"
	FamilyWorkArrangement = "work_arrangement"
	FamilySector          = "sector"
	FamilyYesNo           = "yes_no"
)

var requiredFamilies = []string{
	FamilyEducation,
	FamilyCivilStatus,
	FamilyContractType,
	FamilyCompanySize,
	FamilyWorkArrangement,
	FamilySector,
	FamilyYesNo,
}

// MappingEntry is one canonical tag and the phrases that denote it.
type MappingEntry struct {
	Tag     string   `yaml:"tag" json:"tag"`
	Phrases []string `yaml:"phrases" json:"phrases"`
}

// Mapping is an ordered list of entries. Order breaks ties.
type Mapping struct {
	Family  string
	Entries []MappingEntry

	// folded phrases, same shape as Entries
	folded [][]string
	exact  map[string]string
}

// Tables holds every mapping family plus the hash of its source.
type Tables struct {
	mappings map[string]*Mapping
	version  string
}

// LoadTables parses the embedded mapping tables.
func LoadTables() (*Tables, error) {
	return ParseTables(mappingsYAML)
}

// ParseTables parses mapping tables from YAML. A phrase that folds to the
// same text under two different tags of one family is rejected, as is a
// missing family.
func ParseTables(data []byte) (*Tables, error) {
	raw := map[string][]MappingEntry{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse mapping tables: %w", err)
	}

	sum := sha256.Sum256(data)
	t := &Tables{
		mappings: make(map[string]*Mapping, len(raw)),
		version:  hex.EncodeToString(sum[:8]),
	}

	for family, entries := range raw {
		m, err := newMapping(family, entries)
		if err != nil {
			return nil, err
		}
		t.mappings[family] = m
	}

	for _, family := range requiredFamilies {
		if _, ok := t.mappings[family]; !ok {
			return nil, fmt.Errorf("mapping family %q missing", family)
		}
	}
	return t, nil
}

func newMapping(family string, entries []MappingEntry) (*Mapping, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("mapping family %q has no entries", family)
	}

	m := &Mapping{
		Family:  family,
		Entries: entries,
		folded:  make([][]string, len(entries)),
		exact:   make(map[string]string),
	}
	for i, e := range entries {
		if e.Tag == "" {
			return nil, fmt.Errorf("mapping family %q: entry %d has no tag", family, i)
		}
		for _, p := range e.Phrases {
			f := similarity.Fold(p)
			if f == "" {
				continue
			}
			if prev, dup := m.exact[f]; dup && prev != e.Tag {
				return nil, fmt.Errorf("mapping family %q: phrase %q declared under %q and %q", family, p, prev, e.Tag)
			}
			m.exact[f] = e.Tag
			m.folded[i] = append(m.folded[i], f)
		}
	}
	return m, nil
}

// Mapping returns the named family.
func (t *Tables) Mapping(family string) (*Mapping, bool) {
	m, ok := t.mappings[family]
	return m, ok
}

// MustMapping is Mapping for families known to exist after LoadTables.
func (t *Tables) MustMapping(family string) *Mapping {
	m, ok := t.mappings[family]
	if !ok {
		panic("normalizer: unknown mapping family " + family)
	}
	return m
}

// Version identifies the table content. Cached results carry it so a table
// change invalidates them.
func (t *Tables) Version() string {
	return t.version
}

// Tags lists the canonical tags of m in declaration order.
func (m *Mapping) Tags() []string {
	tags := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		tags[i] = e.Tag
	}
	return tags
}
