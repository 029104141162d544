package gacha

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed policies.yaml
var defaultPolicies []byte

// Policy describes the 50/50 rules of one banner category.
type Policy struct {
	Guarantee bool
	LossItems map[int32]struct{}
}

// IsLoss reports whether winning item id on a free roll counts as a lost 50/50.
func (p Policy) IsLoss(id *int32) bool {
	if id == nil {
		return false
	}
	_, ok := p.LossItems[*id]
	return ok
}

// PolicyTable holds the policy of every banner category.
type PolicyTable map[Category]Policy

// Policy returns the rules for c.
func (t PolicyTable) Policy(c Category) (Policy, error) {
	p, ok := t[c]
	if !ok {
		return Policy{}, fmt.Errorf("no policy for banner category %q", c)
	}
	return p, nil
}

type rawPolicies struct {
	Banners map[string]rawPolicy `yaml:"banners"`
}

type rawPolicy struct {
	Guarantee bool    `yaml:"guarantee"`
	LossItems []int32 `yaml:"loss_items"`
}

// ParsePolicies decodes a YAML policy table and checks that it covers
// every category.
func ParsePolicies(data []byte) (PolicyTable, error) {
	var raw rawPolicies
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode banner policies: %w", err)
	}

	table := make(PolicyTable, len(Categories))
	for name, rp := range raw.Banners {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}

		if !rp.Guarantee && len(rp.LossItems) > 0 {
			return nil, fmt.Errorf("banner %q: loss_items set without guarantee", name)
		}
		if rp.Guarantee && len(rp.LossItems) == 0 {
			return nil, fmt.Errorf("banner %q: guarantee without loss_items", name)
		}

		p := Policy{Guarantee: rp.Guarantee}
		if rp.Guarantee {
			p.LossItems = make(map[int32]struct{}, len(rp.LossItems))
			for _, id := range rp.LossItems {
				p.LossItems[id] = struct{}{}
			}
		}
		table[c] = p
	}

	for _, c := range Categories {
		if _, ok := table[c]; !ok {
			return nil, fmt.Errorf("banner %q: missing policy", c)
		}
	}

	return table, nil
}

// LoadPolicyFile reads a policy table from disk.
func LoadPolicyFile(path string) (PolicyTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read banner policies: %w", err)
	}
	return ParsePolicies(data)
}

// DefaultPolicies returns the built-in policy table.
func DefaultPolicies() PolicyTable {
	table, err := ParsePolicies(defaultPolicies)
	if err != nil {
		panic(err)
	}
	return table
}
