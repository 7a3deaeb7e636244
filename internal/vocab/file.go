package vocab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a vocabulary YAML file and compiles it. The file extends
// the built-in tables rather than replacing them, so a deployment only
// carries its own additions.
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var tables Tables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
	}

	merged := Merge(DefaultTables(), tables)
	v, err := New(merged)
	if err != nil {
		return nil, fmt.Errorf("invalid vocabulary in %s: %w", path, err)
	}

	return v, nil
}

// Merge combines two table sets, with extra appended to base. Duplicate
// terms collapse when the tables compile.
func Merge(base, extra Tables) Tables {
	merged := Tables{
		Version:            base.Version,
		SingleTerms:        append([]string{}, base.SingleTerms...),
		CompoundTerms:      append([]string{}, base.CompoundTerms...),
		IdentifierPatterns: append([]string{}, base.IdentifierPatterns...),
		TechAbbreviations:  append([]string{}, base.TechAbbreviations...),
	}

	if extra.Version != "" {
		merged.Version = extra.Version
	}
	merged.SingleTerms = append(merged.SingleTerms, extra.SingleTerms...)
	merged.CompoundTerms = append(merged.CompoundTerms, extra.CompoundTerms...)
	merged.IdentifierPatterns = append(merged.IdentifierPatterns, extra.IdentifierPatterns...)
	merged.TechAbbreviations = append(merged.TechAbbreviations, extra.TechAbbreviations...)

	return merged
}
