package variant

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Region is a regional variant: the slug suffix and the words that name it.
type Region struct {
	Suffix string   `yaml:"suffix"`
	Words  []string `yaml:"words"`
}

// Adjective is the first listed word, e.g. "alolan".
func (r Region) Adjective() string {
	if len(r.Words) == 0 {
		return r.Suffix
	}
	return r.Words[0]
}

// Vocabulary lists the words the resolver recognizes.
type Vocabulary struct {
	Regions    []Region `yaml:"regions"`
	Forms      []string `yaml:"forms"`
	Mega       []string `yaml:"mega"`
	Gigantamax []string `yaml:"gigantamax"`
	Qualifiers []string `yaml:"qualifiers"`
}

// ParseVocabulary decodes a YAML vocabulary document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("variant: parse vocabulary: %w", err)
	}
	if len(v.Regions) == 0 && len(v.Forms) == 0 && len(v.Mega) == 0 && len(v.Gigantamax) == 0 {
		return nil, fmt.Errorf("variant: vocabulary is empty")
	}
	return &v, nil
}

// LoadVocabulary reads a vocabulary file, or the built-in one when path is
// empty.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return ParseVocabulary(defaultVocabulary)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("variant: read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabulary)
	if err != nil {
		panic(err)
	}
	return v
}
