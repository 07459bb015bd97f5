package regmap

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

// yamlDoc mirrors the YAML register-map schema spec.md §6 describes:
// block.offset plus register.offset compose the full address, fields
// keyed by name carrying bitoffset/width. A register's map key is its
// lookup key within its block, not necessarily its display name — an
// explicit name: field, when present, wins. Grounded on the teacher's
// deviceid.go, which loads a flat YAML lookup table the same way.
type yamlDoc struct {
	Blocks map[string]yamlBlock `yaml:"blocks"`
}

type yamlBlock struct {
	Offset    string                  `yaml:"offset"`
	Width     int                     `yaml:"width"`
	Registers map[string]yamlRegister `yaml:"registers"`
}

type yamlRegister struct {
	Name   string              `yaml:"name"`
	Offset string              `yaml:"offset"`
	Size   int                 `yaml:"size"`
	Fields map[string]yamlField `yaml:"fields"`
}

type yamlField struct {
	BitOffset int    `yaml:"bitoffset"`
	Width     int    `yaml:"width"`
	Access    string `yaml:"access"`
}

// LoadYAML parses a YAML register map into a Resolver.
func LoadYAML(path string) (Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("regmap: read %s: %w", path, err)
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (Resolver, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("regmap: yaml schema error: %w", err)
	}

	var regs []model.RegisterDefinition
	for blockName, block := range doc.Blocks {
		blockOffset, ok := parseBig(block.Offset)
		if !ok {
			return nil, fmt.Errorf("regmap: block %q has invalid offset %q", blockName, block.Offset)
		}
		for regName, reg := range block.Registers {
			regOffset, ok := parseBig(reg.Offset)
			if !ok {
				return nil, fmt.Errorf("regmap: register %q has invalid offset %q", regName, reg.Offset)
			}
			full := new(big.Int).Add(blockOffset, regOffset)

			size := reg.Size
			if size == 0 {
				size = block.Width
			}
			if size == 0 {
				return nil, fmt.Errorf("regmap: register %q has no resolvable size", regName)
			}

			var fields []model.FieldDefinition
			for fieldName, f := range reg.Fields {
				reserved := strings.EqualFold(fieldName, "reserved") || strings.EqualFold(f.Access, "reserved")
				fields = append(fields, model.FieldDefinition{
					Name:       fieldName,
					BitOffset:  f.BitOffset,
					BitWidth:   f.Width,
					IsReserved: reserved,
				})
			}

			name := reg.Name
			if name == "" {
				name = regName
			}

			regs = append(regs, model.RegisterDefinition{
				Name:        name,
				FullAddress: full,
				Size:        size,
				Fields:      fields,
			})
		}
	}

	return NewSortedResolver(regs), nil
}
