package regmap

import (
	"encoding/xml"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

// IP-XACT is schema-fixed XML (IEEE 1685), so encoding/xml struct tags
// map directly onto it without needing a general-purpose XML toolkit
// — see SPEC_FULL.md §3 for why no third-party XML library is pulled in.
// Go's decoder matches elements by local name regardless of the
// "ipxact:"/"spirit:" namespace prefix a given file uses, so these
// tags are written bare.

type ipxactComponent struct {
	MemoryMaps []ipxactMemoryMap `xml:"memoryMaps>memoryMap"`
}

type ipxactMemoryMap struct {
	AddressBlocks []ipxactAddressBlock `xml:"addressBlock"`
}

type ipxactAddressBlock struct {
	BaseAddress string          `xml:"baseAddress"`
	Width       string          `xml:"width"`
	Registers   []ipxactRegister `xml:"register"`
}

type ipxactRegister struct {
	Name          string        `xml:"name"`
	AddressOffset string        `xml:"addressOffset"`
	Size          string        `xml:"size"`
	Fields        []ipxactField `xml:"field"`
}

type ipxactField struct {
	Name      string `xml:"name"`
	BitOffset string `xml:"bitOffset"`
	BitWidth  string `xml:"bitWidth"`
	Access    string `xml:"access"`
}

// LoadIPXACT parses an IP-XACT memory map into a Resolver. baseAddress
// + addressOffset compose each register's full address; size defaults
// to the enclosing addressBlock's width when the register omits its
// own; a field is marked reserved when its name is "reserved" or its
// access is "reserved", per spec.md §6.
func LoadIPXACT(path string) (Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("regmap: open %s: %w", path, err)
	}
	defer f.Close()
	return parseIPXACT(f)
}

func parseIPXACT(r io.Reader) (Resolver, error) {
	var comp ipxactComponent
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&comp); err != nil {
		return nil, fmt.Errorf("regmap: ip-xact schema error: %w", err)
	}

	var regs []model.RegisterDefinition
	for _, mm := range comp.MemoryMaps {
		for _, block := range mm.AddressBlocks {
			base, ok := parseBig(block.BaseAddress)
			if !ok {
				return nil, fmt.Errorf("regmap: invalid baseAddress %q", block.BaseAddress)
			}
			blockWidth, _ := parseInt(block.Width)
			for _, reg := range block.Registers {
				offset, ok := parseBig(reg.AddressOffset)
				if !ok {
					return nil, fmt.Errorf("regmap: invalid addressOffset %q", reg.AddressOffset)
				}
				full := new(big.Int).Add(base, offset)

				size, ok := parseInt(reg.Size)
				if !ok || size == 0 {
					size = blockWidth
				}
				if size == 0 {
					return nil, fmt.Errorf("regmap: register %q has no resolvable size", reg.Name)
				}

				var fields []model.FieldDefinition
				for _, f := range reg.Fields {
					bo, ok := parseInt(f.BitOffset)
					if !ok {
						return nil, fmt.Errorf("regmap: invalid bitOffset %q in field %q", f.BitOffset, f.Name)
					}
					bw, ok := parseInt(f.BitWidth)
					if !ok {
						return nil, fmt.Errorf("regmap: invalid bitWidth %q in field %q", f.BitWidth, f.Name)
					}
					reserved := strings.EqualFold(f.Name, "reserved") || strings.EqualFold(f.Access, "reserved")
					fields = append(fields, model.FieldDefinition{
						Name:       f.Name,
						BitOffset:  bo,
						BitWidth:   bw,
						IsReserved: reserved,
					})
				}

				regs = append(regs, model.RegisterDefinition{
					Name:        reg.Name,
					FullAddress: full,
					Size:        size,
					Fields:      fields,
				})
			}
		}
	}

	return NewSortedResolver(regs), nil
}
