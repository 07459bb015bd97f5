// Package regmap implements the register-map resolver contract
// spec.md §6 describes: an address → register lookup, backed by
// either an IP-XACT XML file or a YAML file. Both loaders normalize
// into the shared model.RegisterDefinition shape and are served by
// the same address-sorted SortedResolver.
package regmap

import (
	"math/big"
	"sort"

	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

// Resolver is the external register-map lookup contract, per spec.md
// §6: find a register by address, or report absence.
type Resolver interface {
	FindRegisterByAddress(address *big.Int) (model.RegisterDefinition, bool)
	GetRegisterName(reg model.RegisterDefinition) string
}

// SortedResolver serves lookups over a fixed, address-sorted register
// list with O(log N) binary search, per spec.md §5's resource policy.
// Both loaders in this package build one of these.
type SortedResolver struct {
	registers []model.RegisterDefinition
}

// NewSortedResolver builds a resolver over regs, sorting a private
// copy by FullAddress.
func NewSortedResolver(regs []model.RegisterDefinition) *SortedResolver {
	sorted := make([]model.RegisterDefinition, len(regs))
	copy(sorted, regs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FullAddress.Cmp(sorted[j].FullAddress) < 0
	})
	return &SortedResolver{registers: sorted}
}

// FindRegisterByAddress performs a binary search for an exact address
// match. Register maps in this domain are per-address, not per-range
// (each register occupies one addressable location), matching spec.md
// §6's "given an address, returns register metadata... or absence."
func (s *SortedResolver) FindRegisterByAddress(address *big.Int) (model.RegisterDefinition, bool) {
	n := len(s.registers)
	i := sort.Search(n, func(i int) bool {
		return s.registers[i].FullAddress.Cmp(address) >= 0
	})
	if i < n && s.registers[i].FullAddress.Cmp(address) == 0 {
		return s.registers[i], true
	}
	return model.RegisterDefinition{}, false
}

// GetRegisterName is the second external-interface operation spec.md
// §6 names; RegisterDefinition already carries its own name, so this
// is a direct projection.
func (s *SortedResolver) GetRegisterName(reg model.RegisterDefinition) string {
	return reg.Name
}
