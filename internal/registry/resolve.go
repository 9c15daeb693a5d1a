package registry

import "fmt"

// Resolve walks the registry's named cross-references (TL <-> Print <->
// TypeMap <-> TLV rules) and converts them to stable integer handles, so
// that the runtime hot path in internal/parser and internal/output never
// touches strings for these links (§9 design note). printIndex maps a print
// template name to its handle in internal/output's template table.
//
// Resolve also breaks the one structural cycle the configuration format
// allows: a TLV rule's content-TL override pointing back at a TL schema
// whose own default print template references a print block that in turn
// cannot reference a structure (print templates never reference TL schemas
// or structures, so no cycle can actually form there; this function still
// validates every reference resolves to catch a broken/missing name early,
// which is the practical form "breaking the cycle" takes here: an error at
// load time rather than an infinite lookup at run time).
func (r *Registry) Resolve(printIndex map[string]int) error {
	for _, tl := range r.TLSchemas {
		if tl.DefaultPrintTemplate != "" {
			idx, ok := printIndex[tl.DefaultPrintTemplate]
			if !ok {
				return fmt.Errorf("registry: tl %q references unknown print template %q", tl.Name, tl.DefaultPrintTemplate)
			}
			tl.PrintTemplate = idx
		} else {
			tl.PrintTemplate = NoHandle
		}
		if tl.TypeMapName != "" {
			idx, ok := r.TypeByName[tl.TypeMapName]
			if !ok {
				return fmt.Errorf("registry: tl %q references unknown typemap %q", tl.Name, tl.TypeMapName)
			}
			tl.TypeMapHandle = idx
		} else {
			tl.TypeMapHandle = NoHandle
		}
	}

	for _, st := range r.Structures {
		idx, ok := r.TLByName[st.TLName]
		if !ok {
			return fmt.Errorf("registry: structure %q references unknown tl %q", st.Name, st.TLName)
		}
		st.ContentTL = idx

		if st.PrintTemplateName != "" {
			pidx, ok := printIndex[st.PrintTemplateName]
			if !ok {
				return fmt.Errorf("registry: structure %q references unknown print template %q", st.Name, st.PrintTemplateName)
			}
			st.PrintTemplate = pidx
		} else {
			st.PrintTemplate = NoHandle
		}

		for _, rule := range st.Rules {
			if rule.ContentTLName != "" {
				cidx, ok := r.TLByName[rule.ContentTLName]
				if !ok {
					return fmt.Errorf("registry: tlv rule %q references unknown tl %q", rule.Name, rule.ContentTLName)
				}
				rule.ContentTL = cidx
			} else {
				rule.ContentTL = NoHandle
			}
			if rule.PrintTemplateName != "" {
				pidx, ok := printIndex[rule.PrintTemplateName]
				if !ok {
					return fmt.Errorf("registry: tlv rule %q references unknown print template %q", rule.Name, rule.PrintTemplateName)
				}
				rule.PrintTemplate = pidx
			} else {
				rule.PrintTemplate = NoHandle
			}
		}
	}
	return nil
}
