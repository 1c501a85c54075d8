package core

// Candidate is a named set of mutable text components being optimized. The
// component-name set is fixed for a whole run: it is defined by the seed
// candidate and no mutation may add or remove names. A Candidate is treated
// as immutable once produced; WithTexts returns a fresh copy.
type Candidate struct {
	// Names holds the component names in their fixed insertion order.
	Names []string `json:"names"`
	// Texts maps each component name to its current text.
	Texts map[string]string `json:"texts"`
}

// Component is a single named text used to build a seed candidate.
type Component struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// NewCandidate builds a candidate from ordered components. Duplicate names
// keep the first occurrence's position and the last occurrence's text.
func NewCandidate(components ...Component) Candidate {
	c := Candidate{
		Names: make([]string, 0, len(components)),
		Texts: make(map[string]string, len(components)),
	}
	for _, comp := range components {
		if _, seen := c.Texts[comp.Name]; !seen {
			c.Names = append(c.Names, comp.Name)
		}
		c.Texts[comp.Name] = comp.Text
	}
	return c
}

// Text returns the text of the named component.
func (c Candidate) Text(name string) (string, bool) {
	text, ok := c.Texts[name]
	return text, ok
}

// Len returns the number of components.
func (c Candidate) Len() int {
	return len(c.Names)
}

// Clone returns a deep copy of the candidate.
func (c Candidate) Clone() Candidate {
	out := Candidate{
		Names: make([]string, len(c.Names)),
		Texts: make(map[string]string, len(c.Texts)),
	}
	copy(out.Names, c.Names)
	for k, v := range c.Texts {
		out.Texts[k] = v
	}
	return out
}

// WithTexts returns a copy of the candidate with the given component texts
// replaced. Names not present in the candidate are ignored: the component
// name set never changes after the seed.
func (c Candidate) WithTexts(updates map[string]string) Candidate {
	out := c.Clone()
	for name, text := range updates {
		if _, ok := out.Texts[name]; ok {
			out.Texts[name] = text
		}
	}
	return out
}

// Equal reports whether two candidates share the same names, order and texts.
func (c Candidate) Equal(other Candidate) bool {
	if len(c.Names) != len(other.Names) {
		return false
	}
	for i, name := range c.Names {
		if other.Names[i] != name {
			return false
		}
		if c.Texts[name] != other.Texts[name] {
			return false
		}
	}
	return true
}
