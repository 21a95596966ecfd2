package nodegraph

// Target is one destination attribute of a mapping entry.
type Target struct {
	Name   string `yaml:"name"`
	Invert bool   `yaml:"invert"`
}

// Mapping is the derived source attribute -> target attributes table. Sources
// keep their first-seen order.
type Mapping struct {
	order   []string
	entries map[string][]Target
}

func (m *Mapping) add(source string, t Target) {
	if m.entries == nil {
		m.entries = make(map[string][]Target)
	}
	if _, ok := m.entries[source]; !ok {
		m.order = append(m.order, source)
	}
	m.entries[source] = append(m.entries[source], t)
}

func (m *Mapping) remove(source, target string) bool {
	targets, ok := m.entries[source]
	if !ok {
		return false
	}
	for i, t := range targets {
		if t.Name != target {
			continue
		}
		targets = append(targets[:i], targets[i+1:]...)
		if len(targets) == 0 {
			delete(m.entries, source)
			for j, s := range m.order {
				if s == source {
					m.order = append(m.order[:j], m.order[j+1:]...)
					break
				}
			}
		} else {
			m.entries[source] = targets
		}
		return true
	}
	return false
}

func (m *Mapping) find(source, target string) *Target {
	targets := m.entries[source]
	for i := range targets {
		if targets[i].Name == target {
			return &targets[i]
		}
	}
	return nil
}

func (m Mapping) Len() int { return len(m.order) }

func (m Mapping) Sources() []string {
	return append([]string(nil), m.order...)
}

func (m Mapping) Targets(source string) []Target {
	return append([]Target(nil), m.entries[source]...)
}

func (m Mapping) Contains(source, target string) bool {
	return m.find(source, target) != nil
}

func (m Mapping) Invert(source, target string) (bool, bool) {
	t := m.find(source, target)
	if t == nil {
		return false, false
	}
	return t.Invert, true
}

// Names is the plain form: source -> target names.
func (m Mapping) Names() map[string][]string {
	out := make(map[string][]string, len(m.order))
	for _, source := range m.order {
		for _, t := range m.entries[source] {
			out[source] = append(out[source], t.Name)
		}
	}
	return out
}

// Entries is the rich form keyed by source.
func (m Mapping) Entries() map[string][]Target {
	out := make(map[string][]Target, len(m.order))
	for _, source := range m.order {
		out[source] = m.Targets(source)
	}
	return out
}

// Translator turns a slot name into the key emitted in the mapping. It must
// return its input unchanged for names it does not know.
type Translator func(string) string

func identity(name string) string { return name }

// OutputTemplate replaces the built-in mapping when configured. Each call
// reports whether it changed the template.
type OutputTemplate interface {
	Add(source, target string, invert bool) bool
	Remove(source, target string) bool
	ToggleInvert(source, target string) bool
	SetInvert(source, target string, invert bool) bool
	Mapping() Mapping
}

// Template is an in-memory OutputTemplate keeping its own invert flags.
type Template struct {
	m Mapping
}

func NewTemplate() *Template {
	return &Template{}
}

func (t *Template) Add(source, target string, invert bool) bool {
	if t.m.Contains(source, target) {
		return false
	}
	t.m.add(source, Target{Name: target, Invert: invert})
	return true
}

func (t *Template) Remove(source, target string) bool {
	return t.m.remove(source, target)
}

func (t *Template) ToggleInvert(source, target string) bool {
	e := t.m.find(source, target)
	if e == nil {
		return false
	}
	e.Invert = !e.Invert
	return true
}

func (t *Template) SetInvert(source, target string, invert bool) bool {
	e := t.m.find(source, target)
	if e == nil || e.Invert == invert {
		return false
	}
	e.Invert = invert
	return true
}

func (t *Template) Mapping() Mapping {
	var out Mapping
	for _, source := range t.m.order {
		for _, target := range t.m.entries[source] {
			out.add(source, target)
		}
	}
	return out
}

// AttributeShortNames translates the long channel names used by animation
// hosts ("Translate X") into their short keys ("tx").
func AttributeShortNames() Translator {
	short := map[string]string{
		"Translate X": "tx", "Translate Y": "ty", "Translate Z": "tz",
		"Rotate X": "rx", "Rotate Y": "ry", "Rotate Z": "rz",
		"Scale X": "sx", "Scale Y": "sy", "Scale Z": "sz",
		"Visibility": "v",
	}
	return func(name string) string {
		if s, ok := short[name]; ok {
			return s
		}
		return name
	}
}
