package output

import "strings"

// PathSeparator joins ancestor names into the dot-separated path a rule's
// Path field is matched against (§4.7, §4.8).
const PathSeparator = '.'

// pathStack is the live hierarchy of constructed-item names the parser is
// currently inside. It is rebuilt lazily; most triplets never query it, so
// the join is deferred until something asks for the string form.
type pathStack struct {
	names []string
	cache string
	dirty bool
}

func (p *pathStack) down(name string) {
	p.names = append(p.names, name)
	p.dirty = true
}

func (p *pathStack) up() {
	if len(p.names) == 0 {
		return
	}
	p.names = p.names[:len(p.names)-1]
	p.dirty = true
}

func (p *pathStack) level() int {
	return len(p.names)
}

func (p *pathStack) at(i int) string {
	return p.names[i]
}

func (p *pathStack) String() string {
	if p.dirty {
		p.cache = strings.Join(p.names, string(PathSeparator))
		p.dirty = false
	}
	return p.cache
}
