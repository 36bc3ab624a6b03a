package load

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/protobridge"
	"github.com/syssam/protobridge/schema/wire"
)

// TagName is the struct tag key read by the walker. `protobridge:"name"`
// overrides the wire name of a field and `protobridge:"-"` skips it.
const TagName = "protobridge"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// rules keeps Go initialisms in one word: UserID becomes user_id, not
// user_i_d. Longer initialisms come first since rules apply in order.
var rules = func() *inflect.Ruleset {
	rs := inflect.NewRuleset()
	for _, w := range []string{"HTTPS", "HTTP", "UUID", "JSON", "HTML", "XML", "SQL", "URL", "URI", "API", "RPC", "TLS", "TTL", "CPU", "UID", "ID"} {
		rs.AddAcronym(w)
	}
	return rs
}()

// Graph is the closure of the types reachable from a set of entries.
type Graph struct {
	Entries []Entry
	// Nodes holds the struct types of the closure in discovery order.
	Nodes []*TypeNode
	// Requests and Responses hold the distinct parameter and result types
	// of all entries in first-seen order.
	Requests  []reflect.Type
	Responses []reflect.Type

	nodes map[string]*TypeNode
	named map[string]reflect.Type
}

// Node returns the node with the given qualified name.
func (g *Graph) Node(name string) (*TypeNode, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// NodeOf returns the node of the struct type t.
func (g *Graph) NodeOf(t reflect.Type) (*TypeNode, bool) {
	n, ok := g.nodes[wire.Qualified(t)]
	if !ok || n.Type != t {
		return nil, false
	}
	return n, true
}

// Lookup resolves a qualified name to any named type met while walking:
// structs, interfaces and named scalars. It is a wire.Resolver.
func (g *Graph) Lookup(name string) (reflect.Type, bool) {
	t, ok := g.named[name]
	return t, ok
}

// walker computes the closure with a worklist. Nodes are registered when
// they are first reached and filled in when they are popped.
type walker struct {
	graph *Graph
	queue []*TypeNode
	paths map[*TypeNode][]string
}

// Walk computes the closure of the types reachable from the parameter and
// result types of entries. Any type that cannot be named fails the whole
// walk; no partial graph is returned.
func Walk(entries ...Entry) (*Graph, error) {
	w := &walker{
		graph: &Graph{
			Entries: entries,
			nodes:   make(map[string]*TypeNode),
			named:   make(map[string]reflect.Type),
		},
		paths: make(map[*TypeNode][]string),
	}
	seenReq, seenResp := make(map[reflect.Type]bool), make(map[reflect.Type]bool)
	for _, e := range entries {
		for i, t := range e.Params {
			if err := w.reach(t, []string{e.Name, "param" + strconv.Itoa(i)}); err != nil {
				return nil, err
			}
			if !seenReq[t] {
				seenReq[t] = true
				w.graph.Requests = append(w.graph.Requests, t)
			}
		}
		for i, t := range e.Results {
			if err := w.reach(t, []string{e.Name, "result" + strconv.Itoa(i)}); err != nil {
				return nil, err
			}
			if !seenResp[t] {
				seenResp[t] = true
				w.graph.Responses = append(w.graph.Responses, t)
			}
		}
	}
	for len(w.queue) > 0 {
		n := w.queue[0]
		w.queue = w.queue[1:]
		if err := w.visit(n); err != nil {
			return nil, err
		}
	}
	return w.graph, nil
}

// reach records t and every named type under its pointers, slices and
// arrays, and enqueues the struct types among them. Interfaces, maps,
// channels and functions are never expanded.
func (w *walker) reach(t reflect.Type, path []string) error {
	if t == nil {
		return protobridge.NewUnresolvedTypeError("<nil>", path, "nil type")
	}
	for {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			if err := w.record(t, path); err != nil {
				return err
			}
			t = t.Elem()
			continue
		case reflect.Struct:
			_, err := w.enqueue(t, path)
			return err
		}
		return w.record(t, path)
	}
}

func (w *walker) record(t reflect.Type, path []string) error {
	name := wire.Qualified(t)
	if name == "" {
		return nil
	}
	if prev, ok := w.graph.named[name]; ok && prev != t {
		return protobridge.NewUnresolvedTypeError(name, path, "two distinct types share this name")
	}
	w.graph.named[name] = t
	return nil
}

func (w *walker) enqueue(t reflect.Type, path []string) (*TypeNode, error) {
	name := wire.Qualified(t)
	if name == "" {
		return nil, protobridge.NewUnresolvedTypeError(t.String(), path, "anonymous struct types have no message name")
	}
	if n, ok := w.graph.nodes[name]; ok {
		if n.Type != t {
			return nil, protobridge.NewUnresolvedTypeError(name, path, "two distinct types share this name")
		}
		return n, nil
	}
	if err := w.record(t, path); err != nil {
		return nil, err
	}
	n := &TypeNode{Name: name, Kind: KindStruct, Type: t}
	w.graph.nodes[name] = n
	w.graph.Nodes = append(w.graph.Nodes, n)
	w.queue = append(w.queue, n)
	w.paths[n] = path
	return n, nil
}

func (w *walker) visit(n *TypeNode) error {
	t := n.Type
	wireNames := make(map[string]string)
	for i := range t.NumField() {
		sf := t.Field(i)
		tag := sf.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		path := append(w.paths[n][:len(w.paths[n]):len(w.paths[n])], sf.Name)
		if !sf.IsExported() {
			// Reflection cannot set it, so its state would be dropped.
			return protobridge.NewUnresolvedTypeError(n.Name, path,
				fmt.Sprintf("unexported field %s cannot be translated; export it or tag it %s:\"-\"", sf.Name, TagName))
		}
		f := &Field{
			GoName:  sf.Name,
			Ordinal: len(n.Fields),
			Index:   i,
			Type:    sf.Type,
		}
		if isSuper(n, sf) {
			super, err := w.enqueue(sf.Type, path)
			if err != nil {
				return err
			}
			n.Super = super
			f.Shape, f.Node = ShapeSuper, super
			f.Name = wire.SuperField(super.SimpleName())
		} else {
			if err := w.reach(sf.Type, path); err != nil {
				return err
			}
			f.Shape = ShapeOf(sf.Type)
			if f.Shape == ShapeMessage {
				st := sf.Type
				if st.Kind() == reflect.Pointer {
					st, f.Nullable = st.Elem(), true
				}
				f.Node = w.graph.nodes[wire.Qualified(st)]
			}
			name, err := wireName(sf, tag)
			if err != nil {
				return protobridge.NewUnresolvedTypeError(n.Name, path, err.Error())
			}
			f.Name = name
		}
		if prev, ok := wireNames[f.Name]; ok {
			return protobridge.NewUnresolvedTypeError(n.Name, path,
				fmt.Sprintf("fields %s and %s share the wire name %q", prev, sf.Name, f.Name))
		}
		wireNames[f.Name] = sf.Name
		n.Fields = append(n.Fields, f)
	}
	return nil
}

// isSuper reports whether sf links n to its ancestor: the first embedded,
// non-pointer, named struct field.
func isSuper(n *TypeNode, sf reflect.StructField) bool {
	return n.Super == nil && sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Type.Name() != ""
}

func wireName(sf reflect.StructField, tag string) (string, error) {
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = rules.Underscore(sf.Name)
	}
	switch {
	case !identRe.MatchString(name):
		return "", fmt.Errorf("wire name %q of field %s is not an identifier", name, sf.Name)
	case wire.IsSuperField(name):
		return "", fmt.Errorf("wire name %q of field %s uses the reserved suffix %q", name, sf.Name, wire.SuperSuffix)
	}
	return name, nil
}
