package load

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Entry is one RPC-style entry point. Its parameter and result types seed
// the type closure.
type Entry struct {
	Name    string
	Params  []reflect.Type
	Results []reflect.Type
}

// FromFunc builds an Entry from the signature of fn. Context parameters and
// error results are transport plumbing and are left out.
func FromFunc(name string, fn any) (Entry, error) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return Entry{}, fmt.Errorf("load: entry %q is not a function: %T", name, fn)
	}
	return fromSignature(name, t, 0), nil
}

// FromMethods builds one Entry per exported method of t. For a struct type
// the method set of its pointer is used, so pointer receivers are included.
func FromMethods(t reflect.Type) ([]Entry, error) {
	if t == nil {
		return nil, fmt.Errorf("load: nil service type")
	}
	if t.Kind() == reflect.Struct {
		t = reflect.PointerTo(t)
	}
	if t.NumMethod() == 0 {
		return nil, fmt.Errorf("load: service %s has no exported methods", t)
	}
	// Methods of concrete types carry the receiver as their first input.
	skip := 1
	if t.Kind() == reflect.Interface {
		skip = 0
	}
	entries := make([]Entry, 0, t.NumMethod())
	for i := range t.NumMethod() {
		m := t.Method(i)
		entries = append(entries, fromSignature(m.Name, m.Type, skip))
	}
	return entries, nil
}

// Service returns the entries of the service type T. It panics if T has no
// exported methods and is meant for package-level wiring.
func Service[T any]() []Entry {
	entries, err := FromMethods(reflect.TypeFor[T]())
	if err != nil {
		panic(err)
	}
	return entries
}

func fromSignature(name string, t reflect.Type, skip int) Entry {
	e := Entry{Name: name}
	for i := skip; i < t.NumIn(); i++ {
		if in := t.In(i); in != contextType {
			e.Params = append(e.Params, in)
		}
	}
	for i := range t.NumOut() {
		if out := t.Out(i); out != errorType {
			e.Results = append(e.Results, out)
		}
	}
	return e
}
