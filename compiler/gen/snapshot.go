package gen

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot records the (message, field, tag) tuples of a schema. Comparing
// the snapshot of a previous run with the current schema reveals tag drift
// before it reaches the wire.
type Snapshot struct {
	Package  string            `msgpack:"package"`
	Messages []SnapshotMessage `msgpack:"messages"`
}

// SnapshotMessage is one message of a snapshot.
type SnapshotMessage struct {
	Name   string          `msgpack:"name"`
	Fields []SnapshotField `msgpack:"fields"`
}

// SnapshotField is one field of a snapshot message.
type SnapshotField struct {
	Name string `msgpack:"name"`
	Tag  int    `msgpack:"tag"`
	Type string `msgpack:"type"`
}

// Snapshot returns the snapshot of the schema.
func (s *Schema) Snapshot() *Snapshot {
	snap := &Snapshot{Package: s.Package, Messages: make([]SnapshotMessage, 0, len(s.Messages))}
	for _, m := range s.Messages {
		sm := SnapshotMessage{Name: m.Name, Fields: make([]SnapshotField, 0, len(m.Fields))}
		for _, f := range m.Fields {
			typ := f.TypeString()
			if f.Repeated {
				typ = "repeated " + typ
			}
			sm.Fields = append(sm.Fields, SnapshotField{Name: f.Name, Tag: f.Tag, Type: typ})
		}
		snap.Messages = append(snap.Messages, sm)
	}
	return snap
}

// Marshal encodes the snapshot with msgpack.
func (s *Snapshot) Marshal() ([]byte, error) {
	return msgpack.Marshal(s)
}

// UnmarshalSnapshot decodes a snapshot written by Marshal.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// Drift is one incompatible change between two snapshots.
type Drift struct {
	Message string
	Field   string
	// Reason describes the change, e.g. "tag 2 -> 3".
	Reason string
}

func (d Drift) String() string {
	if d.Field == "" {
		return fmt.Sprintf("%s: %s", d.Message, d.Reason)
	}
	return fmt.Sprintf("%s.%s: %s", d.Message, d.Field, d.Reason)
}

// CheckStability compares next against prev. A field that kept its name
// but changed tag or type, a removed field, and a tag reused by another
// field all drift. New messages and fields appended with fresh tags are
// compatible.
func CheckStability(prev, next *Snapshot) []Drift {
	if prev == nil || next == nil {
		return nil
	}
	var drift []Drift
	if prev.Package != next.Package {
		drift = append(drift, Drift{Message: next.Package, Reason: fmt.Sprintf("package %q -> %q", prev.Package, next.Package)})
	}
	messages := make(map[string]SnapshotMessage, len(next.Messages))
	for _, m := range next.Messages {
		messages[m.Name] = m
	}
	for _, pm := range prev.Messages {
		nm, ok := messages[pm.Name]
		if !ok {
			drift = append(drift, Drift{Message: pm.Name, Reason: "message removed"})
			continue
		}
		byName := make(map[string]SnapshotField, len(nm.Fields))
		byTag := make(map[int]SnapshotField, len(nm.Fields))
		for _, f := range nm.Fields {
			byName[f.Name] = f
			byTag[f.Tag] = f
		}
		for _, pf := range pm.Fields {
			nf, ok := byName[pf.Name]
			switch {
			case !ok:
				if other, taken := byTag[pf.Tag]; taken {
					drift = append(drift, Drift{Message: pm.Name, Field: pf.Name, Reason: fmt.Sprintf("tag %d reused by %s", pf.Tag, other.Name)})
				} else {
					drift = append(drift, Drift{Message: pm.Name, Field: pf.Name, Reason: "field removed"})
				}
			case nf.Tag != pf.Tag:
				drift = append(drift, Drift{Message: pm.Name, Field: pf.Name, Reason: fmt.Sprintf("tag %d -> %d", pf.Tag, nf.Tag)})
			case nf.Type != pf.Type:
				drift = append(drift, Drift{Message: pm.Name, Field: pf.Name, Reason: fmt.Sprintf("type %s -> %s", pf.Type, nf.Type)})
			}
		}
	}
	return drift
}
