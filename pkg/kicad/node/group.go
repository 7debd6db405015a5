package node

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// TStamp derives reproducible element uuids from a seed, so regenerating
// a footprint keeps every uuid unchanged
type TStamp struct {
	Seed uuid.UUID
}

// NewTStamp returns a generator seeded by a name, usually the footprint
func NewTStamp(name string) TStamp {
	return TStamp{Seed: uuid.NewSHA1(uuid.NameSpaceURL, []byte("fpgen:"+name))}
}

// Derive returns the uuid of a node identified by uniqueID. The node
// description is part of the name so that changed content changes the uuid.
func (t TStamp) Derive(n Node, uniqueID string) uuid.UUID {
	content := "*"
	if d, ok := n.(interface{ Describe() string }); ok {
		sum := sha1.Sum([]byte(d.Describe()))
		content = hex.EncodeToString(sum[:])
	}
	return uuid.NewSHA1(t.Seed, []byte(fmt.Sprintf("fpgen.node.%s.%s.%s", n.Kind(), uniqueID, content)))
}

// Assign sets the uuid of n unless it already has one
func (t TStamp) Assign(n Node, uniqueID string) uuid.UUID {
	b := n.base()
	if b.UUID == uuid.Nil {
		b.UUID = t.Derive(n, uniqueID)
	}
	return b.UUID
}

// Group ties nodes together for selection in the editor
type Group struct {
	Base
	Name    string
	members []uuid.UUID
}

// NewGroup returns a group whose uuid and member uuids come from ts
func NewGroup(name string, ts TStamp, members ...Node) *Group {
	g := &Group{Name: name}
	bind(g)
	g.UUID = uuid.NewSHA1(ts.Seed, []byte("fpgen.node.Group."+name))
	for i, m := range members {
		g.AddMember(ts.Assign(m, fmt.Sprintf("%s.%d", name, i)))
	}
	return g
}

// AddMember adds a member uuid once
func (g *Group) AddMember(id uuid.UUID) {
	if !slices.Contains(g.members, id) {
		g.members = append(g.members, id)
	}
}

// RemoveMember drops a member uuid
func (g *Group) RemoveMember(id uuid.UUID) {
	g.members = slices.DeleteFunc(g.members, func(m uuid.UUID) bool { return m == id })
}

// Members returns the member uuids sorted by their text form
func (g *Group) Members() []string {
	out := make([]string, len(g.members))
	for i, m := range g.members {
		out[i] = m.String()
	}
	slices.Sort(out)
	return out
}

func (g *Group) Kind() Kind { return KindGroup }

func (g *Group) Transformed(geom.Motion) Primitive {
	out := &Group{Name: g.Name, members: slices.Clone(g.members)}
	out.UUID = g.UUID
	return out
}

func (g *Group) Describe() string {
	return fmt.Sprintf("Group [name: %q, members: %d]", g.Name, len(g.members))
}
