package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Graph is an ordered list of render nodes drawn into one target. The first
// node clears the target; each later node draws over the result of the
// nodes before it.
//
// Depth follows the same rule: node 0 clears the depth attachment and later
// nodes load it. A depth-tested node after a node 0 without depth therefore
// starts from whatever the depth texture held, so graphs that use depth
// should enable it on node 0.
type Graph struct {
	builders []*NodeBuilder
	nodes    []*Node
	clear    gputypes.Color
	built    bool
}

// NewGraph returns an empty graph that clears to opaque black.
func NewGraph() *Graph {
	return &Graph{clear: defaultClearColor}
}

// SetClearColor sets the color the first node clears to.
func (g *Graph) SetClearColor(c gputypes.Color) {
	g.clear = c
	for _, n := range g.nodes {
		n.clear = c
	}
}

// AddNode appends a node builder. Nodes run in the order they were added.
func (g *Graph) AddNode(b *NodeBuilder) {
	g.builders = append(g.builders, b)
}

// Build builds every node in order. It runs once; on failure the nodes
// built so far are destroyed and the builders not yet reached release
// their uniform buffers.
func (g *Graph) Build(cache *ResourceCache, colorFormat gputypes.TextureFormat) error {
	if g.built {
		return ErrGraphAlreadyBuilt
	}
	g.built = true

	nodes := make([]*Node, 0, len(g.builders))
	for i, b := range g.builders {
		n, err := b.Build(cache, colorFormat)
		if err != nil {
			for _, built := range nodes {
				built.Destroy()
			}
			g.releasePending(g.builders[i+1:])
			g.builders = nil
			return fmt.Errorf("build graph: %w", err)
		}
		n.clear = g.clear
		nodes = append(nodes, n)
	}
	g.nodes = nodes
	g.builders = nil

	Logger().Info("render graph built", "nodes", len(nodes))
	return nil
}

// Execute records every node into encoder, targeting view.
func (g *Graph) Execute(view hal.TextureView, cache *ResourceCache, encoder PassEncoder) error {
	for i, n := range g.nodes {
		if err := n.Execute(i, view, cache, encoder); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of built nodes, or of pending builders before Build.
func (g *Graph) Len() int {
	if g.built {
		return len(g.nodes)
	}
	return len(g.builders)
}

// Built reports whether Build has been called.
func (g *Graph) Built() bool { return g.built }

// Nodes returns the built nodes in execution order.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Destroy releases every node, and the uniform buffers of builders that
// were never built.
func (g *Graph) Destroy() {
	for _, n := range g.nodes {
		n.Destroy()
	}
	g.nodes = nil
	g.releasePending(g.builders)
	g.builders = nil
}

func (g *Graph) releasePending(builders []*NodeBuilder) {
	for _, b := range builders {
		if !b.built {
			b.releaseUniforms()
		}
	}
}
