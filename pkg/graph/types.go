package graph

import (
	"encoding/json"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node kinds. Kinds affect rendering only, never the layout math.
const (
	KindArtist = "artist"
	KindLabel  = "label"
	KindTrack  = "track"
)

// Edge relation kinds. The relation picks a rendering color downstream;
// it has no effect on force magnitude.
const (
	RelationCollaborated = "collaborated"
	RelationSigned       = "signed"
	RelationMentioned    = "mentioned"
)

// =============================================================================
// Snapshot - Collaboration Graph Serialization
// =============================================================================

// Snapshot is the canonical serialization format for collaboration graphs.
// It is the read-only description of what must be laid out this round,
// produced fresh by the graph-query collaborator whenever the user selects a
// new focal node or changes traversal depth.
//
// A snapshot with zero nodes is valid (the simulator becomes a no-op), and
// edges may reference unknown node IDs (those are dropped at seed time).
type Snapshot struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a graph vertex representing an artist, label, or track.
// Kinematic state (position, velocity) lives in the simulator, not here:
// a snapshot stays immutable for the lifetime of a run.
type Node struct {
	ID      string `json:"id" bson:"id"`
	Name    string `json:"name,omitempty" bson:"name,omitempty"`       // Display name (defaults to ID)
	Kind    string `json:"kind,omitempty" bson:"kind,omitempty"`       // "artist", "label", or "track"
	Flagged bool   `json:"flagged,omitempty" bson:"flagged,omitempty"` // Blocklisted entity, rendering only
}

// DisplayName returns the name if set, otherwise the ID.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// IsArtist returns true if this node represents an artist.
func (n *Node) IsArtist() bool { return n.Kind == KindArtist }

// IsLabel returns true if this node represents a label.
func (n *Node) IsLabel() bool { return n.Kind == KindLabel }

// IsTrack returns true if this node represents a track.
func (n *Node) IsTrack() bool { return n.Kind == KindTrack }

// =============================================================================
// Edge
// =============================================================================

// Edge represents a relation between two nodes in the collaboration graph.
// Weight scales line thickness in rendering and is not used by the layout
// engine's attraction term.
type Edge struct {
	Source string  `json:"source" bson:"source"`
	Target string  `json:"target" bson:"target"`
	Kind   string  `json:"kind,omitempty" bson:"kind,omitempty"`
	Weight float64 `json:"weight,omitempty" bson:"weight,omitempty"`
}

// =============================================================================
// Position / Layout - Engine Output
// =============================================================================

// Position is the per-node output of the layout engine after each tick,
// intended for direct use as SVG/canvas coordinates.
type Position struct {
	ID string  `json:"id" bson:"id"`
	X  float64 `json:"x" bson:"x"`
	Y  float64 `json:"y" bson:"y"`
}

// Layout is the serialization format for a completed layout run: the final
// positions plus the parameters they were computed under. Used for API
// responses, the CLI output file, caching, and the archive store.
type Layout struct {
	Width     float64    `json:"width" bson:"width"`
	Height    float64    `json:"height" bson:"height"`
	Seed      uint64     `json:"seed,omitempty" bson:"seed,omitempty"`
	Ticks     int        `json:"ticks" bson:"ticks"`
	Positions []Position `json:"positions" bson:"positions"`
}

// UnmarshalSnapshot deserializes JSON bytes to a Snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// UnmarshalLayout deserializes JSON bytes to a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, err
	}
	return l, nil
}
