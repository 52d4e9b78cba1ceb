// Package events declares the lifecycle signals emitted by working memory,
// scenes and the snapshot store. Emission is fire-and-forget: nothing in the
// core waits on or requires a listener.
package events

import "github.com/zoobzio/capitan"

// Signals follow the pattern: <component>.<entity>.<event>.
var (
	// Working memory signals.
	NodeAdded = capitan.NewSignal(
		"memory.node.added",
		"Memory node stored or overwritten in working memory",
	)
	NodeForgotten = capitan.NewSignal(
		"memory.node.forgotten",
		"Memory node removed from working memory",
	)
	PathReinforced = capitan.NewSignal(
		"memory.path.reinforced",
		"Every node along a unit-cost path was reinforced",
	)

	// Scene signals.
	FrameAdded = capitan.NewSignal(
		"scene.frame.added",
		"Frame appended to the scene buffer",
	)
	FrameEvicted = capitan.NewSignal(
		"scene.frame.evicted",
		"Oldest frame dropped from a full scene buffer",
	)
	MemoryCommitted = capitan.NewSignal(
		"scene.memory.committed",
		"Single entity committed to working memory",
	)
	GroupCommitted = capitan.NewSignal(
		"scene.group.committed",
		"Entity cluster committed to working memory under a group label",
	)
	EdgeReinforced = capitan.NewSignal(
		"scene.edge.reinforced",
		"Existing temporal edge between co-occurring entities reinforced",
	)

	// Store signals.
	SnapshotSaved = capitan.NewSignal(
		"store.snapshot.saved",
		"Working memory and scene state written as a new snapshot version",
	)
	SnapshotFailed = capitan.NewSignal(
		"store.snapshot.failed",
		"Snapshot write failed",
	)
)

// Field keys for event data.
var (
	FieldLabel       = capitan.NewStringKey("label")
	FieldGroup       = capitan.NewStringKey("group")
	FieldPairKey     = capitan.NewStringKey("pair_key")
	FieldMemberCount = capitan.NewIntKey("member_count")
	FieldPathLength  = capitan.NewIntKey("path_length")
	FieldBufferLen   = capitan.NewIntKey("buffer_len")
	FieldNodeCount   = capitan.NewIntKey("node_count")
	FieldVersionID   = capitan.NewStringKey("version_id")
	FieldWeight      = capitan.NewFloat32Key("weight")
	FieldError       = capitan.NewErrorKey("error")
)
