package mqtt

// Topic constants for the snapshot announce surface.
//
// All topics are retained: a recording workstation that subscribes
// after a snapshot run still sees the latest routing state.
const (
	// TopicStatus carries the tool's online/offline status, including
	// the broker-published LWT on an unclean disconnect.
	TopicStatus = "wingroute/status"

	// TopicSnapshot carries a compact JSON summary of the latest run
	// (run id, timestamp, console, counts).
	TopicSnapshot = "wingroute/snapshot"

	// TopicSnapshotTracks carries the full track array, in the same
	// shape as the routing JSON file.
	TopicSnapshotTracks = "wingroute/snapshot/tracks"
)
