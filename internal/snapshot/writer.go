package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nerrad567/wingroute/internal/routing"
)

// DefaultOutputPath is the snapshot file written when no path is
// configured.
const DefaultOutputPath = "wing_routing.json"

// trackRecord is the snapshot file's object shape, one per output
// slot. The key names are fixed: the recording template generator
// reads them by exact spelling.
type trackRecord struct {
	Slot         int    `json:"slot"`
	Name         string `json:"name"`
	ColorR       uint8  `json:"color_r"`
	ColorG       uint8  `json:"color_g"`
	ColorB       uint8  `json:"color_b"`
	ChannelName  string `json:"ch_name"`
	SourceName   string `json:"src_name"`
	HardwareName string `json:"hw_name"`
	ReaperInput  int    `json:"reaper_input"`
	StereoLeft   bool   `json:"stereo_L"`
	StereoRight  bool   `json:"stereo_R"`
	EmptyRouting bool   `json:"is_empty_routing"`
}

// trackRecords converts resolved tracks to the file shape.
func trackRecords(tracks []routing.Track) []trackRecord {
	records := make([]trackRecord, len(tracks))
	for i, t := range tracks {
		records[i] = trackRecord{
			Slot:         t.Slot,
			Name:         t.Name,
			ColorR:       t.Color.R,
			ColorG:       t.Color.G,
			ColorB:       t.Color.B,
			ChannelName:  t.ChannelLabel,
			SourceName:   t.SourceLabel,
			HardwareName: t.HardwareLabel,
			ReaperInput:  t.PlaybackInput,
			StereoLeft:   t.StereoLeft,
			StereoRight:  t.StereoRight,
			EmptyRouting: t.Unrouted,
		}
	}
	return records
}

// EncodeTracks renders the track list as the consumer's indented JSON
// array, trailing newline included.
func EncodeTracks(tracks []routing.Track) ([]byte, error) {
	data, err := json.MarshalIndent(trackRecords(tracks), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tracks: %w", err)
	}
	return append(data, '\n'), nil
}

// Writer is the snapshot-file sink. It is the tool's contract output,
// so it reports itself required: its failure fails the run.
type Writer struct {
	// Path is the destination file; empty takes DefaultOutputPath.
	Path string
}

// Name identifies the sink in logs.
func (w *Writer) Name() string { return "file" }

// Required marks the writer's failure as fatal to the run.
func (w *Writer) Required() bool { return true }

// Store writes the result's track list to the configured path.
func (w *Writer) Store(_ context.Context, result *Result) error {
	path := w.Path
	if path == "" {
		path = DefaultOutputPath
	}
	return WriteFile(path, result.Tracks)
}

// WriteFile writes the track list to path atomically: the JSON is
// staged in a temp file in the target directory and renamed into
// place, so a reader never observes a partial file.
//
// Parameters:
//   - path: Destination file path
//   - tracks: Resolved track list, in slot order
//
// Returns:
//   - error: Encoding or filesystem failure
func WriteFile(path string, tracks []routing.Track) error {
	data, err := EncodeTracks(tracks)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}

	// CreateTemp's 0600 would make the snapshot unreadable to the
	// session-template tooling running as another user.
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
