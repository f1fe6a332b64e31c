package snapshot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/wingroute/internal/console"
	"github.com/nerrad567/wingroute/internal/infrastructure/config"
	"github.com/nerrad567/wingroute/internal/routing"
	"github.com/nerrad567/wingroute/internal/snapshot"
)

// fakeTransport simulates a console: every known address answers its
// canned value on the next Receive.
type fakeTransport struct {
	values map[console.Address]string
	queue  []console.Message
	closed bool
}

func (t *fakeTransport) Send(addr console.Address) error {
	if v, ok := t.values[addr]; ok {
		t.queue = append(t.queue, console.Message{Address: addr, Args: []string{v}})
	}
	return nil
}

func (t *fakeTransport) Receive(_ time.Time) (console.Message, error) {
	if len(t.queue) == 0 {
		return console.Message{}, console.ErrReceiveTimeout
	}
	msg := t.queue[0]
	t.queue = t.queue[1:]
	return msg, nil
}

func (t *fakeTransport) Close() error {
	t.closed = true
	return nil
}

// fastConsole returns query tuning that keeps retry rounds from
// sleeping in tests.
func fastConsole() config.ConsoleConfig {
	return config.ConsoleConfig{
		Host:           "192.168.8.3",
		Port:           2223,
		Interface:      "USB",
		BatchSize:      1000,
		QueryTimeoutMs: 1,
		ProbeTimeoutMs: 1,
		QueryAttempts:  2,
	}
}

// simulatedDevice builds the canned address map of a small console:
// padded-2 strips, padded-3 sources, conn routing pointers; outputs
// 1/2 carry MAIN 1/2, output 3 is OFF, output 4 takes channel 5.
func simulatedDevice() map[console.Address]string {
	return map[console.Address]string{
		// Probe answers selecting the conventions.
		"/ch/01/name":          "Kick",
		"/src/001/name":        "probe",
		"/src/001/in/conn/grp": "LCL",

		// Output slot routing pointers.
		"/io/out/USB/1/grp": "MAIN",
		"/io/out/USB/1/in":  "1",
		"/io/out/USB/2/grp": "MAIN",
		"/io/out/USB/2/in":  "2",
		"/io/out/USB/3/grp": "OFF",
		"/io/out/USB/4/grp": "CH",
		"/io/out/USB/4/in":  "5",

		// Bus and strip metadata.
		"/main/01/name":      "Mains",
		"/ch/05/name":        "Vocal",
		"/ch/05/col":         "9",
		"/ch/05/led":         "1",
		"/ch/05/in/conn/grp": "A",
		"/ch/05/in/conn/in":  "3",

		// The hardware input channel 5 listens to.
		"/io/in/A/3/name": "VocalSrc",
		"/io/in/A/3/mode": "M",
	}
}

func runSimulated(t *testing.T, consoleCfg config.ConsoleConfig, snapCfg config.SnapshotConfig) (*snapshot.Result, *fakeTransport) {
	t.Helper()

	transport := &fakeTransport{values: simulatedDevice()}
	result, err := snapshot.Run(context.Background(), snapshot.Options{
		Console:  consoleCfg,
		Snapshot: snapCfg,
		Dial: func(_ console.ClientConfig) (console.Transport, error) {
			return transport, nil
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result, transport
}

func TestRun_EndToEnd(t *testing.T) {
	result, transport := runSimulated(t, fastConsole(), config.SnapshotConfig{NameMode: "CH"})

	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if result.OutCount != routing.OutCountUSB {
		t.Errorf("OutCount = %d, want %d", result.OutCount, routing.OutCountUSB)
	}
	if len(result.Tracks) != routing.OutCountUSB {
		t.Fatalf("got %d tracks, want %d", len(result.Tracks), routing.OutCountUSB)
	}
	if !transport.closed {
		t.Error("transport not closed after run")
	}

	// Slots 1/2: adjacent MAIN 1/2 pair as stereo mains.
	left, right := result.Tracks[0], result.Tracks[1]
	if !left.StereoLeft || !right.StereoRight {
		t.Errorf("mains not paired: left=%+v right=%+v", left, right)
	}
	if left.Name != "Mains" {
		t.Errorf("left name = %q, want Mains", left.Name)
	}
	if right.Name != "Mains R" {
		t.Errorf("right name = %q, want Mains R", right.Name)
	}
	if left.PlaybackInput != routing.StereoInputBase {
		t.Errorf("left playback input = %d, want %d", left.PlaybackInput, routing.StereoInputBase)
	}

	// Slot 3: OFF pointer yields the placeholder and neutral color.
	off := result.Tracks[2]
	if !off.Unrouted {
		t.Error("OFF slot not marked unrouted")
	}
	if off.Name != "(INPUT 3 NOT ROUTED)" {
		t.Errorf("OFF slot name = %q", off.Name)
	}
	if off.Color != (routing.RGB{R: 60, G: 60, B: 60}) {
		t.Errorf("OFF slot color = %+v, want neutral", off.Color)
	}

	// Slot 4: channel 5's own name and palette color.
	vocal := result.Tracks[3]
	if vocal.Name != "Vocal" {
		t.Errorf("vocal name = %q", vocal.Name)
	}
	if vocal.Color != routing.PaletteColor(9) {
		t.Errorf("vocal color = %+v, want palette 9", vocal.Color)
	}
	if vocal.Ref != (routing.Reference{Group: routing.GroupAES50A, Index: 3}) {
		t.Errorf("vocal ref = %+v, want A 3", vocal.Ref)
	}
	if vocal.StereoLeft || vocal.StereoRight {
		t.Error("vocal should stay mono")
	}

	// Silent slots are unrouted placeholders.
	if !result.Tracks[10].Unrouted {
		t.Error("silent slot not unrouted")
	}
}

func TestRun_Counts(t *testing.T) {
	result, _ := runSimulated(t, fastConsole(), config.SnapshotConfig{NameMode: "CH"})

	if got := result.StereoPairCount(); got != 1 {
		t.Errorf("StereoPairCount() = %d, want 1", got)
	}
	// 48 slots minus mains pair and the vocal channel.
	if got := result.UnroutedCount(); got != routing.OutCountUSB-3 {
		t.Errorf("UnroutedCount() = %d, want %d", got, routing.OutCountUSB-3)
	}
	if result.Stats.RequestsSent == 0 {
		t.Error("engine stats not captured")
	}
	if result.Probe.ChannelFormat != console.FormatPadded2 {
		t.Errorf("probe channel format = %v, want 2-digit", result.Probe.ChannelFormat)
	}
}

func TestRun_Summary(t *testing.T) {
	result, _ := runSimulated(t, fastConsole(), config.SnapshotConfig{NameMode: "CH"})

	s := result.Summary()
	if s.RunID != result.RunID {
		t.Errorf("summary run id = %q, want %q", s.RunID, result.RunID)
	}
	if s.ConsoleHost != "192.168.8.3" || s.Interface != "USB" {
		t.Errorf("summary endpoint = %q/%q", s.ConsoleHost, s.Interface)
	}
	if s.Tracks != routing.OutCountUSB || s.StereoPairs != 1 {
		t.Errorf("summary counts = %+v", s)
	}

	data, err := result.SummaryJSON()
	if err != nil {
		t.Fatalf("SummaryJSON() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("SummaryJSON() empty")
	}
}

func TestRun_LowercaseInterfaceNormalized(t *testing.T) {
	cfg := fastConsole()
	cfg.Interface = "usb"
	result, _ := runSimulated(t, cfg, config.SnapshotConfig{NameMode: "CH"})

	if result.Interface != "USB" {
		t.Errorf("Interface = %q, want USB", result.Interface)
	}
	// The address namespace must match the device's spelling too.
	if result.Tracks[3].Name != "Vocal" {
		t.Errorf("slot 4 name = %q, want Vocal", result.Tracks[3].Name)
	}
}

func TestRun_DialError(t *testing.T) {
	dialErr := errors.New("no route to host")
	_, err := snapshot.Run(context.Background(), snapshot.Options{
		Console: fastConsole(),
		Dial: func(_ console.ClientConfig) (console.Transport, error) {
			return nil, dialErr
		},
	})
	if !errors.Is(err, snapshot.ErrConsoleDial) {
		t.Errorf("err = %v, want ErrConsoleDial", err)
	}
	if !errors.Is(err, dialErr) {
		t.Errorf("err = %v, want wrapped dial cause", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := &fakeTransport{values: simulatedDevice()}
	_, err := snapshot.Run(ctx, snapshot.Options{
		Console: fastConsole(),
		Dial: func(_ console.ClientConfig) (console.Transport, error) {
			return transport, nil
		},
	})
	if err == nil {
		t.Fatal("Run() should fail on cancelled context")
	}
	if !transport.closed {
		t.Error("transport leaked on cancelled run")
	}
}

// recordingSink captures the result it was handed.
type recordingSink struct {
	name     string
	err      error
	required bool
	got      *snapshot.Result
}

func (s *recordingSink) Name() string   { return s.name }
func (s *recordingSink) Required() bool { return s.required }

func (s *recordingSink) Store(_ context.Context, result *snapshot.Result) error {
	s.got = result
	return s.err
}

func TestApplySinks_AllApplied(t *testing.T) {
	result := &snapshot.Result{RunID: "r"}
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}

	err := snapshot.ApplySinks(context.Background(), result, []snapshot.Sink{a, b}, nil)
	if err != nil {
		t.Fatalf("ApplySinks() error = %v", err)
	}
	if a.got != result || b.got != result {
		t.Error("sinks did not all receive the result")
	}
}

func TestApplySinks_OptionalFailureTolerated(t *testing.T) {
	result := &snapshot.Result{RunID: "r"}
	broken := &recordingSink{name: "archive", err: errors.New("db locked")}
	after := &recordingSink{name: "mqtt"}

	err := snapshot.ApplySinks(context.Background(), result, []snapshot.Sink{broken, after}, nil)
	if err != nil {
		t.Fatalf("optional sink failure should not fail the run: %v", err)
	}
	if after.got == nil {
		t.Error("later sink skipped after earlier failure")
	}
}

func TestApplySinks_RequiredFailureFatal(t *testing.T) {
	result := &snapshot.Result{RunID: "r"}
	writer := &recordingSink{name: "file", err: errors.New("read-only fs"), required: true}
	after := &recordingSink{name: "mqtt"}

	err := snapshot.ApplySinks(context.Background(), result, []snapshot.Sink{writer, after}, nil)
	if !errors.Is(err, snapshot.ErrSinkFailed) {
		t.Errorf("err = %v, want ErrSinkFailed", err)
	}
	if after.got == nil {
		t.Error("later sink skipped after required failure")
	}
}
