package coordinator

import (
	"sync"
	"time"

	"station/internal/codec"
	"station/internal/connection"
	"station/internal/hotkey"
	"station/internal/input"
	"station/internal/practice"
)

// StreamSender is implemented by connection.Engine: it lets the
// coordinator push an outbound stream frame (game data, and later match
// info / joystick descriptors, §4.1) without the coordinator knowing
// anything about sockets.
type StreamSender interface {
	SendStreamFrame(codec.StreamFrame)
}

// RescanFunc triggers a fresh enumeration pass on whatever input.Source
// the poller is driving (§4.3's manual rescan command).
type RescanFunc func()

// Coordinator is the single owner of session state: control flags,
// alliance/team/game-data, the joystick table, the practice sequencer,
// connection status and telemetry, and the event streams fed by the
// stream channel. Control flags, alliance/team/game-data, connection
// status, telemetry and the practice-phase cache sit behind one mutex,
// which every method reading or changing them takes, so operator,
// practice, and hotkey intents merge consistently (§4.6). The joystick
// table (Slots), practice sequencer (Practice) and hotkey queue (Actions)
// each lock their own mutex and are not guarded by it; methods that only
// touch them, such as SetPracticeTiming, take no coordinator lock.
type Coordinator struct {
	mu sync.Mutex

	control  codec.ControlFlags
	request  codec.RequestFlags
	alliance codec.Alliance
	team     int
	useUSB   bool
	gameData string

	connState connection.State
	status    codec.StatusFlags
	voltage   float64
	telemetry codec.TelemetryData
	tripTime  time.Duration
	lostCount uint32

	estopped bool
	seq      uint64

	practicePhase     practice.Phase
	practiceElapsed   time.Duration
	practiceRemaining time.Duration

	Slots    *input.Table
	Practice *practice.Sequencer
	Actions  *hotkey.ActionQueue
	Pub      *Publisher
	Stream   StreamSender
	Rescan   RescanFunc
	Now      func() time.Time

	stdout *eventQueue[string]
	tcp    *eventQueue[codec.TcpMessage]
}

// New returns a Coordinator for team with the given USB-mode default,
// ready to have its Stream/Rescan fields wired once the connection engine
// and input poller exist.
func New(team int, useUSB bool) *Coordinator {
	c := &Coordinator{
		team:     team,
		useUSB:   useUSB,
		alliance: codec.Alliance{Color: codec.AllianceRed, Station: 1},
		Slots:    input.NewTable(),
		Practice: practice.NewSequencer(practice.DefaultTiming()),
		Actions:  hotkey.NewActionQueue(),
		Now:      time.Now,
		stdout:   newEventQueue[string](eventQueueCapacity),
		tcp:      newEventQueue[codec.TcpMessage](eventQueueCapacity),
	}
	c.Pub = NewPublisher(c.snapshotLocked())
	return c
}

// Enabled implements input.EnabledState for the input poller's
// disconnect-safety check (§4.3).
func (c *Coordinator) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.control.Enabled
}

// StdoutEvents returns the channel of decoded stdout lines streamed from
// the robot (§4.1's stdout tag), bounded and drop-oldest.
func (c *Coordinator) StdoutEvents() <-chan string {
	return c.stdout.Chan()
}

// TcpEvents returns the channel of every decoded stream message
// (stdout, plain message, error report, version info; §3's tagged
// union), for a dev console that wants the raw feed rather than just text.
func (c *Coordinator) TcpEvents() <-chan codec.TcpMessage {
	return c.tcp.Chan()
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// publish assembles and broadcasts the current state. Callers must hold
// c.mu.
func (c *Coordinator) publishLocked() {
	c.seq++
	c.Pub.Publish(c.snapshotLocked())
}

func (c *Coordinator) snapshotLocked() RobotState {
	return RobotState{
		PublicationSeq:  c.seq,
		ConnectionState: c.connState,
		Control:         c.control,
		Alliance:        c.alliance,
		Team:            c.team,
		UseUSB:          c.useUSB,
		GameData:        c.gameData,
		Status:          c.status,
		Voltage:         c.voltage,
		Telemetry:       c.telemetry,
		TripTime:        c.tripTime,
		LostCount:       c.lostCount,
		Practice: PracticeState{
			Running:   c.Practice.Running(),
			Phase:     c.practicePhase,
			Elapsed:   c.practiceElapsed,
			Remaining: c.practiceRemaining,
		},
		Slots: c.Slots.Snapshot(),
	}
}
