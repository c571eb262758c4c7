package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/aretw0/arbor/pkg/tree"
)

// DefaultMoveDuration is how long MoveBase stays RUNNING.
const DefaultMoveDuration = 220 * time.Millisecond

// Robot is the state shared by the demo nodes. Every line a node "says"
// goes to the configured writer.
type Robot struct {
	out          io.Writer
	moveDuration time.Duration

	mu      sync.Mutex
	gripper bool
}

// Option configures a Robot.
type Option func(*Robot)

// WithMoveDuration overrides DefaultMoveDuration.
func WithMoveDuration(d time.Duration) Option {
	return func(r *Robot) {
		if d >= 0 {
			r.moveDuration = d
		}
	}
}

// NewRobot creates a robot printing to out. A nil out discards the output.
func NewRobot(out io.Writer, opts ...Option) *Robot {
	if out == nil {
		out = io.Discard
	}
	r := &Robot{out: out, moveDuration: DefaultMoveDuration, gripper: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GripperOpen reports the last gripper command.
func (r *Robot) GripperOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gripper
}

func (r *Robot) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Robot) setGripper(open bool) {
	r.mu.Lock()
	r.gripper = open
	r.mu.Unlock()
}

// Register installs the demo port types and node types on f.
func (r *Robot) Register(f *tree.Factory) error {
	return errors.Join(
		f.RegisterType(PositionType()),
		f.RegisterType(PoseType()),

		f.RegisterSimpleAction("ApproachObject", r.approachObject),
		f.RegisterSimpleCondition("CheckBattery", r.checkBattery),
		f.RegisterSimpleAction("OpenGripper", r.openGripper),
		f.RegisterSimpleAction("CloseGripper", r.closeGripper),

		f.RegisterSimpleAction("SaySomething", r.saySomething,
			domain.InputPort("message", schema.String(), "Text to say")),
		f.RegisterSimpleAction("ThinkWhatToSay", r.thinkWhatToSay,
			domain.OutputPort("text", schema.String())),

		f.RegisterSimpleAction("CalculateGoal", r.calculateGoal,
			domain.OutputPort("goal", PositionType())),
		f.RegisterSimpleAction("PrintTarget", r.printTarget,
			domain.InputPort("target", PositionType(), "Target position")),
		f.RegisterSimpleAction("StorePosition", r.storePosition,
			domain.InputPort("value", PositionType()),
			domain.OutputPort("into", PositionType())),

		f.RegisterStatefulAction("MoveBase", func() node.StatefulBehavior { return &moveBase{robot: r} },
			domain.InputPort("goal", PoseType(), "Pose to reach")),
	)
}

func (r *Robot) approachObject(_ context.Context, self node.Node) (domain.Status, error) {
	r.printf("ApproachObject: %s", self.Name())
	return domain.StatusSuccess, nil
}

func (r *Robot) checkBattery(context.Context, node.Node) (domain.Status, error) {
	r.printf("[ Battery: OK ]")
	return domain.StatusSuccess, nil
}

func (r *Robot) openGripper(context.Context, node.Node) (domain.Status, error) {
	r.setGripper(true)
	r.printf("GripperInterface::open")
	return domain.StatusSuccess, nil
}

func (r *Robot) closeGripper(context.Context, node.Node) (domain.Status, error) {
	r.setGripper(false)
	r.printf("GripperInterface::close")
	return domain.StatusSuccess, nil
}

func (r *Robot) saySomething(_ context.Context, self node.Node) (domain.Status, error) {
	msg, err := node.GetInput[string](self, "message")
	if err != nil {
		return domain.StatusIdle, err
	}
	r.printf("Robot says: %s", msg)
	return domain.StatusSuccess, nil
}

func (r *Robot) thinkWhatToSay(_ context.Context, self node.Node) (domain.Status, error) {
	if err := node.SetOutput(self, "text", "The answer is 42"); err != nil {
		return domain.StatusIdle, err
	}
	return domain.StatusSuccess, nil
}

func (r *Robot) calculateGoal(_ context.Context, self node.Node) (domain.Status, error) {
	if err := node.SetOutput(self, "goal", Position2D{X: 1.1, Y: 2.3}); err != nil {
		return domain.StatusIdle, err
	}
	return domain.StatusSuccess, nil
}

func (r *Robot) printTarget(_ context.Context, self node.Node) (domain.Status, error) {
	target, err := node.GetInput[Position2D](self, "target")
	if err != nil {
		return domain.StatusIdle, err
	}
	r.printf("Target positions: [ %.1f, %.1f ]", target.X, target.Y)
	return domain.StatusSuccess, nil
}

func (r *Robot) storePosition(_ context.Context, self node.Node) (domain.Status, error) {
	v, err := node.GetInput[Position2D](self, "value")
	if err != nil {
		return domain.StatusIdle, err
	}
	if err := node.SetOutput(self, "into", v); err != nil {
		return domain.StatusIdle, err
	}
	return domain.StatusSuccess, nil
}

// moveBase pretends to drive to a pose for the robot's move duration.
type moveBase struct {
	robot *Robot
	goal  Pose2D
	until time.Time
}

func (m *moveBase) OnStart(_ context.Context, self node.Node) (domain.Status, error) {
	goal, err := node.GetInput[Pose2D](self, "goal")
	if err != nil {
		return domain.StatusIdle, err
	}
	m.goal = goal
	m.until = self.Config().Now().Add(m.robot.moveDuration)
	m.robot.printf("[ MoveBase: SEND REQUEST ]. goal: x=%.1f y=%.1f theta=%.1f", goal.X, goal.Y, goal.Theta)
	if m.robot.moveDuration == 0 {
		m.robot.printf("[ MoveBase: FINISHED ]")
		return domain.StatusSuccess, nil
	}
	return domain.StatusRunning, nil
}

func (m *moveBase) OnRunning(_ context.Context, self node.Node) (domain.Status, error) {
	if self.Config().Now().Before(m.until) {
		return domain.StatusRunning, nil
	}
	m.robot.printf("[ MoveBase: FINISHED ]")
	return domain.StatusSuccess, nil
}

func (m *moveBase) OnHalted(context.Context, node.Node) {
	m.robot.printf("[ MoveBase: ABORTED ]")
}
