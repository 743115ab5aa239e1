package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/openteleop/bimanual/pkg/bus"
	"github.com/openteleop/bimanual/pkg/diag"
	"github.com/openteleop/bimanual/pkg/msg"
	"github.com/openteleop/bimanual/pkg/recorder"
	"github.com/openteleop/bimanual/pkg/robot"
)

type MonitorCommand struct {
	Hz      int  `long:"hz" default:"50" description:"Joint state publish frequency"`
	SimCams bool `long:"sim-cams" description:"Publish synthetic camera frames for the rig's camera set"`
}

type monitorModel struct {
	joints   map[string]*recorder.JointRecorder // keyed by side
	images   *recorder.ImageRecorder            // nil without --sim-cams
	quitting bool
}

type monitorTickMsg time.Time

func monitorTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Init() tea.Cmd {
	return monitorTick()
}

func (m monitorModel) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch teaMsg := teaMsg.(type) {
	case tea.KeyMsg:
		switch teaMsg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case monitorTickMsg:
		return m, monitorTick()
	}
	return m, nil
}

func formatRate(r diag.StreamRate) string {
	if !r.Available {
		return "n/a"
	}
	return fmt.Sprintf("%.2f Hz", r.Rate.Hz)
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Monitor stopped.\n"
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Telemetry stream rates"))
	sb.WriteString("\n\n")

	rows := make([][]string, 0, 8)
	for _, side := range robot.Sides() {
		rec, ok := m.joints[side]
		if !ok {
			continue
		}
		for _, r := range rec.Rates() {
			rows = append(rows, []string{
				"follower_" + side, r.Stream, fmt.Sprintf("%d", r.Samples), formatRate(r),
			})
		}
	}
	if m.images != nil {
		for _, r := range m.images.Rates() {
			rows = append(rows, []string{"cameras", r.Stream, fmt.Sprintf("%d", r.Samples), formatRate(r)})
		}
	}

	headerCell := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Source", "Stream", "Samples", "Rate").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return cell
		})

	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Press 'q' to quit"))
	return sb.String()
}

// simCameras publishes black frames at 30 fps for each camera until ctx is
// done, so the image pipeline can be exercised without hardware.
func simCameras(ctx context.Context, b *bus.Bus, cameras []string) {
	ticker := time.NewTicker(time.Second / 30)
	defer ticker.Stop()

	frame := make([]byte, 640*480*3)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			for _, cam := range cameras {
				b.Publish(msg.ImageTopic(cam), now, msg.Image{
					Width:    640,
					Height:   480,
					Encoding: "rgb8",
					Data:     frame,
					Stamp:    now,
				})
			}
		}
	}
}

func (c *MonitorCommand) Execute(args []string) error {
	cfg, err := robot.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No configuration found. Run 'bimanual setup' first.")
		os.Exit(1)
	}

	if c.Hz <= 0 {
		c.Hz = 50
	}

	rigBus := bus.New()
	defer rigBus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := monitorModel{joints: make(map[string]*recorder.JointRecorder)}

	for _, side := range robot.Sides() {
		armCfg := cfg.Follower(side)
		if armCfg.Port == "" || !armCfg.IsCalibrated() {
			fmt.Fprintf(os.Stderr, "follower_%s not configured. Run 'bimanual setup' first.\n", side)
			os.Exit(1)
		}

		arm, err := robot.NewArm(*armCfg)
		if err != nil {
			log.Fatalf("Failed to open follower_%s: %v", side, err)
		}
		defer arm.Close()

		rec, err := recorder.NewJointRecorder(rigBus, side, recorder.WithDebug())
		if err != nil {
			log.Fatalf("Failed to create recorder for follower_%s: %v", side, err)
		}
		defer rec.Close()
		model.joints[side] = rec

		pub := &robot.StatePublisher{
			Source: arm,
			Bus:    rigBus,
			Side:   side,
			Period: time.Second / time.Duration(c.Hz),
		}
		go pub.Run(ctx)
	}

	if c.SimCams {
		cameras := msg.CameraNames(cfg.Mobile)
		rec, err := recorder.NewImageRecorder(rigBus, cameras, recorder.WithDebug())
		if err != nil {
			log.Fatalf("Failed to create image recorder: %v", err)
		}
		defer rec.Close()
		model.images = rec
		go simCameras(ctx, rigBus, cameras)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	return nil
}
