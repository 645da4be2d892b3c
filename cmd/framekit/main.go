// Command framekit runs a headless simulation demo: it spawns a field of
// orbiting objects, drives the frame phases for a configurable number of
// frames, and prints pool and timing statistics.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/utkarsh5026/framekit/component"
	"github.com/utkarsh5026/framekit/config"
	"github.com/utkarsh5026/framekit/frame"
	"github.com/utkarsh5026/framekit/registry"
	"github.com/utkarsh5026/framekit/scene"
	"github.com/utkarsh5026/framekit/worker"
)

var (
	cyan   = color.New(color.FgCyan, color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
)

func main() {
	cfgPath := flag.String("config", "framekit.toml", "path to TOML config")
	frames := flag.Int("frames", 600, "frames to simulate")
	objects := flag.Int("objects", 2000, "objects to spawn")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		colorPrintLn(red, "config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		colorPrintLn(red, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	pool := worker.NewPool(cfg.WorkerThreads(),
		worker.WithQueueSize(cfg.Engine.QueueSize),
		worker.WithLogger(logger))
	defer pool.Shutdown()

	reg := registry.New(registry.WithLogger(logger))
	reg.Register("transform", cfg.Pools.Transforms, func() component.Component {
		return component.NewTransform()
	})
	reg.Register("behavior", cfg.Pools.Behaviors, func() component.Component {
		return component.NewBehavior()
	})

	world := scene.New("demo", scene.WithLogger(logger))
	spawn(world, *objects)
	particles := spawnParticles(reg, *objects/4)

	orch := frame.New(pool,
		frame.WithFixedRate(cfg.Engine.FixedRate),
		frame.WithMaxFixedSteps(cfg.Engine.MaxFixedSteps),
		frame.WithThreading(cfg.Engine.Threading),
		frame.WithLogger(logger))

	logger.Info("simulation starting",
		zap.Int("threads", pool.ThreadCount()),
		zap.Int("objects", world.Len()),
		zap.Int("frames", *frames),
		zap.Bool("threading", cfg.Engine.Threading))

	dt := 1.0 / 60.0
	bar := newFrameBar(*frames)
	start := time.Now()
	for i := 0; i < *frames; i++ {
		orch.Frame(world, dt)
		reg.BatchUpdate(dt)
		_ = bar.Add(1)
	}
	elapsed := time.Since(start)
	fmt.Println()

	// Recycle half the particles so the pool report shows reuse.
	for i := 0; i < len(particles)/2; i++ {
		if err := reg.Destroy("transform", particles[i]); err != nil {
			logger.Warn("destroy particle", zap.Error(err))
		}
	}

	renderReport(orch, pool, reg, world, elapsed)
}

// spawn fills the scene with objects orbiting the origin, each carrying a
// behavior that advances its angle every frame.
func spawn(world *scene.Scene, n int) {
	for i := 0; i < n; i++ {
		angle := float64(i) / float64(n) * 2 * math.Pi
		radius := 10 + float64(i%50)
		pos := component.V(radius*math.Cos(angle), 0, radius*math.Sin(angle))

		obj := world.NewObjectAt(fmt.Sprintf("orbiter-%d", i), pos)
		tr := obj.Transform()

		// Transform writes stay in the fixed phase, where no transform
		// dispatch runs concurrently with behavior hooks.
		b := component.NewBehavior()
		b.OnFixedUpdate = func(fixedDt float64) {
			tr.Rotate(component.V(0, 45*fixedDt, 0))
			p := tr.Position()
			a := math.Atan2(p.Z, p.X) + 0.5*fixedDt
			r := p.Magnitude()
			tr.SetPosition(component.V(r*math.Cos(a), 0, r*math.Sin(a)))
		}
		obj.AddBehavior(b)
	}
}

// spawnParticles draws transforms from the registry's pool, scattering them
// in a vertical column. They update through Registry.BatchUpdate rather than
// the scene path.
func spawnParticles(reg *registry.Registry, n int) []component.Component {
	particles := make([]component.Component, 0, n)
	for i := 0; i < n; i++ {
		y := float64(i) * 0.1
		c, err := reg.CreateWith("transform", func(inst component.Component) {
			if tr, ok := inst.(*component.Transform); ok {
				tr.SetPosition(component.V(0, y, 0))
			}
		})
		if err != nil {
			continue
		}
		particles = append(particles, c)
	}
	return particles
}

func renderReport(orch *frame.Orchestrator, pool *worker.Pool, reg *registry.Registry, world *scene.Scene, elapsed time.Duration) {
	st := orch.Stats()
	ps := pool.Stats()

	printSectionHeader("FRAME TIMING",
		"Per-phase duration of the last frame plus rolling averages")

	timing := tablewriter.NewWriter(os.Stdout)
	timing.Header("Frames", "Avg Frame", "Update", "LateUpdate", "FixedUpdate", "Fixed Steps", "Dropped (s)")
	_ = timing.Append(
		fmt.Sprintf("%d", st.FrameCount),
		st.AvgFrameTime.Round(time.Microsecond).String(),
		st.LastUpdate.Round(time.Microsecond).String(),
		st.LastLateUpdate.Round(time.Microsecond).String(),
		st.LastFixedUpdate.Round(time.Microsecond).String(),
		fmt.Sprintf("%d", st.FixedSteps),
		fmt.Sprintf("%.3f", st.DroppedFixedTime),
	)
	if err := timing.Render(); err != nil {
		colorPrintLn(red, "render timing table:", err)
	}

	printSectionHeader("WORKER POOL",
		"Task throughput across the run")

	workers := tablewriter.NewWriter(os.Stdout)
	workers.Header("Threads", "Submitted", "Completed", "Failed", "Queued", "Tasks/sec")
	_ = workers.Append(
		fmt.Sprintf("%d", ps.Threads),
		fmt.Sprintf("%d", ps.Submitted),
		fmt.Sprintf("%d", ps.Completed),
		fmt.Sprintf("%d", ps.Failed),
		fmt.Sprintf("%d", ps.Queued),
		fmt.Sprintf("%.0f", float64(ps.Completed)/elapsed.Seconds()),
	)
	if err := workers.Render(); err != nil {
		colorPrintLn(red, "render worker table:", err)
	}

	printSectionHeader("OBJECT POOLS",
		"Overflow shows up as TotalCreated above Capacity")

	pools := tablewriter.NewWriter(os.Stdout)
	pools.Header("Kind", "Capacity", "In Use", "Available", "Total Created", "Utilization")
	for _, kind := range reg.Kinds() {
		s, err := reg.PoolStats(kind)
		if err != nil {
			continue
		}
		_ = pools.Append(
			kind,
			fmt.Sprintf("%d", s.Capacity),
			fmt.Sprintf("%d", s.InUse),
			fmt.Sprintf("%d", s.Available),
			fmt.Sprintf("%d", s.TotalCreated),
			fmt.Sprintf("%.1f%%", s.Utilization*100),
		)
	}
	if err := pools.Render(); err != nil {
		colorPrintLn(red, "render pool table:", err)
	}

	colorPrintf(green, "\nSimulated %d objects for %d frames in %s (%.1f fps)\n",
		world.Len(), st.FrameCount, elapsed.Round(time.Millisecond),
		float64(st.FrameCount)/elapsed.Seconds())
	if st.DroppedFixedTime > 0 {
		colorPrintf(yellow, "Dropped %.3fs of fixed-step time; raise max_fixed_steps or lower fixed_rate\n",
			st.DroppedFixedTime)
	}
}

func newFrameBar(frames int) *progressbar.ProgressBar {
	return progressbar.NewOptions(frames,
		progressbar.OptionSetDescription("Simulating"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
	)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func printSectionHeader(title string, lines ...string) {
	fmt.Println()
	colorPrintLn(cyan, title)
	for _, l := range lines {
		fmt.Println("  " + l)
	}
}

func colorPrintLn(c *color.Color, a ...any) {
	_, _ = c.Println(a...)
}

func colorPrintf(c *color.Color, format string, a ...any) {
	_, _ = c.Printf(format, a...)
}
