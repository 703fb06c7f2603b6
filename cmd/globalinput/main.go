// globalinput - system-wide keyboard and mouse capture for tick-driven hosts
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"globalinput/internal/api"
	"globalinput/internal/bridge"
	"globalinput/internal/config"
	"globalinput/internal/frame"
	"globalinput/internal/input"
	"globalinput/internal/input/native"
	"globalinput/internal/logger"
	"globalinput/internal/protocol"
	"globalinput/internal/provider"
	"globalinput/internal/remote"
	"globalinput/internal/tray"

	"go.uber.org/zap"
)

var (
	version    = "0.1.0"
	configPath = flag.String("config", "", "Path to the YAML config file")
	demo       = flag.String("demo", "hotkey", "Demo to run: hotkey, log, pos or move")
	listKeys   = flag.Bool("list-keys", false, "List key names accepted in hotkey sequences")
	useTray    = flag.Bool("tray", false, "Show a system tray icon")
	showVer    = flag.Bool("version", false, "Show version")
	devLog     = flag.Bool("dev", false, "Use development logging")
	remoteAddr = flag.String("remote", "", "Listen to hotkeys of another host (host:port) instead of capturing locally")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("globalinput version %s\n", version)
		return
	}
	if *listKeys {
		printKeys()
		return
	}

	cfgMgr, err := config.NewManager(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize config: %v\n", err)
		os.Exit(1)
	}
	loadErr := cfgMgr.Load()
	cfg := cfgMgr.Get()

	if err := logger.Init(cfg.LogLevel, *devLog); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if loadErr != nil {
		logger.Warn("Failed to load config, using defaults", zap.String("component", "main"), zap.Error(loadErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("Configuration", zap.String("component", "main"), zap.String("path", cfgMgr.Path()))

	if *remoteAddr != "" {
		tick, err := cfg.Tick()
		if err != nil {
			logger.Error("Invalid tick interval", zap.String("component", "main"), zap.Error(err))
			os.Exit(1)
		}
		runRemote(ctx, *remoteAddr, cfg.API.Token, tick)
		return
	}

	system, ok := demos[*demo]
	if !ok {
		logger.Error("Unknown demo", zap.String("component", "main"), zap.String("demo", *demo))
		os.Exit(2)
	}

	if !*useTray && !cfg.Tray {
		if err := run(ctx, cfgMgr, system); err != nil {
			os.Exit(1)
		}
		return
	}

	// systray owns the main goroutine
	ctx, cancel := context.WithCancel(ctx)
	t := tray.New("globalinput", "Global input capture")
	t.SetStatus("Starting...")
	t.AddMenuItem("Config: "+cfgMgr.Path(), nil)
	t.AddSeparator()
	t.AddMenuItem("Quit", cancel)

	go func() {
		err := run(ctx, cfgMgr, system, withStatus(t))
		cancel()
		t.Stop()
		if err != nil {
			os.Exit(1)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.Done():
			cancel()
		}
	}()
	t.Run()
}

type runOption func(app *frame.App)

// withStatus mirrors hook status into the tray once startup has finished.
func withStatus(t *tray.Tray) runOption {
	return func(app *frame.App) {
		reported := false
		app.AddSystem(frame.PostUpdate, "tray_status", func(a *frame.App) {
			if reported {
				return
			}
			reported = true
			t.SetStatus(statusLine(frame.Resource[provider.HookStatus](a)))
		})
	}
}

func statusLine(s *provider.HookStatus) string {
	if s == nil {
		return "Hooks: not installed"
	}
	state := func(ready bool) string {
		if ready {
			return "on"
		}
		return "unavailable"
	}
	return fmt.Sprintf("Keyboard: %s, Mouse: %s", state(s.KeyboardReady()), state(s.MouseReady()))
}

func run(ctx context.Context, cfgMgr *config.Manager, system demoSystem, opts ...runOption) error {
	cfg := cfgMgr.Get()
	tick, err := cfg.Tick()
	if err != nil {
		logger.Error("Invalid tick interval", zap.String("component", "main"), zap.Error(err))
		return err
	}
	hookTimeout, err := cfg.HookWait()
	if err != nil {
		logger.Error("Invalid hook timeout", zap.String("component", "main"), zap.Error(err))
		return err
	}
	hotkeys, err := cfg.HotkeySequences()
	if err != nil {
		logger.Warn("Skipping invalid hotkey", zap.String("component", "main"), zap.Error(err))
	}

	trap := native.SharedTrap(hookTimeout)
	injector := native.NewInjector()
	plugins := provider.Plugins(provider.Options{
		Context:    ctx,
		Hook:       trap,
		Locator:    injector,
		Controller: injector,
		QueueLimit: cfg.MouseQueueLimit,
		Hotkeys:    hotkeys,
	})
	defer plugins.Close()

	app := frame.New()
	app.AddPlugin(plugins)

	var server *api.Server
	if cfg.API.Enabled {
		server = api.NewServer(cfg.API.Token)
		app.AddPlugin(api.Plugin{Server: server, Store: cfgMgr})
		go func() {
			if err := server.Start(cfg.API.Port); err != nil {
				logger.Warn("API server unavailable, continuing without it", zap.String("component", "main"), zap.Error(err))
			}
		}()
	}

	app.AddSystem(frame.Update, "demo", system())
	for _, opt := range opts {
		opt(app)
	}

	if err := app.Startup(); err != nil {
		if hookErr, ok := bridge.IsHookInstallError(err); ok {
			logger.Error("Global input is not available; the host keeps running without it",
				zap.String("component", "main"), zap.String("device", hookErr.Device), zap.Error(err))
		} else {
			logger.Error("Startup failed", zap.String("component", "main"), zap.Error(err))
		}
	}

	logger.Info("Host loop running", zap.String("component", "main"), zap.String("demo", *demo),
		zap.Duration("tick", tick))
	err = app.Run(ctx, tick)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		server.Shutdown(shutdownCtx)
		cancel()
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runRemote prints the hotkeys fired on another host until ctx is done.
// Its toggle_movement hotkey nudges that host's pointer left every tick, as
// the local move demo does.
func runRemote(ctx context.Context, addr, token string, tick time.Duration) {
	c := remote.NewClient(addr, token)
	var moving atomic.Bool
	c.OnHotkey = func(name string) {
		fmt.Printf("%s hotkey event received from %s\n", name, addr)
		if name == "toggle_movement" {
			moving.Store(!moving.Load())
		}
	}
	c.OnStatus = func(st protocol.StatusPayload) {
		fmt.Printf("remote status: keyboard=%v mouse=%v position=%s hotkeys=%d\n",
			st.KeyboardHook, st.MouseHook, st.Position, len(st.Hotkeys))
	}
	c.Start()
	defer c.Close()
	c.RequestStatus()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if moving.Load() && c.IsConnected() {
				c.SendMouse(input.MoveRelative{DX: -1, DY: 0})
			}
		}
	}
}

func printKeys() {
	names := make([]string, 0, len(input.Keys()))
	for _, k := range input.Keys() {
		names = append(names, k.String())
	}
	fmt.Println(strings.Join(names, " "))
}
