package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/thread-tools/wpanbus/internal/api"
	"github.com/thread-tools/wpanbus/internal/controller"
	"github.com/thread-tools/wpanbus/internal/hub"
	"github.com/thread-tools/wpanbus/internal/meshcop"
	"github.com/thread-tools/wpanbus/internal/netmon"
	"github.com/thread-tools/wpanbus/internal/runtime"
	"github.com/thread-tools/wpanbus/pkg/cli"
)

func main() {
	cfg := cli.ParseFlags()

	setLogLevel(cfg.LogLevel)
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FullTimestamp:   true,
	})

	log.Infof("Config: Interface=%s", cfg.InterfaceName)
	log.Infof("Config: Listen=%s", cfg.Listen)
	log.Infof("Config: MDNS=%v", cfg.EnableMDNS)
	log.Infof("Config: LogLevel=%s", cfg.LogLevel)

	if !netmon.InterfaceExists(cfg.InterfaceName) {
		log.WithField("interface", cfg.InterfaceName).Warn("Interface not present yet; continuing")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eventHub := hub.New()
	ctrl := controller.New(cfg.InterfaceName, eventHub)
	if err := ctrl.Init(); err != nil {
		log.WithError(err).Fatal("Failed to initialize daemon controller")
	}

	if err := ctrl.TmfProxyStart(); err != nil {
		// The daemon may simply not be up yet; the dispatcher re-runs proxy
		// establishment when its bus identity appears.
		log.WithError(err).Warn("TMF proxy not started")
	}

	netmonSvc := netmon.NewService(cfg.InterfaceName)

	super := runtime.NewSupervisor()
	// The reactor worker owns controller teardown: Run closes the
	// controller on its own goroutine once the loop exits, so shutdown
	// never races the populate/process cycle.
	super.Add("reactor", ctrl.Run, nil)
	super.Add("netmon", netmonSvc.Start, netmonSvc.Close)

	if cfg.EnableMDNS {
		advertiser := meshcop.NewAdvertiser(cfg.InterfaceName)
		ch, unsub := eventHub.Subscribe()
		advertiser.Attach(ch, unsub)
		super.Add("meshcop", advertiser.Start, advertiser.Close)
	}

	if cfg.Listen != "" {
		apiSvc := api.NewService(cfg.Listen, eventHub)
		super.Add("api", apiSvc.Start, apiSvc.Close)
	}

	if err := super.Start(ctx); err != nil {
		log.WithError(err).Error("Supervisor start failed")
		os.Exit(1)
	}
	if err := super.Wait(ctx); err != nil {
		log.WithError(err).Error("Supervisor wait failed")
		os.Exit(1)
	}
}

func setLogLevel(level string) {
	switch level {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
