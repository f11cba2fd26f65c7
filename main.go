// main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"alopexmon/probe"
	"alopexmon/probe/utility"
	"alopexmon/sentinel"
	"alopexmon/ui"

	"github.com/cilium/ebpf/rlimit"
	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	iface := flag.String("iface", "", "network interface to attach the network tap to")
	metricsAddr := flag.String("metrics", "", "address to serve Prometheus metrics on (empty disables)")
	flag.Parse()

	// Create channels for communication
	sysChan := make(chan string, 200)
	alertChan := make(chan string, 200)
	// Channels for pushing per-severity alert tallies to the UI
	lowChan := make(chan uint64, 200)
	medChan := make(chan uint64, 200)
	highChan := make(chan uint64, 200)

	// Configure standard logger to write to the system log channel
	log.SetFlags(0)
	log.SetOutput(ui.ChannelWriter{Ch: sysChan})

	ifaceName := *iface
	if ifaceName == "" {
		ifaceName = ui.SelectNetworkInterface()
	}

	// Structured logger for the probe, sharing the System Log pane
	zapCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(ui.ChannelWriter{Ch: sysChan}),
		zapcore.InfoLevel,
	)
	logger := zap.New(zapCore)
	defer logger.Sync()

	// Remove memory lock limits for eBPF
	if err := rlimit.RemoveMemlock(); err != nil {
		log.Fatalf("Failed to remove memlock limit: %v", err)
	}

	// Detection core: shared state, alert queue, six sensors
	store := sentinel.NewStore()
	queue := sentinel.NewAlertQueue(sentinel.QueueCapacity)
	eng := sentinel.NewEngine(store, queue)
	eng.SetClock(utility.BootNanos)

	// Kernel taps feeding the engine
	prb, err := probe.New(ifaceName, eng, logger)
	if err != nil {
		log.Fatalf("Probe initialization failed: %v", err)
	}
	log.Printf("Starting kernel taps on interface %s", ifaceName)

	// Setup UI
	app, layout, sysView, alertView, lowView, medView, highView, input := ui.SetupUI(sysChan)
	filter := ui.NewDisplayFilter()

	// Handle display-side operator commands
	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := input.GetText()
		cmd, err := ui.ParseCommand(text)
		if err != nil {
			sysChan <- fmt.Sprintf("[ERROR] %v", err)
		} else {
			switch cmd.Op {
			case ui.OpMinSev:
				filter.SetMinSeverity(cmd.Sev)
				sysChan <- fmt.Sprintf("[SYS] hiding alerts below %s", sentinel.SeverityString(cmd.Sev))
			case ui.OpMute:
				filter.SetMuted(cmd.Kind, true)
				sysChan <- fmt.Sprintf("[SYS] muted %s alerts", cmd.Kind)
			case ui.OpUnmute:
				filter.SetMuted(cmd.Kind, false)
				sysChan <- fmt.Sprintf("[SYS] unmuted %s alerts", cmd.Kind)
			case ui.OpWhois:
				name, cmdline, err := utility.ProcessIdentity(cmd.PID)
				if err != nil {
					sysChan <- fmt.Sprintf("[ERROR] %v", err)
				} else {
					sysChan <- fmt.Sprintf("[SYS] pid %d is %s (%s)", cmd.PID, name, cmdline)
				}
			case ui.OpClear:
				alertChan <- ui.ClearMarker
			}
		}
		input.SetText("")
		app.SetFocus(input)
	})

	// Buffers to keep only the last MaxLines entries for logs
	var sysLines, alertLines []string

	// Start goroutines to pump data from channels to UI views
	go ui.PumpTextview(app, sysView, sysChan, &sysLines)
	go ui.PumpTextview(app, alertView, alertChan, &alertLines)

	// Pump severity tallies to UI
	go ui.PumpCounterView(app, lowView, lowChan)
	go ui.PumpCounterView(app, medView, medChan)
	go ui.PumpCounterView(app, highView, highChan)

	// Handle graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Drain the alert queue: tally severities, enrich missing actor names,
	// and feed the alerts pane through the display filter.
	go func() {
		var lowN, medN, highN uint64
		for {
			ev, err := queue.Next(ctx)
			if err != nil {
				return
			}
			switch ev.Severity {
			case sentinel.SeverityLow:
				lowN++
				lowChan <- lowN
			case sentinel.SeverityMedium:
				medN++
				medChan <- medN
			case sentinel.SeverityHigh:
				highN++
				highChan <- highN
			}
			if !filter.Allow(ev) {
				continue
			}
			if ev.CommString() == "" && ev.Pid != 0 {
				// In-kernel comm capture can fail; try the proc table.
				if name, _, err := utility.ProcessIdentity(int32(ev.Pid)); err == nil {
					copy(ev.Comm[:], name)
				}
			}
			alertChan <- ui.FormatAlert(ev)
		}
	}()

	// Optional Prometheus endpoint
	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				sysChan <- fmt.Sprintf("[ERROR] metrics server: %v", err)
			}
		}()
		log.Printf("Serving Prometheus metrics on %s/metrics", *metricsAddr)
	}

	// Run the kernel taps in a separate goroutine
	go func() {
		log.Printf("Probe run loop starting...")
		if err := prb.Run(ctx); err != nil {
			// Send runtime errors to the system log view
			sysChan <- fmt.Sprintf("[ERROR] Probe run failed: %v", err)
		}
		log.Printf("Probe run loop finished.")
	}()

	// Start the UI application event loop
	log.Printf("Starting UI...")
	if err := app.SetRoot(layout, true).SetFocus(input).Run(); err != nil {
		log.Fatalf("Failed to start UI: %v", err)
	}

	log.Printf("Application exiting.")
}
