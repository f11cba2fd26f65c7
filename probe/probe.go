// Package probe loads the kernel taps and pumps their raw samples into the
// detection engine. The BPF object (alopex_probe.o) only forwards
// control-point data; all classification happens in the sentinel package.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strings"
	"time"

	"alopexmon/probe/utility"
	"alopexmon/sentinel"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/ringbuf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Probe defines Run/Close behavior for the loaded kernel taps.
type Probe interface {
	Run(ctx context.Context) error
	Close()
}

type probe struct {
	iface string
	coll  *ebpf.Collection
	links []link.Link
	rd    *ringbuf.Reader
	eng   *sentinel.Engine
	log   *zap.Logger
}

// New loads the tap object, attaches every program to its control point, and
// returns a probe feeding eng.
func New(ifaceName string, eng *sentinel.Engine, log *zap.Logger) (Probe, error) {
	if strings.TrimSpace(ifaceName) == "" {
		return nil, fmt.Errorf("interface name is required")
	}

	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("lookup interface %q: %w", ifaceName, err)
	}

	root, err := utility.GetProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("get project root: %w", err)
	}
	obj := filepath.Join(root, "probe", "alopex_probe.o")

	spec, err := ebpf.LoadCollectionSpec(obj)
	if err != nil {
		return nil, fmt.Errorf("load spec: %w", err)
	}

	coll, err := ebpf.NewCollection(spec)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	p := &probe{iface: ifaceName, coll: coll, eng: eng, log: log}

	attachments := []struct {
		prog   string
		attach func(*ebpf.Program) (link.Link, error)
	}{
		{"alopex_cred_prepare", func(prog *ebpf.Program) (link.Link, error) {
			return link.AttachLSM(link.LSMOptions{Program: prog})
		}},
		{"alopex_netlink_tap", func(prog *ebpf.Program) (link.Link, error) {
			return link.Tracepoint("netlink", "netlink_extack", prog, nil)
		}},
		{"alopex_network_tap", func(prog *ebpf.Program) (link.Link, error) {
			return link.AttachXDP(link.XDPOptions{
				Program:   prog,
				Interface: iface.Index,
				Flags:     link.XDPGenericMode,
			})
		}},
		{"alopex_dev_change", func(prog *ebpf.Program) (link.Link, error) {
			return link.Kprobe("dev_change_flags", prog, nil)
		}},
		{"alopex_netns_copy", func(prog *ebpf.Program) (link.Link, error) {
			return link.AttachTracing(link.TracingOptions{
				Program:    prog,
				AttachType: ebpf.AttachTraceFExit,
			})
		}},
		{"alopex_timer_tick", func(prog *ebpf.Program) (link.Link, error) {
			return link.Tracepoint("timer", "timer_expire_exit", prog, nil)
		}},
	}

	for _, a := range attachments {
		prog, ok := coll.Programs[a.prog]
		if !ok {
			p.Close()
			return nil, fmt.Errorf("program %q missing from object", a.prog)
		}
		lnk, err := a.attach(prog)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("attach %s: %w", a.prog, err)
		}
		p.links = append(p.links, lnk)
	}

	rd, err := ringbuf.NewReader(coll.Maps["raw_events"])
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("ringbuf reader: %w", err)
	}
	p.rd = rd

	return p, nil
}

// Run consumes raw samples and reports engine stats until ctx is canceled.
func (p *probe) Run(ctx context.Context) error {
	defer p.Close()
	p.log.Info("kernel taps attached", zap.String("iface", p.iface))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.consume(gctx) })
	g.Go(func() error { return p.reportStats(gctx) })
	// Read blocks with no deadline; closing the reader is what unblocks the
	// consume loop on shutdown.
	g.Go(func() error { return closeOnDone(gctx, p.rd) })
	return g.Wait()
}

// closeOnDone closes c once ctx is canceled.
func closeOnDone(ctx context.Context, c io.Closer) error {
	<-ctx.Done()
	c.Close()
	return nil
}

// consume reads raw ringbuf samples, decodes them into sensor inputs, and
// dispatches them. Decode failures are logged and skipped; the taps keep
// running.
func (p *probe) consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		rec, err := p.rd.Read()
		if err != nil {
			if errors.Is(err, ringbuf.ErrClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			p.log.Warn("ringbuf read", zap.Error(err))
			continue
		}

		in, err := decodeRaw(rec.RawSample)
		if err != nil {
			p.log.Warn("raw record decode", zap.Error(err))
			continue
		}
		p.eng.Dispatch(in)
	}
}

// reportStats logs queue and table pressure once a second.
func (p *probe) reportStats(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pushed, dropped := p.eng.Queue().Stats()
			rate, stamps := p.eng.Store().Len()
			p.log.Debug("sentinel stats",
				zap.Uint64("alerts", pushed),
				zap.Uint64("dropped", dropped),
				zap.Int("rate_entries", rate),
				zap.Int("stamp_entries", stamps),
				zap.Uint64("evictions", p.eng.Store().Evictions()),
			)
		}
	}
}

// Close detaches everything. Safe on a partially-constructed probe.
func (p *probe) Close() {
	if p.rd != nil {
		p.rd.Close()
	}
	for _, lnk := range p.links {
		lnk.Close()
	}
	if p.coll != nil {
		p.coll.Close()
	}
}
