package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/framepace/framepace/common"
	"github.com/framepace/framepace/pkg/pacecli"
)

// watch polls the daemon and renders one occupancy bar per surface:
// held buffers against swapchain depth, with the fallback counter
// alongside. Runs until interrupted.
func watch(ctx *cli.Context) error {
	client, err := pacecli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "watch", "new_client", err)
		return nil
	}
	defer client.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interval := time.Duration(watchInterval) * time.Millisecond
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	p := mpb.New(mpb.WithWidth(48), mpb.WithRefreshRate(interval))
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")
	bars := make(map[string]*mpb.Bar)

	// stats is read by mpb's render goroutine through the decorators.
	var statsMu sync.Mutex
	stats := make(map[string]common.SurfaceStatus)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		cctx, cancel := context.WithTimeout(sigCtx, callTimeout)
		res, err := client.Status(cctx, surfaceName)
		cancel()
		if err != nil {
			for _, b := range bars {
				b.Abort(true)
			}
			p.Wait()
			printRuntimeErr(ctx, "watch", "status", err)
			return nil
		}

		names := make([]string, 0, len(res.Surfaces))
		statsMu.Lock()
		for _, s := range res.Surfaces {
			names = append(names, s.Surface)
			stats[s.Surface] = s
		}
		statsMu.Unlock()
		sort.Strings(names)

		for _, name := range names {
			statsMu.Lock()
			s := stats[name]
			statsMu.Unlock()
			bar, ok := bars[name]
			if !ok {
				surface := name
				bar = p.New(int64(s.TotalBuffers),
					barStyle,
					mpb.PrependDecorators(
						decor.Name(surface, decor.WC{W: len(surface) + 1, C: decor.DindentRight}),
					),
					mpb.AppendDecorators(
						decor.Any(func(decor.Statistics) string {
							statsMu.Lock()
							st := stats[surface]
							statsMu.Unlock()
							return fmt.Sprintf("%d/%d held, %d fallbacks",
								st.Acquired, st.TotalBuffers, st.WakeupFallbacks)
						}),
					),
				)
				bars[name] = bar
			}
			bar.SetTotal(int64(s.TotalBuffers), false)
			bar.SetCurrent(int64(s.Acquired))
		}

		select {
		case <-sigCtx.Done():
			for _, b := range bars {
				b.Abort(true)
			}
			p.Wait()
			return nil
		case <-ticker.C:
		}
	}
}
