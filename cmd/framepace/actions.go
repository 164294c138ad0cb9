package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"

	"github.com/framepace/framepace/pkg/pacecli"
)

// callTimeout bounds every single RPC round trip.
const callTimeout = 10 * time.Second

func withClient(ctx *cli.Context, cmd string, fn func(context.Context, *pacecli.Client) error) error {
	client, err := pacecli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, cmd, "new_client", err)
		return nil
	}
	defer client.Close()

	cctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := fn(cctx, client); err != nil {
		printRuntimeErr(ctx, cmd, "call", err)
	}
	return nil
}

func status(ctx *cli.Context) error {
	return withClient(ctx, "status", func(cctx context.Context, client *pacecli.Client) error {
		res, err := client.Status(cctx, surfaceName)
		if err != nil {
			return err
		}
		fmt.Printf("framepaced %s: %.2fHz (interval %.3fms, redzone %.3fms)\n",
			res.Version, res.RefreshRateHz,
			float64(res.IntervalNanos)/1e6, float64(res.RedzoneNanos)/1e6)

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SURFACE\tARMED\tHELD\tMARKED\tRELEASED\tFLUSHED\tFALLBACKS\tFRAME")
		for _, s := range res.Surfaces {
			fmt.Fprintf(w, "%s\t%v\t%d/%d\t%d\t%d\t%d\t%d\t%.3fms\n",
				s.Surface, s.Armed, s.Acquired, s.TotalBuffers,
				s.FramesMarked, s.FramesReleased, s.FramesFlushed,
				s.WakeupFallbacks, float64(s.FrameInterval)/1e6)
		}
		return w.Flush()
	})
}

func setRefresh(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" {
		return printErrWithCmdHelp(ctx, fmt.Errorf("missing refresh rate argument"))
	}
	hz, err := strconv.ParseFloat(arg, 64)
	if err != nil || hz <= 0 {
		return printErrWithCmdHelp(ctx, fmt.Errorf("invalid refresh rate %q", arg))
	}
	return withClient(ctx, "set-refresh", func(cctx context.Context, client *pacecli.Client) error {
		res, err := client.SetRefresh(cctx, hz, redzoneNanos)
		if err != nil {
			return err
		}
		fmt.Printf("refresh set: interval %.3fms, redzone %.3fms\n",
			float64(res.IntervalNanos)/1e6, float64(res.RedzoneNanos)/1e6)
		return nil
	})
}

func setBuffers(ctx *cli.Context) error {
	if surfaceName == "" {
		return printErrWithCmdHelp(ctx, fmt.Errorf("missing required flag: surface"))
	}
	arg := ctx.Args().First()
	count, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || count == 0 {
		return printErrWithCmdHelp(ctx, fmt.Errorf("invalid buffer count %q", arg))
	}
	return withClient(ctx, "set-buffers", func(cctx context.Context, client *pacecli.Client) error {
		res, err := client.SetBuffers(cctx, surfaceName, uint32(count))
		if err != nil {
			return err
		}
		fmt.Printf("surface %s resized to %d buffers\n", res.Surface, res.Count)
		return nil
	})
}

func flush(ctx *cli.Context) error {
	return withClient(ctx, "flush", func(cctx context.Context, client *pacecli.Client) error {
		res, err := client.Flush(cctx, surfaceName)
		if err != nil {
			return err
		}
		if surfaceName == "" {
			fmt.Printf("released %d held buffer(s) across all surfaces\n", res.Released)
		} else {
			fmt.Printf("released %d held buffer(s) on %s\n", res.Released, surfaceName)
		}
		return nil
	})
}

func trace(ctx *cli.Context) error {
	return withClient(ctx, "trace", func(cctx context.Context, client *pacecli.Client) error {
		res, err := client.Trace(cctx, surfaceName, traceLimit)
		if err != nil {
			return err
		}
		if len(res.Samples) == 0 {
			fmt.Println("no trace samples")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SURFACE\tSUBMIT\tCOMPLETE\tRELEASE\tLATCH\tWAKEUP\tFALLBACK")
		for _, s := range res.Samples {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%v\n",
				s.Surface, s.SubmitTime, s.CompleteTime, s.ReleaseTime,
				s.TargetLatch, s.ScheduledWakeup, s.Fallback)
		}
		return w.Flush()
	})
}

func getVersion(ctx *cli.Context) error {
	fmt.Printf("framepace %s", ctx.App.Version)
	if BuildCommit != "" {
		fmt.Printf(" (%s)", BuildCommit)
	}
	fmt.Println()
	return withClient(ctx, "version", func(cctx context.Context, client *pacecli.Client) error {
		res, err := client.Version(cctx)
		if err != nil {
			return err
		}
		fmt.Printf("framepaced %s", res.Version)
		if res.Commit != "" {
			fmt.Printf(" (%s)", res.Commit)
		}
		fmt.Println()
		return nil
	})
}

func printRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		return
	}
	var name string
	if ctx != nil {
		name = ctx.App.HelpName
	} else {
		name = os.Args[0]
	}
	fmt.Printf("%s: %s[%s]: %s\n", name, cmd, action, err.Error())
}

func printErrWithCmdHelp(ctx *cli.Context, err error) error {
	if err == nil {
		return nil
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err.Error())
	if herr := cli.ShowCommandHelp(ctx, ctx.Command.Name); herr != nil {
		fmt.Println(herr.Error())
	}
	return nil
}

func usageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "flag: help requested") {
		return nil
	}
	if ctx.Command.Name != "" {
		return printErrWithCmdHelp(ctx, err)
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err.Error())
	cli.ShowAppHelpAndExit(ctx, 1)
	return nil
}
