package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/framepace/framepace/common"
)

// Build metadata, overridable via -ldflags at release time.
var (
	BuildCommit = ""
	BuildType   = "dev"
)

// Execute runs the framepace CLI with the given arguments.
func Execute(args []string) error {
	app := cli.App{
		Name:         "framepace",
		HelpName:     "framepace",
		Usage:        "control client for the framepaced frame pacing daemon",
		Version:      fmt.Sprintf("%s-%s", common.Version, BuildType),
		UsageText:    "framepace <command> [arguments...]",
		OnUsageError: usageErrorCallback,
		Commands: []cli.Command{
			{
				Name:         "status",
				Aliases:      []string{"s"},
				Usage:        "show pacing state for one or all surfaces",
				Action:       status,
				OnUsageError: usageErrorCallback,
				Flags:        surfaceFlags,
			},
			{
				Name:         "watch",
				Aliases:      []string{"w"},
				Usage:        "live view of buffer occupancy per surface",
				Action:       watch,
				OnUsageError: usageErrorCallback,
				Flags:        watchFlags,
			},
			{
				Name:         "set-refresh",
				Usage:        "set the display refresh rate the daemon paces against",
				ArgsUsage:    "<rate-hz>",
				Action:       setRefresh,
				OnUsageError: usageErrorCallback,
				Flags:        refreshFlags,
			},
			{
				Name:         "set-buffers",
				Usage:        "resize a surface's swapchain",
				ArgsUsage:    "<count>",
				Action:       setBuffers,
				OnUsageError: usageErrorCallback,
				Flags:        surfaceFlags,
			},
			{
				Name:         "flush",
				Aliases:      []string{"f"},
				Usage:        "release all held buffers immediately",
				Action:       flush,
				OnUsageError: usageErrorCallback,
				Flags:        surfaceFlags,
			},
			{
				Name:         "trace",
				Aliases:      []string{"t"},
				Usage:        "dump recent frame timing samples",
				Action:       trace,
				OnUsageError: usageErrorCallback,
				Flags:        traceFlags,
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "print client and daemon versions",
				Action:  getVersion,
			},
		},
		Action:      status,
		HideVersion: true,
	}
	return app.Run(args)
}

func main() {
	if err := Execute(os.Args); err != nil {
		fmt.Printf("framepace: %s\n", err.Error())
		os.Exit(1)
	}
}
