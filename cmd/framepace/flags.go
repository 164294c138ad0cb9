package main

import "github.com/urfave/cli"

var (
	surfaceName   string
	redzoneNanos  uint64
	traceLimit    int
	watchInterval int
)

var surfaceFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "surface, s",
		Usage:       "surface name (empty selects all surfaces)",
		Destination: &surfaceName,
	},
}

var refreshFlags = []cli.Flag{
	cli.Uint64Flag{
		Name:        "redzone, r",
		Usage:       "safety margin before vblank in nanoseconds (0 keeps current)",
		Destination: &redzoneNanos,
	},
}

var traceFlags = append([]cli.Flag{
	cli.IntFlag{
		Name:        "limit, n",
		Usage:       "maximum samples to fetch",
		Value:       20,
		Destination: &traceLimit,
	},
}, surfaceFlags...)

var watchFlags = append([]cli.Flag{
	cli.IntFlag{
		Name:        "interval, i",
		Usage:       "poll interval in milliseconds",
		Value:       250,
		Destination: &watchInterval,
	},
}, surfaceFlags...)
