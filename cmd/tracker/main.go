// Command tracker runs the singleton coordinator described in §4.5:
// peer registration, heartbeat adjudication, liveness eviction, and
// miner/difficulty queries.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/cowboyphilip/votechain/logging"
	"github.com/cowboyphilip/votechain/tracker"
)

func main() {
	app := &cli.App{
		Name:      "tracker",
		Usage:     "votechain tracker node",
		ArgsUsage: "host port [topology_file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug|info|warn|error"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit("usage: tracker host port [topology_file]", 1)
	}

	host := c.Args().Get(0)
	port, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid port %q: %v", c.Args().Get(1), err), 1)
	}
	// A third positional topology_file is accepted to keep the tracker's
	// CLI surface consistent with the peer's (§6), though the tracker role
	// has no gossip neighbors of its own to load.

	log := logging.New("tracker", c.String("log-level"))

	t, err := tracker.New(host, port, log)
	if err != nil {
		return cli.Exit(fmt.Sprintf("build tracker: %v", err), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := t.Start(ctx); err != nil {
		return cli.Exit(fmt.Sprintf("start tracker: %v", err), 1)
	}
	log.Infof("tracker listening on %s:%d", host, port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Infof("shutting down")
	t.Shutdown()
	return nil
}
