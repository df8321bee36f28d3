// Command peer runs a votechain peer node (§4.4): it holds a chain and
// mempool, mines pending transactions, gossips over the overlay topology,
// and registers/heartbeats with the tracker. An optional interactive REPL
// (create/mine/results/info/exit) mirrors the demo frontend described in
// original_source/src/client.py.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/cowboyphilip/votechain/logging"
	"github.com/cowboyphilip/votechain/peernode"
	"github.com/cowboyphilip/votechain/sig"
)

func main() {
	app := &cli.App{
		Name:      "peer",
		Usage:     "votechain peer node",
		ArgsUsage: "host port tracker_host tracker_port [topology_file=topology.dat] [mining_difficulty=4] [auto_mine=false]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug|info|warn|error"},
			&cli.BoolFlag{Name: "repl", Usage: "run the interactive create/mine/results/info/exit REPL"},
			&cli.BoolFlag{Name: "real-sig", Usage: "use the secp256k1 signature verifier instead of the demo always-true one"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 4 {
		return cli.Exit("usage: peer host port tracker_host tracker_port [topology_file] [mining_difficulty] [auto_mine]", 1)
	}

	host := c.Args().Get(0)
	port, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid port %q: %v", c.Args().Get(1), err), 1)
	}
	trackerHost := c.Args().Get(2)
	trackerPort, err := strconv.Atoi(c.Args().Get(3))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid tracker_port %q: %v", c.Args().Get(3), err), 1)
	}

	topologyFile := "topology.dat"
	if c.NArg() > 4 {
		topologyFile = c.Args().Get(4)
	}

	miningDifficulty := 4
	if c.NArg() > 5 {
		if d, err := strconv.Atoi(c.Args().Get(5)); err == nil {
			miningDifficulty = d
		}
	}

	autoMine := false
	if c.NArg() > 6 {
		autoMine, _ = strconv.ParseBool(c.Args().Get(6))
	}

	log := logging.New("peer", c.String("log-level"))

	var verifier sig.Verifier = sig.DemoAlwaysTrue{}
	if c.Bool("real-sig") {
		verifier = sig.RealAsymmetric{}
	}

	node, err := peernode.New(peernode.Config{
		Host:              host,
		Port:              port,
		TrackerHost:       trackerHost,
		TrackerPort:       trackerPort,
		TopologyFile:      topologyFile,
		AutoMine:          autoMine,
		Verifier:          verifier,
		Logger:            log,
		InitialDifficulty: miningDifficulty,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("build peer: %v", err), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := node.Start(ctx); err != nil {
		return cli.Exit(fmt.Sprintf("start peer: %v", err), 1)
	}
	log.Infof("peer %s listening, voter_id=%s", node.SelfID(), node.VoterID())

	if c.Bool("repl") {
		runREPL(node)
		node.Shutdown()
		return nil
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Infof("shutting down")
	node.Shutdown()
	return nil
}

// runREPL implements the demo command loop from original_source/src/client.py:
// create <choice>, mine, results, info, exit.
func runREPL(node *peernode.Node) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("votechain peer REPL — commands: create <choice> | mine | results | info | exit")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "create":
			if len(fields) < 2 {
				fmt.Println("usage: create <choice>")
				continue
			}
			ok := node.SubmitVote(fields[1])
			fmt.Println("submitted:", ok)
		case "mine":
			started := node.MineNow()
			fmt.Println("mining started:", started)
		case "results":
			for choice, count := range node.Results() {
				fmt.Printf("%s: %d\n", choice, count)
			}
		case "info":
			info := node.ChainInfo()
			fmt.Printf("chain_length=%d last_hash=%s pending=%d mining=%v\n",
				info.ChainLength, info.LastHash, info.PendingCount, info.MiningFlag)
		case "exit":
			return
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}
