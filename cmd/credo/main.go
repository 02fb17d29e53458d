// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/credo-network/credo/metrics"
	"github.com/credo-network/credo/node"
)

var (
	version   string
	gitCommit string
	gitTag    string
	log       = log15.New()
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Credo",
		Usage:     "Node of the Credo staking ledger",
		Copyright: "2025 Credo Network",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			persistFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiEventsLimitFlag,
			verbosityFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	gene := selectGenesis(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	// data stays in memory unless persistence is asked for
	var dataDir string
	if ctx.Bool(persistFlag.Name) {
		dataDir = makeInstanceDir(ctx, gene)
	}

	n, err := node.New(gene, node.Options{
		DataDir:       dataDir,
		APIAddr:       ctx.String(apiAddrFlag.Name),
		APICORS:       ctx.String(apiCorsFlag.Name),
		CacheSizeMB:   int(ctx.Uint64(cacheFlag.Name)),
		EventsLimit:   ctx.Uint64(apiEventsLimitFlag.Name),
		EnableMetrics: ctx.Bool(enableMetricsFlag.Name),
		EnableAPILogs: ctx.Bool(enableAPILogsFlag.Name),
	})
	if err != nil {
		fatal(err)
	}
	defer n.Close()

	printStartupMessage(gene, dataDir, n.APIURL())

	return n.Run(handleExitSignal())
}
