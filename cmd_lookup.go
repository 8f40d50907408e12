package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nonceforge/vaultx/lookup"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

func newLookupCmd() *cli.Command {
	var (
		keyHex  string
		workers int
	)
	return &cli.Command{
		Name:        "lookup",
		Description: "Find the nonce whose hash begins with a given prefix.",
		ArgsUsage:   "<vault-path> <hex-prefix>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Usage: "hex-encoded BLAKE3 key", Destination: &keyHex},
			&cli.IntFlag{Name: "workers", Usage: "parallel rehash workers", Value: 0, Destination: &workers},
		},
		Action: func(c *cli.Context) error {
			dataPath := c.Args().Get(0)
			prefixHex := c.Args().Get(1)
			if dataPath == "" || prefixHex == "" {
				return cli.Exit("usage: vaultx lookup <vault-path> <hex-prefix>", 1)
			}

			db, cfg, h, err := openVault(dataPath, keyHex)
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer db.Close()

			eng := lookup.New(db, h, cfg.Plan(), resolveWorkers(workers))

			started := time.Now()
			nonce, err := eng.LookupHex(c.Context, prefixHex)
			klog.V(2).Infof("lookup: query took %s", time.Since(started))
			if err != nil {
				if errors.Is(err, lookup.ErrNotFound) {
					fmt.Fprintln(os.Stdout, "not found")
					return cli.Exit("", 1)
				}
				return cli.Exit(fmt.Errorf("lookup failed: %w", err), 1)
			}
			fmt.Fprintf(os.Stdout, "%x\n", nonce)
			return nil
		},
	}
}

func newLookupBatchCmd() *cli.Command {
	var (
		keyHex    string
		workers   int
		count     int
		prefixLen int
		csvPath   string
		benchmark bool
	)
	return &cli.Command{
		Name:        "lookup-batch",
		Description: "Run a batch of random-prefix lookups and report timing statistics.",
		ArgsUsage:   "<vault-path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Usage: "hex-encoded BLAKE3 key", Destination: &keyHex},
			&cli.IntFlag{Name: "workers", Usage: "parallel rehash workers", Value: 0, Destination: &workers},
			&cli.IntFlag{Name: "count", Usage: "number of random queries to run", Value: 1000, Destination: &count},
			&cli.IntFlag{Name: "prefix-len", Usage: "bytes per random query prefix", Value: 4, Destination: &prefixLen},
			&cli.BoolFlag{Name: "benchmark", Aliases: []string{"x"}, Usage: "write a per-query CSV timing log (to --csv, or a default lookup_times<N>.csv)", Destination: &benchmark},
			&cli.StringFlag{Name: "csv", Usage: "CSV path for --benchmark output", Destination: &csvPath},
		},
		Action: func(c *cli.Context) error {
			dataPath := c.Args().First()
			if dataPath == "" {
				return cli.Exit("usage: vaultx lookup-batch <vault-path>", 1)
			}

			db, cfg, h, err := openVault(dataPath, keyHex)
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer db.Close()

			eng := lookup.New(db, h, cfg.Plan(), resolveWorkers(workers))

			var w io.Writer
			if benchmark {
				path := csvPath
				if path == "" {
					path = fmt.Sprintf("lookup_times%d.csv", count)
				}
				csvOut, err := os.Create(path)
				if err != nil {
					return cli.Exit(fmt.Errorf("lookup-batch: create csv: %w", err), 1)
				}
				defer csvOut.Close()
				w = csvOut
				klog.Infof("lookup-batch: writing timing log to %s", path)
			}

			res, err := eng.RunBatch(c.Context, count, prefixLen, w)
			if err != nil {
				return cli.Exit(fmt.Errorf("lookup-batch failed: %w", err), 1)
			}
			klog.Infof("lookup-batch: %s", res.SummaryLine())
			fmt.Fprintln(os.Stdout, res.SummaryLine())
			return nil
		},
	}
}
