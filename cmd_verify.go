package main

import (
	"fmt"
	"time"

	"github.com/nonceforge/vaultx/verify"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

func newVerifyCmd() *cli.Command {
	var keyHex string
	return &cli.Command{
		Name:        "verify",
		Description: "Recompute every stored nonce's hash and confirm it sits in the right bucket.",
		ArgsUsage:   "<vault-path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Usage: "hex-encoded BLAKE3 key", Destination: &keyHex},
		},
		Action: func(c *cli.Context) error {
			dataPath := c.Args().First()
			if dataPath == "" {
				return cli.Exit("usage: vaultx verify <vault-path>", 1)
			}

			db, cfg, h, err := openVault(dataPath, keyHex)
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer db.Close()

			started := time.Now()
			rep, err := verify.Run(db, h, cfg.Plan())
			klog.Infof("verify: scanned %d records in %s", rep.TotalRecords, time.Since(started))
			if err != nil {
				return cli.Exit(fmt.Errorf("verify failed: %w", err), 1)
			}

			var efficiency float64
			if rep.TotalRecords > 0 {
				efficiency = 100 * float64(rep.TotalRecords-rep.ZeroNonces) / float64(rep.TotalRecords)
			}
			klog.Infof("verify: %d records, %d empty slots, %d misplaced, storage efficiency %.2f%%", rep.TotalRecords, rep.ZeroNonces, rep.Misplaced, efficiency)
			if !rep.OK() {
				for _, m := range rep.MisplacedSample {
					klog.Warningf("verify: bucket %d slot %d belongs in bucket %d", m.Bucket, m.Slot, m.ExpectBucket)
				}
				return cli.Exit(fmt.Sprintf("verify: %d misplaced records", rep.Misplaced), 1)
			}
			return nil
		},
	}
}
