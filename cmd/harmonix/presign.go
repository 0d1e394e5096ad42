package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var presignTTL time.Duration

var presignCmd = &cobra.Command{
	Use:     "presign <key>",
	Short:   "Mint a time-boxed read URL for an object",
	Example: `  harmonix presign geovision/u1/p1/2025-06-14/42.3601_-71.0589/2025-06-14T174318.422Z.png --ttl 1h`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPresign,
}

func init() {
	presignCmd.Flags().DurationVar(&presignTTL, "ttl", 0, "URL lifetime (default from config)")
}

func runPresign(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, cfg, _, err := newGateway(ctx)
	if err != nil {
		return err
	}

	ttl := presignTTL
	if ttl <= 0 {
		ttl = cfg.Storage.PresignTTL
	}

	url, err := gw.PresignGet(ctx, args[0], ttl)
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}
