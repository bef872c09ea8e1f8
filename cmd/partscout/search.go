package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/use-agent/partscout/config"
	"github.com/use-agent/partscout/models"
)

var (
	searchSeller string
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one search and print the result as JSON",
	Example: `  partscout search "intel i5 12400f"
  partscout search "rtx 4060" --seller flipkart --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		initLogger(cfg.Log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		agg, _ := newAggregator(cfg)
		resp, err := agg.Search(ctx, models.SearchRequest{
			Query:  strings.Join(args, " "),
			Seller: searchSeller,
			Limit:  searchLimit,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(resp)
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchSeller, "seller", "s", models.SellerAll, "source to query: all, amazon, flipkart, mdcomputers or bing")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "maximum listings per source (0 uses PARTSCOUT_RESULT_LIMIT)")
}
