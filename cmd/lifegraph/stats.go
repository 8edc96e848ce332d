package main

import (
	"context"
	"fmt"
	"time"

	lifegraph "github.com/lifegraph-ai/lifegraph"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print graph statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close(context.Background())

		stats := engine.Stats()
		fmt.Printf("Nodes:    %d\n", stats.NodeCount)
		fmt.Printf("Edges:    %d\n", stats.EdgeCount)
		fmt.Printf("Pending:  %d\n", stats.PendingCount)
		fmt.Printf("Weight:   %d\n", stats.TotalWeight)
		if len(stats.NodesByType) > 0 {
			fmt.Println("By type:")
			for typ, count := range stats.NodesByType {
				fmt.Printf("  %-14s %d\n", typ, count)
			}
		}
		return nil
	},
}

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Run a decay pass over the graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close(context.Background())

		removed := engine.Decay(time.Now())
		fmt.Printf("Removed %d stale edges\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(decayCmd)
}

// openEngine builds an engine from config for one-shot CLI commands.
func openEngine() (*lifegraph.Engine, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return lifegraph.New(cfg, lifegraph.Options{Logger: log})
}
