package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Extract and merge free text into the graph",
	Long:  `Reads text from a file (or stdin when no file is given), runs extraction, and merges the batch.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			text     []byte
			sourceID string
			err      error
		)
		if len(args) == 1 {
			text, err = os.ReadFile(args[0])
			sourceID = filepath.Base(args[0])
		} else {
			text, err = io.ReadAll(os.Stdin)
			sourceID = "stdin"
		}
		if err != nil {
			return err
		}

		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close(context.Background())

		diff, err := engine.IngestText(cmd.Context(), string(text), types.SourceInfo{
			Kind: "document",
			ID:   sourceID,
		})
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		fmt.Printf("Added %d nodes, modified %d, added %d edges (%d dropped)\n",
			len(diff.AddedNodes), len(diff.ModifiedNodes), len(diff.AddedEdges), diff.DroppedEdges)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search graph nodes by label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close(context.Background())

		typ, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")

		nodes := engine.Search(args[0], types.NodeType(typ), limit)
		if len(nodes) == 0 {
			fmt.Println("No matches")
			return nil
		}
		for _, n := range nodes {
			fmt.Printf("  %-30s %-12s weight=%-4d last=%s\n",
				n.Label, n.Type, n.Weight, n.LastSeen.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().String("type", "", "filter by node type")
	searchCmd.Flags().Int("limit", 20, "maximum results")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
}
