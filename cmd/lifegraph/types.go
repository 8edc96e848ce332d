package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Administer the entity/relationship type registry",
}

var typesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered node and edge types",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close(context.Background())

		fmt.Println("Node types:")
		for _, def := range engine.Registry().NodeTypes() {
			printTypeDef(def)
		}
		fmt.Println("\nEdge types:")
		for _, def := range engine.Registry().EdgeTypes() {
			printTypeDef(&def.TypeDefinition)
		}
		return nil
	},
}

var typesAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Register a new node type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close(context.Background())

		description, _ := cmd.Flags().GetString("description")
		aliases, _ := cmd.Flags().GetStringSlice("alias")

		def := &types.TypeDefinition{
			ID:          args[0],
			Description: description,
			Aliases:     aliases,
		}
		if err := engine.Registry().AddNodeType(def); err != nil {
			return err
		}
		if err := engine.Registry().Save(); err != nil {
			return err
		}
		fmt.Printf("Registered node type %q\n", args[0])
		return nil
	},
}

var typesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search node types by id, label, description, or alias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close(context.Background())

		hits := engine.Registry().Search(args[0])
		if len(hits) == 0 {
			fmt.Println("No matching types")
			return nil
		}
		for _, def := range hits {
			printTypeDef(def)
		}
		return nil
	},
}

var typesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print type registry statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close(context.Background())

		s := engine.Registry().Summary()
		fmt.Printf("Node types: %d\n", s.NodeTypeCount)
		fmt.Printf("Edge types: %d\n", s.EdgeTypeCount)
		fmt.Printf("Custom:     %d\n", s.CustomCount)
		fmt.Printf("Usage:      %d\n", s.TotalUsage)
		return nil
	},
}

var typesConsolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Fold near-duplicate custom types into each other",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close(context.Background())

		removed := engine.Registry().Consolidate()
		if err := engine.Registry().Save(); err != nil {
			return err
		}
		fmt.Printf("Consolidated %d types\n", removed)
		return nil
	},
}

func init() {
	typesAddCmd.Flags().String("description", "", "human-readable description")
	typesAddCmd.Flags().StringSlice("alias", nil, "alias names (repeatable)")

	typesCmd.AddCommand(typesListCmd, typesAddCmd, typesSearchCmd, typesStatsCmd, typesConsolidateCmd)
	rootCmd.AddCommand(typesCmd)
}

func printTypeDef(def *types.TypeDefinition) {
	line := fmt.Sprintf("  %-22s %-6s uses=%-4d", def.ID, def.Category, def.UsageCount)
	if len(def.Aliases) > 0 {
		line += " aliases=" + strings.Join(def.Aliases, ",")
	}
	fmt.Println(line)
}
