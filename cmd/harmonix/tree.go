package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timowlmtn/living-harmonix/internal/namespace"
)

var (
	treeUser    string
	treeProject string
	treeDate    string
	treeFlat    bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show a project's capture tree",
	Example: `  harmonix tree --user u1 --project living_harmony_back_garden
  harmonix tree --user u1 --project living_harmony_back_garden --date 2025-06-14 --flat`,
	RunE: runTree,
}

func init() {
	treeCmd.Flags().StringVar(&treeUser, "user", "", "user id (required)")
	treeCmd.Flags().StringVar(&treeProject, "project", "", "project id (required)")
	treeCmd.Flags().StringVar(&treeDate, "date", "", "narrow to one YYYY-MM-DD day")
	treeCmd.Flags().BoolVar(&treeFlat, "flat", false, "emit map points instead of the tree")
	_ = treeCmd.MarkFlagRequired("user")
	_ = treeCmd.MarkFlagRequired("project")
}

func runTree(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	gw, cfg, logger, err := newGateway(ctx)
	if err != nil {
		return err
	}

	tree, err := namespace.NewLister(gw, cfg.Storage.Namespace, logger).
		ListProject(ctx, treeUser, treeProject, treeDate)
	if err != nil {
		return err
	}

	if treeFlat {
		return printJSON(namespace.Flatten(treeProject, tree))
	}
	if len(tree) == 0 {
		fmt.Println("(empty)")
		return nil
	}
	return printJSON(tree)
}
