package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timowlmtn/living-harmonix/internal/erase"
)

var (
	eraseUser    string
	eraseProject string
	eraseDate    string
	eraseYes     bool
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase a project or one day of captures",
	Example: `  harmonix erase --user u1 --project living_harmony_back_garden --yes
  harmonix erase --user u1 --project living_harmony_back_garden --date 2025-06-14 --yes`,
	RunE: runErase,
}

func init() {
	eraseCmd.Flags().StringVar(&eraseUser, "user", "", "user id (required)")
	eraseCmd.Flags().StringVar(&eraseProject, "project", "", "project id (required)")
	eraseCmd.Flags().StringVar(&eraseDate, "date", "", "erase only this YYYY-MM-DD day")
	eraseCmd.Flags().BoolVar(&eraseYes, "yes", false, "skip the confirmation prompt")
	_ = eraseCmd.MarkFlagRequired("user")
	_ = eraseCmd.MarkFlagRequired("project")
}

func runErase(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	gw, cfg, logger, err := newGateway(ctx)
	if err != nil {
		return err
	}

	target := eraseProject
	if eraseDate != "" {
		target += "/" + eraseDate
	}
	if !eraseYes {
		fmt.Printf("About to erase %s for user %s. Re-run with --yes to confirm.\n", target, eraseUser)
		return nil
	}

	eraser := erase.New(gw, cfg.Storage.Namespace, logger)
	var result *erase.Result
	if eraseDate != "" {
		result, err = eraser.EraseDate(ctx, eraseUser, eraseProject, eraseDate)
	} else {
		result, err = eraser.EraseProject(ctx, eraseUser, eraseProject)
	}
	if err != nil {
		return err
	}

	fmt.Printf("deleted %d objects\n", len(result.Deleted))
	for _, f := range result.Failures {
		fmt.Printf("failed: %s: %v\n", f.Key, f.Err)
	}
	if len(result.Failures) > 0 {
		return fmt.Errorf("%d objects could not be deleted", len(result.Failures))
	}
	return nil
}
