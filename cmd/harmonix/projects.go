package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timowlmtn/living-harmonix/internal/geo"
	"github.com/timowlmtn/living-harmonix/internal/namespace"
	"github.com/timowlmtn/living-harmonix/internal/project"
)

var (
	projectsUser  string
	projectsAgent string
	rankLat       float64
	rankLon       float64
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List or rank a user's projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, optionally filtered by agent type",
	Example: `  harmonix projects list --user u1
  harmonix projects list --user u1 --agent-type living_harmony`,
	RunE: runProjectsList,
}

var projectsRankCmd = &cobra.Command{
	Use:     "rank",
	Short:   "Rank agent-type projects by distance from a reference point",
	Example: `  harmonix projects rank --user u1 --agent-type zen_guide --lat 42.3601 --lon -71.0589`,
	RunE:    runProjectsRank,
}

func init() {
	projectsCmd.PersistentFlags().StringVar(&projectsUser, "user", "", "user id (required)")
	_ = projectsCmd.MarkPersistentFlagRequired("user")
	projectsCmd.PersistentFlags().StringVar(&projectsAgent, "agent-type", "", "agent type filter")

	projectsRankCmd.Flags().Float64Var(&rankLat, "lat", 0, "reference latitude (required)")
	projectsRankCmd.Flags().Float64Var(&rankLon, "lon", 0, "reference longitude (required)")
	_ = projectsRankCmd.MarkFlagRequired("lat")
	_ = projectsRankCmd.MarkFlagRequired("lon")
	_ = projectsRankCmd.MarkFlagRequired("agent-type")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsRankCmd)
}

func runProjectsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	gw, cfg, logger, err := newGateway(ctx)
	if err != nil {
		return err
	}

	var listings map[string]namespace.ProjectListing
	if projectsAgent != "" {
		listings, err = project.NewResolver(gw, cfg.Storage.Namespace).
			ListByAgentType(ctx, projectsUser, projectsAgent)
	} else {
		listings, err = namespace.NewLister(gw, cfg.Storage.Namespace, logger).
			ListUserProjects(ctx, projectsUser)
	}
	if err != nil {
		return err
	}
	return printJSON(listings)
}

func runProjectsRank(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	gw, cfg, _, err := newGateway(ctx)
	if err != nil {
		return err
	}

	ranked, err := project.NewResolver(gw, cfg.Storage.Namespace).
		RankByProximity(ctx, projectsUser, projectsAgent, geo.Coordinate{Lat: rankLat, Lon: rankLon})
	if err != nil {
		return err
	}
	for i, id := range ranked {
		fmt.Printf("%d. %s\n", i+1, id)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
