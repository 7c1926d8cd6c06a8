package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"captainhub.app/relay/internal/domain"
	"captainhub.app/relay/internal/mapper"
	"captainhub.app/relay/internal/plan"
)

type boardOutput struct {
	Issues  []domain.MergedIssue `json:"issues"`
	Summary plan.Summary         `json:"summary"`
}

func newBoardCmd() *cobra.Command {
	var issuesPath, planPath string
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Merge live issues with a staged plan and print the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			var live []domain.Issue
			if issuesPath != "" {
				raw, err := readInput(cmd, issuesPath)
				if err != nil {
					return err
				}
				var rawIssues []map[string]any
				if err := json.Unmarshal(raw, &rawIssues); err != nil {
					return fmt.Errorf("decoding issues: %w", err)
				}
				live = mapper.NormalizeIssues(rawIssues)
			}

			var items []plan.Item
			if planPath != "" {
				raw, err := readInput(cmd, planPath)
				if err != nil {
					return err
				}
				items = plan.ParseItems(raw)
			}

			merged := plan.Merge(live, plan.Drafts(items))
			return writeJSON(cmd, boardOutput{Issues: merged, Summary: plan.Summarize(merged)})
		},
	}
	cmd.Flags().StringVar(&issuesPath, "issues", "", "JSON array of live tracker issues")
	cmd.Flags().StringVar(&planPath, "plan", "", "JSON array of plan items")
	cmd.MarkFlagsOneRequired("issues", "plan")
	return cmd
}
