package dto

import (
	"captainhub.app/relay/internal/domain"
	"captainhub.app/relay/internal/plan"
)

type BoardRequest struct {
	Issues []map[string]any `json:"issues"`
}

type BoardResponse struct {
	Issues  []domain.MergedIssue `json:"issues"`
	Summary plan.Summary         `json:"summary"`
}

type PlanResponse struct {
	Items []plan.Item `json:"items"`
}

type ReplacePlanRequest struct {
	Items []plan.Item `json:"items" binding:"required"`
}

type RemovePlanItemResponse struct {
	Removed plan.Item `json:"removed"`
}
