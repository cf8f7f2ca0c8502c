package handler

import (
	"github.com/sirpyerre/incident-tracker/internal/core/domain"
	"github.com/sirpyerre/incident-tracker/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createIncidentRequest) ports.CreateIncidentInput {
	return ports.CreateIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}
}

func toUpdateInput(req updateIncidentRequest) ports.UpdateIncidentInput {
	return ports.UpdateIncidentInput{
		Status:        req.Status.Value,
		AssignedTo:    req.AssignedTo.Value,
		AssignedToSet: req.AssignedTo.Set,
	}
}

// --- Service result → HTTP response ---

func toSummaryResponse(i *domain.Incident) incidentSummaryResponse {
	return incidentSummaryResponse{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		Priority:    i.Priority,
		CreatedAt:   i.CreatedAt.UTC(),
	}
}

func toListResponse(items []*domain.Incident) []incidentSummaryResponse {
	out := make([]incidentSummaryResponse, len(items))
	for i, inc := range items {
		out[i] = toSummaryResponse(inc)
	}
	return out
}
