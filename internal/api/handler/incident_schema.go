package handler

import (
	"encoding/json"
	"time"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createIncidentRequest struct {
	Title       string `json:"title"       validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority"    validate:"required,max=20"`
}

type createIncidentResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// updateIncidentRequest distinguishes an absent key from an explicit null.
type updateIncidentRequest struct {
	Status     optionalString `json:"status"      swaggertype:"string"`
	AssignedTo optionalString `json:"assigned_to" swaggertype:"string"`
}

// optionalString records whether a JSON key was present at all, and if so
// whether it carried null or a string.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// incidentSummaryResponse is the client-facing view of an incident. It
// deliberately omits created_by, assigned_to and updated_at.
type incidentSummaryResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}
