package ingest

import "github.com/google/uuid"

// Result holds the outcome of a plan ingest operation.
type Result struct {
	PlansReceived int         `json:"plans_received"`
	PlansInserted int         `json:"plans_inserted"`
	PlanIDs       []uuid.UUID `json:"plan_ids"`
	SetsReceived  int         `json:"sets_received"`

	Message string `json:"message,omitempty"`
}
