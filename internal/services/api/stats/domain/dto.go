// Package domain holds DTOs for stats http and service contracts
package domain

// MethodsInput selects the journal window
type MethodsInput struct {
	Since string `json:"since" validate:"required,datetime=2006-01-02" example:"2026-10-01"`
	// optional filter
	Method string `json:"method,omitempty" validate:"omitempty,min=1,max=64" example:"proveJwt"`
}

// MethodRow is one method bucket
type MethodRow struct {
	Method      string  `json:"method" example:"proveJwt"`
	Calls       uint64  `json:"calls" example:"42"`
	Failures    uint64  `json:"failures" example:"3"`
	FailureRate float64 `json:"failure_rate" example:"0.071"`
	AvgMS       float64 `json:"avg_ms" example:"812.5"`
}
