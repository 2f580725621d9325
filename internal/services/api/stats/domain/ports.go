package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Methods(ctx context.Context, in MethodsInput) ([]MethodRow, error)
}
