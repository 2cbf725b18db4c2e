package api

import (
	"context"

	"github.com/Checker-Finance/zeroex-adapter/internal/zeroex"
)

// ResolverValidator implements IntegratorValidator by attempting to resolve
// the integrator's config via ConfigResolver. If resolution succeeds (cache
// hit or AWS Secrets Manager lookup), the integrator is considered known.
type ResolverValidator struct {
	resolver zeroex.ConfigResolver
}

// NewResolverValidator creates an IntegratorValidator backed by a ConfigResolver.
func NewResolverValidator(resolver zeroex.ConfigResolver) *ResolverValidator {
	return &ResolverValidator{resolver: resolver}
}

// IsKnownIntegrator returns true if the integrator has a valid config in AWS Secrets Manager.
func (v *ResolverValidator) IsKnownIntegrator(ctx context.Context, integratorID string) bool {
	_, err := v.resolver.Resolve(ctx, integratorID)
	return err == nil
}
