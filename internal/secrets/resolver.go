package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Checker-Finance/zeroex-adapter/internal/metrics"
	"github.com/Checker-Finance/zeroex-adapter/internal/zeroex"
	pkgsecrets "github.com/Checker-Finance/zeroex-adapter/pkg/secrets"
)

const venue = "zeroex"

// AWSResolver resolves per-integrator 0x configuration from AWS Secrets
// Manager, caching results locally to reduce API calls.
//
// Secret naming convention: {env}/{integratorID}/zeroex
// Secret JSON format:       {"api_key": "...", "base_url": "https://api.0x.org", "version": "v2"}
type AWSResolver struct {
	logger   *zap.Logger
	env      string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[zeroex.IntegratorConfig]
}

// NewAWSResolver constructs a 0x-specific config resolver using AWS Secrets Manager and local cache.
func NewAWSResolver(
	logger *zap.Logger,
	env string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[zeroex.IntegratorConfig],
) *AWSResolver {
	return &AWSResolver{
		logger:   logger,
		env:      env,
		provider: provider,
		cache:    cache,
	}
}

// cacheKey builds the in-memory cache key for an integrator.
func (r *AWSResolver) cacheKey(integratorID string) string {
	return strings.ToLower(integratorID + "|" + venue)
}

// secretName builds the AWS Secrets Manager key for an integrator.
// Pattern: {env}/{integratorID}/zeroex
func (r *AWSResolver) secretName(integratorID string) string {
	return strings.ToLower(fmt.Sprintf("%s/%s/%s", r.env, integratorID, venue))
}

// Resolve fetches or caches the IntegratorConfig for a given integrator ID.
func (r *AWSResolver) Resolve(ctx context.Context, integratorID string) (*zeroex.IntegratorConfig, error) {
	key := r.cacheKey(integratorID)

	if cfg, ok := r.cache.Get(key); ok {
		metrics.IncCacheHit("hit")
		return &cfg, nil
	}
	metrics.IncCacheHit("miss")

	secretName := r.secretName(integratorID)
	secretMap, err := r.provider.GetSecret(ctx, secretName)
	if err != nil {
		r.logger.Warn("aws.secret_fetch_failed",
			zap.String("key", secretName),
			zap.Error(err))
		return nil, fmt.Errorf("resolve integrator config for %q: %w", integratorID, err)
	}

	cfg, err := parseIntegratorConfig(secretMap)
	if err != nil {
		return nil, fmt.Errorf("parse secret %q: %w", secretName, err)
	}

	r.cache.Put(key, cfg)

	r.logger.Info("aws.integrator_config_resolved",
		zap.String("integrator", integratorID),
		zap.String("venue", venue),
	)
	return &cfg, nil
}

// DiscoverIntegrators lists all integrator IDs that have 0x secrets configured
// in AWS Secrets Manager. It searches for secrets matching the prefix
// "{env}/" and ending with "/zeroex", then extracts integrator IDs from the
// middle segment.
func (r *AWSResolver) DiscoverIntegrators(ctx context.Context) ([]string, error) {
	prefix := strings.ToLower(r.env + "/")
	suffix := "/" + venue

	names, err := r.provider.ListSecrets(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("discover integrators: %w", err)
	}

	var integrators []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		trimmed := strings.TrimPrefix(lower, prefix)
		trimmed = strings.TrimSuffix(trimmed, suffix)
		if trimmed != "" && !strings.Contains(trimmed, "/") {
			integrators = append(integrators, trimmed)
		}
	}

	r.logger.Info("aws.integrators_discovered",
		zap.Int("count", len(integrators)),
		zap.Strings("integrators", integrators),
	)
	return integrators, nil
}

// parseIntegratorConfig extracts an IntegratorConfig from the raw AWS secret map.
func parseIntegratorConfig(m map[string]string) (zeroex.IntegratorConfig, error) {
	cfg := zeroex.IntegratorConfig{
		APIKey:  m["api_key"],
		BaseURL: m["base_url"],
		Version: m["version"],
	}
	if cfg.APIKey == "" {
		return zeroex.IntegratorConfig{}, fmt.Errorf("missing required field 'api_key'")
	}
	if cfg.BaseURL == "" {
		return zeroex.IntegratorConfig{}, fmt.Errorf("missing required field 'base_url'")
	}
	if cfg.Version == "" {
		cfg.Version = "v2"
	}
	return cfg, nil
}
