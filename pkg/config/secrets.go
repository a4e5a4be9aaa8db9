package config

import (
	"context"
	"fmt"
	"log/slog"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretSource resolves a secret by name within a project.
type SecretSource interface {
	Secret(ctx context.Context, project, name string) (string, error)
	Close() error
}

type SecretManager struct {
	client *secretmanager.Client
}

func NewSecretManager(ctx context.Context) (*SecretManager, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}
	return &SecretManager{client: client}, nil
}

func (s *SecretManager) Secret(ctx context.Context, project, name string) (string, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name),
	})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", name, err)
	}
	return string(resp.GetPayload().GetData()), nil
}

func (s *SecretManager) Close() error {
	return s.client.Close()
}

func resolveSecrets(ctx context.Context, cfg *Config, secrets SecretSource) error {
	missing := 0
	for _, k := range cfg.credentials() {
		if *k.value == "" {
			missing++
		}
	}
	if missing == 0 || cfg.Secrets.Project == "" {
		return nil
	}

	if secrets == nil {
		sm, err := NewSecretManager(ctx)
		if err != nil {
			slog.Warn("Secret Manager unavailable, skipping", "error", err)
			return nil
		}
		defer func() { _ = sm.Close() }()
		secrets = sm
	}

	for _, k := range cfg.credentials() {
		if *k.value != "" {
			continue
		}
		value, err := secrets.Secret(ctx, cfg.Secrets.Project, k.env)
		if err != nil {
			slog.Warn("Secret not resolved", "secret", k.env, "error", err)
			continue
		}
		*k.value = value
		slog.Debug("Loaded secret", "secret", k.env, "project", cfg.Secrets.Project)
	}
	return nil
}
