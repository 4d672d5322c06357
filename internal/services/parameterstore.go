// Package services holds thin wrappers around external AWS services.
package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"cicd-notifier/internal/routing"
)

// NotifyConfig holds the delivery configuration resolved at cold start: the
// branch routing table for pull-request notifications and the default
// endpoint list for broadcast notifications.
type NotifyConfig struct {
	RoutingTable routing.Table
	WebhookURLs  []string
}

// ParameterStore defines the interface for accessing delivery configuration.
type ParameterStore interface {
	// GetParameter retrieves a single parameter by name.
	GetParameter(ctx context.Context, name string) (string, error)

	// GetNotifyConfig loads the delivery configuration.
	GetNotifyConfig(ctx context.Context) (*NotifyConfig, error)
}

// SSMAPI is the subset of the SSM client the store consumes.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// SSMParameterStore implements ParameterStore using AWS Systems Manager
// Parameter Store, with values cached for the lifetime of the container.
type SSMParameterStore struct {
	client SSMAPI
	env    string
	mu     sync.RWMutex
	cache  map[string]string
}

// NewSSMParameterStore creates a new SSM-backed parameter store.
func NewSSMParameterStore(client SSMAPI, env string) *SSMParameterStore {
	return &SSMParameterStore{
		client: client,
		env:    env,
		cache:  make(map[string]string),
	}
}

// GetParameter retrieves a single decrypted parameter from Parameter Store.
func (s *SSMParameterStore) GetParameter(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	if value, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return value, nil
	}
	s.mu.RUnlock()

	result, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get parameter %s: %w", name, err)
	}
	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s not found", name)
	}

	value := aws.ToString(result.Parameter.Value)

	s.mu.Lock()
	s.cache[name] = value
	s.mu.Unlock()

	return value, nil
}

// GetNotifyConfig loads the delivery configuration from Parameter Store.
// Webhook URLs hold secrets, so they live under a decrypted path rather than
// plain environment variables.
func (s *SSMParameterStore) GetNotifyConfig(ctx context.Context) (*NotifyConfig, error) {
	path := fmt.Sprintf("/%s/cicd-notifier", s.env)

	result, err := s.client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get parameters by path %s: %w", path, err)
	}

	params := make(map[string]string)
	for _, param := range result.Parameters {
		if param.Name != nil && param.Value != nil {
			params[aws.ToString(param.Name)] = aws.ToString(param.Value)
		}
	}

	s.mu.Lock()
	for k, v := range params {
		s.cache[k] = v
	}
	s.mu.Unlock()

	cfg := &NotifyConfig{}

	if raw := params[path+"/notice-targets"]; raw != "" {
		table, err := routing.ParseJSON([]byte(raw))
		if err != nil {
			return nil, err
		}
		cfg.RoutingTable = table
	}
	if raw := params[path+"/webhook-urls"]; raw != "" {
		cfg.WebhookURLs = splitURLs(raw)
	}

	return cfg, nil
}

// EnvParameterStore implements ParameterStore using environment variables,
// for local runs without an AWS connection (DISABLE_SSM).
type EnvParameterStore struct {
	env string
}

// NewEnvParameterStore creates a new environment-variable-backed store.
func NewEnvParameterStore(env string) *EnvParameterStore {
	return &EnvParameterStore{env: env}
}

// GetParameter reads the named environment variable.
func (e *EnvParameterStore) GetParameter(_ context.Context, name string) (string, error) {
	return os.Getenv(name), nil
}

// GetNotifyConfig loads the delivery configuration from NOTICE_TARGETS and
// SLACK_WEBHOOK_URLS.
func (e *EnvParameterStore) GetNotifyConfig(_ context.Context) (*NotifyConfig, error) {
	cfg := &NotifyConfig{}

	if raw := os.Getenv("NOTICE_TARGETS"); raw != "" {
		table, err := routing.ParseJSON([]byte(raw))
		if err != nil {
			return nil, err
		}
		cfg.RoutingTable = table
	}
	if raw := os.Getenv("SLACK_WEBHOOK_URLS"); raw != "" {
		cfg.WebhookURLs = splitURLs(raw)
	}

	return cfg, nil
}

func splitURLs(raw string) []string {
	parts := strings.Split(raw, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}
