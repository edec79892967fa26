package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// secretsManagerAPI is the subset of the Secrets Manager client used here.
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSource fetches secrets from AWS Secrets Manager. Raw secret strings are
// cached for the process lifetime; this service never rotates mid-flight.
type AWSSource struct {
	client secretsManagerAPI

	mu    sync.Mutex
	cache map[string]string
}

// NewAWSSource constructs a source backed by AWS Secrets Manager in the given region.
func NewAWSSource(ctx context.Context, region string) (*AWSSource, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, errors.New("secrets: aws region is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("secrets: load aws config: %w", err)
	}

	return &AWSSource{
		client: secretsmanager.NewFromConfig(cfg),
		cache:  make(map[string]string),
	}, nil
}

// Fetch implements Source.
func (s *AWSSource) Fetch(ctx context.Context, name, key string) (string, error) {
	raw, err := s.secretString(ctx, name)
	if err != nil {
		return "", err
	}
	return extractKey(raw, name, key)
}

func (s *AWSSource) secretString(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	cached, ok := s.cache[name]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("secrets: secret %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("secrets: get secret %q: %w", name, err)
	}

	if out.SecretString == nil || strings.TrimSpace(*out.SecretString) == "" {
		return "", fmt.Errorf("secrets: secret %q is empty: %w", name, ErrNotFound)
	}

	raw := *out.SecretString
	s.mu.Lock()
	s.cache[name] = raw
	s.mu.Unlock()

	return raw, nil
}
