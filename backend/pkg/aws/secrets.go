package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsClient reads JSON object secrets such as
// {"POSTGRES_PASSWORD":"...","JWT_SECRET":"..."} and caches them per name.
type SecretsClient struct {
	api   secretsAPI
	mu    sync.Mutex
	cache map[string]map[string]string
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return newSecretsClient(secretsmanager.NewFromConfig(cfg))
}

func newSecretsClient(api secretsAPI) *SecretsClient {
	return &SecretsClient{api: api, cache: make(map[string]map[string]string)}
}

// Values returns the key/value pairs stored in the named secret.
func (s *SecretsClient) Values(ctx context.Context, name string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache[name]; ok {
		return v, nil
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(name)})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", name)
	}

	values := map[string]string{}
	if err := json.Unmarshal([]byte(*out.SecretString), &values); err != nil {
		return nil, fmt.Errorf("secret %s is not a JSON object of strings: %w", name, err)
	}
	s.cache[name] = values
	return values, nil
}

// Override copies every non-empty value of the named secret into the
// matching target. Keys missing from the secret leave their target untouched.
func (s *SecretsClient) Override(ctx context.Context, name string, targets map[string]*string) error {
	values, err := s.Values(ctx, name)
	if err != nil {
		return err
	}
	for key, dst := range targets {
		if v := values[key]; v != "" && dst != nil {
			*dst = v
		}
	}
	return nil
}

// ApplySecretOverrides is Override with a client built from the default
// AWS config. Service configs call it when AWS_USE_SECRETS=true.
func ApplySecretOverrides(ctx context.Context, secretName string, targets map[string]*string) error {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return err
	}
	return NewSecretsClient(cfg).Override(ctx, secretName, targets)
}
