package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSourceFetch(t *testing.T) {
	src := NewStaticSource(map[string]string{
		"contactformcredentials/SECRET_KEY": "recaptcha-secret",
		"plainsecret":                       "value",
	})

	ctx := context.Background()

	value, err := src.Fetch(ctx, "contactformcredentials", "SECRET_KEY")
	require.NoError(t, err)
	assert.Equal(t, "recaptcha-secret", value)

	value, err = src.Fetch(ctx, "plainsecret", "")
	require.NoError(t, err)
	assert.Equal(t, "value", value)

	_, err = src.Fetch(ctx, "contactformcredentials", "MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExtractKeyFromJSONObject(t *testing.T) {
	raw := `{"SECRET_KEY":"abc","CONNECTION_STRING":"postgres://u:p@h/db"}`

	value, err := extractKey(raw, "contactformcredentials", "CONNECTION_STRING")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h/db", value)

	_, err = extractKey(raw, "contactformcredentials", "OTHER")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = extractKey("not json", "contactformcredentials", "SECRET_KEY")
	assert.Error(t, err)

	value, err = extractKey("not json", "contactformcredentials", "")
	require.NoError(t, err)
	assert.Equal(t, "not json", value)
}

type fakeSecretsManager struct {
	secrets map[string]string
	calls   int
	err     error
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	raw, ok := f.secrets[aws.ToString(params.SecretId)]
	if !ok {
		return &secretsmanager.GetSecretValueOutput{}, nil
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(raw)}, nil
}

func TestAWSSourceFetchAndCache(t *testing.T) {
	fake := &fakeSecretsManager{secrets: map[string]string{
		"contactformcredentials": `{"SECRET_KEY":"abc"}`,
	}}
	src := &AWSSource{client: fake, cache: make(map[string]string)}

	ctx := context.Background()

	value, err := src.Fetch(ctx, "contactformcredentials", "SECRET_KEY")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	_, err = src.Fetch(ctx, "contactformcredentials", "SECRET_KEY")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls, "secret string should be cached after the first fetch")
}

func TestAWSSourceEmptySecret(t *testing.T) {
	fake := &fakeSecretsManager{secrets: map[string]string{}}
	src := &AWSSource{client: fake, cache: make(map[string]string)}

	_, err := src.Fetch(context.Background(), "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAWSSourcePropagatesClientErrors(t *testing.T) {
	fake := &fakeSecretsManager{err: errors.New("throttled")}
	src := &AWSSource{client: fake, cache: make(map[string]string)}

	_, err := src.Fetch(context.Background(), "contactformcredentials", "SECRET_KEY")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewAWSSourceRequiresRegion(t *testing.T) {
	_, err := NewAWSSource(context.Background(), " ")
	assert.Error(t, err)
}
