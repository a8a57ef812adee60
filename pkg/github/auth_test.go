package github

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticateRequiresToken(t *testing.T) {
	am := NewAuthManager()
	assert.Error(t, am.Authenticate(""))
}

func TestValidateTokenRequiresAuthenticate(t *testing.T) {
	am := NewAuthManager()
	_, err := am.ValidateToken(context.Background())
	assert.Error(t, err)
}

func TestAuthenticateSetsUpClient(t *testing.T) {
	am := NewAuthManager()
	assert.NoError(t, am.Authenticate("some-token"))
	assert.NotNil(t, am.client)
}

func TestGetAuthInstructionsMentionsEveryMethod(t *testing.T) {
	instructions := GetAuthInstructions()
	assert.Contains(t, instructions, "GITHUB_TOKEN")
	assert.Contains(t, instructions, ".env")
	assert.Contains(t, instructions, "config.yaml")
}
