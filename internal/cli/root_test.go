package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpkinbots/partbot/pkg/jwt"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "partbotctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"seed", "token", "status"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestFormatoInvalido(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"token", "--format", "xml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "formato inválido")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"token", "--subject", "discord-bot", "--role", "bot", "--minutes", "5"})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())

	username, role, err := jwt.Parse("cli-test-secret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "discord-bot", username)
	assert.Equal(t, "bot", role)
}

func TestTokenCommand_RolInvalido(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"token", "--role", "admin"})
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
