package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractParams(t *testing.T) {
	assert.Equal(t, []string{"host", "count"}, ExtractParams("ssh {{host}} ping -c {{count}} {{host}}"))
	assert.Nil(t, ExtractParams("ls -la"))
}

func TestSubstituteParams(t *testing.T) {
	got := SubstituteParams("ssh {{user}}@{{host}} -p {{port}}", map[string]string{
		"user": "root",
		"host": "example.org",
	})
	assert.Equal(t, "ssh root@example.org -p {{port}}", got)
}

func TestCheckSyntax(t *testing.T) {
	assert.NoError(t, CheckSyntax("ls -la | grep foo && echo ok"))
	assert.NoError(t, CheckSyntax("ping -c 4 {{host}}"))
	assert.NoError(t, CheckSyntax("dnf search "))
	assert.Error(t, CheckSyntax("echo 'unterminated"))
	assert.Error(t, CheckSyntax("if true; then"))
}
