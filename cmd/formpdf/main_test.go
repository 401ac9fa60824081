package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const record = `students:
  - firstName: Emma
    lastName: Martin
    birthDate: "2016-09-12"
    grade: CE1
parents:
  - type: mother
    firstName: Sophie
    lastName: Martin
    phone: "0612345678"
address:
  city: Marseille
`

func writeRecord(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "famille.yaml")
	require.NoError(t, os.WriteFile(path, []byte(record), 0o600))
	return path
}

func TestGenerateAndInspect(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dossier.pdf")
	var stdout bytes.Buffer

	err := run(context.Background(), []string{"generate", "periscolaire", writeRecord(t), "-o", out, "--interactive", "--log-level", "error"}, &stdout)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Created "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	// The output is not replaced without --overwrite.
	err = run(context.Background(), []string{"generate", "periscolaire", "-o", out, "--log-level", "error"}, &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	err = run(context.Background(), []string{"generate", "periscolaire", "-o", out, "--overwrite", "--log-level", "error"}, &stdout)
	require.NoError(t, err)

	stdout.Reset()
	require.NoError(t, run(context.Background(), []string{"inspect", out}, &stdout))
	assert.Contains(t, stdout.String(), "Pages:")
	assert.Contains(t, stdout.String(), "Fields: 0")
}

func TestStampCommand(t *testing.T) {
	dir := t.TempDir()
	official := filepath.Join(dir, "attestation.pdf")
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	require.NoError(t, pdf.OutputFileAndClose(official))

	out := filepath.Join(dir, "rempli.pdf")
	var stdout bytes.Buffer
	err := run(context.Background(), []string{"stamp", "attestation_periscolaire", official, writeRecord(t), "-o", out, "--log-level", "error"}, &stdout)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Stamped")

	stdout.Reset()
	require.NoError(t, run(context.Background(), []string{"inspect", "--text", out}, &stdout))
	assert.Contains(t, stdout.String(), "Remplissage (Page 1)")
	assert.Contains(t, stdout.String(), "Emma Martin")
}

func TestTemplatesCommand(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"templates"}, &stdout))
	for _, name := range []string{"periscolaire", "fiche_sanitaire", "inscription", "fiche_sanitaire_cerfa", "attestation_periscolaire"} {
		assert.Contains(t, stdout.String(), name)
	}
}

func TestRunErrors(t *testing.T) {
	var stdout bytes.Buffer
	assert.Error(t, run(context.Background(), nil, &stdout))
	assert.Error(t, run(context.Background(), []string{"print"}, &stdout))
	assert.Error(t, run(context.Background(), []string{"generate"}, &stdout))
	assert.Error(t, run(context.Background(), []string{"generate", "bulletin", "-o", filepath.Join(t.TempDir(), "x.pdf")}, &stdout))
	assert.Error(t, run(context.Background(), []string{"stamp", "attestation_periscolaire"}, &stdout))
	assert.Error(t, run(context.Background(), []string{"generate", "periscolaire", "--log-level", "loud"}, &stdout))
}
