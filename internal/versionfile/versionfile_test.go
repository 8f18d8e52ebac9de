package versionfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megascrapper/freezepack/internal/model"
)

// sampleTemplate is a version.yml with every supported key populated.
const sampleTemplate = `Version: 2.5.1
CompanyName: Example Org
FileDescription: Visualizes binary files
InternalName: waterfall
LegalCopyright: Copyright (c) 2024 Example Org
OriginalFilename: waterfall.exe
ProductName: Binary Waterfall
Translation:
  - langID: 1033
    charsetID: 1200
`

// writeTemplate writes content as version.yml in a temp dir and
// returns its path.
func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "version.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestParseQuad covers the accepted version shapes and the rejects.
func TestParseQuad(t *testing.T) {
	tests := []struct {
		input    string
		expected Quad
		hasError bool
	}{
		{"2.5.1", Quad{2, 5, 1, 0}, false},
		{"2.5.1.7", Quad{2, 5, 1, 7}, false},
		{"1.2", Quad{1, 2, 0, 0}, false},
		{"3", Quad{3, 0, 0, 0}, false},
		{"1.2.3-rc1", Quad{1, 2, 3, 0}, false}, // pre-release suffix ignored
		{" 1.0.0 ", Quad{1, 0, 0, 0}, false},   // surrounding whitespace
		{"v1.2.3", Quad{}, true},
		{"one.two", Quad{}, true},
		{"", Quad{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := ParseQuad(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, q)
			}
		})
	}
}

// TestQuad_String verifies the dotted rendering used in the resource
// string table.
func TestQuad_String(t *testing.T) {
	assert.Equal(t, "2.5.1.0", Quad{2, 5, 1, 0}.String())
}

// TestLoadTemplate parses a full template and checks field mapping.
func TestLoadTemplate(t *testing.T) {
	path := writeTemplate(t, sampleTemplate)

	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)

	assert.Equal(t, "2.5.1", tmpl.Version)
	assert.Equal(t, "Binary Waterfall", tmpl.ProductName)
	assert.Equal(t, "waterfall", tmpl.InternalName)
	require.Len(t, tmpl.Translations, 1)
	assert.Equal(t, 1033, tmpl.Translations[0].LangID)
	assert.Equal(t, 1200, tmpl.Translations[0].CharsetID)

	quad, err := tmpl.Quad()
	require.NoError(t, err)
	assert.Equal(t, Quad{2, 5, 1, 0}, quad)
}

// TestLoadTemplate_Errors covers missing files, broken YAML, and
// templates without a usable version.
func TestLoadTemplate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
	}{
		{name: "missing file", missing: true},
		{name: "broken yaml", content: "Version: [unclosed"},
		{name: "no version", content: "ProductName: App"},
		{name: "bad version", content: "Version: one.two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			if tt.missing {
				path = filepath.Join(t.TempDir(), "version.yml")
			} else {
				path = writeTemplate(t, tt.content)
			}

			_, err := LoadTemplate(path)
			require.Error(t, err)

			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr))
			assert.Equal(t, model.ExitVersionGenError, cliErr.Code)
		})
	}
}

// TestGenerate_Native compiles the version resource in-process and
// checks that a non-empty resource file appears at the output path.
func TestGenerate_Native(t *testing.T) {
	templatePath := writeTemplate(t, sampleTemplate)
	outPath := filepath.Join(t.TempDir(), "file_version_info.txt")

	require.NoError(t, Generate(context.Background(), nil, templatePath, outPath))

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// TestGenerate_NativeBadTemplate verifies the fail-fast contract:
// generation fails, and no output file is created.
func TestGenerate_NativeBadTemplate(t *testing.T) {
	templatePath := writeTemplate(t, "ProductName: App")
	outPath := filepath.Join(t.TempDir(), "file_version_info.txt")

	err := Generate(context.Background(), nil, templatePath, outPath)
	require.Error(t, err)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}

// TestGenerate_ExternalCommand runs a stand-in generator script and
// checks argument passing and exit-code handling.
func TestGenerate_ExternalCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stand-in generator uses a shell script")
	}

	templatePath := writeTemplate(t, sampleTemplate)

	t.Run("success", func(t *testing.T) {
		dir := t.TempDir()
		outPath := filepath.Join(dir, "out.txt")

		// The stand-in copies its first argument to the --outfile value,
		// mimicking a real template-to-versionfile generator.
		script := filepath.Join(dir, "gen.sh")
		require.NoError(t, os.WriteFile(script,
			[]byte("#!/bin/sh\ncp \"$1\" \"$3\"\n"), 0o755))

		require.NoError(t, Generate(context.Background(), []string{script}, templatePath, outPath))

		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, sampleTemplate, string(data))
	})

	t.Run("non-zero exit aborts", func(t *testing.T) {
		dir := t.TempDir()
		outPath := filepath.Join(dir, "out.txt")

		script := filepath.Join(dir, "gen.sh")
		require.NoError(t, os.WriteFile(script,
			[]byte("#!/bin/sh\necho 'template rejected' >&2\nexit 3\n"), 0o755))

		err := Generate(context.Background(), []string{script}, templatePath, outPath)
		require.Error(t, err)

		var cliErr *model.CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, model.ExitVersionGenError, cliErr.Code)
		// The generator's stderr is folded into the diagnostic.
		assert.Contains(t, cliErr.Message, "template rejected")

		_, statErr := os.Stat(outPath)
		assert.True(t, os.IsNotExist(statErr))
	})
}
