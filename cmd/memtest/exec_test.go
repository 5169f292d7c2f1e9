package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		wantContain    []string
		wantNotContain []string
		wantErrContain []string
	}{
		{
			name:        "single quoted argument",
			args:        []string{"exec", "mtr 4096; mtn 10 -a 3; mtd -r 2 -a; mtp"},
			wantContain: []string{"Object list --- (0)", "Array list --- (8)", "x3"},
		},
		{
			name:        "separate arguments after --",
			args:        []string{"exec", "--", "mtn", "3", "-a", "2", ";", "mtp"},
			wantContain: []string{"Array list --- (3)"},
		},
		{
			name:           "failed command",
			args:           []string{"exec", "mtn 0; mtn 2; mtp"},
			wantErr:        true,
			wantContain:    []string{"Object list --- (2)"},
			wantErrContain: []string{"Error: Illegal option!! (0)", "1 command(s) failed"},
		},
		{
			name:           "huge array keeps the process alive",
			args:           []string{"exec", "mtn 1 -a 4398046511104; mtn 2; mtp"},
			wantErr:        true,
			wantContain:    []string{"Object list --- (2)", "Array list --- (0)"},
			wantErrContain: []string{"pool: out of memory", "1 command(s) failed"},
		},
		{
			name:           "byte ceiling from flag",
			args:           []string{"exec", "--block-size", "4KiB", "--max-bytes", "8KiB", "mtn 300; mtp"},
			wantErr:        true,
			wantContain:    []string{"Object list --- (256)"},
			wantErrContain: []string{"completed 256 of 300"},
		},
		{
			name:    "ceiling below block size",
			args:    []string{"exec", "--max-bytes", "1KiB", "mtp"},
			wantErr: true,
		},
		{
			name:           "unknown command",
			args:           []string{"exec", "mtx"},
			wantErr:        true,
			wantErrContain: []string{"unknown command"},
		},
		{
			name:           "quit",
			args:           []string{"exec", "mtn 1; quit; mtn 5; mtp"},
			wantNotContain: []string{"Object list"},
		},
		{
			name:        "help",
			args:        []string{"exec", "help"},
			wantContain: []string{"MTNew:", "Quit:"},
		},
		{
			name:    "no commands",
			args:    []string{"exec"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("exec error = %v, wantErr %v\nstderr: %s", err, tt.wantErr, stderr)
			}
			assertContains(t, stdout, tt.wantContain)
			assertNotContains(t, stdout, tt.wantNotContain)
			assertContains(t, stderr, tt.wantErrContain)
		})
	}
}

func TestExecCommand_SeedIsReproducible(t *testing.T) {
	args := []string{"exec", "--seed", "7", "mtn 40; mtd -r 25; mtp"}
	first, _, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, _, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first != second {
		t.Errorf("outputs differ with the same seed:\n%s\n---\n%s", first, second)
	}
	assertContains(t, first, []string{"Object list --- (15)"})
}

func TestExecCommand_LogsFailures(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "memtest.log")
	_, _, err := runCLI(t, "", "exec", "--log-file", logPath, "mtn 0; mtp")
	require.Error(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "memtest command failed")
	assert.Contains(t, string(data), `line="mtn 0"`)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	assertContains(t, stdout, []string{"memtest dev", "commit: none"})
}
