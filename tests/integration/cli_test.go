// End-to-end tests for the querybench binary.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestMain builds the querybench binary once before running tests.
func TestMain(m *testing.M) {
	// Find project root by looking for go.mod
	projectRoot, err := FindProjectRoot()
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}

	// Build querybench binary into a temp directory
	tmpDir, err := os.MkdirTemp("", "querybench-test-*")
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}
	binPath := filepath.Join(tmpDir, "querybench")
	SetQuerybenchBin(binPath)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/querybench")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		SetBuildErr(&BuildError{
			Err:    err,
			Output: string(output),
		})
		os.Exit(1)
	}

	code := m.Run()

	// Cleanup binary
	os.RemoveAll(tmpDir)

	os.Exit(code)
}

// Test1_Initialize verifies init creates the store file.
func Test1_Initialize(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRunQuerybench("init")
	if result.Stdout == "" {
		t.Error("expected init output message")
	}

	if _, err := os.Stat(filepath.Join(env.DataDir, "querybench.db")); os.IsNotExist(err) {
		t.Error("querybench.db not created")
	}
}

// Test2_LoadAndFilter loads users and activities, then runs the
// generated filter query.
func Test2_LoadAndFilter(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunQuerybench("init")

	users := env.WriteFile("users.csv", "user_id,username,email\n1,alice,a@x.com\n")
	activities := env.WriteFile("activities.csv", "activity_id,user_id,game,score,date\n1,1,chess,10,2024-01-01\n")
	env.MustRunQuerybench("load", "users", users)
	env.MustRunQuerybench("load", "activities", activities)

	text := env.MustRunQuerybench("build", "--user", "alice", "--game", "chess").Stdout
	result := ParseJSON[Result](t, env.MustRunQuerybench("--json", "exec", text).Stdout)

	if strings.Join(result.Columns, ",") != "username,game,score,date" {
		t.Errorf("unexpected columns %v", result.Columns)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row[0] != "alice" || row[1] != "chess" || row[2] != float64(10) || row[3] != "2024-01-01" {
		t.Errorf("unexpected row %v", row)
	}
}

// Test3_AddThenAverage adds a user and an activity and averages the score.
func Test3_AddThenAverage(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunQuerybench("init")

	env.MustRunQuerybench("add", "user", "bob", "b@x.com")
	env.MustRunQuerybench("add", "activity", "bob", "chess", "20", "2024-02-02")

	result := ParseJSON[Result](t, env.MustRunQuerybench("--json", "run", "--avg", "--user", "bob", "--game", "chess").Stdout)
	if len(result.Rows) != 1 || result.Rows[0][0] != float64(20) {
		t.Errorf("expected average 20, got %v", result.Rows)
	}
}

// Test4_ExitCodes verifies user errors exit 1.
func Test4_ExitCodes(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunQuerybench("init")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown user", []string{"add", "activity", "ghost", "chess", "1", "2024-01-01"}},
		{"bad sql", []string{"exec", "SELEC 1"}},
		{"average without game", []string{"build", "--avg", "--user", "bob"}},
		{"unknown table", []string{"columns", "Ghosts"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.RunQuerybench(tt.args...)
			if result.ExitCode != 1 {
				t.Errorf("expected exit code 1, got %d (stderr: %s)", result.ExitCode, result.Stderr)
			}
			if result.Stderr == "" {
				t.Error("expected an error message on stderr")
			}
		})
	}
}

// Test5_ExportJSONL writes a result set to a JSONL file.
func Test5_ExportJSONL(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunQuerybench("init")
	env.MustRunQuerybench("add", "user", "alice", "a@x.com")
	env.MustRunQuerybench("add", "user", "bob", "b@x.com")

	out := filepath.Join(env.TempDir, "users.jsonl")
	env.MustRunQuerybench("exec", "SELECT username FROM Users ORDER BY user_id", "--out", out)

	rows := ReadJSONLFile[map[string]string](t, out)
	if len(rows) != 2 || rows[0]["username"] != "alice" || rows[1]["username"] != "bob" {
		t.Errorf("unexpected export %v", rows)
	}
}

// Test6_Shell drives a shell session over stdin.
func Test6_Shell(t *testing.T) {
	env := NewTestEnv(t)

	cmd := exec.Command(querybenchBin, "--config-dir", env.Config, "shell")
	cmd.Stdin = strings.NewReader(".adduser alice a@x.com\n.tables\n.quit\n")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("shell failed: %v\n%s", err, output)
	}
	if !strings.Contains(string(output), "User alice added successfully!") {
		t.Errorf("unexpected shell output:\n%s", output)
	}
	if !strings.Contains(string(output), "Activities") {
		t.Errorf("expected .tables output:\n%s", output)
	}
}
