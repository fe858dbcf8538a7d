package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/querybench/internal/query"
	"github.com/mesh-intelligence/querybench/pkg/types"
)

// testEnv is an isolated config and data directory pair.
type testEnv struct {
	t         *testing.T
	dir       string
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		dir:       dir,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

// run executes the CLI in-process with stdin and returns stdout.
func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, "querybench %v", args)
	return out
}

func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// seeded initializes a file store holding two users and three activities.
func (e *testEnv) seeded() {
	e.t.Helper()
	users := e.writeFile("users.csv", "user_id,username,email\n1,alice,a@x.com\n2,bob,b@x.com\n")
	activities := e.writeFile("activities.jsonl", strings.Join([]string{
		`{"user_id": 1, "game": "chess", "score": 10, "date": "2024-01-01"}`,
		`{"user_id": 1, "game": "chess", "score": 20, "date": "2024-01-05"}`,
		`{"user_id": 2, "game": "go", "score": 5, "date": "2024-01-03"}`,
	}, "\n")+"\n")

	e.mustRun("init")
	e.mustRun("load", "users", users)
	e.mustRun("load", "activities", activities)
}

type jsonResult struct {
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	RowsAffected int64    `json:"rows_affected"`
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assert.Contains(t, out, "querybench v")
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("init")
	assert.Contains(t, out, "querybench initialized")
	assert.FileExists(t, filepath.Join(env.configDir, configFileExt))
	assert.FileExists(t, filepath.Join(env.dataDir, types.DatabaseFileName))

	data, err := os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")

	// Idempotent.
	env.mustRun("init")
}

func TestInit_SeedsNewStoreOnce(t *testing.T) {
	env := newTestEnv(t)
	users := env.writeFile("users.yaml", "- username: alice\n  email: a@x.com\n")
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	env.writeFile("config/config.yaml", "backend: sqlite\nseed:\n  users: "+users+"\n")

	env.mustRun("init")
	env.mustRun("init")

	res := parseJSON[jsonResult](t, env.mustRun("--json", "exec", "SELECT COUNT(*) AS n FROM Users"))
	assert.Equal(t, [][]any{{float64(1)}}, res.Rows)
}

func TestMemoryStoreFromConfig(t *testing.T) {
	env := newTestEnv(t)
	users := env.writeFile("users.csv", "username,email\nalice,a@x.com\nbob,b@x.com\n")
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	env.writeFile("config/config.yaml", "backend: sqlite\nmemory: true\nseed:\n  users: "+users+"\n")

	res := parseJSON[jsonResult](t, env.mustRun("--json", "exec", "SELECT COUNT(*) AS n FROM Users"))
	assert.Equal(t, [][]any{{float64(2)}}, res.Rows)
	assert.NoFileExists(t, filepath.Join(env.dataDir, types.DatabaseFileName))
}

func TestTablesAndColumns(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	schema := parseJSON[[]types.TableInfo](t, env.mustRun("--json", "tables"))
	require.Len(t, schema, 2)
	assert.Equal(t, "Users", schema[0].Name)
	assert.Equal(t, []string{"user_id", "username", "email"}, schema[0].Columns)
	assert.Equal(t, "Activities", schema[1].Name)

	out := env.mustRun("columns", "Activities")
	assert.Equal(t, "activity_id\nuser_id\ngame\nscore\ndate\n", out)

	_, err := env.run("", "columns", "Ghosts")
	require.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestBuild(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("build", "--user", "alice")
	assert.Equal(t, query.BuildFilterQuery("alice", "")+"\n", out)

	out = env.mustRun("build", "--avg", "--user", "alice", "--game", "chess")
	want, err := query.BuildAverageQuery("alice", "chess")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	_, err = env.run("", "build", "--avg", "--user", "alice")
	require.ErrorIs(t, err, types.ErrValidation)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestHighlight(t *testing.T) {
	env := newTestEnv(t)

	spans := parseJSON[[]types.Span](t, env.mustRun("--json", "highlight", "SELECT AVG(x) FROM t"))
	assert.Equal(t, []types.Span{
		{Start: 0, End: 6, Class: types.ClassKeyword},
		{Start: 7, End: 10, Class: types.ClassFunction},
		{Start: 14, End: 18, Class: types.ClassKeyword},
	}, spans)

	out, err := env.run("select 1\n", "highlight", "-")
	require.NoError(t, err)
	assert.Equal(t, "select 1\n", out, "no colour when stdout is not a terminal")
}

func TestLoadExecRunWorkflow(t *testing.T) {
	env := newTestEnv(t)
	env.seeded()

	res := parseJSON[jsonResult](t, env.mustRun("--json", "exec", query.BuildFilterQuery("alice", "chess")))
	assert.Equal(t, []string{"username", "game", "score", "date"}, res.Columns)
	assert.Len(t, res.Rows, 2)

	res = parseJSON[jsonResult](t, env.mustRun("--json", "run", "--avg", "--user", "alice", "--game", "chess"))
	assert.Equal(t, [][]any{{15.0}}, res.Rows)

	out := env.mustRun("add", "user", "carol", "c@x.com")
	assert.Contains(t, out, "User carol added successfully! (user_id 3)")
	out = env.mustRun("add", "activity", "carol", "go", "7", "2024-03-01")
	assert.Contains(t, out, "Activity for carol in go added successfully!")

	res = parseJSON[jsonResult](t, env.mustRun("--json", "run", "--game", "go"))
	assert.Len(t, res.Rows, 2)

	out = env.mustRun("exec", "UPDATE Activities SET score = score + 1 WHERE game = 'go'")
	assert.Equal(t, "OK, 2 rows affected\n", out)
}

func TestRun_BoundValuesCannotWidenQuery(t *testing.T) {
	env := newTestEnv(t)
	env.seeded()

	res := parseJSON[jsonResult](t, env.mustRun("--json", "run", "--user", "x' OR '1'='1"))
	assert.Empty(t, res.Rows)
}

func TestExec_TableOutput(t *testing.T) {
	env := newTestEnv(t)
	env.seeded()

	out := env.mustRun("exec", "SELECT username FROM Users ORDER BY user_id")
	assert.Contains(t, out, "username")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
	assert.True(t, strings.HasSuffix(out, "2 rows\n"), out)
}

func TestExec_FromFileAndExport(t *testing.T) {
	env := newTestEnv(t)
	env.seeded()

	sqlFile := env.writeFile("q.sql", "-- users\nSELECT username, email FROM Users ORDER BY user_id;\n")
	outFile := filepath.Join(env.dir, "users.csv.out")

	_, err := env.run("", "exec", "-f", sqlFile, "--out", outFile, "--out-format", "csv")
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "username,email\nalice,a@x.com\nbob,b@x.com\n", string(data))
}

func TestExec_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	_, err := env.run("", "exec", "SELEC nothing")
	require.ErrorIs(t, err, types.ErrQueryExecution)
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = env.run("", "exec", "-f", "q.sql", "SELECT 1")
	require.ErrorIs(t, err, types.ErrValidation)

	_, err = env.run("", "exec", "SELECT 1", "--out", filepath.Join(env.dir, "x.yaml"))
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestAdd_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	_, err := env.run("", "add", "activity", "ghost", "chess", "10", "2024-01-01")
	require.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = env.run("", "add", "user", "", "a@x.com")
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestLoad_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	path := env.writeFile("users.csv", "username,email\nalice,a@x.com\nbob,\n")
	out, err := env.run("", "load", "users", path)
	require.ErrorIs(t, err, types.ErrSourceFormat)
	assert.Contains(t, out, "Loaded 1 users")

	_, err = env.run("", "load", "games", path)
	require.ErrorIs(t, err, types.ErrValidation)

	_, err = env.run("", "load", "users", path, "--format", "parquet")
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestShell(t *testing.T) {
	env := newTestEnv(t)

	script := strings.Join([]string{
		".adduser alice a@x.com",
		".addactivity alice chess 10 2024-01-01",
		".addactivity ghost chess 10 2024-01-01",
		".avg alice chess",
		".run",
		"SELECT COUNT(*) AS n",
		"FROM Users;",
		"SELECT nope FROM Users;",
		".columns Users",
		".bogus",
		".quit",
		"SELECT 'never reached';",
	}, "\n") + "\n"

	out, err := env.run(script, "shell")
	require.NoError(t, err)

	assert.Contains(t, out, "User alice added successfully! (user_id 1)")
	assert.Contains(t, out, "Activity for alice in chess added successfully! (activity_id 1)")
	assert.Contains(t, out, "Error: not found: user ghost does not exist")
	assert.Contains(t, out, "AVG(Activities.score)")
	assert.Contains(t, out, shellContinue)
	assert.Contains(t, out, "Error: query execution error")
	assert.Contains(t, out, "user_id\nusername\nemail\n")
	assert.Contains(t, out, "unknown command .bogus")
	assert.NotContains(t, out, "never reached")

	assert.NoFileExists(t, filepath.Join(env.dataDir, types.DatabaseFileName), "shell store is in memory")
}

func TestShell_RunBeforeBuild(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(".run\n", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing built yet")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitSuccess},
		{fmt.Errorf("%w: bad", types.ErrValidation), exitUserError},
		{fmt.Errorf("%w: bad", types.ErrQueryExecution), exitUserError},
		{fmt.Errorf("attach store: %w", types.ErrStore), exitSysError},
		{types.ErrStoreDetached, exitSysError},
		{fmt.Errorf("%w: read config", errConfig), exitSysError},
		{errors.New("unknown flag"), exitUserError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}

func TestLogLevelFromConfig(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	env.writeFile("config/config.yaml", "backend: sqlite\nlog_level: chatty\n")

	_, err := env.run("", "build")
	require.ErrorIs(t, err, errConfig)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestWriteConfigIfMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")
	path := filepath.Join(dir, configFileExt)

	created, err := writeConfigIfMissing(path, "/srv/qb")
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# querybench configuration"))
	assert.NotContains(t, string(data), "seed:")

	v, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLite, v.GetString(cfgKeyBackend))
	assert.Equal(t, "/srv/qb", v.GetString(cfgKeyDataDir))
	assert.Equal(t, defaultLogLevel, v.GetString(cfgKeyLogLevel))
	assert.False(t, v.GetBool(cfgKeyMemory))
	assert.False(t, v.GetBool(cfgKeyStrictTypes))

	require.NoError(t, os.WriteFile(path, []byte("backend: sqlite\nlog_level: debug\n"), 0o644))
	created, err = writeConfigIfMissing(path, "/elsewhere")
	require.NoError(t, err)
	assert.False(t, created)

	v, err = loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", v.GetString(cfgKeyLogLevel))
	assert.Empty(t, v.GetString(cfgKeyDataDir))
}
