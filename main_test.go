package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/danielhkuo/surveyview/auth"
	"github.com/danielhkuo/surveyview/db"
	"github.com/danielhkuo/surveyview/query"
	"github.com/danielhkuo/surveyview/testutil"
)

// runCommand executes the root command with args and returns stdout and stderr
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// resetFlag puts a flag back to its default once the test ends, since cobra
// keeps parsed values between executions
func resetFlag(t *testing.T, flags *pflag.FlagSet, name string) {
	t.Helper()
	t.Cleanup(func() {
		f := flags.Lookup(name)
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// commonFlags isolates a run from the developer's config.toml, .env and log file
func commonFlags(t *testing.T, dir string) []string {
	t.Helper()
	t.Setenv("SURVEYVIEW_CONFIG", "")

	writeFile(t, filepath.Join(dir, "config.toml"), "")
	writeFile(t, filepath.Join(dir, "test.env"), "")

	return []string{
		"-d", filepath.Join(dir, "survey.db"),
		"--checkpoint", filepath.Join(dir, "checkpoint.txt"),
		"--config", filepath.Join(dir, "config.toml"),
		"--env-file", filepath.Join(dir, "test.env"),
		"--log-file", "-",
		"--log-level", "error",
	}
}

func TestCommands_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "survey.db")
	common := commonFlags(t, dir)
	resetFlag(t, exportCmd.Flags(), "update")

	out, _, err := runCommand(t, append([]string{"init"}, common...)...)
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(out, "Schema ready (sqlite)") {
		t.Errorf("init output = %q", out)
	}

	store, err := db.Open(context.Background(), db.TypeSQLite, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	testutil.SeedScenario(t, store)
	store.Close()

	wantCSV := "user_id,survey_id,ans_q1,ans_q2,ans_q3\n10,1,4,-1,\n20,2,,5,1\n"

	out, _, err = runCommand(t, append([]string{"export"}, common...)...)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if out != wantCSV {
		t.Errorf("export output = %q, want %q", out, wantCSV)
	}

	out, _, err = runCommand(t, append([]string{"checkpoint"}, common...)...)
	if err != nil {
		t.Fatalf("checkpoint error = %v", err)
	}
	if !strings.Contains(out, "no checkpoint yet") {
		t.Errorf("checkpoint output before refresh = %q", out)
	}

	// stdout stays pure CSV when the view is reconciled during export
	out, errOut, err := runCommand(t, append([]string{"export", "--update"}, common...)...)
	if err != nil {
		t.Fatalf("export --update error = %v", err)
	}
	if out != wantCSV {
		t.Errorf("export --update stdout = %q, want %q", out, wantCSV)
	}
	if !strings.Contains(errOut, "vw_AllSurveyData: created first checkpoint") {
		t.Errorf("export --update stderr = %q", errOut)
	}

	out, errOut, err = runCommand(t, append([]string{"refresh"}, common...)...)
	if err != nil {
		t.Fatalf("refresh error = %v", err)
	}
	if !strings.Contains(errOut, "vw_AllSurveyData: no change") {
		t.Errorf("refresh stderr = %q", errOut)
	}
	if out != "" {
		t.Errorf("refresh stdout = %q, want empty", out)
	}

	out, _, err = runCommand(t, append([]string{"checkpoint"}, common...)...)
	if err != nil {
		t.Fatalf("checkpoint error = %v", err)
	}
	if !strings.HasPrefix(out, "vw_AllSurveyData: ") || strings.Contains(out, "no checkpoint yet") {
		t.Errorf("checkpoint output after refresh = %q", out)
	}

	out, _, err = runCommand(t, append([]string{"query", "SELECT survey_id FROM vw_AllSurveyData ORDER BY survey_id"}, common...)...)
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if out != "survey_id\n1\n2\n" {
		t.Errorf("query output = %q", out)
	}

	_, _, err = runCommand(t, append([]string{"query", "DELETE FROM answer"}, common...)...)
	if !errors.Is(err, query.ErrNonPermittedQuery) {
		t.Errorf("query error = %v, want ErrNonPermittedQuery", err)
	}
}

func TestAdminKeyCommand(t *testing.T) {
	common := commonFlags(t, t.TempDir())
	t.Setenv("ADMIN_KEY_SALT", "")
	t.Setenv("VIEW_NAME", "")
	resetFlag(t, rootCmd.PersistentFlags(), "admin-salt")

	_, _, err := runCommand(t, append([]string{"admin-key"}, common...)...)
	if !errors.Is(err, errNoAdminSalt) {
		t.Errorf("admin-key without salt error = %v, want errNoAdminSalt", err)
	}

	out, _, err := runCommand(t, append([]string{"admin-key", "--admin-salt", "s3cret"}, common...)...)
	if err != nil {
		t.Fatalf("admin-key error = %v", err)
	}

	key := strings.TrimSpace(out)
	if want := auth.GenerateAdminKey("vw_AllSurveyData", "s3cret"); key != want {
		t.Errorf("admin-key = %q, want %q", key, want)
	}
	if err := auth.ValidateAdminKey("vw_AllSurveyData", key, "s3cret"); err != nil {
		t.Errorf("printed key rejected by serve: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
