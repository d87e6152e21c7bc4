package healthguard

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags puts every flag back to its default; cobra keeps parsed values
// on the package-level vars between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("HEALTHGUARD_STORE_BACKEND", "")
	return filepath.Join(t.TempDir(), "healthguard.db")
}

func createProfile(t *testing.T, db string) {
	t.Helper()
	out := mustRun(t, "--db", db, "profile", "create",
		"--name", "Sari", "--age", "30", "--weight", "60", "--height", "165",
		"--gender", "female", "--language", "en")
	if !strings.Contains(out, "Created profile for Sari") {
		t.Fatalf("unexpected create output: %s", out)
	}
}

func TestRootHelp(t *testing.T) {
	out := mustRun(t, "--help")
	if !strings.Contains(out, "healthguard") {
		t.Fatalf("expected help output, got %q", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	path := isolate(t)
	for i := 0; i < 2; i++ {
		out := mustRun(t, "--db", path, "init")
		if !strings.Contains(out, path) {
			t.Fatalf("init run %d: unexpected output %q", i+1, out)
		}
	}
}

func TestProfileCommands(t *testing.T) {
	db := isolate(t)
	createProfile(t, db)

	if _, err := run(t, "--db", db, "profile", "create", "--name", "Other"); err == nil {
		t.Fatalf("expected second create without --force to fail")
	}
	mustRun(t, "--db", db, "profile", "set", "goal", "Lose weight", "sleepGoal", "7.5")
	mustRun(t, "--db", db, "profile", "hydrate", "--ml", "750")
	mustRun(t, "--db", db, "profile", "allergy", "add", "peanut")

	out := mustRun(t, "--db", db, "profile", "show")
	for _, want := range []string{"Name: Sari", "Hydration: 750 /", "Allergies: peanut", "Sleep: 0.0 / 7.5 h"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in profile output:\n%s", want, out)
		}
	}

	if _, err := run(t, "--db", db, "profile", "set", "weight"); err == nil {
		t.Fatalf("expected odd field/value pairs to fail")
	}
}

func TestProfileUpdateWithoutProfileFails(t *testing.T) {
	db := isolate(t)
	if _, err := run(t, "--db", db, "profile", "hydrate", "--ml", "250"); err == nil {
		t.Fatalf("expected update without a profile to fail")
	}
}

func TestHistoryCommands(t *testing.T) {
	db := isolate(t)
	mustRun(t, "--db", db, "history", "add", "--name", "Nasi Goreng", "--calories", "520", "--protein", "14")
	mustRun(t, "--db", db, "history", "add", "--name", "Es Teh", "--calories", "90")

	out := mustRun(t, "--db", db, "history", "list", "--json")
	var records []struct {
		Name      string `json:"name"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(records) != 2 || records[0].Name != "Es Teh" {
		t.Fatalf("expected newest first, got %+v", records)
	}

	out = mustRun(t, "--db", db, "history", "list", "--query", "nasi")
	if !strings.Contains(out, "Nasi Goreng") || strings.Contains(out, "Es Teh") {
		t.Fatalf("unexpected filtered list:\n%s", out)
	}

	mustRun(t, "--db", db, "history", "delete", jsonInt(records[0].Timestamp))
	if _, err := run(t, "--db", db, "history", "clear"); err == nil {
		t.Fatalf("expected clear without --yes to fail")
	}
	mustRun(t, "--db", db, "history", "clear", "--yes")
	out = mustRun(t, "--db", db, "history", "list", "--json")
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected empty history, got %s", out)
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestChatCommands(t *testing.T) {
	db := isolate(t)
	createProfile(t, db)

	out := mustRun(t, "--db", db, "chat", "send", "--reply", "Drink more water.", "I feel dizzy")
	if !strings.Contains(out, "Drink more water.") {
		t.Fatalf("unexpected send output: %s", out)
	}
	if _, err := run(t, "--db", db, "chat", "send", "hello again"); err == nil {
		t.Fatalf("expected send without an advisor to fail")
	}

	out = mustRun(t, "--db", db, "chat", "list", "--json")
	var sessions []struct {
		ID       string            `json:"id"`
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal([]byte(out), &sessions); err != nil {
		t.Fatalf("decode sessions: %v\n%s", err, out)
	}
	if len(sessions) != 1 || len(sessions[0].Messages) != 2 {
		t.Fatalf("unexpected sessions: %s", out)
	}

	out = mustRun(t, "--db", db, "chat", "show", sessions[0].ID)
	if !strings.Contains(out, "I feel dizzy") {
		t.Fatalf("expected transcript, got %s", out)
	}
	mustRun(t, "--db", db, "chat", "clear", "--yes")
	out = mustRun(t, "--db", db, "chat", "list", "--json")
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected no sessions, got %s", out)
	}
}

func TestSurveyAndToday(t *testing.T) {
	db := isolate(t)
	createProfile(t, db)
	mustRun(t, "--db", db, "history", "add", "--name", "Soto", "--calories", "400")

	out := mustRun(t, "--db", db, "survey", "questions", "--lang", "en")
	if !strings.Contains(out, "water (metabolic)") {
		t.Fatalf("unexpected questions output:\n%s", out)
	}

	out = mustRun(t, "--db", db, "survey", "submit", "--lang", "en",
		"water=3", "sleep=3", "immune=3", "stress=3", "activity=3",
		"veggies=3", "junk=3", "digestion=2", "screen=3", "energy=2")
	if !strings.Contains(out, "Bio-wellness index: 100") {
		t.Fatalf("unexpected survey output:\n%s", out)
	}
	if _, err := run(t, "--db", db, "survey", "submit", "water=9"); err == nil {
		t.Fatalf("expected out-of-range option to fail")
	}

	out = mustRun(t, "--db", db, "today")
	for _, want := range []string{"Calories: 400 /", "Hydration: 2500 /", "Sleep: 8.0 /", "Immunity: strong"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in today output:\n%s", want, out)
		}
	}
}

func TestDoctorHealthy(t *testing.T) {
	db := isolate(t)
	createProfile(t, db)
	out := mustRun(t, "--db", db, "doctor")
	if !strings.Contains(out, "Corrupt keys: 0") {
		t.Fatalf("unexpected doctor output:\n%s", out)
	}
}

func TestBackupAndRestoreCommands(t *testing.T) {
	db := isolate(t)
	createProfile(t, db)

	backup := filepath.Join(t.TempDir(), "snapshot.db")
	out := mustRun(t, "--db", db, "backup", "create", "--out", backup)
	if !strings.Contains(out, "Created backup: "+backup) {
		t.Fatalf("unexpected backup output: %s", out)
	}
	out = mustRun(t, "--db", db, "backup", "list", "--dir", filepath.Dir(backup))
	if !strings.Contains(out, "snapshot.db") {
		t.Fatalf("expected backup listed, got %s", out)
	}

	restored := filepath.Join(t.TempDir(), "restored.db")
	mustRun(t, "--db", restored, "backup", "restore", "--file", backup)
	out = mustRun(t, "--db", restored, "profile", "show")
	if !strings.Contains(out, "Name: Sari") {
		t.Fatalf("expected restored profile, got %s", out)
	}
}

func TestExportImportCommands(t *testing.T) {
	db := isolate(t)
	createProfile(t, db)
	mustRun(t, "--db", db, "history", "add", "--name", "Rendang", "--calories", "600")

	file := filepath.Join(t.TempDir(), "export.json")
	mustRun(t, "--db", db, "export", "--out", file)

	target := filepath.Join(t.TempDir(), "target.db")
	out := mustRun(t, "--db", target, "import", "--in", file, "--dry-run")
	if !strings.Contains(out, "food added=1") || !strings.Contains(out, "Dry-run") {
		t.Fatalf("unexpected dry-run output: %s", out)
	}
	out = mustRun(t, "--db", target, "history", "list", "--json")
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("dry run must not write, got %s", out)
	}

	mustRun(t, "--db", target, "import", "--in", file, "--mode", "replace")
	out = mustRun(t, "--db", target, "profile", "show")
	if !strings.Contains(out, "Name: Sari") {
		t.Fatalf("expected imported profile, got %s", out)
	}
	out = mustRun(t, "--db", target, "history", "list")
	if !strings.Contains(out, "Rendang") {
		t.Fatalf("expected imported history, got %s", out)
	}

	if _, err := run(t, "--db", target, "import", "--in", file, "--mode", "overwrite"); err == nil {
		t.Fatalf("expected unknown import mode to fail")
	}
}

func TestConfigShowMasksPassword(t *testing.T) {
	isolate(t)
	t.Setenv("HEALTHGUARD_REDIS_PASSWORD", "s3cret")
	out := mustRun(t, "config")
	if strings.Contains(out, "s3cret") || !strings.Contains(out, "store.backend=sqlite") {
		t.Fatalf("unexpected config output:\n%s", out)
	}
}
