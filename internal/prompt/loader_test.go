package prompt

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadSkills_Embedded(t *testing.T) {
	bundle, err := NewPromptLoader().LoadSkills()
	if err != nil {
		t.Fatalf("LoadSkills() returned error: %v", err)
	}

	names := bundle.Names()
	want := []string{"movie-review-writer", "movie-taste-binary-quiz", "movie-taste-profiler"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("LoadSkills() names = %v, want %v", names, want)
	}

	if !strings.Contains(bundle.Context, "=== SKILL: movie-taste-profiler ===") {
		t.Error("context does not contain skill header")
	}
	if !strings.Contains(bundle.Context, "FILE: movie-taste-profiler/references/taste-axes.md") {
		t.Error("context does not contain reference file block")
	}
	if !strings.Contains(bundle.Context, "FILE: movie-taste-binary-quiz/agents/openai.yaml") {
		t.Error("context does not contain agent config block")
	}
}

func TestLoadSkills_FileOrderAndFiltering(t *testing.T) {
	fsys := fstest.MapFS{
		"b-skill/SKILL.md":               {Data: []byte("b main")},
		"b-skill/references/notes.md":    {Data: []byte("b notes")},
		"b-skill/references/ignored.txt": {Data: []byte("not markdown")},
		"a-skill/SKILL.md":               {Data: []byte("a main")},
		"a-skill/agents/openai.yaml":     {Data: []byte("interface: {}")},
		"no-main/references/x.md":        {Data: []byte("orphan")},
		".hidden/SKILL.md":               {Data: []byte("hidden")},
	}

	bundle, err := NewLoaderFS(fsys).LoadSkills()
	if err != nil {
		t.Fatalf("LoadSkills() returned error: %v", err)
	}

	if got := strings.Join(bundle.Names(), ","); got != "a-skill,b-skill" {
		t.Fatalf("names = %q, want a-skill,b-skill", got)
	}

	expected := "=== SKILL: a-skill ===\nFILE: a-skill/SKILL.md\na main\n\nFILE: a-skill/agents/openai.yaml\ninterface: {}" +
		"\n\n=== SKILL: b-skill ===\nFILE: b-skill/SKILL.md\nb main\n\nFILE: b-skill/references/notes.md\nb notes"
	if bundle.Context != expected {
		t.Errorf("context mismatch:\n got: %q\nwant: %q", bundle.Context, expected)
	}
}

func TestClampContent(t *testing.T) {
	short := strings.Repeat("a", MaxSkillFileChars)
	if got := clampContent(short); got != short {
		t.Error("content at the limit should not be truncated")
	}

	long := strings.Repeat("b", MaxSkillFileChars+10)
	got := clampContent(long)
	if !strings.HasSuffix(got, "\n...[truncated]") {
		t.Error("long content should carry the truncation suffix")
	}
	if len(got) != MaxSkillFileChars+len("\n...[truncated]") {
		t.Errorf("clamped length = %d", len(got))
	}
}

func TestDefaultPreferences(t *testing.T) {
	prefs := DefaultPreferences()
	if !strings.HasPrefix(prefs, "Its Jan 3 2026.") {
		t.Errorf("default preferences start with %q", prefs[:20])
	}
	if !strings.Contains(prefs, "Always score the rating as well when you can.") {
		t.Error("default preferences missing rating instruction")
	}
	if strings.HasSuffix(prefs, "\n") {
		t.Error("default preferences should be trimmed")
	}
}
