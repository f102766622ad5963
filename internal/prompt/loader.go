package prompt

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Conceptual-Machines/reelmate-api/pkg/embedded"
)

// MaxSkillFileChars caps every skill file included in a prompt
const MaxSkillFileChars = 12000

const truncatedSuffix = "\n...[truncated]"

// SkillFile is one document of a skill, addressed relative to the skill directory
type SkillFile struct {
	Path    string `json:"path"`
	Content string `json:"-"`
}

// Skill is a named bundle of guidance documents
type Skill struct {
	Name  string      `json:"name"`
	Files []SkillFile `json:"files"`
}

// SkillBundle is the loaded set of skills plus their serialized prompt context
type SkillBundle struct {
	Skills  []Skill
	Context string
}

// Names returns the skill names in load order
func (b *SkillBundle) Names() []string {
	names := make([]string, 0, len(b.Skills))
	for _, s := range b.Skills {
		names = append(names, s.Name)
	}
	return names
}

// Loader reads skill documents from a filesystem laid out as <skill>/SKILL.md,
// <skill>/agents/openai.yaml and <skill>/references/*.md
type Loader struct {
	fsys fs.FS
}

// NewPromptLoader creates a loader over the embedded skill documents
func NewPromptLoader() *Loader {
	return &Loader{fsys: embedded.SkillsFS()}
}

// NewLoaderFS creates a loader over an arbitrary filesystem
func NewLoaderFS(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// LoadSkills loads every skill directory, sorted by name. Directories without
// a SKILL.md are skipped.
func (l *Loader) LoadSkills() (*SkillBundle, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read skills directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	bundle := &SkillBundle{}
	for _, name := range names {
		skill, ok := l.loadSkill(name)
		if ok {
			bundle.Skills = append(bundle.Skills, skill)
		}
	}
	bundle.Context = serializeSkills(bundle.Skills)
	return bundle, nil
}

func (l *Loader) loadSkill(name string) (Skill, bool) {
	main, ok := l.readFile(path.Join(name, "SKILL.md"))
	if !ok {
		return Skill{}, false
	}
	skill := Skill{Name: name, Files: []SkillFile{{Path: "SKILL.md", Content: main}}}

	if agentConfig, ok := l.readFile(path.Join(name, "agents", "openai.yaml")); ok {
		skill.Files = append(skill.Files, SkillFile{Path: "agents/openai.yaml", Content: agentConfig})
	}

	// References are optional
	refs, err := fs.ReadDir(l.fsys, path.Join(name, "references"))
	if err != nil {
		return skill, true
	}
	for _, ref := range refs {
		if ref.IsDir() || !strings.HasSuffix(ref.Name(), ".md") {
			continue
		}
		if content, ok := l.readFile(path.Join(name, "references", ref.Name())); ok {
			skill.Files = append(skill.Files, SkillFile{Path: "references/" + ref.Name(), Content: content})
		}
	}
	return skill, true
}

func (l *Loader) readFile(name string) (string, bool) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return clampContent(string(data)), true
}

func clampContent(content string) string {
	if utf8.RuneCountInString(content) <= MaxSkillFileChars {
		return content
	}
	return string([]rune(content)[:MaxSkillFileChars]) + truncatedSuffix
}

func serializeSkills(skills []Skill) string {
	sections := make([]string, 0, len(skills))
	for _, skill := range skills {
		blocks := make([]string, 0, len(skill.Files))
		for _, file := range skill.Files {
			blocks = append(blocks, fmt.Sprintf("FILE: %s/%s\n%s", skill.Name, file.Path, file.Content))
		}
		sections = append(sections, fmt.Sprintf("=== SKILL: %s ===\n%s", skill.Name, strings.Join(blocks, "\n\n")))
	}
	return strings.Join(sections, "\n\n")
}

// DefaultPreferences returns the reviewer instruction block used for generic requests
func DefaultPreferences() string {
	return strings.TrimSpace(string(embedded.DefaultReviewPreferencesTxt))
}
