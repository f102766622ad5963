package embedded

import (
	"embed"
	"io/fs"
)

//go:embed data/skills
var skillsFS embed.FS

// DefaultReviewPreferencesTxt is the reviewer instruction block used when a
// request carries no preference text of its own.
//
//go:embed data/preferences/default_review_preferences.txt
var DefaultReviewPreferencesTxt []byte

// SkillsRoot is the directory inside SkillsFS that holds one folder per skill.
const SkillsRoot = "data/skills"

// SkillsFS returns the embedded skill documents rooted at the skills directory.
func SkillsFS() fs.FS {
	sub, err := fs.Sub(skillsFS, SkillsRoot)
	if err != nil {
		// fs.Sub only fails on an invalid path, and SkillsRoot is a constant.
		panic(err)
	}
	return sub
}
