package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/reelmate-api/internal/prompt"
	"github.com/gin-gonic/gin"
)

// AgentInfo describes the gateway serving generation requests
type AgentInfo struct {
	Provider  string
	Model     string
	HasAPIKey bool
}

type HealthHandler struct {
	agent  AgentInfo
	skills *prompt.SkillBundle
}

func NewHealthHandler(agent AgentInfo, skills *prompt.SkillBundle) *HealthHandler {
	if skills == nil {
		skills = &prompt.SkillBundle{}
	}
	return &HealthHandler{agent: agent, skills: skills}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"provider":     h.agent.Provider,
		"model":        h.agent.Model,
		"skillsLoaded": len(h.skills.Skills),
		"hasApiKey":    h.agent.HasAPIKey,
	})
}

type skillSummary struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

// ListSkills returns each loaded skill with its file paths
func (h *HealthHandler) ListSkills(c *gin.Context) {
	skills := make([]skillSummary, 0, len(h.skills.Skills))
	for _, skill := range h.skills.Skills {
		files := make([]string, 0, len(skill.Files))
		for _, f := range skill.Files {
			files = append(files, f.Path)
		}
		skills = append(skills, skillSummary{Name: skill.Name, Files: files})
	}
	c.JSON(http.StatusOK, gin.H{"skills": skills})
}
