package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/pathwise/internal/projects"
	"github.com/abhisek/pathwise/internal/roadmap"
)

type createProjectRequest struct {
	Session   string `json:"session" binding:"required"`
	NodeID    string `json:"nodeId" binding:"required"`
	IdeaIndex int    `json:"ideaIndex" binding:"gte=0"`
}

func (h *handler) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	nodes, err := h.roadmaps.Load(ctx, req.Session)
	if err != nil {
		respondError(c, err)
		return
	}
	node, _ := roadmap.Find(nodes, req.NodeID)
	if node == nil {
		respondError(c, fmt.Errorf("%w: %q", roadmap.ErrNodeNotFound, req.NodeID))
		return
	}

	p, err := h.projects.CreateDraft(ctx, *node, req.IdeaIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handler) listProjects(c *gin.Context) {
	all, err := h.projects.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if status := c.Query("status"); status != "" {
		filtered := all[:0]
		for _, p := range all {
			if string(p.Status) == status {
				filtered = append(filtered, p)
			}
		}
		all = filtered
	}
	if all == nil {
		all = []projects.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": all})
}

func (h *handler) getProject(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) updateProject(c *gin.Context) {
	var patch projects.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, err)
		return
	}
	p, err := h.projects.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) deleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) activateProject(c *gin.Context) {
	p, err := h.projects.MarkActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) completeProject(c *gin.Context) {
	p, err := h.projects.MarkCompleted(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
