package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/pathwise/internal/prompt"
	"github.com/abhisek/pathwise/internal/roadmap"
)

var errNoGenerator = errors.New("roadmap generation is not configured")

type roadmapResponse struct {
	Session  string           `json:"session"`
	Nodes    []roadmap.Node   `json:"nodes"`
	Progress roadmap.Progress `json:"progress"`

	// Order lists node ids so that dependencies come first.
	Order    []string `json:"order"`
	Warnings []string `json:"warnings,omitempty"`
}

func newRoadmapResponse(session string, nodes []roadmap.Node) roadmapResponse {
	g := roadmap.NewGraph(nodes)
	return roadmapResponse{
		Session:  session,
		Nodes:    nodes,
		Progress: roadmap.ComputeProgress(nodes),
		Order:    g.Order(),
		Warnings: g.Warnings(),
	}
}

// generateRoadmap replaces the session's roadmap with a freshly generated
// one. The stored roadmap is untouched when generation fails.
func (h *handler) generateRoadmap(c *gin.Context) {
	if h.gen == nil {
		_ = c.Error(errNoGenerator)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorEnvelope{Error: apiError{
			Message: errNoGenerator.Error(),
			Code:    "unavailable",
		}})
		return
	}

	var params prompt.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		respondBadRequest(c, err)
		return
	}

	session := c.Param("session")
	nodes, err := h.gen.Generate(c.Request.Context(), params)
	if err != nil {
		h.log.Info("roadmap generation failed", zap.String("session", session), zap.Error(err))
		respondError(c, err)
		return
	}

	if err := h.roadmaps.Save(c.Request.Context(), session, nodes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRoadmapResponse(session, nodes))
}

func (h *handler) getRoadmap(c *gin.Context) {
	session := c.Param("session")
	nodes, err := h.roadmaps.Load(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRoadmapResponse(session, nodes))
}

func (h *handler) deleteRoadmap(c *gin.Context) {
	if err := h.roadmaps.Delete(c.Request.Context(), c.Param("session")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getProgress(c *gin.Context) {
	nodes, err := h.roadmaps.Load(c.Request.Context(), c.Param("session"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roadmap.ComputeProgress(nodes))
}

type completedRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (h *handler) setCompleted(c *gin.Context) {
	var req completedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	session := c.Param("session")
	nodes, err := h.roadmaps.SetCompleted(c.Request.Context(), session, c.Param("node"), *req.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRoadmapResponse(session, nodes))
}
