package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/config"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/service"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/store"
)

type APIController interface {
	SubmitQuery(ctx *gin.Context)
	GetReport(ctx *gin.Context)
	GetRepositories(ctx *gin.Context)
	GetRateLimit(ctx *gin.Context)
	GetUserReport(ctx *gin.Context)
	GetPreferences(ctx *gin.Context)
	PutPreferences(ctx *gin.Context)
}

type apiController struct {
	config        config.Config
	viewer        *service.Viewer
	reportService service.ReportService
	githubService service.GithubService
	poller        *service.RateLimitPoller
	preferences   store.Store
}

func NewAPIController(
	config config.Config,
	viewer *service.Viewer,
	reportService service.ReportService,
	githubService service.GithubService,
	poller *service.RateLimitPoller,
	preferences store.Store,
) APIController {
	return apiController{
		config:        config,
		viewer:        viewer,
		reportService: reportService,
		githubService: githubService,
		poller:        poller,
		preferences:   preferences,
	}
}

type queryRequest struct {
	Username string `json:"username"`
}

type preferencesPayload struct {
	Theme string  `json:"theme,omitempty"`
	Token *string `json:"token,omitempty"`
}

// SubmitQuery starts a new viewer query. A new submission supersedes any
// in-flight one, the in-flight result will be dropped on arrival.
func (s apiController) SubmitQuery(c *gin.Context) {
	var request queryRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(model.ErrValidation))
		return
	}

	sequence, err := s.viewer.Submit(request.Username)

	if err != nil {
		c.JSON(model.HTTPStatusFor(err), model.NewAPIError(err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"sequence": sequence})
}

// GetReport returns the viewer state: loading, ready with the full report
// snapshot (also consumed by the PDF exporter), or the single current error
func (s apiController) GetReport(c *gin.Context) {
	c.JSON(http.StatusOK, s.viewer.Snapshot())
}

// GetRepositories serves the filtered and sorted view over the current
// collection, recomputed on every call from the query parameters
func (s apiController) GetRepositories(c *gin.Context) {
	var query model.ViewQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(model.ErrValidation))
		return
	}

	if !query.ValidSortKey() {
		c.JSON(http.StatusBadRequest, model.NewAPIError(model.ErrValidation))
		return
	}

	repositories, languages, err := s.viewer.FilteredView(query)

	if err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "NO_REPORT",
			"message": "no completed query to filter. submit a username first",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repositories": repositories,
		"languages":    languages,
	})
}

// GetRateLimit returns the poller's latest status, 204 while suppressed
func (s apiController) GetRateLimit(c *gin.Context) {
	status, ok := s.poller.Status()

	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetUserReport is the stateless one-shot variant: fetch, aggregate and
// answer in one request, independent of the viewer session
func (s apiController) GetUserReport(c *gin.Context) {
	report, err := s.reportService.BuildReport(c.Request.Context(), c.Param("login"))

	if err != nil {
		c.JSON(model.HTTPStatusFor(err), model.NewAPIError(err))
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetPreferences reads the persisted theme. The token is reported only as
// present or absent, it never leaves the store in clear.
func (s apiController) GetPreferences(c *gin.Context) {
	theme, _ := s.preferences.Get(store.KeyTheme)
	_, hasToken := s.preferences.Get(store.KeyToken)

	c.JSON(http.StatusOK, gin.H{
		"theme":    theme,
		"hasToken": hasToken,
	})
}

// PutPreferences persists theme and credential changes. A credential change
// reconfigures the fetcher and triggers an immediate rate limit poll.
func (s apiController) PutPreferences(c *gin.Context) {
	var payload preferencesPayload

	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(model.ErrValidation))
		return
	}

	if payload.Theme != "" {
		if err := s.preferences.Set(store.KeyTheme, payload.Theme); err != nil {
			log.WithError(err).Error("unable to persist theme preference")
			c.JSON(http.StatusInternalServerError, model.NewAPIError(err))
			return
		}
	}

	if payload.Token != nil {
		if err := s.preferences.Set(store.KeyToken, *payload.Token); err != nil {
			log.WithError(err).Error("unable to persist github token")
			c.JSON(http.StatusInternalServerError, model.NewAPIError(err))
			return
		}

		s.githubService.SetCredential(*payload.Token)
		s.poller.CredentialChanged()
	}

	c.Status(http.StatusNoContent)
}
