package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/slms-api/internal/models"
	"github.com/noah-isme/slms-api/internal/service"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
	"github.com/noah-isme/slms-api/pkg/export"
	"github.com/noah-isme/slms-api/pkg/response"
)

// AdminHandler exposes the administrator endpoints.
type AdminHandler struct {
	overviewService *service.OverviewService
	studentService  *service.StudentService
	cohortService   *service.CohortService
	sweepService    *service.SweepService
	csvExporter     *export.CSVExporter
	pdfExporter     *export.PDFExporter
	logger          *zap.Logger
}

// AdminHandlerParams groups constructor dependencies.
type AdminHandlerParams struct {
	OverviewService *service.OverviewService
	StudentService  *service.StudentService
	CohortService   *service.CohortService
	SweepService    *service.SweepService
	Logger          *zap.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(params AdminHandlerParams) *AdminHandler {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		overviewService: params.OverviewService,
		studentService:  params.StudentService,
		cohortService:   params.CohortService,
		sweepService:    params.SweepService,
		csvExporter:     export.NewCSVExporter(),
		pdfExporter:     export.NewPDFExporter(),
		logger:          logger,
	}
}

// Overview godoc
// @Summary System-wide counters
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=dto.AdminOverview}
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.overviewService.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Students godoc
// @Summary Student directory
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param branch query string false "Filter by branch"
// @Param semester query int false "Filter by semester"
// @Param search query string false "Match name or roll number"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.StudentDetail}
// @Router /admin/students [get]
func (h *AdminHandler) Students(c *gin.Context) {
	filter := models.StudentFilter{
		Branch: c.Query("branch"),
		Search: c.Query("search"),
	}
	if raw := c.Query("semester"); raw != "" {
		semester, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester must be a number"))
			return
		}
		filter.Semester = semester
	}
	if raw := c.Query("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := c.Query("limit"); raw != "" {
		filter.PageSize, _ = strconv.Atoi(raw)
	}
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	students, pagination, err := h.studentService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, students, pagination)
}

// CohortRisk godoc
// @Summary Cohort-wide risk report
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=dto.CohortReport}
// @Router /admin/risk/cohort [get]
func (h *AdminHandler) CohortRisk(c *gin.Context) {
	report, cacheHit, err := h.cohortService.Analyze(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil, map[string]interface{}{"cache_hit": cacheHit})
}

// ExportCohortRisk godoc
// @Summary Download the cohort risk report
// @Tags admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "Export format" Enums(csv, pdf) default(csv)
// @Success 200 {file} file
// @Router /admin/risk/cohort/export [get]
func (h *AdminHandler) ExportCohortRisk(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "pdf" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	report, _, err := h.cohortService.Analyze(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := h.cohortService.ExportDataset(report)
	filename := fmt.Sprintf("cohort-risk-%s.%s", report.AnalyzedAt.Format("2006-01-02"), format)

	var payload []byte
	contentType := "text/csv"
	if format == "pdf" {
		contentType = "application/pdf"
		payload, err = h.pdfExporter.Render(dataset, h.cohortService.ExportTitle(report))
	} else {
		payload, err = h.csvExporter.Render(dataset)
	}
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// RunAbsenceSweep godoc
// @Summary Trigger the uninformed-absence sweep
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param date query string false "Sweep date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope{data=dto.SweepResult}
// @Failure 400 {object} response.Envelope
// @Router /admin/sweeps/absence [post]
func (h *AdminHandler) RunAbsenceSweep(c *gin.Context) {
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	result, err := h.sweepService.Run(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.cohortService.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, result, nil)
}

type reassignMentorRequest struct {
	MentorID *string `json:"mentor_id"`
}

// ReassignMentor godoc
// @Summary Assign or clear a student's mentor
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body reassignMentorRequest true "Target mentor, null to clear"
// @Success 200 {object} response.Envelope{data=models.StudentDetail}
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id}/mentor [put]
func (h *AdminHandler) ReassignMentor(c *gin.Context) {
	var req reassignMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	student, err := h.studentService.ReassignMentor(c.Request.Context(), c.Param("id"), req.MentorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, student, nil)
}
