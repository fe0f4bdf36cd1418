package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/slms-api/internal/models"
	"github.com/noah-isme/slms-api/internal/service"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
	"github.com/noah-isme/slms-api/pkg/response"
)

// MentorHandler exposes the mentor workspace endpoints. Every route first
// resolves the mentor row for the authenticated user so data access stays
// scoped to the mentor's own roster.
type MentorHandler struct {
	studentService *service.StudentService
	leaveService   *service.LeaveService
	alertService   *service.AlertService
	cohortService  *service.CohortService
	logger         *zap.Logger
}

// MentorHandlerParams groups constructor dependencies.
type MentorHandlerParams struct {
	StudentService *service.StudentService
	LeaveService   *service.LeaveService
	AlertService   *service.AlertService
	CohortService  *service.CohortService
	Logger         *zap.Logger
}

// NewMentorHandler constructs a MentorHandler.
func NewMentorHandler(params MentorHandlerParams) *MentorHandler {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorHandler{
		studentService: params.StudentService,
		leaveService:   params.LeaveService,
		alertService:   params.AlertService,
		cohortService:  params.CohortService,
		logger:         logger,
	}
}

func (h *MentorHandler) mentorID(c *gin.Context) (string, error) {
	claims, err := claimsFromContext(c)
	if err != nil {
		return "", err
	}
	return h.studentService.MentorID(c.Request.Context(), claims.UserID)
}

// Students godoc
// @Summary Mentee roster with attendance summaries
// @Tags mentor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.MenteeSummary}
// @Router /mentor/students [get]
func (h *MentorHandler) Students(c *gin.Context) {
	mentorID, err := h.mentorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	mentees, err := h.studentService.Mentees(c.Request.Context(), mentorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, mentees, nil)
}

// Leaves godoc
// @Summary Leave requests from the mentor's roster
// @Tags mentor
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Success 200 {object} response.Envelope{data=[]models.LeaveDetail}
// @Router /mentor/leaves [get]
func (h *MentorHandler) Leaves(c *gin.Context) {
	mentorID, err := h.mentorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := models.LeaveStatus(c.Query("status"))
	leaves, err := h.leaveService.ForMentor(c.Request.Context(), mentorID, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, leaves, nil)
}

// ReviewLeave godoc
// @Summary Approve or reject a pending leave request
// @Tags mentor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave request ID"
// @Param payload body service.ReviewLeaveRequest true "Decision"
// @Success 200 {object} response.Envelope{data=models.LeaveRequest}
// @Failure 409 {object} response.Envelope
// @Router /mentor/leaves/{id} [put]
func (h *MentorHandler) ReviewLeave(c *gin.Context) {
	mentorID, err := h.mentorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req service.ReviewLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	leave, err := h.leaveService.Review(c.Request.Context(), c.Param("id"), mentorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.cohortService != nil {
		h.cohortService.Invalidate(c.Request.Context())
	}

	response.JSON(c, http.StatusOK, leave, nil)
}

// ParentContact godoc
// @Summary Parent contact details for a mentee
// @Tags mentor
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope{data=models.ParentContact}
// @Failure 404 {object} response.Envelope
// @Router /mentor/students/{id}/contact [get]
func (h *MentorHandler) ParentContact(c *gin.Context) {
	mentorID, err := h.mentorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	contact, err := h.studentService.ParentContact(c.Request.Context(), c.Param("id"), mentorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, contact, nil)
}

// Alerts godoc
// @Summary Unresolved absence alerts for the mentor's roster
// @Tags mentor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.AlertDetail}
// @Router /mentor/alerts [get]
func (h *MentorHandler) Alerts(c *gin.Context) {
	mentorID, err := h.mentorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	alerts, err := h.alertService.Unresolved(c.Request.Context(), mentorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, alerts, nil)
}

// ResolveAlert godoc
// @Summary Mark an absence alert as handled
// @Tags mentor
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentor/alerts/{id}/resolve [put]
func (h *MentorHandler) ResolveAlert(c *gin.Context) {
	mentorID, err := h.mentorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.alertService.Resolve(c.Request.Context(), c.Param("id"), mentorID); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"resolved": true}, nil)
}
