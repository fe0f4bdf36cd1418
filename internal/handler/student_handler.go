package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/slms-api/internal/service"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
	"github.com/noah-isme/slms-api/pkg/response"
)

// StudentHandler exposes the student self-service endpoints.
type StudentHandler struct {
	studentService *service.StudentService
	leaveService   *service.LeaveService
	cohortService  *service.CohortService
	logger         *zap.Logger
}

// StudentHandlerParams groups constructor dependencies.
type StudentHandlerParams struct {
	StudentService *service.StudentService
	LeaveService   *service.LeaveService
	CohortService  *service.CohortService
	Logger         *zap.Logger
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(params StudentHandlerParams) *StudentHandler {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{
		studentService: params.StudentService,
		leaveService:   params.LeaveService,
		cohortService:  params.CohortService,
		logger:         logger,
	}
}

// Me godoc
// @Summary Own profile with attendance summary
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.StudentProfile}
// @Failure 404 {object} response.Envelope
// @Router /student/me [get]
func (h *StudentHandler) Me(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.studentService.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// Leaves godoc
// @Summary Own leave request history
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.LeaveRequest}
// @Router /student/leaves [get]
func (h *StudentHandler) Leaves(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	studentID, err := h.studentService.StudentID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	leaves, err := h.leaveService.History(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, leaves, nil)
}

// ApplyLeave godoc
// @Summary File a leave request
// @Description Runs the eligibility gate before accepting the request
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ApplyLeaveRequest true "Leave application"
// @Success 201 {object} response.Envelope{data=service.ApplyLeaveResult}
// @Failure 403 {object} response.Envelope
// @Router /student/leaves [post]
func (h *StudentHandler) ApplyLeave(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	studentID, err := h.studentService.StudentID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req service.ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	result, err := h.leaveService.Apply(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.cohortService != nil {
		h.cohortService.Invalidate(c.Request.Context())
	}

	response.Created(c, result)
}
