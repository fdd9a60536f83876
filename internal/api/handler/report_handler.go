package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// ReportHandler 报表与预警 HTTP 处理器
type ReportHandler struct {
	reportSvc  service.ReportService
	riskSvc    service.RiskService
	warningSvc service.WarningService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService, riskSvc service.RiskService, warningSvc service.WarningService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, riskSvc: riskSvc, warningSvc: warningSvc}
}

// Attendance 出席报表
// GET /api/v1/reports/attendance
func (h *ReportHandler) Attendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AttendanceReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	report, err := h.reportSvc.Attendance(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, report)
}

// AttendanceXLSX 出席报表 Excel 导出
// GET /api/v1/reports/attendance.xlsx
func (h *ReportHandler) AttendanceXLSX(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AttendanceReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	f, err := h.reportSvc.AttendanceXLSX(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="attendance_report.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// Risk 风险学生筛查
// GET /api/v1/reports/risk
func (h *ReportHandler) Risk(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.RiskRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.riskSvc.Detect(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Excuses 请假报表
// GET /api/v1/reports/excuses
func (h *ReportHandler) Excuses(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ExcuseReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	report, err := h.reportSvc.Excuses(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, report)
}

// Audits 课程维度审计报表
// GET /api/v1/reports/audits
func (h *ReportHandler) Audits(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AuditReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	report, err := h.reportSvc.Audits(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, report)
}

// AuditList 原始审计列表（管理员）
// GET /api/v1/audits
func (h *ReportHandler) AuditList(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AuditListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.reportSvc.AuditList(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// RunWarnings 缺勤预警批处理
// POST /api/v1/warnings/run
func (h *ReportHandler) RunWarnings(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.WarningRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.warningSvc.Run(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, result)
}
