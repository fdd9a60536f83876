package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// errSpec 业务错误到 HTTP 状态与业务码的映射
type errSpec struct {
	status int
	code   int
}

// serviceErrors 各模块哨兵错误的响应规格。
// 业务码族：11xxx 认证 / 20xxx 用户 / 21xxx 课程 / 22xxx 节次 /
// 23xxx 考勤 / 24xxx 请假 / 25xxx 申诉 / 26xxx 投票 / 27xxx 消息与公告
var serviceErrors = map[error]errSpec{
	// 认证
	service.ErrInvalidCredentials: {http.StatusUnauthorized, 11001},
	service.ErrInvalidRefresh:     {http.StatusUnauthorized, 11002},

	// 用户
	service.ErrUserNotFound:     {http.StatusNotFound, 20001},
	service.ErrEmailTaken:       {http.StatusConflict, 20002},
	service.ErrSelfDelete:       {http.StatusBadRequest, 20003},
	service.ErrInvalidRoleValue: {http.StatusBadRequest, 20004},

	// 课程与选课
	service.ErrCourseNotFound:  {http.StatusNotFound, 21001},
	service.ErrCourseInUse:     {http.StatusConflict, 21002},
	service.ErrNotAnInstructor: {http.StatusBadRequest, 21003},
	service.ErrNotAStudent:     {http.StatusBadRequest, 21004},
	service.ErrAlreadyEnrolled: {http.StatusConflict, 21005},
	service.ErrNotCourseOwner:  {http.StatusForbidden, 21006},
	service.ErrNotEnrolled:     {http.StatusForbidden, 21007},

	// 节次
	service.ErrSessionNotFound:      {http.StatusNotFound, 22001},
	service.ErrSessionConflict:      {http.StatusConflict, 22002},
	service.ErrSessionAlreadyOpen:   {http.StatusConflict, 22003},
	service.ErrSessionAlreadyPaused: {http.StatusConflict, 22004},
	service.ErrSessionAlreadyClosed: {http.StatusConflict, 22005},
	service.ErrPauseClosedSession:   {http.StatusConflict, 22006},
	service.ErrBadBaseDate:          {http.StatusBadRequest, 22007},
	service.ErrBadMeetingDays:       {http.StatusBadRequest, 22008},
	service.ErrBadTimeSpec:          {http.StatusBadRequest, 22009},
	service.ErrBadMakeup:            {http.StatusBadRequest, 22010},

	// 考勤
	service.ErrSessionNotOpen:     {http.StatusConflict, 23001},
	service.ErrNotRollCallSession: {http.StatusBadRequest, 23002},
	service.ErrRollCallSelfAttend: {http.StatusBadRequest, 23003},
	service.ErrWrongCode:          {http.StatusBadRequest, 23004},
	service.ErrAttendanceNotFound: {http.StatusNotFound, 23005},
	service.ErrInvalidStatusValue: {http.StatusBadRequest, 23006},

	// 请假
	service.ErrExcuseNotFound:         {http.StatusNotFound, 24001},
	service.ErrExcusePendingExists:    {http.StatusConflict, 24002},
	service.ErrExcuseAlreadyProcessed: {http.StatusConflict, 24003},

	// 申诉
	service.ErrAppealNotFound:         {http.StatusNotFound, 25001},
	service.ErrAppealPendingExists:    {http.StatusConflict, 25002},
	service.ErrAppealAlreadyProcessed: {http.StatusConflict, 25003},
	service.ErrNotYourAttendance:      {http.StatusForbidden, 25004},

	// 投票
	service.ErrPollNotFound:      {http.StatusNotFound, 26001},
	service.ErrPollNotOpen:       {http.StatusConflict, 26002},
	service.ErrPollDeadlinePast:  {http.StatusConflict, 26003},
	service.ErrPollAlreadyClosed: {http.StatusConflict, 26004},
	service.ErrOptionNotFound:    {http.StatusNotFound, 26005},

	// 通知 / 公告 / 私信
	service.ErrNotificationNotFound: {http.StatusNotFound, 27001},
	service.ErrAnnouncementNotFound: {http.StatusNotFound, 27002},
	service.ErrGlobalAdminOnly:      {http.StatusForbidden, 27003},
	service.ErrCourseIDRequired:     {http.StatusBadRequest, 27004},
	service.ErrMessageNotFound:      {http.StatusNotFound, 27005},
	service.ErrReceiverNotFound:     {http.StatusNotFound, 27006},
	service.ErrReceiverNotAllowed:   {http.StatusForbidden, 27007},
	service.ErrSelfMessage:          {http.StatusBadRequest, 27008},

	// 预警批处理
	service.ErrNoWarningTarget: {http.StatusBadRequest, 28001},
}

// HandleServiceError 把 Service 层错误转成统一响应；未登记的错误一律 500
func HandleServiceError(c *gin.Context, err error) {
	for sentinel, spec := range serviceErrors {
		if errors.Is(err, sentinel) {
			response.Error(c, spec.status, spec.code, sentinel.Error())
			return
		}
	}
	_ = c.Error(err)
	response.InternalError(c)
}
