package handler

import (
	"net/http"
	"strconv"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every DataHub handler.
type Handlers struct {
	Dataset   *DatasetHandler
	Record    *RecordHandler
	APIKey    *APIKeyHandler
	Sync      *SyncHandler
	Export    *ExportHandler
	Analytics *AnalyticsHandler
	Audit     *AuditHandler
}

func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Dataset:   NewDatasetHandler(svc.Dataset),
		Record:    NewRecordHandler(svc.Record),
		APIKey:    NewAPIKeyHandler(svc.APIKey),
		Sync:      NewSyncHandler(svc.Sync, svc.Analytics),
		Export:    NewExportHandler(svc.Export),
		Analytics: NewAnalyticsHandler(svc.Analytics),
		Audit:     NewAuditHandler(svc.Audit),
	}
}

// Response is the admin API envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps paged admin listings.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination carries paging state. Field names are camelCase to match the
// DataHub frontend contract.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, 42900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID reads the authenticated user from the request context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination reads page/pageSize query params with sane bounds.
func GetPagination(c *gin.Context) (page, pageSize int) {
	return getPagination(c, 20)
}

// GetRecordPagination is GetPagination with the record listing default of 50.
func GetRecordPagination(c *gin.Context) (page, pageSize int) {
	return getPagination(c, 50)
}

func getPagination(c *gin.Context, defaultSize int) (page, pageSize int) {
	page = 1
	pageSize = defaultSize

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("pageSize"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}
