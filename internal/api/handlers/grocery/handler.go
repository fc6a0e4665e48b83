package grocery

import (
	"net/http"
	"time"

	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRequest 依日期區間產生購物清單
type GenerateRequest struct {
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02"`
}

// ToggleRequest 切換項目購買狀態
type ToggleRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

// ParseRequest 不落地解析食材文字
type ParseRequest struct {
	Text string `json:"text"`
}

// ListsResponse 家庭的所有清單
type ListsResponse struct {
	Lists []shopping.GroceryList `json:"lists"`
}

// Handler 購物清單處理程序
type Handler struct {
	service *shopping.Service
	debug   bool
}

// NewHandler 創建新的購物清單處理程序
func NewHandler(service *shopping.Service, debug bool) *Handler {
	common.UseJSONFieldNames()
	return &Handler{
		service: service,
		debug:   debug,
	}
}

// Register 註冊路由，generateGuards 只套用在產生清單
func (h *Handler) Register(api *gin.RouterGroup, generateGuards ...gin.HandlerFunc) {
	lists := api.Group("/households/:householdID/grocery-lists")
	{
		lists.POST("", append(generateGuards, h.HandleGenerate)...)
		lists.GET("", h.HandleList)
		lists.GET("/:listID", h.HandleGet)
		lists.DELETE("/:listID", h.HandleDelete)
		lists.POST("/:listID/items/toggle", h.HandleToggle)
		lists.DELETE("/:listID/items", h.HandleDeleteItem)
		lists.GET("/:listID/export", h.HandleExport)
		lists.GET("/:listID/download", h.HandleDownload)
		lists.GET("/:listID/download.xlsx", h.HandleDownloadSpreadsheet)
	}

	api.POST("/grocery/parse", h.HandleParse)
}

// HandleGenerate 從餐點計畫產生購物清單
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, common.BindingError(err))
		return
	}

	// 格式已由 binding 驗證
	from, _ := time.Parse(time.DateOnly, req.StartDate)
	to, _ := time.Parse(time.DateOnly, req.EndDate)

	list, err := h.service.GenerateList(c.Request.Context(), c.Param("householdID"), middleware.MemberID(c), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	common.LogInfo("Grocery list generated",
		zap.String("request_id", requestid.Get(c)),
		zap.String("household_id", list.HouseholdID),
		zap.String("list_id", list.ID),
		zap.Int("items", len(list.Items)),
	)
	c.JSON(http.StatusCreated, list)
}

// HandleList 列出家庭的清單，新的在前
func (h *Handler) HandleList(c *gin.Context) {
	lists, err := h.service.ListLists(c.Request.Context(), c.Param("householdID"), middleware.MemberID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListsResponse{Lists: lists})
}

// HandleGet 取得清單與分類結果
func (h *Handler) HandleGet(c *gin.Context) {
	result, err := h.service.CategorizedList(c.Request.Context(), c.Param("householdID"), middleware.MemberID(c), c.Param("listID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleDelete 刪除清單
func (h *Handler) HandleDelete(c *gin.Context) {
	if err := h.service.DeleteList(c.Request.Context(), c.Param("householdID"), middleware.MemberID(c), c.Param("listID")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleToggle 切換項目購買狀態
func (h *Handler) HandleToggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, common.BindingError(err))
		return
	}

	item, err := h.service.TogglePurchased(c.Request.Context(), c.Param("householdID"), middleware.MemberID(c), c.Param("listID"), req.ItemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// HandleDeleteItem 刪除清單項目，項目 ID 含有 "|" 因此放在 query
func (h *Handler) HandleDeleteItem(c *gin.Context) {
	if err := h.service.DeleteItem(c.Request.Context(), c.Param("householdID"), middleware.MemberID(c), c.Param("listID"), c.Query("item_id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleExport 複製用的純文字
func (h *Handler) HandleExport(c *gin.Context) {
	text, err := h.service.ExportText(c.Request.Context(), c.Param("householdID"), middleware.MemberID(c), c.Param("listID"), c.Query("format"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// HandleDownload 下載 grocery_list.txt
func (h *Handler) HandleDownload(c *gin.Context) {
	export, err := h.service.ExportDownload(c.Request.Context(), c.Param("householdID"), middleware.MemberID(c), c.Param("listID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	writeAttachment(c, export)
}

// HandleDownloadSpreadsheet 下載 xlsx
func (h *Handler) HandleDownloadSpreadsheet(c *gin.Context) {
	export, err := h.service.ExportSpreadsheet(c.Request.Context(), c.Param("householdID"), middleware.MemberID(c), c.Param("listID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	writeAttachment(c, export)
}

// HandleParse 解析任意食材文字並回傳合併與分類結果
func (h *Handler) HandleParse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, common.BindingError(err))
		return
	}
	c.JSON(http.StatusOK, h.service.Preview(req.Text))
}

// respondError 將錯誤轉為 {"error","code"} 回應
func (h *Handler) respondError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.String("code", ce.Code),
		zap.String("request_id", requestid.Get(c)),
		zap.String("path", c.Request.URL.Path),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("Request failed", fields...)
	} else {
		common.LogDebug("Request rejected", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, common.NewErrorResponse(ce, h.debug))
}

func writeAttachment(c *gin.Context, export *shopping.Export) {
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
