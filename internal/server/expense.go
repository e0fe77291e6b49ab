package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	expensedomain "github.com/smallbiznis/bizflow/internal/expense/domain"
	"github.com/smallbiznis/bizflow/pkg/db/pagination"
)

func (s *Server) CreateExpense(c *gin.Context) {
	var req expensedomain.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.expenseSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) listExpenseRequest(c *gin.Context) expensedomain.ListExpenseRequest {
	return expensedomain.ListExpenseRequest{
		Category:   strings.TrimSpace(c.Query("category")),
		Method:     strings.TrimSpace(c.Query("method")),
		Search:     strings.TrimSpace(c.Query("search")),
		HasReceipt: s.parseOptionalBool("has_receipt", c.Query("has_receipt")),
		DateFrom:   s.parseOptionalTime("date_from", c.Query("date_from"), false),
		DateTo:     s.parseOptionalTime("date_to", c.Query("date_to"), true),
		MinAmount:  s.parseOptionalFloat("min_amount", c.Query("min_amount")),
		MaxAmount:  s.parseOptionalFloat("max_amount", c.Query("max_amount")),
		SortBy:     strings.TrimSpace(c.Query("sort_by")),
		SortDir:    strings.TrimSpace(c.Query("sort_dir")),
	}
}

func (s *Server) ListExpenses(c *gin.Context) {
	resp, err := s.expenseSvc.List(c.Request.Context(), s.listExpenseRequest(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	page, info := pagination.Paginate(resp, s.parsePagination(c))
	c.JSON(http.StatusOK, gin.H{"data": page, "page_info": info})
}

func (s *Server) GetExpenseByID(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, expensedomain.ErrExpenseNotFound)
		return
	}

	resp, err := s.expenseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateExpense(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, expensedomain.ErrExpenseNotFound)
		return
	}

	var req expensedomain.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.expenseSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteExpense(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, expensedomain.ErrExpenseNotFound)
		return
	}

	if err := s.expenseSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type bulkDeleteExpensesRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) BulkDeleteExpenses(c *gin.Context) {
	var req bulkDeleteExpensesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.IDs) == 0 {
		AbortWithError(c, newValidationError("ids", "required", "at least one id is required"))
		return
	}

	ids := make([]snowflake.ID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, ok := parsePathID(raw)
		if !ok {
			AbortWithError(c, newValidationError("ids", "invalid_id", "invalid id"))
			return
		}
		ids = append(ids, id)
	}

	deleted, err := s.expenseSvc.BulkDelete(c.Request.Context(), ids)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": deleted}})
}

func (s *Server) ExpenseStats(c *gin.Context) {
	resp, err := s.expenseSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportExpenses(c *gin.Context) {
	payload, err := s.expenseSvc.ExportCSV(c.Request.Context(), s.listExpenseRequest(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="expenses.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}
