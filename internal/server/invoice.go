package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/bizflow/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/bizflow/internal/payment/domain"
	"github.com/smallbiznis/bizflow/pkg/db/pagination"
)

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	req := invoicedomain.ListInvoiceRequest{
		Status:    strings.TrimSpace(c.Query("status")),
		Search:    strings.TrimSpace(c.Query("search")),
		DateFrom:  s.parseOptionalTime("date_from", c.Query("date_from"), false),
		DateTo:    s.parseOptionalTime("date_to", c.Query("date_to"), true),
		MinAmount: s.parseOptionalFloat("min_amount", c.Query("min_amount")),
		MaxAmount: s.parseOptionalFloat("max_amount", c.Query("max_amount")),
		SortBy:    strings.TrimSpace(c.Query("sort_by")),
		SortDir:   strings.TrimSpace(c.Query("sort_dir")),
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	page, info := pagination.Paginate(resp, s.parsePagination(c))
	c.JSON(http.StatusOK, gin.H{"data": page, "page_info": info})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payments, err := s.paymentSvc.ListForInvoice(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp, "payments": payments})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	var req invoicedomain.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	if err := s.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) SendInvoice(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	resp, err := s.invoiceSvc.Send(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	resp, err := s.invoiceSvc.MarkPaid(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordInvoicePaymentRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

func (s *Server) RecordInvoicePayment(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	var req recordInvoicePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Installments recorded here are settled money, so deferred
	// methods are rejected before the invoice is credited.
	method := paymentdomain.Method(req.Method)
	if method == "" {
		method = paymentdomain.MethodCash
	}
	if !paymentdomain.ValidMethod(method) || method == paymentdomain.MethodCredit {
		AbortWithError(c, newValidationError("method", "invalid_method", "invalid value"))
		return
	}

	resp, err := s.invoiceSvc.ApplyPayment(c.Request.Context(), id, req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payment, err := s.paymentSvc.RecordForInvoice(c.Request.Context(), id, resp.ClientName, req.Amount, method)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp, "payment": payment})
}

func (s *Server) DuplicateInvoice(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	resp, err := s.invoiceSvc.Duplicate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) InvoiceStats(c *gin.Context) {
	resp, err := s.invoiceSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	view, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload, err := s.invoiceSvc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("%s.pdf", view.InvoiceNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

func (s *Server) ListInvoiceActivities(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	resp, err := s.invoiceSvc.Activities(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
