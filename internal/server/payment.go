package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/bizflow/internal/payment/domain"
	"github.com/smallbiznis/bizflow/pkg/db/pagination"
)

func (s *Server) CreatePayment(c *gin.Context) {
	var req paymentdomain.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	req := paymentdomain.ListPaymentRequest{
		Status:    strings.TrimSpace(c.Query("status")),
		Method:    strings.TrimSpace(c.Query("method")),
		Search:    strings.TrimSpace(c.Query("search")),
		DateFrom:  s.parseOptionalTime("date_from", c.Query("date_from"), false),
		DateTo:    s.parseOptionalTime("date_to", c.Query("date_to"), true),
		MinAmount: s.parseOptionalFloat("min_amount", c.Query("min_amount")),
		MaxAmount: s.parseOptionalFloat("max_amount", c.Query("max_amount")),
		SortBy:    strings.TrimSpace(c.Query("sort_by")),
		SortDir:   strings.TrimSpace(c.Query("sort_dir")),
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	page, info := pagination.Paginate(resp, s.parsePagination(c))
	c.JSON(http.StatusOK, gin.H{"data": page, "page_info": info})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, paymentdomain.ErrPaymentNotFound)
		return
	}

	resp, err := s.paymentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePayment(c *gin.Context) {
	id, ok := parsePathID(c.Param("id"))
	if !ok {
		AbortWithError(c, paymentdomain.ErrPaymentNotFound)
		return
	}

	if err := s.paymentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) PaymentStats(c *gin.Context) {
	resp, err := s.paymentSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// VerifyPayment settles a pending Paystack payment. A redis lock keeps
// a double-submitted callback from settling the same reference twice.
func (s *Server) VerifyPayment(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		AbortWithError(c, paymentdomain.ErrPaymentNotFound)
		return
	}

	lockToken, acquired, err := s.authLimiter.TryVerifyLock(c.Request.Context(), reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !acquired {
		AbortWithError(c, ErrTooManyRequests)
		return
	}
	defer func() {
		_ = s.authLimiter.ReleaseVerifyLock(c.Request.Context(), reference, lockToken)
	}()

	resp, err := s.paymentSvc.VerifyPaystack(c.Request.Context(), reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
