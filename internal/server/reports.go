package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ReportOverview(c *gin.Context) {
	resp, err := s.reportingSvc.Overview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportTrend(c *gin.Context) {
	resp, err := s.reportingSvc.Trend(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportExpenseBreakdown(c *gin.Context) {
	resp, err := s.reportingSvc.ExpenseBreakdown(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportPaymentMethods(c *gin.Context) {
	resp, err := s.reportingSvc.PaymentMethodAnalysis(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportTopClients(c *gin.Context) {
	resp, err := s.reportingSvc.TopClients(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportInvoiceAging(c *gin.Context) {
	resp, err := s.reportingSvc.InvoiceAging(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
