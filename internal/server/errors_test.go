package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapErrorStorageUnavailable(t *testing.T) {
	for _, err := range []error{
		errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
		fmt.Errorf("query failed: %w", &net.OpError{Op: "dial", Err: errors.New("timeout")}),
		errors.New("sql: database is closed"),
	} {
		status, payload := mapError(err)
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "service_unavailable", payload.Type)
	}
}

func TestMapErrorMissingRowIsNotUnavailable(t *testing.T) {
	status, payload := mapError(gorm.ErrRecordNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", payload.Type)
}
