package service

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/futures/f1/average-rate", r.URL.Path)
		assert.Equal(t, "m1", r.URL.Query().Get("marketId"))
		_, _ = w.Write([]byte(`{"futureId": "f1", "avgRate": "45000000000000000"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 100)
	rate, err := c.AverageRate(context.Background(), "m1", "f1")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(45e15), rate)
}

func TestAverageRateBadValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"futureId": "f1", "avgRate": "4.5%"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, 100).AverageRate(context.Background(), "m1", "f1")
	assert.Error(t, err)
}

func TestAverageRateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, 100).AverageRate(context.Background(), "m1", "f1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
