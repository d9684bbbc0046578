package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head><title>Hi</title></head></html>"))
	}))
	defer srv.Close()

	f := New()
	page, err := f.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.True(t, page.OK())
	assert.True(t, page.IsHTML())
	assert.Contains(t, string(page.Body), "<title>Hi</title>")
}

func TestFetcher_Get_NonOKReturnsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New()
	page, err := f.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.False(t, page.OK())
	assert.Equal(t, http.StatusNotFound, page.StatusCode)
}

func TestFetcher_Get_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	f := New(WithMaxBody(100))
	page, err := f.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Len(t, page.Body, 100)
}

func TestPage_Blocked(t *testing.T) {
	assert.True(t, (&Page{StatusCode: 403}).Blocked())
	assert.True(t, (&Page{StatusCode: 429}).Blocked())
	assert.True(t, (&Page{StatusCode: 200, Body: []byte("please solve this CAPTCHA to continue")}).Blocked())
	assert.False(t, (&Page{StatusCode: 200, Body: []byte("welcome to our restaurant")}).Blocked())
}

func TestPage_IsHTML_Sniff(t *testing.T) {
	p := &Page{ContentType: "application/octet-stream", Body: []byte("<!DOCTYPE html><html>")}
	assert.True(t, p.IsHTML())

	p = &Page{ContentType: "application/json", Body: []byte(`{"a":1}`)}
	assert.False(t, p.IsHTML())
}

func TestFetcher_Resolve_FollowsRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer final.Close()

	hop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL+"/place", http.StatusFound)
	}))
	defer hop.Close()

	f := New()
	resolved, err := f.Resolve(context.Background(), hop.URL)

	require.NoError(t, err)
	assert.Equal(t, final.URL+"/place", resolved)
}

func TestFetcher_Resolve_HeadRejectedFallsBackToGet(t *testing.T) {
	var sawGet bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sawGet = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New()
	resolved, err := f.Resolve(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.True(t, sawGet)
	assert.Equal(t, srv.URL, resolved)
}
