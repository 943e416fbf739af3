package netx

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDownloadPresignedURL(t *testing.T) {
	t.Run("success 200 OK", func(t *testing.T) {
		var gotMethod, gotQuery, gotSecret string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotQuery = r.URL.RawQuery
			gotSecret = r.Header.Get("X-App-Secret")
			_, _ = w.Write([]byte("SQLite format 3"))
		}))
		defer ts.Close()

		var buf bytes.Buffer
		n, err := DownloadPresignedURL(context.Background(), ts.Client(), ts.URL+"/backup_x.db?X-Amz-Signature=abc", &buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodGet {
			t.Fatalf("method = %q, want GET", gotMethod)
		}
		if gotQuery != "X-Amz-Signature=abc" {
			t.Fatalf("query = %q", gotQuery)
		}
		if gotSecret != "" {
			t.Fatalf("app secret leaked to object storage: %q", gotSecret)
		}
		if n != int64(buf.Len()) || buf.String() != "SQLite format 3" {
			t.Fatalf("got %d bytes %q", n, buf.String())
		}
	})

	t.Run("non-200 -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("<Error>SignatureDoesNotMatch</Error>"))
		}))
		defer ts.Close()

		var buf bytes.Buffer
		_, err := DownloadPresignedURL(context.Background(), nil, ts.URL, &buf)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "SignatureDoesNotMatch") {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.Len() != 0 {
			t.Fatalf("body written on failure: %q", buf.String())
		}
	})

	t.Run("bad URL", func(t *testing.T) {
		_, err := DownloadPresignedURL(context.Background(), nil, "://nope", &bytes.Buffer{})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
