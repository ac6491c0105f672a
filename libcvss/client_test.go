package libcvss_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quay/cvsscalc"
	"github.com/quay/cvsscalc/internal/httputil"
	"github.com/quay/cvsscalc/libcvss"
	"github.com/quay/cvsscalc/test"
)

func TestClient(t *testing.T) {
	ctx := test.Logging(t)
	l, err := libcvss.New(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", libcvss.NewHandler(l)))
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := libcvss.NewClient(srv.Client(), srv.URL+"/api")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("Calculate", func(t *testing.T) {
		req := &libcvss.CalculateRequest{
			Version:      "3.1",
			VectorString: "CVSS:3.1/AV:L/AC:L/PR:L/UI:N/S:U/C:H/I:H/A:H",
		}
		want, err := l.Calculate(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		got, err := c.Calculate(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(got, want) {
			t.Error(cmp.Diff(got, want))
		}
	})
	t.Run("ParseVector", func(t *testing.T) {
		req := &libcvss.ParseRequest{Version: "2.0", VectorString: "AV:N/AC:M"}
		want, err := l.ParseVector(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		got, err := c.ParseVector(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(got, want) {
			t.Error(cmp.Diff(got, want))
		}
	})
	t.Run("Catalog", func(t *testing.T) {
		for _, v := range []string{"2.0", "3.1"} {
			want, err := l.Catalog(ctx, v)
			if err != nil {
				t.Fatal(err)
			}
			got, err := c.Catalog(ctx, v)
			if err != nil {
				t.Fatal(err)
			}
			if !cmp.Equal(got, want) {
				t.Error(cmp.Diff(got, want))
			}
		}
	})
	t.Run("Invalid", func(t *testing.T) {
		_, err := c.Calculate(ctx, &libcvss.CalculateRequest{Version: "3.1"})
		t.Log(err)
		if !errors.Is(err, cvsscalc.ErrInvalid) {
			t.Errorf("got: %v, want: %v", err, cvsscalc.ErrInvalid)
		}
		var e *cvsscalc.Error
		if !errors.As(err, &e) || e.Inner.Error() != "vector string is required" {
			t.Errorf("unexpected error: %v", err)
		}
	})
	t.Run("Unsupported", func(t *testing.T) {
		l, err := libcvss.New(ctx, &libcvss.Options{Versions: []string{"3.1"}})
		if err != nil {
			t.Fatal(err)
		}
		srv := httptest.NewServer(libcvss.NewHandler(l))
		defer srv.Close()
		c, err := libcvss.NewClient(srv.Client(), srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		_, err = c.Catalog(ctx, "2.0")
		t.Log(err)
		if !errors.Is(err, cvsscalc.ErrUnsupported) {
			t.Errorf("got: %v, want: %v", err, cvsscalc.ErrUnsupported)
		}
	})
	t.Run("NotJSON", func(t *testing.T) {
		c, err := libcvss.NewClient(srv.Client(), srv.URL+"/broken")
		if err != nil {
			t.Fatal(err)
		}
		_, err = c.Catalog(ctx, "")
		t.Log(err)
		var se *httputil.StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
			t.Errorf("got: %v", err)
		}
	})
	t.Run("BadRoot", func(t *testing.T) {
		if _, err := libcvss.NewClient(nil, "ftp://example.com"); err == nil {
			t.Error("expected error")
		}
	})
}
