package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPageSendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer server.Close()

	client := NewClient(WithUserAgent("test-agent/1.0"))
	body, err := client.Page(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if !strings.Contains(body, "ok") {
		t.Errorf("unexpected body: %q", body)
	}
	if gotUA != "test-agent/1.0" {
		t.Errorf("User-Agent = %q, want test-agent/1.0", gotUA)
	}
}

func TestPageErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	client := NewClient()

	tests := []struct {
		name string
		url  string
	}{
		{name: "non-2xx status", url: server.URL + "/missing"},
		{name: "invalid URL", url: "not a url"},
		{name: "connection refused", url: "http://127.0.0.1:1/nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.Page(context.Background(), tt.url); err == nil {
				t.Errorf("expected error for %q", tt.url)
			}
		})
	}
}

func TestPageTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, "late")
	}))
	defer server.Close()

	client := NewClient(WithTimeout(20 * time.Millisecond))
	if _, err := client.Page(context.Background(), server.URL); err == nil {
		t.Fatal("expected timeout error")
	}
}

const detailsCommentsPage = `<html><body><table>
	<tr class="athing comtr" id="9"><td>
		<a class="hnuser">dave</a> <span class="age">4 hours ago</span>
		<div class="comment"><span class="commtext">Interesting point.</span></div>
	</td></tr>
</table></body></html>`

func TestDetailsSidesAreIndependent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/article":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/comments":
			fmt.Fprint(w, detailsCommentsPage)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient()
	content := client.Details(context.Background(), server.URL+"/article", server.URL+"/comments")

	if content.ArticleText != "" {
		t.Errorf("failed article side should be empty, got %q", content.ArticleText)
	}
	if !strings.Contains(content.CommentsText, "dave (4 hours ago): Interesting point.") {
		t.Errorf("comments side should still extract, got %q", content.CommentsText)
	}
}

func TestDetailsNeverFails(t *testing.T) {
	client := NewClient(WithTimeout(50 * time.Millisecond))

	content := client.Details(context.Background(), "http://127.0.0.1:1/a", "not a url")
	if !content.Empty() {
		t.Errorf("expected both sides empty, got %+v", content)
	}
}
