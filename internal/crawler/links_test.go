package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	crawlerrors "sjsage522/menufinder/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPageServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(strings.ReplaceAll(page, "{{base}}", "http://"+r.Host)))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtractRecipeLinks_TrueID(t *testing.T) {
	server := newPageServer(t, map[string]string{
		"/collection": `
			<a href="/detail/abc123?ref=collection">ต้มยำกุ้งน้ำใส</a>
			<a href="/detail/abc123">ต้มยำกุ้งน้ำใส อีกครั้ง</a>
			<a href="{{base}}/detail/def456">ผัดกะเพราหมูสับ</a>
			<a href="/detail/ghi789">ดู</a>
			<a href="/news/1">ข่าวอาหาร</a>
			<a href="https://other.example/detail/zzz">เมนูจากที่อื่น</a>
			<a>ไม่มีลิงก์</a>`,
	})

	crawler := NewConfigurableCrawler(TrueIDConfig(server.URL+"/collection", server.URL, 0), NewMockCacheService())

	links, err := crawler.ExtractRecipeLinks(context.Background(), server.URL+"/collection")
	require.NoError(t, err)
	assert.Equal(t, []string{
		server.URL + "/detail/abc123",
		server.URL + "/detail/def456",
	}, links)
}

func TestExtractRecipeLinks_Kapook(t *testing.T) {
	server := newPageServer(t, map[string]string{
		"/list": `
			<a href="/view273026.html">แกงเขียวหวานไก่</a>
			<a href="{{base}}/view1.html?utm=x">ไข่</a>
			<a href="{{base}}/view555.html"><img src="x.jpg"></a>
			<a href="/category/thai">อาหารไทย</a>
			<a href="/view273026.html">แกงเขียวหวานไก่</a>`,
	})

	crawler := NewConfigurableCrawler(KapookConfig(server.URL+"/list", server.URL, 0), NewMockCacheService())

	links, err := crawler.ExtractRecipeLinks(context.Background(), server.URL+"/list")
	require.NoError(t, err)
	// Kapook keeps short titles, image-only anchors and query strings
	assert.Equal(t, []string{
		server.URL + "/view273026.html",
		server.URL + "/view1.html?utm=x",
		server.URL + "/view555.html",
	}, links)
}

func TestExtractRecipeLinks_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/busy" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	mockCache := NewMockCacheService()
	crawler := NewConfigurableCrawler(TrueIDConfig("", server.URL, 0), mockCache)

	_, err := crawler.ExtractRecipeLinks(context.Background(), server.URL+"/broken")
	assert.True(t, crawlerrors.IsType(err, crawlerrors.ErrorTypeNetwork))
	assert.False(t, mockCache.Has("trueid_rate_limited"))

	_, err = crawler.ExtractRecipeLinks(context.Background(), server.URL+"/busy")
	assert.True(t, crawlerrors.IsType(err, crawlerrors.ErrorTypeRateLimit))
	assert.False(t, crawlerrors.IsRetryable(err))
	assert.True(t, mockCache.Has("trueid_rate_limited"))
}
