package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sjsage522/menufinder/config"
	"sjsage522/menufinder/internal/catalog"
	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/internal/server"
	"sjsage522/menufinder/services/cache"
	"sjsage522/menufinder/services/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trueIDSite = map[string]string{
	"/detail/collection": `<a href="/detail/tomyum">ต้มยำกุ้งน้ำใส</a><a href="/detail/krapao">ผัดกะเพราหมูสับ</a>`,
	"/detail/tomyum": `<html><body><h1>ต้มยำกุ้งน้ำใส</h1>
		<ul><li>กุ้งสด 250 กรัม</li><li>ตะไคร้ 3 ต้น ซอย</li><li>น้ำปลา 3 ช้อนโต๊ะ</li></ul>
		<p>1. ต้มน้ำซุปใส่ตะไคร้และข่า</p><p>2. ใส่กุ้งแล้วปรุงรส</p></body></html>`,
	"/detail/krapao": `<html><body><h1>ผัดกะเพราหมูสับ</h1>
		<ul><li>หมูสับ 200 กรัม</li><li>น้ำปลา 1 ช้อนโต๊ะ</li></ul>
		<p>1. ผัดกระเทียมกับพริกให้หอม</p></body></html>`,
}

func TestRecipeBrowserEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var hits atomic.Int32
	var tomYum atomic.Value
	tomYum.Store(trueIDSite["/detail/tomyum"])
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := trueIDSite[r.URL.Path]
		if r.URL.Path == "/detail/tomyum" {
			page = tomYum.Load().(string)
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer site.Close()

	cfg := &config.Config{
		Source:        config.SourceTrueID,
		CollectionURL: site.URL + "/detail/collection",
		TrueIDBaseURL: site.URL,
		MaxRecipes:    20,
		PageCacheTTL:  time.Hour,
		StoreDriver:   config.StoreFile,
		CacheFile:     filepath.Join(t.TempDir(), "recipes_cache.json"),
	}

	recipeCrawler, err := crawler.CreateCrawler(cfg, cache.NewMemoryService())
	require.NoError(t, err)
	recipeStore, err := store.New(cfg)
	require.NoError(t, err)
	defer recipeStore.Close()

	recipes := catalog.New(recipeCrawler, recipeStore, catalog.Options{
		CollectionURL: cfg.SourceURL(),
		MaxRecipes:    cfg.MaxRecipes,
	})
	loaded, err := recipes.LoadOrScrape(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// A second catalog reads the cache file instead of the site
	before := hits.Load()
	cached := catalog.New(recipeCrawler, recipeStore, catalog.Options{CollectionURL: cfg.SourceURL(), MaxRecipes: 20})
	_, err = cached.LoadOrScrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, hits.Load())

	handler := server.New(cached, server.Options{CollectionURL: cfg.SourceURL(), MaxRecipes: 20}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes?ingredient=กุ้งสด&ingredient=น้ำปลา", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int `json:"count"`
		Results []struct {
			Recipe      crawler.Recipe `json:"recipe"`
			Score       float64        `json:"score"`
			Highlighted []bool         `json:"highlighted"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "ต้มยำกุ้งน้ำใส", body.Results[0].Recipe.Name)
	assert.Equal(t, 1.0, body.Results[0].Score)
	assert.Equal(t, []bool{true, false, true}, body.Results[0].Highlighted)
	assert.Equal(t, 0.5, body.Results[1].Score)

	req = httptest.NewRequest(http.MethodGet, "/recipes/trueid-krapao", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ผัดกระเทียมกับพริกให้หอม"))

	// reload scrapes the site again instead of the cached pages
	tomYum.Store(strings.Replace(trueIDSite["/detail/tomyum"], "ต้มยำกุ้งน้ำใส", "ต้มยำกุ้งน้ำข้น", 1))

	req = httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	reloaded, ok := cached.Get("trueid-tomyum")
	require.True(t, ok)
	assert.Equal(t, "ต้มยำกุ้งน้ำข้น", reloaded.Name)
}
