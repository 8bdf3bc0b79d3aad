package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/internal/finder"
	"sjsage522/menufinder/logger"

	"github.com/gin-gonic/gin"
)

const pageTitle = "เมนูวันนี้จากวัตถุดิบที่มี"

type ingredientOption struct {
	Name    string
	Checked bool
}

// selection reads the selected ingredients from repeated ingredient parameters
func selection(c *gin.Context) []string {
	var selected []string
	for _, value := range c.QueryArray("ingredient") {
		if value = strings.TrimSpace(value); value != "" {
			selected = append(selected, value)
		}
	}
	return selected
}

// selectionQuery rebuilds the ingredient part of a query string so links keep the selection
func selectionQuery(selected []string) string {
	if len(selected) == 0 {
		return ""
	}
	values := url.Values{"ingredient": selected}
	return "?" + values.Encode()
}

func (s *Server) index(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	selected := selection(c)

	checked := make(map[string]bool, len(selected))
	for _, name := range selected {
		checked[name] = true
	}
	names := s.catalog.Ingredients()
	options := make([]ingredientOption, 0, len(names))
	for _, name := range names {
		options = append(options, ingredientOption{Name: name, Checked: checked[name]})
	}

	results := s.catalog.Search(selected, query)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":          pageTitle,
		"Query":          query,
		"Ingredients":    options,
		"Results":        results,
		"Count":          len(results),
		"HasSelection":   len(selected) > 0,
		"SelectionQuery": selectionQuery(selected),
		"CollectionURL":  s.opts.CollectionURL,
		"MaxRecipes":     s.opts.MaxRecipes,
	})
}

func (s *Server) recipePage(c *gin.Context) {
	recipe, ok := s.catalog.Get(c.Param("id"))
	if !ok {
		s.notFound(c, "ไม่พบสูตรที่เลือก")
		return
	}

	selected := selection(c)
	c.HTML(http.StatusOK, "recipe.html", gin.H{
		"Title":          recipe.Name,
		"Recipe":         recipe,
		"Image":          finder.RecipeImage(recipe, selected),
		"SelectionQuery": selectionQuery(selected),
	})
}

func (s *Server) reloadPage(c *gin.Context) {
	collectionURL, max := reloadParams(c.PostForm("url"), c.PostForm("max"))
	if _, err := s.reload(c, collectionURL, max); err != nil {
		c.HTML(reloadStatus(err), "message.html", gin.H{
			"Title":   "โหลดสูตรไม่สำเร็จ",
			"Message": err.Error(),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) samplePage(c *gin.Context) {
	c.HTML(http.StatusOK, "sample.html", gin.H{
		"Title":  tomYumGoong.Title,
		"Sample": tomYumGoong,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"recipes": s.catalog.Len(),
	})
}

func (s *Server) notFound(c *gin.Context, message string) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": message})
		return
	}
	c.HTML(http.StatusNotFound, "message.html", gin.H{
		"Title":   "404",
		"Message": message,
	})
}

func (s *Server) apiSearch(c *gin.Context) {
	results := s.catalog.Search(selection(c), strings.TrimSpace(c.Query("q")))
	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) apiRecipe(c *gin.Context) {
	recipe, ok := s.catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (s *Server) apiIngredients(c *gin.Context) {
	ingredients := s.catalog.Ingredients()
	c.JSON(http.StatusOK, gin.H{
		"count":       len(ingredients),
		"ingredients": ingredients,
	})
}

type reloadRequest struct {
	URL string `json:"url" form:"url"`
	Max int    `json:"max" form:"max"`
}

func (s *Server) apiReload(c *gin.Context) {
	var req reloadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Max < 0 || req.Max > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max must be between 1 and 100"})
		return
	}

	recipes, err := s.reload(c, strings.TrimSpace(req.URL), req.Max)
	if err != nil {
		c.JSON(reloadStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(recipes)})
}

// errReloadBusy is returned when a reload is already running
var errReloadBusy = errors.New("a reload is already in progress")

// reload runs one catalog reload at a time
func (s *Server) reload(c *gin.Context, collectionURL string, max int) ([]crawler.Recipe, error) {
	if !s.reloadMu.TryLock() {
		return nil, errReloadBusy
	}
	defer s.reloadMu.Unlock()

	recipes, err := s.catalog.ReloadFrom(c.Request.Context(), collectionURL, max)
	if err != nil {
		logger.ForServer().Error().Err(err).Str("collection", collectionURL).Msg("Reload failed")
		return nil, err
	}

	logger.ForServer().Info().Int("recipes", len(recipes)).Msg("Reloaded recipes")
	return recipes, nil
}

func reloadStatus(err error) int {
	if errors.Is(err, errReloadBusy) {
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

// reloadParams parses the settings form; blank or invalid values fall back to the catalog defaults
func reloadParams(rawURL, rawMax string) (string, int) {
	max, err := strconv.Atoi(strings.TrimSpace(rawMax))
	if err != nil || max < 1 || max > 100 {
		max = 0
	}
	return strings.TrimSpace(rawURL), max
}
