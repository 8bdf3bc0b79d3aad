package catalog

import (
	"context"
	"errors"
	"testing"

	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/services/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCrawler serves a fixed collection
type mockCrawler struct {
	links      []string
	recipes    map[string]*crawler.Recipe
	linkCalls  int
	lastPage   string
	scrapeErrs map[string]error
	freshCalls []bool
}

func (m *mockCrawler) ScrapeRecipe(ctx context.Context, target string) (*crawler.Recipe, error) {
	m.freshCalls = append(m.freshCalls, crawler.FreshPages(ctx))
	if err := m.scrapeErrs[target]; err != nil {
		return nil, err
	}
	r, ok := m.recipes[target]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *r
	return &copied, nil
}

func (m *mockCrawler) ExtractRecipeLinks(ctx context.Context, pageURL string) ([]string, error) {
	m.linkCalls++
	m.lastPage = pageURL
	return m.links, nil
}

func (m *mockCrawler) GetName() string     { return "MockCrawler" }
func (m *mockCrawler) GetProvider() string { return "Mock" }

// mockStore keeps recipes in memory
type mockStore struct {
	recipes []crawler.Recipe
	loadErr error
	saves   int
	clears  int
}

func (m *mockStore) Load(ctx context.Context) ([]crawler.Recipe, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if len(m.recipes) == 0 {
		return nil, store.ErrNotFound
	}
	return append([]crawler.Recipe(nil), m.recipes...), nil
}

func (m *mockStore) Save(ctx context.Context, recipes []crawler.Recipe) error {
	m.saves++
	m.recipes = append([]crawler.Recipe(nil), recipes...)
	return nil
}

func (m *mockStore) Clear(ctx context.Context) error {
	m.clears++
	m.recipes = nil
	return nil
}

func (m *mockStore) Close() error { return nil }

func newMockCrawler() *mockCrawler {
	return &mockCrawler{
		links: []string{"/1", "/2"},
		recipes: map[string]*crawler.Recipe{
			"/1": {ID: "trueid-1", Name: "ต้มยำกุ้ง", Ingredients: []string{"กุ้ง 250 กรัม", "น้ำปลา 3 ช้อนโต๊ะ"}},
			"/2": {ID: "trueid-2", Name: "ผัดกะเพราไก่", Ingredients: []string{"ไก่สับ 200 กรัม", "น้ำปลา 1 ช้อนโต๊ะ"}},
			"/3": {ID: "trueid-3", Name: "ไข่เจียว", Ingredients: []string{"ไข่ไก่ 2 ฟอง"}},
		},
	}
}

func TestLoadOrScrape_FromStore(t *testing.T) {
	mc := newMockCrawler()
	ms := &mockStore{recipes: []crawler.Recipe{
		{Name: "แกงจืด", URL: "https://cooking.kapook.com/view9.html", Ingredients: []string{"หมูสับ 100 กรัม"}},
	}}
	c := New(mc, ms, Options{CollectionURL: "https://food.trueid.net/detail/col", MaxRecipes: 20})

	recipes, err := c.LoadOrScrape(context.Background())
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	expectedID := uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://cooking.kapook.com/view9.html")).String()
	assert.Equal(t, expectedID, recipes[0].ID)
	assert.Equal(t, 0, mc.linkCalls)
	assert.Equal(t, 0, ms.saves)

	got, ok := c.Get(expectedID)
	assert.True(t, ok)
	assert.Equal(t, "แกงจืด", got.Name)
}

func TestLoadOrScrape_ScrapesWhenEmpty(t *testing.T) {
	mc := newMockCrawler()
	ms := &mockStore{}
	c := New(mc, ms, Options{CollectionURL: "https://food.trueid.net/detail/col", MaxRecipes: 20})

	recipes, err := c.LoadOrScrape(context.Background())
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
	assert.Equal(t, "https://food.trueid.net/detail/col", mc.lastPage)
	assert.Equal(t, 1, ms.saves)
	assert.Len(t, ms.recipes, 2)
	assert.Equal(t, 2, c.Len())
}

func TestLoadOrScrape_UnreadableStore(t *testing.T) {
	mc := newMockCrawler()
	ms := &mockStore{loadErr: errors.New("corrupt cache")}
	c := New(mc, ms, Options{MaxRecipes: 20})

	recipes, err := c.LoadOrScrape(context.Background())
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
}

func TestLoadOrScrape_NothingScraped(t *testing.T) {
	mc := &mockCrawler{}
	c := New(mc, &mockStore{}, Options{MaxRecipes: 20})

	_, err := c.LoadOrScrape(context.Background())
	assert.ErrorIs(t, err, ErrNoRecipes)
}

func TestReloadFrom(t *testing.T) {
	mc := newMockCrawler()
	ms := &mockStore{recipes: []crawler.Recipe{{ID: "old", Name: "เก่า", Ingredients: []string{"เกลือ 1 ช้อนชา"}}}}
	c := New(mc, ms, Options{CollectionURL: "https://food.trueid.net/detail/col", MaxRecipes: 20})

	_, err := c.LoadOrScrape(context.Background())
	require.NoError(t, err)

	recipes, err := c.ReloadFrom(context.Background(), "https://food.trueid.net/detail/other", 1)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "trueid-1", recipes[0].ID)
	assert.Equal(t, "https://food.trueid.net/detail/other", mc.lastPage)
	assert.Equal(t, 1, ms.clears)

	_, ok := c.Get("old")
	assert.False(t, ok)

	recipes, err = c.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
	assert.Equal(t, "https://food.trueid.net/detail/col", mc.lastPage)
}

func TestReloadAndRefreshBypassPageCache(t *testing.T) {
	mc := newMockCrawler()
	c := New(mc, &mockStore{}, Options{MaxRecipes: 20})

	_, err := c.LoadOrScrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, mc.freshCalls)

	mc.freshCalls = nil
	_, err = c.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, mc.freshCalls)

	mc.freshCalls = nil
	_, err = c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, mc.freshCalls)
}

func TestRefresh_ReturnsNewRecipes(t *testing.T) {
	mc := newMockCrawler()
	ms := &mockStore{}
	c := New(mc, ms, Options{MaxRecipes: 20})

	_, err := c.LoadOrScrape(context.Background())
	require.NoError(t, err)

	mc.links = []string{"/1", "/2", "/3"}
	fresh, err := c.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "trueid-3", fresh[0].ID)
	assert.Equal(t, 3, c.Len())

	fresh, err = c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fresh)

	mc.links = nil
	_, err = c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoRecipes)
	assert.Equal(t, 3, c.Len())
}

func TestSearchAndIngredients(t *testing.T) {
	c := New(newMockCrawler(), &mockStore{}, Options{MaxRecipes: 20})
	_, err := c.LoadOrScrape(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"กุ้ง", "น้ำปลา", "ไก่สับ"}, c.Ingredients())

	results := c.Search([]string{"กุ้ง"}, "")
	require.Len(t, results, 1)
	assert.Equal(t, "ต้มยำกุ้ง", results[0].Recipe.Name)
	assert.Equal(t, 1.0, results[0].Score)

	assert.Len(t, c.Search(nil, "น้ำปลา"), 2)
}

func TestAssignIDs(t *testing.T) {
	recipes := []crawler.Recipe{
		{ID: "kapook-1", Name: "a"},
		{Name: "ยำวุ้นเส้น"},
		{Name: "ยำวุ้นเส้น"},
	}
	AssignIDs(recipes)

	assert.Equal(t, "kapook-1", recipes[0].ID)
	assert.NotEmpty(t, recipes[1].ID)
	assert.Equal(t, recipes[1].ID, recipes[2].ID)
	_, err := uuid.Parse(recipes[1].ID)
	assert.NoError(t, err)
}
