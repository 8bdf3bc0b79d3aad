package store

import (
	"context"
	"fmt"

	"sjsage522/menufinder/config"
	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/logger"
	crawlerrors "sjsage522/menufinder/pkg/errors"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recipeRecord is the table row for one recipe
type recipeRecord struct {
	ID             uint              `gorm:"primaryKey"`
	Position       int               `gorm:"index;not null"`
	RecipeID       string            `gorm:"index"`
	Name           string            `gorm:"not null"`
	Ingredients    []string          `gorm:"serializer:json"`
	Steps          []string          `gorm:"serializer:json"`
	URL            string
	Type           string
	Difficulty     string
	Time           string
	Image          string
	ProteinOptions []string          `gorm:"serializer:json"`
	Images         map[string]string `gorm:"serializer:json"`
	Provider       string
}

func (recipeRecord) TableName() string {
	return "recipes"
}

func toRecord(position int, r crawler.Recipe) recipeRecord {
	return recipeRecord{
		Position:       position,
		RecipeID:       r.ID,
		Name:           r.Name,
		Ingredients:    r.Ingredients,
		Steps:          r.Steps,
		URL:            r.URL,
		Type:           r.Type,
		Difficulty:     r.Difficulty,
		Time:           r.Time,
		Image:          r.Image,
		ProteinOptions: r.ProteinOptions,
		Images:         r.Images,
		Provider:       r.Provider,
	}
}

func (rec recipeRecord) toRecipe() crawler.Recipe {
	recipe := crawler.Recipe{
		ID:             rec.RecipeID,
		Name:           rec.Name,
		Ingredients:    rec.Ingredients,
		Steps:          rec.Steps,
		URL:            rec.URL,
		Type:           rec.Type,
		Difficulty:     rec.Difficulty,
		Time:           rec.Time,
		Image:          rec.Image,
		ProteinOptions: rec.ProteinOptions,
		Images:         rec.Images,
		Provider:       rec.Provider,
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	if recipe.Steps == nil {
		recipe.Steps = []string{}
	}
	return recipe
}

// GormStore keeps recipes in a SQL table through gorm
type GormStore struct {
	db     *gorm.DB
	driver string
}

// NewGormStore opens a sqlite or postgres database and migrates the recipes table
func NewGormStore(driver, dsn string) (*GormStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.StoreSQLite:
		dialector = sqlite.Open(dsn)
	case config.StorePostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	return NewGormStoreFromDB(db, driver)
}

// NewGormStoreFromDB wraps an open gorm connection and migrates the recipes table
func NewGormStoreFromDB(db *gorm.DB, driver string) (*GormStore, error) {
	if err := db.AutoMigrate(&recipeRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate recipes table: %w", err)
	}
	logger.ForStore().Debug().Str("driver", driver).Msg("Recipes table ready")
	return &GormStore{db: db, driver: driver}, nil
}

// Load reads every recipe ordered by position
func (s *GormStore) Load(ctx context.Context) ([]crawler.Recipe, error) {
	var records []recipeRecord
	if err := s.db.WithContext(ctx).Order("position").Find(&records).Error; err != nil {
		return nil, crawlerrors.NewStore(s.driver, "failed to load recipes", err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}

	recipes := make([]crawler.Recipe, 0, len(records))
	for _, rec := range records {
		recipes = append(recipes, rec.toRecipe())
	}
	return recipes, nil
}

// Save replaces the table contents in one transaction
func (s *GormStore) Save(ctx context.Context, recipes []crawler.Recipe) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&recipeRecord{}).Error; err != nil {
			return err
		}
		if len(recipes) == 0 {
			return nil
		}
		records := make([]recipeRecord, 0, len(recipes))
		for i, r := range recipes {
			records = append(records, toRecord(i, r))
		}
		return tx.CreateInBatches(records, 100).Error
	})
	if err != nil {
		return crawlerrors.NewStore(s.driver, "failed to save recipes", err)
	}
	return nil
}

// Clear deletes every stored recipe
func (s *GormStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&recipeRecord{}).Error; err != nil {
		return crawlerrors.NewStore(s.driver, "failed to clear recipes", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
