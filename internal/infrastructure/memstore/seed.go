package memstore

import (
	"fmt"
	"os"
	"time"

	"meal-planner/internal/core/shopping"

	"gopkg.in/yaml.v3"
)

// seedFile 記憶體模式的初始資料
type seedFile struct {
	Households []struct {
		ID      string   `yaml:"id"`
		Name    string   `yaml:"name"`
		Members []string `yaml:"members"`
		Meals   []struct {
			ID          string `yaml:"id"`
			Date        string `yaml:"date"` // YYYY-MM-DD
			Title       string `yaml:"title"`
			Notes       string `yaml:"notes"`
			Ingredients string `yaml:"recipe_ingredients"`
		} `yaml:"meals"`
	} `yaml:"households"`
}

// LoadSeed 從 YAML 檔載入家庭、成員與餐點
func (s *Store) LoadSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, h := range seed.Households {
		if h.ID == "" {
			return fmt.Errorf("seed household without id")
		}
		s.AddHousehold(h.ID, h.Name)
		for _, m := range h.Members {
			if err := s.AddMember(h.ID, m); err != nil {
				return err
			}
		}
		for _, m := range h.Meals {
			date, err := time.Parse(time.DateOnly, m.Date)
			if err != nil {
				return fmt.Errorf("meal %q in household %s: invalid date: %w", m.Title, h.ID, err)
			}
			if err := s.AddMeal(shopping.Meal{
				ID:                m.ID,
				HouseholdID:       h.ID,
				Date:              date,
				Title:             m.Title,
				Notes:             m.Notes,
				RecipeIngredients: m.Ingredients,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
