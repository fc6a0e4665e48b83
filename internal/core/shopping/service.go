package shopping

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"meal-planner/internal/core/grocery"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultMaxRangeDays 單次產生清單允許的最大天數
const DefaultMaxRangeDays = 62

// Options 服務選項
type Options struct {
	MaxRangeDays int
	Categories   []grocery.Category
	Recorder     Recorder
	Now          func() time.Time
}

// Service 購物清單服務
type Service struct {
	meals     MealRepository
	lists     ListRepository
	catalog   IngredientCatalog
	members   MembershipChecker
	tx        TxManager
	publisher Publisher

	maxRangeDays int
	categories   []grocery.Category
	recorder     Recorder
	now          func() time.Time
}

// NewService 創建購物清單服務
func NewService(
	meals MealRepository,
	lists ListRepository,
	catalog IngredientCatalog,
	members MembershipChecker,
	tx TxManager,
	publisher Publisher,
	opts Options,
) *Service {
	s := &Service{
		meals:        meals,
		lists:        lists,
		catalog:      catalog,
		members:      members,
		tx:           tx,
		publisher:    publisher,
		maxRangeDays: opts.MaxRangeDays,
		categories:   opts.Categories,
		recorder:     opts.Recorder,
		now:          opts.Now,
	}
	if s.maxRangeDays <= 0 {
		s.maxRangeDays = DefaultMaxRangeDays
	}
	if len(s.categories) == 0 {
		s.categories = grocery.DefaultCategories()
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Categories 目前使用的分類清單
func (s *Service) Categories() []grocery.Category {
	return s.categories
}

// GenerateList 依日期範圍彙整餐點食材並建立新的購物清單
func (s *Service) GenerateList(ctx context.Context, householdID, actorID string, from, to time.Time) (*GroceryList, error) {
	if err := s.authorize(ctx, householdID, actorID); err != nil {
		return nil, err
	}

	from, to = dateOnly(from), dateOnly(to)
	if err := s.validateRange(from, to); err != nil {
		return nil, err
	}

	meals, err := s.meals.ListWithIngredients(ctx, householdID, from, to)
	if err != nil {
		common.LogError("Failed to load meals",
			zap.String("household_id", householdID),
			zap.Error(err),
		)
		return nil, mapRepoError(err, common.ErrNotFound)
	}

	blocks := make([]string, 0, len(meals))
	for _, m := range meals {
		if text := m.IngredientText(); strings.TrimSpace(text) != "" {
			blocks = append(blocks, text)
		}
	}
	items := grocery.ParseIngredients(grocery.JoinBlocks(blocks))

	list := &GroceryList{
		ID:          common.GenerateUUID(),
		HouseholdID: householdID,
		StartDate:   from,
		EndDate:     to,
		Items:       items,
		CreatedBy:   actorID,
		CreatedAt:   s.now().UTC(),
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for i := range list.Items {
			ingredientID, err := s.catalog.FindOrCreate(ctx, strings.ToLower(list.Items[i].Name))
			if err != nil {
				return fmt.Errorf("resolve ingredient %q: %w", list.Items[i].Name, err)
			}
			list.Items[i].IngredientID = ingredientID
		}
		if err := s.lists.Create(ctx, list); err != nil {
			return fmt.Errorf("create list: %w", err)
		}
		return nil
	})
	if err != nil {
		common.LogError("Failed to persist grocery list",
			zap.String("household_id", householdID),
			zap.Error(err),
		)
		return nil, mapRepoError(err, common.ErrListNotFound)
	}

	common.LogInfo("Grocery list generated",
		zap.String("household_id", householdID),
		zap.String("list_id", list.ID),
		zap.Int("meals", len(blocks)),
		zap.Int("items", len(list.Items)),
	)
	s.recorder.ListGenerated(len(list.Items))

	s.publish(ctx, Event{
		Type:        EventListCreated,
		HouseholdID: householdID,
		ListID:      list.ID,
		List:        list,
		ActorID:     actorID,
		OccurredAt:  list.CreatedAt,
	})

	return list, nil
}

// GetList 取得單一清單
func (s *Service) GetList(ctx context.Context, householdID, actorID, listID string) (*GroceryList, error) {
	if err := s.authorize(ctx, householdID, actorID); err != nil {
		return nil, err
	}
	return s.getList(ctx, householdID, listID)
}

// ListLists 取得家庭所有清單，新的在前
func (s *Service) ListLists(ctx context.Context, householdID, actorID string) ([]GroceryList, error) {
	if err := s.authorize(ctx, householdID, actorID); err != nil {
		return nil, err
	}

	lists, err := s.lists.ListByHousehold(ctx, householdID)
	if err != nil {
		return nil, mapRepoError(err, common.ErrNotFound)
	}
	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].CreatedAt.After(lists[j].CreatedAt)
	})
	return lists, nil
}

// DeleteList 刪除整份清單
func (s *Service) DeleteList(ctx context.Context, householdID, actorID, listID string) error {
	if err := s.authorize(ctx, householdID, actorID); err != nil {
		return err
	}

	if err := s.lists.Delete(ctx, householdID, listID); err != nil {
		return mapRepoError(err, common.ErrListNotFound)
	}

	s.publish(ctx, Event{
		Type:        EventListDeleted,
		HouseholdID: householdID,
		ListID:      listID,
		ActorID:     actorID,
		OccurredAt:  s.now().UTC(),
	})
	return nil
}

// DeleteItem 刪除清單中的單一項目
func (s *Service) DeleteItem(ctx context.Context, householdID, actorID, listID, itemID string) error {
	if err := s.authorize(ctx, householdID, actorID); err != nil {
		return err
	}
	if strings.TrimSpace(itemID) == "" {
		return common.ErrInvalidRequest.WithMessage("item_id is required")
	}
	if _, err := s.getList(ctx, householdID, listID); err != nil {
		return err
	}

	if err := s.lists.DeleteItem(ctx, listID, itemID); err != nil {
		return mapRepoError(err, common.ErrItemNotFound)
	}

	s.publish(ctx, Event{
		Type:        EventItemDeleted,
		HouseholdID: householdID,
		ListID:      listID,
		ItemID:      itemID,
		ActorID:     actorID,
		OccurredAt:  s.now().UTC(),
	})
	return nil
}

// TogglePurchased 切換項目購買狀態並通知其他成員
func (s *Service) TogglePurchased(ctx context.Context, householdID, actorID, listID, itemID string) (*grocery.Item, error) {
	if err := s.authorize(ctx, householdID, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, common.ErrInvalidRequest.WithMessage("item_id is required")
	}
	if _, err := s.getList(ctx, householdID, listID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	item, err := s.lists.TogglePurchased(ctx, listID, itemID, actorID, now)
	if err != nil {
		return nil, mapRepoError(err, common.ErrItemNotFound)
	}

	common.LogDebug("Grocery item toggled",
		zap.String("list_id", listID),
		zap.String("item_id", itemID),
		zap.Bool("purchased", item.Purchased),
	)
	s.recorder.ItemToggled(item.Purchased)

	s.publish(ctx, Event{
		Type:        EventItemUpdated,
		HouseholdID: householdID,
		ListID:      listID,
		ItemID:      itemID,
		Item:        item,
		ActorID:     actorID,
		OccurredAt:  now,
	})
	return item, nil
}

// CategorizedList 取得清單及其分類結果
func (s *Service) CategorizedList(ctx context.Context, householdID, actorID, listID string) (*CategorizedList, error) {
	list, err := s.GetList(ctx, householdID, actorID, listID)
	if err != nil {
		return nil, err
	}
	return &CategorizedList{
		List:        list,
		Categorized: grocery.Categorize(list.Items, s.categories),
	}, nil
}

// Preview 解析食材文字但不儲存
func (s *Service) Preview(text string) Preview {
	items := grocery.ParseIngredients(text)
	return Preview{
		Items:       items,
		Categorized: grocery.Categorize(items, s.categories),
	}
}

func (s *Service) getList(ctx context.Context, householdID, listID string) (*GroceryList, error) {
	if strings.TrimSpace(listID) == "" {
		return nil, common.ErrInvalidRequest.WithMessage("list id is required")
	}
	list, err := s.lists.Get(ctx, householdID, listID)
	if err != nil {
		return nil, mapRepoError(err, common.ErrListNotFound)
	}
	return list, nil
}

// authorize 每個操作前先確認操作者是家庭成員
func (s *Service) authorize(ctx context.Context, householdID, actorID string) error {
	if strings.TrimSpace(householdID) == "" {
		return common.ErrInvalidRequest.WithMessage("household id is required")
	}
	if strings.TrimSpace(actorID) == "" {
		return common.ErrInvalidRequest.WithMessage("actor id is required")
	}

	ok, err := s.members.IsMember(ctx, householdID, actorID)
	if err != nil {
		common.LogError("Membership check failed",
			zap.String("household_id", householdID),
			zap.Error(err),
		)
		return common.ErrInternalError.WithErr(err)
	}
	if !ok {
		common.LogWarn("Non-member access denied",
			zap.String("household_id", householdID),
			zap.String("actor_id", actorID),
		)
		return common.ErrNotMember
	}
	return nil
}

func (s *Service) validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return common.ErrInvalidDateRange.WithMessage("start_date and end_date are required")
	}
	if to.Before(from) {
		return common.ErrInvalidDateRange.WithMessage("end_date must not be before start_date")
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > s.maxRangeDays {
		return common.ErrInvalidDateRange.WithMessage(
			fmt.Sprintf("date range spans %d days, maximum is %d", days, s.maxRangeDays))
	}
	return nil
}

// publish 發布失敗只記錄，不影響已完成的變更
func (s *Service) publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.recorder.PublishFailed(event.Type)
		common.LogWarn("Failed to publish household event",
			zap.String("type", event.Type),
			zap.String("household_id", event.HouseholdID),
			zap.Error(err),
		)
	}
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// mapRepoError 將儲存層錯誤轉為 API 錯誤
func mapRepoError(err error, notFound *common.CustomError) error {
	var ce *common.CustomError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, ErrNotFound):
		return notFound.WithErr(err)
	case errors.Is(err, ErrConflict):
		return common.ErrConflict.WithErr(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.WithErr(err)
	default:
		return common.ErrInternalError.WithErr(err)
	}
}
