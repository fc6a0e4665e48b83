package shopping

import (
	"context"
	"sync"
	"time"

	"meal-planner/internal/core/grocery"
)

var (
	_ MealRepository    = &mealRepoMock{}
	_ ListRepository    = &listRepoMock{}
	_ IngredientCatalog = &catalogMock{}
	_ MembershipChecker = &membersMock{}
	_ TxManager         = &txManagerMock{}
	_ Publisher         = &publisherMock{}
	_ Recorder          = &recorderMock{}
)

type mealRepoMock struct {
	ListWithIngredientsFunc func(ctx context.Context, householdID string, from, to time.Time) ([]Meal, error)

	calls struct {
		ListWithIngredients []struct {
			HouseholdID string
			From        time.Time
			To          time.Time
		}
	}
	lockListWithIngredients sync.RWMutex
}

func (mock *mealRepoMock) ListWithIngredients(ctx context.Context, householdID string, from, to time.Time) ([]Meal, error) {
	if mock.ListWithIngredientsFunc == nil {
		panic("mealRepoMock.ListWithIngredientsFunc: method is nil but MealRepository.ListWithIngredients was just called")
	}
	mock.lockListWithIngredients.Lock()
	mock.calls.ListWithIngredients = append(mock.calls.ListWithIngredients, struct {
		HouseholdID string
		From        time.Time
		To          time.Time
	}{householdID, from, to})
	mock.lockListWithIngredients.Unlock()
	return mock.ListWithIngredientsFunc(ctx, householdID, from, to)
}

func (mock *mealRepoMock) ListWithIngredientsCalls() []struct {
	HouseholdID string
	From        time.Time
	To          time.Time
} {
	mock.lockListWithIngredients.RLock()
	defer mock.lockListWithIngredients.RUnlock()
	return mock.calls.ListWithIngredients
}

type listRepoMock struct {
	CreateFunc          func(ctx context.Context, list *GroceryList) error
	GetFunc             func(ctx context.Context, householdID, listID string) (*GroceryList, error)
	ListByHouseholdFunc func(ctx context.Context, householdID string) ([]GroceryList, error)
	DeleteFunc          func(ctx context.Context, householdID, listID string) error
	DeleteItemFunc      func(ctx context.Context, listID, itemID string) error
	TogglePurchasedFunc func(ctx context.Context, listID, itemID, actorID string, now time.Time) (*grocery.Item, error)

	mu    sync.RWMutex
	calls struct {
		Create          []*GroceryList
		Get             []string
		Delete          []string
		DeleteItem      []string
		TogglePurchased []struct {
			ListID  string
			ItemID  string
			ActorID string
			Now     time.Time
		}
	}
}

func (mock *listRepoMock) Create(ctx context.Context, list *GroceryList) error {
	if mock.CreateFunc == nil {
		panic("listRepoMock.CreateFunc: method is nil but ListRepository.Create was just called")
	}
	mock.mu.Lock()
	mock.calls.Create = append(mock.calls.Create, list)
	mock.mu.Unlock()
	return mock.CreateFunc(ctx, list)
}

func (mock *listRepoMock) CreateCalls() []*GroceryList {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Create
}

func (mock *listRepoMock) Get(ctx context.Context, householdID, listID string) (*GroceryList, error) {
	if mock.GetFunc == nil {
		panic("listRepoMock.GetFunc: method is nil but ListRepository.Get was just called")
	}
	mock.mu.Lock()
	mock.calls.Get = append(mock.calls.Get, listID)
	mock.mu.Unlock()
	return mock.GetFunc(ctx, householdID, listID)
}

func (mock *listRepoMock) ListByHousehold(ctx context.Context, householdID string) ([]GroceryList, error) {
	if mock.ListByHouseholdFunc == nil {
		panic("listRepoMock.ListByHouseholdFunc: method is nil but ListRepository.ListByHousehold was just called")
	}
	return mock.ListByHouseholdFunc(ctx, householdID)
}

func (mock *listRepoMock) Delete(ctx context.Context, householdID, listID string) error {
	if mock.DeleteFunc == nil {
		panic("listRepoMock.DeleteFunc: method is nil but ListRepository.Delete was just called")
	}
	mock.mu.Lock()
	mock.calls.Delete = append(mock.calls.Delete, listID)
	mock.mu.Unlock()
	return mock.DeleteFunc(ctx, householdID, listID)
}

func (mock *listRepoMock) DeleteItem(ctx context.Context, listID, itemID string) error {
	if mock.DeleteItemFunc == nil {
		panic("listRepoMock.DeleteItemFunc: method is nil but ListRepository.DeleteItem was just called")
	}
	mock.mu.Lock()
	mock.calls.DeleteItem = append(mock.calls.DeleteItem, itemID)
	mock.mu.Unlock()
	return mock.DeleteItemFunc(ctx, listID, itemID)
}

func (mock *listRepoMock) DeleteItemCalls() []string {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.DeleteItem
}

func (mock *listRepoMock) TogglePurchased(ctx context.Context, listID, itemID, actorID string, now time.Time) (*grocery.Item, error) {
	if mock.TogglePurchasedFunc == nil {
		panic("listRepoMock.TogglePurchasedFunc: method is nil but ListRepository.TogglePurchased was just called")
	}
	mock.mu.Lock()
	mock.calls.TogglePurchased = append(mock.calls.TogglePurchased, struct {
		ListID  string
		ItemID  string
		ActorID string
		Now     time.Time
	}{listID, itemID, actorID, now})
	mock.mu.Unlock()
	return mock.TogglePurchasedFunc(ctx, listID, itemID, actorID, now)
}

func (mock *listRepoMock) TogglePurchasedCalls() []struct {
	ListID  string
	ItemID  string
	ActorID string
	Now     time.Time
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.TogglePurchased
}

type catalogMock struct {
	FindOrCreateFunc func(ctx context.Context, name string) (string, error)

	mu    sync.RWMutex
	calls []string
}

func (mock *catalogMock) FindOrCreate(ctx context.Context, name string) (string, error) {
	if mock.FindOrCreateFunc == nil {
		panic("catalogMock.FindOrCreateFunc: method is nil but IngredientCatalog.FindOrCreate was just called")
	}
	mock.mu.Lock()
	mock.calls = append(mock.calls, name)
	mock.mu.Unlock()
	return mock.FindOrCreateFunc(ctx, name)
}

func (mock *catalogMock) FindOrCreateCalls() []string {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls
}

type membersMock struct {
	IsMemberFunc func(ctx context.Context, householdID, memberID string) (bool, error)
}

func (mock *membersMock) IsMember(ctx context.Context, householdID, memberID string) (bool, error) {
	if mock.IsMemberFunc == nil {
		panic("membersMock.IsMemberFunc: method is nil but MembershipChecker.IsMember was just called")
	}
	return mock.IsMemberFunc(ctx, householdID, memberID)
}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but TxManager.RunInTx was just called")
	}
	return mock.RunInTxFunc(ctx, fn)
}

type publisherMock struct {
	PublishFunc func(ctx context.Context, event Event) error

	mu    sync.RWMutex
	calls []Event
}

func (mock *publisherMock) Publish(ctx context.Context, event Event) error {
	mock.mu.Lock()
	mock.calls = append(mock.calls, event)
	mock.mu.Unlock()
	if mock.PublishFunc == nil {
		return nil
	}
	return mock.PublishFunc(ctx, event)
}

func (mock *publisherMock) PublishCalls() []Event {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls
}

type recorderMock struct {
	mu            sync.Mutex
	generated     []int
	toggled       []bool
	publishFailed []string
}

func (r *recorderMock) ListGenerated(items int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generated = append(r.generated, items)
}

func (r *recorderMock) ItemToggled(purchased bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toggled = append(r.toggled, purchased)
}

func (r *recorderMock) PublishFailed(eventType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishFailed = append(r.publishFailed, eventType)
}
