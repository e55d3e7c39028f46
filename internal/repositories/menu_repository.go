package repositories

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/HA2077/SmartChef/models"
	"github.com/HA2077/SmartChef/pkg/logger"
)

// MenuRepositoryInterface exposes the read-only catalog consulted while
// composing orders. Catalog management lives outside this system.
type MenuRepositoryInterface interface {
	GetAll() ([]*models.MenuItem, error)
	GetAvailable() ([]*models.MenuItem, error)
	GetByID(id string) (*models.MenuItem, error)
}

// MenuRepository reads the menu from a JSON file. The file is reloaded
// on every call so catalog edits made by other tooling show up at the
// next poll.
type MenuRepository struct {
	mutex        sync.Mutex
	logger       *logger.Logger
	dataFilePath string
}

// NewMenuRepository creates a menu repository rooted at dataDir.
func NewMenuRepository(log *logger.Logger, dataDir string) *MenuRepository {
	return &MenuRepository{
		logger:       log.WithComponent("menu_repository"),
		dataFilePath: filepath.Join(dataDir, "menu.json"),
	}
}

// GetAll retrieves every catalog item, sorted by name.
func (r *MenuRepository) GetAll() ([]*models.MenuItem, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	items, err := r.loadLocked()
	if err != nil {
		r.logger.Error("Failed to load menu", "error", err)
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	r.logger.Debug("Retrieved menu items", "count", len(items))
	return items, nil
}

// GetAvailable retrieves catalog items currently offered.
func (r *MenuRepository) GetAvailable() ([]*models.MenuItem, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	items := make([]*models.MenuItem, 0, len(all))
	for _, item := range all {
		if item.Available {
			items = append(items, item)
		}
	}
	return items, nil
}

// GetByID retrieves a single catalog item.
func (r *MenuRepository) GetByID(id string) (*models.MenuItem, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	items, err := r.loadLocked()
	if err != nil {
		r.logger.Error("Failed to load menu", "error", err)
		return nil, err
	}

	for _, item := range items {
		if item.ID == id {
			found := *item
			return &found, nil
		}
	}
	r.logger.Warn("Menu item not found", "product_id", id)
	return nil, &models.NotFoundError{Resource: "menu item", ID: id}
}

func (r *MenuRepository) loadLocked() ([]*models.MenuItem, error) {
	data, err := os.ReadFile(r.dataFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*models.MenuItem{}, nil
		}
		return nil, &models.PersistenceError{Op: "load menu", Err: err}
	}
	if len(data) == 0 {
		return []*models.MenuItem{}, nil
	}

	items := []*models.MenuItem{}
	if err := json.Unmarshal(data, &items); err != nil {
		r.logger.Warn("Malformed menu data on load, serving empty catalog", "error", err)
		return []*models.MenuItem{}, nil
	}
	return items, nil
}
