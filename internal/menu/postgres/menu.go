package postgres

import (
	"gorm.io/gorm"

	menuDatamodel "github.com/ptec-dev/audit-management/internal/core/datamodel/menu"
	"github.com/ptec-dev/audit-management/internal/menu"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) menu.RepositoryAPI {
	return &MenuRepository{db: db}
}

// menuWithGrant is the scan target for the permission join. CanView is a
// pointer so a missing permission row stays distinguishable from an
// explicit deny.
type menuWithGrant struct {
	menuDatamodel.MenuAudit
	CanView *bool
}

func (r *MenuRepository) GetAll() ([]*menu.MenuItem, error) {
	var rows []*menuDatamodel.MenuAudit
	err := r.db.Where("is_active = ?", true).Order("order_no ASC, menu_id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]*menu.MenuItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, menu.FromDataModel(row, true))
	}
	return items, nil
}

// GetForRole joins each active menu against the role's permission rows.
// Absence of a row means allowed; COALESCE keeps that default-allow rule
// portable between postgres and the sqlite used in tests.
func (r *MenuRepository) GetForRole(roleID int64) ([]*menu.MenuItem, error) {
	var rows []menuWithGrant
	err := r.db.
		Table("menu_audit AS m").
		Select("m.*, p.can_view").
		Joins("LEFT JOIN menu_audit_permission p ON p.menu_id = m.menu_id AND p.role_id = ?", roleID).
		Where("m.is_active = ?", true).
		Order("m.order_no ASC, m.menu_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]*menu.MenuItem, 0, len(rows))
	for _, row := range rows {
		canView := row.CanView == nil || *row.CanView
		items = append(items, menu.FromDataModel(&row.MenuAudit, canView))
	}
	return items, nil
}

// GetByPath resolves the single entry mounted at path for a permission
// check. Unlike the listing join, the check is explicit-grant: CanView is
// true only when a grant row with can_view set exists for the role.
func (r *MenuRepository) GetByPath(roleID int64, path string) (*menu.MenuItem, error) {
	var rows []menuWithGrant
	err := r.db.
		Table("menu_audit AS m").
		Select("m.*, p.can_view").
		Joins("LEFT JOIN menu_audit_permission p ON p.menu_id = m.menu_id AND p.role_id = ?", roleID).
		Where("m.is_active = ? AND m.path = ?", true, path).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	canView := row.CanView != nil && *row.CanView
	return menu.FromDataModel(&row.MenuAudit, canView), nil
}
