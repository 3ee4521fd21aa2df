package menu

import (
	menuDatamodel "github.com/ptec-dev/audit-management/internal/core/datamodel/menu"
)

// MenuItem is one navigation entry joined with the role's grant. CanView
// follows the default-allow rule: a role sees a menu unless a permission
// row explicitly hides it.
type MenuItem struct {
	MenuID   int64
	Name     string
	Path     string
	Icon     string
	ParentID *int64
	OrderNo  int
	IsActive bool
	CanView  bool
}

// MenuNode is a MenuItem with its resolved children, ordered by OrderNo.
type MenuNode struct {
	MenuItem
	Children []*MenuNode
}

func (m *MenuItem) ToResponse() MenuResponse {
	return MenuResponse{
		MenuID:   m.MenuID,
		Name:     m.Name,
		Path:     m.Path,
		Icon:     m.Icon,
		ParentID: m.ParentID,
		OrderNo:  m.OrderNo,
		IsActive: m.IsActive,
		CanView:  m.CanView,
	}
}

func FromDataModel(m *menuDatamodel.MenuAudit, canView bool) *MenuItem {
	return &MenuItem{
		MenuID:   m.MenuID,
		Name:     m.Name,
		Path:     m.Path,
		Icon:     m.Icon,
		ParentID: m.ParentID,
		OrderNo:  m.OrderNo,
		IsActive: m.IsActive,
		CanView:  canView,
	}
}
