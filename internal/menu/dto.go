package menu

// MenuResponse is the wire shape of a menu entry. Children is only
// populated on tree endpoints.
type MenuResponse struct {
	MenuID   int64          `json:"menuId"`
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	Icon     string         `json:"icon"`
	ParentID *int64         `json:"parentId"`
	OrderNo  int            `json:"orderNo"`
	IsActive bool           `json:"isActive"`
	CanView  bool           `json:"canView"`
	Children []MenuResponse `json:"children,omitempty"`
}

type CheckPermissionResponse struct {
	Allowed bool   `json:"allowed"`
	Path    string `json:"path"`
	RoleID  int64  `json:"roleId"`
}
