package menu

// MenuAudit is one navigation entry. parent_id is self-referencing; NULL
// marks a root.
type MenuAudit struct {
	MenuID   int64  `gorm:"primaryKey;column:menu_id"`
	Name     string `gorm:"column:name;not null"`
	Path     string `gorm:"column:path"`
	Icon     string `gorm:"column:icon"`
	ParentID *int64 `gorm:"column:parent_id"`
	OrderNo  int    `gorm:"column:order_no;default:0"`
	IsActive bool   `gorm:"column:is_active;default:true"`
}

func (MenuAudit) TableName() string {
	return "menu_audit"
}

// MenuAuditPermission is a (role, menu) grant row. Absence of a row means
// the role can view the menu; only an explicit can_view=false hides it.
type MenuAuditPermission struct {
	PermissionID int64 `gorm:"primaryKey;column:permission_id"`
	RoleID       int64 `gorm:"column:role_id;not null"`
	MenuID       int64 `gorm:"column:menu_id;not null"`
	CanView      bool  `gorm:"column:can_view;default:false"`
}

func (MenuAuditPermission) TableName() string {
	return "menu_audit_permission"
}
