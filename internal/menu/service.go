package menu

import (
	"log/slog"
	"sort"
)

type RepositoryAPI interface {
	GetAll() ([]*MenuItem, error)
	GetForRole(roleID int64) ([]*MenuItem, error)
	GetByPath(roleID int64, path string) (*MenuItem, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetAllMenus returns every active menu entry as a flat list.
func (s *Service) GetAllMenus() ([]MenuResponse, error) {
	items, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get menus from repository", "error", err)
		return nil, err
	}

	responses := make([]MenuResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, item.ToResponse())
	}
	return responses, nil
}

// GetMenusForRole returns the flat list of menus the role can view.
func (s *Service) GetMenusForRole(roleID int64) ([]MenuResponse, error) {
	items, err := s.repo.GetForRole(roleID)
	if err != nil {
		s.logger.Error("failed to get role menus from repository", "role_id", roleID, "error", err)
		return nil, err
	}

	responses := make([]MenuResponse, 0, len(items))
	for _, item := range items {
		if item.CanView {
			responses = append(responses, item.ToResponse())
		}
	}

	s.logger.Info("resolved role menus", "role_id", roleID, "count", len(responses))
	return responses, nil
}

// GetMenuTreeForRole returns the role's visible menus assembled into an
// ordered forest. Hidden entries are pruned before the build, so a hidden
// parent hides its whole subtree.
func (s *Service) GetMenuTreeForRole(roleID int64) ([]MenuResponse, error) {
	items, err := s.repo.GetForRole(roleID)
	if err != nil {
		s.logger.Error("failed to get role menus from repository", "role_id", roleID, "error", err)
		return nil, err
	}

	visible := make([]*MenuItem, 0, len(items))
	for _, item := range items {
		if item.CanView {
			visible = append(visible, item)
		}
	}

	return BuildTree(visible), nil
}

// CheckPermission answers whether the role may view the menu entry mounted
// at path. Unlike the listings, the check requires an explicit grant: an
// unknown path or a path with no grant row is denied.
func (s *Service) CheckPermission(roleID int64, path string) (*CheckPermissionResponse, error) {
	item, err := s.repo.GetByPath(roleID, path)
	if err != nil {
		s.logger.Error("failed to check menu permission", "role_id", roleID, "path", path, "error", err)
		return nil, err
	}

	allowed := item != nil && item.CanView
	return &CheckPermissionResponse{
		Allowed: allowed,
		Path:    path,
		RoleID:  roleID,
	}, nil
}

// BuildTree assembles a flat menu list into an ordered forest. Entries
// whose parent is missing from the list are dropped, and so is any cluster
// of entries that only reference each other without reaching a root: the
// build walks down from the roots, so nothing unreachable survives.
func BuildTree(items []*MenuItem) []MenuResponse {
	nodes := make(map[int64]*MenuNode, len(items))
	for _, item := range items {
		nodes[item.MenuID] = &MenuNode{MenuItem: *item}
	}

	var roots []*MenuNode
	for _, item := range items {
		node := nodes[item.MenuID]
		if item.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*item.ParentID]
		if !ok || *item.ParentID == item.MenuID {
			// orphan or self-reference
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	responses := make([]MenuResponse, 0, len(roots))
	for _, root := range roots {
		responses = append(responses, flatten(root))
	}
	return responses
}

func flatten(node *MenuNode) MenuResponse {
	resp := node.MenuItem.ToResponse()
	if len(node.Children) == 0 {
		return resp
	}

	sortNodes(node.Children)
	resp.Children = make([]MenuResponse, 0, len(node.Children))
	for _, child := range node.Children {
		resp.Children = append(resp.Children, flatten(child))
	}
	return resp
}

func sortNodes(nodes []*MenuNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].OrderNo != nodes[j].OrderNo {
			return nodes[i].OrderNo < nodes[j].OrderNo
		}
		return nodes[i].MenuID < nodes[j].MenuID
	})
}
