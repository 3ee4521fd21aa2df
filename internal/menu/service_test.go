package menu_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ptec-dev/audit-management/internal/menu"
)

func TestMenuService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Menu Service Suite")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRepository implements menu.RepositoryAPI for testing
type MockRepository struct {
	items      []*menu.MenuItem
	shouldFail bool
	failError  error
}

func (m *MockRepository) GetAll() ([]*menu.MenuItem, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.items, nil
}

func (m *MockRepository) GetForRole(roleID int64) ([]*menu.MenuItem, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.items, nil
}

func (m *MockRepository) GetByPath(roleID int64, path string) (*menu.MenuItem, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, item := range m.items {
		if item.Path == path {
			return item, nil
		}
	}
	return nil, nil
}

func ptr(v int64) *int64 { return &v }

func item(id int64, name string, parent *int64, order int, canView bool) *menu.MenuItem {
	return &menu.MenuItem{
		MenuID:   id,
		Name:     name,
		Path:     "/" + name,
		ParentID: parent,
		OrderNo:  order,
		IsActive: true,
		CanView:  canView,
	}
}

var _ = Describe("Menu Service", func() {
	var (
		repo *MockRepository
		svc  *menu.Service
	)

	BeforeEach(func() {
		repo = &MockRepository{}
		svc = menu.NewService(repo, testLogger())
	})

	Describe("GetMenusForRole", func() {
		It("keeps viewable entries and drops hidden ones", func() {
			repo.items = []*menu.MenuItem{
				item(1, "dashboard", nil, 1, true),
				item(2, "admin", nil, 2, false),
			}

			menus, err := svc.GetMenusForRole(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(menus).To(HaveLen(1))
			Expect(menus[0].Name).To(Equal("dashboard"))
		})

		It("propagates repository errors", func() {
			repo.shouldFail = true
			repo.failError = errors.New("db down")

			_, err := svc.GetMenusForRole(2)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetMenuTreeForRole", func() {
		It("assembles children under their parents in order", func() {
			repo.items = []*menu.MenuItem{
				item(1, "audit", nil, 2, true),
				item(2, "dashboard", nil, 1, true),
				item(3, "report", ptr(1), 2, true),
				item(4, "plan", ptr(1), 1, true),
			}

			tree, err := svc.GetMenuTreeForRole(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(tree).To(HaveLen(2))
			Expect(tree[0].Name).To(Equal("dashboard"))
			Expect(tree[1].Name).To(Equal("audit"))
			Expect(tree[1].Children).To(HaveLen(2))
			Expect(tree[1].Children[0].Name).To(Equal("plan"))
			Expect(tree[1].Children[1].Name).To(Equal("report"))
		})

		It("hides a whole subtree when the parent is hidden", func() {
			repo.items = []*menu.MenuItem{
				item(1, "admin", nil, 1, false),
				item(2, "users", ptr(1), 1, true),
			}

			tree, err := svc.GetMenuTreeForRole(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(tree).To(BeEmpty())
		})
	})

	Describe("CheckPermission", func() {
		It("allows a viewable path", func() {
			repo.items = []*menu.MenuItem{item(1, "dashboard", nil, 1, true)}

			result, err := svc.CheckPermission(2, "/dashboard")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Allowed).To(BeTrue())
		})

		It("denies a hidden path", func() {
			repo.items = []*menu.MenuItem{item(1, "admin", nil, 1, false)}

			result, err := svc.CheckPermission(2, "/admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Allowed).To(BeFalse())
		})

		It("denies an unknown path", func() {
			result, err := svc.CheckPermission(2, "/nowhere")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Allowed).To(BeFalse())
		})
	})
})

var _ = Describe("BuildTree", func() {
	It("orders siblings by order number, then id", func() {
		tree := menu.BuildTree([]*menu.MenuItem{
			item(3, "c", nil, 2, true),
			item(1, "a", nil, 1, true),
			item(2, "b", nil, 1, true),
		})

		Expect(tree).To(HaveLen(3))
		Expect(tree[0].Name).To(Equal("a"))
		Expect(tree[1].Name).To(Equal("b"))
		Expect(tree[2].Name).To(Equal("c"))
	})

	It("drops entries whose parent is missing", func() {
		tree := menu.BuildTree([]*menu.MenuItem{
			item(1, "root", nil, 1, true),
			item(2, "orphan", ptr(99), 1, true),
		})

		Expect(tree).To(HaveLen(1))
		Expect(tree[0].Name).To(Equal("root"))
	})

	It("drops self-referencing entries", func() {
		tree := menu.BuildTree([]*menu.MenuItem{
			item(1, "root", nil, 1, true),
			item(2, "selfie", ptr(2), 1, true),
		})

		Expect(tree).To(HaveLen(1))
		Expect(tree[0].Name).To(Equal("root"))
	})

	It("drops cycles that never reach a root", func() {
		tree := menu.BuildTree([]*menu.MenuItem{
			item(1, "root", nil, 1, true),
			item(2, "x", ptr(3), 1, true),
			item(3, "y", ptr(2), 1, true),
		})

		Expect(tree).To(HaveLen(1))
		Expect(tree[0].Name).To(Equal("root"))
	})

	It("builds nested levels", func() {
		tree := menu.BuildTree([]*menu.MenuItem{
			item(1, "root", nil, 1, true),
			item(2, "mid", ptr(1), 1, true),
			item(3, "leaf", ptr(2), 1, true),
		})

		Expect(tree).To(HaveLen(1))
		Expect(tree[0].Children).To(HaveLen(1))
		Expect(tree[0].Children[0].Children).To(HaveLen(1))
		Expect(tree[0].Children[0].Children[0].Name).To(Equal("leaf"))
	})

	It("returns an empty forest for no input", func() {
		Expect(menu.BuildTree(nil)).To(BeEmpty())
	})
})
