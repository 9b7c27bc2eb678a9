package rbac

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetRoleInheritance() ([]RoleInheritanceRow, error)
	GetRolePermissions() ([]RolePermissionRow, error)
}

type RoleInheritanceRow struct {
	Role   string
	Parent string
}

type RolePermissionRow struct {
	Role     string
	Resource string
	Action   string
}

// "staff" is not a session role, it groups what school and company share.
var (
	defaultInheritance = []RoleInheritanceRow{
		{Role: "staff", Parent: "student"},
		{Role: "school", Parent: "staff"},
		{Role: "company", Parent: "staff"},
	}

	defaultPermissions = []RolePermissionRow{
		{Role: "student", Resource: "attendance", Action: "read"},
		{Role: "student", Resource: "evaluation", Action: "read"},
		{Role: "student", Resource: "report", Action: "read"},
		{Role: "student", Resource: "report", Action: "export"},
		{Role: "staff", Resource: "attendance", Action: "write"},
		{Role: "staff", Resource: "evaluation", Action: "create"},
		{Role: "staff", Resource: "student", Action: "read"},
		{Role: "school", Resource: "student", Action: "create"},
	}
)

type staticRepository struct{}

// NewStaticRepository serves the built-in policy.
func NewStaticRepository() Repository {
	return staticRepository{}
}

func (staticRepository) GetRoleInheritance() ([]RoleInheritanceRow, error) {
	out := make([]RoleInheritanceRow, len(defaultInheritance))
	copy(out, defaultInheritance)
	return out, nil
}

func (staticRepository) GetRolePermissions() ([]RolePermissionRow, error) {
	out := make([]RolePermissionRow, len(defaultPermissions))
	copy(out, defaultPermissions)
	return out, nil
}
