package models

// Permission grants a user the ability to perform the correspondingly named
// registry operation.
type Permission string

const (
	PermissionCreate Permission = "CREATE"
	PermissionRead   Permission = "READ"
	PermissionUpdate Permission = "UPDATE"
	PermissionDelete Permission = "DELETE"
)

// Valid reports whether p is one of the known permission values.
func (p Permission) Valid() bool {
	switch p {
	case PermissionCreate, PermissionRead, PermissionUpdate, PermissionDelete:
		return true
	}
	return false
}

// HasPermission reports whether the set contains p. Pure membership, no
// hierarchy or wildcards.
func HasPermission(set []Permission, p Permission) bool {
	for _, candidate := range set {
		if candidate == p {
			return true
		}
	}
	return false
}
