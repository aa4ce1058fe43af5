package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role string
		perm string
		want bool
	}{
		{"owner", PermDeleteTestimonial, true},
		{"owner", PermManageBusiness, true},
		{"editor", PermReviewTestimonial, true},
		{"editor", PermManageCampaign, true},
		{"editor", PermDeleteTestimonial, false},
		{"viewer", PermViewTestimonials, true},
		{"viewer", PermReviewTestimonial, false},
		{"stranger", PermViewTestimonials, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.perm, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.perm); got != tt.want {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.perm, got, tt.want)
			}
		})
	}
}

func TestDestructivePermissionsAreOwnerOnly(t *testing.T) {
	for role, perms := range RolePermissions {
		for _, p := range perms {
			if IsDestructive(p) && role != "owner" {
				t.Errorf("role %s holds destructive permission %s", role, p)
			}
		}
	}
}
