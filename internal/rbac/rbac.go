package rbac

import "github.com/testimonial-hub/backend/internal/models"

// Permission constants
const (
	PermViewTestimonials  = "view_testimonials"
	PermReviewTestimonial = "review_testimonial"
	PermDeleteTestimonial = "delete_testimonial"
	PermManageCampaign    = "manage_campaign"
	PermManageBusiness    = "manage_business"
)

// RolePermissions defines what each business role can do.
var RolePermissions = map[string][]string{
	models.RoleOwner: {
		PermViewTestimonials, PermReviewTestimonial, PermDeleteTestimonial,
		PermManageCampaign, PermManageBusiness,
	},
	models.RoleEditor: {
		PermViewTestimonials, PermReviewTestimonial, PermManageCampaign,
		// Editor CANNOT: PermDeleteTestimonial, PermManageBusiness
	},
	models.RoleViewer: {
		PermViewTestimonials,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsDestructive reports whether permission can remove customer media (owner-only).
func IsDestructive(permission string) bool {
	return permission == PermDeleteTestimonial || permission == PermManageBusiness
}

func IsValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
