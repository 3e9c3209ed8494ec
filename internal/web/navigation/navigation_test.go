package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("Users", "admin", "user")

	assert.Equal(t, "Users", ctx.PageTitle)
	assert.Equal(t, "admin", ctx.ActiveSection)
	assert.Equal(t, "user", ctx.ActivePage)
	assert.NotNil(t, ctx.Breadcrumbs)
	assert.Empty(t, ctx.Breadcrumbs)
}

func TestContext_AddBreadcrumb(t *testing.T) {
	ctx := NewContext("Users", "admin", "user")

	ctx.AddBreadcrumb("Home", "/dashboard", false)
	assert.Len(t, ctx.Breadcrumbs, 1)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "/dashboard", ctx.Breadcrumbs[0].URL)
	assert.False(t, ctx.Breadcrumbs[0].Active)

	ctx.AddBreadcrumb("Users", "/admin/user", true)
	assert.Len(t, ctx.Breadcrumbs, 2)
	assert.True(t, ctx.Breadcrumbs[1].Active)
}

func TestContext_AddBreadcrumb_Chaining(t *testing.T) {
	ctx := NewContext("Edit User", "admin", "user").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Users", "/admin/user", false).
		AddBreadcrumb("Edit", "/admin/user/1/edit", true)

	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "Users", ctx.Breadcrumbs[1].Title)
	assert.Equal(t, "Edit", ctx.Breadcrumbs[2].Title)
	assert.True(t, ctx.Breadcrumbs[2].Active)
}

func TestContext_IsActive(t *testing.T) {
	ctx := NewContext("Settings", "admin", "settings")

	assert.True(t, ctx.IsActive("admin", "settings"))
	assert.False(t, ctx.IsActive("dashboard", "settings"))
	assert.False(t, ctx.IsActive("admin", "user"))
	assert.False(t, ctx.IsActive("dashboard", "main"))
}

func TestContext_IsSectionActive(t *testing.T) {
	ctx := NewContext("Settings", "admin", "settings")

	assert.True(t, ctx.IsSectionActive("admin"))
	assert.False(t, ctx.IsSectionActive("dashboard"))
}
