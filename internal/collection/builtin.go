package collection

import "github.com/cadencehq/console/internal/filter"

// Builtin returns the schemas shipped with the console: the core resources
// operators manage day to day. Deployment-specific collections are added on
// top via CUE definition files (see LoadDir).
func Builtin() []*Schema {
	return []*Schema{
		usersSchema(),
		familiesSchema(),
		contentSchema(),
		plansSchema(),
	}
}

func usersSchema() *Schema {
	return &Schema{
		ID:          "users",
		Title:       "Users",
		Description: "Registered user accounts",
		APIEndpoint: "/admin/users",
		ResponseKey: "users",
		Columns: []Column{
			{ID: "name", Label: "Name", Accessor: Derived(func(r Record) any {
				first := Stringify(r["first_name"])
				last := Stringify(r["last_name"])
				if first == "" && last == "" {
					return Stringify(r["email"])
				}
				return first + " " + last
			}), Width: "220px", Sortable: true},
			{ID: "email", Label: "Email", Accessor: Path("email"), Sortable: true},
			{ID: "role", Label: "Role", Accessor: Path("role")},
			{ID: "status", Label: "Status", Accessor: Path("status")},
			{ID: "created", Label: "Joined", Accessor: Path("created_at"), Width: "140px", Sortable: true},
		},
		Fields: []Field{
			{Key: "email", Label: "Email", Type: FieldText, Required: true, Placeholder: "person@example.com"},
			{Key: "first_name", Label: "First name", Type: FieldText},
			{Key: "last_name", Label: "Last name", Type: FieldText},
			{Key: "role", Label: "Role", Type: FieldSelect, Options: []Option{
				{Value: "member", Label: "Member"},
				{Value: "caregiver", Label: "Caregiver"},
				{Value: "admin", Label: "Administrator"},
			}, Default: "member"},
			{Key: "active", Label: "Active", Type: FieldBoolean, Default: true},
		},
		Filters: []filter.Def{
			{ID: "status", Label: "Status", Type: filter.TypeSelect},
			{ID: "role", Label: "Role", Type: filter.TypeMultiSelect},
			{ID: "joined", Label: "Joined", Type: filter.TypeDateRange, Field: "created_at"},
		},
		CanCreate: true,
		CanUpdate: true,
		CanDelete: true,
	}
}

func familiesSchema() *Schema {
	return &Schema{
		ID:          "families",
		Title:       "Families",
		Description: "Family groups and their membership",
		APIEndpoint: "/admin/families",
		Columns: []Column{
			{ID: "name", Label: "Family", Accessor: Path("name"), Sortable: true},
			{ID: "members", Label: "Members", Accessor: Path("member_count"), Width: "100px"},
			{ID: "plan", Label: "Plan", Accessor: Path("plan.name")},
			{ID: "created", Label: "Created", Accessor: Path("created_at"), Sortable: true},
		},
		Fields: []Field{
			{Key: "name", Label: "Family name", Type: FieldText, Required: true},
			{Key: "max_members", Label: "Member limit", Type: FieldNumber, Default: float64(6)},
			{Key: "trial", Label: "Trial", Type: FieldBoolean},
		},
		Filters: []filter.Def{
			{ID: "plan", Label: "Plan", Type: filter.TypeSelect, Field: "plan.id"},
			{ID: "members", Label: "Member count", Type: filter.TypeNumber, Field: "member_count"},
		},
		CanCreate: true,
		CanUpdate: true,
		CanDelete: true,
	}
}

func contentSchema() *Schema {
	return &Schema{
		ID:          "content",
		Title:       "Content",
		Description: "Published and draft content items",
		APIEndpoint: "/admin/content",
		ResponseKey: "items",
		Columns: []Column{
			{ID: "title", Label: "Title", Accessor: Path("title"), Sortable: true},
			{ID: "kind", Label: "Kind", Accessor: Path("kind"), Width: "120px"},
			{ID: "status", Label: "Status", Accessor: Path("status"), Width: "120px"},
			{ID: "published", Label: "Published", Accessor: Path("published_at"), Sortable: true},
		},
		Fields: []Field{
			{Key: "title", Label: "Title", Type: FieldText, Required: true},
			{Key: "kind", Label: "Kind", Type: FieldSelect, Options: []Option{
				{Value: "article", Label: "Article"},
				{Value: "video", Label: "Video"},
				{Value: "exercise", Label: "Exercise"},
			}},
			{Key: "published_at", Label: "Publish date", Type: FieldDate},
			{Key: "metadata", Label: "Metadata", Type: FieldJSON, Placeholder: `{"tags": []}`},
		},
		Filters: []filter.Def{
			{ID: "status", Label: "Status", Type: filter.TypeSelect},
			{ID: "kind", Label: "Kind", Type: filter.TypeMultiSelect},
			{ID: "published", Label: "Published on", Type: filter.TypeDate, Field: "published_at"},
		},
		CanCreate: true,
		CanUpdate: true,
		// Content is archived upstream, never deleted from the console.
		CanDelete: false,
	}
}

func plansSchema() *Schema {
	return &Schema{
		ID:          "plans",
		Title:       "Billing plans",
		Description: "Subscription plans offered at signup",
		APIEndpoint: "/admin/plans",
		ResponseKey: "plans",
		Columns: []Column{
			{ID: "name", Label: "Plan", Accessor: Path("name"), Sortable: true},
			{ID: "price", Label: "Price", Accessor: Derived(func(r Record) any {
				cents, ok := r["price_cents"].(float64)
				if !ok {
					return ""
				}
				return Stringify(cents/100) + " " + Stringify(r["currency"])
			}), Width: "120px"},
			{ID: "interval", Label: "Interval", Accessor: Path("interval")},
			{ID: "active", Label: "Active", Accessor: Path("active"), Width: "80px"},
		},
		Fields: []Field{
			{Key: "name", Label: "Plan name", Type: FieldText, Required: true},
			{Key: "price_cents", Label: "Price (cents)", Type: FieldNumber, Required: true},
			{Key: "interval", Label: "Billing interval", Type: FieldSelect, Options: []Option{
				{Value: "month", Label: "Monthly"},
				{Value: "year", Label: "Yearly"},
			}, Default: "month"},
			{Key: "active", Label: "Active", Type: FieldBoolean, Default: true},
		},
		Filters: []filter.Def{
			{ID: "interval", Label: "Interval", Type: filter.TypeSelect},
			{ID: "active", Label: "Active", Type: filter.TypeSelect},
		},
		CanCreate: true,
		CanUpdate: true,
		CanDelete: false,
	}
}
