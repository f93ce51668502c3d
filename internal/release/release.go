// Package release defines the three release categories the service
// announces and the validation that turns raw webhook payloads into typed
// release events. Events are only produced by the Validate functions here,
// so everything downstream can trust their fields.
package release

// Category identifies which part of the Raft modding ecosystem a release
// belongs to. Each category announces to its own Discord channel and keeps
// its own mention cooldown slot.
type Category string

const (
	// CategoryMod is a version release of a mod hosted on RaftModding.
	CategoryMod Category = "mod"
	// CategoryLauncher is a release of the RML Launcher desktop app.
	CategoryLauncher Category = "launcher"
	// CategoryLoader is a release of the Raft Mod Loader.
	CategoryLoader Category = "loader"
)

// Categories returns all known release categories.
func Categories() []Category {
	return []Category{CategoryMod, CategoryLauncher, CategoryLoader}
}

// ParseCategory maps a URL path segment to a Category.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryMod, CategoryLauncher, CategoryLoader:
		return Category(s), true
	}
	return "", false
}

// Event is a validated release event of any category.
type Event interface {
	Category() Category
}

// ModRelease is a validated mod version release. Initial distinguishes the
// first release of a mod from an update to an existing one.
type ModRelease struct {
	Title       string
	Description string
	BannerURL   string
	IconURL     string
	ModURL      string
	AuthorName  string
	AuthorURL   string
	Version     string
	Changelog   string
	Initial     bool
}

// Category implements Event.
func (*ModRelease) Category() Category { return CategoryMod }

// LauncherRelease is a validated RML Launcher version release. The download
// link is static configuration, not part of the payload.
type LauncherRelease struct {
	Name        string
	Description string
	IconURL     string
	Version     string
	Changelog   string
}

// Category implements Event.
func (*LauncherRelease) Category() Category { return CategoryLauncher }

// LoaderRelease is a validated Raft Mod Loader version release.
type LoaderRelease struct {
	Name        string
	Description string
	IconURL     string
	SourceURL   string
	Version     string
}

// Category implements Event.
func (*LoaderRelease) Category() Category { return CategoryLoader }
