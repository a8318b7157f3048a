package templates

// Category groups template keys for listing output. Keys absent from the
// table fall into CategoryOther.
const (
	CategoryLanguages = "Languages"
	CategoryIDEs      = "IDEs"
	CategoryPlatforms = "Platforms"
	CategoryEditors   = "Editors"
	CategoryOther     = "Other"
)

// CategoryOrder is the display order for the listing command.
var CategoryOrder = []string{
	CategoryLanguages,
	CategoryIDEs,
	CategoryPlatforms,
	CategoryEditors,
	CategoryOther,
}

var categoryByKey = map[string]string{
	"c":           CategoryLanguages,
	"c++":         CategoryLanguages,
	"csharp":      CategoryLanguages,
	"dart":        CategoryLanguages,
	"elixir":      CategoryLanguages,
	"erlang":      CategoryLanguages,
	"go":          CategoryLanguages,
	"haskell":     CategoryLanguages,
	"java":        CategoryLanguages,
	"kotlin":      CategoryLanguages,
	"node":        CategoryLanguages,
	"objective-c": CategoryLanguages,
	"perl":        CategoryLanguages,
	"php":         CategoryLanguages,
	"python":      CategoryLanguages,
	"ruby":        CategoryLanguages,
	"rust":        CategoryLanguages,
	"scala":       CategoryLanguages,
	"swift":       CategoryLanguages,

	"clion":        CategoryIDEs,
	"eclipse":      CategoryIDEs,
	"intellij":     CategoryIDEs,
	"jetbrains":    CategoryIDEs,
	"netbeans":     CategoryIDEs,
	"pycharm":      CategoryIDEs,
	"rider":        CategoryIDEs,
	"visualstudio": CategoryIDEs,
	"webstorm":     CategoryIDEs,
	"xcode":        CategoryIDEs,

	"android": CategoryPlatforms,
	"gradle":  CategoryPlatforms,
	"linux":   CategoryPlatforms,
	"macos":   CategoryPlatforms,
	"maven":   CategoryPlatforms,
	"unity":   CategoryPlatforms,
	"windows": CategoryPlatforms,

	"emacs":            CategoryEditors,
	"notepadpp":        CategoryEditors,
	"sublimetext":      CategoryEditors,
	"vim":              CategoryEditors,
	"visualstudiocode": CategoryEditors,
}

// Category returns the listing category for a template key.
func Category(key string) string {
	if category, ok := categoryByKey[key]; ok {
		return category
	}
	return CategoryOther
}
