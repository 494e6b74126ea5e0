package classifier

import (
	"embed"
	"strings"

	"github.com/anprowh/LanguageCorrector/internal/layout"
)

//go:embed data/*.txt
var seedFS embed.FS

// SeedCorpus returns the embedded common words for a built-in layout, or nil.
func SeedCorpus(id layout.ID) []string {
	data, err := seedFS.ReadFile("data/" + string(id) + ".txt")
	if err != nil {
		return nil
	}
	return strings.Fields(string(data))
}
