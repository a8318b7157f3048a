package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"flatten/pkg/exclusions"
	"flatten/pkg/templates"
)

const listChunkSize = 5

// renderTemplateList prints every cached template key grouped by category.
func renderTemplateList(w io.Writer, manager *templates.Manager) {
	keys := manager.Keys()
	fmt.Fprintf(w, "Available exclusion templates (%d total):\n\n", len(keys))

	byCategory := make(map[string][]string)
	for _, key := range keys {
		category := templates.Category(key)
		byCategory[category] = append(byCategory[category], key)
	}

	heading := color.New(color.FgCyan, color.Bold)
	for _, category := range templates.CategoryOrder {
		group := byCategory[category]
		if len(group) == 0 {
			continue
		}
		heading.Fprintf(w, "%s:\n", category)
		for i := 0; i < len(group); i += listChunkSize {
			end := i + listChunkSize
			if end > len(group) {
				end = len(group)
			}
			fmt.Fprintf(w, "  %s\n", strings.Join(group[i:end], ", "))
		}
		fmt.Fprintln(w)
	}
}

// renderEnabled prints the currently enabled template keys.
func renderEnabled(w io.Writer, engine *exclusions.Engine) {
	enabled := engine.Enabled()
	if len(enabled) == 0 {
		fmt.Fprintln(w, "No templates currently enabled.")
		return
	}
	fmt.Fprintf(w, "Enabled templates (%d):\n", len(enabled))
	for _, key := range enabled {
		fmt.Fprintf(w, "  - %s\n", key)
	}
}
