package wikitext

import (
	"strings"

	"github.com/aretw0/talkweave/pkg/domain"
)

// voicePrefix builds the {{A|file}} audio prefix for a line. The male variant
// comes first, then the female one, then any ungendered files. Only the first
// file is shown unless the line is gender dependent; the others are kept as
// wikitext comments.
func voicePrefix(items []domain.VoiceItem, text string, kind domain.RoleKind) string {
	var files []string
	for _, g := range []string{"M", "F"} {
		for _, it := range items {
			if it.Gender == g {
				files = append(files, it.File)
				break
			}
		}
	}
	for _, it := range items {
		if it.Gender == "" {
			files = append(files, it.File)
		}
	}
	if len(files) == 0 {
		return ""
	}

	var sb strings.Builder
	showAll := text != "" && (strings.Contains(strings.ToUpper(text), "{{MC") ||
		kind == domain.RolePlayer || kind == domain.RoleMateAvatar)
	for i, f := range files {
		switch {
		case i == 0:
			sb.WriteString("{{A|" + f + "}}")
		case showAll:
			sb.WriteString(" {{A|" + f + "}}")
		default:
			sb.WriteString("<!--{{A|" + f + "}}-->")
		}
	}
	sb.WriteString(" ")
	return sb.String()
}
