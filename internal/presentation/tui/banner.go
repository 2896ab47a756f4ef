package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the talkweave banner followed by version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{` _        _ _                                `, "#818cf8"},
		{`| |_ __ _| | | ____      _____  __ ___   _____`, "#a78bfa"},
		{`| __/ _' | | |/ /\ \ /\ / / _ \/ _' \ \ / / _ \`, "#c084fc"},
		{`| || (_| | |   <  \ V  V /  __/ (_| |\ V /  __/`, "#e879f9"},
		{` \__\__,_|_|_|\_\  \_/\_/ \___|\__,_| \_/ \___|`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
