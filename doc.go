/*
Package talkweave turns game dialogue graphs into branch-structured wiki transcripts.

Dialogue is stored as a directed graph: every line points to zero, one or many next lines, and lines are grouped into talk units that link to follow-up units. talkweave walks that graph, rebuilds the options, rejoins and loops a player actually sees, and writes them as depth-indented wikitext.

# Concept

The engine is split the same way the data is:

  - Dialogue walk: a forward walk from a start line produces a domain.Branch (spine, forks, rejoins, loops).
  - Talk graph: talk units are expanded once per run, with follow-ups nested under their parent and repeated units replaced by placeholders.
  - Traceback: any line can be traced back to the first lines of its section.
  - Sections: every expanded talk becomes a domain.SectionResult with metadata and rendered text.

Storage is behind the narrow interfaces of package ports, so the same generator runs over an in-memory dataset, a Markdown repository or a Redis-cached store.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/talkweave"
		"github.com/aretw0/talkweave/pkg/adapters/memory"
	)

	func main() {
		store, err := memory.LoadFile("dialogue.yaml")
		if err != nil {
			log.Fatal(err)
		}

		gen := talkweave.New(store, store)
		res, err := gen.GenerateTalks(context.Background(), 1001)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res.String(true))
	}
*/
package talkweave
