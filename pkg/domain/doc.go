/*
Package domain contains the core models of the talkweave generator.

It defines dialogue nodes and talk units as read from a store, the derived
branch structure produced by walking a dialogue graph, and the section tree
handed to presentation layers. This package is kept pure and free of I/O.

# Key Entities

  - DialogueNode: one line of dialogue and its successor ids.
  - Branch / Step / Fork: the reconstructed, read-only tree of a dialogue walk.
  - TalkUnit / ResolvedTalk: talk units and their expanded form.
  - SectionResult: the nested output (metadata, wikitext, children, placeholders).
*/
package domain
