/*
Package ports defines the driven ports (interfaces) for the talkweave generator.

These interfaces decouple the traversal core from data sources, so the same
resolver runs on top of an in-memory dataset, a Loam repository or a cached
remote store.

# Key Interfaces

  - NodeStore: point lookups of dialogue nodes and the reverse edge relation.
  - TalkStore: point lookups of talk units.
  - TalkByInitialNode, TalkDialogueLister, TextSearcher: optional capabilities.
  - VoiceSource, AvatarDirectory: lookups used while rendering.
*/
package ports
