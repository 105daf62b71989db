// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package tags

import (
	"strings"

	"github.com/robprofile/robprofile/internal/models"
)

// Extract derives the tag set for item in deterministic insertion order:
// genre tags first, then keyword rules in table order, then structural
// tags. Duplicates are dropped on insertion.
func Extract(item models.ContentItem) []string {
	set := newOrderedSet()

	for _, tag := range genreTags[item.Genre] {
		set.add(tag)
	}

	text := strings.ToLower(item.Name) + " " + strings.ToLower(item.Description)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				set.add(rule.tag)
				break
			}
		}
	}

	if item.MaxPlayers >= socialMaxPlayers {
		set.add("social")
		set.add("party")
	}
	if item.Playing >= popularPlaying {
		set.add("popular")
	}

	return set.values()
}

// orderedSet is a string set preserving first-insertion order.
type orderedSet struct {
	seen  map[string]struct{}
	order []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
}

func (s *orderedSet) values() []string {
	if s.order == nil {
		return []string{}
	}
	return s.order
}
