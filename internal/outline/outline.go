/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package outline groups classified script elements into scenes and speeches.
package outline

import (
	"regexp"
	"sort"
	"strings"

	"screenwriter/internal/fountain"
)

// UntitledScene is the title given to material before the first scene header.
const UntitledScene = "Untitled"

type Outline struct {
	Scenes []Scene
}

type Scene struct {
	Title string
	// Line is the 1-based line of the header; 0 for the untitled lead-in.
	Line        int
	Speeches    []Speech
	Actions     []string
	Transitions []string
	Tags        []string
}

// Speech is one character cue with the dialogue under it.
// Character has any extension such as "(V.O.)" removed; Extension keeps it.
type Speech struct {
	Character      string
	Extension      string
	Parentheticals []string
	Text           string
	Line           int
	Tags           []string
}

type CharacterStat struct {
	Name     string
	Speeches int
	Words    int
	Scenes   int
}

var (
	reTag       = regexp.MustCompile(`(?i)@([a-z0-9_\-]+)`)
	reExtension = regexp.MustCompile(`^(.*?)\s*(\(.*\))\s*$`)
)

func extractTags(s string) []string {
	found := reTag.FindAllStringSubmatch(s, -1)
	if len(found) == 0 {
		return nil
	}
	out := make([]string, 0, len(found))
	for _, f := range found {
		out = append(out, strings.ToLower(f[1]))
	}
	return out
}

func mergeTags(dst []string, add ...string) []string {
	for _, t := range add {
		dup := false
		for _, have := range dst {
			if have == t {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, t)
		}
	}
	return dst
}

func splitCue(cue string) (name, ext string) {
	if m := reExtension.FindStringSubmatch(cue); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1]), m[2]
	}
	return strings.TrimSpace(cue), ""
}

// Build walks elements in order. Dialogue lines under one cue are joined with "\n".
func Build(elements []fountain.Element) Outline {
	o := Outline{Scenes: []Scene{}}
	cur := Scene{}
	var speech *Speech

	flush := func() {
		if cur.Title != "" || len(cur.Speeches) > 0 || len(cur.Actions) > 0 || len(cur.Transitions) > 0 {
			o.Scenes = append(o.Scenes, cur)
		}
	}
	add := func(tags []string) {
		cur.Tags = mergeTags(cur.Tags, tags...)
	}

	for _, e := range elements {
		if e.Type != fountain.Dialogue && e.Type != fountain.Parenthetical {
			speech = nil
		}
		switch e.Type {
		case fountain.Header:
			flush()
			cur = Scene{Title: fountain.SceneName(e.Content), Line: e.Line}
		case fountain.Character:
			if cur.Title == "" && len(o.Scenes) == 0 {
				cur.Title = UntitledScene
			}
			name, ext := splitCue(e.Content)
			cur.Speeches = append(cur.Speeches, Speech{Character: name, Extension: ext, Line: e.Line})
			speech = &cur.Speeches[len(cur.Speeches)-1]
		case fountain.Parenthetical:
			if speech != nil {
				speech.Parentheticals = append(speech.Parentheticals, e.Content)
			}
		case fountain.Dialogue:
			if speech == nil {
				continue
			}
			if speech.Text != "" {
				speech.Text += "\n"
			}
			speech.Text += e.Content
			tags := extractTags(e.Content)
			speech.Tags = mergeTags(speech.Tags, tags...)
			add(tags)
		case fountain.Transition:
			cur.Transitions = append(cur.Transitions, e.Content)
		default:
			if cur.Title == "" && len(o.Scenes) == 0 {
				cur.Title = UntitledScene
			}
			cur.Actions = append(cur.Actions, e.Content)
			add(extractTags(e.Content))
		}
	}
	flush()
	return o
}

// FromText classifies text and builds its outline.
func FromText(text string) Outline { return Build(fountain.ClassifyText(text)) }

// Characters counts speeches, dialogue words and scenes per character, most speeches first.
func (o Outline) Characters() []CharacterStat {
	idx := map[string]*CharacterStat{}
	var order []*CharacterStat
	for _, sc := range o.Scenes {
		seen := map[string]bool{}
		for _, sp := range sc.Speeches {
			st, ok := idx[sp.Character]
			if !ok {
				st = &CharacterStat{Name: sp.Character}
				idx[sp.Character] = st
				order = append(order, st)
			}
			st.Speeches++
			st.Words += len(strings.Fields(sp.Text))
			if !seen[sp.Character] {
				seen[sp.Character] = true
				st.Scenes++
			}
		}
	}
	out := make([]CharacterStat, 0, len(order))
	for _, st := range order {
		out = append(out, *st)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Speeches > out[j].Speeches })
	return out
}
