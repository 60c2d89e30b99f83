/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fountain classifies and renders screenplay text written in a small subset of the
// Fountain plain-text convention. Structure is inferred from each line's own text and the
// blank/non-blank state of the two lines before it; nothing looks ahead.
//
// Supported elements: scene headers, action, character cues, dialogue, parentheticals and
// transitions. Title pages, notes, boneyard, sections, centered text, dual dialogue and emphasis
// are not recognized and fall through to action.
//
// All functions in this package are pure and safe for concurrent use.
package fountain
