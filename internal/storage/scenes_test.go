/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"testing"

	"screenwriter/internal/fountain"
)

func TestSceneRegistrySync(t *testing.T) {
	ix := openTestIndex(t)
	reg := ix.Scenes(context.Background())

	els := fountain.ClassifyText("INT. HOUSE - DAY\n\nINT. HOUSE - DAY\n\nEXT. PARK - NIGHT\n")
	n, err := fountain.SyncScenes(els, reg)
	if err != nil || n != 2 {
		t.Fatalf("SyncScenes = %d, %v; want 2", n, err)
	}
	n, err = fountain.SyncScenes(els, reg)
	if err != nil || n != 0 {
		t.Fatalf("second SyncScenes = %d, %v; want 0", n, err)
	}
	names, err := reg.Names()
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if len(names) != 2 || names[0] != "INT. HOUSE - DAY" || names[1] != "EXT. PARK - NIGHT" {
		t.Fatalf("Names = %v", names)
	}
}

func TestSceneRegistryIsCaseSensitive(t *testing.T) {
	ix := openTestIndex(t)
	reg := ix.Scenes(context.Background())
	if err := reg.Add("INT. HOUSE - DAY"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	ok, err := reg.Has("int. house - day")
	if err != nil || ok {
		t.Fatalf("Has(lower) = %v, %v", ok, err)
	}
	ok, err = reg.Has("INT. HOUSE - DAY")
	if err != nil || !ok {
		t.Fatalf("Has(exact) = %v, %v", ok, err)
	}
	if err := reg.Add("INT. HOUSE - DAY"); err == nil {
		t.Fatalf("expected duplicate insert to fail")
	}
}

func TestSceneRegistryNoHeaders(t *testing.T) {
	ix := openTestIndex(t)
	n, err := fountain.SyncScenes(fountain.ClassifyText("JOHN\nHi.\n"), ix.Scenes(context.Background()))
	if !errors.Is(err, fountain.ErrNoHeadersFound) || n != 0 {
		t.Fatalf("SyncScenes = %d, %v", n, err)
	}
}

func TestSceneRegistryCancelledContext(t *testing.T) {
	ix := openTestIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ix.Scenes(ctx).Has("INT. HOUSE - DAY"); err == nil {
		t.Fatalf("expected error with cancelled context")
	}
}
