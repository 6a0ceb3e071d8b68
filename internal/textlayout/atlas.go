/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"gorichtext/internal/geom"
)

// Atlas knows the natural frame size of every inline image animation.
type Atlas struct {
	mu    sync.RWMutex
	sizes map[string]geom.Size
}

func NewAtlas() *Atlas { return &Atlas{sizes: map[string]geom.Size{}} }

// Add registers anim with a fixed frame size.
func (a *Atlas) Add(anim string, size geom.Size) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sizes == nil {
		a.sizes = map[string]geom.Size{}
	}
	a.sizes[anim] = size
}

// Size returns the frame size of anim.
func (a *Atlas) Size(anim string) (geom.Size, error) {
	if a != nil {
		a.mu.RLock()
		s, ok := a.sizes[anim]
		a.mu.RUnlock()
		if ok {
			return s, nil
		}
	}
	return geom.Size{}, fmt.Errorf("%w: %q", ErrUnknownAnimation, anim)
}

// Names lists the registered animations, sorted.
func (a *Atlas) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.sizes))
	for k := range a.sizes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadReader registers anim with the size read from an image header.
func (a *Atlas) LoadReader(anim string, r io.Reader) error {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return fmt.Errorf("animation %q: %w", anim, err)
	}
	a.Add(anim, geom.Size{W: float32(cfg.Width), H: float32(cfg.Height)})
	return nil
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true}

// LoadDir registers the images of dir. A file becomes an animation named
// after the file without extension; a subdirectory becomes an animation
// named after the directory, sized by its first frame in name order.
// It returns the number of animations registered.
func (a *Atlas) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read atlas dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			frame, err := firstFrame(path)
			if err != nil {
				return n, err
			}
			if frame == "" {
				continue
			}
			if err := a.loadFile(e.Name(), frame); err != nil {
				return n, err
			}
			n++
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !imageExts[ext] {
			continue
		}
		if err := a.loadFile(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())), path); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (a *Atlas) loadFile(anim, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()
	return a.LoadReader(anim, f)
}

func firstFrame(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read animation dir: %w", err)
	}
	// ReadDir sorts by name
	for _, e := range entries {
		if !e.IsDir() && imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}
