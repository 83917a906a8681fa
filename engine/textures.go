package engine

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// Builtin texture keys loaded during boot.
const (
	TextureDefault = "__DEFAULT"
	TextureMissing = "__MISSING"
	TextureWhite   = "__WHITE"
)

// builtinTexture describes a placeholder texture the manager loads at boot.
type builtinTexture struct {
	key  string
	w, h int
	fill color.RGBA
}

var builtinTextures = []builtinTexture{
	{key: TextureDefault, w: 32, h: 32},
	{key: TextureMissing, w: 32, h: 32, fill: color.RGBA{0, 255, 0, 255}},
	{key: TextureWhite, w: 4, h: 4, fill: color.RGBA{255, 255, 255, 255}},
}

// BuiltinTextureSize returns the dimensions of a builtin texture key.
func BuiltinTextureSize(key string) (w, h int, ok bool) {
	for _, b := range builtinTextures {
		if b.key == key {
			return b.w, b.h, true
		}
	}
	return 0, 0, false
}

// BuiltinTextureKeys returns the keys the texture manager loads at boot.
func BuiltinTextureKeys() []string {
	keys := make([]string, len(builtinTextures))
	for i, b := range builtinTextures {
		keys[i] = b.key
	}
	return keys
}

// encodeBuiltin produces the PNG payload handed to the image loader.
func encodeBuiltin(b builtinTexture) []byte {
	img := image.NewRGBA(image.Rect(0, 0, b.w, b.h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = b.fill.R, b.fill.G, b.fill.B, b.fill.A
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// ImageLoader decodes encoded image payloads. Load must eventually call done
// exactly once unless the returned cancel function is called first.
type ImageLoader interface {
	Load(key string, data []byte, done func(img image.Image, err error)) (cancel func())
}

// DecodeLoader decodes payloads with the registered image codecs and reports
// completion before Load returns.
type DecodeLoader struct{}

// Load implements ImageLoader.
func (DecodeLoader) Load(key string, data []byte, done func(image.Image, error)) func() {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		err = fmt.Errorf("decode texture %q: %w", key, err)
	}
	done(img, err)
	return func() {}
}

// nullLoader accepts load requests and never completes them. Headless games
// have no decoding backend, so their boot-time loads stay pending.
type nullLoader struct{}

func (nullLoader) Load(string, []byte, func(image.Image, error)) func() {
	return func() {}
}

// Texture is a named image owned by the texture manager.
type Texture struct {
	Key    string
	Width  int
	Height int
	Image  *ebiten.Image
	Canvas bool // created through AddCanvas rather than decoded
}

// TextureManager owns all textures of a game and tracks the asynchronous
// loads started at boot.
type TextureManager struct {
	events   *EventEmitter
	loader   ImageLoader
	logger   *log.Logger
	textures map[string]*Texture
	pending  int
	loads    map[string]func()
	ready    bool
	booting  bool
}

func newTextureManager(events *EventEmitter, loader ImageLoader, logger *log.Logger) *TextureManager {
	tm := &TextureManager{
		events:   events,
		loader:   loader,
		logger:   logger,
		textures: make(map[string]*Texture),
		loads:    make(map[string]func()),
	}
	events.On(EventTexturesReady, func(...any) { tm.ready = true })
	return tm
}

// boot starts loading the builtin textures. EventTexturesReady fires once
// every load has settled.
func (tm *TextureManager) boot() {
	tm.booting = true
	for _, b := range builtinTextures {
		key := b.key
		tm.pending++
		settled := false
		cancel := tm.loader.Load(key, encodeBuiltin(b), func(img image.Image, err error) {
			settled = true
			tm.loadComplete(key, img, err)
		})
		if !settled {
			tm.loads[key] = cancel
		}
	}
	tm.booting = false
	tm.logger.Debug("texture boot started", "pending", tm.pending)
	tm.checkReady()
}

func (tm *TextureManager) loadComplete(key string, img image.Image, err error) {
	delete(tm.loads, key)
	if err != nil {
		tm.logger.Warn("texture load failed", "key", key, "err", err)
	} else {
		tm.AddImage(key, img)
	}
	tm.pending--
	tm.checkReady()
}

func (tm *TextureManager) checkReady() {
	if tm.pending == 0 && !tm.ready && !tm.booting {
		tm.events.Emit(EventTexturesReady)
	}
}

// Ready reports whether EventTexturesReady has been emitted.
func (tm *TextureManager) Ready() bool {
	return tm.ready
}

// Pending returns the number of boot loads that have not settled.
func (tm *TextureManager) Pending() int {
	return tm.pending
}

// ResetPending sets the pending-load counter to zero without emitting
// anything.
func (tm *TextureManager) ResetPending() {
	tm.pending = 0
}

// DetachLoads cancels every unsettled load so its completion callback can no
// longer fire, and returns the keys that were detached.
func (tm *TextureManager) DetachLoads() []string {
	keys := make([]string, 0, len(tm.loads))
	for key, cancel := range tm.loads {
		cancel()
		keys = append(keys, key)
	}
	clear(tm.loads)
	sort.Strings(keys)
	return keys
}

// Exists reports whether a texture is stored under key.
func (tm *TextureManager) Exists(key string) bool {
	_, ok := tm.textures[key]
	return ok
}

// Get returns the texture stored under key, falling back to the missing
// texture placeholder. It returns nil if neither exists.
func (tm *TextureManager) Get(key string) *Texture {
	if t, ok := tm.textures[key]; ok {
		return t
	}
	return tm.textures[TextureMissing]
}

// Keys returns the stored texture keys in sorted order.
func (tm *TextureManager) Keys() []string {
	keys := make([]string, 0, len(tm.textures))
	for k := range tm.textures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddCanvas creates a blank texture of the given size under key. If key is
// already taken the existing texture is returned unchanged.
func (tm *TextureManager) AddCanvas(key string, w, h int) *Texture {
	if t, ok := tm.textures[key]; ok {
		return t
	}
	t := &Texture{Key: key, Width: w, Height: h, Image: ebiten.NewImage(w, h), Canvas: true}
	tm.textures[key] = t
	return t
}

// AddImage stores img under key, replacing any previous texture.
func (tm *TextureManager) AddImage(key string, img image.Image) *Texture {
	tm.Remove(key)
	b := img.Bounds()
	t := &Texture{Key: key, Width: b.Dx(), Height: b.Dy(), Image: ebiten.NewImageFromImage(img)}
	tm.textures[key] = t
	return t
}

// Remove deletes and deallocates the texture stored under key.
func (tm *TextureManager) Remove(key string) {
	t, ok := tm.textures[key]
	if !ok {
		return
	}
	if t.Image != nil {
		t.Image.Deallocate()
	}
	delete(tm.textures, key)
}

func (tm *TextureManager) destroy() {
	tm.DetachLoads()
	for key := range tm.textures {
		tm.Remove(key)
	}
	tm.pending = 0
}
