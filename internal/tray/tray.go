// Package tray provides system tray functionality using getlantern/systray.
package tray

import (
	"encoding/binary"
	"sync"

	"github.com/getlantern/systray"
)

// MenuItem represents a menu item
type MenuItem struct {
	ID       int
	Title    string
	Callback func()
	item     *systray.MenuItem
}

// Tray manages the system tray icon, a read-only status line and the menu
type Tray struct {
	title   string
	tooltip string

	mu         sync.Mutex
	items      []*MenuItem
	status     string
	statusItem *systray.MenuItem

	quitCh chan struct{}
}

// New creates a new system tray
func New(title, tooltip string) *Tray {
	return &Tray{
		title:   title,
		tooltip: tooltip,
		items:   make([]*MenuItem, 0),
		quitCh:  make(chan struct{}),
	}
}

// AddMenuItem adds a menu item to the tray. It must be called before Run.
func (t *Tray) AddMenuItem(title string, callback func()) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := len(t.items)
	t.items = append(t.items, &MenuItem{
		ID:       id,
		Title:    title,
		Callback: callback,
	})
	return id
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, nil) // nil indicates separator
}

// SetStatus updates the status line shown at the top of the menu.
func (t *Tray) SetStatus(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = text
	if t.statusItem != nil {
		t.statusItem.SetTitle(text)
	}
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Run starts the tray event loop (blocks). It must be called from the main
// goroutine.
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() { close(t.quitCh) })
}

// Done is closed once the tray has exited.
func (t *Tray) Done() <-chan struct{} {
	return t.quitCh
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	systray.SetTitle(t.title)
	systray.SetTooltip(t.tooltip)
	systray.SetIcon(getIcon())

	t.mu.Lock()
	defer t.mu.Unlock()

	t.statusItem = systray.AddMenuItem(t.status, "")
	t.statusItem.Disable()
	systray.AddSeparator()

	for _, menuItem := range t.items {
		if menuItem == nil {
			systray.AddSeparator()
			continue
		}
		menuItem.item = systray.AddMenuItem(menuItem.Title, "")
		if menuItem.Callback == nil {
			continue
		}
		go func(mi *MenuItem) {
			for {
				select {
				case <-mi.item.ClickedCh:
					mi.Callback()
				case <-t.quitCh:
					return
				}
			}
		}(menuItem)
	}
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}

const iconSize = 16

// getIcon returns a 16x16 32-bit ICO: a filled square with a one pixel
// transparent margin.
func getIcon() []byte {
	const (
		headerSize = 6 + 16
		dibSize    = 40
		pixelBytes = iconSize * iconSize * 4
		maskBytes  = iconSize * 4 // 1 bit per pixel, rows padded to 32 bits
		imageSize  = dibSize + pixelBytes + maskBytes
	)
	icon := make([]byte, headerSize+imageSize)
	le := binary.LittleEndian

	// ICONDIR
	le.PutUint16(icon[2:], 1) // type: icon
	le.PutUint16(icon[4:], 1) // count

	// ICONDIRENTRY
	icon[6] = iconSize
	icon[7] = iconSize
	le.PutUint16(icon[10:], 1)  // planes
	le.PutUint16(icon[12:], 32) // bpp
	le.PutUint32(icon[14:], imageSize)
	le.PutUint32(icon[18:], headerSize)

	// BITMAPINFOHEADER, height doubled for the AND mask
	dib := icon[headerSize:]
	le.PutUint32(dib[0:], dibSize)
	le.PutUint32(dib[4:], iconSize)
	le.PutUint32(dib[8:], iconSize*2)
	le.PutUint16(dib[12:], 1)
	le.PutUint16(dib[14:], 32)
	le.PutUint32(dib[20:], pixelBytes)

	// BGRA pixels, bottom-up
	pixels := dib[dibSize:]
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			if x == 0 || y == 0 || x == iconSize-1 || y == iconSize-1 {
				continue
			}
			p := pixels[(y*iconSize+x)*4:]
			p[0], p[1], p[2], p[3] = 0xd0, 0x80, 0x20, 0xff
		}
	}
	return icon
}
