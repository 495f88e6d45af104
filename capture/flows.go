package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// Control is the UI element that triggered an action.
type Control interface {
	// SetBusy disables the control and shows label instead of its content.
	SetBusy(label string)
	// SetLabel shows label, keeping the enabled state.
	SetLabel(label string)
	// Restore re-enables the control with its original content.
	Restore()
}

// Alerter surfaces a message to the user.
type Alerter interface {
	Alert(message string)
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(path string)
}

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(rawURL string) error
}

// Clipboard is the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Button is a Control that keeps its state in memory.
type Button struct {
	mu       sync.Mutex
	label    string
	original string
	disabled bool
	saved    bool
}

// NewButton creates an enabled button showing label.
func NewButton(label string) *Button {
	return &Button{label: label}
}

func (b *Button) remember() {
	if !b.saved {
		b.original = b.label
		b.saved = true
	}
}

// SetBusy implements Control.
func (b *Button) SetBusy(label string) {
	b.mu.Lock()
	b.remember()
	b.disabled = true
	b.label = label
	b.mu.Unlock()
}

// SetLabel implements Control.
func (b *Button) SetLabel(label string) {
	b.mu.Lock()
	b.remember()
	b.label = label
	b.mu.Unlock()
}

// Restore implements Control.
func (b *Button) Restore() {
	b.mu.Lock()
	if b.saved {
		b.label = b.original
		b.saved = false
	}
	b.disabled = false
	b.mu.Unlock()
}

// Label returns what the button shows.
func (b *Button) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

// Disabled reports whether the button is disabled.
func (b *Button) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

// Saver is what SaveFlow needs from a Client.
type Saver interface {
	SaveRecipe(ctx context.Context, d Draft) (SaveResponse, error)
}

const (
	busyLabel          = "Saving..."
	saveFailurePrefix  = "Could not save the recipe: "
	genericSaveFailure = "Could not save recipe"
)

// SaveFlow saves a draft on behalf of a control.
type SaveFlow struct {
	Saver     Saver
	Control   Control
	Alerter   Alerter
	Navigator Navigator
}

// Run disables the control, saves the draft and navigates to the gallery.
// On failure the control is restored and the best available message is
// alerted. The returned error is the one alerted.
func (f *SaveFlow) Run(ctx context.Context, d Draft) error {
	if f.Control != nil {
		f.Control.SetBusy(busyLabel)
	}
	_, err := f.Saver.SaveRecipe(ctx, d)
	if err == nil {
		if f.Navigator != nil {
			f.Navigator.Navigate(GalleryPath)
		}
		return nil
	}
	if f.Control != nil {
		f.Control.Restore()
	}
	if f.Alerter != nil {
		f.Alerter.Alert(saveFailurePrefix + failureMessage(err))
	}
	return err
}

func failureMessage(err error) string {
	var se *SaveError
	if errors.As(err, &se) {
		if se.Message == "" && se.Err == nil {
			return genericSaveFailure
		}
		return se.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return genericSaveFailure
}

// FormatText renders a draft as plain text for sharing by hand.
func FormatText(d Draft) string {
	var b strings.Builder
	b.WriteString(d.Title)
	b.WriteString("\n\nIngredients:\n")
	for _, ing := range d.Ingredients {
		b.WriteString("• ")
		b.WriteString(strings.TrimSpace(strings.TrimPrefix(ing, "•")))
		b.WriteByte('\n')
	}
	b.WriteString("\nInstructions:\n")
	for i, step := range d.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	fmt.Fprintf(&b, "\nDifficulty: %d/5\n", d.Difficulty)
	if d.WinePairing != "" {
		fmt.Fprintf(&b, "Wine pairing: %s\n", d.WinePairing)
	}
	return b.String()
}

const (
	copiedLabel    = "Copied!"
	copiedFor      = 2 * time.Second
	manualCopyHint = "Could not copy automatically. Select the recipe text and copy it manually."
)

// CopyFlow copies a draft to the clipboard on behalf of a control.
type CopyFlow struct {
	Clipboard Clipboard
	Control   Control
	Alerter   Alerter
	// FlashFor is how long the confirmation label stays, default 2s.
	FlashFor time.Duration
}

// Run writes the formatted draft to the clipboard. On success the control
// shows a confirmation that reverts after FlashFor; the returned timer can
// be stopped to revert early.
func (f *CopyFlow) Run(d Draft) (*time.Timer, error) {
	cb := f.Clipboard
	if cb == nil {
		cb = SystemClipboard{}
	}
	if err := cb.WriteAll(FormatText(d)); err != nil {
		if f.Alerter != nil {
			f.Alerter.Alert(manualCopyHint)
		}
		return nil, fmt.Errorf("copy recipe: %w", err)
	}
	if f.Control == nil {
		return nil, nil
	}
	f.Control.SetLabel(copiedLabel)
	flash := f.FlashFor
	if flash <= 0 {
		flash = copiedFor
	}
	return time.AfterFunc(flash, f.Control.Restore), nil
}

// Platform is a social network a recipe can be shared on.
type Platform string

const (
	Facebook Platform = "facebook"
	Twitter  Platform = "twitter"
	WhatsApp Platform = "whatsapp"
)

// ShareText is the sentence sent along with shared links.
const ShareText = "Check out this recipe I cooked with chefbook!"

// ShareURL builds the share link for pageURL on platform. Unknown platforms
// yield "".
func ShareURL(p Platform, pageURL string) string {
	switch p {
	case Facebook:
		return "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(pageURL)
	case Twitter:
		return "https://twitter.com/intent/tweet?url=" + url.QueryEscape(pageURL) + "&text=" + url.QueryEscape(ShareText)
	case WhatsApp:
		return "https://wa.me/?text=" + url.QueryEscape(ShareText+" "+pageURL)
	default:
		return ""
	}
}

// Share opens the share link for pageURL. Unknown platforms open nothing.
func Share(o Opener, p Platform, pageURL string) (string, error) {
	link := ShareURL(p, pageURL)
	if link == "" || o == nil {
		return link, nil
	}
	return link, o.Open(link)
}
