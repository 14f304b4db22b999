// Command studio is a minimal desktop editor for .bhai source files: a text
// buffer, a compile-on-demand action, and a scrollback pane showing
// diagnostics or the C backend's generated preview. It is intentionally
// shallow — the full editor experience (syntax highlighting, multi-file
// projects, a language server) is a separate tool; this exists to give
// Patakha a native window at all.
package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"patakha/pkg/compiler"
)

const (
	screenW = 900
	screenH = 640
)

// face is the bitmap font the editor and output panes render with. Studio
// has no bundled TTF, so it uses x/image's stock 7x13 face rather than
// pulling in a font file and a parser for it.
var face = basicfont.Face7x13

var (
	textColor   = color.White
	statusColor = color.RGBA{R: 0x9a, G: 0xe6, B: 0xff, A: 0xff}
)

// Game is the ebiten.Game implementation: a text buffer on the left, a
// read-only output pane on the right, toggled by F5 to compile.
type Game struct {
	path      string
	buffer    []rune
	cursor    int
	output    string
	lastError string
}

func (g *Game) Update() error {
	for _, r := range ebiten.AppendInputChars(nil) {
		g.insert(r)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.insert('\n')
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.backspace()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) && g.cursor > 0 {
		g.cursor--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) && g.cursor < len(g.buffer) {
		g.cursor++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.compile()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.save()
	}
	return nil
}

func (g *Game) insert(r rune) {
	buf := make([]rune, 0, len(g.buffer)+1)
	buf = append(buf, g.buffer[:g.cursor]...)
	buf = append(buf, r)
	buf = append(buf, g.buffer[g.cursor:]...)
	g.buffer = buf
	g.cursor++
}

func (g *Game) backspace() {
	if g.cursor == 0 {
		return
	}
	g.buffer = append(g.buffer[:g.cursor-1], g.buffer[g.cursor:]...)
	g.cursor--
}

func (g *Game) save() {
	if err := os.WriteFile(g.path, []byte(string(g.buffer)), 0o644); err != nil {
		g.lastError = fmt.Sprintf("save failed: %v", err)
	} else {
		g.lastError = "saved"
	}
}

// compile writes the buffer to disk and runs the full compiler pipeline
// against it, rendering diagnostics or a preview of the generated C in the
// output pane — the same driver cmd/patakha uses, exercised here in-process.
func (g *Game) compile() {
	if err := os.WriteFile(g.path, []byte(string(g.buffer)), 0o644); err != nil {
		g.output = fmt.Sprintf("could not write %s: %v", g.path, err)
		return
	}
	result, err := compiler.Compile(g.path, compiler.Options{Backend: compiler.BackendC})
	if err != nil {
		g.output = fmt.Sprintf("compile error: %v", err)
		return
	}
	if result.Sink.HasErrors() {
		g.output = result.Sink.Render()
		return
	}
	var preview string
	for _, art := range result.Artifacts {
		if art.Ext == ".c" {
			preview = art.Content
			break
		}
	}
	lines := strings.Split(preview, "\n")
	if len(lines) > 28 {
		lines = lines[:28]
	}
	g.output = strings.Join(lines, "\n")
}

func (g *Game) Draw(screen *ebiten.Image) {
	left := string(g.buffer[:g.cursor]) + "|" + string(g.buffer[g.cursor:])
	text.Draw(screen, left, face, 10, 20, textColor)
	text.Draw(screen, g.output, face, 460, 20, textColor)
	status := fmt.Sprintf("%s  [F5] compile  [F2] save  %s", g.path, g.lastError)
	text.Draw(screen, status, face, 10, screenH-14, statusColor)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: studio <source.bhai>")
	}
	path := os.Args[1]
	src, err := os.ReadFile(path)
	if err != nil {
		src = []byte("shuru\n\nbass\n")
	}

	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("Patakha Studio")

	game := &Game{path: path, buffer: []rune(string(src))}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
