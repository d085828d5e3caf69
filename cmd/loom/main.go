// Command loom is a terminal demo of the editing core: it mounts a
// document into a tcell screen and reconciles every keystroke into it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/loomdoc/loom/internal/editor"
	"github.com/loomdoc/loom/internal/engine/doc"
)

func main() {
	os.Exit(run())
}

func run() int {
	var logPath string
	var logLevel string
	flag.StringVar(&logPath, "log", "", "Path to a debug log file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	flag.Parse()

	logger := editor.NullLogger
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log: %v\n", err)
			return 1
		}
		defer f.Close()
		logger = editor.NewLogger(editor.LoggerConfig{
			Level:  editor.ParseLogLevel(logLevel),
			Output: f,
			Prefix: "loom",
		})
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init screen: %v\n", err)
		return 1
	}
	defer screen.Fini()

	surf := newScreenSurface(screen)
	ed, err := editor.New(
		editor.WithSurface(surf),
		editor.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create editor: %v\n", err)
		return 1
	}

	// Seed an empty paragraph and place the caret in it.
	err = ed.Update(func(ctx *doc.Context) error {
		p := doc.NewElementNode(ctx, "paragraph")
		if err := ctx.AppendChild(doc.RootKey, p.Key()); err != nil {
			return err
		}
		tn := doc.NewTextNode(ctx, "")
		if err := ctx.AppendChild(p.Key(), tn.Key()); err != nil {
			return err
		}
		return ctx.SetSelection(doc.NewCaret(doc.TextPoint(tn.Key(), 0)))
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: seed document: %v\n", err)
		return 1
	}

	// Attach undo after the seed so the blank document is not an undo
	// target.
	hist := editor.NewHistory(ed)

	for {
		surf.draw()
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if quit := handleKey(ed, hist, logger, ev); quit {
				return 0
			}
		}
	}
}

// handleKey applies one keystroke to the editor. It reports true when the
// user asked to quit.
func handleKey(ed *editor.Editor, hist *editor.History, logger *editor.Logger, ev *tcell.EventKey) bool {
	var err error
	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyEscape:
		return true
	case tcell.KeyCtrlZ:
		if hist.CanUndo() {
			err = hist.Undo()
		}
	case tcell.KeyCtrlY:
		if hist.CanRedo() {
			err = hist.Redo()
		}
	case tcell.KeyRune:
		err = insertText(ed, string(ev.Rune()))
	case tcell.KeyEnter:
		err = ed.Update(func(ctx *doc.Context) error {
			sel, err := ctx.RangeSel()
			if err != nil {
				return err
			}
			return sel.InsertParagraph(ctx)
		})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		err = backspace(ed)
	case tcell.KeyLeft:
		err = moveCaret(ed, caretLeft)
	case tcell.KeyRight:
		err = moveCaret(ed, caretRight)
	}
	if err != nil {
		logger.Error("keystroke failed: %v", err)
	}
	return false
}

func insertText(ed *editor.Editor, text string) error {
	return ed.Update(func(ctx *doc.Context) error {
		sel, err := ctx.RangeSel()
		if err != nil {
			return err
		}
		return sel.InsertText(ctx, text)
	})
}

// backspace deletes the selection, or the grapheme cluster before a
// collapsed caret. At a node start the deletion reaches into the previous
// text leaf, joining blocks.
func backspace(ed *editor.Editor) error {
	return ed.Update(func(ctx *doc.Context) error {
		sel, err := ctx.RangeSel()
		if err != nil {
			return err
		}
		if sel.IsCollapsed() {
			prev, ok := caretLeft(ctx.State(), sel.Anchor())
			if !ok {
				return nil
			}
			sel.SetAnchor(prev)
		}
		return sel.InsertText(ctx, "")
	})
}

func moveCaret(ed *editor.Editor, move func(*doc.State, doc.Point) (doc.Point, bool)) error {
	return ed.Update(func(ctx *doc.Context) error {
		sel, err := ctx.RangeSel()
		if err != nil {
			return err
		}
		if p, ok := move(ctx.State(), sel.Focus()); ok {
			sel.Collapse(p)
		}
		return nil
	})
}
