package app

import (
	"errors"
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"micscope/hal"
	"micscope/render"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// ErrPanicked is returned by a step that recovered from a panic. The step
// keeps returning it; the panic screen stays up.
var ErrPanicked = errors.New("app: step panicked")

const panicLineHeight = 12

func guard(h hal.HAL, step func() error) func() error {
	halted := false
	return func() (err error) {
		if halted {
			return ErrPanicked
		}
		defer func() {
			if v := recover(); v != nil {
				halted = true
				showPanic(h, v, debug.Stack())
				err = fmt.Errorf("%w: %v", ErrPanicked, v)
			}
		}()
		return step()
	}
}

func panicLines(v any, stack []byte) []string {
	lines := []string{
		"micscope panic:",
		fmt.Sprintf("panic: %v", v),
	}
	if len(stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(stack), "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, strings.ReplaceAll(line, "\t", "  "))
	}
	return lines
}

func showPanic(h hal.HAL, v any, stack []byte) {
	lines := panicLines(v, stack)

	if l := h.Logger(); l != nil {
		for _, line := range lines {
			l.WriteLineString(line)
		}
	}

	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return
	}

	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	s := render.NewFramebufferSurface(fb, panicLineHeight, white)
	w, maxH := s.Size()
	s.FillRect(0, 0, w, maxH, white)
	s.SetForeground(color.RGBA{A: 0xff})

	_, outbox := tinyfont.LineWidth(&proggy.TinySZ8pt7b, "0")
	cols := int16(1)
	if outbox > 0 && w/int16(outbox) > 0 {
		cols = w / int16(outbox)
	}

	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 {
			if y+panicLineHeight > maxH {
				_ = s.Present()
				return
			}
			chunk, rest := takeRunes(line, cols)
			s.DrawText(0, y, chunk, render.AlignLeft)
			y += panicLineHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = s.Present()
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
